package models

// Severity classifies a validation issue. Errors block the operation,
// warnings are advisory only.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Validation issue codes. The set is closed; handlers and tests match
// on these values.
const (
	CodeRequiredField             = "REQUIRED_FIELD"
	CodeInvalidEmail              = "INVALID_EMAIL"
	CodeInvalidPhone              = "INVALID_PHONE"
	CodeInvalidPostalCode         = "INVALID_POSTAL_CODE"
	CodeNegativeValue             = "NEGATIVE_VALUE"
	CodeInvalidEnumValue          = "INVALID_ENUM_VALUE"
	CodeTextTooLong               = "TEXT_TOO_LONG"
	CodeHighCreditLimit           = "HIGH_CREDIT_LIMIT"
	CodeTooManyTags               = "TOO_MANY_TAGS"
	CodeCreditRiskMismatch        = "CREDIT_RISK_MISMATCH"
	CodePaymentTermsInconsistency = "PAYMENT_TERMS_INCONSISTENCY"
	CodePriorityHistoryMismatch   = "PRIORITY_HISTORY_MISMATCH"
	CodeDuplicateValue            = "DUPLICATE_VALUE"
	CodeInvalidStatusTransition   = "INVALID_STATUS_TRANSITION"
	CodeCreditLimitBelowBalance   = "CREDIT_LIMIT_BELOW_BALANCE"
)

// ValidationIssue is a single finding against a candidate record.
// Issues are transient; they are returned to callers, never persisted.
type ValidationIssue struct {
	Field    string   `json:"field"` // dotted path, e.g. "contact_info.email"
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult aggregates the issues found for one candidate record.
type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}

// Add appends an issue, routing it to the errors or warnings list and
// updating IsValid.
func (r *ValidationResult) Add(issue ValidationIssue) {
	if issue.Severity == SeverityWarning {
		r.Warnings = append(r.Warnings, issue)
		return
	}
	r.Errors = append(r.Errors, issue)
	r.IsValid = false
}

// Merge folds all issues of other into r.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for _, e := range other.Errors {
		r.Add(e)
	}
	for _, w := range other.Warnings {
		r.Add(w)
	}
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid:  true,
		Errors:   []ValidationIssue{},
		Warnings: []ValidationIssue{},
	}
}
