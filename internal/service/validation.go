package service

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"freightdesk/internal/config"
	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/repositories"
	"freightdesk/internal/domain/services"
)

//go:embed postal_patterns.yaml
var postalPatternsYAML []byte

// postalPatterns maps ISO country codes to compiled postal code
// patterns. Loaded once from the embedded table.
var postalPatterns = mustLoadPostalPatterns()

func mustLoadPostalPatterns() map[string]*regexp.Regexp {
	var doc struct {
		Patterns map[string]string `yaml:"patterns"`
	}
	if err := yaml.Unmarshal(postalPatternsYAML, &doc); err != nil {
		panic(fmt.Sprintf("postal_patterns.yaml: %v", err))
	}

	compiled := make(map[string]*regexp.Regexp, len(doc.Patterns))
	for country, pattern := range doc.Patterns {
		compiled[country] = regexp.MustCompile(pattern)
	}
	return compiled
}

// Closed enum sets for free-form string fields.
var (
	knownIndustries = []any{
		"transport", "retail", "manufacturing", "technology",
		"agriculture", "construction", "healthcare", "energy", "other",
	}
	knownContactTypes = []any{"primary", "billing", "technical", "commercial"}
)

// phoneStrip matches every separator tolerated inside a phone number.
var phoneStrip = regexp.MustCompile(`[\s().\-]`)

type clientValidator struct {
	clientRepo repositories.ClientRepository
	logger     *slog.Logger
}

// NewClientValidator creates the validator used before client creation
// and updates. The repository is only read, for uniqueness checks.
func NewClientValidator(clientRepo repositories.ClientRepository, logger *slog.Logger) services.ClientValidator {
	return &clientValidator{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

// ValidateClientData runs structural checks, business-rule heuristics
// and uniqueness checks over a candidate record. Data-shape findings
// never surface as errors; the error return is reserved for store
// failures during the uniqueness check.
func (v *clientValidator) ValidateClientData(ctx context.Context, req *services.CreateClientRequest, opts *services.ValidateOptions) (*models.ValidationResult, error) {
	if opts == nil {
		opts = &services.ValidateOptions{}
	}

	result := models.NewValidationResult()

	v.checkTypeFields(req, result)
	v.checkContact(&req.Contact, result)
	v.checkCommercial(req.Commercial, result)
	v.checkTags(req.Tags, result)

	// Cross-field heuristics run against the effective commercial
	// conditions (defaults + request) and a zeroed history.
	commercial := defaultCommercialInfo()
	applyCommercialPatch(&commercial, req.Commercial)
	for _, w := range v.ValidateBusinessRules(&commercial, &models.CommercialHistory{}) {
		result.Add(w)
	}

	if !opts.SkipUniqueness {
		registrationNumber := ""
		if req.Business != nil {
			registrationNumber = req.Business.RegistrationNumber
		}
		issues, err := v.CheckUniqueConstraints(ctx, req.Contact.Email, registrationNumber, opts.ExcludeClientID)
		if err != nil {
			return nil, err
		}
		for _, issue := range issues {
			result.Add(issue)
		}
	}

	v.logger.Debug("client data validated",
		"client_type", req.Type,
		"valid", result.IsValid,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
	)

	return result, nil
}

// checkTypeFields enforces the tagged-union shape: exactly one of
// individual_info / business_info, matching client_type, with the
// type-specific required fields present.
func (v *clientValidator) checkTypeFields(req *services.CreateClientRequest, result *models.ValidationResult) {
	switch req.Type {
	case models.ClientTypeIndividual:
		if req.Business != nil {
			result.Add(issue("business_info", models.CodeInvalidEnumValue,
				"business_info must not be set for an individual client"))
		}
		if req.Individual == nil {
			result.Add(issue("individual_info", models.CodeRequiredField,
				"individual_info is required for an individual client"))
			return
		}
		if strings.TrimSpace(req.Individual.FirstName) == "" {
			result.Add(issue("individual_info.first_name", models.CodeRequiredField,
				"first_name is required"))
		}
		if strings.TrimSpace(req.Individual.LastName) == "" {
			result.Add(issue("individual_info.last_name", models.CodeRequiredField,
				"last_name is required"))
		}
		v.checkTextLength("individual_info.first_name", req.Individual.FirstName, result)
		v.checkTextLength("individual_info.last_name", req.Individual.LastName, result)

	case models.ClientTypeBusiness:
		if req.Individual != nil {
			result.Add(issue("individual_info", models.CodeInvalidEnumValue,
				"individual_info must not be set for a business client"))
		}
		if req.Business == nil {
			result.Add(issue("business_info", models.CodeRequiredField,
				"business_info is required for a business client"))
			return
		}
		if strings.TrimSpace(req.Business.CompanyName) == "" {
			result.Add(issue("business_info.company_name", models.CodeRequiredField,
				"company_name is required"))
		}
		v.checkTextLength("business_info.company_name", req.Business.CompanyName, result)
		if req.Business.Industry != "" {
			if err := validation.Validate(req.Business.Industry, validation.In(knownIndustries...)); err != nil {
				result.Add(issue("business_info.industry", models.CodeInvalidEnumValue,
					fmt.Sprintf("industry %q is not a known value", req.Business.Industry)))
			}
		}
		if req.Business.Website != nil && *req.Business.Website != "" {
			if err := validation.Validate(*req.Business.Website, is.URL); err != nil {
				result.Add(issue("business_info.website", models.CodeInvalidEnumValue,
					"website must be a valid URL"))
			}
		}

	default:
		result.Add(issue("client_type", models.CodeInvalidEnumValue,
			fmt.Sprintf("client_type %q is not a known value", req.Type)))
	}
}

func (v *clientValidator) checkContact(contact *models.ContactInfo, result *models.ValidationResult) {
	// EmailFormat, not Email: the latter resolves the domain over DNS,
	// and validation must stay a pure check on the candidate record.
	if strings.TrimSpace(contact.Email) == "" {
		result.Add(issue("contact_info.email", models.CodeRequiredField, "email is required"))
	} else if err := validation.Validate(contact.Email, is.EmailFormat); err != nil {
		result.Add(issue("contact_info.email", models.CodeInvalidEmail,
			fmt.Sprintf("%q is not a valid email address", contact.Email)))
	}

	if contact.Phone != "" {
		if !validPhone(contact.Phone) {
			result.Add(issue("contact_info.phone", models.CodeInvalidPhone,
				fmt.Sprintf("%q is not a valid phone number", contact.Phone)))
		}
	}

	if contact.ContactType != "" {
		if err := validation.Validate(contact.ContactType, validation.In(knownContactTypes...)); err != nil {
			result.Add(issue("contact_info.contact_type", models.CodeInvalidEnumValue,
				fmt.Sprintf("contact_type %q is not a known value", contact.ContactType)))
		}
	}

	if contact.Country != "" {
		if err := validation.Validate(contact.Country, is.CountryCode2); err != nil {
			result.Add(issue("contact_info.country", models.CodeInvalidEnumValue,
				fmt.Sprintf("country %q is not an ISO 3166-1 alpha-2 code", contact.Country)))
		} else if contact.PostalCode != "" {
			if pattern, ok := postalPatterns[strings.ToUpper(contact.Country)]; ok && !pattern.MatchString(contact.PostalCode) {
				result.Add(issue("contact_info.postal_code", models.CodeInvalidPostalCode,
					fmt.Sprintf("postal code %q does not match the %s format", contact.PostalCode, contact.Country)))
			}
		}
	}

	v.checkTextLength("contact_info.address_line", contact.AddressLine, result)
	v.checkTextLength("contact_info.city", contact.City, result)
}

func (v *clientValidator) checkCommercial(patch *services.CommercialInfoPatch, result *models.ValidationResult) {
	if patch == nil {
		return
	}

	if patch.CreditLimit != nil {
		if *patch.CreditLimit < 0 {
			result.Add(issue("commercial_info.credit_limit", models.CodeNegativeValue,
				"credit_limit must be >= 0"))
		} else if *patch.CreditLimit > config.HighCreditLimitThreshold {
			result.Add(warning("commercial_info.credit_limit", models.CodeHighCreditLimit,
				fmt.Sprintf("credit_limit exceeds %d", config.HighCreditLimitThreshold)))
		}
	}

	if patch.PaymentTermsDays != nil && *patch.PaymentTermsDays < 0 {
		result.Add(issue("commercial_info.payment_terms_days", models.CodeNegativeValue,
			"payment_terms_days must be >= 0"))
	}

	if patch.PaymentTerms != nil {
		if _, ok := patch.PaymentTerms.NominalDays(); !ok {
			result.Add(issue("commercial_info.payment_terms", models.CodeInvalidEnumValue,
				fmt.Sprintf("payment_terms %q is not a known value", *patch.PaymentTerms)))
		}
	}

	if patch.Currency != nil && *patch.Currency != "" {
		if err := validation.Validate(*patch.Currency, is.CurrencyCode); err != nil {
			result.Add(issue("commercial_info.currency", models.CodeInvalidEnumValue,
				fmt.Sprintf("currency %q is not an ISO 4217 code", *patch.Currency)))
		}
	}

	if patch.Priority != nil {
		switch *patch.Priority {
		case models.PriorityLow, models.PriorityNormal, models.PriorityHigh:
		default:
			result.Add(issue("commercial_info.priority", models.CodeInvalidEnumValue,
				fmt.Sprintf("priority %q is not a known value", *patch.Priority)))
		}
	}

	if patch.RiskLevel != nil {
		switch *patch.RiskLevel {
		case models.RiskLow, models.RiskMedium, models.RiskHigh:
		default:
			result.Add(issue("commercial_info.risk_level", models.CodeInvalidEnumValue,
				fmt.Sprintf("risk_level %q is not a known value", *patch.RiskLevel)))
		}
	}
}

func (v *clientValidator) checkTags(tags []string, result *models.ValidationResult) {
	if len(tags) > config.MaxTagsWarningThreshold {
		result.Add(warning("tags", models.CodeTooManyTags,
			fmt.Sprintf("%d tags exceeds the recommended maximum of %d", len(tags), config.MaxTagsWarningThreshold)))
	}
	for i, tag := range tags {
		if err := validation.Validate(tag, validation.Required, validation.Length(1, config.MaxTagLength)); err != nil {
			result.Add(issue(fmt.Sprintf("tags.%d", i), models.CodeTextTooLong,
				fmt.Sprintf("tag %d must be 1-%d characters", i, config.MaxTagLength)))
		}
	}
}

func (v *clientValidator) checkTextLength(field, value string, result *models.ValidationResult) {
	if len(value) > config.MaxTextFieldLength {
		result.Add(issue(field, models.CodeTextTooLong,
			fmt.Sprintf("%s exceeds %d characters", field, config.MaxTextFieldLength)))
	}
}

// ValidateBusinessRules runs warning-only cross-field heuristics. The
// findings never block an operation.
func (v *clientValidator) ValidateBusinessRules(commercial *models.CommercialInfo, history *models.CommercialHistory) []models.ValidationIssue {
	var warnings []models.ValidationIssue

	if commercial.CreditLimit > config.HighCreditLimitThreshold && commercial.RiskLevel == models.RiskHigh {
		warnings = append(warnings, warning("commercial_info.risk_level", models.CodeCreditRiskMismatch,
			"high credit limit combined with high risk level"))
	}

	if days, ok := commercial.PaymentTerms.NominalDays(); ok && commercial.PaymentTermsDays != days {
		warnings = append(warnings, warning("commercial_info.payment_terms_days", models.CodePaymentTermsInconsistency,
			fmt.Sprintf("payment_terms %q implies %d days, got %d", commercial.PaymentTerms, days, commercial.PaymentTermsDays)))
	}

	if commercial.Priority == models.PriorityHigh && history.TotalOrdersAmount < config.NegligibleOrdersAmount {
		warnings = append(warnings, warning("commercial_info.priority", models.CodePriorityHistoryMismatch,
			"high priority client with negligible order history"))
	}

	return warnings
}

// CheckUniqueConstraints queries for existing non-deleted records with
// the same email (case-insensitive) or registration number. A match
// whose id differs from excludeClientID is reported as DUPLICATE_VALUE.
func (v *clientValidator) CheckUniqueConstraints(ctx context.Context, email, registrationNumber, excludeClientID string) ([]models.ValidationIssue, error) {
	var issues []models.ValidationIssue

	if email != "" {
		existing, err := v.clientRepo.FindByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("check email uniqueness: %w", err)
		}
		if existing != nil && existing.ID != excludeClientID {
			issues = append(issues, issue("contact_info.email", models.CodeDuplicateValue,
				fmt.Sprintf("email %q is already used by another client", email)))
		}
	}

	if registrationNumber != "" {
		existing, err := v.clientRepo.FindByRegistrationNumber(ctx, registrationNumber)
		if err != nil {
			return nil, fmt.Errorf("check registration number uniqueness: %w", err)
		}
		if existing != nil && existing.ID != excludeClientID {
			issues = append(issues, issue("business_info.registration_number", models.CodeDuplicateValue,
				fmt.Sprintf("registration number %q is already used by another client", registrationNumber)))
		}
	}

	return issues, nil
}

// ValidateUpdate validates a partial update against the current record.
// Structural rules run over the post-merge candidate, so a patch cannot
// carry a value that creation would have rejected.
func (v *clientValidator) ValidateUpdate(ctx context.Context, current *models.Client, patch *services.UpdateClientRequest) (*models.ValidationResult, error) {
	result := models.NewValidationResult()
	if patch == nil {
		return result, nil
	}

	merged := *current
	if current.Individual != nil {
		ind := *current.Individual
		merged.Individual = &ind
	}
	if current.Business != nil {
		biz := *current.Business
		merged.Business = &biz
	}
	merged.Tags = append([]string(nil), current.Tags...)
	mergeUpdate(&merged, patch)

	candidate := &services.CreateClientRequest{
		Type:       merged.Type,
		Individual: merged.Individual,
		Business:   merged.Business,
		Contact:    merged.Contact,
		Commercial: commercialPatchOf(&merged.Commercial),
		Tags:       merged.Tags,
	}
	structural, err := v.ValidateClientData(ctx, candidate, &services.ValidateOptions{SkipUniqueness: true})
	if err != nil {
		return nil, err
	}
	result.Merge(structural)

	for _, constraint := range v.ValidateUpdateConstraints(current, patch) {
		result.Add(constraint)
	}

	email, registrationNumber := "", ""
	if patch.Contact != nil && patch.Contact.Email != nil {
		email = *patch.Contact.Email
	}
	if patch.Business != nil && patch.Business.RegistrationNumber != nil {
		registrationNumber = *patch.Business.RegistrationNumber
	}
	if email != "" || registrationNumber != "" {
		unique, err := v.CheckUniqueConstraints(ctx, email, registrationNumber, current.ID)
		if err != nil {
			return nil, err
		}
		for _, dup := range unique {
			result.Add(dup)
		}
	}

	return result, nil
}

// commercialPatchOf wraps effective commercial values so the structural
// checks can run over them field by field.
func commercialPatchOf(info *models.CommercialInfo) *services.CommercialInfoPatch {
	methods := append([]string(nil), info.PaymentMethods...)
	return &services.CommercialInfoPatch{
		CreditLimit:       &info.CreditLimit,
		Currency:          &info.Currency,
		PaymentTermsDays:  &info.PaymentTermsDays,
		PaymentTerms:      &info.PaymentTerms,
		PaymentMethods:    &methods,
		PreferredLanguage: &info.PreferredLanguage,
		Priority:          &info.Priority,
		RiskLevel:         &info.RiskLevel,
	}
}

// ValidateUpdateConstraints enforces the status transition machine and
// the credit-limit-vs-balance invariant for a partial update.
func (v *clientValidator) ValidateUpdateConstraints(current *models.Client, patch *services.UpdateClientRequest) []models.ValidationIssue {
	var issues []models.ValidationIssue
	if patch == nil {
		return issues
	}

	if patch.Status != nil {
		target := *patch.Status
		switch {
		case !models.ValidClientStatus(target):
			issues = append(issues, issue("status", models.CodeInvalidEnumValue,
				fmt.Sprintf("status %q is not a known value", target)))
		case target == models.StatusDeleted:
			// Deletion is a lifecycle operation, never a status write.
			issues = append(issues, issue("status", models.CodeInvalidStatusTransition,
				"status deleted can only be reached through deletion"))
		case target != current.Status && !models.CanTransition(current.Status, target):
			issues = append(issues, issue("status", models.CodeInvalidStatusTransition,
				fmt.Sprintf("cannot transition from %q to %q", current.Status, target)))
		}
	}

	if patch.Commercial != nil && patch.Commercial.CreditLimit != nil {
		if *patch.Commercial.CreditLimit < current.History.CurrentBalance {
			issues = append(issues, issue("commercial_info.credit_limit", models.CodeCreditLimitBelowBalance,
				fmt.Sprintf("credit_limit %.2f is below the current balance %.2f",
					*patch.Commercial.CreditLimit, current.History.CurrentBalance)))
		}
	}

	return issues
}

// validPhone accepts 8-15 significant digits with common separators
// and an optional leading +.
func validPhone(phone string) bool {
	s := strings.TrimSpace(phone)
	s = strings.TrimPrefix(s, "+")
	s = phoneStrip.ReplaceAllString(s, "")
	if len(s) < config.MinPhoneDigits || len(s) > config.MaxPhoneDigits {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func issue(field, code, message string) models.ValidationIssue {
	return models.ValidationIssue{
		Field:    field,
		Code:     code,
		Message:  message,
		Severity: models.SeverityError,
	}
}

func warning(field, code, message string) models.ValidationIssue {
	return models.ValidationIssue{
		Field:    field,
		Code:     code,
		Message:  message,
		Severity: models.SeverityWarning,
	}
}
