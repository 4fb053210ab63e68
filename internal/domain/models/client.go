package models

import (
	"time"
)

// ClientType discriminates the tagged union of client identities.
// Exactly one of IndividualInfo / BusinessInfo is set, matching the type.
type ClientType string

const (
	ClientTypeIndividual ClientType = "individual"
	ClientTypeBusiness   ClientType = "business"
)

// ClientStatus is the lifecycle status of a client. StatusDeleted is
// reachable only through the deletion operation, never through a
// direct status write.
type ClientStatus string

const (
	StatusPending  ClientStatus = "pending"
	StatusActive   ClientStatus = "active"
	StatusInactive ClientStatus = "inactive"
	StatusDeleted  ClientStatus = "deleted"
)

// ValidClientStatus reports whether s is a member of the status enum.
func ValidClientStatus(s ClientStatus) bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusDeleted:
		return true
	}
	return false
}

// CanTransition reports whether the status machine allows moving from
// one status to another. Writing the same status back is handled by
// callers; deleted has no outgoing edges here because restoration is a
// lifecycle operation.
func CanTransition(from, to ClientStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusActive
	case StatusActive:
		return to == StatusInactive
	case StatusInactive:
		return to == StatusActive
	}
	return false
}

// Priority is the commercial priority assigned to a client.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// RiskLevel is the assessed credit risk of a client.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// PaymentTerms is the agreed settlement schedule.
type PaymentTerms string

const (
	PaymentTermsImmediate  PaymentTerms = "immediate"
	PaymentTermsNet15      PaymentTerms = "net_15"
	PaymentTermsNet30      PaymentTerms = "net_30"
	PaymentTermsNet45      PaymentTerms = "net_45"
	PaymentTermsNet60      PaymentTerms = "net_60"
	PaymentTermsEndOfMonth PaymentTerms = "end_of_month"
)

// NominalDays returns the settlement delay a payment term implies, and
// whether the term is a known enum member. End of month is counted as
// a nominal 30 days.
func (t PaymentTerms) NominalDays() (int, bool) {
	switch t {
	case PaymentTermsImmediate:
		return 0, true
	case PaymentTermsNet15:
		return 15, true
	case PaymentTermsNet30:
		return 30, true
	case PaymentTermsNet45:
		return 45, true
	case PaymentTermsNet60:
		return 60, true
	case PaymentTermsEndOfMonth:
		return 30, true
	}
	return 0, false
}

// IndividualInfo carries the identity fields of a person client.
type IndividualInfo struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Title       *string `json:"title,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}

// BusinessInfo carries the identity fields of a company client.
type BusinessInfo struct {
	CompanyName        string  `json:"company_name"`
	RegistrationNumber string  `json:"registration_number,omitempty"`
	VATNumber          *string `json:"vat_number,omitempty"`
	Industry           string  `json:"industry,omitempty"`
	Website            *string `json:"website,omitempty"`
}

// ContactInfo carries the reachability and address fields.
type ContactInfo struct {
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	ContactType string `json:"contact_type,omitempty"`
	AddressLine string `json:"address_line,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Country     string `json:"country,omitempty"` // ISO 3166-1 alpha-2
}

// CommercialInfo carries the negotiated commercial conditions.
type CommercialInfo struct {
	CreditLimit       float64      `json:"credit_limit"`
	Currency          string       `json:"currency"` // ISO 4217
	PaymentTermsDays  int          `json:"payment_terms_days"`
	PaymentTerms      PaymentTerms `json:"payment_terms"`
	PaymentMethods    []string     `json:"payment_methods,omitempty"`
	PreferredLanguage string       `json:"preferred_language,omitempty"`
	Priority          Priority     `json:"priority"`
	RiskLevel         RiskLevel    `json:"risk_level"`
}

// CommercialHistory holds the server-maintained trading aggregates.
// They start at zero on creation and are never accepted from input.
type CommercialHistory struct {
	TotalOrdersAmount       float64 `json:"total_orders_amount"`
	TotalOrdersCount        int     `json:"total_orders_count"`
	CurrentBalance          float64 `json:"current_balance"`
	AveragePaymentDelayDays float64 `json:"average_payment_delay_days"`
}

// Client is the central account record. The sub-structs map to JSONB
// columns; the soft-delete triple plus the deleted status mark a
// logically removed record that stays physically present.
type Client struct {
	ID         string            `json:"id" db:"id"`
	Type       ClientType        `json:"client_type" db:"client_type"`
	Individual *IndividualInfo   `json:"individual_info,omitempty" db:"individual_info"`
	Business   *BusinessInfo     `json:"business_info,omitempty" db:"business_info"`
	Contact    ContactInfo       `json:"contact_info" db:"contact_info"`
	Commercial CommercialInfo    `json:"commercial_info" db:"commercial_info"`
	History    CommercialHistory `json:"commercial_history" db:"commercial_history"`
	Status     ClientStatus      `json:"status" db:"status"`
	Tags       []string          `json:"tags" db:"tags"`
	CreatedBy  string            `json:"created_by" db:"created_by"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" db:"updated_at"`

	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	DeletedBy      *string    `json:"deleted_by,omitempty" db:"deleted_by"`
	DeletionReason *string    `json:"deletion_reason,omitempty" db:"deletion_reason"`
}

// DisplayName returns the human-readable name of the client, whichever
// identity variant is set.
func (c *Client) DisplayName() string {
	switch c.Type {
	case ClientTypeBusiness:
		if c.Business != nil {
			return c.Business.CompanyName
		}
	case ClientTypeIndividual:
		if c.Individual != nil {
			return c.Individual.FirstName + " " + c.Individual.LastName
		}
	}
	return c.ID
}

// IsDeleted reports whether the record is soft-deleted.
func (c *Client) IsDeleted() bool {
	return c.DeletedAt != nil
}

// HasTag reports whether the client carries the given tag.
func (c *Client) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
