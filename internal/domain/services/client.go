package services

import (
	"context"
	"time"

	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/repositories"
)

// ClientService handles single-client lifecycle operations. Callers
// are expected to run the ClientValidator before Create/Update; the
// service enforces only store-level and lifecycle constraints itself.
type ClientService interface {
	// Create persists a new client with documented commercial defaults.
	Create(ctx context.Context, req *CreateClientRequest, actorID string) (*models.Client, error)

	// GetByID returns the client, excluding soft-deleted records.
	GetByID(ctx context.Context, id string) (*models.Client, error)

	// List returns non-deleted clients matching the filter.
	List(ctx context.Context, filter repositories.ClientFilter) ([]models.Client, error)

	// Update applies a partial deep-merge update to a non-deleted client.
	Update(ctx context.Context, id string, req *UpdateClientRequest) (*models.Client, error)

	// Delete removes a client, resolving dependent folders first.
	Delete(ctx context.Context, req *DeleteClientRequest) (*DeletionResult, error)

	// Restore clears the soft-delete fields of a soft-deleted client.
	Restore(ctx context.Context, id string) (*models.Client, error)

	// GetStatistics aggregates folder counts and commercial figures.
	GetStatistics(ctx context.Context, id string) (*ClientStatistics, error)
}

// CreateClientRequest is the input for client creation. Commercial
// fields left at zero values receive documented defaults; history is
// always zeroed server-side.
type CreateClientRequest struct {
	Type       models.ClientType      `json:"client_type"`
	Individual *models.IndividualInfo `json:"individual_info,omitempty"`
	Business   *models.BusinessInfo   `json:"business_info,omitempty"`
	Contact    models.ContactInfo     `json:"contact_info"`
	Commercial *CommercialInfoPatch   `json:"commercial_info,omitempty"`
	Tags       []string               `json:"tags,omitempty"`
}

// UpdateClientRequest is a partial update. Nil fields are left
// untouched; nested patches merge key-by-key.
type UpdateClientRequest struct {
	Individual *IndividualInfoPatch `json:"individual_info,omitempty"`
	Business   *BusinessInfoPatch   `json:"business_info,omitempty"`
	Contact    *ContactInfoPatch    `json:"contact_info,omitempty"`
	Commercial *CommercialInfoPatch `json:"commercial_info,omitempty"`
	Status     *models.ClientStatus `json:"status,omitempty"`
	Tags       *[]string            `json:"tags,omitempty"`
}

// IndividualInfoPatch carries partial individual fields.
type IndividualInfoPatch struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Title       *string `json:"title,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}

// BusinessInfoPatch carries partial business fields.
type BusinessInfoPatch struct {
	CompanyName        *string `json:"company_name,omitempty"`
	RegistrationNumber *string `json:"registration_number,omitempty"`
	VATNumber          *string `json:"vat_number,omitempty"`
	Industry           *string `json:"industry,omitempty"`
	Website            *string `json:"website,omitempty"`
}

// ContactInfoPatch carries partial contact fields.
type ContactInfoPatch struct {
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	ContactType *string `json:"contact_type,omitempty"`
	AddressLine *string `json:"address_line,omitempty"`
	City        *string `json:"city,omitempty"`
	PostalCode  *string `json:"postal_code,omitempty"`
	Country     *string `json:"country,omitempty"`
}

// CommercialInfoPatch carries partial commercial fields.
type CommercialInfoPatch struct {
	CreditLimit       *float64             `json:"credit_limit,omitempty"`
	Currency          *string              `json:"currency,omitempty"`
	PaymentTermsDays  *int                 `json:"payment_terms_days,omitempty"`
	PaymentTerms      *models.PaymentTerms `json:"payment_terms,omitempty"`
	PaymentMethods    *[]string            `json:"payment_methods,omitempty"`
	PreferredLanguage *string              `json:"preferred_language,omitempty"`
	Priority          *models.Priority     `json:"priority,omitempty"`
	RiskLevel         *models.RiskLevel    `json:"risk_level,omitempty"`
}

// DeletionType selects soft (recoverable) or hard (physical) deletion.
type DeletionType string

const (
	DeletionSoft DeletionType = "soft"
	DeletionHard DeletionType = "hard"
)

// FolderHandling selects the cascade applied to active folders when a
// forced deletion proceeds.
type FolderHandling string

const (
	FolderHandlingArchive  FolderHandling = "archive"
	FolderHandlingTransfer FolderHandling = "transfer"
)

// DeleteClientRequest describes one client deletion.
type DeleteClientRequest struct {
	ClientID           string         `json:"client_id"`
	DeletionType       DeletionType   `json:"deletion_type"`
	Reason             string         `json:"reason,omitempty"`
	ActorID            string         `json:"-"`
	Force              bool           `json:"force,omitempty"`
	HandleFolders      FolderHandling `json:"handle_folders,omitempty"`
	TransferToClientID string         `json:"transfer_to_client_id,omitempty"`
}

// DeletionResult reports what a deletion actually did. FolderActions
// lists exactly the cascade writes that were applied; a partial
// cascade failure leaves a shorter list, not a rollback.
type DeletionResult struct {
	Success              bool                  `json:"success"`
	DeletionType         DeletionType          `json:"deletion_type"`
	AffectedFoldersCount int                   `json:"affected_folders_count"`
	FolderActions        []models.FolderAction `json:"folder_actions,omitempty"`
	DeletedAt            *time.Time            `json:"deleted_at,omitempty"`
}

// ClientStatistics aggregates folder and commercial figures for one client.
type ClientStatistics struct {
	ClientID                string                      `json:"client_id"`
	FolderCounts            map[models.FolderStatus]int `json:"folder_counts"`
	TotalFolders            int                         `json:"total_folders"`
	TotalOrdersAmount       float64                     `json:"total_orders_amount"`
	TotalOrdersCount        int                         `json:"total_orders_count"`
	CurrentBalance          float64                     `json:"current_balance"`
	AvailableCredit         float64                     `json:"available_credit"`
	AveragePaymentDelayDays float64                     `json:"average_payment_delay_days"`
}
