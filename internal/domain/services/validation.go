package services

import (
	"context"

	"freightdesk/internal/domain/models"
)

// ValidateOptions tunes a ValidateClientData run.
type ValidateOptions struct {
	// SkipUniqueness disables the store-backed uniqueness check, for
	// callers that only need the pure structural rules.
	SkipUniqueness bool

	// ExcludeClientID lets an in-place update keep its own email and
	// registration number during the uniqueness check.
	ExcludeClientID string
}

// ClientValidator validates candidate client data. All data-shape
// findings come back inside the ValidationResult; the error return is
// reserved for infrastructure failures (store unreachable during a
// uniqueness check).
type ClientValidator interface {
	// ValidateClientData runs structural checks, business-rule
	// heuristics and (unless skipped) uniqueness checks.
	ValidateClientData(ctx context.Context, req *CreateClientRequest, opts *ValidateOptions) (*models.ValidationResult, error)

	// ValidateBusinessRules runs the warning-only cross-field
	// heuristics against candidate commercial data and history.
	ValidateBusinessRules(commercial *models.CommercialInfo, history *models.CommercialHistory) []models.ValidationIssue

	// CheckUniqueConstraints checks email (case-insensitive) and
	// business registration number against existing non-deleted records.
	CheckUniqueConstraints(ctx context.Context, email, registrationNumber, excludeClientID string) ([]models.ValidationIssue, error)

	// ValidateUpdateConstraints enforces the status transition machine
	// and the credit-limit-vs-balance invariant for a partial update of
	// the given current record.
	ValidateUpdateConstraints(current *models.Client, patch *UpdateClientRequest) []models.ValidationIssue

	// ValidateUpdate validates a partial update end to end: the
	// structural rules run over the record as it would look after the
	// merge, the update constraints over the transition itself, and
	// uniqueness over patched identifiers excluding the record's own.
	ValidateUpdate(ctx context.Context, current *models.Client, patch *UpdateClientRequest) (*models.ValidationResult, error)
}
