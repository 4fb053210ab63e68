package repositories

import (
	"context"
	"time"

	"freightdesk/internal/domain/models"
)

// ClientFilter narrows List queries. Nil/empty fields are ignored.
// Soft-deleted records are always excluded from List results.
type ClientFilter struct {
	Status *models.ClientStatus
	Type   *models.ClientType
	Tag    *string
	Limit  int
	Offset int
}

// ClientRepository defines data access operations for clients.
type ClientRepository interface {
	// Create persists a new client. The record's ID must be set by the
	// caller. Returns a duplicate error on unique-index violation.
	Create(ctx context.Context, client *models.Client) error

	// GetByID retrieves a client by ID. Soft-deleted records are
	// excluded unless includeDeleted is true.
	GetByID(ctx context.Context, id string, includeDeleted bool) (*models.Client, error)

	// List returns non-deleted clients matching the filter.
	List(ctx context.Context, filter ClientFilter) ([]models.Client, error)

	// FindByEmail finds a non-deleted client by contact email,
	// case-insensitively. Returns (nil, nil) when no match exists.
	FindByEmail(ctx context.Context, email string) (*models.Client, error)

	// FindByRegistrationNumber finds a non-deleted business client by
	// registration number. Returns (nil, nil) when no match exists.
	FindByRegistrationNumber(ctx context.Context, registrationNumber string) (*models.Client, error)

	// Update writes the full record back, matching only rows where
	// deleted_at IS NULL. Zero rows matched means not found.
	Update(ctx context.Context, client *models.Client) error

	// SoftDelete marks the record deleted. Zero rows matched means not
	// found (or already soft-deleted).
	SoftDelete(ctx context.Context, id, deletedBy, reason string, at time.Time) error

	// HardDelete physically removes the record.
	HardDelete(ctx context.Context, id string) error

	// Restore clears the soft-delete fields and sets the given status.
	// Zero rows matched means the record is missing or not soft-deleted.
	Restore(ctx context.Context, id string, status models.ClientStatus) error
}
