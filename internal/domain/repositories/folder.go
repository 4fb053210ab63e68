package repositories

import (
	"context"

	"freightdesk/internal/domain/models"
)

// FolderRepository defines data access operations for folders.
type FolderRepository interface {
	// Create persists a new folder.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID.
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// ListByClient lists a client's folders, optionally narrowed to one
	// status.
	ListByClient(ctx context.Context, clientID string, status *models.FolderStatus) ([]models.Folder, error)

	// CountActiveByClient counts the client's folders with status active.
	CountActiveByClient(ctx context.Context, clientID string) (int, error)

	// StatusCounts returns the client's folder counts grouped by status.
	StatusCounts(ctx context.Context, clientID string) (map[models.FolderStatus]int, error)

	// UpdateStatus sets a single folder's status.
	UpdateStatus(ctx context.Context, id string, status models.FolderStatus) error

	// Reassign re-points a single folder at another client.
	Reassign(ctx context.Context, id, newClientID string) error
}
