package services

import (
	"context"

	"freightdesk/internal/domain/models"
)

// FolderService handles folder business logic. Folders are created
// against existing, non-deleted clients; their cascade handling on
// client deletion lives in ClientService.
type FolderService interface {
	// CreateFolder creates a new folder for an existing client.
	CreateFolder(ctx context.Context, req *CreateFolderRequest, actorID string) (*models.Folder, error)

	// GetFolder retrieves a folder by ID.
	GetFolder(ctx context.Context, id string) (*models.Folder, error)

	// ListByClient lists a client's folders, optionally by status.
	ListByClient(ctx context.Context, clientID string, status *models.FolderStatus) ([]models.Folder, error)
}

// CreateFolderRequest represents a folder creation request.
type CreateFolderRequest struct {
	ClientID  string              `json:"client_id"`
	Reference string              `json:"reference"`
	Status    models.FolderStatus `json:"status,omitempty"`
	Priority  models.Priority     `json:"priority,omitempty"`
}
