package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"freightdesk/internal/domain"
	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/repositories"
	"freightdesk/internal/domain/services"
)

type folderService struct {
	folderRepo repositories.FolderRepository
	clientRepo repositories.ClientRepository
	logger     *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(
	folderRepo repositories.FolderRepository,
	clientRepo repositories.ClientRepository,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		clientRepo: clientRepo,
		logger:     logger,
	}
}

// CreateFolder creates a new folder for an existing, non-deleted client.
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest, actorID string) (*models.Folder, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Owning client must exist and not be soft-deleted
	if _, err := s.clientRepo.GetByID(ctx, req.ClientID, false); err != nil {
		return nil, fmt.Errorf("owning client: %w", err)
	}

	status := req.Status
	if status == "" {
		status = models.FolderActive
	}
	if !models.ValidFolderStatus(status) {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unknown folder status %q", status),
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	now := time.Now()
	folder := &models.Folder{
		ID:        uuid.NewString(),
		ClientID:  req.ClientID,
		Reference: req.Reference,
		Status:    status,
		Priority:  priority,
		CreatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"client_id", folder.ClientID,
		"reference", folder.Reference,
		"status", folder.Status,
	)

	return folder, nil
}

// GetFolder retrieves a folder by ID.
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// ListByClient lists a client's folders, optionally narrowed to one status.
func (s *folderService) ListByClient(ctx context.Context, clientID string, status *models.FolderStatus) ([]models.Folder, error) {
	if status != nil && !models.ValidFolderStatus(*status) {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unknown folder status %q", *status),
		}
	}
	return s.folderRepo.ListByClient(ctx, clientID, status)
}

func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ClientID, validation.Required),
		validation.Field(&req.Reference, validation.Required, validation.Length(1, 255)),
	)
}
