package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"freightdesk/internal/domain"
	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/repositories"
	"freightdesk/internal/domain/services"
)

type clientService struct {
	clientRepo repositories.ClientRepository
	folderRepo repositories.FolderRepository
	logger     *slog.Logger
}

// NewClientService creates the single-client lifecycle service.
func NewClientService(
	clientRepo repositories.ClientRepository,
	folderRepo repositories.FolderRepository,
	logger *slog.Logger,
) services.ClientService {
	return &clientService{
		clientRepo: clientRepo,
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// defaultCommercialInfo returns the documented commercial defaults for
// a new client.
func defaultCommercialInfo() models.CommercialInfo {
	return models.CommercialInfo{
		CreditLimit:       0,
		Currency:          "EUR",
		PaymentTermsDays:  30,
		PaymentTerms:      models.PaymentTermsNet30,
		PaymentMethods:    []string{"bank_transfer"},
		PreferredLanguage: "fr",
		Priority:          models.PriorityNormal,
		RiskLevel:         models.RiskLow,
	}
}

// applyCommercialPatch merges non-nil patch fields into info, key by key.
func applyCommercialPatch(info *models.CommercialInfo, patch *services.CommercialInfoPatch) {
	if patch == nil {
		return
	}
	if patch.CreditLimit != nil {
		info.CreditLimit = *patch.CreditLimit
	}
	if patch.Currency != nil {
		info.Currency = *patch.Currency
	}
	if patch.PaymentTermsDays != nil {
		info.PaymentTermsDays = *patch.PaymentTermsDays
	}
	if patch.PaymentTerms != nil {
		info.PaymentTerms = *patch.PaymentTerms
	}
	if patch.PaymentMethods != nil {
		info.PaymentMethods = append([]string(nil), (*patch.PaymentMethods)...)
	}
	if patch.PreferredLanguage != nil {
		info.PreferredLanguage = *patch.PreferredLanguage
	}
	if patch.Priority != nil {
		info.Priority = *patch.Priority
	}
	if patch.RiskLevel != nil {
		info.RiskLevel = *patch.RiskLevel
	}
}

// Create persists a new client. Commercial defaults are merged in and
// the history aggregates start at zero; they are server-maintained and
// never accepted from input. Callers are expected to validate first.
func (s *clientService) Create(ctx context.Context, req *services.CreateClientRequest, actorID string) (*models.Client, error) {
	now := time.Now()

	commercial := defaultCommercialInfo()
	applyCommercialPatch(&commercial, req.Commercial)

	client := &models.Client{
		ID:         uuid.NewString(),
		Type:       req.Type,
		Individual: req.Individual,
		Business:   req.Business,
		Contact:    req.Contact,
		Commercial: commercial,
		History:    models.CommercialHistory{},
		Status:     models.StatusActive,
		Tags:       normalizeTags(req.Tags),
		CreatedBy:  actorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("client created",
		"id", client.ID,
		"client_type", client.Type,
		"name", client.DisplayName(),
		"created_by", actorID,
	)

	return client, nil
}

// GetByID returns the client; soft-deleted and missing records both
// come back as ErrNotFound.
func (s *clientService) GetByID(ctx context.Context, id string) (*models.Client, error) {
	return s.clientRepo.GetByID(ctx, id, false)
}

// List returns non-deleted clients matching the filter.
func (s *clientService) List(ctx context.Context, filter repositories.ClientFilter) ([]models.Client, error) {
	return s.clientRepo.List(ctx, filter)
}

// Update applies a partial deep-merge update: nested objects merge key
// by key, they are never replaced wholesale. Matching only rows where
// deleted_at IS NULL covers both "not found" and "is soft-deleted".
func (s *clientService) Update(ctx context.Context, id string, req *services.UpdateClientRequest) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	mergeUpdate(client, req)
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("client updated", "id", client.ID)
	return client, nil
}

// mergeUpdate folds the non-nil patch fields into the client.
func mergeUpdate(client *models.Client, req *services.UpdateClientRequest) {
	if req.Individual != nil && client.Individual != nil {
		p := req.Individual
		if p.FirstName != nil {
			client.Individual.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			client.Individual.LastName = *p.LastName
		}
		if p.Title != nil {
			client.Individual.Title = p.Title
		}
		if p.DateOfBirth != nil {
			client.Individual.DateOfBirth = p.DateOfBirth
		}
	}

	if req.Business != nil && client.Business != nil {
		p := req.Business
		if p.CompanyName != nil {
			client.Business.CompanyName = *p.CompanyName
		}
		if p.RegistrationNumber != nil {
			client.Business.RegistrationNumber = *p.RegistrationNumber
		}
		if p.VATNumber != nil {
			client.Business.VATNumber = p.VATNumber
		}
		if p.Industry != nil {
			client.Business.Industry = *p.Industry
		}
		if p.Website != nil {
			client.Business.Website = p.Website
		}
	}

	if req.Contact != nil {
		p := req.Contact
		if p.Email != nil {
			client.Contact.Email = *p.Email
		}
		if p.Phone != nil {
			client.Contact.Phone = *p.Phone
		}
		if p.ContactType != nil {
			client.Contact.ContactType = *p.ContactType
		}
		if p.AddressLine != nil {
			client.Contact.AddressLine = *p.AddressLine
		}
		if p.City != nil {
			client.Contact.City = *p.City
		}
		if p.PostalCode != nil {
			client.Contact.PostalCode = *p.PostalCode
		}
		if p.Country != nil {
			client.Contact.Country = *p.Country
		}
	}

	applyCommercialPatch(&client.Commercial, req.Commercial)

	if req.Status != nil {
		client.Status = *req.Status
	}
	if req.Tags != nil {
		client.Tags = normalizeTags(*req.Tags)
	}
}

// Delete removes a client after resolving its dependent folders.
//
// The active-folder count is a read-then-act precondition, not a
// race-free guarantee: a folder created between the check and the
// deletion write slips through under concurrent load.
func (s *clientService) Delete(ctx context.Context, req *services.DeleteClientRequest) (*services.DeletionResult, error) {
	client, err := s.clientRepo.GetByID(ctx, req.ClientID, false)
	if err != nil {
		return nil, err
	}

	activeCount, err := s.folderRepo.CountActiveByClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("count active folders: %w", err)
	}

	if activeCount > 0 && !req.Force {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("client has active folders (%d); use force with a folder handling mode", activeCount),
			ResourceType: "client",
			ResourceID:   req.ClientID,
		}
	}

	var folderActions []models.FolderAction
	if activeCount > 0 && req.Force {
		folderActions, err = s.resolveActiveFolders(ctx, client, req)
		if err != nil {
			return nil, err
		}
	}

	result := &services.DeletionResult{
		Success:              true,
		DeletionType:         req.DeletionType,
		AffectedFoldersCount: len(folderActions),
		FolderActions:        folderActions,
	}

	switch req.DeletionType {
	case services.DeletionHard:
		// Folders not already reassigned keep pointing at the gone id;
		// a known consistency gap of hard deletion.
		if err := s.clientRepo.HardDelete(ctx, req.ClientID); err != nil {
			return nil, err
		}
	case services.DeletionSoft, "":
		now := time.Now()
		if err := s.clientRepo.SoftDelete(ctx, req.ClientID, req.ActorID, req.Reason, now); err != nil {
			return nil, err
		}
		result.DeletionType = services.DeletionSoft
		result.DeletedAt = &now
	default:
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unknown deletion_type %q", req.DeletionType),
		}
	}

	s.logger.Info("client deleted",
		"id", req.ClientID,
		"deletion_type", result.DeletionType,
		"affected_folders", result.AffectedFoldersCount,
		"deleted_by", req.ActorID,
	)

	return result, nil
}

// resolveActiveFolders applies the requested cascade to the client's
// active folders. Each folder is an independent write; on a mid-cascade
// failure the returned error leaves the already-applied actions behind,
// and the caller must treat the store as the source of truth.
func (s *clientService) resolveActiveFolders(ctx context.Context, client *models.Client, req *services.DeleteClientRequest) ([]models.FolderAction, error) {
	switch req.HandleFolders {
	case "":
		// Documented escape hatch: force without a handling mode leaves
		// the folders untouched.
		return nil, nil
	case services.FolderHandlingArchive, services.FolderHandlingTransfer:
	default:
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unknown handle_folders mode %q", req.HandleFolders),
		}
	}

	if req.HandleFolders == services.FolderHandlingTransfer {
		if req.TransferToClientID == "" {
			return nil, &domain.ValidationError{
				Message: "transfer_to_client_id is required when handle_folders is transfer",
			}
		}
		if req.TransferToClientID == client.ID {
			return nil, &domain.ValidationError{
				Message: "cannot transfer folders to the client being deleted",
			}
		}
		// Target must exist and not be soft-deleted.
		if _, err := s.clientRepo.GetByID(ctx, req.TransferToClientID, false); err != nil {
			return nil, fmt.Errorf("transfer target: %w", err)
		}
	}

	active := models.FolderActive
	folders, err := s.folderRepo.ListByClient(ctx, client.ID, &active)
	if err != nil {
		return nil, fmt.Errorf("list active folders: %w", err)
	}

	var actions []models.FolderAction
	for _, folder := range folders {
		switch req.HandleFolders {
		case services.FolderHandlingArchive:
			if err := s.folderRepo.UpdateStatus(ctx, folder.ID, models.FolderArchived); err != nil {
				return actions, fmt.Errorf("archive folder %s: %w", folder.ID, err)
			}
			actions = append(actions, models.FolderAction{
				FolderID: folder.ID,
				Action:   models.FolderActionArchived,
			})
		case services.FolderHandlingTransfer:
			if err := s.folderRepo.Reassign(ctx, folder.ID, req.TransferToClientID); err != nil {
				return actions, fmt.Errorf("transfer folder %s: %w", folder.ID, err)
			}
			actions = append(actions, models.FolderAction{
				FolderID:       folder.ID,
				Action:         models.FolderActionTransferred,
				TargetClientID: req.TransferToClientID,
			})
		}
	}

	return actions, nil
}

// Restore clears the soft-delete fields of a soft-deleted client and
// parks it as inactive for review before reactivation.
func (s *clientService) Restore(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !client.IsDeleted() {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("client %s is not deleted", id),
			ResourceType: "client",
			ResourceID:   id,
		}
	}

	if err := s.clientRepo.Restore(ctx, id, models.StatusInactive); err != nil {
		return nil, err
	}

	s.logger.Info("client restored", "id", id)
	return s.clientRepo.GetByID(ctx, id, false)
}

// GetStatistics aggregates folder counts by status and commercial
// figures from the server-maintained history.
func (s *clientService) GetStatistics(ctx context.Context, id string) (*services.ClientStatistics, error) {
	client, err := s.clientRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	counts, err := s.folderRepo.StatusCounts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("folder status counts: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	return &services.ClientStatistics{
		ClientID:                id,
		FolderCounts:            counts,
		TotalFolders:            total,
		TotalOrdersAmount:       client.History.TotalOrdersAmount,
		TotalOrdersCount:        client.History.TotalOrdersCount,
		CurrentBalance:          client.History.CurrentBalance,
		AvailableCredit:         client.Commercial.CreditLimit - client.History.CurrentBalance,
		AveragePaymentDelayDays: client.History.AveragePaymentDelayDays,
	}, nil
}

// normalizeTags deduplicates tags preserving first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
