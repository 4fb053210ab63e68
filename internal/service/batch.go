package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"freightdesk/internal/config"
	"freightdesk/internal/domain"
	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/services"
)

type batchService struct {
	clients   services.ClientService
	validator services.ClientValidator
	logger    *slog.Logger
	chunkSize int
}

// NewBatchService creates the batch orchestrator. It is the only
// multi-record caller of the client service; every item is attempted
// independently and one item's failure never touches the others.
func NewBatchService(
	clients services.ClientService,
	validator services.ClientValidator,
	logger *slog.Logger,
) services.BatchService {
	return &batchService{
		clients:   clients,
		validator: validator,
		logger:    logger,
		chunkSize: config.MaxBatchSize,
	}
}

// itemFunc attempts one batch item and returns its outcome.
type itemFunc func(ctx context.Context, index int) models.BatchOperationResult

// run drives the sequential item loop shared by every batch kind.
//
// Oversized batches are not rejected; they are processed in fixed-size
// chunks of chunkSize with a warning on the result. The same rule
// applies to every operation kind. Cancellation is cooperative: it is
// checked once per item boundary, so an in-flight item always finishes
// and is never rolled back. Items never attempted appear in neither
// result list.
func (s *batchService) run(ctx context.Context, opType models.BatchOperationType, total int, opts *services.BatchOptions, process itemFunc) *models.BatchResult {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := &models.BatchResult{
		SuccessfulOperations: []models.BatchOperationResult{},
		FailedOperations:     []models.BatchOperationResult{},
	}

	if total > s.chunkSize {
		chunks := (total + s.chunkSize - 1) / s.chunkSize
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("batch of %d items processed in %d chunks of %d", total, chunks, s.chunkSize))
		s.logger.Debug("batch exceeds chunk size",
			"operation", opType,
			"total", total,
			"chunks", chunks,
		)
	}

	completed := 0
	for i := 0; i < total; i++ {
		if runCtx.Err() != nil {
			result.Cancelled = true
			break
		}

		itemResult := process(runCtx, i)
		if itemResult.Status == models.BatchItemSuccess {
			result.SuccessfulOperations = append(result.SuccessfulOperations, itemResult)
		} else {
			result.FailedOperations = append(result.FailedOperations, itemResult)
		}
		completed++

		if opts != nil && opts.Progress != nil {
			opts.Progress(models.Progress{
				Completed:  completed,
				Total:      total,
				Percentage: completed * 100 / total,
				Cancel:     cancel,
			})
		}
	}

	result.SuccessfulCount = len(result.SuccessfulOperations)
	result.FailedCount = len(result.FailedOperations)
	result.TotalProcessed = completed
	result.Success = result.FailedCount == 0

	s.logger.Info("batch finished",
		"operation", opType,
		"total", total,
		"processed", completed,
		"succeeded", result.SuccessfulCount,
		"failed", result.FailedCount,
		"cancelled", result.Cancelled,
	)

	return result
}

// BatchCreate validates and creates many clients.
func (s *batchService) BatchCreate(ctx context.Context, items []*services.CreateClientRequest, actorID string, opts *services.BatchOptions) (*models.BatchResult, error) {
	if len(items) == 0 {
		return nil, &domain.ValidationError{Message: "batch create: item list is empty"}
	}

	result := s.run(ctx, models.BatchCreate, len(items), opts, func(ctx context.Context, i int) models.BatchOperationResult {
		item := items[i]
		if item == nil {
			return failedItem(models.BatchCreate, "", nil, errors.New("item is null"), nil)
		}

		vr, err := s.validator.ValidateClientData(ctx, item, nil)
		if err != nil {
			return failedItem(models.BatchCreate, "", item, err, nil)
		}
		if !vr.IsValid {
			return failedItem(models.BatchCreate, "", item,
				errors.New("validation failed"), vr.Errors)
		}

		client, err := s.clients.Create(ctx, item, actorID)
		if err != nil {
			return failedItem(models.BatchCreate, "", item, err, nil)
		}
		return successItem(models.BatchCreate, client.ID, item)
	})

	return result, nil
}

// BatchUpdate applies partial updates to many clients.
func (s *batchService) BatchUpdate(ctx context.Context, items []services.BatchUpdateItem, opts *services.BatchOptions) (*models.BatchResult, error) {
	if len(items) == 0 {
		return nil, &domain.ValidationError{Message: "batch update: item list is empty"}
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ClientID
	}
	if err := validateEnvelopeIDs("batch update", ids); err != nil {
		return nil, err
	}

	result := s.run(ctx, models.BatchUpdate, len(items), opts, func(ctx context.Context, i int) models.BatchOperationResult {
		item := items[i]
		if item.Data == nil {
			return failedItem(models.BatchUpdate, item.ClientID, item, errors.New("update data is null"), nil)
		}

		current, err := s.clients.GetByID(ctx, item.ClientID)
		if err != nil {
			return failedItem(models.BatchUpdate, item.ClientID, item, err, nil)
		}

		vr, err := s.validator.ValidateUpdate(ctx, current, item.Data)
		if err != nil {
			return failedItem(models.BatchUpdate, item.ClientID, item, err, nil)
		}
		if !vr.IsValid {
			return failedItem(models.BatchUpdate, item.ClientID, item,
				errors.New("validation failed"), vr.Errors)
		}

		if _, err := s.clients.Update(ctx, item.ClientID, item.Data); err != nil {
			return failedItem(models.BatchUpdate, item.ClientID, item, err, nil)
		}
		return successItem(models.BatchUpdate, item.ClientID, item)
	})

	return result, nil
}

// BatchDelete deletes many clients with shared deletion parameters.
// Folder handling applies per client; a transfer target is shared by
// every transferred folder in the call.
func (s *batchService) BatchDelete(ctx context.Context, req *services.BatchDeleteRequest, opts *services.BatchOptions) (*models.BatchResult, error) {
	if req == nil || len(req.ClientIDs) == 0 {
		return nil, &domain.ValidationError{Message: "batch delete: id list is empty"}
	}
	if err := validateEnvelopeIDs("batch delete", req.ClientIDs); err != nil {
		return nil, err
	}
	switch req.DeletionType {
	case services.DeletionSoft, services.DeletionHard, "":
	default:
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("batch delete: unknown deletion_type %q", req.DeletionType),
		}
	}
	if req.HandleFolders == services.FolderHandlingTransfer {
		if req.TransferToClientID == "" {
			return nil, &domain.ValidationError{
				Message: "batch delete: transfer_to_client_id is required when handle_folders is transfer",
			}
		}
		if _, err := uuid.Parse(req.TransferToClientID); err != nil {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("batch delete: malformed transfer_to_client_id %q", req.TransferToClientID),
			}
		}
	}

	result := s.run(ctx, models.BatchDelete, len(req.ClientIDs), opts, func(ctx context.Context, i int) models.BatchOperationResult {
		id := req.ClientIDs[i]
		deletion, err := s.clients.Delete(ctx, &services.DeleteClientRequest{
			ClientID:           id,
			DeletionType:       req.DeletionType,
			Reason:             req.Reason,
			ActorID:            req.ActorID,
			Force:              req.Force,
			HandleFolders:      req.HandleFolders,
			TransferToClientID: req.TransferToClientID,
		})
		if err != nil {
			return failedItem(models.BatchDelete, id, id, err, nil)
		}
		item := successItem(models.BatchDelete, id, id)
		item.FolderActions = deletion.FolderActions
		return item
	})

	return result, nil
}

// BatchUpdateTags applies a set-union, set-difference or full
// replacement of tags to many clients. Re-applying the same call is a
// no-op: adding a present tag and removing an absent one both succeed
// without changing the set.
func (s *batchService) BatchUpdateTags(ctx context.Context, clientIDs []string, mode services.TagMode, tags []string, opts *services.BatchOptions) (*models.BatchResult, error) {
	if len(clientIDs) == 0 {
		return nil, &domain.ValidationError{Message: "batch tags: id list is empty"}
	}
	if err := validateEnvelopeIDs("batch tags", clientIDs); err != nil {
		return nil, err
	}

	var opType models.BatchOperationType
	switch mode {
	case services.TagAdd:
		opType = models.BatchAddTags
	case services.TagRemove:
		opType = models.BatchRemoveTags
	case services.TagReplace:
		opType = models.BatchReplaceTags
	default:
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("batch tags: unknown mode %q", mode),
		}
	}
	// Replace with an empty list clears every tag; add/remove with an
	// empty list has nothing to do.
	if len(tags) == 0 && mode != services.TagReplace {
		return nil, &domain.ValidationError{Message: "batch tags: tag list is empty"}
	}

	result := s.run(ctx, opType, len(clientIDs), opts, func(ctx context.Context, i int) models.BatchOperationResult {
		id := clientIDs[i]
		client, err := s.clients.GetByID(ctx, id)
		if err != nil {
			return failedItem(opType, id, id, err, nil)
		}

		newTags := applyTagMode(client.Tags, mode, tags)
		if _, err := s.clients.Update(ctx, id, &services.UpdateClientRequest{Tags: &newTags}); err != nil {
			return failedItem(opType, id, id, err, nil)
		}
		return successItem(opType, id, id)
	})

	return result, nil
}

// BatchUpdateStatus moves many clients through the status transition
// machine. Transition validity depends on each client's current
// status, so it is checked per item, never for the whole envelope.
func (s *batchService) BatchUpdateStatus(ctx context.Context, clientIDs []string, status models.ClientStatus, opts *services.BatchOptions) (*models.BatchResult, error) {
	if len(clientIDs) == 0 {
		return nil, &domain.ValidationError{Message: "batch status: id list is empty"}
	}
	if err := validateEnvelopeIDs("batch status", clientIDs); err != nil {
		return nil, err
	}
	if !models.ValidClientStatus(status) {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("batch status: unknown status %q", status),
		}
	}

	result := s.run(ctx, models.BatchUpdateStatus, len(clientIDs), opts, func(ctx context.Context, i int) models.BatchOperationResult {
		id := clientIDs[i]
		current, err := s.clients.GetByID(ctx, id)
		if err != nil {
			return failedItem(models.BatchUpdateStatus, id, id, err, nil)
		}

		patch := &services.UpdateClientRequest{Status: &status}
		if issues := s.validator.ValidateUpdateConstraints(current, patch); len(issues) > 0 {
			return failedItem(models.BatchUpdateStatus, id, id,
				errors.New("invalid status transition"), issues)
		}

		if _, err := s.clients.Update(ctx, id, patch); err != nil {
			return failedItem(models.BatchUpdateStatus, id, id, err, nil)
		}
		return successItem(models.BatchUpdateStatus, id, id)
	})

	return result, nil
}

// applyTagMode computes the new tag set without mutating the current one.
func applyTagMode(current []string, mode services.TagMode, tags []string) []string {
	switch mode {
	case services.TagAdd:
		out := append([]string(nil), current...)
		for _, tag := range tags {
			present := false
			for _, existing := range out {
				if existing == tag {
					present = true
					break
				}
			}
			if !present {
				out = append(out, tag)
			}
		}
		return out
	case services.TagRemove:
		remove := make(map[string]struct{}, len(tags))
		for _, tag := range tags {
			remove[tag] = struct{}{}
		}
		out := make([]string, 0, len(current))
		for _, existing := range current {
			if _, drop := remove[existing]; !drop {
				out = append(out, existing)
			}
		}
		return out
	default: // TagReplace
		return normalizeTags(tags)
	}
}

// validateEnvelopeIDs rejects the whole batch when any id is
// ill-formed; with a malformed id, per-item error attribution would be
// ambiguous.
func validateEnvelopeIDs(operation string, ids []string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return &domain.ValidationError{
				Message: fmt.Sprintf("%s: malformed client id %q", operation, id),
			}
		}
	}
	return nil
}

func successItem(opType models.BatchOperationType, clientID string, input any) models.BatchOperationResult {
	return models.BatchOperationResult{
		ID:            uuid.NewString(),
		OperationType: opType,
		Status:        models.BatchItemSuccess,
		ClientID:      clientID,
		InputData:     input,
		Timestamp:     time.Now(),
	}
}

func failedItem(opType models.BatchOperationType, clientID string, input any, err error, issues []models.ValidationIssue) models.BatchOperationResult {
	return models.BatchOperationResult{
		ID:            uuid.NewString(),
		OperationType: opType,
		Status:        models.BatchItemError,
		ClientID:      clientID,
		Error:         err.Error(),
		ErrorDetails:  issues,
		InputData:     input,
		Timestamp:     time.Now(),
	}
}
