package services

import (
	"context"

	"freightdesk/internal/domain/models"
)

// ProgressFunc is invoked after every processed batch item. The
// Progress value carries a Cancel capability; calling it stops the
// batch at the next item boundary.
type ProgressFunc func(p models.Progress)

// BatchOptions tunes one batch call.
type BatchOptions struct {
	Progress ProgressFunc
}

// TagMode selects how a tag batch combines the given tags with each
// client's current set.
type TagMode string

const (
	TagAdd     TagMode = "add"
	TagRemove  TagMode = "remove"
	TagReplace TagMode = "replace"
)

// BatchUpdateItem pairs a target client with its partial update.
type BatchUpdateItem struct {
	ClientID string               `json:"client_id"`
	Data     *UpdateClientRequest `json:"data"`
}

// BatchDeleteRequest describes a multi-client deletion. The deletion
// parameters, including the transfer target, are shared by every id in
// the call.
type BatchDeleteRequest struct {
	ClientIDs          []string       `json:"client_ids"`
	DeletionType       DeletionType   `json:"deletion_type"`
	Reason             string         `json:"reason,omitempty"`
	ActorID            string         `json:"-"`
	Force              bool           `json:"force,omitempty"`
	HandleFolders      FolderHandling `json:"handle_folders,omitempty"`
	TransferToClientID string         `json:"transfer_to_client_id,omitempty"`
}

// BatchService drives multi-client mutations with per-item failure
// isolation: one item's failure never aborts or rolls back the others.
// Envelope-level malformation (empty list, ill-formed id, unknown
// mode) fails the whole call before any item is attempted.
type BatchService interface {
	// BatchCreate validates and creates many clients.
	BatchCreate(ctx context.Context, items []*CreateClientRequest, actorID string, opts *BatchOptions) (*models.BatchResult, error)

	// BatchUpdate applies partial updates to many clients.
	BatchUpdate(ctx context.Context, items []BatchUpdateItem, opts *BatchOptions) (*models.BatchResult, error)

	// BatchDelete deletes many clients with shared deletion parameters.
	BatchDelete(ctx context.Context, req *BatchDeleteRequest, opts *BatchOptions) (*models.BatchResult, error)

	// BatchUpdateTags applies a set-union, set-difference or full
	// replacement of tags to many clients. Idempotent per item.
	BatchUpdateTags(ctx context.Context, clientIDs []string, mode TagMode, tags []string, opts *BatchOptions) (*models.BatchResult, error)

	// BatchUpdateStatus moves many clients through the status
	// transition machine. An invalid transition is a per-item failure.
	BatchUpdateStatus(ctx context.Context, clientIDs []string, status models.ClientStatus, opts *BatchOptions) (*models.BatchResult, error)
}
