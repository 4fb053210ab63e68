package models

import (
	"time"
)

// BatchOperationType identifies the logical operation a batch applies.
type BatchOperationType string

const (
	BatchCreate       BatchOperationType = "create"
	BatchUpdate       BatchOperationType = "update"
	BatchDelete       BatchOperationType = "delete"
	BatchAddTags      BatchOperationType = "add_tags"
	BatchRemoveTags   BatchOperationType = "remove_tags"
	BatchReplaceTags  BatchOperationType = "replace_tags"
	BatchUpdateStatus BatchOperationType = "update_status"
)

// FolderActionType records what happened to a dependent folder during
// a client deletion cascade.
type FolderActionType string

const (
	FolderActionArchived    FolderActionType = "archived"
	FolderActionTransferred FolderActionType = "transferred"
	FolderActionReassigned  FolderActionType = "reassigned"
)

// FolderAction is one applied cascade side-effect. The list of actions
// in a result is the source of truth for what was actually written;
// cascades are per-folder writes, not a transaction.
type FolderAction struct {
	FolderID       string           `json:"folder_id"`
	Action         FolderActionType `json:"action"`
	TargetClientID string           `json:"target_client_id,omitempty"`
}

// BatchItemStatus is the outcome of a single batch item.
type BatchItemStatus string

const (
	BatchItemSuccess BatchItemStatus = "success"
	BatchItemError   BatchItemStatus = "error"
)

// BatchOperationResult is the per-item outcome of a batch operation.
type BatchOperationResult struct {
	ID            string             `json:"id"`
	OperationType BatchOperationType `json:"operation_type"`
	Status        BatchItemStatus    `json:"status"`
	ClientID      string             `json:"client_id,omitempty"`
	Error         string             `json:"error,omitempty"`
	ErrorDetails  []ValidationIssue  `json:"error_details,omitempty"`
	InputData     any                `json:"input_data,omitempty"`
	Timestamp     time.Time          `json:"timestamp"`
	FolderActions []FolderAction     `json:"folder_actions,omitempty"`
}

// BatchResult aggregates the per-item outcomes of one batch call.
// Items skipped because of cancellation appear in neither list.
type BatchResult struct {
	Success              bool                   `json:"success"` // true iff FailedCount == 0
	TotalProcessed       int                    `json:"total_processed"`
	SuccessfulCount      int                    `json:"successful_count"`
	FailedCount          int                    `json:"failed_count"`
	SuccessfulOperations []BatchOperationResult `json:"successful_operations"`
	FailedOperations     []BatchOperationResult `json:"failed_operations"`
	Warnings             []string               `json:"warnings,omitempty"`
	Cancelled            bool                   `json:"cancelled,omitempty"`
}

// Progress is delivered to the caller's progress callback after each
// item. Cancel stops the batch at the next item boundary; already
// applied items are never rolled back.
type Progress struct {
	Completed  int
	Total      int
	Percentage int
	Cancel     func()
}
