package models

import (
	"time"
)

// FolderStatus is the lifecycle status of a folder (shipment dossier).
type FolderStatus string

const (
	FolderActive              FolderStatus = "active"
	FolderPending             FolderStatus = "pending"
	FolderCompleted           FolderStatus = "completed"
	FolderArchived            FolderStatus = "archived"
	FolderPendingReassignment FolderStatus = "pending_reassignment"
)

// ValidFolderStatus reports whether s is a member of the folder status enum.
func ValidFolderStatus(s FolderStatus) bool {
	switch s {
	case FolderActive, FolderPending, FolderCompleted, FolderArchived, FolderPendingReassignment:
		return true
	}
	return false
}

// Folder is a work-item record owned by exactly one client. The
// relation is a weak back-reference: the folder points at its client,
// the client does not embed its folders.
type Folder struct {
	ID        string       `json:"id" db:"id"`
	ClientID  string       `json:"client_id" db:"client_id"`
	Reference string       `json:"reference" db:"reference"`
	Status    FolderStatus `json:"status" db:"status"`
	Priority  Priority     `json:"priority" db:"priority"`
	CreatedBy string       `json:"created_by" db:"created_by"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}
