package service

import (
	"context"
	"errors"
	"testing"

	"freightdesk/internal/domain"
	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/services"
)

func TestFolderService_CreateFolder(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("folders@example.net"))

	t.Run("defaults", func(t *testing.T) {
		folder, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{
			ClientID:  client.ID,
			Reference: "FD-2025-0042",
		}, "op-1")
		if err != nil {
			t.Fatalf("CreateFolder() error = %v", err)
		}
		if folder.Status != models.FolderActive {
			t.Errorf("Status = %s, want active", folder.Status)
		}
		if folder.Priority != models.PriorityNormal {
			t.Errorf("Priority = %s, want normal", folder.Priority)
		}
		if folder.CreatedBy != "op-1" {
			t.Errorf("CreatedBy = %s, want op-1", folder.CreatedBy)
		}
	})

	t.Run("missing reference", func(t *testing.T) {
		_, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{
			ClientID: client.ID,
		}, "op-1")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("unknown owning client", func(t *testing.T) {
		_, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{
			ClientID:  "c0ffee00-0000-0000-0000-000000000000",
			Reference: "FD-2025-0043",
		}, "op-1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("soft-deleted owner rejects creation", func(t *testing.T) {
		victim := env.mustCreateClient(t, validIndividualReq("gone@example.net"))
		if _, err := env.clients.Delete(ctx, &services.DeleteClientRequest{
			ClientID: victim.ID,
			ActorID:  "op-1",
		}); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		_, err := env.folders.CreateFolder(ctx, &services.CreateFolderRequest{
			ClientID:  victim.ID,
			Reference: "FD-2025-0044",
		}, "op-1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestFolderService_ListByClient(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("folder-list@example.net"))
	env.mustCreateFolder(t, client.ID, "FD-1")
	second := env.mustCreateFolder(t, client.ID, "FD-2")
	if err := env.folderRepo.UpdateStatus(ctx, second.ID, models.FolderCompleted); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	all, err := env.folders.ListByClient(ctx, client.ID, nil)
	if err != nil {
		t.Fatalf("ListByClient() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}

	completed := models.FolderCompleted
	byStatus, err := env.folders.ListByClient(ctx, client.ID, &completed)
	if err != nil {
		t.Fatalf("ListByClient() error = %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != second.ID {
		t.Errorf("byStatus = %+v, want only the completed folder", byStatus)
	}

	bad := models.FolderStatus("limbo")
	if _, err := env.folders.ListByClient(ctx, client.ID, &bad); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
