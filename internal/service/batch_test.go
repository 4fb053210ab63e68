package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"freightdesk/internal/domain"
	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/services"
)

type batchTestEnv struct {
	*clientTestEnv
	batch services.BatchService
}

func newBatchTestEnv() *batchTestEnv {
	env := newClientTestEnv()
	logger := testLogger()
	validator := NewClientValidator(env.clientRepo, logger)
	return &batchTestEnv{
		clientTestEnv: env,
		batch:         NewBatchService(env.clients, validator, logger),
	}
}

func TestBatchCreate_PartialFailureIsolation(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	items := []*services.CreateClientRequest{
		validIndividualReq("batch-1@example.net"),
		validIndividualReq("batch-2@example.net"),
		validIndividualReq("invalid-email"), // rejected by validation
		validIndividualReq("batch-3@example.net"),
	}

	result, err := env.batch.BatchCreate(ctx, items, "op-1", nil)
	if err != nil {
		t.Fatalf("BatchCreate() error = %v", err)
	}

	if result.TotalProcessed != 4 {
		t.Errorf("TotalProcessed = %d, want 4", result.TotalProcessed)
	}
	if result.SuccessfulCount != 3 {
		t.Errorf("SuccessfulCount = %d, want 3", result.SuccessfulCount)
	}
	if result.FailedCount != 1 {
		t.Errorf("FailedCount = %d, want 1", result.FailedCount)
	}
	if result.Success {
		t.Error("Success should be false with a failed item")
	}
	if result.Cancelled {
		t.Error("Cancelled should be false")
	}

	failed := result.FailedOperations[0]
	if failed.Error == "" {
		t.Error("failed item should carry a non-empty error")
	}
	if len(failed.ErrorDetails) == 0 {
		t.Error("validation failure should carry the issue list")
	}
	if !hasIssue(failed.ErrorDetails, "contact_info.email", models.CodeInvalidEmail) {
		t.Errorf("ErrorDetails = %+v, want invalid email issue", failed.ErrorDetails)
	}

	// The three valid clients were actually created
	for _, op := range result.SuccessfulOperations {
		if op.ClientID == "" {
			t.Error("successful item should carry the new client id")
			continue
		}
		if _, err := env.clients.GetByID(ctx, op.ClientID); err != nil {
			t.Errorf("created client %s not found: %v", op.ClientID, err)
		}
	}
}

func TestBatchCreate_EmptyListRejectsEnvelope(t *testing.T) {
	env := newBatchTestEnv()

	_, err := env.batch.BatchCreate(context.Background(), nil, "op-1", nil)

	var invalid *domain.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestBatchCreate_ChunkWarning(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	items := make([]*services.CreateClientRequest, 150)
	for i := range items {
		items[i] = validIndividualReq(fmt.Sprintf("bulk-%03d@example.net", i))
	}

	result, err := env.batch.BatchCreate(ctx, items, "op-1", nil)
	if err != nil {
		t.Fatalf("BatchCreate() error = %v", err)
	}

	if result.TotalProcessed != 150 || result.SuccessfulCount != 150 {
		t.Errorf("processed %d/%d, want all 150", result.SuccessfulCount, result.TotalProcessed)
	}
	if len(result.Warnings) == 0 {
		t.Error("oversized batch should carry a chunking warning")
	}
}

func TestBatchCreate_Cancellation(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	items := make([]*services.CreateClientRequest, 20)
	for i := range items {
		items[i] = validIndividualReq(fmt.Sprintf("cancel-%02d@example.net", i))
	}

	result, err := env.batch.BatchCreate(ctx, items, "op-1", &services.BatchOptions{
		Progress: func(p models.Progress) {
			if p.Completed == 5 {
				p.Cancel()
			}
		},
	})
	if err != nil {
		t.Fatalf("BatchCreate() error = %v", err)
	}

	if !result.Cancelled {
		t.Error("Cancelled should be true")
	}
	if result.TotalProcessed != 5 {
		t.Errorf("TotalProcessed = %d, want 5", result.TotalProcessed)
	}
	if got := result.SuccessfulCount + result.FailedCount; got != 5 {
		t.Errorf("accounted items = %d, want 5", got)
	}
	// Items past the cancellation point were never attempted
	if result.SuccessfulCount != 5 {
		t.Errorf("SuccessfulCount = %d, want 5", result.SuccessfulCount)
	}
}

func TestBatchCreate_ProgressReporting(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	items := []*services.CreateClientRequest{
		validIndividualReq("progress-1@example.net"),
		validIndividualReq("progress-2@example.net"),
	}

	var seen []models.Progress
	_, err := env.batch.BatchCreate(ctx, items, "op-1", &services.BatchOptions{
		Progress: func(p models.Progress) { seen = append(seen, p) },
	})
	if err != nil {
		t.Fatalf("BatchCreate() error = %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("progress calls = %d, want 2", len(seen))
	}
	if seen[0].Completed != 1 || seen[0].Total != 2 || seen[0].Percentage != 50 {
		t.Errorf("first progress = %+v, want 1/2 50%%", seen[0])
	}
	if seen[1].Completed != 2 || seen[1].Percentage != 100 {
		t.Errorf("second progress = %+v, want 2/2 100%%", seen[1])
	}
}

func TestBatchUpdate(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	a := env.mustCreateClient(t, validIndividualReq("bu-a@example.net"))
	b := env.mustCreateClient(t, validIndividualReq("bu-b@example.net"))

	city := "Nantes"
	badStatus := models.ClientStatus("dormant")

	result, err := env.batch.BatchUpdate(ctx, []services.BatchUpdateItem{
		{ClientID: a.ID, Data: &services.UpdateClientRequest{
			Contact: &services.ContactInfoPatch{City: &city},
		}},
		{ClientID: b.ID, Data: &services.UpdateClientRequest{Status: &badStatus}},
	}, nil)
	if err != nil {
		t.Fatalf("BatchUpdate() error = %v", err)
	}

	if result.SuccessfulCount != 1 || result.FailedCount != 1 {
		t.Fatalf("counts = %d/%d, want 1 success 1 failure", result.SuccessfulCount, result.FailedCount)
	}
	if !hasIssue(result.FailedOperations[0].ErrorDetails, "status", models.CodeInvalidEnumValue) {
		t.Errorf("ErrorDetails = %+v, want status enum issue", result.FailedOperations[0].ErrorDetails)
	}

	updated, err := env.clients.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if updated.Contact.City != "Nantes" {
		t.Errorf("City = %s, want Nantes", updated.Contact.City)
	}
}

func TestBatchUpdate_MalformedIDRejectsEnvelope(t *testing.T) {
	env := newBatchTestEnv()

	city := "Nice"
	_, err := env.batch.BatchUpdate(context.Background(), []services.BatchUpdateItem{
		{ClientID: "not-a-uuid", Data: &services.UpdateClientRequest{
			Contact: &services.ContactInfoPatch{City: &city},
		}},
	}, nil)

	var invalid *domain.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestBatchUpdate_MalformedEmailFailsItem(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("bu-mail@example.net"))

	badEmail := "invalid-email"
	result, err := env.batch.BatchUpdate(ctx, []services.BatchUpdateItem{
		{ClientID: client.ID, Data: &services.UpdateClientRequest{
			Contact: &services.ContactInfoPatch{Email: &badEmail},
		}},
	}, nil)
	if err != nil {
		t.Fatalf("BatchUpdate() error = %v", err)
	}

	if result.Success || result.FailedCount != 1 {
		t.Fatalf("result = %+v, want one failed item", result)
	}
	if !hasIssue(result.FailedOperations[0].ErrorDetails, "contact_info.email", models.CodeInvalidEmail) {
		t.Errorf("ErrorDetails = %+v, want invalid email issue", result.FailedOperations[0].ErrorDetails)
	}

	// The malformed value was never written
	stored, err := env.clients.GetByID(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Contact.Email != "bu-mail@example.net" {
		t.Errorf("Email = %s, want the original address", stored.Contact.Email)
	}
}

func TestBatchUpdate_DuplicateEmailPerItem(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	a := env.mustCreateClient(t, validIndividualReq("dup-a@example.net"))
	env.mustCreateClient(t, validIndividualReq("dup-b@example.net"))

	takenEmail := "dup-b@example.net"
	result, err := env.batch.BatchUpdate(ctx, []services.BatchUpdateItem{
		{ClientID: a.ID, Data: &services.UpdateClientRequest{
			Contact: &services.ContactInfoPatch{Email: &takenEmail},
		}},
	}, nil)
	if err != nil {
		t.Fatalf("BatchUpdate() error = %v", err)
	}

	if result.FailedCount != 1 {
		t.Fatalf("FailedCount = %d, want 1", result.FailedCount)
	}
	if !hasIssue(result.FailedOperations[0].ErrorDetails, "contact_info.email", models.CodeDuplicateValue) {
		t.Errorf("ErrorDetails = %+v, want duplicate email issue", result.FailedOperations[0].ErrorDetails)
	}
}

func TestBatchDelete(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	a := env.mustCreateClient(t, validIndividualReq("bd-a@example.net"))
	b := env.mustCreateClient(t, validIndividualReq("bd-b@example.net"))
	blocked := env.mustCreateClient(t, validIndividualReq("bd-blocked@example.net"))
	env.mustCreateFolder(t, blocked.ID, "FD-0100")

	result, err := env.batch.BatchDelete(ctx, &services.BatchDeleteRequest{
		ClientIDs:    []string{a.ID, b.ID, blocked.ID},
		DeletionType: services.DeletionSoft,
		ActorID:      "op-1",
	}, nil)
	if err != nil {
		t.Fatalf("BatchDelete() error = %v", err)
	}

	if result.SuccessfulCount != 2 || result.FailedCount != 1 {
		t.Fatalf("counts = %d/%d, want 2 success 1 failure", result.SuccessfulCount, result.FailedCount)
	}
	if result.FailedOperations[0].ClientID != blocked.ID {
		t.Errorf("failed id = %s, want %s", result.FailedOperations[0].ClientID, blocked.ID)
	}

	// Blocked client survives its own failure
	if _, err := env.clients.GetByID(ctx, blocked.ID); err != nil {
		t.Errorf("blocked client should survive, got %v", err)
	}
	// Others are gone from normal scope
	if _, err := env.clients.GetByID(ctx, a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected a soft-deleted, got %v", err)
	}
}

func TestBatchDelete_ForceTransferRecordsFolderActions(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	source := env.mustCreateClient(t, validIndividualReq("bdt-src@example.net"))
	target := env.mustCreateClient(t, validIndividualReq("bdt-dst@example.net"))
	folder := env.mustCreateFolder(t, source.ID, "FD-0101")

	result, err := env.batch.BatchDelete(ctx, &services.BatchDeleteRequest{
		ClientIDs:          []string{source.ID},
		DeletionType:       services.DeletionSoft,
		ActorID:            "op-1",
		Force:              true,
		HandleFolders:      services.FolderHandlingTransfer,
		TransferToClientID: target.ID,
	}, nil)
	if err != nil {
		t.Fatalf("BatchDelete() error = %v", err)
	}

	if result.SuccessfulCount != 1 {
		t.Fatalf("SuccessfulCount = %d, want 1", result.SuccessfulCount)
	}
	actions := result.SuccessfulOperations[0].FolderActions
	if len(actions) != 1 || actions[0].FolderID != folder.ID || actions[0].TargetClientID != target.ID {
		t.Errorf("FolderActions = %+v, want transfer of %s to %s", actions, folder.ID, target.ID)
	}
}

func TestBatchDelete_EnvelopeValidation(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("bde@example.net"))

	tests := []struct {
		name string
		req  *services.BatchDeleteRequest
	}{
		{"empty id list", &services.BatchDeleteRequest{}},
		{"malformed id", &services.BatchDeleteRequest{ClientIDs: []string{"nope"}}},
		{
			"unknown deletion type",
			&services.BatchDeleteRequest{ClientIDs: []string{client.ID}, DeletionType: "purge"},
		},
		{
			"transfer without target",
			&services.BatchDeleteRequest{
				ClientIDs:     []string{client.ID},
				Force:         true,
				HandleFolders: services.FolderHandlingTransfer,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.batch.BatchDelete(ctx, tt.req, nil)
			var invalid *domain.ValidationError
			if !errors.As(err, &invalid) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestBatchUpdateTags(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("tags@example.net"))

	assertTags := func(t *testing.T, want []string) {
		t.Helper()
		got, err := env.clients.GetByID(ctx, client.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if len(got.Tags) != len(want) {
			t.Fatalf("Tags = %v, want %v", got.Tags, want)
		}
		for i := range want {
			if got.Tags[i] != want[i] {
				t.Errorf("Tags[%d] = %s, want %s", i, got.Tags[i], want[i])
			}
		}
	}

	t.Run("add", func(t *testing.T) {
		result, err := env.batch.BatchUpdateTags(ctx, []string{client.ID}, services.TagAdd, []string{"vip", "road"}, nil)
		if err != nil {
			t.Fatalf("BatchUpdateTags() error = %v", err)
		}
		if !result.Success {
			t.Fatalf("result = %+v, want success", result)
		}
		assertTags(t, []string{"vip", "road"})
	})

	t.Run("add is idempotent", func(t *testing.T) {
		if _, err := env.batch.BatchUpdateTags(ctx, []string{client.ID}, services.TagAdd, []string{"vip"}, nil); err != nil {
			t.Fatalf("BatchUpdateTags() error = %v", err)
		}
		assertTags(t, []string{"vip", "road"})
	})

	t.Run("remove absent tag succeeds without change", func(t *testing.T) {
		result, err := env.batch.BatchUpdateTags(ctx, []string{client.ID}, services.TagRemove, []string{"sea"}, nil)
		if err != nil {
			t.Fatalf("BatchUpdateTags() error = %v", err)
		}
		if !result.Success {
			t.Fatalf("result = %+v, want success", result)
		}
		assertTags(t, []string{"vip", "road"})
	})

	t.Run("remove", func(t *testing.T) {
		if _, err := env.batch.BatchUpdateTags(ctx, []string{client.ID}, services.TagRemove, []string{"vip"}, nil); err != nil {
			t.Fatalf("BatchUpdateTags() error = %v", err)
		}
		assertTags(t, []string{"road"})
	})

	t.Run("replace", func(t *testing.T) {
		if _, err := env.batch.BatchUpdateTags(ctx, []string{client.ID}, services.TagReplace, []string{"sea", "air"}, nil); err != nil {
			t.Fatalf("BatchUpdateTags() error = %v", err)
		}
		assertTags(t, []string{"sea", "air"})
	})

	t.Run("replace with empty list clears all tags", func(t *testing.T) {
		if _, err := env.batch.BatchUpdateTags(ctx, []string{client.ID}, services.TagReplace, nil, nil); err != nil {
			t.Fatalf("BatchUpdateTags() error = %v", err)
		}
		assertTags(t, nil)
	})

	t.Run("add with empty list rejects envelope", func(t *testing.T) {
		_, err := env.batch.BatchUpdateTags(ctx, []string{client.ID}, services.TagAdd, nil, nil)
		var invalid *domain.ValidationError
		if !errors.As(err, &invalid) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown mode rejects envelope", func(t *testing.T) {
		_, err := env.batch.BatchUpdateTags(ctx, []string{client.ID}, "toggle", []string{"x"}, nil)
		var invalid *domain.ValidationError
		if !errors.As(err, &invalid) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}

func TestBatchUpdateStatus(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	active := env.mustCreateClient(t, validIndividualReq("bs-active@example.net"))
	inactive := env.mustCreateClient(t, validIndividualReq("bs-inactive@example.net"))
	if _, err := env.batch.BatchUpdateStatus(ctx, []string{inactive.ID}, models.StatusInactive, nil); err != nil {
		t.Fatalf("setup BatchUpdateStatus() error = %v", err)
	}

	t.Run("mixed transition validity is per item", func(t *testing.T) {
		// active→active is a same-status no-op, inactive→active is a
		// legal transition; both succeed
		result, err := env.batch.BatchUpdateStatus(ctx, []string{active.ID, inactive.ID}, models.StatusActive, nil)
		if err != nil {
			t.Fatalf("BatchUpdateStatus() error = %v", err)
		}
		if result.SuccessfulCount != 2 {
			t.Errorf("SuccessfulCount = %d, want 2", result.SuccessfulCount)
		}
	})

	t.Run("invalid transition fails the item only", func(t *testing.T) {
		result, err := env.batch.BatchUpdateStatus(ctx, []string{active.ID}, models.StatusPending, nil)
		if err != nil {
			t.Fatalf("BatchUpdateStatus() error = %v", err)
		}
		if result.FailedCount != 1 || result.Success {
			t.Fatalf("result = %+v, want one failed item", result)
		}
		if !hasIssue(result.FailedOperations[0].ErrorDetails, "status", models.CodeInvalidStatusTransition) {
			t.Errorf("ErrorDetails = %+v, want transition issue", result.FailedOperations[0].ErrorDetails)
		}
	})

	t.Run("unknown status rejects envelope", func(t *testing.T) {
		_, err := env.batch.BatchUpdateStatus(ctx, []string{active.ID}, "dormant", nil)
		var invalid *domain.ValidationError
		if !errors.As(err, &invalid) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("missing client fails the item only", func(t *testing.T) {
		result, err := env.batch.BatchUpdateStatus(ctx,
			[]string{active.ID, "c0ffee00-0000-0000-0000-000000000000"}, models.StatusInactive, nil)
		if err != nil {
			t.Fatalf("BatchUpdateStatus() error = %v", err)
		}
		if result.SuccessfulCount != 1 || result.FailedCount != 1 {
			t.Errorf("counts = %d/%d, want 1/1", result.SuccessfulCount, result.FailedCount)
		}
	})
}

func TestBatchCreate_StoreFailureIsPerItem(t *testing.T) {
	env := newBatchTestEnv()
	ctx := context.Background()

	env.clientRepo.FailNext = errors.New("connection reset")

	result, err := env.batch.BatchCreate(ctx, []*services.CreateClientRequest{
		validIndividualReq("infra-1@example.net"),
		validIndividualReq("infra-2@example.net"),
	}, "op-1", nil)
	if err != nil {
		t.Fatalf("BatchCreate() error = %v", err)
	}

	if result.FailedCount != 1 || result.SuccessfulCount != 1 {
		t.Errorf("counts = %d/%d, want the failure isolated to one item",
			result.SuccessfulCount, result.FailedCount)
	}
}
