package service

import (
	"context"
	"errors"
	"testing"

	"freightdesk/internal/domain"
	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/repositories"
	"freightdesk/internal/domain/services"
	"freightdesk/internal/repository/memory"
)

type clientTestEnv struct {
	clientRepo *memory.ClientRepository
	folderRepo *memory.FolderRepository
	clients    services.ClientService
	folders    services.FolderService
}

func newClientTestEnv() *clientTestEnv {
	clientRepo := memory.NewClientRepository()
	folderRepo := memory.NewFolderRepository()
	logger := testLogger()
	return &clientTestEnv{
		clientRepo: clientRepo,
		folderRepo: folderRepo,
		clients:    NewClientService(clientRepo, folderRepo, logger),
		folders:    NewFolderService(folderRepo, clientRepo, logger),
	}
}

func (e *clientTestEnv) mustCreateClient(t *testing.T, req *services.CreateClientRequest) *models.Client {
	t.Helper()
	client, err := e.clients.Create(context.Background(), req, "op-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return client
}

func (e *clientTestEnv) mustCreateFolder(t *testing.T, clientID, reference string) *models.Folder {
	t.Helper()
	folder, err := e.folders.CreateFolder(context.Background(), &services.CreateFolderRequest{
		ClientID:  clientID,
		Reference: reference,
	}, "op-1")
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	return folder
}

func TestClientService_CreateDefaults(t *testing.T) {
	env := newClientTestEnv()

	client := env.mustCreateClient(t, validIndividualReq("defaults@example.net"))

	if client.ID == "" {
		t.Error("expected a generated id")
	}
	if client.Status != models.StatusActive {
		t.Errorf("Status = %s, want active", client.Status)
	}
	if client.Commercial.Currency != "EUR" {
		t.Errorf("Currency = %s, want EUR", client.Commercial.Currency)
	}
	if client.Commercial.PaymentTerms != models.PaymentTermsNet30 {
		t.Errorf("PaymentTerms = %s, want net_30", client.Commercial.PaymentTerms)
	}
	if client.Commercial.PaymentTermsDays != 30 {
		t.Errorf("PaymentTermsDays = %d, want 30", client.Commercial.PaymentTermsDays)
	}
	if client.Commercial.Priority != models.PriorityNormal {
		t.Errorf("Priority = %s, want normal", client.Commercial.Priority)
	}
	if client.Commercial.RiskLevel != models.RiskLow {
		t.Errorf("RiskLevel = %s, want low", client.Commercial.RiskLevel)
	}
	if client.History != (models.CommercialHistory{}) {
		t.Errorf("History = %+v, want zeroed", client.History)
	}
	if client.CreatedBy != "op-1" {
		t.Errorf("CreatedBy = %s, want op-1", client.CreatedBy)
	}
}

func TestClientService_CreateOverridesAndTagDedup(t *testing.T) {
	env := newClientTestEnv()

	limit := 80_000.0
	req := validBusinessReq("overrides@example.net", "RCS-9")
	req.Commercial = &services.CommercialInfoPatch{CreditLimit: &limit}
	req.Tags = []string{"vip", "road", "vip", ""}

	client := env.mustCreateClient(t, req)

	if client.Commercial.CreditLimit != 80_000 {
		t.Errorf("CreditLimit = %v, want 80000", client.Commercial.CreditLimit)
	}
	// Untouched fields keep their defaults
	if client.Commercial.Currency != "EUR" {
		t.Errorf("Currency = %s, want EUR", client.Commercial.Currency)
	}
	want := []string{"vip", "road"}
	if len(client.Tags) != len(want) {
		t.Fatalf("Tags = %v, want %v", client.Tags, want)
	}
	for i := range want {
		if client.Tags[i] != want[i] {
			t.Errorf("Tags[%d] = %s, want %s", i, client.Tags[i], want[i])
		}
	}
}

func TestClientService_GetByID(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("get@example.net"))

	got, err := env.clients.GetByID(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ID != client.ID {
		t.Errorf("got id %s, want %s", got.ID, client.ID)
	}

	if _, err := env.clients.GetByID(ctx, "missing-id"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClientService_UpdateDeepMerge(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	req := validIndividualReq("merge@example.net")
	req.Contact.Phone = "+33612345678"
	req.Contact.City = "Lyon"
	client := env.mustCreateClient(t, req)

	newCity := "Marseille"
	newFirst := "Anne"
	updated, err := env.clients.Update(ctx, client.ID, &services.UpdateClientRequest{
		Individual: &services.IndividualInfoPatch{FirstName: &newFirst},
		Contact:    &services.ContactInfoPatch{City: &newCity},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Individual.FirstName != "Anne" {
		t.Errorf("FirstName = %s, want Anne", updated.Individual.FirstName)
	}
	// Sibling keys survive the nested merge
	if updated.Individual.LastName != "Morel" {
		t.Errorf("LastName = %s, want Morel", updated.Individual.LastName)
	}
	if updated.Contact.City != "Marseille" {
		t.Errorf("City = %s, want Marseille", updated.Contact.City)
	}
	if updated.Contact.Phone != "+33612345678" {
		t.Errorf("Phone = %s, want preserved", updated.Contact.Phone)
	}
	if updated.Contact.Email != "merge@example.net" {
		t.Errorf("Email = %s, want preserved", updated.Contact.Email)
	}
	if !updated.UpdatedAt.After(client.UpdatedAt) && !updated.UpdatedAt.Equal(client.UpdatedAt) {
		t.Error("UpdatedAt should not move backwards")
	}
}

func TestClientService_DeleteBlockedByActiveFolders(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("blocked@example.net"))
	env.mustCreateFolder(t, client.ID, "FD-0001")

	_, err := env.clients.Delete(ctx, &services.DeleteClientRequest{
		ClientID:     client.ID,
		DeletionType: services.DeletionSoft,
		ActorID:      "op-1",
	})

	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Error("ConflictError should match ErrConflict")
	}

	// The client is untouched
	if _, err := env.clients.GetByID(ctx, client.ID); err != nil {
		t.Errorf("client should still exist, got %v", err)
	}
}

func TestClientService_SoftDelete(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("soft@example.net"))

	result, err := env.clients.Delete(ctx, &services.DeleteClientRequest{
		ClientID:     client.ID,
		DeletionType: services.DeletionSoft,
		Reason:       "account closed",
		ActorID:      "op-1",
	})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !result.Success || result.DeletionType != services.DeletionSoft {
		t.Errorf("result = %+v, want successful soft deletion", result)
	}
	if result.DeletedAt == nil {
		t.Error("expected DeletedAt to be set")
	}

	// Gone from normal scope
	if _, err := env.clients.GetByID(ctx, client.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after soft delete, got %v", err)
	}

	// Still physically present, with the deletion triple
	stored, err := env.clientRepo.GetByID(ctx, client.ID, true)
	if err != nil {
		t.Fatalf("GetByID(includeDeleted) error = %v", err)
	}
	if !stored.IsDeleted() || stored.Status != models.StatusDeleted {
		t.Errorf("stored = %+v, want soft-deleted with status deleted", stored)
	}
	if stored.DeletionReason == nil || *stored.DeletionReason != "account closed" {
		t.Errorf("DeletionReason = %v, want account closed", stored.DeletionReason)
	}
}

func TestClientService_DeleteDefaultsToSoft(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("default-soft@example.net"))

	result, err := env.clients.Delete(ctx, &services.DeleteClientRequest{
		ClientID: client.ID,
		ActorID:  "op-1",
	})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if result.DeletionType != services.DeletionSoft {
		t.Errorf("DeletionType = %s, want soft", result.DeletionType)
	}
}

func TestClientService_HardDelete(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("hard@example.net"))

	result, err := env.clients.Delete(ctx, &services.DeleteClientRequest{
		ClientID:     client.ID,
		DeletionType: services.DeletionHard,
		ActorID:      "op-1",
	})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if result.DeletedAt != nil {
		t.Error("hard deletion should not carry DeletedAt")
	}

	if _, err := env.clientRepo.GetByID(ctx, client.ID, true); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected record physically gone, got %v", err)
	}
}

func TestClientService_ForceDeleteArchivesFolders(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("archive@example.net"))
	folder := env.mustCreateFolder(t, client.ID, "FD-0002")

	result, err := env.clients.Delete(ctx, &services.DeleteClientRequest{
		ClientID:      client.ID,
		DeletionType:  services.DeletionSoft,
		ActorID:       "op-1",
		Force:         true,
		HandleFolders: services.FolderHandlingArchive,
	})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if result.AffectedFoldersCount != 1 || len(result.FolderActions) != 1 {
		t.Fatalf("result = %+v, want one folder action", result)
	}
	action := result.FolderActions[0]
	if action.FolderID != folder.ID || action.Action != models.FolderActionArchived {
		t.Errorf("action = %+v, want archived %s", action, folder.ID)
	}

	stored, err := env.folderRepo.GetByID(ctx, folder.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != models.FolderArchived {
		t.Errorf("folder status = %s, want archived", stored.Status)
	}
}

func TestClientService_ForceDeleteTransfersFolders(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	source := env.mustCreateClient(t, validIndividualReq("transfer-src@example.net"))
	target := env.mustCreateClient(t, validIndividualReq("transfer-dst@example.net"))
	folder := env.mustCreateFolder(t, source.ID, "FD-0003")

	result, err := env.clients.Delete(ctx, &services.DeleteClientRequest{
		ClientID:           source.ID,
		DeletionType:       services.DeletionSoft,
		ActorID:            "op-1",
		Force:              true,
		HandleFolders:      services.FolderHandlingTransfer,
		TransferToClientID: target.ID,
	})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(result.FolderActions) != 1 {
		t.Fatalf("FolderActions = %+v, want one entry", result.FolderActions)
	}
	action := result.FolderActions[0]
	if action.Action != models.FolderActionTransferred || action.TargetClientID != target.ID {
		t.Errorf("action = %+v, want transfer to %s", action, target.ID)
	}

	stored, err := env.folderRepo.GetByID(ctx, folder.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.ClientID != target.ID {
		t.Errorf("folder client = %s, want %s", stored.ClientID, target.ID)
	}
}

func TestClientService_ForceDeleteTransferValidation(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("transfer-bad@example.net"))
	env.mustCreateFolder(t, client.ID, "FD-0004")

	tests := []struct {
		name     string
		targetID string
	}{
		{"missing transfer target", ""},
		{"transfer to self", client.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.clients.Delete(ctx, &services.DeleteClientRequest{
				ClientID:           client.ID,
				DeletionType:       services.DeletionSoft,
				ActorID:            "op-1",
				Force:              true,
				HandleFolders:      services.FolderHandlingTransfer,
				TransferToClientID: tt.targetID,
			})
			var invalid *domain.ValidationError
			if !errors.As(err, &invalid) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	t.Run("missing target client", func(t *testing.T) {
		_, err := env.clients.Delete(ctx, &services.DeleteClientRequest{
			ClientID:           client.ID,
			DeletionType:       services.DeletionSoft,
			ActorID:            "op-1",
			Force:              true,
			HandleFolders:      services.FolderHandlingTransfer,
			TransferToClientID: "c0ffee00-0000-0000-0000-000000000000",
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestClientService_Restore(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	client := env.mustCreateClient(t, validIndividualReq("restore@example.net"))

	t.Run("restoring a live client conflicts", func(t *testing.T) {
		_, err := env.clients.Restore(ctx, client.ID)
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	if _, err := env.clients.Delete(ctx, &services.DeleteClientRequest{
		ClientID:     client.ID,
		DeletionType: services.DeletionSoft,
		ActorID:      "op-1",
	}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	restored, err := env.clients.Restore(ctx, client.ID)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored.IsDeleted() {
		t.Error("restored client should not be deleted")
	}
	if restored.Status != models.StatusInactive {
		t.Errorf("Status = %s, want inactive pending review", restored.Status)
	}
	if restored.DeletionReason != nil {
		t.Errorf("DeletionReason = %v, want cleared", restored.DeletionReason)
	}
}

func TestClientService_GetStatistics(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	limit := 50_000.0
	req := validIndividualReq("stats@example.net")
	req.Commercial = &services.CommercialInfoPatch{CreditLimit: &limit}
	client := env.mustCreateClient(t, req)

	env.mustCreateFolder(t, client.ID, "FD-0005")
	env.mustCreateFolder(t, client.ID, "FD-0006")
	archived := env.mustCreateFolder(t, client.ID, "FD-0007")
	if err := env.folderRepo.UpdateStatus(ctx, archived.ID, models.FolderArchived); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	stats, err := env.clients.GetStatistics(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetStatistics() error = %v", err)
	}

	if stats.TotalFolders != 3 {
		t.Errorf("TotalFolders = %d, want 3", stats.TotalFolders)
	}
	if stats.FolderCounts[models.FolderActive] != 2 {
		t.Errorf("active count = %d, want 2", stats.FolderCounts[models.FolderActive])
	}
	if stats.FolderCounts[models.FolderArchived] != 1 {
		t.Errorf("archived count = %d, want 1", stats.FolderCounts[models.FolderArchived])
	}
	if stats.AvailableCredit != 50_000 {
		t.Errorf("AvailableCredit = %v, want 50000 with zero balance", stats.AvailableCredit)
	}
}

func TestClientService_ListFilters(t *testing.T) {
	env := newClientTestEnv()
	ctx := context.Background()

	a := env.mustCreateClient(t, validIndividualReq("list-a@example.net"))
	b := env.mustCreateClient(t, validBusinessReq("list-b@example.net", "RCS-77"))
	if _, err := env.clients.Update(ctx, a.ID, &services.UpdateClientRequest{
		Tags: &[]string{"vip"},
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	businessType := models.ClientTypeBusiness
	byType, err := env.clients.List(ctx, repositories.ClientFilter{Type: &businessType})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(byType) != 1 || byType[0].ID != b.ID {
		t.Errorf("byType = %+v, want only the business client", byType)
	}

	tag := "vip"
	byTag, err := env.clients.List(ctx, repositories.ClientFilter{Tag: &tag})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(byTag) != 1 || byTag[0].ID != a.ID {
		t.Errorf("byTag = %+v, want only the tagged client", byTag)
	}
}
