package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"freightdesk/internal/domain"
	"freightdesk/internal/domain/models"
)

// FolderRepository is an in-memory repositories.FolderRepository.
type FolderRepository struct {
	mu      sync.RWMutex
	folders map[string]*models.Folder

	failMu sync.Mutex
	// FailNext makes the next call return an infrastructure error,
	// for failure-path tests.
	FailNext error
}

// NewFolderRepository creates an empty in-memory folder repository.
func NewFolderRepository() *FolderRepository {
	return &FolderRepository{
		folders: make(map[string]*models.Folder),
	}
}

func (r *FolderRepository) takeFailure() error {
	r.failMu.Lock()
	defer r.failMu.Unlock()
	err := r.FailNext
	r.FailNext = nil
	return err
}

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	if _, exists := r.folders[folder.ID]; exists {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrDuplicate)
	}

	clone := *folder
	r.folders[folder.ID] = &clone
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	folder, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	clone := *folder
	return &clone, nil
}

func (r *FolderRepository) ListByClient(ctx context.Context, clientID string, status *models.FolderStatus) ([]models.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	var out []models.Folder
	for _, f := range r.folders {
		if f.ClientID != clientID {
			continue
		}
		if status != nil && f.Status != *status {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *FolderRepository) CountActiveByClient(ctx context.Context, clientID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeFailure(); err != nil {
		return 0, err
	}

	count := 0
	for _, f := range r.folders {
		if f.ClientID == clientID && f.Status == models.FolderActive {
			count++
		}
	}
	return count, nil
}

func (r *FolderRepository) StatusCounts(ctx context.Context, clientID string) (map[models.FolderStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	counts := make(map[models.FolderStatus]int)
	for _, f := range r.folders {
		if f.ClientID == clientID {
			counts[f.Status]++
		}
	}
	return counts, nil
}

func (r *FolderRepository) UpdateStatus(ctx context.Context, id string, status models.FolderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	folder, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	folder.Status = status
	folder.UpdatedAt = time.Now()
	return nil
}

func (r *FolderRepository) Reassign(ctx context.Context, id, newClientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	folder, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	folder.ClientID = newClientID
	folder.UpdatedAt = time.Now()
	return nil
}
