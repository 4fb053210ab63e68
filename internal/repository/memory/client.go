// Package memory provides mutex-guarded in-memory implementations of
// the repository interfaces. They honor the same contracts as the
// postgres implementations and back the service tests and the seed
// command's dry-run mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"freightdesk/internal/domain"
	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/repositories"
)

// ClientRepository is an in-memory repositories.ClientRepository.
type ClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*models.Client

	failMu sync.Mutex
	// FailNext makes the next call return an infrastructure error,
	// for failure-path tests.
	FailNext error
}

// NewClientRepository creates an empty in-memory client repository.
func NewClientRepository() *ClientRepository {
	return &ClientRepository{
		clients: make(map[string]*models.Client),
	}
}

func (r *ClientRepository) takeFailure() error {
	r.failMu.Lock()
	defer r.failMu.Unlock()
	err := r.FailNext
	r.FailNext = nil
	return err
}

func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	if _, exists := r.clients[client.ID]; exists {
		return fmt.Errorf("client %s: %w", client.ID, domain.ErrDuplicate)
	}

	// Same unique index the postgres schema enforces
	for _, existing := range r.clients {
		if existing.IsDeleted() {
			continue
		}
		if strings.EqualFold(existing.Contact.Email, client.Contact.Email) {
			return &domain.DuplicateError{
				Message: fmt.Sprintf("email %q already exists", client.Contact.Email),
				Field:   "contact_info.email",
			}
		}
		if client.Business != nil && existing.Business != nil &&
			client.Business.RegistrationNumber != "" &&
			existing.Business.RegistrationNumber == client.Business.RegistrationNumber {
			return &domain.DuplicateError{
				Message: fmt.Sprintf("registration number %q already exists", client.Business.RegistrationNumber),
				Field:   "business_info.registration_number",
			}
		}
	}

	r.clients[client.ID] = cloneClient(client)
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	client, ok := r.clients[id]
	if !ok || (!includeDeleted && client.IsDeleted()) {
		return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	return cloneClient(client), nil
}

func (r *ClientRepository) List(ctx context.Context, filter repositories.ClientFilter) ([]models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	var out []models.Client
	for _, c := range r.clients {
		if c.IsDeleted() {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && c.Type != *filter.Type {
			continue
		}
		if filter.Tag != nil && !c.HasTag(*filter.Tag) {
			continue
		}
		out = append(out, *cloneClient(c))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []models.Client{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	for _, c := range r.clients {
		if c.IsDeleted() {
			continue
		}
		if strings.EqualFold(c.Contact.Email, email) {
			return cloneClient(c), nil
		}
	}
	return nil, nil
}

func (r *ClientRepository) FindByRegistrationNumber(ctx context.Context, registrationNumber string) (*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.takeFailure(); err != nil {
		return nil, err
	}

	for _, c := range r.clients {
		if c.IsDeleted() || c.Business == nil {
			continue
		}
		if c.Business.RegistrationNumber == registrationNumber {
			return cloneClient(c), nil
		}
	}
	return nil, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	existing, ok := r.clients[client.ID]
	if !ok || existing.IsDeleted() {
		return fmt.Errorf("client %s: %w", client.ID, domain.ErrNotFound)
	}
	r.clients[client.ID] = cloneClient(client)
	return nil
}

func (r *ClientRepository) SoftDelete(ctx context.Context, id, deletedBy, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	client, ok := r.clients[id]
	if !ok || client.IsDeleted() {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}

	deletedAt := at
	client.DeletedAt = &deletedAt
	client.DeletedBy = &deletedBy
	if reason != "" {
		client.DeletionReason = &reason
	}
	client.Status = models.StatusDeleted
	client.UpdatedAt = at
	return nil
}

func (r *ClientRepository) HardDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	if _, ok := r.clients[id]; !ok {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	delete(r.clients, id)
	return nil
}

func (r *ClientRepository) Restore(ctx context.Context, id string, status models.ClientStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.takeFailure(); err != nil {
		return err
	}

	client, ok := r.clients[id]
	if !ok || !client.IsDeleted() {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}

	client.DeletedAt = nil
	client.DeletedBy = nil
	client.DeletionReason = nil
	client.Status = status
	client.UpdatedAt = time.Now()
	return nil
}

// cloneClient deep-copies a client so callers never alias stored state.
func cloneClient(c *models.Client) *models.Client {
	out := *c
	if c.Individual != nil {
		ind := *c.Individual
		out.Individual = &ind
	}
	if c.Business != nil {
		biz := *c.Business
		out.Business = &biz
	}
	out.Tags = append([]string(nil), c.Tags...)
	out.Commercial.PaymentMethods = append([]string(nil), c.Commercial.PaymentMethods...)
	if c.DeletedAt != nil {
		at := *c.DeletedAt
		out.DeletedAt = &at
	}
	if c.DeletedBy != nil {
		by := *c.DeletedBy
		out.DeletedBy = &by
	}
	if c.DeletionReason != nil {
		reason := *c.DeletionReason
		out.DeletionReason = &reason
	}
	return &out
}
