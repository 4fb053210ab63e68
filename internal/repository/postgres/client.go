package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"freightdesk/internal/domain"
	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/repositories"
)

// clientColumns is the scan order shared by every client query.
const clientColumns = `id, client_type, individual_info, business_info, contact_info,
	commercial_info, commercial_history, status, tags, created_by,
	created_at, updated_at, deleted_at, deleted_by, deletion_reason`

// PostgresClientRepository implements the ClientRepository interface.
// The variant infos, contact, commercial conditions and history live in
// JSONB columns; tags are a text[].
type PostgresClientRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewClientRepository creates a new client repository
func NewClientRepository(config *RepositoryConfig) repositories.ClientRepository {
	return &PostgresClientRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create persists a new client
func (r *PostgresClientRepository) Create(ctx context.Context, client *models.Client) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, client_type, individual_info, business_info, contact_info,
			commercial_info, commercial_history, status, tags, created_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.tables.Clients)

	_, err := r.pool.Exec(ctx, query,
		client.ID,
		client.Type,
		client.Individual,
		client.Business,
		client.Contact,
		client.Commercial,
		client.History,
		client.Status,
		client.Tags,
		client.CreatedBy,
		client.CreatedAt,
		client.UpdatedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.DuplicateError{
				Message: "client with the same email or registration number already exists",
				Field:   "contact_info.email",
			}
		}
		return fmt.Errorf("create client: %w", err)
	}

	return nil
}

// GetByID retrieves a client by ID, excluding soft-deleted records
// unless includeDeleted is set.
func (r *PostgresClientRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*models.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, clientColumns, r.tables.Clients)
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	client, err := r.scanClient(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return client, nil
}

// List returns non-deleted clients matching the filter
func (r *PostgresClientRepository) List(ctx context.Context, filter repositories.ClientFilter) ([]models.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE deleted_at IS NULL
	`, clientColumns, r.tables.Clients)

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		query += " AND status = " + arg(*filter.Status)
	}
	if filter.Type != nil {
		query += " AND client_type = " + arg(*filter.Type)
	}
	if filter.Tag != nil {
		query += " AND " + arg(*filter.Tag) + " = ANY(tags)"
	}
	query += " ORDER BY created_at ASC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		client, err := r.scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}

	return clients, nil
}

// FindByEmail finds a non-deleted client by email, case-insensitively.
// Returns (nil, nil) when no match exists.
func (r *PostgresClientRepository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE lower(contact_info->>'email') = lower($1) AND deleted_at IS NULL
	`, clientColumns, r.tables.Clients)

	client, err := r.scanClient(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find client by email: %w", err)
	}
	return client, nil
}

// FindByRegistrationNumber finds a non-deleted business client by
// registration number. Returns (nil, nil) when no match exists.
func (r *PostgresClientRepository) FindByRegistrationNumber(ctx context.Context, registrationNumber string) (*models.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE business_info->>'registration_number' = $1 AND deleted_at IS NULL
	`, clientColumns, r.tables.Clients)

	client, err := r.scanClient(r.pool.QueryRow(ctx, query, registrationNumber))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find client by registration number: %w", err)
	}
	return client, nil
}

// Update writes the full record back. Matching only rows where
// deleted_at IS NULL makes zero rows cover both "not found" and
// "is soft-deleted".
func (r *PostgresClientRepository) Update(ctx context.Context, client *models.Client) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET individual_info = $1, business_info = $2, contact_info = $3,
			commercial_info = $4, commercial_history = $5, status = $6,
			tags = $7, updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL
	`, r.tables.Clients)

	result, err := r.pool.Exec(ctx, query,
		client.Individual,
		client.Business,
		client.Contact,
		client.Commercial,
		client.History,
		client.Status,
		client.Tags,
		client.UpdatedAt,
		client.ID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.DuplicateError{
				Message: "another client already uses this email or registration number",
				Field:   "contact_info.email",
			}
		}
		if isPgCheckError(err) {
			return fmt.Errorf("update client: %w", domain.ErrValidation)
		}
		return fmt.Errorf("update client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", client.ID, domain.ErrNotFound)
	}

	return nil
}

// SoftDelete marks the record deleted and logically removes it from
// normal query scope.
func (r *PostgresClientRepository) SoftDelete(ctx context.Context, id, deletedBy, reason string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $1, deleted_by = $2, deletion_reason = NULLIF($3, ''),
			status = $4, updated_at = $1
		WHERE id = $5 AND deleted_at IS NULL
	`, r.tables.Clients)

	result, err := r.pool.Exec(ctx, query, at, deletedBy, reason, models.StatusDeleted, id)
	if err != nil {
		return fmt.Errorf("soft delete client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// HardDelete physically removes the record
func (r *PostgresClientRepository) HardDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Clients)

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("hard delete client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Restore clears the soft-delete fields and sets the given status
func (r *PostgresClientRepository) Restore(ctx context.Context, id string, status models.ClientStatus) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NULL, deleted_by = NULL, deletion_reason = NULL,
			status = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NOT NULL
	`, r.tables.Clients)

	result, err := r.pool.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("restore client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// rowScanner lets scanClient work for both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresClientRepository) scanClient(row rowScanner) (*models.Client, error) {
	var client models.Client
	err := row.Scan(
		&client.ID,
		&client.Type,
		&client.Individual,
		&client.Business,
		&client.Contact,
		&client.Commercial,
		&client.History,
		&client.Status,
		&client.Tags,
		&client.CreatedBy,
		&client.CreatedAt,
		&client.UpdatedAt,
		&client.DeletedAt,
		&client.DeletedBy,
		&client.DeletionReason,
	)
	if err != nil {
		return nil, err
	}
	return &client, nil
}
