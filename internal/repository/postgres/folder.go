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

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create persists a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, client_id, reference, status, priority, created_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Folders)

	_, err := r.pool.Exec(ctx, query,
		folder.ID,
		folder.ClientID,
		folder.Reference,
		folder.Status,
		folder.Priority,
		folder.CreatedBy,
		folder.CreatedAt,
		folder.UpdatedAt,
	)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder client %s: %w", folder.ClientID, domain.ErrNotFound)
		}
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, client_id, reference, status, priority, created_by, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Folders)

	var folder models.Folder
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.ClientID,
		&folder.Reference,
		&folder.Status,
		&folder.Priority,
		&folder.CreatedBy,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// ListByClient lists a client's folders, optionally narrowed to one status
func (r *PostgresFolderRepository) ListByClient(ctx context.Context, clientID string, status *models.FolderStatus) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, client_id, reference, status, priority, created_by, created_at, updated_at
		FROM %s
		WHERE client_id = $1
	`, r.tables.Folders)

	args := []interface{}{clientID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.ClientID,
			&folder.Reference,
			&folder.Status,
			&folder.Priority,
			&folder.CreatedBy,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// CountActiveByClient counts the client's folders with status active
func (r *PostgresFolderRepository) CountActiveByClient(ctx context.Context, clientID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE client_id = $1 AND status = $2
	`, r.tables.Folders)

	var count int
	if err := r.pool.QueryRow(ctx, query, clientID, models.FolderActive).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active folders: %w", err)
	}
	return count, nil
}

// StatusCounts returns the client's folder counts grouped by status
func (r *PostgresFolderRepository) StatusCounts(ctx context.Context, clientID string) (map[models.FolderStatus]int, error) {
	query := fmt.Sprintf(`
		SELECT status, COUNT(*)
		FROM %s
		WHERE client_id = $1
		GROUP BY status
	`, r.tables.Folders)

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("folder status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.FolderStatus]int)
	for rows.Next() {
		var status models.FolderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan folder count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder counts: %w", err)
	}

	return counts, nil
}

// UpdateStatus sets a single folder's status
func (r *PostgresFolderRepository) UpdateStatus(ctx context.Context, id string, status models.FolderStatus) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, r.tables.Folders)

	result, err := r.pool.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update folder status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Reassign re-points a single folder at another client
func (r *PostgresFolderRepository) Reassign(ctx context.Context, id, newClientID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET client_id = $1, updated_at = $2
		WHERE id = $3
	`, r.tables.Folders)

	result, err := r.pool.Exec(ctx, query, newClientID, time.Now(), id)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("target client %s: %w", newClientID, domain.ErrNotFound)
		}
		return fmt.Errorf("reassign folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
