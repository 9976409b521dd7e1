// Package files provides a PostgreSQL-backed repository for file records.
// The row is the commit point of an upload: it is inserted once, after every
// backing object is durably stored, and carries the chunking manifest.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkorolis/studyvault/internal/common"
	"github.com/mkorolis/studyvault/internal/dbx"
	"github.com/mkorolis/studyvault/internal/server/models"
)

// PostgresRepository implements file-record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the file record as the single commit-point write of an
// upload and fills in the db-generated id and creation time.
func (r *PostgresRepository) Create(ctx context.Context, file *models.FileRecord) error {
	query := `
		INSERT INTO files (project_id, owner_id, name, content_type, file_size, storage_path, is_chunked, total_chunks, chunk_pattern)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	var totalChunks sql.NullInt64
	var chunkPattern sql.NullString
	if file.IsChunked {
		totalChunks = sql.NullInt64{Int64: int64(file.TotalChunks), Valid: true}
		chunkPattern = sql.NullString{String: file.ChunkPattern, Valid: true}
	}

	if err := r.db.QueryRowContext(ctx, query,
		file.ProjectID, file.OwnerID, file.Name, file.ContentType,
		file.FileSize, file.StoragePath, file.IsChunked, totalChunks, chunkPattern,
	).Scan(&file.ID, &file.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the file record with its manifest fields, or
// common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	query := `
		SELECT id, project_id, owner_id, name, content_type, file_size, storage_path, is_chunked, total_chunks, chunk_pattern, created_at
		FROM files
		WHERE id = $1
	`
	file := &models.FileRecord{}
	var totalChunks sql.NullInt64
	var chunkPattern sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.ProjectID, &file.OwnerID, &file.Name, &file.ContentType,
		&file.FileSize, &file.StoragePath, &file.IsChunked, &totalChunks, &chunkPattern, &file.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if totalChunks.Valid {
		file.TotalChunks = int(totalChunks.Int64)
	}
	file.ChunkPattern = chunkPattern.String
	return file, nil
}

// ListByProject returns all file records in projectID, newest first.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*models.FileRecord, error) {
	query := `
		SELECT id, project_id, owner_id, name, content_type, file_size, storage_path, is_chunked, total_chunks, chunk_pattern, created_at
		FROM files
		WHERE project_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.FileRecord
	for rows.Next() {
		var item models.FileRecord
		var totalChunks sql.NullInt64
		var chunkPattern sql.NullString
		if err := rows.Scan(
			&item.ID, &item.ProjectID, &item.OwnerID, &item.Name, &item.ContentType,
			&item.FileSize, &item.StoragePath, &item.IsChunked, &totalChunks, &chunkPattern, &item.CreatedAt); err != nil {
			return nil, err
		}
		if totalChunks.Valid {
			item.TotalChunks = int(totalChunks.Int64)
		}
		item.ChunkPattern = chunkPattern.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the file record. Exactly one row must be affected.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}
