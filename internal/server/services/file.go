// Package services contains server-side business logic: uploads, reassembly,
// projects, and user authentication.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkorolis/studyvault/internal/chunk"
	"github.com/mkorolis/studyvault/internal/common"
	"github.com/mkorolis/studyvault/internal/logging"
	"github.com/mkorolis/studyvault/internal/server/metrics"
	"github.com/mkorolis/studyvault/internal/server/models"
	"github.com/mkorolis/studyvault/internal/server/objectstore"
	"github.com/mkorolis/studyvault/internal/server/repositories/repomanager"
	"github.com/mkorolis/studyvault/internal/shared"
)

// UploadSettings are the tuning knobs of the chunked upload pipeline.
type UploadSettings struct {
	// ChunkSize is the fixed part size in bytes.
	ChunkSize int64
	// Threshold is the file size above which chunking activates.
	Threshold int64
	// MaxAttempts bounds the attempts per upload unit (first try included).
	MaxAttempts int
	// RetryBaseDelay scales the linear backoff: attempt n waits n*base.
	RetryBaseDelay time.Duration
	// AttemptTimeout bounds a single store attempt, independently of the
	// retry backoff.
	AttemptTimeout time.Duration
	// PresignExpiry bounds the lifetime of client-facing presigned URLs.
	PresignExpiry time.Duration
}

// FileService implements uploads, reads, and deletion of files. Chunk
// uploads within one file run strictly sequentially, one part buffer in
// flight at a time; the file record insert is the commit point.
type FileService struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	store  objectstore.Store
	reasm  Reassembler
	logger logging.Logger
	cfg    UploadSettings
}

// NewFileService constructs a FileService.
func NewFileService(db *sql.DB, rm repomanager.RepositoryManager, store objectstore.Store, reasm Reassembler, cfg UploadSettings, logger logging.Logger) *FileService {
	return &FileService{
		db:     db,
		rm:     rm,
		store:  store,
		reasm:  reasm,
		cfg:    cfg,
		logger: logger.With("module", "file_service"),
	}
}

// Seams for tests that pin storage-key timestamps and suffixes.
var (
	nowFn   = time.Now
	newIDFn = uuid.NewString
)

// makeBaseKey derives the storage base key for a new upload. The millisecond
// timestamp plus random suffix keeps concurrent uploads of identically named
// files from colliding.
func makeBaseKey(projectID, name string) (string, error) {
	return fmt.Sprintf("projects/%s/%d-%s-%s", projectID, nowFn().UnixMilli(), newIDFn(), shared.SanitizeFileName(name)), nil
}

// getOwnedProject loads a project and authorizes ownerID against it.
func (s *FileService) getOwnedProject(ctx context.Context, ownerID, projectID string) (*models.Project, error) {
	project, err := s.rm.Projects(s.db).GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, common.ErrorForbidden
	}
	return project, nil
}

// getOwnedFile loads a file record and authorizes ownerID against it.
func (s *FileService) getOwnedFile(ctx context.Context, ownerID, fileID string) (*models.FileRecord, error) {
	rec, err := s.rm.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != ownerID {
		return nil, common.ErrorForbidden
	}
	return rec, nil
}

// GetFile returns a file record after authorizing the caller.
func (s *FileService) GetFile(ctx context.Context, ownerID, fileID string) (*models.FileRecord, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}
	return s.getOwnedFile(ctx, ownerID, fileID)
}

// ListFiles returns the file records of a project after authorizing the caller.
func (s *FileService) ListFiles(ctx context.Context, ownerID, projectID string) ([]*models.FileRecord, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}
	if _, err := s.getOwnedProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	return s.rm.Files(s.db).ListByProject(ctx, projectID)
}

// OpenFile returns the complete byte stream of a stored file, reconstructing
// it from parts when the manifest says the file is chunked.
func (s *FileService) OpenFile(ctx context.Context, ownerID, fileID string) (*models.FileRecord, []byte, error) {
	if ownerID == "" {
		return nil, nil, common.ErrNotAuthenticated
	}
	rec, err := s.getOwnedFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.reasm.Reconstruct(ctx, rec)
	if err != nil {
		return nil, nil, err
	}
	return rec, data, nil
}

// DeleteFile removes every backing object of a file and then its record.
// A missing or failed individual object never aborts the batch; a failed
// record delete is returned so the caller retries it, since a record
// pointing at deleted objects is otherwise undeletable garbage.
func (s *FileService) DeleteFile(ctx context.Context, ownerID, fileID string) error {
	if ownerID == "" {
		return common.ErrNotAuthenticated
	}
	rec, err := s.getOwnedFile(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	keys := backingKeys(rec)
	for i, derr := range s.store.Delete(ctx, keys...) {
		if derr != nil {
			metrics.DeleteFailuresTotal.Inc()
			s.logger.Warn(ctx, "failed to delete backing object", "file_id", fileID, "key", keys[i], "error", derr.Error())
		}
	}

	if err := s.rm.Files(s.db).Delete(ctx, fileID); err != nil {
		return fmt.Errorf("deleting file record: %w", err)
	}
	return nil
}

// backingKeys enumerates every object the record owns: all parts derived
// from the manifest, or the single object at the storage path.
func backingKeys(rec *models.FileRecord) []string {
	if rec.IsChunked {
		return chunk.PartKeys(rec.ChunkPattern, rec.TotalChunks)
	}
	return []string{rec.StoragePath}
}
