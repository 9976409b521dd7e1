package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkorolis/studyvault/internal/chunk"
	"github.com/mkorolis/studyvault/internal/common"
	"github.com/mkorolis/studyvault/internal/server/metrics"
	"github.com/mkorolis/studyvault/internal/server/models"
)

// BeginChunkedUpload plans an upload the client performs itself and returns
// one presigned PUT URL per part. Nothing is persisted yet; the ticket only
// becomes a file once CompleteChunkedUpload succeeds.
func (s *FileService) BeginChunkedUpload(ctx context.Context, ownerID, projectID, name, contentType string, size int64) (*models.UploadTicket, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}
	if _, err := s.getOwnedProject(ctx, ownerID, projectID); err != nil {
		return nil, err
	}

	plan, err := chunk.NewPlan(size, s.cfg.ChunkSize, s.cfg.Threshold)
	if err != nil {
		return nil, err
	}

	base, err := makeBaseKey(projectID, name)
	if err != nil {
		return nil, err
	}

	ticket := &models.UploadTicket{
		ProjectID:   projectID,
		Name:        name,
		ContentType: contentType,
		Base:        base,
		Size:        size,
		Chunked:     plan.Chunked,
	}

	if !plan.Chunked {
		url, err := s.store.PresignPut(ctx, base, contentType, s.cfg.PresignExpiry)
		if err != nil {
			return nil, fmt.Errorf("presigning upload: %w", err)
		}
		ticket.Parts = []models.PartTicket{{Key: base, URL: url, Index: 0, Start: 0, End: size}}
		return ticket, nil
	}

	ticket.Parts = make([]models.PartTicket, 0, len(plan.Chunks))
	for _, c := range plan.Chunks {
		key := c.Key(base)
		url, err := s.store.PresignPut(ctx, key, contentType, s.cfg.PresignExpiry)
		if err != nil {
			return nil, fmt.Errorf("presigning part %d: %w", c.Index, err)
		}
		ticket.Parts = append(ticket.Parts, models.PartTicket{
			Key:   key,
			URL:   url,
			Index: c.Index,
			Start: c.Start,
			End:   c.End,
		})
	}
	return ticket, nil
}

// CompleteChunkedUpload verifies every object of a ticket exists, runs the
// reassembly strategy, and writes the file record. The base key must sit
// under the project's own prefix so a ticket cannot be replayed against
// another project.
func (s *FileService) CompleteChunkedUpload(ctx context.Context, ownerID string, ticket *models.UploadTicket) (*models.FileRecord, error) {
	if ownerID == "" {
		return nil, common.ErrNotAuthenticated
	}
	if _, err := s.getOwnedProject(ctx, ownerID, ticket.ProjectID); err != nil {
		return nil, err
	}

	if !strings.HasPrefix(ticket.Base, "projects/"+ticket.ProjectID+"/") {
		return nil, fmt.Errorf("%w: upload key outside project prefix", common.ErrorForbidden)
	}

	plan, err := chunk.NewPlan(ticket.Size, s.cfg.ChunkSize, s.cfg.Threshold)
	if err != nil {
		return nil, err
	}
	if plan.Chunked != ticket.Chunked {
		return nil, fmt.Errorf("ticket does not match upload settings")
	}

	if err := s.verifyTicketObjects(ctx, ticket.Base, plan); err != nil {
		return nil, err
	}

	manifest, storagePath, err := s.reasm.Finalize(ctx, ticket.Base, plan, ticket.ContentType, nil)
	if err != nil {
		// The client-stored parts are the only copy of the payload the
		// server ever sees; leave them so the confirm can be retried.
		metrics.UploadFailuresTotal.WithLabelValues("merge").Inc()
		return nil, err
	}

	rec := &models.FileRecord{
		ProjectID:    ticket.ProjectID,
		OwnerID:      ownerID,
		Name:         ticket.Name,
		ContentType:  ticket.ContentType,
		StoragePath:  storagePath,
		FileSize:     ticket.Size,
		IsChunked:    manifest.IsChunked,
		TotalChunks:  manifest.TotalChunks,
		ChunkPattern: manifest.ChunkPattern,
	}
	if err := s.rm.Files(s.db).Create(ctx, rec); err != nil {
		metrics.UploadFailuresTotal.WithLabelValues("metadata").Inc()
		s.cleanupBacking(ctx, rec, ticket.Base, plan)
		return nil, fmt.Errorf("%w: %w", common.ErrMetadataWrite, err)
	}

	if manifest.IsChunked {
		metrics.UploadsTotal.WithLabelValues("chunked").Inc()
	} else {
		metrics.UploadsTotal.WithLabelValues("single").Inc()
	}
	return rec, nil
}

// verifyTicketObjects checks that the client really stored every object the
// ticket names before any metadata is written.
func (s *FileService) verifyTicketObjects(ctx context.Context, base string, plan chunk.Plan) error {
	keys := []string{base}
	if plan.Chunked {
		keys = chunk.PartKeys(base, plan.TotalChunks())
	}
	for i, key := range keys {
		ok, err := s.store.Exists(ctx, key)
		if err != nil {
			return fmt.Errorf("verifying part %d: %w", i, err)
		}
		if !ok {
			return fmt.Errorf("%w: part %d was not uploaded", common.ErrorNotFound, i)
		}
	}
	return nil
}

// PresignDownload returns a short-lived GET URL for an unchunked file. A
// chunked record has no single object to point at, so clients fetch those
// through the server instead.
func (s *FileService) PresignDownload(ctx context.Context, ownerID, fileID string) (string, error) {
	if ownerID == "" {
		return "", common.ErrNotAuthenticated
	}
	rec, err := s.getOwnedFile(ctx, ownerID, fileID)
	if err != nil {
		return "", err
	}
	if rec.IsChunked {
		return "", fmt.Errorf("%w: chunked file has no direct object", common.ErrorNotFound)
	}
	url, err := s.store.PresignGet(ctx, rec.StoragePath, s.cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning download: %w", err)
	}
	return url, nil
}
