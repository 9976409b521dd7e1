package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mkorolis/studyvault/internal/chunk"
	"github.com/mkorolis/studyvault/internal/common"
	"github.com/mkorolis/studyvault/internal/server/metrics"
	"github.com/mkorolis/studyvault/internal/server/models"
)

// Upload progress stage labels surfaced to clients.
const (
	StageUploading  = "Uploading chunks..."
	StageMerging    = "Merging..."
	StageFinalizing = "Finalizing..."
)

// ProgressFunc receives upload progress. percent is monotonically
// non-decreasing and reaches 100 only when the whole operation, record
// insert included, has succeeded.
type ProgressFunc func(percent int, stage string)

// progressTracker clamps reported progress to non-decreasing values so
// per-stage fraction callbacks cannot make the bar jump backwards.
type progressTracker struct {
	fn   ProgressFunc
	last int
}

func (p *progressTracker) report(percent int, stage string) {
	if p.fn == nil {
		return
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.fn(percent, stage)
}

// UploadFile stores the content of src under the given project. Files above
// the chunking threshold are split into fixed-size parts uploaded strictly
// in order; each part gets its own retry budget. On any failure the parts
// already stored are removed best-effort and no record is written.
func (s *FileService) UploadFile(ctx context.Context, ownerID, projectID, name, contentType string, src io.ReaderAt, size int64, onProgress ProgressFunc) (*models.FileRecord, error) {
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

	progress := &progressTracker{fn: onProgress}
	progress.report(0, StageUploading)

	if plan.Chunked {
		err = s.uploadChunks(ctx, base, plan, contentType, src, progress)
	} else {
		err = s.uploadWhole(ctx, base, contentType, src, size)
		progress.report(80, StageUploading)
	}
	if err != nil {
		return nil, err
	}

	manifest, storagePath, err := s.finalize(ctx, base, plan, contentType, progress)
	if err != nil {
		// The stored parts are the only durable copy of the data now;
		// they must survive a failed merge so the upload can be retried.
		metrics.UploadFailuresTotal.WithLabelValues("merge").Inc()
		return nil, err
	}

	progress.report(95, StageFinalizing)

	rec := &models.FileRecord{
		ProjectID:    projectID,
		OwnerID:      ownerID,
		Name:         name,
		ContentType:  contentType,
		StoragePath:  storagePath,
		FileSize:     size,
		IsChunked:    manifest.IsChunked,
		TotalChunks:  manifest.TotalChunks,
		ChunkPattern: manifest.ChunkPattern,
	}
	if err := s.rm.Files(s.db).Create(ctx, rec); err != nil {
		metrics.UploadFailuresTotal.WithLabelValues("metadata").Inc()
		s.cleanupBacking(ctx, rec, base, plan)
		return nil, fmt.Errorf("%w: %w", common.ErrMetadataWrite, err)
	}

	progress.report(100, StageFinalizing)
	if manifest.IsChunked {
		metrics.UploadsTotal.WithLabelValues("chunked").Inc()
	} else {
		metrics.UploadsTotal.WithLabelValues("single").Inc()
	}
	return rec, nil
}

// uploadChunks stores every part of the plan in order. Cancellation is
// honored between parts, never mid-part. The failing part index k implies
// parts 0..k-1 are stored and are cleaned up here before returning.
func (s *FileService) uploadChunks(ctx context.Context, base string, plan chunk.Plan, contentType string, src io.ReaderAt, progress *progressTracker) error {
	total := plan.TotalChunks()
	for _, c := range plan.Chunks {
		if err := ctx.Err(); err != nil {
			s.cleanupParts(ctx, base, c.Index)
			return &common.ChunkUploadError{Err: err, Index: c.Index}
		}

		buf := make([]byte, c.Size())
		if err := readChunkAt(src, buf, c.Start); err != nil {
			s.cleanupParts(ctx, base, c.Index)
			return &common.ChunkUploadError{Err: fmt.Errorf("reading source: %w", err), Index: c.Index}
		}

		if err := s.putWithRetry(ctx, c.Key(base), buf, contentType); err != nil {
			metrics.UploadFailuresTotal.WithLabelValues("chunk").Inc()
			s.cleanupParts(ctx, base, c.Index)
			return &common.ChunkUploadError{Err: err, Index: c.Index}
		}
		metrics.ChunksUploadedTotal.Inc()
		progress.report((c.Index+1)*80/total, StageUploading)
	}
	return nil
}

// uploadWhole stores a sub-threshold file as a single object with the same
// retry budget a chunk gets.
func (s *FileService) uploadWhole(ctx context.Context, base, contentType string, src io.ReaderAt, size int64) error {
	buf := make([]byte, size)
	if err := readChunkAt(src, buf, 0); err != nil {
		return &common.ChunkUploadError{Err: fmt.Errorf("reading source: %w", err), WholeFile: true}
	}
	if err := s.putWithRetry(ctx, base, buf, contentType); err != nil {
		metrics.UploadFailuresTotal.WithLabelValues("whole_file").Inc()
		return &common.ChunkUploadError{Err: err, WholeFile: true}
	}
	return nil
}

// finalize runs the configured reassembly strategy, mapping its part of the
// progress range.
func (s *FileService) finalize(ctx context.Context, base string, plan chunk.Plan, contentType string, progress *progressTracker) (chunk.Manifest, string, error) {
	if plan.Chunked && s.reasm.Strategy() == StrategyMerge {
		progress.report(80, StageMerging)
	}
	return s.reasm.Finalize(ctx, base, plan, contentType, func(frac float64) {
		progress.report(80+int(frac*15), StageMerging)
	})
}

// readChunkAt fills buf from src at offset. io.EOF on the last chunk of a
// file is fine as long as the buffer filled completely.
func readChunkAt(src io.ReaderAt, buf []byte, off int64) error {
	n, err := src.ReadAt(buf, off)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("short read: got %d of %d bytes", n, len(buf))
	}
	return nil
}

// putWithRetry stores one object with a bounded linear-backoff retry budget.
// Every attempt runs under its own timeout. Cancellation of the parent
// context stops further attempts.
func (s *FileService) putWithRetry(ctx context.Context, key string, data []byte, contentType string) error {
	backoff := linearBackoff(s.cfg.RetryBaseDelay)
	backoff = retry.WithMaxRetries(uint64(s.cfg.MaxAttempts-1), backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx := ctx
		if s.cfg.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, s.cfg.AttemptTimeout)
			defer cancel()
		}
		if err := s.store.Put(attemptCtx, key, data, contentType); err != nil {
			if ctx.Err() != nil {
				return err
			}
			s.logger.Warn(ctx, "store attempt failed, will retry", "key", key, "error", err.Error())
			return retry.RetryableError(err)
		}
		return nil
	})
}

// linearBackoff waits attempt*base between tries, so the first retry waits
// one base delay, the second two, and so on.
func linearBackoff(base time.Duration) retry.Backoff {
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * base, false
	})
}

// cleanupParts removes the parts 0..count-1 best-effort. It runs detached
// from the caller's cancellation so an aborted upload still gets its
// orphans swept; failures are counted and logged, never returned, since
// the upload error itself is what the caller must see.
func (s *FileService) cleanupParts(ctx context.Context, base string, count int) {
	if count <= 0 {
		return
	}
	metrics.OrphanedChunksTotal.Add(float64(count))
	cleanupCtx := context.WithoutCancel(ctx)
	keys := chunk.PartKeys(base, count)
	for i, err := range s.store.Delete(cleanupCtx, keys...) {
		if err != nil {
			metrics.OrphanCleanupFailuresTotal.Inc()
			s.logger.Warn(ctx, "orphaned chunk cleanup failed", "key", keys[i], "error", err.Error())
		}
	}
}

// cleanupBacking removes whatever the failed record insert left behind:
// the merged object or the part set, plus the single object of an
// unchunked upload.
func (s *FileService) cleanupBacking(ctx context.Context, rec *models.FileRecord, base string, plan chunk.Plan) {
	cleanupCtx := context.WithoutCancel(ctx)
	if rec.IsChunked {
		s.cleanupParts(ctx, base, plan.TotalChunks())
		return
	}
	for _, err := range s.store.Delete(cleanupCtx, rec.StoragePath) {
		if err != nil {
			metrics.OrphanCleanupFailuresTotal.Inc()
			s.logger.Warn(ctx, "cleanup of stored object failed", "key", rec.StoragePath, "error", err.Error())
		}
	}
}
