package services

import (
	"context"
	"fmt"

	"github.com/mkorolis/studyvault/internal/chunk"
	"github.com/mkorolis/studyvault/internal/common"
	"github.com/mkorolis/studyvault/internal/logging"
	"github.com/mkorolis/studyvault/internal/server/models"
	"github.com/mkorolis/studyvault/internal/server/objectstore"
)

// Reassembly strategy names accepted in server config.
const (
	StrategyMerge = "merge"
	StrategyDefer = "defer"
)

// Reassembler turns a set of confirmed part objects into a readable file.
// The two implementations are alternatives, selected once at startup; they
// are never mixed against the same data. EagerMerge pays the concatenation
// cost once at write time, DeferredMerge on every read.
type Reassembler interface {
	// Strategy returns the config name of the implementation.
	Strategy() string

	// Finalize runs after every part of plan has been durably stored under
	// base. It returns the manifest to persist and the storage path the file
	// record should point at. It must not write the file record itself.
	// For a single-object plan Finalize has nothing to do.
	Finalize(ctx context.Context, base string, plan chunk.Plan, contentType string, onProgress func(frac float64)) (chunk.Manifest, string, error)

	// Reconstruct returns the complete byte stream of a stored file record.
	Reconstruct(ctx context.Context, rec *models.FileRecord) ([]byte, error)
}

// NewReassembler builds the implementation named by strategy.
func NewReassembler(strategy string, store objectstore.Store, logger logging.Logger) (Reassembler, error) {
	switch strategy {
	case StrategyMerge:
		return &EagerMerge{store: store, logger: logger.With("module", "reassembler")}, nil
	case StrategyDefer:
		return &DeferredMerge{store: store}, nil
	default:
		return nil, fmt.Errorf("unknown merge strategy: %q", strategy)
	}
}

// EagerMerge concatenates the parts into a single object at upload time and
// deletes them. By the time the file record exists, the object at the base
// key is the complete playable file.
type EagerMerge struct {
	store  objectstore.Store
	logger logging.Logger
}

func (m *EagerMerge) Strategy() string { return StrategyMerge }

func (m *EagerMerge) Finalize(ctx context.Context, base string, plan chunk.Plan, contentType string, onProgress func(frac float64)) (chunk.Manifest, string, error) {
	if !plan.Chunked {
		return chunk.Manifest{}, base, nil
	}

	total := plan.TotalChunks()
	buf := make([]byte, 0, plan.Size)
	for i := 0; i < total; i++ {
		b, err := m.store.Get(ctx, chunk.PartKey(base, i))
		if err != nil {
			// Parts stay untouched: they are the only durable copy.
			return chunk.Manifest{}, "", &common.ChunkDownloadError{Index: i, Err: err}
		}
		buf = append(buf, b...)
		if onProgress != nil {
			onProgress(float64(i+1) / float64(total))
		}
	}

	if err := m.store.Put(ctx, base, buf, contentType); err != nil {
		return chunk.Manifest{}, "", fmt.Errorf("%w: %w", common.ErrMergeUpload, err)
	}

	// The merged object is durable now; leftover parts are garbage, so a
	// failed delete is logged, not fatal.
	for i, err := range m.store.Delete(ctx, chunk.PartKeys(base, total)...) {
		if err != nil {
			m.logger.Warn(ctx, "failed to delete merged part", "base", base, "index", i, "error", err.Error())
		}
	}

	return chunk.Manifest{}, base, nil
}

func (m *EagerMerge) Reconstruct(ctx context.Context, rec *models.FileRecord) ([]byte, error) {
	if rec.IsChunked {
		// An eager-merge server never writes chunked records; one here means
		// the deployment mixed strategies against the same data.
		return nil, fmt.Errorf("file %s: chunked record under merge strategy", rec.ID)
	}
	return m.store.Get(ctx, rec.StoragePath)
}

// DeferredMerge leaves the parts in the store permanently and reconstructs
// the full byte stream on every read, trading repeated O(N) round trips for
// no extra storage copy.
type DeferredMerge struct {
	store objectstore.Store
}

func (m *DeferredMerge) Strategy() string { return StrategyDefer }

func (m *DeferredMerge) Finalize(ctx context.Context, base string, plan chunk.Plan, contentType string, onProgress func(frac float64)) (chunk.Manifest, string, error) {
	if !plan.Chunked {
		return chunk.Manifest{}, base, nil
	}
	return chunk.Manifest{
		IsChunked:    true,
		TotalChunks:  plan.TotalChunks(),
		ChunkPattern: base,
	}, base, nil
}

func (m *DeferredMerge) Reconstruct(ctx context.Context, rec *models.FileRecord) ([]byte, error) {
	if !rec.IsChunked {
		return m.store.Get(ctx, rec.StoragePath)
	}

	buf := make([]byte, 0, rec.FileSize)
	for i := 0; i < rec.TotalChunks; i++ {
		b, err := m.store.Get(ctx, chunk.PartKey(rec.ChunkPattern, i))
		if err != nil {
			return nil, &common.ChunkDownloadError{Index: i, Err: err}
		}
		buf = append(buf, b...)
	}
	return buf, nil
}
