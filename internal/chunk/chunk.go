// Package chunk implements the arithmetic behind chunked uploads: splitting
// a byte stream of known length into fixed-size contiguous ranges, deriving
// the object key for each range, and describing the result in a manifest
// that later readers use to enumerate the part objects.
package chunk

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrInvalidSize      = errors.New("size must not be negative")
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
	ErrInvalidThreshold = errors.New("threshold must not be negative")
)

// Descriptor is one contiguous byte range of the source stream. The range is
// half-open: bytes [Start, End).
type Descriptor struct {
	Index int
	Start int64
	End   int64
}

// Size returns the length of the range in bytes.
func (d Descriptor) Size() int64 { return d.End - d.Start }

// Key derives the object key for this part under the given base name.
func (d Descriptor) Key(base string) string { return PartKey(base, d.Index) }

// PartKey derives the object key for part index under the given pattern.
// The pattern is the base object name shared by all parts of one file.
func PartKey(pattern string, index int) string {
	return pattern + ".part" + strconv.Itoa(index)
}

// PartKeys enumerates the object keys of all parts 0..total-1. Readers and
// deleters use this to reconstruct the part list from a stored manifest
// without re-deriving the original upload parameters.
func PartKeys(pattern string, total int) []string {
	keys := make([]string, 0, total)
	for i := 0; i < total; i++ {
		keys = append(keys, PartKey(pattern, i))
	}
	return keys
}

// Manifest is the small set of fields persisted on a file record describing
// whether and how the file was split. If IsChunked is true, parts
// 0..TotalChunks-1 must all exist in the object store under ChunkPattern.
type Manifest struct {
	ChunkPattern string
	TotalChunks  int
	IsChunked    bool
}

// Plan describes how a stream of Size bytes will be uploaded: as a single
// object (Chunked false, Chunks empty) or as len(Chunks) part objects.
type Plan struct {
	Chunks  []Descriptor
	Size    int64
	Chunked bool
}

// TotalChunks returns the number of part uploads the plan requires, or zero
// for a single-object plan.
func (p Plan) TotalChunks() int { return len(p.Chunks) }

// NewPlan splits a stream of size bytes into ceil(size/chunkSize) ranges
// when size exceeds threshold, or plans a single whole-object upload
// otherwise. The ranges partition [0, size) exactly: contiguous,
// non-overlapping, every byte covered once.
func NewPlan(size, chunkSize, threshold int64) (Plan, error) {
	if size < 0 {
		return Plan{}, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if chunkSize <= 0 {
		return Plan{}, fmt.Errorf("%w: %d", ErrInvalidChunkSize, chunkSize)
	}
	if threshold < 0 {
		return Plan{}, fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}

	if size <= threshold {
		return Plan{Size: size}, nil
	}

	total := int((size + chunkSize - 1) / chunkSize)
	chunks := make([]Descriptor, 0, total)
	for i := 0; i < total; i++ {
		start := int64(i) * chunkSize
		end := start + chunkSize
		if end > size {
			end = size
		}
		chunks = append(chunks, Descriptor{Index: i, Start: start, End: end})
	}

	return Plan{Size: size, Chunked: true, Chunks: chunks}, nil
}
