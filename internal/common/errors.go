// Package common defines shared constants and sentinel errors used across
// client and server layers of StudyVault. Callers should use errors.Is /
// errors.As to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// ErrNotAuthenticated means no caller identity was supplied. It is fatal
	// and checked before any storage operation begins; it is never retried.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrMergeUpload means the final concatenated object failed to upload;
	// the original part objects are left in place as the only durable copy.
	ErrMergeUpload = errors.New("merge upload failed")

	// ErrMetadataWrite means the backing objects were stored but the file
	// record write failed. The upload must be reported as failed even though
	// objects exist.
	ErrMetadataWrite = errors.New("metadata write failed")
)

// ChunkUploadError reports that one upload unit exhausted its retry budget.
// WholeFile is set when the failing unit was a single-object upload rather
// than a numbered part.
type ChunkUploadError struct {
	Err       error
	Index     int
	WholeFile bool
}

func (e *ChunkUploadError) Error() string {
	if e.WholeFile {
		return fmt.Sprintf("upload failed: whole file: %v", e.Err)
	}
	return fmt.Sprintf("upload failed: chunk %d: %v", e.Index, e.Err)
}

func (e *ChunkUploadError) Unwrap() error { return e.Err }

// ChunkDownloadError reports that a part object could not be fetched while
// reconstructing or merging a chunked file.
type ChunkDownloadError struct {
	Err   error
	Index int
}

func (e *ChunkDownloadError) Error() string {
	return fmt.Sprintf("download failed: chunk %d: %v", e.Index, e.Err)
}

func (e *ChunkDownloadError) Unwrap() error { return e.Err }
