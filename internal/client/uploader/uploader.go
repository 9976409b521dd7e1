// Package uploader drives client-side chunked uploads: it asks the server
// for an upload ticket, PUTs each part to its presigned URL in order, and
// confirms the upload so the server writes the file record.
package uploader

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mkorolis/studyvault/internal/client/api"
	"github.com/mkorolis/studyvault/internal/netx"
)

// ProgressFunc receives upload progress as parts complete.
type ProgressFunc func(partsDone, partsTotal int)

// Uploader transfers files between local disk and the server.
type Uploader struct {
	client *api.Client
}

// New constructs an Uploader on top of an authenticated API client.
func New(client *api.Client) *Uploader {
	return &Uploader{client: client}
}

// UploadFile stores the file at path under the given project. Parts are
// uploaded strictly in order; the ticket is only confirmed once every part
// has been stored, so an interrupted upload leaves no file record behind.
func (u *Uploader) UploadFile(ctx context.Context, projectID, path string, onProgress ProgressFunc) (*api.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	contentType := "application/octet-stream"
	if mt, derr := mimetype.DetectFile(path); derr == nil {
		contentType = mt.String()
	}

	ticket, err := u.client.BeginUpload(ctx, projectID, info.Name(), contentType, info.Size())
	if err != nil {
		return nil, fmt.Errorf("planning upload: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	total := len(ticket.Parts)
	for i, part := range ticket.Parts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("upload cancelled at part %d: %w", part.Index, err)
		}

		buf := make([]byte, part.End-part.Start)
		sect := io.NewSectionReader(src, part.Start, part.End-part.Start)
		if _, err := io.ReadFull(sect, buf); err != nil {
			return nil, fmt.Errorf("reading part %d: %w", part.Index, err)
		}

		if err := netx.UploadPresigned(u.client.HTTPClient(), part.URL, buf, contentType); err != nil {
			return nil, fmt.Errorf("uploading part %d: %w", part.Index, err)
		}
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	file, err := u.client.CompleteUpload(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("confirming upload: %w", err)
	}
	return file, nil
}

// DownloadFile fetches a file by ID and writes it to destPath.
func (u *Uploader) DownloadFile(ctx context.Context, fileID, destPath string) (*api.File, error) {
	meta, err := u.client.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	data, err := u.fetch(ctx, meta)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != meta.Size {
		return nil, fmt.Errorf("size mismatch: got %d bytes, expected %d", len(data), meta.Size)
	}

	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return nil, err
	}
	return meta, nil
}

// fetch pulls the file body. An unchunked file is read straight from the
// object store through a presigned URL; a chunked one only exists as parts,
// so the server reconstructs it.
func (u *Uploader) fetch(ctx context.Context, meta *api.File) ([]byte, error) {
	if meta.IsChunked {
		return u.client.DownloadFile(ctx, meta.ID)
	}
	url, err := u.client.FileDownloadURL(ctx, meta.ID)
	if err != nil {
		return nil, err
	}
	return netx.DownloadPresigned(u.client.HTTPClient(), url)
}
