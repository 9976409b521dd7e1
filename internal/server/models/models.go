// Package models holds the server-side entities persisted in Postgres and
// the DTOs exchanged with the client during chunked uploads.
package models

import "time"

// User is an account that owns projects.
type User struct {
	CreatedAt    time.Time
	ID           string
	UserName     string
	PasswordHash []byte
}

// RefreshToken is a server-stored, single-use refresh token.
type RefreshToken struct {
	Expires time.Time
	UserID  string
	Token   string
}

// Project groups uploaded files under one owner.
type Project struct {
	CreatedAt time.Time
	ID        string
	OwnerID   string
	Name      string
}

// FileRecord is the durable entity representing an uploaded file. It is
// created once, after every backing object is durably stored, and never
// mutated except by deletion. The chunking manifest fields (IsChunked,
// TotalChunks, ChunkPattern) let any later reader enumerate the part
// objects without knowing the original upload parameters.
type FileRecord struct {
	CreatedAt    time.Time
	ID           string
	ProjectID    string
	OwnerID      string
	Name         string
	ContentType  string
	StoragePath  string
	ChunkPattern string
	FileSize     int64
	TotalChunks  int
	IsChunked    bool
}

// PartTicket is one unit of a client-driven chunked upload: the byte range
// the client must slice and the presigned URL to PUT it to.
type PartTicket struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Index int    `json:"index"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// UploadTicket describes a client-driven upload negotiated with the server:
// the storage base key and one PartTicket per upload unit (a single ticket
// for files below the chunking threshold).
type UploadTicket struct {
	ProjectID   string       `json:"project_id"`
	Name        string       `json:"name"`
	ContentType string       `json:"content_type"`
	Base        string       `json:"base"`
	Parts       []PartTicket `json:"parts"`
	Size        int64        `json:"size"`
	Chunked     bool         `json:"chunked"`
}
