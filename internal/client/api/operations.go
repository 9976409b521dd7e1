package api

import (
	"context"
	"net/http"
	"time"
)

// DTOs mirroring the server's JSON responses.

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type File struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	IsChunked   bool      `json:"is_chunked"`
	TotalChunks int       `json:"total_chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

type PartTicket struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Index int    `json:"index"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

type UploadTicket struct {
	ProjectID   string       `json:"project_id"`
	Name        string       `json:"name"`
	ContentType string       `json:"content_type"`
	Base        string       `json:"base"`
	Parts       []PartTicket `json:"parts"`
	Size        int64        `json:"size"`
	Chunked     bool         `json:"chunked"`
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/register", body, nil)
}

// Login authenticates and stores the returned token pair on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", body, &pair); err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

// Refresh rotates the stored token pair.
func (c *Client) Refresh(ctx context.Context) error {
	body := map[string]string{"refresh_token": c.refreshToken}
	var pair TokenPair
	if err := c.doOnce(ctx, http.MethodPost, "/api/v1/auth/refresh", body, &pair, ""); err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

// CreateProject adds a new project.
func (c *Client) CreateProject(ctx context.Context, name string) (*Project, error) {
	var p Project
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects", map[string]string{"name": name}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns the caller's projects.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out struct {
		Projects []Project `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// DeleteProject removes a project and all its files.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/projects/"+projectID, nil, nil)
}

// ListFiles returns the files of a project.
func (c *Client) ListFiles(ctx context.Context, projectID string) ([]File, error) {
	var out struct {
		Files []File `json:"files"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+projectID+"/files", nil, &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// GetFile returns a file's metadata.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	var f File
	if err := c.do(ctx, http.MethodGet, "/api/v1/files/"+fileID, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFile removes a file and its backing objects.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/files/"+fileID, nil, nil)
}

// BeginUpload asks the server to plan a chunked upload and hand back
// presigned part URLs.
func (c *Client) BeginUpload(ctx context.Context, projectID, name, contentType string, size int64) (*UploadTicket, error) {
	body := map[string]any{"name": name, "content_type": contentType, "size": size}
	var ticket UploadTicket
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects/"+projectID+"/uploads", body, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CompleteUpload confirms that every part of the ticket has been stored.
func (c *Client) CompleteUpload(ctx context.Context, ticket *UploadTicket) (*File, error) {
	var f File
	if err := c.do(ctx, http.MethodPost, "/api/v1/uploads/complete", ticket, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FileDownloadURL asks the server for a short-lived presigned GET URL
// pointing at an unchunked file's backing object.
func (c *Client) FileDownloadURL(ctx context.Context, fileID string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/files/"+fileID+"/url", nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// DownloadFile fetches the complete file body through the server.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	var data []byte
	err := c.doRaw(ctx, http.MethodGet, "/api/v1/files/"+fileID+"/content", &data)
	return data, err
}
