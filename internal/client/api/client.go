// Package api is the HTTP client for the StudyVault server. It holds the
// token pair and transparently refreshes an expired access token once per
// request before giving up.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/mkorolis/studyvault/internal/common"
	"github.com/mkorolis/studyvault/internal/netx"
)

// Client talks to the server's JSON API. It is not safe for concurrent use;
// the CLI drives it from a single goroutine.
type Client struct {
	baseURL      string
	http         *retryablehttp.Client
	accessToken  string
	refreshToken string
}

// New constructs a Client for the given base URL ("http://host:port").
func New(baseURL string, maxAttempts int, retryBaseDelay time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    netx.NewRetryingClient(maxAttempts, retryBaseDelay),
	}
}

// HTTPClient exposes the underlying retrying client for presigned transfers.
func (c *Client) HTTPClient() *retryablehttp.Client {
	return c.http
}

// IsLoggedIn reports whether the client holds an access token.
func (c *Client) IsLoggedIn() bool {
	return c.accessToken != ""
}

// Logout forgets the stored token pair.
func (c *Client) Logout() {
	c.accessToken = ""
	c.refreshToken = ""
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// do performs one JSON request. On a 401 caused by an expired access token
// it refreshes the pair and retries the request once.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	err := c.doOnce(ctx, method, path, body, out, c.accessToken)
	if err == nil {
		return nil
	}

	var ae *apiError
	if !asAPIError(err, &ae) || ae.Status != http.StatusUnauthorized || c.refreshToken == "" {
		return err
	}
	if ae.Message != "token expired" {
		return err
	}

	if rerr := c.Refresh(ctx); rerr != nil {
		return err
	}
	return c.doOnce(ctx, method, path, body, out, c.accessToken)
}

func asAPIError(err error, target **apiError) bool {
	ae, ok := err.(*apiError)
	if ok {
		*target = ae
	}
	return ok
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any, token string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doRaw fetches a binary body with the same 401-refresh-retry behavior as
// do.
func (c *Client) doRaw(ctx context.Context, method, path string, out *[]byte) error {
	err := c.doRawOnce(ctx, method, path, out)
	if err == nil {
		return nil
	}

	var ae *apiError
	if !asAPIError(err, &ae) || ae.Status != http.StatusUnauthorized || c.refreshToken == "" || ae.Message != "token expired" {
		return err
	}
	if rerr := c.Refresh(ctx); rerr != nil {
		return err
	}
	return c.doRawOnce(ctx, method, path, out)
}

func (c *Client) doRawOnce(ctx context.Context, method, path string, out *[]byte) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	*out, err = io.ReadAll(resp.Body)
	return err
}

func decodeError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if jerr := json.Unmarshal(data, &e); jerr != nil || e.Error == "" {
		e.Error = strings.TrimSpace(string(data))
	}
	return &apiError{Status: resp.StatusCode, Message: e.Error}
}
