// Package netx moves bytes to and from presigned object-store URLs. Every
// transfer runs on a retryablehttp client so transient 5xx/network failures
// are retried with an increasing backoff before the caller sees an error.
package netx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// NewRetryingClient builds an HTTP client that retries failed requests up to
// maxAttempts total attempts, waiting attempt*baseDelay between tries.
// Logging is disabled; callers log outcomes themselves.
func NewRetryingClient(maxAttempts int, baseDelay time.Duration) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = maxAttempts - 1
	c.Logger = nil
	c.Backoff = func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
		return time.Duration(attemptNum+1) * baseDelay
	}
	return c
}

// UploadPresigned PUTs body to a presigned URL with the given content type.
// Any non-2xx terminal status is an error carrying the response status and
// a snippet of the body.
func UploadPresigned(c *retryablehttp.Client, url string, body []byte, contentType string) error {
	req, err := retryablehttp.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}

// DownloadPresigned GETs the object behind a presigned URL and returns its
// bytes.
func DownloadPresigned(c *retryablehttp.Client, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}
	return io.ReadAll(resp.Body)
}
