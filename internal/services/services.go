// package services implements the HTTP client for the remote keyword search service
package services

import (
	"fmt"
	"io"
	"math"
	"net/http"
)

// UploadProgress reports how much of a request body has been handed to the transport.
type UploadProgress struct {
	Sent  int64 // Bytes sent so far
	Total int64 // Size of the whole body
}

// Percent returns round(Sent/Total*100) clamped to [0, 100].
//
// An empty body counts as fully sent.
func (p UploadProgress) Percent() int {
	return percent(p.Sent, p.Total)
}

// Done reports whether every byte of the body has been sent.
func (p UploadProgress) Done() bool {
	return p.Total <= 0 || p.Sent >= p.Total
}

func percent(sent, total int64) int {
	if total <= 0 {
		return 100
	}
	pct := int(math.Round(float64(sent) / float64(total) * 100))
	return max(0, min(100, pct))
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports whether the service replied with HTTP 200.
func (r *APIResponse) OK() bool {
	return r.StatusCode == http.StatusOK
}

func newAPIResponse(resp *http.Response) (*APIResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}
