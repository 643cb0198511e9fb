package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/shared"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the search service address used when none is configured.
	DefaultBaseURL = "http://localhost:5000"
	// SearchPath is the endpoint receiving search submissions.
	SearchPath = "/api/search"
)

var errUploadFinished = errors.New("upload finished")

// SearchClient sends search submissions to the remote search service.
type SearchClient struct {
	baseURL          string
	httpClient       *http.Client
	progressInterval time.Duration
	logger           *log.Logger
}

// SearchClientOpts configures a [SearchClient].
type SearchClientOpts struct {
	BaseURL          string
	HTTPClient       *http.Client
	Token            string        // Optional bearer token
	ProgressInterval time.Duration // Minimum time between intermediate progress events
	Logger           *log.Logger
}

// NewSearchClient creates a new [SearchClient], defaulting to [DefaultBaseURL] and [http.DefaultClient].
func NewSearchClient(opts SearchClientOpts) *SearchClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	client := opts.HTTPClient
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, opts.HTTPClient)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.Token,
			TokenType:   "Bearer",
		}))
	}

	return &SearchClient{
		baseURL:          strings.TrimRight(opts.BaseURL, "/"),
		httpClient:       client,
		progressInterval: opts.ProgressInterval,
		logger:           opts.Logger,
	}
}

// BaseURL returns the service address requests are sent to.
func (c *SearchClient) BaseURL() string { return c.baseURL }

// Search uploads files with params in a single multipart POST and returns the raw response.
//
// Upload progress is sent on progress (which may be nil); every event is delivered before
// Search returns.
func (c *SearchClient) Search(ctx context.Context, files models.FileSet, params models.SearchParameters, progress chan<- UploadProgress) (*APIResponse, error) {
	boundary := multipart.NewWriter(io.Discard).Boundary()
	total, err := measureBody(files, params, boundary)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}

	pr, pw := io.Pipe()
	written := make(chan struct{})
	go func() {
		defer close(written)
		writeBody(pw, files, params, boundary)
	}()

	reporter := newProgressReporter(ctx, total, progress, c.progressInterval)
	finish := func() {
		reporter.close()
		pr.CloseWithError(errUploadFinished)
		<-written
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SearchPath, &progressReader{r: pr, reporter: reporter})
	if err != nil {
		finish()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.ContentLength = total
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	logger := shared.WithLogger(c.logger, "request_id", requestID)
	logger.Debug("sending search", "files", files.Len(), "bytes", total, "workers", params.NumWorkers, "exact", params.ExactMatch)

	resp, err := c.httpClient.Do(req)
	finish()
	if err != nil {
		logger.Warn("search request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	apiResp, err := newAPIResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	logger.Debug("search response", "status", apiResp.StatusCode, "bytes", len(apiResp.Body))
	return apiResp, nil
}
