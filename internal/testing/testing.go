// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		io.Copy(io.Discard, req.Body)
		req.Body.Close()
	}
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// UploadedFile is a file part captured by [SearchServer].
type UploadedFile struct {
	Filename string
	Content  string
}

// CapturedRequest is the decoded multipart form of a request received by [SearchServer].
type CapturedRequest struct {
	Method        string
	Path          string
	ContentLength int64
	Header        http.Header
	Files         []UploadedFile
	Fields        map[string]string
}

// SearchServer is an httptest server standing in for the remote search service.
//
// It records every request it receives and replies with the configured status and body.
type SearchServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []CapturedRequest
	status   int
	body     string
}

// NewSearchServer starts a [SearchServer] that replies with status and body; it is closed on test cleanup.
func NewSearchServer(t *testing.T, status int, body string) *SearchServer {
	t.Helper()
	s := &SearchServer{status: status, body: body}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// NewJSONSearchServer starts a [SearchServer] replying with v encoded as JSON.
func NewJSONSearchServer(t *testing.T, status int, v any) *SearchServer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}
	return NewSearchServer(t, status, string(data))
}

func (s *SearchServer) handle(w http.ResponseWriter, r *http.Request) {
	captured := CapturedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		ContentLength: r.ContentLength,
		Header:        r.Header.Clone(),
		Fields:        map[string]string{},
	}

	if err := r.ParseMultipartForm(32 << 20); err == nil {
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				captured.Fields[key] = values[0]
			}
		}
		for _, fh := range r.MultipartForm.File["files"] {
			captured.Files = append(captured.Files, UploadedFile{
				Filename: fh.Filename,
				Content:  readPart(fh),
			})
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, captured)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	w.Write([]byte(s.body))
}

// Requests returns a copy of every request received so far.
func (s *SearchServer) Requests() []CapturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CapturedRequest(nil), s.requests...)
}

func readPart(fh *multipart.FileHeader) string {
	f, err := fh.Open()
	if err != nil {
		return ""
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	return string(data)
}

// WriteTree creates the given files (slash-separated relative paths) under a new temp dir and returns its path.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return root
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
