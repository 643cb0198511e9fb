package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/kwscan/internal/collector"
	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/shared"
	tu "github.com/desertthunder/kwscan/internal/testing"
)

// drain collects progress events until the returned stop func is called.
func drain(ch chan UploadProgress) (stop func() []UploadProgress) {
	var (
		events []UploadProgress
		wg     sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range ch {
			events = append(events, ev)
		}
	}()
	return func() []UploadProgress {
		close(ch)
		wg.Wait()
		return events
	}
}

func collect(t *testing.T, files map[string]string) models.FileSet {
	t.Helper()
	set, err := collector.Collect(tu.WriteTree(t, files))
	if err != nil {
		t.Fatalf("failed to collect files: %v", err)
	}
	return set
}

func TestSearchClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Defaults", func(t *testing.T) {
			c := NewSearchClient(SearchClientOpts{})

			if c.BaseURL() != DefaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", DefaultBaseURL, c.BaseURL())
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			c := NewSearchClient(SearchClientOpts{BaseURL: "http://example.com/"})
			if c.BaseURL() != "http://example.com" {
				t.Errorf("expected trailing slash to be trimmed, got %s", c.BaseURL())
			}
		})

		t.Run("With Token Wraps Client", func(t *testing.T) {
			base := &http.Client{}
			c := NewSearchClient(SearchClientOpts{HTTPClient: base, Token: "secret"})
			if c.httpClient == base {
				t.Error("expected token to wrap the client")
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Sends Every File And Parameter", func(t *testing.T) {
			server := tu.NewSearchServer(t, http.StatusOK, `{"results":[],"timing":{"sequential":1,"parallel":0.5}}`)
			files := collect(t, map[string]string{
				"a.txt":     "alpha beta",
				"sub/b.txt": "gamma",
				"sub/c.pdf": "%PDF",
				"empty.log": "",
			})

			c := NewSearchClient(SearchClientOpts{BaseURL: server.URL})
			params := models.SearchParameters{Keywords: "alpha, gamma", ExactMatch: true, NumWorkers: 3}

			resp, err := c.Search(context.Background(), files, params, nil)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if !resp.OK() || len(resp.Body) == 0 {
				t.Errorf("expected 200 response with body, got status %d body=%q", resp.StatusCode, resp.Body)
			}

			reqs := server.Requests()
			if len(reqs) != 1 {
				t.Fatalf("expected exactly one request, got %d", len(reqs))
			}
			got := reqs[0]

			if got.Method != http.MethodPost || got.Path != SearchPath {
				t.Errorf("expected POST %s, got %s %s", SearchPath, got.Method, got.Path)
			}
			if got.Header.Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
			if got.ContentLength <= files.TotalSize() {
				t.Errorf("expected content length above file total, got %d", got.ContentLength)
			}

			if len(got.Files) != 4 {
				t.Fatalf("expected 4 uploaded files, got %d", len(got.Files))
			}
			contents := map[string]string{}
			for _, f := range got.Files {
				contents[f.Filename] = f.Content
			}
			for name, want := range map[string]string{"a.txt": "alpha beta", "b.txt": "gamma", "c.pdf": "%PDF", "empty.log": ""} {
				if c, ok := contents[name]; !ok || c != want {
					t.Errorf("file %s: got %q (present=%v), want %q", name, c, ok, want)
				}
			}

			if got.Fields[FieldKeywords] != "alpha, gamma" {
				t.Errorf("keywords = %q", got.Fields[FieldKeywords])
			}
			if got.Fields[FieldExactMatch] != "true" {
				t.Errorf("exactMatch = %q", got.Fields[FieldExactMatch])
			}
			if got.Fields[FieldNumWorkers] != "3" {
				t.Errorf("numWorkers = %q", got.Fields[FieldNumWorkers])
			}
		})

		t.Run("Reports Monotonic Progress Ending At 100", func(t *testing.T) {
			server := tu.NewSearchServer(t, http.StatusOK, `{}`)
			files := collect(t, map[string]string{
				"big.txt": strings.Repeat("keyword line\n", 20000),
			})

			ch := make(chan UploadProgress)
			stop := drain(ch)

			c := NewSearchClient(SearchClientOpts{BaseURL: server.URL})
			if _, err := c.Search(context.Background(), files, models.SearchParameters{NumWorkers: 1}, ch); err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			events := stop()

			if len(events) == 0 {
				t.Fatal("expected progress events")
			}
			last := 0
			for i, ev := range events {
				if ev.Percent() < last {
					t.Errorf("event %d decreased: %d < %d", i, ev.Percent(), last)
				}
				if ev.Percent() < 0 || ev.Percent() > 100 {
					t.Errorf("event %d out of range: %d", i, ev.Percent())
				}
				last = ev.Percent()
			}
			final := events[len(events)-1]
			if final.Percent() != 100 || !final.Done() {
				t.Errorf("expected final event at 100%%, got %+v", final)
			}
		})

		t.Run("Throttled Progress Still Reports Completion", func(t *testing.T) {
			server := tu.NewSearchServer(t, http.StatusOK, `{}`)
			files := collect(t, map[string]string{"big.txt": strings.Repeat("x", 256*1024)})

			ch := make(chan UploadProgress)
			stop := drain(ch)

			c := NewSearchClient(SearchClientOpts{BaseURL: server.URL, ProgressInterval: time.Hour})
			if _, err := c.Search(context.Background(), files, models.SearchParameters{NumWorkers: 1}, ch); err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			events := stop()

			if len(events) == 0 || len(events) > 2 {
				t.Fatalf("expected at most one intermediate event plus completion, got %d", len(events))
			}
			if events[len(events)-1].Percent() != 100 {
				t.Errorf("expected completion event, got %+v", events[len(events)-1])
			}
		})

		t.Run("Non-200 Is Returned As Response", func(t *testing.T) {
			server := tu.NewSearchServer(t, http.StatusBadRequest, `{"error":"No files uploaded."}`)
			files := collect(t, map[string]string{"a.txt": "a"})

			c := NewSearchClient(SearchClientOpts{BaseURL: server.URL})
			resp, err := c.Search(context.Background(), files, models.SearchParameters{NumWorkers: 1}, nil)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if resp.OK() || resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", resp.StatusCode)
			}
		})

		t.Run("Bearer Token", func(t *testing.T) {
			server := tu.NewSearchServer(t, http.StatusOK, `{}`)
			files := collect(t, map[string]string{"a.txt": "a"})

			c := NewSearchClient(SearchClientOpts{BaseURL: server.URL, Token: "secret"})
			if _, err := c.Search(context.Background(), files, models.SearchParameters{NumWorkers: 1}, nil); err != nil {
				t.Fatalf("Search() error = %v", err)
			}

			if got := server.Requests()[0].Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("Authorization = %q, want Bearer secret", got)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
			}
			files := collect(t, map[string]string{"a.txt": "a"})

			c := NewSearchClient(SearchClientOpts{BaseURL: "http://example.com", HTTPClient: client})
			_, err := c.Search(context.Background(), files, models.SearchParameters{NumWorkers: 1}, nil)

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}
			files := collect(t, map[string]string{"a.txt": "a"})

			c := NewSearchClient(SearchClientOpts{BaseURL: "http://example.com", HTTPClient: client})
			_, err := c.Search(context.Background(), files, models.SearchParameters{NumWorkers: 1}, nil)

			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("Unreachable Server", func(t *testing.T) {
			server := tu.NewSearchServer(t, http.StatusOK, `{}`)
			url := server.URL
			server.Close()
			files := collect(t, map[string]string{"a.txt": "a"})

			c := NewSearchClient(SearchClientOpts{BaseURL: url})
			_, err := c.Search(context.Background(), files, models.SearchParameters{NumWorkers: 1}, nil)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})
}

func TestMeasureBody(t *testing.T) {
	files := collect(t, map[string]string{"a.txt": "hello", "b/c.txt": "world!"})
	params := models.SearchParameters{Keywords: "hello", NumWorkers: 2}
	boundary := "testboundary"

	want, err := measureBody(files, params, boundary)
	if err != nil {
		t.Fatalf("measureBody() error = %v", err)
	}

	var buf strings.Builder
	pr, pw := io.Pipe()
	go writeBody(pw, files, params, boundary)
	n, err := io.Copy(&buf, pr)
	if err != nil {
		t.Fatalf("writeBody() error = %v", err)
	}

	if n != want {
		t.Errorf("measured %d bytes, body has %d", want, n)
	}
	if !strings.Contains(buf.String(), `name="files"; filename="b/c.txt"`) {
		t.Errorf("expected relative filename in body, got %q", buf.String())
	}
}

func TestUploadProgress(t *testing.T) {
	tc := []struct {
		name  string
		sent  int64
		total int64
		want  int
	}{
		{name: "start", sent: 0, total: 200, want: 0},
		{name: "rounds half up", sent: 1, total: 200, want: 1},
		{name: "rounds down", sent: 2, total: 300, want: 1},
		{name: "complete", sent: 200, total: 200, want: 100},
		{name: "overshoot clamps", sent: 300, total: 200, want: 100},
		{name: "empty body", sent: 0, total: 0, want: 100},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := UploadProgress{Sent: tt.sent, Total: tt.total}.Percent()
			if got != tt.want {
				t.Errorf("Percent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProgressReporter(t *testing.T) {
	t.Run("Emits Last Byte After Rounding Reached 100", func(t *testing.T) {
		out := make(chan UploadProgress, 8)
		r := newProgressReporter(context.Background(), 1000, out, 0)

		r.add(996)
		r.add(4)
		r.close()
		close(out)

		var events []UploadProgress
		for ev := range out {
			events = append(events, ev)
		}

		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %+v", events)
		}
		if events[0].Percent() != 100 || events[0].Done() {
			t.Errorf("expected rounded 100%% before the last byte, got %+v", events[0])
		}
		if !events[1].Done() {
			t.Errorf("expected final event to cover every byte, got %+v", events[1])
		}
	})

	t.Run("Final Event Is Sent Once", func(t *testing.T) {
		out := make(chan UploadProgress, 8)
		r := newProgressReporter(context.Background(), 10, out, 0)

		r.add(10)
		r.add(5)
		r.close()
		close(out)

		count := 0
		for range out {
			count++
		}
		if count != 1 {
			t.Errorf("expected a single event, got %d", count)
		}
	})

	t.Run("Throttled Reporter Keeps Completion", func(t *testing.T) {
		out := make(chan UploadProgress, 8)
		r := newProgressReporter(context.Background(), 100, out, time.Hour)

		for range 10 {
			r.add(10)
		}
		r.close()
		close(out)

		var events []UploadProgress
		for ev := range out {
			events = append(events, ev)
		}
		if len(events) != 2 {
			t.Fatalf("expected first event plus completion, got %+v", events)
		}
		if !events[1].Done() {
			t.Errorf("expected completion, got %+v", events[1])
		}
	})
}
