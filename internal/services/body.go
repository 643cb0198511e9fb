package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/kwscan/internal/models"
	"golang.org/x/time/rate"
)

// Multipart field names expected by the search service.
const (
	FieldFiles      = "files"
	FieldKeywords   = "keywords"
	FieldExactMatch = "exactMatch"
	FieldNumWorkers = "numWorkers"
)

// countWriter counts bytes without storing them.
type countWriter struct{ n int64 }

func (w *countWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// measureBody returns the exact size of the multipart body [writeBody] produces for the same boundary.
func measureBody(files models.FileSet, params models.SearchParameters, boundary string) (int64, error) {
	cw := &countWriter{}
	mw := multipart.NewWriter(cw)
	if err := mw.SetBoundary(boundary); err != nil {
		return 0, fmt.Errorf("invalid boundary: %w", err)
	}

	for _, f := range files.Files {
		if _, err := mw.CreateFormFile(FieldFiles, f.Name); err != nil {
			return 0, err
		}
		cw.n += f.Size
	}

	if err := writeFields(mw, params); err != nil {
		return 0, err
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}

	return cw.n, nil
}

// writeBody streams the multipart body into w and closes it, propagating any error to the reader side.
//
// Each file contributes exactly the size recorded at selection; a file that shrank since
// then fails the upload.
func writeBody(w *io.PipeWriter, files models.FileSet, params models.SearchParameters, boundary string) {
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(boundary); err != nil {
		w.CloseWithError(err)
		return
	}

	for _, f := range files.Files {
		part, err := mw.CreateFormFile(FieldFiles, f.Name)
		if err != nil {
			w.CloseWithError(err)
			return
		}
		if err := copyFile(part, f); err != nil {
			w.CloseWithError(err)
			return
		}
	}

	if err := writeFields(mw, params); err != nil {
		w.CloseWithError(err)
		return
	}

	w.CloseWithError(mw.Close())
}

func copyFile(dst io.Writer, f models.SelectedFile) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer src.Close()

	if _, err := io.CopyN(dst, src, f.Size); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%s changed since it was selected", f.Name)
		}
		return fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return nil
}

func writeFields(mw *multipart.Writer, params models.SearchParameters) error {
	fields := [][2]string{
		{FieldKeywords, params.Keywords},
		{FieldExactMatch, strconv.FormatBool(params.ExactMatch)},
		{FieldNumWorkers, strconv.Itoa(params.NumWorkers)},
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", kv[0], err)
		}
	}
	return nil
}

// progressReader reports bytes read from the request body to a [progressReporter].
type progressReader struct {
	r        io.Reader
	reporter *progressReporter
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.reporter.add(int64(n))
	}
	return n, err
}

// progressReporter turns byte counts into ordered [UploadProgress] events.
//
// Only percentage changes are emitted, throttled by limiter. The event covering the last byte
// is always emitted exactly once, even when rounding already reached 100%.
// Once closed, no further event is sent.
type progressReporter struct {
	ctx     context.Context
	out     chan<- UploadProgress
	limiter *rate.Limiter

	mu      sync.Mutex
	sent    int64
	total   int64
	lastPct int
	final   bool

	done      chan struct{}
	closeOnce sync.Once
}

func newProgressReporter(ctx context.Context, total int64, out chan<- UploadProgress, interval time.Duration) *progressReporter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &progressReporter{
		ctx:     ctx,
		out:     out,
		limiter: rate.NewLimiter(limit, 1),
		total:   total,
		done:    make(chan struct{}),
	}
}

func (p *progressReporter) add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-p.done:
		return
	default:
	}

	p.sent += n
	update := UploadProgress{Sent: min(p.sent, p.total), Total: p.total}
	pct := update.Percent()
	done := update.Done()
	if p.final || (pct <= p.lastPct && !done) {
		return
	}
	if !done && !p.limiter.Allow() {
		return
	}
	p.lastPct = pct
	p.final = done

	if p.out == nil {
		return
	}
	select {
	case p.out <- update:
	case <-p.done:
	case <-p.ctx.Done():
	}
}

// close stops event delivery and waits for any in-progress send to finish.
func (p *progressReporter) close() {
	p.closeOnce.Do(func() { close(p.done) })
	p.mu.Lock()
	defer p.mu.Unlock()
}
