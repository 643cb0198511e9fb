// package tasks implements the search request lifecycle.
//
// The core abstraction is Orchestrator, which validates a submission, uploads the selected files
// in one request and maps the outcome onto a RequestState.
package tasks

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kwscan/internal/formatter"
	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/services"
	"github.com/desertthunder/kwscan/internal/shared"
)

// Searcher sends one search submission and reports upload progress.
//
// Every progress event must be sent before Search returns.
type Searcher interface {
	Search(ctx context.Context, files models.FileSet, params models.SearchParameters, progress chan<- services.UploadProgress) (*services.APIResponse, error)
}

// HistoryRecorder persists finished submissions.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, run *models.SearchRun) error
}

// Orchestrator owns the request state of the search form.
type Orchestrator struct {
	client   Searcher
	recorder HistoryRecorder
	logger   *log.Logger
	maxCores int

	mu    sync.Mutex
	state RequestState
	files models.FileSet
}

// OrchestratorOpts configures an [Orchestrator].
type OrchestratorOpts struct {
	Client   Searcher
	Recorder HistoryRecorder // Optional
	Logger   *log.Logger
	MaxCores int // Upper bound for the worker count, see [shared.MaxCores]
}

// NewOrchestrator creates an idle [Orchestrator] with no files selected.
func NewOrchestrator(opts OrchestratorOpts) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.MaxCores < 1 {
		opts.MaxCores = shared.DefaultMaxCores
	}
	return &Orchestrator{
		client:   opts.Client,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		maxCores: opts.MaxCores,
	}
}

// MaxCores returns the worker count bound.
func (o *Orchestrator) MaxCores() int { return o.maxCores }

// State returns a snapshot of the current request state.
func (o *Orchestrator) State() RequestState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Files returns the currently selected files.
func (o *Orchestrator) Files() models.FileSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.files
}

// SelectFiles replaces the selected files.
//
// A finished result or error is cleared back to Idle. A submission in flight keeps the files
// it started with.
func (o *Orchestrator) SelectFiles(files models.FileSet) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.files = files
	if o.state.Kind.Terminal() {
		o.state = RequestState{Kind: Idle}
	}
	o.logger.Debug("files selected", "root", files.Root, "count", files.Len(), "bytes", files.TotalSize())
}

// Reset returns a finished request to Idle.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Kind.InFlight() {
		return shared.ErrSubmissionInFlight
	}
	o.state = RequestState{Kind: Idle}
	return nil
}

// Submit validates raw against the selected files, uploads them and waits for the result.
//
// Progress updates are sent on updates (which may be nil); the receiver must keep reading
// until Submit returns, or cancel ctx. Failures are
// returned as a [*SearchError]; a validation failure leaves the state untouched. Calling
// Submit while another submission is in flight returns [shared.ErrSubmissionInFlight].
func (o *Orchestrator) Submit(ctx context.Context, raw RawParameters, updates chan<- ProgressUpdate) (*models.SearchResponse, error) {
	o.mu.Lock()
	if o.state.Kind.InFlight() {
		o.mu.Unlock()
		return nil, shared.ErrSubmissionInFlight
	}
	previous := o.state
	files := o.files
	o.state = RequestState{Kind: Validating}
	o.mu.Unlock()

	params, err := Validate(files, raw, o.maxCores)
	if err != nil {
		o.mu.Lock()
		o.state = previous
		o.mu.Unlock()
		o.logger.Debug("submission rejected", "error", err)
		return nil, err
	}

	o.sendProgress(ctx, updates, validatingUpdate(o.State(), files.Len()))

	state := o.transition(RequestState{Kind: Uploading, Params: params})
	o.sendProgress(ctx, updates, uploadUpdate(state, services.UploadProgress{Total: files.TotalSize()}))

	started := time.Now()
	resp, err := o.upload(ctx, files, params, updates)
	o.logger.Debug("submission finished", "elapsed", time.Since(started), "error", err)

	o.record(ctx, files, params, o.State())
	return resp, err
}

func (o *Orchestrator) upload(ctx context.Context, files models.FileSet, params models.SearchParameters, updates chan<- ProgressUpdate) (*models.SearchResponse, error) {
	type outcome struct {
		resp *services.APIResponse
		err  error
	}

	progress := make(chan services.UploadProgress)
	done := make(chan outcome, 1)
	go func() {
		resp, err := o.client.Search(ctx, files, params, progress)
		close(progress)
		done <- outcome{resp: resp, err: err}
	}()

	for p := range progress {
		if state, ok := o.advance(p); ok {
			o.sendProgress(ctx, updates, uploadUpdate(state, p))
			if state.Kind == AwaitingResponse {
				o.sendProgress(ctx, updates, awaitingUpdate(state))
			}
		}
	}
	result := <-done

	if result.err != nil {
		o.logger.Warn("search transport failed", "error", result.err)
		return nil, o.fail(ctx, updates, newSearchError(TransportError, MsgNetworkError, result.err))
	}

	if state := o.State(); state.Kind == Uploading {
		state = o.transition(RequestState{Kind: AwaitingResponse, Progress: 100, Params: params})
		o.sendProgress(ctx, updates, awaitingUpdate(state))
	}

	if !result.resp.OK() {
		msg := formatter.ParseErrorMessage(result.resp.Body)
		o.logger.Warn("search service returned an error", "status", result.resp.StatusCode, "message", msg)
		return nil, o.fail(ctx, updates, newSearchError(ServerError, msg, nil))
	}

	parsed, err := formatter.ParseSearchResponse(result.resp.Body)
	if err != nil {
		o.logger.Warn("unreadable search response", "error", err)
		return nil, o.fail(ctx, updates, newSearchError(MalformedResponseError, MsgParseFailure, err))
	}

	state := o.transition(RequestState{Kind: Succeeded, Progress: 100, Response: parsed, Params: params})
	o.sendProgress(ctx, updates, completedUpdate(state))
	return parsed, nil
}

// advance applies a byte-progress event, returning the new state when the percentage moved.
func (o *Orchestrator) advance(p services.UploadProgress) (RequestState, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Kind != Uploading {
		return o.state, false
	}

	pct := max(o.state.Progress, p.Percent())
	if pct == o.state.Progress && !p.Done() {
		return o.state, false
	}

	o.state.Progress = pct
	if p.Done() {
		o.state = RequestState{Kind: AwaitingResponse, Progress: 100, Params: o.state.Params}
	}
	return o.state, true
}

func (o *Orchestrator) fail(ctx context.Context, updates chan<- ProgressUpdate, err *SearchError) error {
	state := o.State()
	state = o.transition(RequestState{Kind: Failed, Progress: state.Progress, Message: err.Message, Params: state.Params})
	o.sendProgress(ctx, updates, failedUpdate(state))
	return err
}

func (o *Orchestrator) transition(next RequestState) RequestState {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = next
	return next
}

// sendProgress sends a progress update through the channel.
//
// Upload events are dropped when the receiver is not ready; other phases wait for it or for ctx.
func (o *Orchestrator) sendProgress(ctx context.Context, updates chan<- ProgressUpdate, update ProgressUpdate) {
	if updates == nil {
		return
	}
	if update.Phase == Upload {
		select {
		case updates <- update:
		default:
			o.logger.Debug("progress update dropped", "state", update.State)
		}
		return
	}
	select {
	case updates <- update:
	case <-ctx.Done():
	}
}

func (o *Orchestrator) record(ctx context.Context, files models.FileSet, params models.SearchParameters, state RequestState) {
	if o.recorder == nil || !state.Kind.Terminal() {
		return
	}

	run := newSearchRun(files, params, state)
	if err := o.recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		o.logger.Warn("failed to record search history", "error", err)
		return
	}
	o.logger.Debug("search recorded", "id", run.ID)
}

func newSearchRun(files models.FileSet, params models.SearchParameters, state RequestState) *models.SearchRun {
	run := &models.SearchRun{
		ID:         shared.GenerateID(),
		Root:       files.Root,
		Parameters: params,
		FileCount:  files.Len(),
		TotalBytes: files.TotalSize(),
		Status:     models.RunFailed,
		Error:      state.Message,
		Results:    []models.MatchResult{},
		CreatedAt:  time.Now().UTC(),
	}
	if state.Kind == Succeeded && state.Response != nil {
		timing := state.Response.Timing
		run.Status = models.RunSucceeded
		run.Timing = &timing
		run.Results = state.Response.Results
		run.MatchCount = len(state.Response.Results)
	}
	return run
}

// AsSearchError unwraps err into a [*SearchError] when it is one.
func AsSearchError(err error) (*SearchError, bool) {
	var se *SearchError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
