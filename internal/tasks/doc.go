// Package tasks orchestrates keyword search submissions against the remote search service.
//
// # Request Lifecycle
//
// The [Orchestrator] owns a single [RequestState] and is the only code that changes it:
//
//	Idle ──Submit──▶ Validating ──▶ Uploading(0..100) ──▶ AwaitingResponse ──▶ Succeeded | Failed
//
// Validation failures (no folder selected, unusable worker count) return a [SearchError] of
// kind [ValidationError] and leave the state as it was. [Succeeded] and [Failed] only move on
// through a fresh submission, [Orchestrator.SelectFiles] or [Orchestrator.Reset].
//
// At most one submission is in flight; [Orchestrator.Submit] called while another is
// validating, uploading or awaiting a response fails with [shared.ErrSubmissionInFlight].
//
// # Progress Reporting
//
// Upload progress is driven by bytes handed to the transport, never by server-side work.
// Percentages never decrease and all of them are observed before the terminal state.
//
// The [ProgressUpdate] struct carries a phase, step counters, a display message and a
// snapshot of the request state. Updates use select with default so a slow reader cannot
// stall an upload; [Orchestrator.State] is always authoritative.
//
// # Search History
//
// The optional [HistoryRecorder] interface persists a [models.SearchRun] after every
// terminal state. Recorder errors are logged and ignored.
package tasks
