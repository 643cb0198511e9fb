package tasks

import (
	"fmt"

	"github.com/desertthunder/kwscan/internal/services"
)

// ProgressUpdate represents a progress event during a submission.
//
// Used to send real-time updates to the CLI or UI layer for display. Intermediate Upload
// events are dropped when the receiver falls behind; every other phase is always delivered.
type ProgressUpdate struct {
	Phase   Phase        // Operation phase
	Step    int          // Current step number within phase
	Total   int          // Total steps in this phase
	Message string       // Human-readable message for display
	State   RequestState // Request state after this event
	Data    any          // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Prepare Phase = iota
	Upload
	Await
	Complete
	Fail
)

func (p Phase) String() string {
	switch p {
	case Prepare:
		return "prepare"
	case Upload:
		return "upload"
	case Await:
		return "await"
	case Complete:
		return "complete"
	case Fail:
		return "fail"
	default:
		return ""
	}
}

func validatingUpdate(state RequestState, fileCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Prepare,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Preparing %d files...", fileCount),
		State:   state,
	}
}

func uploadUpdate(state RequestState, p services.UploadProgress) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Upload,
		Step:    state.Progress,
		Total:   100,
		Message: fmt.Sprintf("Uploading... %d%%", state.Progress),
		State:   state,
		Data:    p,
	}
}

func awaitingUpdate(state RequestState) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Await,
		Step:    100,
		Total:   100,
		Message: "Upload complete, waiting for results...",
		State:   state,
	}
}

func completedUpdate(state RequestState) ProgressUpdate {
	count := 0
	if state.Response != nil {
		count = len(state.Response.Results)
	}
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ Search complete (%d matches)", count),
		State:   state,
		Data:    state.Response,
	}
}

func failedUpdate(state RequestState) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Fail,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✗ %s", state.Message),
		State:   state,
	}
}
