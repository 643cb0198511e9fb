package tasks

import (
	"fmt"

	"github.com/desertthunder/kwscan/internal/models"
)

// StateKind enumerates the request lifecycle states.
type StateKind int

const (
	Idle StateKind = iota
	Validating
	Uploading
	AwaitingResponse
	Succeeded
	Failed
)

func (k StateKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Uploading:
		return "uploading"
	case AwaitingResponse:
		return "awaiting_response"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// InFlight reports whether a submission is between validation and its terminal state.
func (k StateKind) InFlight() bool {
	return k == Validating || k == Uploading || k == AwaitingResponse
}

// Terminal reports whether the state holds the outcome of a submission.
func (k StateKind) Terminal() bool {
	return k == Succeeded || k == Failed
}

// RequestState is a snapshot of the request lifecycle.
type RequestState struct {
	Kind     StateKind
	Progress int                     // Upload percentage, meaningful from Uploading on
	Response *models.SearchResponse  // Set when Succeeded
	Message  string                  // Set when Failed
	Params   models.SearchParameters // Parameters sent, set from Uploading on
}

func (s RequestState) String() string {
	switch s.Kind {
	case Uploading:
		return fmt.Sprintf("%s(%d)", s.Kind, s.Progress)
	case Failed:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Message)
	default:
		return s.Kind.String()
	}
}

// CanSubmit reports whether a new submission would be accepted.
func (s RequestState) CanSubmit() bool {
	return !s.Kind.InFlight()
}
