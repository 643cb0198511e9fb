package tasks

import "github.com/desertthunder/kwscan/internal/shared"

// Messages surfaced to the user for each failure.
const (
	MsgSelectFolder   = "Please select a folder first."
	MsgInvalidWorkers = "Please enter a valid number of workers."
	MsgNetworkError   = "Network error occurred"
	MsgParseFailure   = "Failed to parse server response"
)

// ErrorKind classifies why a submission did not succeed.
type ErrorKind int

const (
	ValidationError ErrorKind = iota
	TransportError
	ServerError
	MalformedResponseError
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "validation"
	case TransportError:
		return "transport"
	case ServerError:
		return "server"
	case MalformedResponseError:
		return "malformed_response"
	default:
		return ""
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case ValidationError:
		return shared.ErrValidation
	case TransportError:
		return shared.ErrTransport
	case ServerError:
		return shared.ErrServer
	default:
		return shared.ErrMalformedResponse
	}
}

// SearchError is returned by [Orchestrator.Submit] for every unsuccessful submission.
//
// Message is what the user sees. errors.Is matches the shared sentinel for Kind as well as Err.
type SearchError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func newSearchError(kind ErrorKind, msg string, err error) *SearchError {
	return &SearchError{Kind: kind, Message: msg, Err: err}
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *SearchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}
