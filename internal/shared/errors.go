package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSearchNotFound     = fmt.Errorf("search not found")

	// Search request errors
	ErrValidation         = fmt.Errorf("validation failed")
	ErrTransport          = fmt.Errorf("transport failed")
	ErrServer             = fmt.Errorf("server returned an error")
	ErrMalformedResponse  = fmt.Errorf("malformed response")
	ErrSubmissionInFlight = fmt.Errorf("a search is already in progress")
	ErrDirectoryNotFound  = fmt.Errorf("directory not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
