package audit

import (
	"fmt"

	"seoaudit/internal/fetcher"
)

// Kind categorizes the errors an analysis can return.
type Kind int

const (
	InvalidInput Kind = iota + 1
	FetchFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case FetchFailure:
		return "fetch_failure"
	default:
		return "unknown"
	}
}

// Error is the only error type Analyze returns.
type Error struct {
	Kind       Kind
	Reason     fetcher.Reason
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func invalidInput(raw string, cause error) *Error {
	return &Error{
		Kind:    InvalidInput,
		Message: fmt.Sprintf("invalid url %q", raw),
		Cause:   cause,
	}
}

func fetchFailure(target string, cause error) *Error {
	return &Error{
		Kind:    FetchFailure,
		Reason:  fetcher.ReasonOf(cause),
		Message: fmt.Sprintf("fetch %s failed", target),
		Cause:   cause,
	}
}

func statusFailure(target string, statusCode int) *Error {
	return &Error{
		Kind:       FetchFailure,
		Reason:     fetcher.ReasonHTTPStatus,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("fetch %s failed: http status %d", target, statusCode),
	}
}
