package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// Reason classifies why a fetch produced no usable response.
type Reason string

const (
	ReasonTimeout         Reason = "timeout"
	ReasonConnectionError Reason = "connection_error"
	// ReasonHTTPStatus is never produced by Fetch itself; callers that require 2xx use it.
	ReasonHTTPStatus Reason = "http_status"
	ReasonOther      Reason = "other"
)

type Failure struct {
	Reason Reason
	URL    string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("fetch %s: %s", f.URL, f.Reason)
	}

	return fmt.Sprintf("fetch %s: %s: %v", f.URL, f.Reason, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ReasonOf returns the Reason of a *Failure in err's chain, or ReasonOther.
func ReasonOf(err error) Reason {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Reason
	}

	return ReasonOther
}

func newFailure(rawURL string, err error) *Failure {
	return &Failure{
		Reason: classify(err),
		URL:    rawURL,
		Err:    err,
	}
}

func classify(err error) Reason {
	switch {
	case isTimeout(err):
		return ReasonTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, errInvalidRequest):
		return ReasonOther
	case isConnectionError(err):
		return ReasonConnectionError
	default:
		return ReasonOther
	}
}
