package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/ssoprobe/internal/model"
)

var (
	// ErrTransport: the socket never opened or closed before a reply.
	ErrTransport = errors.New("transport failure")
	// ErrRequest: network error, bad input or non-success status.
	ErrRequest = errors.New("request failure")
	// ErrParse: the body is not valid structured data.
	ErrParse = errors.New("parse failure")

	ErrTimeout    = errors.New("probe timed out")
	ErrSuperseded = errors.New("superseded by a newer activation")
	ErrCanceled   = errors.New("probe canceled")
)

// Classify maps an error returned by a probe onto its error kind.
func Classify(err error) model.ErrorKind {
	switch {
	case err == nil:
		return model.ErrorNone
	case errors.Is(err, ErrSuperseded):
		return model.ErrorSuperseded
	case errors.Is(err, ErrTimeout):
		return model.ErrorTimeout
	case errors.Is(err, ErrCanceled):
		return model.ErrorCanceled
	case errors.Is(err, ErrParse):
		return model.ErrorParse
	case errors.Is(err, ErrRequest):
		return model.ErrorRequest
	case errors.Is(err, ErrTransport):
		return model.ErrorTransport
	default:
		return model.ErrorUnknown
	}
}

// contextErr turns a done context into one of the package sentinels, keeping
// the cause a Slot attached. It returns nil while ctx is live.
func contextErr(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	cause := context.Cause(ctx)
	switch {
	case errors.Is(cause, ErrTimeout), errors.Is(cause, ErrSuperseded), errors.Is(cause, ErrCanceled):
		return cause
	case errors.Is(cause, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, cause)
	default:
		return fmt.Errorf("%w: %w", ErrCanceled, cause)
	}
}
