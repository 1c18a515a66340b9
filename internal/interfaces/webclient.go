package interfaces

import (
	"context"

	"github.com/raysh454/ssoprobe/internal/model"
)

// WebClient is the one-shot request primitive used by the fetch and token
// probes. Implementations must not keep connections tied to a single call.
type WebClient interface {
	Do(ctx context.Context, req *model.Request) (*model.Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*model.Response, error)

	Close() error
}

// Navigator loads a URL into a browsing context for visual inspection.
// It never hands the response body back to the caller.
type Navigator interface {
	// Navigate loads target and optionally captures a PNG screenshot.
	Navigate(ctx context.Context, target string, screenshot bool) ([]byte, error)

	Close() error
}
