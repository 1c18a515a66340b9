package interfaces

import (
	"context"

	"github.com/raysh454/ssoprobe/internal/model"
)

// Prober runs one probe activation to completion. A failed activation is
// reported through the result's status and error kind, never by a nil result.
type Prober interface {
	Run(ctx context.Context, req *model.ProbeRequest) *model.ProbeResult
}
