package probe

import (
	"context"
	"fmt"
	"net/url"

	"github.com/raysh454/ssoprobe/internal/interfaces"
	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
	"github.com/raysh454/ssoprobe/internal/utils"
)

// Frame sets the navigation target of the embedded frame. With a Navigator
// it also loads the target for visual inspection; it never reads a body.
type Frame struct {
	nav        interfaces.Navigator
	screenshot bool
	logger     logging.Logger
}

func NewFrame(nav interfaces.Navigator, screenshot bool, logger logging.Logger) *Frame {
	return &Frame{
		nav:        nav,
		screenshot: screenshot,
		logger:     logger.With(logging.Field{Key: "probe", Value: string(model.ProbeFrame)}),
	}
}

// Target returns raw as the frame's navigation target. No validation of
// scheme or reachability is done.
func Target(raw string) model.FrameTarget {
	return model.FrameTarget{URL: raw}
}

// Run returns the target even when loading it fails, since the frame's src
// is set either way.
func (f *Frame) Run(ctx context.Context, page *url.URL, raw string) (*model.FrameTarget, error) {
	target := Target(raw)
	if f.nav == nil {
		return &target, nil
	}

	abs, err := utils.ResolveAgainstPage(page, raw)
	if err != nil {
		return &target, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	shot, err := f.nav.Navigate(ctx, abs, f.screenshot)
	if err != nil {
		if cerr := contextErr(ctx); cerr != nil {
			return &target, fmt.Errorf("navigate %s: %w", abs, cerr)
		}
		f.logger.Warn("frame target did not load",
			logging.Field{Key: "url", Value: abs},
			logging.Field{Key: "error", Value: err.Error()})
		return &target, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	target.Loaded = true
	target.Screenshot = shot
	return &target, nil
}
