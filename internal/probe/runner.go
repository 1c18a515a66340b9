package probe

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
	"github.com/raysh454/ssoprobe/internal/utils"
)

// Runner dispatches probe requests to the four probes and turns their
// completions into typed results. It holds no per-activation state.
type Runner struct {
	echo   *Echo
	frame  *Frame
	fetch  *Fetch
	token  *Token
	logger logging.Logger
}

func NewRunner(echo *Echo, frame *Frame, fetch *Fetch, token *Token, logger logging.Logger) *Runner {
	return &Runner{
		echo:   echo,
		frame:  frame,
		fetch:  fetch,
		token:  token,
		logger: logger,
	}
}

// Run executes req and always returns a result: rendered with the probe's
// payload, or failed/superseded with an error kind.
func (r *Runner) Run(ctx context.Context, req *model.ProbeRequest) *model.ProbeResult {
	res := &model.ProbeResult{
		Status:    model.StatusAwaiting,
		StartedAt: time.Now().UTC(),
	}
	if req == nil {
		return r.finish(res, fmt.Errorf("%w: nil probe request", ErrRequest))
	}
	res.Kind = req.Kind

	var err error
	switch req.Kind {
	case model.ProbeEcho:
		var page *url.URL
		if page, err = requirePage(req.Page); err == nil {
			res.Echo, err = r.echo.Run(ctx, page)
		}
	case model.ProbeFrame:
		var page *url.URL
		if page, err = optionalPage(req.Page); err == nil {
			res.Frame, err = r.frame.Run(ctx, page, req.URL)
		}
	case model.ProbeFetch:
		var page *url.URL
		if page, err = optionalPage(req.Page); err == nil {
			res.Fetch, err = r.fetch.Run(ctx, page, req.URL)
		}
	case model.ProbeToken:
		var page *url.URL
		if page, err = requirePage(req.Page); err == nil {
			res.Token, err = r.token.Run(ctx, page)
		}
	default:
		err = fmt.Errorf("%w: unknown probe %q", ErrRequest, req.Kind)
	}
	return r.finish(res, err)
}

func (r *Runner) finish(res *model.ProbeResult, err error) *model.ProbeResult {
	res.EndedAt = time.Now().UTC()
	if err == nil {
		res.Status = model.StatusRendered
		return res
	}

	res.Error = err.Error()
	res.ErrorKind = Classify(err)
	res.Status = model.StatusFailed
	if res.ErrorKind == model.ErrorSuperseded {
		res.Status = model.StatusSuperseded
	}
	r.logger.Warn("probe failed",
		logging.Field{Key: "probe", Value: string(res.Kind)},
		logging.Field{Key: "error_kind", Value: string(res.ErrorKind)},
		logging.Field{Key: "error", Value: res.Error})
	return res
}

func requirePage(raw string) (*url.URL, error) {
	page, err := utils.ParsePageURL(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: page url: %w", ErrRequest, err)
	}
	return page, nil
}

func optionalPage(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return requirePage(raw)
}
