package probe

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/raysh454/ssoprobe/internal/interfaces"
	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
	"github.com/raysh454/ssoprobe/internal/utils"
)

// jsonAccept is the Accept header a browser sends for a JSON read.
const jsonAccept = "application/json, text/javascript, */*; q=0.01"

// Fetch reads a user-supplied URL as JSON and exposes its header rows.
type Fetch struct {
	wc     interfaces.WebClient
	logger logging.Logger
}

func NewFetch(wc interfaces.WebClient, logger logging.Logger) *Fetch {
	return &Fetch{
		wc:     wc,
		logger: logger.With(logging.Field{Key: "probe", Value: string(model.ProbeFetch)}),
	}
}

// Run issues a GET for raw, resolved against page when raw is relative.
func (f *Fetch) Run(ctx context.Context, page *url.URL, raw string) (*model.FetchResult, error) {
	if f.wc == nil {
		return nil, fmt.Errorf("%w: webclient is nil", ErrRequest)
	}
	target, err := utils.ResolveAgainstPage(page, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	resp, err := getJSON(ctx, f.wc, target)
	if err != nil {
		return nil, err
	}

	body, data, err := decodeJSON(resp.Body)
	if err != nil {
		f.logger.Warn("fetch body is not JSON",
			logging.Field{Key: "url", Value: target},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, err
	}

	blob := HeaderBlob(resp.Headers)
	res := &model.FetchResult{
		URL:        target,
		StatusCode: resp.StatusCode,
		Body:       body,
		Data:       data,
		RawHeaders: blob,
		Headers:    ParseHeaderLines(blob),
	}
	f.logger.Debug("fetched",
		logging.Field{Key: "url", Value: target},
		logging.Field{Key: "status", Value: resp.StatusCode},
		logging.Field{Key: "header_rows", Value: len(res.Headers)})
	return res, nil
}

// getJSON performs a GET expecting JSON and rejects non-2xx statuses.
func getJSON(ctx context.Context, wc interfaces.WebClient, target string) (*model.Response, error) {
	resp, err := wc.Do(ctx, &model.Request{
		Method:  http.MethodGet,
		URL:     target,
		Headers: http.Header{"Accept": {jsonAccept}},
	})
	if err != nil {
		if cerr := contextErr(ctx); cerr != nil {
			return nil, fmt.Errorf("get %s: %w", target, cerr)
		}
		return nil, fmt.Errorf("%w: get %s: %w", ErrRequest, target, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: get %s: status %d", ErrRequest, target, resp.StatusCode)
	}
	return resp, nil
}

// decodeJSON parses body and returns the value together with the body with
// insignificant whitespace removed. Key order and characters are kept as sent.
func decodeJSON(body []byte) (any, string, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrParse, err)
	}
	var out bytes.Buffer
	if err := json.Compact(&out, body); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrParse, err)
	}
	return v, out.String(), nil
}
