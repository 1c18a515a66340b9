// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// InfoMessages returns a copy of the recorded info messages.
func (l *DummyLogger) InfoMessages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.Infos...)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// ErrDummyFailure is returned for URLs listed in DummyWebClient.FailURLs.
var ErrDummyFailure = errors.New("dummy webclient failure")

// DummyResponse is a canned reply for one URL.
type DummyResponse struct {
	Status  int
	Body    string
	Headers http.Header
}

// DummyWebClient implements interfaces.WebClient with canned responses.
// Unknown URLs get a 404 with an empty body.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Responses     map[string]DummyResponse
	FailURLs      map[string]bool

	mu       sync.Mutex
	Requests []*model.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs[req.URL] {
		return nil, ErrDummyFailure
	}

	canned, ok := d.Responses[req.URL]
	if !ok {
		return &model.Response{Request: req, StatusCode: http.StatusNotFound, Headers: http.Header{}, FetchedAt: time.Now()}, nil
	}
	status := canned.Status
	if status == 0 {
		status = http.StatusOK
	}
	headers := canned.Headers
	if headers == nil {
		headers = http.Header{}
	}
	return &model.Response{
		Request:    req,
		Headers:    headers,
		Body:       []byte(canned.Body),
		StatusCode: status,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*model.Response, error) {
	return d.Do(ctx, &model.Request{Method: http.MethodGet, URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestedURLs returns the URLs requested so far, in order.
func (d *DummyWebClient) RequestedURLs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.Requests))
	for _, r := range d.Requests {
		out = append(out, r.URL)
	}
	return out
}

// ─── Navigator ─────────────────────────────────────────────────────────

// DummyNavigator implements interfaces.Navigator and records targets.
type DummyNavigator struct {
	Err        error
	Screenshot []byte
	Delay      time.Duration

	mu      sync.Mutex
	Targets []string
}

func (n *DummyNavigator) Navigate(ctx context.Context, target string, screenshot bool) ([]byte, error) {
	if n.Delay > 0 {
		select {
		case <-time.After(n.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	n.mu.Lock()
	n.Targets = append(n.Targets, target)
	n.mu.Unlock()
	if n.Err != nil {
		return nil, n.Err
	}
	if !screenshot {
		return nil, nil
	}
	return n.Screenshot, nil
}

func (n *DummyNavigator) Close() error { return nil }
