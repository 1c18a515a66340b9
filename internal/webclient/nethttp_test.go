package webclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
	"github.com/raysh454/ssoprobe/internal/webclient"
)

// noopLogger is a test-local logger implementation that discards all log messages
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, fields ...logging.Field) {}
func (n *noopLogger) Info(msg string, fields ...logging.Field)  {}
func (n *noopLogger) Warn(msg string, fields ...logging.Field)  {}
func (n *noopLogger) Error(msg string, fields ...logging.Field) {}
func (n *noopLogger) With(fields ...logging.Field) logging.Logger {
	return n
}

func newClient(t *testing.T, httpClient *http.Client) *webclient.NetHTTPClient {
	t.Helper()
	client, err := webclient.NewNetHTTPClient(webclient.Config{}, &noopLogger{}, httpClient)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// ─── Do: real HTTP round-trip via httptest ──────────────────────────────

func TestNetHTTPClient_Get_ReturnsJSONAndHeaders(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Sso-Node", "central")
		_, _ = io.WriteString(w, `{"Token":"abc"}`)
	}))
	defer ts.Close()

	client := newClient(t, ts.Client())
	resp, err := client.Get(context.Background(), ts.URL+"/jwt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if !resp.OK() {
		t.Errorf("expected 2xx, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"Token":"abc"}` {
		t.Errorf("unexpected body %q", resp.Body)
	}
	if resp.Headers.Get("X-Sso-Node") != "central" {
		t.Errorf("expected X-Sso-Node header, got %q", resp.Headers.Get("X-Sso-Node"))
	}
	if resp.Request == nil || resp.Request.Method != http.MethodGet {
		t.Errorf("expected GET request recorded on response, got %+v", resp.Request)
	}
}

func TestNetHTTPClient_Do_ForwardsHeaders(t *testing.T) {
	t.Parallel()
	var gotAccept, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := newClient(t, ts.Client())
	hdrs := http.Header{}
	hdrs.Set("Accept", "application/json")
	hdrs.Set("Authorization", "Bearer t1")

	if _, err := client.Do(context.Background(), &model.Request{URL: ts.URL, Headers: hdrs}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAccept != "application/json" {
		t.Errorf("expected Accept forwarded, got %q", gotAccept)
	}
	if gotAuth != "Bearer t1" {
		t.Errorf("expected Authorization forwarded, got %q", gotAuth)
	}
}

func TestNetHTTPClient_Do_PropagatesStatusCode(t *testing.T) {
	t.Parallel()
	for _, code := range []int{200, 204, 404, 500} {
		code := code
		t.Run(http.StatusText(code), func(t *testing.T) {
			t.Parallel()
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(code)
			}))
			defer ts.Close()

			client := newClient(t, ts.Client())
			resp, err := client.Get(context.Background(), ts.URL)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if resp.StatusCode != code {
				t.Errorf("expected %d, got %d", code, resp.StatusCode)
			}
			if resp.OK() != (code < 300) {
				t.Errorf("OK() mismatch for %d", code)
			}
		})
	}
}

func TestNetHTTPClient_Do_NilRequest_ReturnsError(t *testing.T) {
	t.Parallel()
	client := newClient(t, nil)

	if _, err := client.Do(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}

func TestNetHTTPClient_Do_ConnectionRefused_ReturnsError(t *testing.T) {
	t.Parallel()
	client := newClient(t, &http.Client{Timeout: time.Second})

	if _, err := client.Get(context.Background(), "http://127.0.0.1:1"); err == nil {
		t.Fatal("expected error for connection refused")
	}
}

func TestNetHTTPClient_Do_ContextCanceled_ReturnsError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := newClient(t, ts.Client())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Get(ctx, ts.URL); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestNewNetHTTPClient_DefaultTimeout(t *testing.T) {
	t.Parallel()
	client := newClient(t, nil)

	if client.HTTPClient().Timeout != 30*time.Second {
		t.Errorf("expected 30s default timeout, got %s", client.HTTPClient().Timeout)
	}
}

func TestNewNetHTTPClient_ConfiguredTimeout(t *testing.T) {
	t.Parallel()
	client, err := webclient.NewNetHTTPClient(webclient.Config{Timeout: 5 * time.Second, InsecureSkipVerify: true}, &noopLogger{}, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	defer client.Close()

	if client.HTTPClient().Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", client.HTTPClient().Timeout)
	}
	if client.HTTPClient().Transport == nil {
		t.Error("expected custom transport when TLS verification is disabled")
	}
}
