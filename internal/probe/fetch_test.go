package probe_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raysh454/ssoprobe/internal/model"
	"github.com/raysh454/ssoprobe/internal/probe"
	"github.com/raysh454/ssoprobe/internal/testutil"
	"github.com/raysh454/ssoprobe/internal/webclient"
)

func TestFetch_Run_ParsesBodyAndHeaders(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Responses: map[string]testutil.DummyResponse{
		"https://api.test/data": {
			Body: `{ "a" : 1, "b": [true, null] }`,
			Headers: http.Header{
				"Content-Type": {"application/json"},
				"X-Trace":      {"abc"},
			},
		},
	}}
	f := probe.NewFetch(wc, &testutil.DummyLogger{})

	res, err := f.Run(context.Background(), nil, "https://api.test/data")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Data != `{"a":1,"b":[true,null]}` {
		t.Errorf("unexpected compact data %q", res.Data)
	}
	body, ok := res.Body.(map[string]any)
	if !ok || body["a"] != float64(1) {
		t.Errorf("unexpected body %#v", res.Body)
	}
	want := []model.Header{
		{Name: "content-type", Value: "application/json"},
		{Name: "x-trace", Value: "abc"},
	}
	if len(res.Headers) != len(want) {
		t.Fatalf("want %d header rows, got %v", len(want), res.Headers)
	}
	for i := range want {
		if res.Headers[i] != want[i] {
			t.Errorf("row %d: want %v, got %v", i, want[i], res.Headers[i])
		}
	}
}

func TestFetch_Run_DataKeepsBodyText(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		body string
		want string
	}{
		{"markup and ampersand", `{"z":"<b>&</b>","a":1}`, `{"z":"<b>&</b>","a":1}`},
		{"key order", "{\n  \"z\": 1,\n  \"m\": 2,\n  \"a\": 3\n}", `{"z":1,"m":2,"a":3}`},
		{"nested", `[ {"b" : "x > y", "a": null} , 2 ]`, `[{"b":"x > y","a":null},2]`},
		{"whitespace inside strings", `{"msg": "a  b\tc"}`, `{"msg":"a  b\tc"}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			wc := &testutil.DummyWebClient{Responses: map[string]testutil.DummyResponse{
				"https://api.test/data": {Body: tc.body},
			}}
			res, err := probe.NewFetch(wc, &testutil.DummyLogger{}).Run(context.Background(), nil, "https://api.test/data")
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res.Data != tc.want {
				t.Errorf("want data %q, got %q", tc.want, res.Data)
			}
		})
	}
}

func TestFetch_Run_SendsJSONAccept(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Responses: map[string]testutil.DummyResponse{
		"https://api.test/x": {Body: `[]`},
	}}
	f := probe.NewFetch(wc, &testutil.DummyLogger{})

	if _, err := f.Run(context.Background(), nil, "https://api.test/x"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(wc.Requests) != 1 {
		t.Fatalf("expected one request, got %d", len(wc.Requests))
	}
	req := wc.Requests[0]
	if req.Method != http.MethodGet {
		t.Errorf("expected GET, got %s", req.Method)
	}
	if got := req.Headers.Get("Accept"); got == "" || got[:16] != "application/json" {
		t.Errorf("expected JSON accept header, got %q", got)
	}
}

func TestFetch_Run_ResolvesRelativeAgainstPage(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Responses: map[string]testutil.DummyResponse{
		"https://sso.test/api/status": {Body: `{"ok":true}`},
	}}
	f := probe.NewFetch(wc, &testutil.DummyLogger{})

	res, err := f.Run(context.Background(), mustPage(t, "https://sso.test/console/index.html"), "/api/status")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.URL != "https://sso.test/api/status" {
		t.Errorf("unexpected resolved URL %q", res.URL)
	}
}

func TestFetch_Run_Failures(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{
		Responses: map[string]testutil.DummyResponse{
			"https://api.test/broken": {Body: `{"a":`},
			"https://api.test/html":   {Body: `<html></html>`},
			"https://api.test/500":    {Status: http.StatusInternalServerError, Body: `{}`},
		},
		FailURLs: map[string]bool{"https://api.test/down": true},
	}
	f := probe.NewFetch(wc, &testutil.DummyLogger{})

	cases := []struct {
		url  string
		want error
	}{
		{"https://api.test/broken", probe.ErrParse},
		{"https://api.test/html", probe.ErrParse},
		{"https://api.test/500", probe.ErrRequest},
		{"https://api.test/missing", probe.ErrRequest},
		{"https://api.test/down", probe.ErrRequest},
		{"", probe.ErrRequest},
	}
	for _, tc := range cases {
		res, err := f.Run(context.Background(), nil, tc.url)
		if !errors.Is(err, tc.want) {
			t.Errorf("%q: expected %v, got %v", tc.url, tc.want, err)
		}
		if res != nil {
			t.Errorf("%q: expected no result on failure", tc.url)
		}
	}
}

func TestFetch_Run_RealServerDropsColonValues(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Node", "n1")
		_, _ = w.Write([]byte(`{"user":"alice"}`))
	}))
	defer ts.Close()

	logger := &testutil.DummyLogger{}
	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, logger, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	defer wc.Close()

	res, err := probe.NewFetch(wc, logger).Run(context.Background(), nil, ts.URL)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", res.StatusCode)
	}

	rows := map[string]string{}
	for _, h := range res.Headers {
		rows[h.Name] = h.Value
	}
	if rows["x-node"] != "n1" {
		t.Errorf("expected x-node row, got %v", res.Headers)
	}
	// The Date value contains colons, so its line splits into more than two parts.
	if _, ok := rows["date"]; ok {
		t.Errorf("date row should have been dropped, got %v", res.Headers)
	}
}
