package probe_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/raysh454/ssoprobe/internal/probe"
	"github.com/raysh454/ssoprobe/internal/testutil"
)

func TestComposeCommand_Deterministic(t *testing.T) {
	t.Parallel()
	want := "curl -H 'Authorization: Bearer abc' https://x.test/api/post"
	for i := 0; i < 3; i++ {
		if got := probe.ComposeCommand("abc", "https://x.test"); got != want {
			t.Fatalf("want %q, got %q", want, got)
		}
	}
}

func TestToken_Run_UsesPageOrigin(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Responses: map[string]testutil.DummyResponse{
		"https://x.test:8443/jwt": {Body: `{"Token":"eyJ.abc.def"}`},
	}}
	tok := probe.NewToken(wc, &testutil.DummyLogger{})

	cmd, err := tok.Run(context.Background(), mustPage(t, "https://x.test:8443/console?tab=1"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cmd.Token != "eyJ.abc.def" || cmd.Origin != "https://x.test:8443" {
		t.Errorf("unexpected command inputs %+v", cmd)
	}
	want := "curl -H 'Authorization: Bearer eyJ.abc.def' https://x.test:8443/api/post"
	if cmd.Command != want {
		t.Errorf("want %q, got %q", want, cmd.Command)
	}
	if urls := wc.RequestedURLs(); len(urls) != 1 || urls[0] != "https://x.test:8443/jwt" {
		t.Errorf("unexpected requests %v", urls)
	}
}

func TestToken_Run_ExactKeyOnly(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{Responses: map[string]testutil.DummyResponse{
		"http://sso.test/jwt": {Body: `{"token":"lower","Token":"exact","TOKEN":"upper"}`},
	}}
	cmd, err := probe.NewToken(wc, &testutil.DummyLogger{}).Run(context.Background(), mustPage(t, "http://sso.test/"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cmd.Token != "exact" {
		t.Errorf("expected the Token key to be used, got %q", cmd.Token)
	}
}

func TestToken_Run_Failures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		resp testutil.DummyResponse
		want error
	}{
		{"lowercase key", testutil.DummyResponse{Body: `{"token":"lowercase"}`}, probe.ErrParse},
		{"upper case key", testutil.DummyResponse{Body: `{"TOKEN":"upper"}`}, probe.ErrParse},
		{"missing field", testutil.DummyResponse{Body: `{"access_token":"abc"}`}, probe.ErrParse},
		{"non string token", testutil.DummyResponse{Body: `{"Token":42}`}, probe.ErrParse},
		{"array body", testutil.DummyResponse{Body: `["abc"]`}, probe.ErrParse},
		{"empty token", testutil.DummyResponse{Body: `{"Token":""}`}, probe.ErrParse},
		{"not json", testutil.DummyResponse{Body: `Token=abc`}, probe.ErrParse},
		{"server error", testutil.DummyResponse{Status: http.StatusInternalServerError, Body: `{}`}, probe.ErrRequest},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			wc := &testutil.DummyWebClient{Responses: map[string]testutil.DummyResponse{
				"http://sso.test/jwt": tc.resp,
			}}
			cmd, err := probe.NewToken(wc, &testutil.DummyLogger{}).Run(context.Background(), mustPage(t, "http://sso.test/"))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if cmd != nil {
				t.Errorf("expected no command, got %+v", cmd)
			}
		})
	}
}

func TestToken_Run_RequiresPage(t *testing.T) {
	t.Parallel()
	tok := probe.NewToken(&testutil.DummyWebClient{}, &testutil.DummyLogger{})
	if _, err := tok.Run(context.Background(), nil); !errors.Is(err, probe.ErrRequest) {
		t.Errorf("expected ErrRequest, got %v", err)
	}
}
