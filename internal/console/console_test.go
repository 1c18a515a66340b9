package console_test

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/ssoprobe/internal/console"
	"github.com/raysh454/ssoprobe/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc(t *testing.T) *console.Document {
	t.Helper()
	page, err := console.NewCentral("", "", http.Header{"User-Agent": {"probe"}}).Parse()
	require.NoError(t, err)
	doc, err := console.NewDocument(page)
	require.NoError(t, err)
	return doc
}

// ─── Page ──────────────────────────────────────────────────────────────

func TestCentral_ParseCarriesEveryRegion(t *testing.T) {
	t.Parallel()
	page, err := console.NewCentral("Dev <SSO>", "#123456", http.Header{
		"X-Forwarded-User": {"alice"},
		"Accept":           {"text/html", "*/*"},
	}).Parse()
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(page)))
	require.NoError(t, err)
	for _, id := range console.Regions() {
		assert.Equal(t, 1, doc.Find("#"+id).Length(), "region %s", id)
	}
	assert.Equal(t, "Dev <SSO>", doc.Find("title").Text())
	assert.Contains(t, string(page), "#123456")

	var names []string
	doc.Find("#requestHeaders tr td.col-2").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.Text())
	})
	assert.Equal(t, []string{"Accept", "X-Forwarded-User"}, names)
	assert.Equal(t, "text/html, */*", doc.Find("#requestHeaders small").First().Text())
}

func TestCentral_Defaults(t *testing.T) {
	t.Parallel()
	c := console.NewCentral("", "", nil)
	assert.Equal(t, console.DefaultTitle, c.Title)
	assert.Equal(t, console.DefaultColor, c.Color)
	assert.Empty(t, c.HeaderLines())
}

func TestAssets_ServesAppScript(t *testing.T) {
	t.Parallel()
	assets, err := console.Assets()
	require.NoError(t, err)
	data, err := fs.ReadFile(assets, "js/app.js")
	require.NoError(t, err)
	assert.Contains(t, string(data), "/websocket")
	assert.Contains(t, string(data), "/api/post")
}

func TestNewDocument_MissingRegion(t *testing.T) {
	t.Parallel()
	_, err := console.NewDocument([]byte(`<html><body><input id="wsResult"></body></html>`))
	assert.True(t, errors.Is(err, console.ErrMissingRegion), "got %v", err)
}

// ─── Echo ──────────────────────────────────────────────────────────────

func TestApplyEcho(t *testing.T) {
	t.Parallel()
	doc := newDoc(t)

	doc.ApplyEcho(nil, errors.New("transport failure"))
	assert.Equal(t, "error: transport failure", doc.Value(console.IDEchoResult))
	assert.True(t, doc.Selection(console.IDEchoResult).HasClass("is-invalid"))

	doc.ApplyEcho(&model.EchoResult{Payload: "ping"}, nil)
	assert.Equal(t, "ping", doc.Value(console.IDEchoResult))
	assert.False(t, doc.Selection(console.IDEchoResult).HasClass("is-invalid"))
}

// ─── Frame ─────────────────────────────────────────────────────────────

func TestApplyFrame_SetsSourceOnly(t *testing.T) {
	t.Parallel()
	doc := newDoc(t)
	before, err := doc.HTML()
	require.NoError(t, err)

	doc.ApplyFrame(&model.FrameTarget{URL: "https://idp.test/login?x=1"}, nil)

	src, ok := doc.Selection(console.IDFrame).Attr("src")
	assert.True(t, ok)
	assert.Equal(t, "https://idp.test/login?x=1", src)

	doc.Selection(console.IDFrame).RemoveAttr("src")
	after, err := doc.HTML()
	require.NoError(t, err)
	assert.Equal(t, before, after, "nothing but the frame src should change")
}

func TestApplyFrame_FailureIsObservable(t *testing.T) {
	t.Parallel()
	doc := newDoc(t)

	doc.ApplyFrame(&model.FrameTarget{URL: "https://down.test/"}, errors.New("transport: connection refused"))

	frame := doc.Selection(console.IDFrame)
	src, _ := frame.Attr("src")
	assert.Equal(t, "https://down.test/", src)
	assert.True(t, frame.HasClass("is-invalid"))
	msg, ok := frame.Attr("data-error")
	assert.True(t, ok)
	assert.Equal(t, "error: transport: connection refused", msg)

	doc.ApplyFrame(&model.FrameTarget{URL: "https://up.test/", Loaded: true}, nil)
	assert.False(t, frame.HasClass("is-invalid"))
	_, ok = frame.Attr("data-error")
	assert.False(t, ok, "a later successful load clears the error marker")
}

// ─── Fetch ─────────────────────────────────────────────────────────────

func TestApplyFetch_ReplacesRows(t *testing.T) {
	t.Parallel()
	doc := newDoc(t)

	doc.ApplyFetch(&model.FetchResult{
		Data:    `{"a":1}`,
		Headers: []model.Header{{Name: "x-old", Value: "1"}, {Name: "x-old-2", Value: "2"}},
	}, nil)
	require.Equal(t, 2, doc.Selection(console.IDFetchHeaders).Find("tr").Length())

	doc.ApplyFetch(&model.FetchResult{
		Data:    `{"b":2}`,
		Headers: []model.Header{{Name: "x-new", Value: "<b>bold</b>"}},
	}, nil)

	rows := doc.Selection(console.IDFetchHeaders).Find("tr")
	require.Equal(t, 1, rows.Length())
	assert.Equal(t, "x-new", rows.Find("td.col-2").Text())
	assert.Equal(t, "<b>bold</b>", rows.Find("small.text-muted").Text())
	assert.Equal(t, 0, rows.Find("b").Length(), "header values must be escaped")
	assert.Equal(t, `{"b":2}`, doc.Value(console.IDFetchResult))
}

func TestApplyFetch_FailureClearsRows(t *testing.T) {
	t.Parallel()
	doc := newDoc(t)
	doc.ApplyFetch(&model.FetchResult{Data: `{}`, Headers: []model.Header{{Name: "a", Value: "1"}}}, nil)

	doc.ApplyFetch(nil, errors.New("parse failure"))

	assert.Equal(t, 0, doc.Selection(console.IDFetchHeaders).Find("tr").Length())
	assert.Equal(t, "error: parse failure", doc.Value(console.IDFetchResult))
	assert.True(t, doc.Selection(console.IDFetchResult).HasClass("is-invalid"))
}

// ─── Token ─────────────────────────────────────────────────────────────

func TestApplyToken_Accumulates(t *testing.T) {
	t.Parallel()
	doc := newDoc(t)

	doc.ApplyToken(&model.TokenCommand{Command: "curl -H 'Authorization: Bearer t1' https://x.test/api/post"}, nil)
	doc.ApplyToken(&model.TokenCommand{Command: "curl -H 'Authorization: Bearer t2' https://x.test/api/post"}, nil)

	var lines []string
	doc.Selection(console.IDTokenResult).Find("small").Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, s.Text())
	})
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Bearer t1")
	assert.Contains(t, lines[1], "Bearer t2")
}

func TestApplyToken_FailureIsDistinguishable(t *testing.T) {
	t.Parallel()
	doc := newDoc(t)
	doc.ApplyToken(&model.TokenCommand{Command: "curl ok"}, nil)
	doc.ApplyToken(nil, errors.New("request failure"))

	smalls := doc.Selection(console.IDTokenResult).Find("small")
	require.Equal(t, 2, smalls.Length())
	assert.True(t, smalls.Eq(0).HasClass("text-muted"))
	assert.True(t, smalls.Eq(1).HasClass("text-danger"))
	assert.Equal(t, "error: request failure", smalls.Eq(1).Text())
}

// ─── Results ───────────────────────────────────────────────────────────

func TestApplyResult(t *testing.T) {
	t.Parallel()
	doc := newDoc(t)

	assert.False(t, doc.ApplyResult(nil))
	assert.False(t, doc.ApplyResult(&model.ProbeResult{Kind: model.ProbeEcho, Status: model.StatusAwaiting}))
	assert.False(t, doc.ApplyResult(&model.ProbeResult{
		Kind: model.ProbeEcho, Status: model.StatusSuperseded, Echo: &model.EchoResult{Payload: "stale"},
	}))
	assert.Equal(t, "", doc.Value(console.IDEchoResult))

	assert.True(t, doc.ApplyResult(&model.ProbeResult{
		Kind: model.ProbeEcho, Status: model.StatusRendered, Echo: &model.EchoResult{Payload: "ping"},
	}))
	assert.Equal(t, "ping", doc.Value(console.IDEchoResult))

	assert.True(t, doc.ApplyResult(&model.ProbeResult{
		Kind: model.ProbeFetch, Status: model.StatusFailed, ErrorKind: model.ErrorTimeout, Error: "probe timed out",
	}))
	assert.Equal(t, "error: timeout: probe timed out", doc.Value(console.IDFetchResult))

	assert.True(t, doc.ApplyResult(&model.ProbeResult{
		Kind: model.ProbeFrame, Status: model.StatusFailed, ErrorKind: model.ErrorTransport,
		Error: "connection refused", Frame: &model.FrameTarget{URL: "https://down.test/"},
	}))
	frame := doc.Selection(console.IDFrame)
	src, _ := frame.Attr("src")
	assert.Equal(t, "https://down.test/", src)
	assert.True(t, frame.HasClass("is-invalid"))
	msg, _ := frame.Attr("data-error")
	assert.Equal(t, "error: transport: connection refused", msg)
}

func TestSetInput_Value(t *testing.T) {
	t.Parallel()
	doc := newDoc(t)
	doc.SetInput(console.IDFetchInput, "/api/post")
	assert.Equal(t, "/api/post", doc.Value(console.IDFetchInput))
}
