package console

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/ssoprobe/internal/model"
)

// Element ids the probes read from and write to.
const (
	IDEchoButton    = "wsBtn"
	IDEchoResult    = "wsResult"
	IDFrameButton   = "loadIframeBtn"
	IDFrameInput    = "iframeInput"
	IDFrame         = "test-iframe"
	IDFetchButton   = "ajaxIframeBtn"
	IDFetchInput    = "ajaxInput"
	IDFetchResult   = "ajaxResult"
	IDFetchHeaders  = "ajaxHeadersResult"
	IDTokenButton   = "jwtBtn"
	IDTokenResult   = "jwtResult"
	invalidClass    = "is-invalid"
	errorTextPrefix = "error: "
	frameErrorAttr  = "data-error"
)

// Regions lists every element id the console page must carry.
func Regions() []string {
	return []string{
		IDEchoButton, IDEchoResult,
		IDFrameButton, IDFrameInput, IDFrame,
		IDFetchButton, IDFetchInput, IDFetchResult, IDFetchHeaders,
		IDTokenButton, IDTokenResult,
	}
}

var ErrMissingRegion = errors.New("console region missing")

// Document is a parsed console page that probe results are written into.
type Document struct {
	doc *goquery.Document
}

// NewDocument parses page and checks that every region is present.
func NewDocument(page []byte) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse console page: %w", err)
	}
	d := &Document{doc: doc}
	for _, id := range Regions() {
		if d.byID(id).Length() == 0 {
			return nil, fmt.Errorf("%w: #%s", ErrMissingRegion, id)
		}
	}
	return d, nil
}

func (d *Document) byID(id string) *goquery.Selection {
	return d.doc.Find(`[id="` + id + `"]`)
}

// Value returns the value attribute of an input region.
func (d *Document) Value(id string) string {
	v, _ := d.byID(id).Attr("value")
	return v
}

// SetInput fills an input region, as a user typing into it would.
func (d *Document) SetInput(id, v string) {
	d.byID(id).SetAttr("value", v)
}

// ApplyEcho sets the echo field to the reply, or marks it failed.
func (d *Document) ApplyEcho(res *model.EchoResult, err error) {
	field := d.byID(IDEchoResult)
	if err != nil || res == nil {
		markFailed(field, err)
		return
	}
	field.SetAttr("value", res.Payload).RemoveClass(invalidClass)
}

// ApplyFrame points the frame at the target. A failed load keeps the src and
// marks the frame with is-invalid and a data-error attribute; nothing else on
// the page changes.
func (d *Document) ApplyFrame(target *model.FrameTarget, err error) {
	frame := d.byID(IDFrame)
	if target != nil {
		frame.SetAttr("src", target.URL)
	}
	if err != nil || target == nil {
		frame.SetAttr(frameErrorAttr, errorText(err)).AddClass(invalidClass)
		return
	}
	frame.RemoveAttr(frameErrorAttr).RemoveClass(invalidClass)
}

// ApplyFetch writes the serialized body and replaces the header rows.
func (d *Document) ApplyFetch(res *model.FetchResult, err error) {
	field := d.byID(IDFetchResult)
	rows := d.byID(IDFetchHeaders)
	rows.Empty()
	if err != nil || res == nil {
		markFailed(field, err)
		return
	}
	field.SetAttr("value", res.Data).RemoveClass(invalidClass)

	var b strings.Builder
	for _, h := range res.Headers {
		b.WriteString(headerRow(h))
	}
	rows.AppendHtml(b.String())
}

// ApplyToken appends one line per activation; earlier lines are kept.
func (d *Document) ApplyToken(cmd *model.TokenCommand, err error) {
	out := d.byID(IDTokenResult)
	if err != nil || cmd == nil {
		out.AppendHtml(`<small class="text-break text-danger">` + html.EscapeString(errorText(err)) + `</small>`)
		return
	}
	out.AppendHtml(`<small class="text-break text-muted">` + html.EscapeString(cmd.Command) + `</small>`)
}

// ApplyResult renders a finished activation into its region. Superseded
// activations are not rendered; the return value reports whether anything
// changed.
func (d *Document) ApplyResult(res *model.ProbeResult) bool {
	if res == nil || res.Status == model.StatusSuperseded || !res.Status.Terminal() {
		return false
	}
	var err error
	if res.Status == model.StatusFailed {
		err = resultError{kind: res.ErrorKind, msg: res.Error}
	}
	switch res.Kind {
	case model.ProbeEcho:
		d.ApplyEcho(res.Echo, err)
	case model.ProbeFrame:
		d.ApplyFrame(res.Frame, err)
	case model.ProbeFetch:
		d.ApplyFetch(res.Fetch, err)
	case model.ProbeToken:
		d.ApplyToken(res.Token, err)
	default:
		return false
	}
	return true
}

// HTML serializes the whole document.
func (d *Document) HTML() (string, error) {
	return goquery.OuterHtml(d.doc.Selection)
}

// Selection exposes a region for inspection.
func (d *Document) Selection(id string) *goquery.Selection {
	return d.byID(id)
}

func headerRow(h model.Header) string {
	return `<tr class="row"><td class="col-2">` + html.EscapeString(h.Name) +
		`</td><td class="col-10"><small class="text-break text-muted">` +
		html.EscapeString(h.Value) + `</small></td></tr>`
}

func markFailed(field *goquery.Selection, err error) {
	field.SetAttr("value", errorText(err)).AddClass(invalidClass)
}

func errorText(err error) string {
	if err == nil {
		return errorTextPrefix + "no result"
	}
	return errorTextPrefix + err.Error()
}

// resultError carries a failed activation's error back into the Apply calls.
type resultError struct {
	kind model.ErrorKind
	msg  string
}

func (e resultError) Error() string {
	if e.kind == model.ErrorNone || strings.HasPrefix(e.msg, string(e.kind)) {
		return e.msg
	}
	return string(e.kind) + ": " + e.msg
}
