// Package console holds the SSO central console page and a document adapter
// that renders probe results into the page's named regions.
package console

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"strings"
)

//go:embed tmpl/assets
var htmlAssets embed.FS

//go:embed tmpl/central.html
var htmlCentral embed.FS

const (
	DefaultTitle = "SSO Central"
	DefaultColor = "#f8f9fa"
)

// Central is the data behind the console page.
type Central struct {
	Name    string
	Title   string
	Color   string
	Headers http.Header
}

// HeaderLine is one request header shown on the page.
type HeaderLine struct {
	Name  string
	Value string
}

func NewCentral(title, color string, h http.Header) *Central {
	if title == "" {
		title = DefaultTitle
	}
	if color == "" {
		color = DefaultColor
	}
	return &Central{
		Name:    "central.html",
		Title:   title,
		Color:   color,
		Headers: h,
	}
}

// HeaderLines returns the request headers sorted by name.
func (c *Central) HeaderLines() []HeaderLine {
	names := make([]string, 0, len(c.Headers))
	for k := range c.Headers {
		names = append(names, k)
	}
	slices.Sort(names)

	out := make([]HeaderLine, 0, len(names))
	for _, n := range names {
		out = append(out, HeaderLine{Name: n, Value: strings.Join(c.Headers[n], ", ")})
	}
	return out
}

// Parse renders the page.
func (c *Central) Parse() ([]byte, error) {
	t, err := template.New(c.Name).
		Option("missingkey=error").
		ParseFS(htmlCentral, "tmpl/"+c.Name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", c.Name, err)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, c.Name, c); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", c.Name, err)
	}
	return buf.Bytes(), nil
}

// Assets returns the static files served under /public.
func Assets() (fs.FS, error) {
	return fs.Sub(htmlAssets, "tmpl/assets")
}
