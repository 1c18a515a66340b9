package probe

import (
	"net/http"
	"slices"
	"strings"

	"github.com/raysh454/ssoprobe/internal/model"
)

// HeaderBlob renders response headers the way a browser's
// getAllResponseHeaders does: lower-cased names in sorted order, repeated
// values joined with ", ", one CRLF-terminated line per name.
func HeaderBlob(h http.Header) string {
	merged := make(map[string][]string, len(h))
	names := make([]string, 0, len(h))
	for k, vs := range h {
		lk := strings.ToLower(k)
		if _, seen := merged[lk]; !seen {
			names = append(names, lk)
		}
		merged[lk] = append(merged[lk], vs...)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(strings.Join(merged[name], ", "))
		b.WriteString("\r\n")
	}
	return b.String()
}

// ParseHeaderLines splits a raw header blob into rows. A line is kept only if
// splitting it on ':' yields exactly two parts, so "A:B:C" and lines without
// a colon are dropped. Row order follows the blob.
func ParseHeaderLines(raw string) []model.Header {
	out := make([]model.Header, 0)
	for _, line := range strings.Split(raw, "\n") {
		parts := strings.Split(strings.TrimRight(line, "\r"), ":")
		if len(parts) != 2 {
			continue
		}
		out = append(out, model.Header{
			Name:  strings.TrimSpace(parts[0]),
			Value: strings.TrimSpace(parts[1]),
		})
	}
	return out
}
