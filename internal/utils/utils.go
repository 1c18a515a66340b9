package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Errors
var (
	ErrEmptyURL          = errors.New("empty url")
	ErrMissingHost       = errors.New("missing host")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

// ParsePageURL parses the URL of the hosting console page. Only http and
// https pages are accepted; the host is normalized with NormalizeHost.
func ParsePageURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: ErrEmptyURL}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: fmt.Errorf("%w %q", ErrUnsupportedScheme, u.Scheme)}
	}
	if u.Host == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: ErrMissingHost}
	}

	u.Host = NormalizeHost(u.Scheme, u.Host)
	u.User = nil
	u.Fragment = ""
	return u, nil
}

// NormalizeHost lowercases the hostname, converts IDN to punycode and drops
// the port when it is the scheme default, matching what a browser reports as
// location.host.
//
//	NormalizeHost("https", "Bücher.example:443") → "xn--bcher-kva.example"
//	NormalizeHost("http", "LOCALHOST:8080")      → "localhost:8080"
func NormalizeHost(scheme, hostport string) string {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = hostport, ""
	}
	host = strings.Trim(strings.ToLower(host), "[]")
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	switch {
	case port == "",
		(scheme == "http" || scheme == "ws") && port == "80",
		(scheme == "https" || scheme == "wss") && port == "443":
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	default:
		return net.JoinHostPort(host, port)
	}
}

// Origin returns "<scheme>://<host>" for a page URL.
func Origin(page *url.URL) string {
	return page.Scheme + "://" + page.Host
}

// ResolveAgainstPage resolves ref relative to the page URL, the way a browser
// resolves a relative request issued from that page. A nil page returns ref
// unchanged.
func ResolveAgainstPage(page *url.URL, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &url.Error{Op: "resolve", URL: ref, Err: ErrEmptyURL}
	}
	if page == nil {
		return ref, nil
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return page.ResolveReference(parsed).String(), nil
}
