package webclient

import "time"

type Client string

const (
	ClientNetHTTP Client = "nethttp"
)

type Browser string

const (
	BrowserNone     Browser = "none"
	BrowserChromedp Browser = "chromedp"
)

// Config selects and tunes the transport used by the probes.
type Config struct {
	// Client is the request backend for fetch and token probes.
	Client Client

	// Browser is the navigator backend for the frame probe. Empty or
	// BrowserNone disables real frame loads.
	Browser Browser

	// Timeout bounds a single HTTP exchange (0 = 30s).
	Timeout time.Duration

	// InsecureSkipVerify disables TLS verification for both backends.
	InsecureSkipVerify bool

	// Headless controls whether chromedp shows a window.
	Headless bool

	// IdleAfter is how long the network must stay quiet before a frame
	// load counts as settled (0 = 2s).
	IdleAfter time.Duration
}
