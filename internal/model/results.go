package model

import "time"

// EchoResult is the first message received over the echo socket.
type EchoResult struct {
	// URL is the socket URL that was dialed.
	URL string `json:"url"`

	// Payload is the raw first inbound message, verbatim.
	Payload string `json:"payload"`

	// CleanClose is true when the close handshake completed normally.
	// It is informational only and never changes what is rendered.
	CleanClose bool   `json:"clean_close"`
	CloseCode  int    `json:"close_code,omitempty"`
	CloseText  string `json:"close_text,omitempty"`

	ReceivedAt time.Time `json:"received_at"`
}

// Header is one rendered response header row.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FetchResult pairs the parsed body of a fetch with its header rows.
type FetchResult struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`

	// Body is the decoded JSON value.
	Body any `json:"body"`

	// Data is Body re-serialized for display.
	Data string `json:"data"`

	// RawHeaders is the full header blob as returned by the transport.
	RawHeaders string `json:"raw_headers"`

	// Headers keeps RawHeaders order; malformed lines are absent.
	Headers []Header `json:"headers"`
}

// TokenCommand is a displayable curl invocation carrying a bearer token.
type TokenCommand struct {
	Token   string `json:"token"`
	Origin  string `json:"origin"`
	Command string `json:"command"`
}

// FrameTarget is the navigation target of the embedded frame.
type FrameTarget struct {
	URL string `json:"url"`

	// Loaded is set when a navigator actually loaded the target.
	Loaded bool `json:"loaded"`

	// Screenshot is a PNG capture of the loaded frame, when requested.
	Screenshot []byte `json:"screenshot,omitempty"`
}
