package model

import "time"

// ProbeKind names one of the console's diagnostic actions.
type ProbeKind string

const (
	ProbeEcho  ProbeKind = "echo"
	ProbeFrame ProbeKind = "frame"
	ProbeFetch ProbeKind = "fetch"
	ProbeToken ProbeKind = "token"
)

// AllProbeKinds lists the probes in the order the console page shows them.
func AllProbeKinds() []ProbeKind {
	return []ProbeKind{ProbeEcho, ProbeFrame, ProbeFetch, ProbeToken}
}

// Valid reports whether k is a known probe kind.
func (k ProbeKind) Valid() bool {
	switch k {
	case ProbeEcho, ProbeFrame, ProbeFetch, ProbeToken:
		return true
	}
	return false
}

// ProbeRequest is a single trigger of a probe.
type ProbeRequest struct {
	// Kind selects the probe.
	Kind ProbeKind `json:"kind"`

	// Page is the URL of the hosting console page. Echo and token probes
	// derive their scheme and host from it.
	Page string `json:"page,omitempty"`

	// URL is the user-supplied input for the frame and fetch probes.
	URL string `json:"url,omitempty"`
}

// ProbeStatus tracks an activation from trigger to rendering.
type ProbeStatus string

const (
	StatusIdle       ProbeStatus = "idle"
	StatusAwaiting   ProbeStatus = "awaiting"
	StatusRendered   ProbeStatus = "rendered"
	StatusFailed     ProbeStatus = "failed"
	StatusSuperseded ProbeStatus = "superseded"
)

// Terminal reports whether no further transitions follow s.
func (s ProbeStatus) Terminal() bool {
	return s == StatusRendered || s == StatusFailed || s == StatusSuperseded
}

// ErrorKind buckets probe failures so renderers can mark them distinctly.
type ErrorKind string

const (
	ErrorNone       ErrorKind = ""
	ErrorTransport  ErrorKind = "transport"
	ErrorRequest    ErrorKind = "request"
	ErrorParse      ErrorKind = "parse"
	ErrorTimeout    ErrorKind = "timeout"
	ErrorSuperseded ErrorKind = "superseded"
	ErrorCanceled   ErrorKind = "canceled"
	ErrorUnknown    ErrorKind = "unknown"
)

// ProbeResult is the typed completion of one activation. Exactly one of the
// per-probe payloads is set when Status is rendered.
type ProbeResult struct {
	ID        string      `json:"id,omitempty"`
	Kind      ProbeKind   `json:"kind"`
	Status    ProbeStatus `json:"status"`
	Error     string      `json:"error,omitempty"`
	ErrorKind ErrorKind   `json:"error_kind,omitempty"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   time.Time   `json:"ended_at"`

	Echo  *EchoResult   `json:"echo,omitempty"`
	Frame *FrameTarget  `json:"frame,omitempty"`
	Fetch *FetchResult  `json:"fetch,omitempty"`
	Token *TokenCommand `json:"token,omitempty"`
}

// Failed reports whether the activation ended without a renderable payload.
func (r *ProbeResult) Failed() bool {
	return r != nil && (r.Status == StatusFailed || r.Status == StatusSuperseded)
}
