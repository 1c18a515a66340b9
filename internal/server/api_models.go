package server

// RunProbeRequest carries the user input of a probe run.
type RunProbeRequest struct {
	// URL is the frame/fetch input; relative URLs resolve against Page.
	URL string `json:"url" example:"/jwt"`
	// Page overrides the console page URL; defaults to this server.
	Page string `json:"page,omitempty" example:"https://sso.example.com/"`
}

// TokenResponse is the body of /jwt.
type TokenResponse struct {
	Token string `json:"Token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// APIPostResponse reports the claims of an accepted bearer token.
type APIPostResponse struct {
	Method    string `json:"method" example:"POST"`
	Subject   string `json:"subject" example:"ssocentral-user"`
	Issuer    string `json:"issuer" example:"ssocentral"`
	TokenID   string `json:"token_id" example:"5b0c9f0e-1f6e-4a53-9d0e-4d9fb1a6c8f1"`
	ExpiresAt int64  `json:"expires_at" example:"1767225600"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
