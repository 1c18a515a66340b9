package server

import (
	"time"

	"github.com/raysh454/ssoprobe/internal/app"
	"github.com/raysh454/ssoprobe/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address of the central server.
	ListenAddr string

	// Title and Color style the console page.
	Title string
	Color string

	// JWT issuance for /jwt and validation for /api/post.
	JWTSecret  []byte
	JWTIssuer  string
	JWTSubject string
	JWTTTL     time.Duration

	// AllowedOrigin is the only browser origin allowed for CORS and
	// websocket upgrades, e.g. "https://sso.example.com". Empty allows any.
	AllowedOrigin string

	AppConfig *app.Config
	Logger    logging.Logger

	// Components overrides the probe transports built from AppConfig.
	Components *app.ProbeComponents
}

// DefaultConfig returns the development defaults. The JWT secret must be
// replaced outside of local testing.
func DefaultConfig() Config {
	return Config{
		ListenAddr: ":8080",
		JWTSecret:  []byte("ssocentral-dev-secret"),
		JWTIssuer:  "ssocentral",
		JWTSubject: "ssocentral-user",
		JWTTTL:     time.Hour,
		AppConfig:  app.DefaultConfig(),
	}
}
