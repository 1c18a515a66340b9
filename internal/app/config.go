package app

import (
	"strings"
	"time"

	"github.com/raysh454/ssoprobe/internal/cli"
	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
	"github.com/raysh454/ssoprobe/internal/probe"
	"github.com/raysh454/ssoprobe/internal/webclient"
)

// Config contains the runtime options shared by the probe CLI and the
// central server.
type Config struct {
	// PageURL is the console page the probes run against when a request
	// does not name one.
	PageURL string

	// WebClient configuration (fetch and token transport, frame navigator)
	WebClientCfg webclient.Config

	// Echo socket configuration
	EchoCfg probe.EchoConfig

	// Timeouts bound each activation per probe; 0 disables the bound.
	Timeouts map[model.ProbeKind]time.Duration

	// Screenshot asks the frame navigator for a screenshot.
	Screenshot bool

	// EventBuffer is the size of each activation's event channel.
	EventBuffer int

	// ActivationRetention is how long finished activations stay listed.
	ActivationRetention time.Duration

	LogCfg logging.Config
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WebClientCfg: webclient.Config{
			Client:    webclient.ClientNetHTTP,
			Browser:   webclient.BrowserNone,
			Timeout:   30 * time.Second,
			Headless:  true,
			IdleAfter: 2 * time.Second,
		},
		EchoCfg: probe.EchoConfig{
			Payload:          probe.EchoPayload,
			HandshakeTimeout: 10 * time.Second,
			CloseTimeout:     time.Second,
		},
		Timeouts: map[model.ProbeKind]time.Duration{
			model.ProbeEcho:  10 * time.Second,
			model.ProbeFrame: 30 * time.Second,
			model.ProbeFetch: 15 * time.Second,
			model.ProbeToken: 15 * time.Second,
		},
		EventBuffer:         16,
		ActivationRetention: 10 * time.Minute,
		LogCfg: logging.Config{
			Format: logging.FormatJSON,
			Level:  "info",
		},
	}
}

// Timeout returns the activation bound for kind.
func (c *Config) Timeout(kind model.ProbeKind) time.Duration {
	if c == nil || c.Timeouts == nil {
		return 0
	}
	return c.Timeouts[kind]
}

// ApplyArgs overrides defaults with the probe CLI flags.
func (c *Config) ApplyArgs(args *cli.CLIArgs) {
	if args == nil {
		return
	}
	c.PageURL = args.Page
	if args.Timeout > 0 {
		for _, k := range model.AllProbeKinds() {
			c.Timeouts[k] = args.Timeout
		}
	}
	if args.Render {
		c.WebClientCfg.Browser = webclient.BrowserChromedp
		c.Screenshot = args.Screenshot != ""
	}
	c.WebClientCfg.InsecureSkipVerify = args.Insecure
	c.EchoCfg.InsecureSkipVerify = args.Insecure
	if args.LogFormat != "" {
		c.LogCfg.Format = logging.Format(strings.ToLower(args.LogFormat))
	}
	if args.LogLevel != "" {
		c.LogCfg.Level = args.LogLevel
	}
}
