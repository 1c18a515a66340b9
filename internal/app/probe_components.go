package app

import (
	"fmt"

	"github.com/raysh454/ssoprobe/internal/interfaces"
	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/probe"
	"github.com/raysh454/ssoprobe/internal/webclient"
)

type ProbeComponents struct {
	WebClient interfaces.WebClient
	Navigator interfaces.Navigator
	Runner    *probe.Runner
}

// NewProbeComponents builds the transports and the four probes.
func NewProbeComponents(cfg *Config, logger logging.Logger) (*ProbeComponents, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	wc, err := webclient.NewWebClient(cfg.WebClientCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("new webclient: %w", err)
	}

	nav, err := webclient.NewNavigator(cfg.WebClientCfg, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("new navigator: %w", err)
	}

	return NewProbeComponentsWith(cfg, wc, nav, logger), nil
}

// NewProbeComponentsWith wires the probes over already-built transports.
// nav may be nil.
func NewProbeComponentsWith(cfg *Config, wc interfaces.WebClient, nav interfaces.Navigator, logger logging.Logger) *ProbeComponents {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	runner := probe.NewRunner(
		probe.NewEcho(cfg.EchoCfg, logger),
		probe.NewFrame(nav, cfg.Screenshot, logger),
		probe.NewFetch(wc, logger),
		probe.NewToken(wc, logger),
		logger,
	)
	return &ProbeComponents{
		WebClient: wc,
		Navigator: nav,
		Runner:    runner,
	}
}

// Close probe components and release resources.
func (pc *ProbeComponents) Close() error {
	var firstErr error
	if pc.Navigator != nil {
		if err := pc.Navigator.Close(); err != nil {
			firstErr = fmt.Errorf("close navigator: %w", err)
		}
	}
	if pc.WebClient != nil {
		if err := pc.WebClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close webclient: %w", err)
		}
	}
	return firstErr
}
