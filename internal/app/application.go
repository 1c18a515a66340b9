package app

import (
	"context"
	"errors"
	"time"

	"github.com/raysh454/ssoprobe/internal/cli"
	"github.com/raysh454/ssoprobe/internal/logging"
)

// Application is the global runtime state container.
// It holds config, parsed CLI args and the services shared across modules
// (orchestrator, probe components, logger).
type Application struct {
	Config *Config
	Args   *cli.CLIArgs

	Logger     logging.Logger
	Orch       *Orchestrator
	Components *ProbeComponents

	// internal context for cancellation / lifecycle
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication constructs an Application from the provided parts.
func NewApplication(cfg *Config, args *cli.CLIArgs, logger logging.Logger, comps *ProbeComponents) *Application {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())

	a := &Application{
		Config:     cfg,
		Args:       args,
		Logger:     logger,
		Components: comps,
		ctx:        ctx,
		cancel:     cancel,
	}
	if comps != nil {
		a.Orch = NewOrchestrator(cfg, comps.Runner, logger)
	}
	return a
}

// Context is cancelled once Shutdown completes.
func (a *Application) Context() context.Context {
	return a.ctx
}

// Start logs the run parameters. No background work is started here.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	if a.Logger != nil {
		fields := []logging.Field{{Key: "page", Value: a.Config.PageURL}}
		if a.Args != nil {
			fields = append(fields, logging.Field{Key: "probes", Value: a.Args.Probes})
		}
		a.Logger.Info("application starting", fields...)
	}
	return nil
}

// Shutdown attempts a graceful shutdown, delegating to the orchestrator first.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	if a.Logger != nil {
		a.Logger.Info("application shutdown initiated")
	}

	// Ask orchestrator to shut down first with a bounded timeout.
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if a.Orch != nil {
		if err := a.Orch.Shutdown(shutdownCtx); err != nil && a.Logger != nil {
			a.Logger.Info("orchestrator shutdown returned error", logging.Field{Key: "error", Value: err.Error()})
		}
	}

	var err error
	if a.Components != nil {
		err = a.Components.Close()
	}

	// cancel internal ctx to signal local components/tests
	a.cancel()

	return err
}
