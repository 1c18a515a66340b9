// Command ssocentral serves the SSO console page together with the endpoints
// its probes exercise (/websocket, /jwt, /api/post) and the probe API.
// Usage: go run ./cmd/ssocentral -addr :8080
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raysh454/ssoprobe/internal/app"
	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/server"
	"github.com/raysh454/ssoprobe/internal/webclient"
)

func main() {
	cfg := server.DefaultConfig()

	fs := flag.NewFlagSet("ssocentral", flag.ExitOnError)
	var (
		addr      = fs.String("addr", cfg.ListenAddr, "HTTP listen address")
		title     = fs.String("title", "", "Console page title")
		color     = fs.String("color", "", "Console page background color")
		secret    = fs.String("jwt-secret", os.Getenv("SSOCENTRAL_JWT_SECRET"), "HS256 secret for /jwt (env SSOCENTRAL_JWT_SECRET)")
		issuer    = fs.String("jwt-issuer", cfg.JWTIssuer, "Issuer claim of issued tokens")
		subject   = fs.String("jwt-subject", cfg.JWTSubject, "Subject claim of issued tokens")
		ttl       = fs.Duration("jwt-ttl", cfg.JWTTTL, "Lifetime of issued tokens")
		origin    = fs.String("allowed-origin", "", "Only browser origin allowed for CORS and websocket upgrades (empty allows any)")
		tlsCert   = fs.String("tls-cert", "", "TLS certificate file (serves https and wss)")
		tlsKey    = fs.String("tls-key", "", "TLS key file")
		render    = fs.Bool("render", false, "Load frame probe targets in headless Chrome")
		insecure  = fs.Bool("insecure", false, "Skip TLS verification for probe transports")
		logFormat = fs.String("log-format", "json", "Log format: json|text|ecs")
		logLevel  = fs.String("log-level", "info", "Log level: debug|info|warn|error")
	)
	_ = fs.Parse(os.Args[1:])

	logger := logging.NewLogger("ssocentral", logging.Config{
		Format: logging.Format(*logFormat),
		Level:  *logLevel,
	})

	cfg.ListenAddr = *addr
	cfg.Title = *title
	cfg.Color = *color
	if *secret != "" {
		cfg.JWTSecret = []byte(*secret)
	} else {
		logger.Warn("using the development jwt secret; set -jwt-secret outside local testing")
	}
	cfg.JWTIssuer = *issuer
	cfg.JWTSubject = *subject
	cfg.JWTTTL = *ttl
	cfg.AllowedOrigin = *origin
	cfg.Logger = logger
	cfg.AppConfig = app.DefaultConfig()
	cfg.AppConfig.LogCfg.Format = logging.Format(*logFormat)
	cfg.AppConfig.LogCfg.Level = *logLevel
	cfg.AppConfig.WebClientCfg.InsecureSkipVerify = *insecure
	cfg.AppConfig.EchoCfg.InsecureSkipVerify = *insecure
	if *render {
		cfg.AppConfig.WebClientCfg.Browser = webclient.BrowserChromedp
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssocentral: %v\n", err)
		os.Exit(1)
	}
	httpSrv := srv.HTTPServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.Field{Key: "addr", Value: cfg.ListenAddr}, logging.Field{Key: "tls", Value: *tlsCert != ""})
		if *tlsCert != "" {
			errCh <- httpSrv.ListenAndServeTLS(*tlsCert, *tlsKey)
			return
		}
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", logging.Field{Key: "error", Value: err.Error()})
			_ = srv.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", logging.Field{Key: "error", Value: err.Error()})
	}
	if err := srv.Close(); err != nil {
		logger.Warn("closing server", logging.Field{Key: "error", Value: err.Error()})
	}
}
