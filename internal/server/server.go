package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/ssoprobe/internal/app"
	"github.com/raysh454/ssoprobe/internal/console"
	"github.com/raysh454/ssoprobe/internal/logging"
	_ "github.com/raysh454/ssoprobe/internal/server/docs" // swagger spec
)

// Server is the HTTP + WebSocket surface of the SSO central test server.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	components   *app.ProbeComponents
	ownsComps    bool
	issuer       *TokenIssuer
	assets       fs.FS
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer creates a new Server with its own Orchestrator.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	issuer, err := NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTSubject, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token issuer: %w", err)
	}

	assets, err := console.Assets()
	if err != nil {
		return nil, fmt.Errorf("loading console assets: %w", err)
	}

	comps := cfg.Components
	ownsComps := false
	if comps == nil {
		comps, err = app.NewProbeComponents(cfg.AppConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("creating probe components: %w", err)
		}
		ownsComps = true
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: app.NewOrchestrator(cfg.AppConfig, comps.Runner, logger),
		components:   comps,
		ownsComps:    ownsComps,
		issuer:       issuer,
		assets:       assets,
		router:       r,
		logger:       logger,
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.originAllowed}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/jwt", s.optionsHandler("GET"))
	r.Options("/probes", s.optionsHandler("GET"))
	r.Options("/probes/{id}", s.optionsHandler("GET, POST, DELETE"))
	r.Options("/ws/probes/{kind}", s.optionsHandler("GET"))

	// Console page
	r.Get("/", s.handleCentral)
	r.Get("/index.html", s.handleCentral)
	r.Handle("/public/*", http.StripPrefix("/public", http.FileServer(http.FS(s.assets))))

	// Endpoints the console probes exercise
	r.Get("/websocket", s.handleEcho)
	r.Get("/jwt", s.handleJWT)
	r.HandleFunc("/api/post", s.handleAPIPost)

	// Probes over REST
	r.Get("/probes", s.handleListProbes)
	r.Post("/probes/{id}", s.handleRunProbe)
	r.Get("/probes/{id}", s.handleGetProbe)
	r.Delete("/probes/{id}", s.handleCancelProbe)

	// WebSockets for activation events
	r.Get("/ws/probes/{kind}", s.handleProbeWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

// originAllowed accepts requests without an Origin header, same-host origins
// and the configured AllowedOrigin. With no AllowedOrigin every origin passes.
func (s *Server) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if s.cfg.AllowedOrigin == "" || origin == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSuffix(origin, "/"), strings.TrimSuffix(s.cfg.AllowedOrigin, "/")) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AllowedOrigin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close cancels pending activations and releases probe transports.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if s.orchestrator != nil {
		errs = append(errs, s.orchestrator.Shutdown(ctx))
	}
	if s.ownsComps && s.components != nil {
		errs = append(errs, s.components.Close())
	}
	return errors.Join(errs...)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeWSJSON(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func deadline() time.Time {
	return time.Now().Add(time.Second)
}
