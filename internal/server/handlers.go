package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/raysh454/ssoprobe/internal/app"
	"github.com/raysh454/ssoprobe/internal/console"
	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
)

// --- Console ---

func (s *Server) handleCentral(w http.ResponseWriter, r *http.Request) {
	page, err := console.NewCentral(s.cfg.Title, s.cfg.Color, r.Header).Parse()
	if err != nil {
		s.logger.Error("rendering console page", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "rendering console page failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// handleEcho answers every text message with the same payload.
func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("echo socket closed", logging.Field{Key: "remote", Value: r.RemoteAddr})
			} else {
				s.logger.Warn("echo socket read", logging.Field{Key: "error", Value: err.Error()})
			}
			return
		}
		if err := conn.WriteMessage(mt, data); err != nil {
			s.logger.Warn("echo socket write", logging.Field{Key: "error", Value: err.Error()})
			return
		}
	}
}

// --- Tokens ---

// handleJWT godoc
// @Summary Issue a bearer token
// @Tags tokens
// @Produce json
// @Success 200 {object} TokenResponse
// @Failure 500 {object} ErrorResponse
// @Router /jwt [get]
func (s *Server) handleJWT(w http.ResponseWriter, r *http.Request) {
	tok, err := s.issuer.Issue()
	if err != nil {
		s.logger.Error("issuing token", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "issuing token failed")
		return
	}
	s.logger.Info("issued token", logging.Field{Key: "remote", Value: r.RemoteAddr})
	writeJSON(w, http.StatusOK, TokenResponse{Token: tok})
}

// handleAPIPost godoc
// @Summary Check a bearer token
// @Tags tokens
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Success 200 {object} APIPostResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/post [post]
func (s *Server) handleAPIPost(w http.ResponseWriter, r *http.Request) {
	tok, err := bearerToken(r)
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer realm="ssocentral"`)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	claims, err := s.issuer.Validate(tok)
	if err != nil {
		s.logger.Warn("rejected bearer token", logging.Field{Key: "error", Value: err.Error()})
		w.Header().Set("WWW-Authenticate", `Bearer realm="ssocentral", error="invalid_token"`)
		writeError(w, http.StatusUnauthorized, ErrInvalidToken.Error())
		return
	}

	resp := APIPostResponse{
		Method:  r.Method,
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}
	s.logger.Info("accepted bearer token", logging.Field{Key: "subject", Value: claims.Subject})
	writeJSON(w, http.StatusOK, resp)
}

// --- Probes (REST) ---

// pageURL is the console page as seen by the caller.
func pageURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
	}
	return scheme + "://" + r.Host + "/"
}

// handleRunProbe godoc
// @Summary Run a probe and wait for its result
// @Tags probes
// @Accept json
// @Produce json
// @Param id path string true "Probe kind" Enums(echo, frame, fetch, token)
// @Param body body RunProbeRequest false "Probe input"
// @Success 200 {object} model.ProbeResult
// @Failure 400 {object} ErrorResponse
// @Router /probes/{id} [post]
func (s *Server) handleRunProbe(w http.ResponseWriter, r *http.Request) {
	// On POST the path segment names the probe kind.
	kind := model.ProbeKind(strings.ToLower(chi.URLParam(r, "id")))

	var body RunProbeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			s.logger.Warn("decoding run probe body", logging.Field{Key: "error", Value: err.Error()})
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}
	if body.Page == "" {
		body.Page = pageURL(r)
	}

	res, err := s.orchestrator.Run(r.Context(), model.ProbeRequest{Kind: kind, Page: body.Page, URL: body.URL})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, app.ErrUnknownProbe) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("running probe", logging.Field{Key: "probe", Value: string(kind)}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, status, err.Error())
		return
	}
	s.logger.Info("ran probe", logging.Field{Key: "activation_id", Value: res.ID}, logging.Field{Key: "status", Value: string(res.Status)})
	writeJSON(w, http.StatusOK, res)
}

// handleListProbes godoc
// @Summary List retained activations
// @Tags probes
// @Produce json
// @Success 200 {array} app.Activation
// @Router /probes [get]
func (s *Server) handleListProbes(w http.ResponseWriter, r *http.Request) {
	activations := s.orchestrator.List()
	s.logger.Info("listed activations", logging.Field{Key: "count", Value: len(activations)})
	writeJSON(w, http.StatusOK, activations)
}

// handleGetProbe godoc
// @Summary Get one activation
// @Tags probes
// @Produce json
// @Param id path string true "Activation id"
// @Success 200 {object} app.Activation
// @Failure 404 {object} ErrorResponse
// @Router /probes/{id} [get]
func (s *Server) handleGetProbe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a := s.orchestrator.Get(id)
	if a == nil {
		s.logger.Warn("getting activation: not found", logging.Field{Key: "activation_id", Value: id})
		writeError(w, http.StatusNotFound, "activation not found")
		return
	}
	s.logger.Info("got activation", logging.Field{Key: "activation_id", Value: a.ID})
	writeJSON(w, http.StatusOK, a)
}

// handleCancelProbe godoc
// @Summary Cancel a pending activation
// @Tags probes
// @Param id path string true "Activation id"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /probes/{id} [delete]
func (s *Server) handleCancelProbe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.orchestrator.Cancel(id) {
		writeError(w, http.StatusNotFound, "no pending activation")
		return
	}
	s.logger.Info("canceled activation", logging.Field{Key: "activation_id", Value: id})
	w.WriteHeader(http.StatusNoContent)
}

// --- WebSockets ---

func (s *Server) handleProbeWS(w http.ResponseWriter, r *http.Request) {
	kind := model.ProbeKind(strings.ToLower(chi.URLParam(r, "kind")))
	req := model.ProbeRequest{
		Kind: kind,
		Page: r.URL.Query().Get("page"),
		URL:  r.URL.Query().Get("url"),
	}
	if req.Page == "" {
		req.Page = pageURL(r)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	a, err := s.orchestrator.Activate(r.Context(), req)
	if err != nil {
		s.logger.Warn("activating probe", logging.Field{Key: "error", Value: err.Error()})
		_ = writeWSJSON(conn, ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("activated probe", logging.Field{Key: "activation_id", Value: a.ID})
	_ = writeWSJSON(conn, s.orchestrator.Get(a.ID))

	for ev := range a.Events {
		if err := writeWSJSON(conn, ev); err != nil {
			// Assume client disconnected; cancel activation
			s.orchestrator.Cancel(a.ID)
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), deadline())
}
