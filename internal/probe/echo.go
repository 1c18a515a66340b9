package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
	"github.com/raysh454/ssoprobe/internal/utils"
)

const (
	EchoPath    = "/websocket"
	EchoPayload = "ping"
)

// EchoConfig tunes the echo socket.
type EchoConfig struct {
	// Payload replaces the "ping" text message when set.
	Payload            string
	HandshakeTimeout   time.Duration
	CloseTimeout       time.Duration
	InsecureSkipVerify bool
}

// Echo opens one socket per run, sends a single text payload and keeps only
// the first reply.
type Echo struct {
	dialer       *websocket.Dialer
	payload      string
	closeTimeout time.Duration
	logger       logging.Logger
}

func NewEcho(cfg EchoConfig, logger logging.Logger) *Echo {
	payload := cfg.Payload
	if payload == "" {
		payload = EchoPayload
	}
	handshake := cfg.HandshakeTimeout
	if handshake <= 0 {
		handshake = 10 * time.Second
	}
	closeTimeout := cfg.CloseTimeout
	if closeTimeout <= 0 {
		closeTimeout = time.Second
	}

	dialer := &websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: handshake,
	}
	if cfg.InsecureSkipVerify {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Echo{
		dialer:       dialer,
		payload:      payload,
		closeTimeout: closeTimeout,
		logger:       logger.With(logging.Field{Key: "probe", Value: string(model.ProbeEcho)}),
	}
}

// EchoURL derives the socket URL from the page URL. The socket is secure
// exactly when the page was served over https.
func EchoURL(page *url.URL) (string, error) {
	if page == nil || page.Host == "" {
		return "", fmt.Errorf("%w: page host is required", ErrRequest)
	}
	scheme := "ws"
	if strings.EqualFold(page.Scheme, "https") {
		scheme = "wss"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   utils.NormalizeHost(scheme, page.Host),
		Path:   EchoPath,
	}
	return u.String(), nil
}

// Run performs exactly one round trip. The connection is closed on every
// return path.
func (e *Echo) Run(ctx context.Context, page *url.URL) (*model.EchoResult, error) {
	target, err := EchoURL(page)
	if err != nil {
		return nil, err
	}

	conn, resp, err := e.dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if cerr := contextErr(ctx); cerr != nil {
			return nil, fmt.Errorf("dial %s: %w", target, cerr)
		}
		e.logger.Warn("echo socket did not open",
			logging.Field{Key: "url", Value: target},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("%w: dial %s: %w", ErrTransport, target, err)
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(e.payload)); err != nil {
		_ = conn.Close()
		return nil, e.failed(ctx, target, "send", err)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, e.failed(ctx, target, "read", err)
	}

	res := &model.EchoResult{
		URL:        target,
		Payload:    string(data),
		ReceivedAt: time.Now().UTC(),
	}
	res.CleanClose, res.CloseCode, res.CloseText = e.close(conn)
	return res, nil
}

func (e *Echo) failed(ctx context.Context, target, op string, err error) error {
	if cerr := contextErr(ctx); cerr != nil {
		return fmt.Errorf("%s %s: %w", op, target, cerr)
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		e.logger.Info("[close] connection closed before reply",
			logging.Field{Key: "code", Value: ce.Code},
			logging.Field{Key: "reason", Value: ce.Text})
		return fmt.Errorf("%w: %s %s: closed before reply: %w", ErrTransport, op, target, err)
	}
	e.logger.Info("[close] connection died", logging.Field{Key: "error", Value: err.Error()})
	return fmt.Errorf("%w: %s %s: %w", ErrTransport, op, target, err)
}

// close sends a normal close frame and waits for the peer's answer. Anything
// the server sends after the first reply is read and discarded.
func (e *Echo) close(conn *websocket.Conn) (clean bool, code int, text string) {
	defer conn.Close()

	deadline := time.Now().Add(e.closeTimeout)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		e.logger.Info("[close] connection died", logging.Field{Key: "error", Value: err.Error()})
		return false, 0, ""
	}
	_ = conn.SetReadDeadline(deadline)

	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		var ce *websocket.CloseError
		if errors.As(err, &ce) && ce.Code != websocket.CloseAbnormalClosure {
			e.logger.Info("[close] connection closed cleanly",
				logging.Field{Key: "code", Value: ce.Code},
				logging.Field{Key: "reason", Value: ce.Text})
			return true, ce.Code, ce.Text
		}
		e.logger.Info("[close] connection died", logging.Field{Key: "error", Value: err.Error()})
		return false, 0, ""
	}
}
