// ABOUTME: Authenticated WebSocket stream pushing dashboard snapshots on an interval
// ABOUTME: Token arrives as a query parameter; auth failures map to 4xxx close codes

package monitor

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/hearthside/hearth/internal/auth"
)

// Application close codes sent when a connection is refused.
// Browser WebSocket clients cannot read HTTP error bodies, so the close code
// is the only failure signal they get.
const (
	CloseMissingToken    websocket.StatusCode = 4001
	CloseInvalidToken    websocket.StatusCode = 4002
	CloseMalformedClaims websocket.StatusCode = 4003
	CloseUnknownIdentity websocket.StatusCode = 4004
)

const writeTimeout = 10 * time.Second

// StreamHandler serves the monitoring WebSocket stream
type StreamHandler struct {
	guard    *auth.Guard
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

// NewStreamHandler creates a stream handler pushing snapshots every interval
func NewStreamHandler(guard *auth.Guard, service *Service, interval time.Duration, logger *slog.Logger) *StreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamHandler{
		guard:    guard,
		service:  service,
		interval: interval,
		logger:   logger.With("component", "monitor-stream"),
	}
}

// closeCodeFor maps an authorization failure to its application close code
func closeCodeFor(reason auth.RejectReason) (websocket.StatusCode, string) {
	switch reason {
	case auth.RejectMissingToken:
		return CloseMissingToken, "missing token"
	case auth.RejectMalformedClaims:
		return CloseMalformedClaims, "malformed token claims"
	case auth.RejectUnknownUser, auth.RejectInactiveUser:
		return CloseUnknownIdentity, "unknown or inactive user"
	default:
		return CloseInvalidToken, "invalid or expired token"
	}
}

// ServeHTTP upgrades the connection, authorizes the token from the "token"
// query parameter, and streams dashboard snapshots until the peer disconnects
// or the server shuts down. The token is checked once at establishment.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream terminated")

	authCtx, reason := h.guard.Authorize(r.Context(), token, auth.PolicyUser)
	if reason != auth.RejectNone {
		code, msg := closeCodeFor(reason)
		h.logger.Info("rejected stream connection", "close_code", int(code), "reason", msg)
		conn.Close(code, msg)
		return
	}

	h.logger.Info("stream connected", "username", authCtx.Username)

	// CloseRead fires the context when the peer disconnects; the stream is
	// push-only so inbound frames are discarded.
	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.push(ctx, conn); err != nil {
			h.logger.Debug("stream ended", "username", authCtx.Username, "error", err)
			return
		}

		select {
		case <-ctx.Done():
			h.logger.Info("stream disconnected", "username", authCtx.Username)
			conn.Close(websocket.StatusNormalClosure, "bye")
			return
		case <-ticker.C:
		}
	}
}

func (h *StreamHandler) push(ctx context.Context, conn *websocket.Conn) error {
	snapshot, err := h.service.Snapshot(ctx)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, snapshot)
}
