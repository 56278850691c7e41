// Package websocket carries a deck session over a gorilla/websocket connection:
// client frames become session events, renderer calls become JSON frames.
package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/swipedeck/internal/adapter/metrics"
	"github.com/pscheid92/swipedeck/internal/domain"
	"github.com/pscheid92/swipedeck/internal/platform/correlation"
	"github.com/pscheid92/swipedeck/internal/session"
	"golang.org/x/time/rate"
)

const maxMessageSize = 4096

type HandlerConfig struct {
	AppURL        string
	IsDevelopment bool
	// Pointer-move events per second, and burst, allowed per connection.
	EventRate     float64
	EventBurst    int
	ToastDuration time.Duration
	// Concurrent connections and connects per second, and burst, allowed per
	// client IP. Zero disables the check.
	MaxPerIP     int
	ConnectRate  float64
	ConnectBurst int
}

// Handler upgrades requests to WebSocket connections and binds each one to a
// fresh deck session.
type Handler struct {
	registry       *session.Registry
	upgrader       websocket.Upgrader
	clock          clockwork.Clock
	wsMetrics      *metrics.WebSocketMetrics
	sessionMetrics *metrics.SessionMetrics
	limits         *connectionLimits
	config         HandlerConfig
}

func NewHandler(registry *session.Registry, clock clockwork.Clock, wsMetrics *metrics.WebSocketMetrics, sessionMetrics *metrics.SessionMetrics, cfg HandlerConfig) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     NewCheckOrigin(cfg.AppURL, cfg.IsDevelopment),
		},
		clock:          clock,
		wsMetrics:      wsMetrics,
		sessionMetrics: sessionMetrics,
		limits:         newConnectionLimits(clock, cfg.MaxPerIP, cfg.ConnectRate, cfg.ConnectBurst),
		config:         cfg,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if ok, reason := h.limits.acquire(ip); !ok {
		if h.wsMetrics != nil {
			h.wsMetrics.Rejected.WithLabelValues(string(reason)).Inc()
		}
		slog.Warn("Refusing WebSocket connection", "remote_addr", r.RemoteAddr, "reason", reason)
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}
	defer h.limits.release(ip)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	writer := newClientWriter(conn, h.clock, h.wsMetrics)
	out := newSink(writer, h.wsMetrics, h.config.ToastDuration)

	sess, err := h.registry.Open(out, out)
	if err != nil {
		code, reason := websocket.CloseInternalServerErr, "session unavailable"
		if errors.Is(err, domain.ErrSessionLimit) {
			code, reason = websocket.CloseTryAgainLater, "session limit reached"
		}
		slog.Warn("Rejecting WebSocket client", "remote_addr", r.RemoteAddr, "error", err)
		writer.stopGraceful(code, reason)
		return
	}

	if h.wsMetrics != nil {
		h.wsMetrics.ActiveConnections.Inc()
		defer h.wsMetrics.ActiveConnections.Dec()
	}

	ctx := correlation.WithID(r.Context(), sess.ID())
	slog.InfoContext(ctx, "Client connected", "remote_addr", r.RemoteAddr)

	h.readPump(ctx, conn, writer, sess)

	h.registry.Close(sess)
	writer.stop()
	slog.InfoContext(ctx, "Client disconnected")
}

func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, writer *clientWriter, sess *session.Session) {
	limiter := rate.NewLimiter(rate.Limit(h.config.EventRate), h.config.EventBurst)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				slog.DebugContext(ctx, "WebSocket read failed", "error", err)
			}
			return
		}
		writer.recordActivity()

		ev, err := decodeEvent(data)
		if err != nil {
			slog.DebugContext(ctx, "Dropping invalid client message", "error", err)
			h.dropped("invalid")
			continue
		}
		if h.wsMetrics != nil {
			h.wsMetrics.MessagesReceived.WithLabelValues(string(ev.Kind)).Inc()
		}

		if ev.Kind == session.EventPointerMove && !limiter.AllowN(h.clock.Now(), 1) {
			h.dropped("throttled")
			continue
		}

		if err := sess.Submit(ev); err != nil {
			slog.WarnContext(ctx, "Session rejected event", "kind", ev.Kind, "error", err)
			return
		}
	}
}

func (h *Handler) dropped(reason string) {
	if h.sessionMetrics != nil {
		h.sessionMetrics.EventsDropped.WithLabelValues(reason).Inc()
	}
}
