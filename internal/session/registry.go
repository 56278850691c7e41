package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/swipedeck/internal/adapter/metrics"
	"github.com/pscheid92/swipedeck/internal/domain"
	"github.com/pscheid92/swipedeck/internal/platform/logging"
)

// Registry creates sessions and tracks the live ones up to a fixed limit.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	maxSessions    int
	source         domain.ProfileSource
	clock          clockwork.Clock
	deckMetrics    *metrics.DeckMetrics
	sessionMetrics *metrics.SessionMetrics
	config         Config
}

func NewRegistry(source domain.ProfileSource, clock clockwork.Clock, maxSessions int, deckMetrics *metrics.DeckMetrics, sessionMetrics *metrics.SessionMetrics, cfg Config) *Registry {
	return &Registry{
		sessions:       make(map[string]*Session),
		maxSessions:    maxSessions,
		source:         source,
		clock:          clock,
		deckMetrics:    deckMetrics,
		sessionMetrics: sessionMetrics,
		config:         cfg,
	}
}

// Open starts a new session bound to renderer and notifier.
func (r *Registry) Open(renderer domain.Renderer, notifier domain.Notifier) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.maxSessions {
		r.recordStart("rejected")
		return nil, fmt.Errorf("open session (max %d): %w", r.maxSessions, domain.ErrSessionLimit)
	}

	id := uuid.NewString()
	logger := logging.ForSession(slog.Default(), id)
	s := New(id, r.source, renderer, notifier, r.clock, r.deckMetrics, logger, r.config)
	r.sessions[id] = s

	r.recordStart("ok")
	r.updateGauge()
	return s, nil
}

// Close stops the session and forgets it.
func (r *Registry) Close(s *Session) {
	s.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.id]; !ok {
		return
	}
	delete(r.sessions, s.id)
	r.updateGauge()
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// StopAll stops every live session. Used on shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.sessions = make(map[string]*Session)
	r.updateGauge()
	r.mu.Unlock()

	for _, s := range live {
		s.Stop()
	}
	slog.Info("All sessions stopped", "count", len(live))
}

func (r *Registry) recordStart(result string) {
	if r.sessionMetrics != nil {
		r.sessionMetrics.SessionsTotal.WithLabelValues(result).Inc()
	}
}

func (r *Registry) updateGauge() {
	if r.sessionMetrics != nil {
		r.sessionMetrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
}
