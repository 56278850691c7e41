// Package session runs one deck per connected client as an actor: a single
// goroutine owns the gesture classifier and the dispatcher and processes input
// events and timer callbacks one at a time.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/swipedeck/internal/adapter/metrics"
	"github.com/pscheid92/swipedeck/internal/dispatch"
	"github.com/pscheid92/swipedeck/internal/domain"
	"github.com/pscheid92/swipedeck/internal/gesture"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 5 * time.Second
	cmdBuffer      = 256
)

type sessionCmd interface{ isSessionCmd() }

type baseSessionCmd struct{}

func (baseSessionCmd) isSessionCmd() {}

type eventCmd struct {
	baseSessionCmd
	event Event
}

type timerCmd struct {
	baseSessionCmd
	task *task
}

type snapshotCmd struct {
	baseSessionCmd
	replyChannel chan State
}

type stopCmd struct {
	baseSessionCmd
}

// task is a scheduled callback. Its cancelled flag is only touched on the loop.
type task struct {
	fn        func()
	cancelled bool
}

// Config holds the per-session tunables.
type Config struct {
	DeckSize int
	Dispatch dispatch.Config
}

// Session is a single-threaded deck engine bound to one renderer.
type Session struct {
	id       string
	cmdCh    chan sessionCmd
	done     chan struct{}
	stopOnce sync.Once

	clock      clockwork.Clock
	source     domain.ProfileSource
	renderer   domain.Renderer
	metrics    *metrics.DeckMetrics
	logger     *slog.Logger
	deckSize   int
	classifier *gesture.Classifier
	dispatcher *dispatch.Dispatcher

	// Zero-delay callbacks, run once the queued commands are drained.
	deferred []*task
}

// New starts a session. The deck is populated from source on the loop
// goroutine before any event is handled.
func New(id string, source domain.ProfileSource, renderer domain.Renderer, notifier domain.Notifier, clock clockwork.Clock, deckMetrics *metrics.DeckMetrics, logger *slog.Logger, cfg Config) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		id:       id,
		cmdCh:    make(chan sessionCmd, cmdBuffer),
		done:     make(chan struct{}),
		clock:    clock,
		source:   source,
		renderer: renderer,
		metrics:  deckMetrics,
		logger:   logger,
		deckSize: cfg.DeckSize,
	}
	s.dispatcher = dispatch.NewDispatcher(renderer, notifier, s, deckMetrics, logger, cfg.Dispatch)
	s.classifier = gesture.NewClassifier(s, clock, s.dispatcher.CanStartDrag)
	go s.run()
	return s
}

func (s *Session) ID() string { return s.id }

// Done is closed when the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Submit queues an event for the loop.
func (s *Session) Submit(ev Event) error {
	select {
	case <-s.done:
		return domain.ErrSessionStopped
	default:
	}

	timer := s.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case s.cmdCh <- eventCmd{event: ev}:
		return nil
	case <-s.done:
		return domain.ErrSessionStopped
	case <-timer.Chan():
		return fmt.Errorf("submit %s timed out after %v", ev.Kind, commandTimeout)
	}
}

// Snapshot returns the current state as seen by the loop.
func (s *Session) Snapshot() (State, error) {
	replyCh := make(chan State, 1)
	timer := s.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case s.cmdCh <- snapshotCmd{replyChannel: replyCh}:
	case <-s.done:
		return State{}, domain.ErrSessionStopped
	case <-timer.Chan():
		return State{}, fmt.Errorf("snapshot command timed out after %v", commandTimeout)
	}

	select {
	case st := <-replyCh:
		return st, nil
	case <-s.done:
		return State{}, domain.ErrSessionStopped
	case <-timer.Chan():
		return State{}, fmt.Errorf("snapshot command timed out after %v", commandTimeout)
	}
}

// Stop shuts the loop down and cancels its timers. It is safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		select {
		case s.cmdCh <- stopCmd{}:
		case <-s.done:
			return
		}

		timeout := s.clock.NewTimer(stopTimeout)
		defer timeout.Stop()

		select {
		case <-s.done:
		case <-timeout.Chan():
			s.logger.Warn("Session stop timeout exceeded", "timeout", stopTimeout)
		}
	})
}

// Schedule implements domain.Scheduler. Callbacks are posted back onto the loop,
// so they never run concurrently with event handling. It must only be called
// from the loop goroutine.
func (s *Session) Schedule(d time.Duration, fn func()) domain.CancelFunc {
	t := &task{fn: fn}
	if d <= 0 {
		s.deferred = append(s.deferred, t)
		return func() { t.cancelled = true }
	}

	timer := s.clock.AfterFunc(d, func() {
		select {
		case s.cmdCh <- timerCmd{task: t}:
		case <-s.done:
		}
	})
	return func() {
		t.cancelled = true
		timer.Stop()
	}
}

func (s *Session) run() {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Session panic recovered", "panic", r)
			s.dispatcher.Stop()
		}
	}()

	s.dispatcher.Shuffle(s.source.Generate(s.deckSize))
	s.logger.Info("Session started", "deck_size", s.dispatcher.DeckLen())

	for {
		var cmd sessionCmd
		if len(s.deferred) > 0 {
			select {
			case cmd = <-s.cmdCh:
			default:
				s.runDeferred()
				continue
			}
		} else {
			cmd = <-s.cmdCh
		}

		switch c := cmd.(type) {
		case eventCmd:
			s.handleEvent(c.event)
		case timerCmd:
			if !c.task.cancelled {
				c.task.fn()
			}
		case snapshotCmd:
			c.replyChannel <- s.state()
		case stopCmd:
			s.dispatcher.Stop()
			s.classifier.Reset()
			s.logger.Info("Session stopped")
			return
		default:
			s.logger.Warn("Session received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (s *Session) runDeferred() {
	pending := s.deferred
	s.deferred = nil
	for _, t := range pending {
		if !t.cancelled {
			t.fn()
		}
	}
}

func (s *Session) handleEvent(ev Event) {
	switch ev.Kind {
	case EventPointerDown:
		s.classifier.DragStart(ev.X, ev.Y)
	case EventPointerMove:
		if res := s.classifier.DragMove(ev.X, ev.Y); res.Feedback != nil {
			s.renderer.DragCard(*res.Feedback)
		}
	case EventPointerUp:
		// Moves may have been throttled; the release position is authoritative.
		if ev.Positioned {
			s.classifier.DragMove(ev.X, ev.Y)
		}
		s.route(s.classifier.DragEnd(ev.At, ev.Card).Intent)
	case EventTap:
		s.route(s.classifier.Tap(ev.X, ev.At, ev.Card).Intent)
	case EventDoubleClick:
		s.route(s.classifier.DoubleClick(ev.X, ev.Card).Intent)
	case EventLike:
		s.dispatcher.Like()
	case EventNope:
		s.dispatcher.Reject()
	case EventSuperLike:
		s.dispatcher.SuperLike()
	case EventRewind:
		s.dispatcher.Rewind()
	case EventBoost:
		s.dispatcher.Boost()
	case EventNextPhoto:
		s.dispatcher.NextPhoto()
	case EventPrevPhoto:
		s.dispatcher.PreviousPhoto()
	case EventSetPhoto:
		s.dispatcher.SetPhoto(ev.Index)
	case EventShuffle:
		s.classifier.Reset()
		s.dispatcher.Shuffle(s.source.Generate(s.deckSize))
	case EventAnimationEnd:
		s.dispatcher.AnimationComplete(ev.Token)
	default:
		s.logger.Debug("Ignoring unknown event", "kind", ev.Kind)
	}
}

func (s *Session) route(intent domain.Intent) {
	if intent == domain.IntentNone {
		return
	}
	s.metrics.GestureClassified(intent)
	s.dispatcher.Dispatch(intent)
}

func (s *Session) state() State {
	return State{
		ID:          s.id,
		Deck:        s.dispatcher.View().Profiles,
		HistoryLen:  s.dispatcher.HistoryLen(),
		Locked:      s.dispatcher.Locked(),
		BoostActive: s.dispatcher.BoostActive(),
		Dragging:    s.classifier.Dragging(),
	}
}
