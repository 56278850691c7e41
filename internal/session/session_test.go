package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/swipedeck/internal/adapter/metrics"
	"github.com/pscheid92/swipedeck/internal/dispatch"
	"github.com/pscheid92/swipedeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var card = domain.Rect{Left: 100, Top: 0, Width: 400, Height: 600} // midX = 300

type stubSource struct {
	mu    sync.Mutex
	calls int
}

func (s *stubSource) Generate(count int) []domain.Profile {
	s.mu.Lock()
	s.calls++
	gen := s.calls
	s.mu.Unlock()

	out := make([]domain.Profile, count)
	for i := range out {
		out[i] = domain.Profile{
			ID:     fmt.Sprintf("g%d_p%d", gen, i),
			Name:   fmt.Sprintf("Name%d", i),
			Age:    30,
			Images: []string{"https://example.com/1.jpg", "https://example.com/2.jpg", "https://example.com/3.jpg"},
		}
	}
	return out
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recorder implements domain.Renderer and domain.Notifier and is safe to read
// from the test goroutine.
type recorder struct {
	mu       sync.Mutex
	renders  []domain.DeckView
	drags    int
	resets   int
	exits    []domain.ExitAnimation
	photos   []string
	messages []string
}

func (r *recorder) RenderDeck(view domain.DeckView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, view)
}

func (r *recorder) DragCard(domain.DragFeedback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drags++
}

func (r *recorder) ResetCard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *recorder) AnimateExit(exit domain.ExitAnimation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exits = append(r.exits, exit)
}

func (r *recorder) ShowPhoto(id string, index int, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.photos = append(r.photos, fmt.Sprintf("%s:%d", id, index))
}

func (r *recorder) Highlight(string, bool) {}

func (r *recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recorder) snapshot() recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return recorder{
		renders:  append([]domain.DeckView(nil), r.renders...),
		drags:    r.drags,
		resets:   r.resets,
		exits:    append([]domain.ExitAnimation(nil), r.exits...),
		photos:   append([]string(nil), r.photos...),
		messages: append([]string(nil), r.messages...),
	}
}

func newTestSession(t *testing.T, deckSize int) (*Session, *recorder, *clockwork.FakeClock, *stubSource) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	rec := &recorder{}
	src := &stubSource{}
	s := New("test-session", src, rec, rec, clock, nil, nil, Config{DeckSize: deckSize})
	t.Cleanup(s.Stop)
	return s, rec, clock, src
}

func submit(t *testing.T, s *Session, events ...Event) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, s.Submit(ev))
	}
}

func state(t *testing.T, s *Session) State {
	t.Helper()
	st, err := s.Snapshot()
	require.NoError(t, err)
	return st
}

func swipeRight() []Event {
	return []Event{
		{Kind: EventPointerDown, X: 200, Y: 300},
		{Kind: EventPointerMove, X: 230, Y: 300},
		{Kind: EventPointerMove, X: 260, Y: 300},
		{Kind: EventPointerUp, Card: card},
	}
}

func TestSession_StartPopulatesDeck(t *testing.T) {
	s, rec, _, src := newTestSession(t, 5)

	st := state(t, s)

	assert.Equal(t, "test-session", st.ID)
	assert.Len(t, st.Deck, 5)
	assert.Equal(t, 1, src.callCount())
	require.Len(t, rec.snapshot().renders, 1)
	assert.Len(t, rec.snapshot().renders[0].Profiles, 5)
}

func TestSession_DragSwipeCommitsAndCompletes(t *testing.T) {
	s, rec, _, _ := newTestSession(t, 3)

	submit(t, s, swipeRight()...)
	st := state(t, s)

	assert.Len(t, st.Deck, 2)
	assert.Equal(t, 1, st.HistoryLen)
	assert.True(t, st.Locked)
	assert.False(t, st.Dragging)
	got := rec.snapshot()
	assert.Equal(t, 2, got.drags)
	require.Len(t, got.exits, 1)
	assert.Equal(t, "like", got.exits[0].Action)

	submit(t, s, Event{Kind: EventAnimationEnd, Token: got.exits[0].Token})
	assert.False(t, state(t, s).Locked)
	assert.Equal(t, []string{dispatch.MsgLike}, rec.snapshot().messages)
}

func TestSession_ShortDragCancels(t *testing.T) {
	s, rec, _, _ := newTestSession(t, 3)

	submit(t, s,
		Event{Kind: EventPointerDown, X: 200, Y: 300},
		Event{Kind: EventPointerMove, X: 220, Y: 300},
		Event{Kind: EventPointerUp, Card: card},
	)
	st := state(t, s)

	assert.Len(t, st.Deck, 3)
	assert.False(t, st.Locked)
	assert.Equal(t, 1, rec.snapshot().resets)
}

func TestSession_DragRefusedWhileLocked(t *testing.T) {
	s, rec, _, _ := newTestSession(t, 3)
	submit(t, s, Event{Kind: EventNope})

	submit(t, s, swipeRight()...)
	st := state(t, s)

	assert.Len(t, st.Deck, 2)
	assert.Zero(t, rec.snapshot().drags)
	assert.Len(t, rec.snapshot().exits, 1)
}

func TestSession_LockFallbackFiresOnClock(t *testing.T) {
	s, rec, clock, _ := newTestSession(t, 3)
	submit(t, s, Event{Kind: EventSuperLike})
	require.True(t, state(t, s).Locked)

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(dispatch.DefaultAnimationTimeout)

	assert.Eventually(t, func() bool {
		st, err := s.Snapshot()
		return err == nil && !st.Locked
	}, waitFor, tick)
	assert.Equal(t, []string{dispatch.MsgSuperLike}, rec.snapshot().messages)
}

func TestSession_BoostExpiresOnClock(t *testing.T) {
	s, rec, clock, _ := newTestSession(t, 3)
	submit(t, s, Event{Kind: EventBoost})
	require.True(t, state(t, s).BoostActive)

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(dispatch.DefaultBoostDuration)

	assert.Eventually(t, func() bool {
		st, err := s.Snapshot()
		return err == nil && !st.BoostActive
	}, waitFor, tick)
	assert.Equal(t, []string{dispatch.MsgBoostActivated}, rec.snapshot().messages)
}

func TestSession_DoubleTapUsesClientTimestamps(t *testing.T) {
	s, rec, _, _ := newTestSession(t, 2)
	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	submit(t, s,
		Event{Kind: EventTap, X: 400, At: t0, Card: card},
		Event{Kind: EventTap, X: 405, At: t0.Add(200 * time.Millisecond), Card: card},
		Event{Kind: EventTap, X: 150, At: t0.Add(time.Second), Card: card},
		Event{Kind: EventTap, X: 150, At: t0.Add(time.Second + 100*time.Millisecond), Card: card},
	)
	state(t, s)

	assert.Equal(t, []string{"g1_p0:1", "g1_p0:0"}, rec.snapshot().photos)
}

func TestSession_TapAfterStillReleaseIsSamePress(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		at   time.Time
	}{
		{"client timestamps", t0},
		{"server clock", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec, _, _ := newTestSession(t, 2)

			submit(t, s,
				Event{Kind: EventPointerDown, X: 400, Y: 300},
				Event{Kind: EventPointerUp, X: 400, Y: 300, Positioned: true, At: tt.at, Card: card},
				Event{Kind: EventTap, X: 400, At: tt.at, Card: card},
			)
			st := state(t, s)

			assert.Len(t, st.Deck, 2)
			assert.Empty(t, rec.snapshot().photos)
		})
	}
}

func TestSession_ReleasePositionCompletesThrottledDrag(t *testing.T) {
	s, rec, _, _ := newTestSession(t, 3)

	submit(t, s,
		Event{Kind: EventPointerDown, X: 200, Y: 300},
		Event{Kind: EventPointerUp, X: 260, Y: 300, Positioned: true, Card: card},
	)
	st := state(t, s)

	assert.Len(t, st.Deck, 2)
	got := rec.snapshot()
	require.Len(t, got.exits, 1)
	assert.Equal(t, "like", got.exits[0].Action)
}

func TestSession_SetPhoto(t *testing.T) {
	s, rec, _, _ := newTestSession(t, 2)

	submit(t, s,
		Event{Kind: EventSetPhoto, Index: 2},
		Event{Kind: EventSetPhoto, Index: 0},
	)
	state(t, s)

	assert.Equal(t, []string{"g1_p0:2", "g1_p0:0"}, rec.snapshot().photos)
}

func TestSession_DoubleClickAndButtons(t *testing.T) {
	s, rec, _, _ := newTestSession(t, 2)

	submit(t, s,
		Event{Kind: EventDoubleClick, X: 350, Card: card},
		Event{Kind: EventNextPhoto},
		Event{Kind: EventPrevPhoto},
		Event{Kind: EventRewind},
	)
	state(t, s)

	got := rec.snapshot()
	assert.Equal(t, []string{"g1_p0:1", "g1_p0:2", "g1_p0:1"}, got.photos)
	assert.Equal(t, []string{dispatch.MsgNothingToRewind}, got.messages)
}

func TestSession_ShuffleRegenerates(t *testing.T) {
	s, rec, _, src := newTestSession(t, 4)
	submit(t, s, Event{Kind: EventLike})

	submit(t, s, Event{Kind: EventShuffle})
	st := state(t, s)

	assert.Equal(t, 2, src.callCount())
	assert.Len(t, st.Deck, 4)
	assert.Equal(t, "g2_p0", st.Deck[0].ID)
	assert.Zero(t, st.HistoryLen)
	assert.False(t, st.Locked)
	assert.Len(t, rec.snapshot().renders, 2)
}

func TestSession_StoppedRejectsCommands(t *testing.T) {
	s, _, _, _ := newTestSession(t, 1)

	s.Stop()
	s.Stop()

	<-s.Done()
	assert.ErrorIs(t, s.Submit(Event{Kind: EventLike}), domain.ErrSessionStopped)
	_, err := s.Snapshot()
	assert.ErrorIs(t, err, domain.ErrSessionStopped)
}

func TestRegistry_EnforcesLimit(t *testing.T) {
	reg := prometheus.NewRegistry()
	sm := metrics.NewSessionMetrics(reg)
	r := NewRegistry(&stubSource{}, clockwork.NewFakeClock(), 2, metrics.NewDeckMetrics(reg), sm, Config{DeckSize: 3})
	t.Cleanup(r.StopAll)

	a, err := r.Open(&recorder{}, &recorder{})
	require.NoError(t, err)
	_, err = r.Open(&recorder{}, &recorder{})
	require.NoError(t, err)

	_, err = r.Open(&recorder{}, &recorder{})
	require.ErrorIs(t, err, domain.ErrSessionLimit)
	assert.Equal(t, 2.0, testutil.ToFloat64(sm.ActiveSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.SessionsTotal.WithLabelValues("rejected")))

	got, ok := r.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	r.Close(a)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.ActiveSessions))
	_, err = r.Open(&recorder{}, &recorder{})
	require.NoError(t, err)
}

func TestRegistry_StopAll(t *testing.T) {
	r := NewRegistry(&stubSource{}, clockwork.NewFakeClock(), 10, nil, nil, Config{DeckSize: 1})
	a, err := r.Open(&recorder{}, &recorder{})
	require.NoError(t, err)
	b, err := r.Open(&recorder{}, &recorder{})
	require.NoError(t, err)

	r.StopAll()

	assert.Zero(t, r.Len())
	for _, s := range []*Session{a, b} {
		select {
		case <-s.Done():
		case <-time.After(waitFor):
			t.Fatal("session did not stop")
		}
	}
}

func TestRegistry_GestureMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	dm := metrics.NewDeckMetrics(reg)
	r := NewRegistry(&stubSource{}, clockwork.NewFakeClock(), 1, dm, nil, Config{DeckSize: 2})
	t.Cleanup(r.StopAll)
	s, err := r.Open(&recorder{}, &recorder{})
	require.NoError(t, err)

	submit(t, s, swipeRight()...)
	state(t, s)

	assert.Equal(t, 1.0, testutil.ToFloat64(dm.Gestures.WithLabelValues("swipe_right")))
	assert.Equal(t, 1.0, testutil.ToFloat64(dm.Swipes.WithLabelValues("like")))
}
