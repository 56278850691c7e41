package dispatch

import (
	"log/slog"
	"time"

	"github.com/pscheid92/swipedeck/internal/deck"
	"github.com/pscheid92/swipedeck/internal/domain"
)

const (
	DefaultAnimationTimeout = 1 * time.Second
	DefaultBoostDuration    = 3 * time.Second

	exitDuration = 300 * time.Millisecond
)

// Notification texts.
const (
	MsgNope            = "Nope! 👎"
	MsgLike            = "It's a Like! 💚"
	MsgSuperLike       = "SUPER LIKE! ⭐"
	MsgNothingToRewind = "Nothing to rewind!"
	MsgPleaseWait      = "Please wait..."
	MsgRewoundPrefix   = "Rewound: "
	MsgBoostActive     = "Boost already active!"
	MsgBoostActivated  = "⚡ BOOST ACTIVATED! ⚡"
)

// Recorder receives dispatcher outcomes for metrics.
type Recorder interface {
	SwipeCommitted(action domain.Action)
	Rewind(result string)
	Boost(result string)
	LockFallback()
}

type noopRecorder struct{}

func (noopRecorder) SwipeCommitted(domain.Action) {}
func (noopRecorder) Rewind(string)                {}
func (noopRecorder) Boost(string)                 {}
func (noopRecorder) LockFallback()                {}

type Config struct {
	// AnimationTimeout releases the animation lock when the renderer never reports
	// completion of an exit animation.
	AnimationTimeout time.Duration
	BoostDuration    time.Duration
}

func (c Config) withDefaults() Config {
	if c.AnimationTimeout <= 0 {
		c.AnimationTimeout = DefaultAnimationTimeout
	}
	if c.BoostDuration <= 0 {
		c.BoostDuration = DefaultBoostDuration
	}
	return c
}

type inFlightExit struct {
	token          uint64
	action         domain.Action
	profileName    string
	cancelFallback domain.CancelFunc
}

// Dispatcher owns the deck, the photo cursor, the animation lock and the boost
// window of one session. It is not safe for concurrent use.
type Dispatcher struct {
	store    *deck.Store
	cursor   *deck.PhotoCursor
	renderer domain.Renderer
	notifier domain.Notifier
	sched    domain.Scheduler
	recorder Recorder
	logger   *slog.Logger
	config   Config

	lastToken uint64
	inFlight  *inFlightExit

	boostActive bool
	cancelBoost domain.CancelFunc
}

func NewDispatcher(renderer domain.Renderer, notifier domain.Notifier, sched domain.Scheduler, recorder Recorder, logger *slog.Logger, config Config) *Dispatcher {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	store := deck.NewStore()
	return &Dispatcher{
		store:    store,
		cursor:   deck.NewPhotoCursor(store),
		renderer: renderer,
		notifier: notifier,
		sched:    sched,
		recorder: recorder,
		logger:   logger,
		config:   config.withDefaults(),
	}
}

// Locked reports whether a swipe-exit animation is in flight.
func (d *Dispatcher) Locked() bool { return d.inFlight != nil }

func (d *Dispatcher) BoostActive() bool { return d.boostActive }

// CanStartDrag is the gesture gate: a top card exists and nothing is animating.
func (d *Dispatcher) CanStartDrag() bool {
	return d.inFlight == nil && !d.store.IsEmpty()
}

func (d *Dispatcher) DeckLen() int { return d.store.Len() }

func (d *Dispatcher) HistoryLen() int { return d.store.History().Len() }

func (d *Dispatcher) Top() (domain.Profile, bool) { return d.store.PeekTop() }

// View returns what the renderer needs to draw the whole deck.
func (d *Dispatcher) View() domain.DeckView {
	return domain.DeckView{Profiles: d.store.Snapshot(), Boosted: d.boostActive}
}

// Dispatch routes a classified intent. It reports whether state changed.
func (d *Dispatcher) Dispatch(intent domain.Intent) bool {
	switch intent {
	case domain.IntentSwipeLeft:
		return d.swipeOrReset(d.Reject)
	case domain.IntentSwipeRight:
		return d.swipeOrReset(d.Like)
	case domain.IntentSwipeUp:
		return d.swipeOrReset(d.SuperLike)
	case domain.IntentTapLeft:
		return d.PreviousPhoto()
	case domain.IntentTapRight:
		return d.NextPhoto()
	case domain.IntentCancelled:
		d.renderer.ResetCard()
		return false
	default:
		return false
	}
}

func (d *Dispatcher) swipeOrReset(swipe func() bool) bool {
	if swipe() {
		return true
	}
	d.renderer.ResetCard()
	return false
}

func (d *Dispatcher) Like() bool      { return d.commit(domain.ActionLike) }
func (d *Dispatcher) Reject() bool    { return d.commit(domain.ActionNope) }
func (d *Dispatcher) SuperLike() bool { return d.commit(domain.ActionSuperLike) }

func (d *Dispatcher) commit(action domain.Action) bool {
	if d.inFlight != nil || d.store.IsEmpty() {
		return false
	}

	top, _ := d.store.PeekTop()
	d.store.History().Push(top, action)
	if _, err := d.store.RemoveTop(); err != nil {
		return false
	}

	d.lastToken++
	exit := &inFlightExit{token: d.lastToken, action: action, profileName: top.Name}
	d.inFlight = exit

	d.renderer.AnimateExit(exitAnimation(exit.token, top.ID, action))
	exit.cancelFallback = d.sched.Schedule(d.config.AnimationTimeout, func() {
		d.finishExit(exit.token, true)
	})

	d.recorder.SwipeCommitted(action)
	d.logger.Debug("Swipe committed", "action", action.String(), "profile_id", top.ID, "token", exit.token, "remaining", d.store.Len())
	return true
}

// AnimationComplete releases the lock for the exit animation identified by token.
// Completions for superseded animations are ignored.
func (d *Dispatcher) AnimationComplete(token uint64) bool {
	return d.finishExit(token, false)
}

func (d *Dispatcher) finishExit(token uint64, fallback bool) bool {
	exit := d.inFlight
	if exit == nil || exit.token != token {
		return false
	}
	d.inFlight = nil
	if exit.cancelFallback != nil {
		exit.cancelFallback()
	}

	if fallback {
		d.recorder.LockFallback()
		d.logger.Warn("Exit animation completion not received, releasing lock", "token", token, "timeout", d.config.AnimationTimeout)
	}

	d.notifier.Notify(exitMessage(exit.action))
	return true
}

// Rewind restores the most recently swiped profile to the front of the deck.
func (d *Dispatcher) Rewind() bool {
	if d.store.History().Len() == 0 {
		d.recorder.Rewind("empty")
		d.notifier.Notify(MsgNothingToRewind)
		return false
	}
	if d.inFlight != nil {
		d.recorder.Rewind("busy")
		d.notifier.Notify(MsgPleaseWait)
		return false
	}

	entry, _ := d.store.History().Pop()
	d.store.Prepend(entry.Profile)
	d.renderer.RenderDeck(d.View())

	d.recorder.Rewind("ok")
	d.notifier.Notify(MsgRewoundPrefix + entry.Profile.Name)
	d.logger.Debug("Rewound swipe", "action", entry.Action.String(), "profile_id", entry.Profile.ID)
	return true
}

// Boost highlights the top card for the configured duration.
func (d *Dispatcher) Boost() bool {
	if d.boostActive {
		d.recorder.Boost("already_active")
		d.notifier.Notify(MsgBoostActive)
		return false
	}

	d.boostActive = true
	if top, ok := d.store.PeekTop(); ok {
		d.renderer.Highlight(top.ID, true)
	}
	d.recorder.Boost("activated")
	d.notifier.Notify(MsgBoostActivated)

	d.cancelBoost = d.sched.Schedule(d.config.BoostDuration, d.endBoost)
	return true
}

func (d *Dispatcher) endBoost() {
	d.boostActive = false
	d.cancelBoost = nil
	if top, ok := d.store.PeekTop(); ok {
		d.renderer.Highlight(top.ID, false)
	}
}

func (d *Dispatcher) NextPhoto() bool {
	idx, changed := d.cursor.Next()
	return d.showPhoto(idx, changed)
}

func (d *Dispatcher) PreviousPhoto() bool {
	idx, changed := d.cursor.Previous()
	return d.showPhoto(idx, changed)
}

// SetPhoto jumps to a photo of the top card, clamped into range.
func (d *Dispatcher) SetPhoto(index int) bool {
	idx, changed := d.cursor.SetIndex(index)
	return d.showPhoto(idx, changed)
}

func (d *Dispatcher) showPhoto(idx int, changed bool) bool {
	if !changed {
		return false
	}
	top, ok := d.store.PeekTop()
	if !ok {
		return false
	}
	d.renderer.ShowPhoto(top.ID, idx, top.CurrentImage())
	return true
}

// Shuffle replaces the deck, clears the history and invalidates any in-flight
// exit animation so its lock cannot outlive the cards it belonged to.
func (d *Dispatcher) Shuffle(profiles []domain.Profile) {
	d.dropInFlight()
	d.store.Reset(profiles)
	d.renderer.RenderDeck(d.View())
	d.logger.Debug("Deck reset", "profiles", len(profiles))
}

// Stop cancels every pending timer.
func (d *Dispatcher) Stop() {
	d.dropInFlight()
	if d.cancelBoost != nil {
		d.cancelBoost()
		d.cancelBoost = nil
	}
	d.boostActive = false
}

func (d *Dispatcher) dropInFlight() {
	if d.inFlight == nil {
		return
	}
	if d.inFlight.cancelFallback != nil {
		d.inFlight.cancelFallback()
	}
	d.inFlight = nil
}

func exitMessage(action domain.Action) string {
	switch action {
	case domain.ActionNope:
		return MsgNope
	case domain.ActionLike:
		return MsgLike
	default:
		return MsgSuperLike
	}
}

func exitAnimation(token uint64, profileID string, action domain.Action) domain.ExitAnimation {
	exit := domain.ExitAnimation{
		Token:     token,
		ProfileID: profileID,
		Action:    action.String(),
		Scale:     1,
		Duration:  exitDuration,
	}
	switch action {
	case domain.ActionNope:
		exit.TranslateX, exit.Rotate = -150, -30
	case domain.ActionLike:
		exit.TranslateX, exit.Rotate = 150, 30
	case domain.ActionSuperLike:
		exit.TranslateY, exit.Scale = -150, 1.1
	}
	return exit
}
