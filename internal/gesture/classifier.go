package gesture

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/swipedeck/internal/domain"
)

const (
	moveThreshold       = 5.0 // raw px before a press counts as a drag
	dragMultiplier      = 1.5
	rotationFactor      = 0.1
	verticalScaleFactor = 0.001
	swipeThreshold      = 50.0 // scaled px, horizontal
	swipeUpThreshold    = 80.0 // scaled px, vertical
	tapDistance         = 30.0

	// DoubleTapWindow is the maximum gap between the two taps of a double-tap.
	DoubleTapWindow = 300 * time.Millisecond
)

// Gate reports whether a new drag may start (a top card exists and no exit
// animation is in flight).
type Gate func() bool

// Result is the outcome of feeding one input event to the classifier.
type Result struct {
	Intent   domain.Intent
	X        float64              // tap x-coordinate for tap intents
	DeltaX   float64              // scaled horizontal delta for drag intents
	DeltaY   float64              // scaled vertical delta for drag intents
	Feedback *domain.DragFeedback // set for IntentDragging
}

type dragSession struct {
	startX, startY     float64
	currentX, currentY float64
	dragging           bool
}

type tapSession struct {
	lastTapTime time.Time
	lastTapX    float64
	clientTime  bool
}

// Classifier turns drag and tap events into intents. It is not safe for concurrent
// use; every method and every scheduled callback must run on the same loop.
type Classifier struct {
	sched    domain.Scheduler
	clock    clockwork.Clock
	canStart Gate

	drag       dragSession
	hasMoved   bool
	generation uint64
	// A release without movement that went to tap detection. A tap event for
	// the same press must not count a second time.
	release tapSession

	tap         tapSession
	cancelTapFn domain.CancelFunc
}

// NewClassifier builds a classifier. Tap and release times are the client's
// event timestamps; a zero time means the client sent none and clock is used.
func NewClassifier(sched domain.Scheduler, clock clockwork.Clock, canStart Gate) *Classifier {
	if canStart == nil {
		canStart = func() bool { return true }
	}
	return &Classifier{sched: sched, clock: clock, canStart: canStart}
}

// Dragging reports whether a drag session is live.
func (c *Classifier) Dragging() bool { return c.drag.dragging }

// HasMoved reports whether the current (or just-ended) drag crossed the move threshold.
func (c *Classifier) HasMoved() bool { return c.hasMoved }

// DragStart begins a drag session at (x, y). It returns false when the gate refuses.
func (c *Classifier) DragStart(x, y float64) bool {
	if !c.canStart() {
		return false
	}
	c.generation++
	c.drag = dragSession{startX: x, startY: y, currentX: x, currentY: y, dragging: true}
	c.hasMoved = false
	c.release = tapSession{}
	return true
}

// DragMove updates the live drag and returns the card transform to show.
func (c *Classifier) DragMove(x, y float64) Result {
	if !c.drag.dragging {
		return Result{Intent: domain.IntentNone}
	}
	c.drag.currentX = x
	c.drag.currentY = y

	rawX := x - c.drag.startX
	rawY := y - c.drag.startY
	if !c.hasMoved && (math.Abs(rawX) > moveThreshold || math.Abs(rawY) > moveThreshold) {
		c.hasMoved = true
	}

	dx, dy := rawX*dragMultiplier, rawY*dragMultiplier
	fb := Feedback(dx, dy)
	return Result{Intent: domain.IntentDragging, DeltaX: dx, DeltaY: dy, Feedback: &fb}
}

// DragEnd closes the drag session. Without movement the release is handed to tap
// detection; otherwise the final deltas decide between a swipe and a cancel.
func (c *Classifier) DragEnd(at time.Time, card domain.Rect) Result {
	if !c.drag.dragging {
		return Result{Intent: domain.IntentNone}
	}
	d := c.drag
	c.drag = dragSession{}

	dx := (d.currentX - d.startX) * dragMultiplier
	dy := (d.currentY - d.startY) * dragMultiplier

	var res Result
	if c.hasMoved {
		res = Result{Intent: Classify(dx, dy), DeltaX: dx, DeltaY: dy}
	} else {
		at, clientTime := c.resolve(at)
		res = c.detectTap(d.currentX, at, clientTime, card)
		c.release = tapSession{lastTapTime: at, lastTapX: d.currentX, clientTime: clientTime}
	}

	// A tap delivered in the same tick must still observe hasMoved.
	gen := c.generation
	c.sched.Schedule(0, func() {
		if c.generation == gen {
			c.hasMoved = false
		}
	})
	return res
}

// Tap handles a standalone tap on the card surface. Taps that belong to a drag
// (live or just finished with movement) are ignored, and so is a tap reporting
// the same press as a release that already went to tap detection.
func (c *Classifier) Tap(x float64, at time.Time, card domain.Rect) Result {
	if c.drag.dragging || c.hasMoved {
		return Result{Intent: domain.IntentNone}
	}
	at, clientTime := c.resolve(at)
	if c.sameAsRelease(at, clientTime) {
		return Result{Intent: domain.IntentNone}
	}
	c.release = tapSession{}
	return c.detectTap(x, at, clientTime, card)
}

// DoubleClick resolves a desktop double-click directly, without the tap window.
func (c *Classifier) DoubleClick(x float64, card domain.Rect) Result {
	return resolveDoubleTap(x, card)
}

// Reset drops all gesture state and pending timers.
func (c *Classifier) Reset() {
	c.generation++
	c.drag = dragSession{}
	c.hasMoved = false
	c.release = tapSession{}
	c.tap = tapSession{}
	c.cancelTapTimer()
}

// resolve returns the event time and whether the client stamped it. Unstamped
// events take the server clock.
func (c *Classifier) resolve(at time.Time) (time.Time, bool) {
	if at.IsZero() {
		return c.clock.Now(), false
	}
	return at, true
}

func (c *Classifier) sameAsRelease(at time.Time, clientTime bool) bool {
	r := c.release
	if r.lastTapTime.IsZero() || r.clientTime != clientTime {
		return false
	}
	elapsed := at.Sub(r.lastTapTime)
	return elapsed >= 0 && elapsed < DoubleTapWindow
}

// detectTap remembers a tap or pairs it with the remembered one. Client-stamped
// taps expire by comparing timestamps alone, so delivery jitter cannot split a
// double-tap. Unstamped taps use server time and a forget timer.
func (c *Classifier) detectTap(x float64, at time.Time, clientTime bool, card domain.Rect) Result {
	if !c.tap.lastTapTime.IsZero() && c.tap.clientTime == clientTime {
		elapsed := at.Sub(c.tap.lastTapTime)
		distance := math.Abs(x - c.tap.lastTapX)
		if elapsed >= 0 && elapsed < DoubleTapWindow && distance < tapDistance {
			c.cancelTapTimer()
			c.tap = tapSession{}
			return resolveDoubleTap(x, card)
		}
	}

	c.tap = tapSession{lastTapTime: at, lastTapX: x, clientTime: clientTime}
	c.cancelTapTimer()
	if !clientTime {
		c.cancelTapFn = c.sched.Schedule(DoubleTapWindow, func() {
			c.tap.lastTapTime = time.Time{}
			c.cancelTapFn = nil
		})
	}
	return Result{Intent: domain.IntentNone, X: x}
}

func (c *Classifier) cancelTapTimer() {
	if c.cancelTapFn != nil {
		c.cancelTapFn()
		c.cancelTapFn = nil
	}
}

func resolveDoubleTap(x float64, card domain.Rect) Result {
	if x < card.MidX() {
		return Result{Intent: domain.IntentTapLeft, X: x}
	}
	return Result{Intent: domain.IntentTapRight, X: x}
}

// Classify maps the scaled deltas of a drag that moved into a swipe or a cancel.
func Classify(dx, dy float64) domain.Intent {
	absX, absY := math.Abs(dx), math.Abs(dy)
	switch {
	case absY > absX && dy < -swipeUpThreshold:
		return domain.IntentSwipeUp
	case dx < -swipeThreshold:
		return domain.IntentSwipeLeft
	case dx > swipeThreshold:
		return domain.IntentSwipeRight
	default:
		return domain.IntentCancelled
	}
}

// Feedback computes the live transform for scaled drag deltas. Upward-dominant
// drags preview a super like; everything else previews like/nope.
func Feedback(dx, dy float64) domain.DragFeedback {
	if math.Abs(dy) > math.Abs(dx) && dy < 0 {
		return domain.DragFeedback{
			Axis:       domain.DragAxisVertical,
			TranslateY: dy,
			Scale:      1 + math.Abs(dy)*verticalScaleFactor,
		}
	}
	return domain.DragFeedback{
		Axis:       domain.DragAxisHorizontal,
		TranslateX: dx,
		Rotate:     dx * rotationFactor,
		Scale:      1,
	}
}
