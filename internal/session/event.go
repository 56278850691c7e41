package session

import (
	"time"

	"github.com/pscheid92/swipedeck/internal/domain"
)

// EventKind names a client input forwarded to a session.
type EventKind string

const (
	EventPointerDown  EventKind = "pointer_down"
	EventPointerMove  EventKind = "pointer_move"
	EventPointerUp    EventKind = "pointer_up"
	EventTap          EventKind = "tap"
	EventDoubleClick  EventKind = "double_click"
	EventLike         EventKind = "like"
	EventNope         EventKind = "nope"
	EventSuperLike    EventKind = "superlike"
	EventRewind       EventKind = "rewind"
	EventBoost        EventKind = "boost"
	EventShuffle      EventKind = "shuffle"
	EventNextPhoto    EventKind = "next_photo"
	EventPrevPhoto    EventKind = "prev_photo"
	EventSetPhoto     EventKind = "set_photo"
	EventAnimationEnd EventKind = "animation_end"
)

// Event is one client input. Pointer events carry coordinates, release and tap
// events carry the card's bounding box, animation_end carries the exit token and
// set_photo the photo index. A zero At means the client sent no timestamp.
type Event struct {
	Kind EventKind
	X, Y float64
	// Positioned reports whether X and Y were sent.
	Positioned bool
	Card       domain.Rect
	At         time.Time
	Token      uint64
	Index      int
}

// State is a point-in-time view of a session.
type State struct {
	ID          string
	Deck        []domain.Profile
	HistoryLen  int
	Locked      bool
	BoostActive bool
	Dragging    bool
}
