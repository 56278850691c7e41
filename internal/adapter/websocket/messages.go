package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pscheid92/swipedeck/internal/domain"
	"github.com/pscheid92/swipedeck/internal/session"
)

// Outbound message types.
const (
	msgRender    = "render"
	msgDrag      = "drag"
	msgResetCard = "reset_card"
	msgExit      = "exit"
	msgPhoto     = "photo"
	msgHighlight = "highlight"
	msgToast     = "toast"
)

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type exitPayload struct {
	domain.ExitAnimation
	DurationMs int64 `json:"durationMs"`
}

type photoPayload struct {
	ProfileID string `json:"profileId"`
	Index     int    `json:"index"`
	Image     string `json:"image"`
}

type highlightPayload struct {
	ProfileID string `json:"profileId"`
	On        bool   `json:"on"`
}

type toastPayload struct {
	Message string `json:"message"`
	TTLMs   int64  `json:"ttlMs"`
}

var idleWarning = mustMarshal(envelope{
	Type: msgToast,
	Data: toastPayload{Message: "Still there? Disconnecting soon.", TTLMs: 5000},
})

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

var validate = validator.New()

var errMissingCard = errors.New("card is required")

// clientMessage is one inbound frame. T is the client's event timestamp in
// Unix milliseconds; zero means "use server time".
type clientMessage struct {
	Type  string       `json:"type" validate:"required,oneof=pointer_down pointer_move pointer_up tap double_click like nope superlike rewind boost shuffle next_photo prev_photo set_photo animation_end"`
	X     *float64     `json:"x"`
	Y     *float64     `json:"y"`
	T     int64        `json:"t" validate:"gte=0"`
	Card  *domain.Rect `json:"card"`
	Token uint64       `json:"token" validate:"required_if=Type animation_end"`
	Index *int         `json:"index" validate:"required_if=Type set_photo"`
}

func decodeEvent(data []byte) (session.Event, error) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return session.Event{}, fmt.Errorf("decode message: %w", err)
	}
	if err := validate.Struct(msg); err != nil {
		return session.Event{}, fmt.Errorf("validate %q message: %w", msg.Type, err)
	}

	ev := session.Event{
		Kind:  session.EventKind(msg.Type),
		Token: msg.Token,
	}
	if msg.X != nil {
		ev.X = *msg.X
	}
	if msg.Y != nil {
		ev.Y = *msg.Y
	}
	ev.Positioned = msg.X != nil && msg.Y != nil
	if msg.Index != nil {
		ev.Index = *msg.Index
	}
	if msg.T > 0 {
		ev.At = time.UnixMilli(msg.T)
	}

	switch ev.Kind {
	case session.EventPointerUp, session.EventTap, session.EventDoubleClick:
		if msg.Card == nil || msg.Card.Width <= 0 {
			return session.Event{}, fmt.Errorf("validate %q message: %w", msg.Type, errMissingCard)
		}
	}
	if msg.Card != nil {
		ev.Card = *msg.Card
	}
	return ev, nil
}
