package domain

// Intent is a discrete user intention derived from raw pointer input.
type Intent int

const (
	IntentNone Intent = iota
	IntentDragging
	IntentCancelled
	IntentSwipeLeft
	IntentSwipeRight
	IntentSwipeUp
	IntentTapLeft
	IntentTapRight
)

func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentDragging:
		return "dragging"
	case IntentCancelled:
		return "cancelled"
	case IntentSwipeLeft:
		return "swipe_left"
	case IntentSwipeRight:
		return "swipe_right"
	case IntentSwipeUp:
		return "swipe_up"
	case IntentTapLeft:
		return "tap_left"
	case IntentTapRight:
		return "tap_right"
	default:
		return "unknown"
	}
}

// Rect is the top card's bounding box in client coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MidX returns the horizontal midpoint of the rectangle.
func (r Rect) MidX() float64 {
	return r.Left + r.Width/2
}

// DragAxis tells the renderer how to present an in-progress drag.
type DragAxis string

const (
	DragAxisHorizontal DragAxis = "horizontal"
	DragAxisVertical   DragAxis = "vertical"
)

// DragFeedback is the live transform of the top card during a drag.
type DragFeedback struct {
	Axis       DragAxis `json:"axis"`
	TranslateX float64  `json:"translateX"`
	TranslateY float64  `json:"translateY"`
	Rotate     float64  `json:"rotate"`
	Scale      float64  `json:"scale"`
}
