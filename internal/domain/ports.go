package domain

import "time"

// ProfileSource produces fresh profile records.
type ProfileSource interface {
	Generate(count int) []Profile
}

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// CancelFunc cancels a scheduled callback. Calling it after the callback ran is a no-op.
type CancelFunc func()

// Scheduler defers work onto the owning event loop. Callbacks never run concurrently
// with each other or with the code that scheduled them.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) CancelFunc
}

// DeckView is what the renderer needs to draw the whole deck.
type DeckView struct {
	Profiles []Profile `json:"profiles"`
	Boosted  bool      `json:"boosted"`
}

// ExitAnimation parametrizes the off-screen transition of a committed card.
// Translations are percentages of the card size; rotation is in degrees.
type ExitAnimation struct {
	Token      uint64        `json:"token"`
	ProfileID  string        `json:"profileId"`
	Action     string        `json:"action"`
	TranslateX float64       `json:"translateX"`
	TranslateY float64       `json:"translateY"`
	Rotate     float64       `json:"rotate"`
	Scale      float64       `json:"scale"`
	Duration   time.Duration `json:"-"`
}

// Renderer reflects deck state into the visible UI. Completion of an exit animation
// is reported back to the engine with the animation's token.
type Renderer interface {
	RenderDeck(view DeckView)
	DragCard(feedback DragFeedback)
	ResetCard()
	AnimateExit(exit ExitAnimation)
	ShowPhoto(profileID string, index int, image string)
	Highlight(profileID string, on bool)
}

// Notifier is a fire-and-forget sink for ephemeral feedback messages.
type Notifier interface {
	Notify(message string)
}
