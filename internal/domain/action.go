package domain

// Action is the outcome recorded for a committed swipe.
type Action int

const (
	ActionNope Action = iota + 1
	ActionLike
	ActionSuperLike
)

func (a Action) String() string {
	switch a {
	case ActionNope:
		return "nope"
	case ActionLike:
		return "like"
	case ActionSuperLike:
		return "superlike"
	default:
		return "unknown"
	}
}

// HistoryEntry is an archived swipe that rewind can restore.
type HistoryEntry struct {
	Profile Profile `json:"profile"`
	Action  Action  `json:"action"`
}
