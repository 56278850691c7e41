package deck

import "github.com/pscheid92/swipedeck/internal/domain"

// HistoryCapacity bounds the rewind stack.
const HistoryCapacity = 10

// History is a bounded LIFO of committed swipes. Pushing onto a full stack evicts
// the oldest entry.
type History struct {
	entries  []domain.HistoryEntry
	capacity int
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = HistoryCapacity
	}
	return &History{
		entries:  make([]domain.HistoryEntry, 0, capacity),
		capacity: capacity,
	}
}

// Push archives a snapshot of profile with its photo index reset to 0.
func (h *History) Push(profile domain.Profile, action domain.Action) {
	snapshot := profile.Clone()
	snapshot.CurrentPhotoIndex = 0

	if len(h.entries) == h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, domain.HistoryEntry{Profile: snapshot, Action: action})
}

// Pop removes and returns the most recent entry.
func (h *History) Pop() (domain.HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return domain.HistoryEntry{}, false
	}
	last := h.entries[len(h.entries)-1]
	h.entries[len(h.entries)-1] = domain.HistoryEntry{}
	h.entries = h.entries[:len(h.entries)-1]
	return last, true
}

// Peek returns the most recent entry without removing it.
func (h *History) Peek() (domain.HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return domain.HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *History) Len() int { return len(h.entries) }

func (h *History) Clear() {
	clear(h.entries)
	h.entries = h.entries[:0]
}
