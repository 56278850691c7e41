package deck

import (
	"fmt"

	"github.com/pscheid92/swipedeck/internal/domain"
)

// Store is the ordered sequence of active profiles. The front element is the top
// card, the only one eligible for gesture actions.
type Store struct {
	profiles []domain.Profile
	history  *History
}

func NewStore() *Store {
	return &Store{history: NewHistory(HistoryCapacity)}
}

// History returns the rewind stack owned alongside the deck.
func (s *Store) History() *History { return s.history }

func (s *Store) Len() int { return len(s.profiles) }

func (s *Store) IsEmpty() bool { return len(s.profiles) == 0 }

// PeekTop returns a copy of the top card.
func (s *Store) PeekTop() (domain.Profile, bool) {
	if len(s.profiles) == 0 {
		return domain.Profile{}, false
	}
	return s.profiles[0].Clone(), true
}

// RemoveTop detaches and returns the top card.
func (s *Store) RemoveTop() (domain.Profile, error) {
	if len(s.profiles) == 0 {
		return domain.Profile{}, fmt.Errorf("remove top: %w", domain.ErrEmptyDeck)
	}
	top := s.profiles[0]
	s.profiles[0] = domain.Profile{}
	s.profiles = s.profiles[1:]
	return top, nil
}

// Prepend pushes profile back to the front with its photo index reset to 0.
func (s *Store) Prepend(profile domain.Profile) {
	p := profile.Clone()
	p.CurrentPhotoIndex = 0
	s.profiles = append([]domain.Profile{p}, s.profiles...)
}

// Reset replaces the whole deck and clears the history.
func (s *Store) Reset(profiles []domain.Profile) {
	s.profiles = make([]domain.Profile, 0, len(profiles))
	for _, p := range profiles {
		c := p.Clone()
		c.CurrentPhotoIndex = 0
		s.profiles = append(s.profiles, c)
	}
	s.history.Clear()
}

// Snapshot returns a deep copy of the deck in display order.
func (s *Store) Snapshot() []domain.Profile {
	out := make([]domain.Profile, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p.Clone()
	}
	return out
}

// top exposes the live top card to the photo cursor.
func (s *Store) top() *domain.Profile {
	if len(s.profiles) == 0 {
		return nil
	}
	return &s.profiles[0]
}
