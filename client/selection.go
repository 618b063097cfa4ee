package client

import "github.com/google/uuid"

// Selection is the bulk-selection state of the notes view. Selection mode
// is active exactly while the set is non-empty.
type Selection struct {
	ids map[uuid.UUID]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[uuid.UUID]struct{})}
}

// Toggle adds or removes an id from the selection.
func (s *Selection) Toggle(id uuid.UUID) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

func (s *Selection) Contains(id uuid.UUID) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) SelectAll(ids []uuid.UUID) {
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) Clear() {
	s.ids = make(map[uuid.UUID]struct{})
}

func (s *Selection) Active() bool {
	return len(s.ids) > 0
}

func (s *Selection) Count() int {
	return len(s.ids)
}

// IDs returns the selected ids in no particular order.
func (s *Selection) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}
