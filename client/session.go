package client

import (
	"time"

	"jotter-notes/jotter/models"

	"github.com/google/uuid"
)

// Field names a note field edited through the session.
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
)

// snapshot is one undo/redo history entry.
type snapshot struct {
	Title   string
	Content string
}

// Session is the ephemeral editing state for one open note. Keystrokes
// accumulate into the dirty title/content; a history snapshot is pushed
// only after a typing pause, so undo steps back over bursts of typing, not
// single characters. The history never reaches the server and is discarded
// on Close.
type Session struct {
	NoteID  uuid.UUID
	Title   string
	Content string
	Labels  []string
	Color   string

	debounce     time.Duration
	lastType     time.Time
	pending      bool
	lastSnapshot snapshot
	undoStack    []snapshot
	redoStack    []snapshot
	open         bool
}

// NewSession creates a session with the given typing-pause threshold.
func NewSession(debounce time.Duration) *Session {
	return &Session{debounce: debounce}
}

// Open loads a note into the session, resetting the history.
func (s *Session) Open(note models.Note) {
	color := note.Color
	if color == "" {
		color = models.DefaultColor
	}

	s.NoteID = note.ID
	s.Title = note.Title
	s.Content = note.Content
	s.Labels = append([]string(nil), note.Labels...)
	s.Color = color

	s.undoStack = nil
	s.redoStack = nil
	s.pending = false
	s.lastType = time.Time{}
	s.lastSnapshot = snapshot{Title: note.Title, Content: note.Content}
	s.open = true
}

// IsOpen reports whether a note is loaded.
func (s *Session) IsOpen() bool {
	return s.open
}

// Type records a keystroke at the given time. A pause longer than the
// debounce threshold since the previous keystroke closes the previous burst
// into a history snapshot before the new one starts.
func (s *Session) Type(field Field, value string, now time.Time) {
	if s.pending && !s.lastType.IsZero() && now.Sub(s.lastType) >= s.debounce {
		s.pushSnapshot()
	}

	switch field {
	case FieldTitle:
		s.Title = value
	case FieldContent:
		s.Content = value
	}

	s.pending = true
	s.lastType = now
}

// Settle forces the current burst into a history snapshot, e.g. when the
// input loses focus.
func (s *Session) Settle() {
	if s.pending {
		s.pushSnapshot()
		s.pending = false
	}
}

func (s *Session) pushSnapshot() {
	current := snapshot{Title: s.Title, Content: s.Content}
	if current == s.lastSnapshot {
		return
	}

	s.undoStack = append(s.undoStack, s.lastSnapshot)
	s.lastSnapshot = current
	s.redoStack = nil
}

func (s *Session) CanUndo() bool { return len(s.undoStack) > 0 }
func (s *Session) CanRedo() bool { return len(s.redoStack) > 0 }

// Undo pops the previous snapshot, pushing the current state onto the redo
// stack.
func (s *Session) Undo() bool {
	s.Settle()
	if len(s.undoStack) == 0 {
		return false
	}

	prev := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.redoStack = append(s.redoStack, snapshot{Title: s.Title, Content: s.Content})

	s.Title = prev.Title
	s.Content = prev.Content
	s.lastSnapshot = prev
	s.pending = false
	return true
}

// Redo reverses the most recent Undo.
func (s *Session) Redo() bool {
	if len(s.redoStack) == 0 {
		return false
	}

	next := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.undoStack = append(s.undoStack, snapshot{Title: s.Title, Content: s.Content})

	s.Title = next.Title
	s.Content = next.Content
	s.lastSnapshot = next
	s.pending = false
	return true
}

// Update returns the partial update the session would save.
func (s *Session) Update() models.NoteUpdate {
	title := s.Title
	content := s.Content
	labels := append([]string(nil), s.Labels...)
	color := s.Color
	return models.NoteUpdate{
		Title:   &title,
		Content: &content,
		Labels:  &labels,
		Color:   &color,
	}
}

// Close discards the session and its history.
func (s *Session) Close() {
	*s = Session{debounce: s.debounce}
}
