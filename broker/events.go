package broker

type EventType string

const (
	// Standardized event types in format: <resource>.<action>
	NoteCreated  EventType = "note.created"
	NoteUpdated  EventType = "note.updated"
	NoteTrashed  EventType = "note.trashed"
	NoteRestored EventType = "note.restored"
	NotePurged   EventType = "note.purged"

	TrashEmptied EventType = "trash.emptied"
)

// SubjectPrefix groups every event under one subject tree so a single
// wildcard subscription sees them all.
const SubjectPrefix = "jotter"

// NoteEventsWildcard matches every event subject.
const NoteEventsWildcard = SubjectPrefix + ".>"

// Subject returns the NATS subject an event is published on.
func (e EventType) Subject() string {
	return SubjectPrefix + "." + string(e)
}
