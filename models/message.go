package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StandardMessage is the envelope published to the broker for every note
// event.
type StandardMessage struct {
	Event     string                 `json:"event"`
	Timestamp time.Time              `json:"timestamp"`
	UserID    uuid.UUID              `json:"user_id"`
	Payload   map[string]interface{} `json:"payload"`
}

func NewStandardMessage(event string, userID uuid.UUID, payload map[string]interface{}) StandardMessage {
	return StandardMessage{
		Event:     event,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Payload:   payload,
	}
}

func (m StandardMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
