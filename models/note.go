package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultColor = "#FFFFFF"

// Labels is the set of label strings attached to a note. It is stored as a
// JSON array so the same column type works on postgres and sqlite.
type Labels []string

// Value implements the driver.Valuer interface for JSON storage
func (l Labels) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface for JSON retrieval
func (l *Labels) Scan(value interface{}) error {
	if value == nil {
		*l = Labels{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for labels column")
	}
}

// NormalizeLabels trims each label, drops empties and removes duplicates,
// keeping the first occurrence order. Applying it to its own output is a
// no-op.
func NormalizeLabels(raw []string) Labels {
	normalized := Labels{}
	seen := make(map[string]struct{}, len(raw))
	for _, label := range raw {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}

type Note struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title      string     `gorm:"not null;default:''" json:"title"`
	Content    string     `gorm:"not null;default:''" json:"content"`
	Color      string     `gorm:"not null;default:'#FFFFFF'" json:"color"`
	Labels     Labels     `gorm:"type:text;not null;default:'[]'" json:"labels"`
	IsPinned   bool       `gorm:"not null;default:false" json:"isPinned"`
	IsArchived bool       `gorm:"not null;default:false" json:"isArchived"`
	IsDeleted  bool       `gorm:"not null;default:false;index" json:"isDeleted"`
	DeletedAt  *time.Time `json:"deletedAt"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

// IsEmpty reports whether both title and content are empty after trimming.
// A note in this state must not persist.
func (n *Note) IsEmpty() bool {
	return strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Content) == ""
}

// NoteUpdate carries a partial update. A nil field is left untouched,
// mirroring the "only fields present in the request" contract of PUT
// /api/notes/:id.
type NoteUpdate struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Color      *string   `json:"color"`
	Labels     *[]string `json:"labels"`
	IsPinned   *bool     `json:"isPinned"`
	IsArchived *bool     `json:"isArchived"`
	IsDeleted  *bool     `json:"isDeleted"`
}
