package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"jotter-notes/jotter/broker"
	"jotter-notes/jotter/database"
	"jotter-notes/jotter/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateNoteInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Color   string   `json:"color"`
	Labels  []string `json:"labels"`
}

// UpdateResult is the outcome of an update. Deleted is set when the merged
// note ended up with both title and content empty and was removed instead
// of saved.
type UpdateResult struct {
	Deleted bool
	ID      uuid.UUID
	Note    *models.Note
}

// DeleteResult is the outcome of the trash/purge transition. Exactly one of
// MovedToTrash and DeletedForever is set.
type DeleteResult struct {
	MovedToTrash   bool
	DeletedForever bool
	Note           *models.Note
}

// BulkOutcome reports one item of a bulk operation. Items fail
// independently; one failure never rolls back the others.
type BulkOutcome struct {
	ID    uuid.UUID `json:"id"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
}

type NoteServiceInterface interface {
	CreateNote(db *database.Database, userID uuid.UUID, input CreateNoteInput) (models.Note, error)
	GetNotes(db *database.Database, userID uuid.UUID, onlyDeleted bool) ([]models.Note, error)
	GetNoteById(db *database.Database, userID, id uuid.UUID) (models.Note, error)
	UpdateNote(db *database.Database, userID, id uuid.UUID, update models.NoteUpdate) (UpdateResult, error)
	RestoreNote(db *database.Database, userID, id uuid.UUID) (UpdateResult, error)
	SetArchived(db *database.Database, userID, id uuid.UUID, archived bool) (UpdateResult, error)
	SetPinned(db *database.Database, userID, id uuid.UUID, pinned bool) (UpdateResult, error)
	DeleteNote(db *database.Database, userID, id uuid.UUID) (DeleteResult, error)
	TrashMany(db *database.Database, userID uuid.UUID, ids []uuid.UUID) []BulkOutcome
	RestoreMany(db *database.Database, userID uuid.UUID, ids []uuid.UUID) []BulkOutcome
	PurgeMany(db *database.Database, userID uuid.UUID, ids []uuid.UUID) []BulkOutcome
}

type NoteService struct{}

func (s *NoteService) CreateNote(db *database.Database, userID uuid.UUID, input CreateNoteInput) (models.Note, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)

	if title == "" && content == "" {
		return models.Note{}, fmt.Errorf("%w: title or content is required", ErrValidation)
	}

	color := input.Color
	if color == "" {
		color = models.DefaultColor
	}

	note := models.Note{
		ID:      uuid.New(),
		UserID:  userID,
		Title:   title,
		Content: content,
		Color:   color,
		Labels:  models.NormalizeLabels(input.Labels),
	}

	if err := db.DB.Create(&note).Error; err != nil {
		return models.Note{}, err
	}

	broker.PublishNoteEvent(broker.NoteCreated, userID, map[string]interface{}{
		"note_id": note.ID.String(),
		"title":   note.Title,
	})

	return note, nil
}

func (s *NoteService) GetNotes(db *database.Database, userID uuid.UUID, onlyDeleted bool) ([]models.Note, error) {
	var notes []models.Note
	err := db.DB.
		Where("user_id = ? AND is_deleted = ?", userID, onlyDeleted).
		Order("created_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// getOwnedNote loads a note and enforces the ownership invariant. A missing
// note and a foreign note fail differently so the trash flow can tell
// "already purged" apart from "not yours".
func (s *NoteService) getOwnedNote(tx *gorm.DB, userID, id uuid.UUID) (models.Note, error) {
	var note models.Note
	if err := tx.First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Note{}, ErrNoteNotFound
		}
		return models.Note{}, err
	}
	if note.UserID != userID {
		return models.Note{}, ErrUnauthorized
	}
	return note, nil
}

func (s *NoteService) GetNoteById(db *database.Database, userID, id uuid.UUID) (models.Note, error) {
	return s.getOwnedNote(db.DB, userID, id)
}

// applyUpdate merges the present fields into the note and keeps the state
// machine consistent: archiving clears the pin, trashing stamps DeletedAt
// and clears pin and archive, restoring clears DeletedAt.
func applyUpdate(note *models.Note, update models.NoteUpdate) {
	if update.Title != nil {
		note.Title = strings.TrimSpace(*update.Title)
	}
	if update.Content != nil {
		note.Content = strings.TrimSpace(*update.Content)
	}
	if update.Color != nil {
		note.Color = *update.Color
	}
	if update.Labels != nil {
		note.Labels = models.NormalizeLabels(*update.Labels)
	}
	if update.IsPinned != nil {
		note.IsPinned = *update.IsPinned
	}
	if update.IsArchived != nil {
		note.IsArchived = *update.IsArchived
		if note.IsArchived {
			note.IsPinned = false
		}
	}
	if update.IsDeleted != nil {
		if *update.IsDeleted && !note.IsDeleted {
			now := time.Now().UTC()
			note.DeletedAt = &now
			note.IsPinned = false
			note.IsArchived = false
		}
		if !*update.IsDeleted {
			note.DeletedAt = nil
		}
		note.IsDeleted = *update.IsDeleted
	}
}

// UpdateNote applies a partial update. If the merged note ends up with both
// title and content empty it is permanently removed instead of saved, no
// matter which fields the update touched.
func (s *NoteService) UpdateNote(db *database.Database, userID, id uuid.UUID, update models.NoteUpdate) (UpdateResult, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return UpdateResult{}, tx.Error
	}

	note, err := s.getOwnedNote(tx, userID, id)
	if err != nil {
		tx.Rollback()
		return UpdateResult{}, err
	}

	wasDeleted := note.IsDeleted
	applyUpdate(&note, update)

	if note.IsEmpty() {
		if err := tx.Delete(&note).Error; err != nil {
			tx.Rollback()
			return UpdateResult{}, err
		}
		if err := tx.Commit().Error; err != nil {
			return UpdateResult{}, err
		}

		broker.PublishNoteEvent(broker.NotePurged, userID, map[string]interface{}{
			"note_id": note.ID.String(),
		})

		return UpdateResult{Deleted: true, ID: note.ID}, nil
	}

	if err := tx.Save(&note).Error; err != nil {
		tx.Rollback()
		return UpdateResult{}, err
	}
	if err := tx.Commit().Error; err != nil {
		return UpdateResult{}, err
	}

	event := broker.NoteUpdated
	switch {
	case wasDeleted && !note.IsDeleted:
		event = broker.NoteRestored
	case !wasDeleted && note.IsDeleted:
		event = broker.NoteTrashed
	}
	broker.PublishNoteEvent(event, userID, map[string]interface{}{
		"note_id": note.ID.String(),
		"title":   note.Title,
	})

	return UpdateResult{Note: &note}, nil
}

// RestoreNote moves a note out of the trash back to the active state.
func (s *NoteService) RestoreNote(db *database.Database, userID, id uuid.UUID) (UpdateResult, error) {
	restored := false
	return s.UpdateNote(db, userID, id, models.NoteUpdate{IsDeleted: &restored})
}

// SetArchived archives or unarchives a note. Archiving clears the pin.
func (s *NoteService) SetArchived(db *database.Database, userID, id uuid.UUID, archived bool) (UpdateResult, error) {
	return s.UpdateNote(db, userID, id, models.NoteUpdate{IsArchived: &archived})
}

// SetPinned pins or unpins a note.
func (s *NoteService) SetPinned(db *database.Database, userID, id uuid.UUID, pinned bool) (UpdateResult, error) {
	return s.UpdateNote(db, userID, id, models.NoteUpdate{IsPinned: &pinned})
}

// DeleteNote is the trash/purge transition. The first call on an active
// note moves it to the trash, the second removes it permanently, so calling
// it twice always ends in removal and never an error.
func (s *NoteService) DeleteNote(db *database.Database, userID, id uuid.UUID) (DeleteResult, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return DeleteResult{}, tx.Error
	}

	note, err := s.getOwnedNote(tx, userID, id)
	if err != nil {
		tx.Rollback()
		return DeleteResult{}, err
	}

	if !note.IsDeleted {
		now := time.Now().UTC()
		note.IsDeleted = true
		note.DeletedAt = &now
		note.IsPinned = false
		note.IsArchived = false

		if err := tx.Save(&note).Error; err != nil {
			tx.Rollback()
			return DeleteResult{}, err
		}
		if err := tx.Commit().Error; err != nil {
			return DeleteResult{}, err
		}

		broker.PublishNoteEvent(broker.NoteTrashed, userID, map[string]interface{}{
			"note_id": note.ID.String(),
		})

		return DeleteResult{MovedToTrash: true, Note: &note}, nil
	}

	if err := tx.Delete(&note).Error; err != nil {
		tx.Rollback()
		return DeleteResult{}, err
	}
	if err := tx.Commit().Error; err != nil {
		return DeleteResult{}, err
	}

	broker.PublishNoteEvent(broker.NotePurged, userID, map[string]interface{}{
		"note_id": note.ID.String(),
	})

	return DeleteResult{DeletedForever: true}, nil
}

// bulkApply fans the single-item operation out over the ids concurrently
// and collects per-item outcomes. Best effort, not transactional.
func bulkApply(ids []uuid.UUID, op func(id uuid.UUID) error) []BulkOutcome {
	outcomes := make([]BulkOutcome, len(ids))
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			outcome := BulkOutcome{ID: id, OK: true}
			if err := op(id); err != nil {
				outcome.OK = false
				outcome.Error = err.Error()
			}
			outcomes[i] = outcome
		}(i, id)
	}

	wg.Wait()
	return outcomes
}

func (s *NoteService) TrashMany(db *database.Database, userID uuid.UUID, ids []uuid.UUID) []BulkOutcome {
	return bulkApply(ids, func(id uuid.UUID) error {
		note, err := s.getOwnedNote(db.DB, userID, id)
		if err != nil {
			return err
		}
		if note.IsDeleted {
			return nil // already in trash
		}
		_, err = s.DeleteNote(db, userID, id)
		return err
	})
}

func (s *NoteService) RestoreMany(db *database.Database, userID uuid.UUID, ids []uuid.UUID) []BulkOutcome {
	return bulkApply(ids, func(id uuid.UUID) error {
		_, err := s.RestoreNote(db, userID, id)
		return err
	})
}

func (s *NoteService) PurgeMany(db *database.Database, userID uuid.UUID, ids []uuid.UUID) []BulkOutcome {
	return bulkApply(ids, func(id uuid.UUID) error {
		tx := db.DB.Begin()
		if tx.Error != nil {
			return tx.Error
		}
		note, err := s.getOwnedNote(tx, userID, id)
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Delete(&note).Error; err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit().Error; err != nil {
			return err
		}
		broker.PublishNoteEvent(broker.NotePurged, userID, map[string]interface{}{
			"note_id": note.ID.String(),
		})
		return nil
	})
}

// NewNoteService creates a new instance of NoteService
func NewNoteService() NoteServiceInterface {
	return &NoteService{}
}

var NoteServiceInstance NoteServiceInterface
