package services

import (
	"log"
	"sync"
	"time"

	"jotter-notes/jotter/broker"
	"jotter-notes/jotter/database"
	"jotter-notes/jotter/models"

	"github.com/google/uuid"
)

type TrashServiceInterface interface {
	Sweep(db *database.Database) (int64, error)
	EmptyTrash(db *database.Database, userID uuid.UUID) (int64, error)
	Start(db *database.Database, interval time.Duration)
	Stop()
}

type TrashService struct {
	retention time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewTrashService(retentionDays int) *TrashService {
	return &TrashService{
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		stop:      make(chan struct{}),
	}
}

// Sweep permanently removes every note trashed longer ago than the
// retention window. A single conditional DELETE keeps it safe to run
// concurrently with itself: rows purged by another sweep are simply no
// longer matched.
func (s *TrashService) Sweep(db *database.Database) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.retention)

	result := db.DB.
		Where("is_deleted = ? AND deleted_at <= ?", true, cutoff).
		Delete(&models.Note{})
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Trash sweep removed %d expired notes", result.RowsAffected)
	}

	return result.RowsAffected, nil
}

// EmptyTrash permanently removes all of a user's trashed notes.
func (s *TrashService) EmptyTrash(db *database.Database, userID uuid.UUID) (int64, error) {
	result := db.DB.
		Where("user_id = ? AND is_deleted = ?", userID, true).
		Delete(&models.Note{})
	if result.Error != nil {
		return 0, result.Error
	}

	broker.PublishNoteEvent(broker.TrashEmptied, userID, map[string]interface{}{
		"count": result.RowsAffected,
	})

	return result.RowsAffected, nil
}

// Start runs the sweep on a fixed interval until Stop is called. Sweep
// failures are logged and retried on the next tick; they never reach the
// host process.
func (s *TrashService) Start(db *database.Database, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := s.Sweep(db); err != nil {
					log.Printf("Trash sweep failed: %v", err)
				}
			case <-s.stop:
				return
			}
		}
	}()
	log.Println("Trash janitor started")
}

func (s *TrashService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		log.Println("Trash janitor stopped")
	})
}

var TrashServiceInstance TrashServiceInterface
