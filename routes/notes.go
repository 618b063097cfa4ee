package routes

import (
	"errors"
	"net/http"

	"jotter-notes/jotter/database"
	"jotter-notes/jotter/models"
	"jotter-notes/jotter/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type bulkRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

// RegisterNoteRoutes registers the note lifecycle endpoints on an
// authenticated group.
func RegisterNoteRoutes(group *gin.RouterGroup, db *database.Database, noteService services.NoteServiceInterface) {
	group.GET("/notes", func(c *gin.Context) { GetNotes(c, db, noteService) })
	group.POST("/notes", func(c *gin.Context) { CreateNote(c, db, noteService) })

	group.GET("/notes/:id", func(c *gin.Context) { GetNoteById(c, db, noteService) })
	group.PUT("/notes/:id", func(c *gin.Context) { UpdateNote(c, db, noteService) })
	group.DELETE("/notes/:id", func(c *gin.Context) { DeleteNote(c, db, noteService) })

	group.POST("/notes/bulk/trash", func(c *gin.Context) { TrashMany(c, db, noteService) })
	group.POST("/notes/bulk/restore", func(c *gin.Context) { RestoreMany(c, db, noteService) })
	group.POST("/notes/bulk/purge", func(c *gin.Context) { PurgeMany(c, db, noteService) })
}

// callerID returns the identity resolved by the auth middleware.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	userIDInterface, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	userID, ok := userIDInterface.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}
	return userID, true
}

func noteID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return uuid.Nil, false
	}
	return id, true
}

func respondNoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}

func CreateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var input services.CreateNoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := noteService.CreateNote(db, userID, input)
	if err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func GetNotes(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	onlyDeleted := c.Query("onlyDeleted") == "true"

	notes, err := noteService.GetNotes(db, userID, onlyDeleted)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, notes)
}

func GetNoteById(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := noteID(c)
	if !ok {
		return
	}

	note, err := noteService.GetNoteById(db, userID, id)
	if err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func UpdateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := noteID(c)
	if !ok {
		return
	}

	var update models.NoteUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := noteService.UpdateNote(db, userID, id, update)
	if err != nil {
		respondNoteError(c, err)
		return
	}

	if result.Deleted {
		c.JSON(http.StatusOK, gin.H{"deleted": true, "id": result.ID})
		return
	}
	c.JSON(http.StatusOK, result.Note)
}

func DeleteNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := noteID(c)
	if !ok {
		return
	}

	result, err := noteService.DeleteNote(db, userID, id)
	if err != nil {
		respondNoteError(c, err)
		return
	}

	if result.MovedToTrash {
		c.JSON(http.StatusOK, gin.H{"movedToTrash": true, "note": result.Note})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedForever": true})
}

func TrashMany(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	bulkHandler(c, db, noteService.TrashMany)
}

func RestoreMany(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	bulkHandler(c, db, noteService.RestoreMany)
}

func PurgeMany(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	bulkHandler(c, db, noteService.PurgeMany)
}

func bulkHandler(c *gin.Context, db *database.Database, op func(db *database.Database, userID uuid.UUID, ids []uuid.UUID) []services.BulkOutcome) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var request bulkRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcomes := op(db, userID, request.IDs)
	c.JSON(http.StatusOK, gin.H{"results": outcomes})
}
