package routes

import (
	"net/http"

	"jotter-notes/jotter/database"
	"jotter-notes/jotter/services"

	"github.com/gin-gonic/gin"
)

// RegisterTrashRoutes registers trash maintenance endpoints.
func RegisterTrashRoutes(group *gin.RouterGroup, db *database.Database, trashService services.TrashServiceInterface) {
	group.DELETE("/trash", func(c *gin.Context) { EmptyTrash(c, db, trashService) })
}

// EmptyTrash permanently deletes all trashed notes of the caller.
func EmptyTrash(c *gin.Context, db *database.Database, trashService services.TrashServiceInterface) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	count, err := trashService.EmptyTrash(db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to empty trash"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trash emptied successfully", "count": count})
}
