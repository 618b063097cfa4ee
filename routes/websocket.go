package routes

import (
	"encoding/json"
	"log"
	"net/http"

	"jotter-notes/jotter/broker"
	"jotter-notes/jotter/config"
	"jotter-notes/jotter/models"
	"jotter-notes/jotter/utils/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RegisterWebSocketRoutes registers the live note-event stream. The token
// is taken from the query string or the Authorization header because
// browser WebSocket clients cannot set headers.
func RegisterWebSocketRoutes(router *gin.Engine, cfg config.Config) {
	router.GET("/api/events", func(c *gin.Context) { StreamNoteEvents(c, cfg) })
}

// StreamNoteEvents forwards the caller's note events from the broker to a
// WebSocket connection until either side goes away.
func StreamNoteEvents(c *gin.Context, cfg config.Config) {
	claims, err := token.ExtractAndValidateToken(c, []byte(cfg.JWTSecret))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	consumer, err := broker.InitConsumer(cfg.NatsURL, broker.NoteEventsWildcard)
	if err != nil {
		log.Printf("Failed to subscribe to note events: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Event stream unavailable"})
		return
	}
	defer consumer.Close()

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket connection: %v", err)
		return
	}
	defer ws.Close()

	// Reader goroutine only notices the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-consumer.GetMessageChannel():
			var message models.StandardMessage
			if err := json.Unmarshal(msg.Data, &message); err != nil {
				log.Printf("Skipping malformed event on %s: %v", msg.Subject, err)
				continue
			}
			if message.UserID != claims.UserID {
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
