package broker

import (
	"log"
	"sync"

	"jotter-notes/jotter/models"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

var (
	mu   sync.RWMutex
	conn *nats.Conn
)

// InitProducer connects to NATS. The caller decides whether a failure is
// fatal; the rest of the application keeps working without a broker and
// publishing becomes a no-op.
func InitProducer(natsURL string) error {
	nc, err := nats.Connect(natsURL,
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return err
	}

	mu.Lock()
	conn = nc
	mu.Unlock()

	log.Println("NATS producer initialized")
	return nil
}

// PublishNoteEvent publishes a note event for the given user. When no
// broker connection exists the event is dropped with a log line; the API
// never fails a request over a missing broker.
func PublishNoteEvent(event EventType, userID uuid.UUID, payload map[string]interface{}) {
	mu.RLock()
	nc := conn
	mu.RUnlock()

	if nc == nil {
		return
	}

	message := models.NewStandardMessage(string(event), userID, payload)
	data, err := message.ToJSON()
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event, err)
		return
	}

	if err := nc.Publish(event.Subject(), data); err != nil {
		log.Printf("Failed to publish %s event: %v", event, err)
	}
}

func CloseProducer() {
	mu.Lock()
	defer mu.Unlock()
	if conn != nil {
		conn.Drain()
		conn = nil
	}
}
