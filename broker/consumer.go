package broker

import (
	"log"

	"github.com/nats-io/nats.go"
)

// Message is the broker-agnostic shape handed to consumers.
type Message struct {
	Subject string
	Data    []byte
}

// Consumer wraps a NATS subscription into a channel.
type Consumer struct {
	conn     *nats.Conn
	sub      *nats.Subscription
	messages chan Message
}

// InitConsumer opens a dedicated connection and subscribes to the given
// subject.
func InitConsumer(natsURL, subject string) (*Consumer, error) {
	nc, err := nats.Connect(natsURL, nats.MaxReconnects(-1))
	if err != nil {
		return nil, err
	}

	messages := make(chan Message, 64)
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		select {
		case messages <- Message{Subject: msg.Subject, Data: msg.Data}:
		default:
			log.Printf("Dropping message on %s: consumer channel full", msg.Subject)
		}
	})
	if err != nil {
		nc.Close()
		return nil, err
	}

	return &Consumer{conn: nc, sub: sub, messages: messages}, nil
}

func (c *Consumer) GetMessageChannel() <-chan Message {
	return c.messages
}

func (c *Consumer) Close() {
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
