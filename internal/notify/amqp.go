package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jjenkins/courtwatch/internal/model"
)

// RoutingKeyNotification is the routing key of published notifications
const RoutingKeyNotification = "courtwatch.notification"

// Notification is the JSON body published to the exchange
type Notification struct {
	RecipientID string    `json:"recipient_id"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sent_at"`
}

// AMQPMessenger publishes notifications to a topic exchange for a downstream sender
type AMQPMessenger struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPMessenger dials the broker and declares the exchange. Failures wrap model.ErrSetup.
func NewAMQPMessenger(url, exchange string) (*AMQPMessenger, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial rabbitmq: %w", model.ErrSetup, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %w", model.ErrSetup, err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare exchange: %w", model.ErrSetup, err)
	}
	return &AMQPMessenger{conn: conn, ch: ch, exchange: exchange}, nil
}

func (a *AMQPMessenger) Send(ctx context.Context, recipientID, text string) error {
	body, err := json.Marshal(Notification{RecipientID: recipientID, Text: text, SentAt: time.Now()})
	if err != nil {
		return fmt.Errorf("%w: encode notification: %w", model.ErrDelivery, err)
	}
	err = a.ch.PublishWithContext(ctx, a.exchange, RoutingKeyNotification, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: publish to %s: %w", model.ErrDelivery, a.exchange, err)
	}
	return nil
}

// Close releases the channel and connection
func (a *AMQPMessenger) Close() error {
	if a.ch != nil {
		_ = a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
