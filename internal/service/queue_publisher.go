// Package service publishes domain events to RabbitMQ.  Errors are logged
// and returned so callers may ignore them without interrupting the request.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/train-ticket-qr/internal/queue"
)

// TicketPublisher is what the ticket handler needs from the broker.
type TicketPublisher interface {
	PublishTicketSaved(ctx context.Context, event queue.TicketSavedEvent) (string, error)
}

// AMQPPublisher dials the broker for every publish.  Submissions are rare
// enough that a long-lived channel is not worth its reconnect logic.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher for the given connection string.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url}
}

// PublishTicketSaved sends the event to the ticket.saved queue as a
// persistent message and returns the message id.  An empty EventID is
// replaced with a fresh UUID, which also becomes the AMQP MessageId.
func (p *AMQPPublisher) PublishTicketSaved(ctx context.Context, event queue.TicketSavedEvent) (string, error) {
	log := slog.With("component", "rabbitmq")
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Warn("dial failed", "err", err)
		return "", err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("channel open failed", "err", err)
		return "", err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.TicketQueueName, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	); err != nil {
		log.Warn("queue declare failed", "err", err)
		return "", err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Warn("marshal event failed", "err", err)
		return "", err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                    // default exchange
		queue.TicketQueueName, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		pub,
	); err != nil {
		log.Warn("publish failed", "err", err)
		return "", err
	}
	log.Debug("ticket event published", "event_id", event.EventID, "token", event.Token)
	return event.EventID, nil
}

// NopPublisher is used when QUEUE_ENABLED is off.  It still assigns an id
// so responses look the same either way.
type NopPublisher struct{}

// PublishTicketSaved returns the event id without sending anything.
func (NopPublisher) PublishTicketSaved(_ context.Context, event queue.TicketSavedEvent) (string, error) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	return event.EventID, nil
}
