// Package events publishes booking changes to RabbitMQ so other services can
// react without polling the database.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

const QueueBookingEvents = "bookings.events"

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	queue       string
	openChannel func() (Channel, error)
}

var _ schedule.Announcer = (*Publisher)(nil)

// NewPublisher declares the durable queue once and opens a short-lived
// channel per message, so a broken channel never poisons later publishes.
func NewPublisher(conn *amqp.Connection, queue string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		return nil, fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}

	return &Publisher{
		queue: queue,
		openChannel: func() (Channel, error) {
			return conn.Channel()
		},
	}, nil
}

func (p *Publisher) Announce(ctx context.Context, ev schedule.BookingEvent) error {
	pub, err := newPublishing(ev)
	if err != nil {
		return err
	}

	ch, err := p.openChannel()
	if err != nil {
		return fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}
	log.Debug().Str("queue", p.queue).Str("event", ev.Type).Msg("booking event published")
	return nil
}

func newPublishing(ev schedule.BookingEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: marshal event failed: %w", err)
	}
	ts := ev.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		MessageId:    ev.Booking.ID.String(),
		Timestamp:    ts.UTC(),
		Body:         body,
	}, nil
}
