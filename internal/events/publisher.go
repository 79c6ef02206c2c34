package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends events to the broker. Callers treat failures as
// best-effort and never fail a request because of them.
type Publisher interface {
	PublishActivity(ctx context.Context, ev ActivityEvent) error
	PublishPasswordReset(ctx context.Context, ev PasswordResetEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishActivity(context.Context, ActivityEvent) error           { return nil }
func (NopPublisher) PublishPasswordReset(context.Context, PasswordResetEvent) error { return nil }

// AMQPPublisher opens a connection per publish. Console traffic is a handful
// of admin clicks, so no connection is held open between events.
type AMQPPublisher struct {
	URL    string
	Logger *slog.Logger
}

func NewAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPPublisher{URL: url, Logger: logger}
}

func (p *AMQPPublisher) PublishActivity(ctx context.Context, ev ActivityEvent) error {
	if ev.OccurredAt == "" {
		ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	return p.publish(ctx, ActivityQueue, ev)
}

func (p *AMQPPublisher) PublishPasswordReset(ctx context.Context, ev PasswordResetEvent) error {
	if ev.RequestedAt == "" {
		ev.RequestedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return p.publish(ctx, PasswordResetQueue, ev)
}

func (p *AMQPPublisher) publish(ctx context.Context, queue string, event any) error {
	log := p.Logger.With("queue", queue)
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Warn("rabbitmq dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn("rabbitmq channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Warn("rabbitmq queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Warn("rabbitmq publish failed", "error", err)
		return err
	}
	return nil
}
