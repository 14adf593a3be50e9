package queue

import (
	"context"
	"encoding/json"
	"time"

	"account_system/internal/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher sends an event to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, event any) error
}

// RabbitPublisher publishes JSON events to durable RabbitMQ queues. It dials
// per publish; events are rare (password resets, purges).
type RabbitPublisher struct {
	url string
}

// NewRabbitPublisher returns a publisher for the broker at url.
func NewRabbitPublisher(url string) *RabbitPublisher {
	return &RabbitPublisher{url: url}
}

// Publish marshals event and sends it as a persistent message on the default
// exchange with the queue name as routing key.
func (p *RabbitPublisher) Publish(ctx context.Context, queue string, event any) error {
	err := p.publish(ctx, queue, event)
	metrics.EventsPublishedTotal.WithLabelValues(queue, metrics.Status(err)).Inc()
	if err != nil {
		logrus.WithFields(logrus.Fields{"queue": queue, "error": err.Error()}).Error("rabbitmq: publish failed")
	}
	return err
}

func (p *RabbitPublisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// LogPublisher writes events to the log instead of a broker. It is used when
// RABBITMQ_URL is not set.
type LogPublisher struct{}

// Publish logs the event.
func (LogPublisher) Publish(_ context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	metrics.EventsPublishedTotal.WithLabelValues(queue, "logged").Inc()
	logrus.WithFields(logrus.Fields{"queue": queue, "event": string(body)}).Info("Event (no broker configured)")
	return nil
}

// New picks the RabbitMQ publisher when url is set and the log publisher otherwise.
func New(url string) Publisher {
	if url == "" {
		return LogPublisher{}
	}
	return NewRabbitPublisher(url)
}
