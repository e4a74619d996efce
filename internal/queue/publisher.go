package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"auth_service/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
)

type EventType string

const (
	EventUserRegistered EventType = "user.registered"
	EventUserLoggedIn   EventType = "user.logged_in"
)

// Event is the message body published for every successful registration or login.
type Event struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EncodeEvent renders the message body consumers receive.
func EncodeEvent(event Event) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return body, nil
}

// DecodeEvent parses a message body and rejects events without a type or user id.
func DecodeEvent(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("decode event: %w", err)
	}
	if event.Type == "" || event.UserID == "" {
		return event, errors.New("event is missing type or user id")
	}
	return event, nil
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// RabbitPublisher publishes events to a durable queue through the default exchange.
type RabbitPublisher struct {
	mu        sync.Mutex
	ch        *amqp.Channel
	queueName string
	metrics   *observability.Metrics
}

func NewRabbitPublisher(conn *amqp.Connection, queueName string, metrics *observability.Metrics) (*RabbitPublisher, error) {
	ch, err := CreateChannel(conn)
	if err != nil {
		return nil, err
	}

	if _, err := DeclareQueue(ch, queueName); err != nil {
		ch.Close()
		return nil, err
	}

	return &RabbitPublisher{
		ch:        ch,
		queueName: queueName,
		metrics:   metrics,
	}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, event Event) error {
	body, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(
		ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	p.metrics.ObservePublished(p.queueName)
	return nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}
