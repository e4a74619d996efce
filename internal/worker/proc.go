package worker

import (
	"context"
	"errors"
	"fmt"

	"auth_service/internal/queue"

	"github.com/sirupsen/logrus"
)

const MaxRetries = 3

// ErrUnknownEvent marks events no handler is registered for. They are dropped, not retried.
var ErrUnknownEvent = errors.New("unknown event type")

type action int

const (
	actionAck action = iota
	actionRetry
	actionDrop
)

func (a action) String() string {
	switch a {
	case actionAck:
		return "success"
	case actionRetry:
		return "retry"
	default:
		return "dropped"
	}
}

// EventHandler processes one decoded auth event.
type EventHandler func(ctx context.Context, event queue.Event, workerID int) error

// Handlers maps event types to their handler.
type Handlers map[queue.EventType]EventHandler

// DefaultHandlers records an audit log line for every known auth event.
func DefaultHandlers() Handlers {
	return Handlers{
		queue.EventUserRegistered: processUserRegistered,
		queue.EventUserLoggedIn:   processUserLoggedIn,
	}
}

func (h Handlers) handleEvent(ctx context.Context, event queue.Event, workerID int) error {
	fn, ok := h[event.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event.Type)
	}
	return fn(ctx, event, workerID)
}

// process decodes a message body and decides what to do with the delivery.
func (h Handlers) process(ctx context.Context, body []byte, retryCount int32, workerID int) (queue.Event, action, error) {
	event, err := queue.DecodeEvent(body)
	if err != nil {
		return event, actionDrop, err
	}

	err = h.handleEvent(ctx, event, workerID)
	switch {
	case err == nil:
		return event, actionAck, nil
	case errors.Is(err, ErrUnknownEvent):
		return event, actionDrop, err
	case retryCount >= MaxRetries:
		return event, actionDrop, fmt.Errorf("max retries reached: %w", err)
	default:
		return event, actionRetry, err
	}
}

func processUserRegistered(ctx context.Context, event queue.Event, workerID int) error {
	logrus.WithFields(logrus.Fields{
		"worker_id":   workerID,
		"user_id":     event.UserID,
		"username":    event.Username,
		"email":       event.Email,
		"occurred_at": event.OccurredAt,
	}).Info("User registered")
	return nil
}

func processUserLoggedIn(ctx context.Context, event queue.Event, workerID int) error {
	logrus.WithFields(logrus.Fields{
		"worker_id":   workerID,
		"user_id":     event.UserID,
		"username":    event.Username,
		"occurred_at": event.OccurredAt,
	}).Info("User logged in")
	return nil
}
