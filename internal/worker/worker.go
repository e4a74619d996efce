package worker

import (
	"context"
	"fmt"
	"time"

	"auth_service/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const retryHeader = "x-retry-count"

type Worker struct {
	ID        int
	QueueName string
	Handlers  Handlers
	Metrics   *observability.Metrics
}

func retryCountOf(headers amqp.Table) int32 {
	if headers == nil {
		return 0
	}
	switch v := headers[retryHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	}
	return 0
}

func republishWithRetry(ctx context.Context, ch *amqp.Channel, msg *amqp.Delivery, retryCount int32) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Copy headers with the incremented retry count
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retryHeader] = retryCount

	return ch.PublishWithContext(
		ctx,
		"",             // exchange
		msg.RoutingKey, // routing key (queue name)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			Type:         msg.Type,
			Timestamp:    msg.Timestamp,
			Body:         msg.Body,
			Headers:      headers,
		},
	)
}

// Run consumes auth events until ctx is cancelled or the delivery channel closes.
func (w *Worker) Run(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d failed to open channel: %w", w.ID, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d failed to set QoS: %w", w.ID, err)
	}

	msgs, err := ch.Consume(
		w.QueueName,
		fmt.Sprintf("auth-worker-%d", w.ID),
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("worker %d failed to start consuming messages: %w", w.ID, err)
	}

	logrus.Infof("Worker %d started", w.ID)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Worker %d stopping", w.ID)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				logrus.Warnf("Worker %d delivery channel closed", w.ID)
				return nil
			}
			w.handleDelivery(ctx, ch, &msg)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, ch *amqp.Channel, msg *amqp.Delivery) {
	w.Metrics.ObserveConsumed(w.QueueName)

	retryCount := retryCountOf(msg.Headers)
	event, act, err := w.Handlers.process(ctx, msg.Body, retryCount, w.ID)

	eventType := string(event.Type)
	if eventType == "" {
		eventType = "unknown"
	}
	entry := logrus.WithFields(logrus.Fields{
		"worker_id": w.ID,
		"event":     eventType,
		"retry":     retryCount,
	})

	switch act {
	case actionAck:
		w.Metrics.ObserveEventProcessed(eventType, act.String())
		msg.Ack(false)
	case actionDrop:
		entry.WithError(err).Error("Dropping auth event")
		w.Metrics.ObserveEventProcessed(eventType, act.String())
		msg.Nack(false, false)
	case actionRetry:
		entry.WithError(err).Warnf("Auth event failed, requeuing (retry %d/%d)", retryCount+1, MaxRetries)
		if err := republishWithRetry(ctx, ch, msg, retryCount+1); err != nil {
			entry.WithError(err).Error("Failed to republish message")
			w.Metrics.ObserveEventProcessed(eventType, "republish_error")
			msg.Nack(false, false)
			return
		}
		w.Metrics.ObservePublished(w.QueueName)
		w.Metrics.ObserveEventProcessed(eventType, act.String())
		msg.Ack(false)
	}
}
