package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker/v2"

	"github.com/jobobdev/place-reminder/module/core/domain"
	"github.com/jobobdev/place-reminder/module/core/internal/repository/publisher"
)

var _ publisher.Notifier = (*NotificationPublisher)(nil)

const (
	ExchangeName = "place_reminder.events"
	QueueName    = "proximity_notifications"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type NotificationPublisher struct {
	ch      channel
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewNotificationPublisher declares the fanout exchange and durable queue.
// After maxFailures consecutive publish errors the breaker opens and Notify
// fails fast until the broker recovers.
func NewNotificationPublisher(conn *amqp.Connection, maxFailures uint32) (*NotificationPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return newNotificationPublisher(ch, maxFailures), nil
}

func newNotificationPublisher(ch channel, maxFailures uint32) *NotificationPublisher {
	if maxFailures == 0 {
		maxFailures = 5
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "rabbitmq-notifications",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
	return &NotificationPublisher{ch: ch, breaker: cb}
}

func (p *NotificationPublisher) Notify(ctx context.Context, n *domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Unix(n.Timestamp, 0),
			Body:        body,
		})
	})
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Close releases the AMQP channel. The connection stays open.
func (p *NotificationPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return fmt.Errorf("close channel: %w", err)
	}
	return nil
}
