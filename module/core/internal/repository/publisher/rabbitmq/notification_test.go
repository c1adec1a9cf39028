package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker/v2"

	"github.com/jobobdev/place-reminder/module/core/domain"
)

type fakeChannel struct {
	err       error
	published []amqp.Publishing
	exchanges []string
	closed    int
	closeErr  error
}

func (f *fakeChannel) Close() error {
	f.closed++
	return f.closeErr
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, _ string, _, _ bool, msg amqp.Publishing) error {
	f.exchanges = append(f.exchanges, exchange)
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func TestNotify_PublishesJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := newNotificationPublisher(ch, 3)

	n := &domain.Notification{
		Title:          "Near your saved place Blue Bottle!",
		Body:           "80.0m away",
		PlaceID:        "id-1",
		DistanceMeters: 80,
		Timestamp:      1715003456,
	}
	if err := p.Notify(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ch.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.published))
	}
	if ch.exchanges[0] != ExchangeName {
		t.Errorf("expected exchange %s, got %s", ExchangeName, ch.exchanges[0])
	}

	msg := ch.published[0]
	if msg.ContentType != "application/json" {
		t.Errorf("unexpected content type %s", msg.ContentType)
	}
	var got domain.Notification
	if err := json.Unmarshal(msg.Body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != *n {
		t.Errorf("expected %+v, got %+v", *n, got)
	}
}

func TestNotify_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newNotificationPublisher(ch, 3)

	for i := 0; i < 3; i++ {
		if err := p.Notify(context.Background(), &domain.Notification{}); err == nil {
			t.Fatalf("attempt %d: expected error", i)
		}
	}
	if len(ch.exchanges) != 3 {
		t.Fatalf("expected 3 publish attempts, got %d", len(ch.exchanges))
	}

	err := p.Notify(context.Background(), &domain.Notification{})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if len(ch.exchanges) != 3 {
		t.Fatal("expected no publish attempt while the breaker is open")
	}
}

func TestClose_ClosesChannel(t *testing.T) {
	ch := &fakeChannel{}
	p := newNotificationPublisher(ch, 3)

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.closed != 1 {
		t.Fatalf("expected channel to be closed once, got %d", ch.closed)
	}

	ch.closeErr = amqp.ErrClosed
	if err := p.Close(); !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("expected wrapped ErrClosed, got %v", err)
	}
}
