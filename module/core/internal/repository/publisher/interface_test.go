package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/jobobdev/place-reminder/module/core/domain"
)

type recordingNotifier struct {
	err   error
	calls []*domain.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n *domain.Notification) error {
	r.calls = append(r.calls, n)
	return r.err
}

func TestFanout_DeliversToAll(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	n := &domain.Notification{Title: "t", Body: "b"}

	if err := (Fanout{a, b}).Notify(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.calls) != 1 || len(b.calls) != 1 {
		t.Fatalf("expected one call each, got %d and %d", len(a.calls), len(b.calls))
	}
}

func TestFanout_ContinuesAfterFailure(t *testing.T) {
	brokerDown := errors.New("broker down")
	a := &recordingNotifier{err: brokerDown}
	b := &recordingNotifier{}

	err := (Fanout{a, b}).Notify(context.Background(), &domain.Notification{})
	if !errors.Is(err, brokerDown) {
		t.Fatalf("expected joined broker error, got %v", err)
	}
	if len(b.calls) != 1 {
		t.Fatal("expected second notifier to still be called")
	}
}

func TestFanout_Empty(t *testing.T) {
	if err := (Fanout{}).Notify(context.Background(), &domain.Notification{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
