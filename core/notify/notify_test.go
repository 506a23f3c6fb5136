package notify

import (
	"context"
	"testing"

	"github.com/kilianp07/fleetledger/core/factory"
	"github.com/kilianp07/fleetledger/infra/logger"
)

func TestDispatcherDeliversAsync(t *testing.T) {
	m := NewMockNotifier()
	d := NewDispatcher(m, logger.NopLogger{}, 0)
	d.Send(Notification{Kind: KindLoadBooked, CarrierID: "c1"})
	d.Send(Notification{Kind: KindLoadBooked, CarrierID: "c2"})
	d.Wait()
	msgs := m.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(msgs))
	}
	for _, n := range msgs {
		if n.ID == "" || n.CreatedAt.IsZero() {
			t.Fatalf("id and timestamp should be set: %+v", n)
		}
	}
}

func TestDispatcherSwallowsFailures(t *testing.T) {
	m := NewMockNotifier()
	m.FailIDs["c1"] = true
	d := NewDispatcher(m, logger.NopLogger{}, 0)
	d.Send(Notification{Kind: KindLoadBooked, CarrierID: "c1"})
	d.Wait()
	if m.Attempts != 1 || len(m.Messages()) != 0 {
		t.Fatalf("unexpected state attempts=%d sent=%d", m.Attempts, len(m.Messages()))
	}
}

func TestNilNotifierIsNop(t *testing.T) {
	d := NewDispatcher(nil, logger.NopLogger{}, 0)
	d.Send(Notification{Kind: KindInvoiceIssued})
	d.Wait()
}

func TestNewNotifierFromConfig(t *testing.T) {
	n, err := NewNotifier(factory.ModuleConfig{})
	if err != nil {
		t.Fatalf("default notifier: %v", err)
	}
	if _, ok := n.(NopNotifier); !ok {
		t.Fatalf("expected NopNotifier, got %T", n)
	}
	n, err = NewNotifier(factory.ModuleConfig{Type: "log", Conf: map[string]any{"component": "notify-test"}})
	if err != nil {
		t.Fatalf("log notifier: %v", err)
	}
	if err := n.Notify(context.Background(), Notification{Kind: KindInvoiceIssued, CarrierID: "c1"}); err != nil {
		t.Fatalf("log notify: %v", err)
	}
	if _, err := NewNotifier(factory.ModuleConfig{Type: "pager"}); err == nil {
		t.Fatal("expected error for unknown notifier type")
	}
}
