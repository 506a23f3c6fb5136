// Package notify defines the outbound notification port used to tell
// carriers and drivers about bookings and billing events. Delivery is
// fire-and-forget: a failed notification never undoes the command that
// produced it.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/fleetledger/core/logger"
)

// ErrUnavailable is returned by notifiers that cannot reach their transport.
var ErrUnavailable = errors.New("notifier unavailable")

// Kind classifies a notification.
type Kind string

const (
	KindLoadBooked     Kind = "load_booked"
	KindLoadCancelled  Kind = "load_cancelled"
	KindInvoiceIssued  Kind = "invoice_issued"
	KindCarrierBlocked Kind = "carrier_blocked"
)

// Notification is a message addressed to a carrier and optionally one of
// its drivers.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	CarrierID string    `json:"carrier_id,omitempty"`
	DriverID  string    `json:"driver_id,omitempty"`
	LoadID    string    `json:"load_id,omitempty"`
	InvoiceID string    `json:"invoice_id,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) error { return nil }

// DefaultTimeout bounds a single delivery attempt made by a Dispatcher.
const DefaultTimeout = 5 * time.Second

// Dispatcher sends notifications asynchronously and logs failures.
type Dispatcher struct {
	notifier Notifier
	log      logger.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher wraps n. A nil notifier drops everything.
func NewDispatcher(n Notifier, log logger.Logger, timeout time.Duration) *Dispatcher {
	if n == nil {
		n = NopNotifier{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{notifier: n, log: log, timeout: timeout}
}

// Send delivers n in the background without blocking the caller.
func (d *Dispatcher) Send(n Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.log.Errorf("notification %s (%s) to carrier %s failed: %v", n.ID, n.Kind, n.CarrierID, err)
			return
		}
		d.log.Debugf("notification %s (%s) delivered", n.ID, n.Kind)
	}()
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
