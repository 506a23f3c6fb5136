package metrics

import (
	"context"

	"github.com/kilianp07/fleetledger/core/events"
	coremetrics "github.com/kilianp07/fleetledger/core/metrics"
	"github.com/kilianp07/fleetledger/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards ledger
// events to the sink recorders it implements. It stops when the context is
// canceled or the bus is closed; the returned channel is closed then.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				collect(sink, ev)
			}
		}
	}()
	return done
}

func collect(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.LoadBooked:
		if r, ok := sink.(coremetrics.BookingRecorder); ok {
			_ = r.RecordBooking(coremetrics.BookingEvent{
				LoadID:    e.LoadID,
				CarrierID: e.CarrierID,
				Rate:      e.Rate.InexactFloat64(),
				Time:      e.Time,
			})
		}
	case events.ScheduleRejected:
		if r, ok := sink.(coremetrics.RejectionRecorder); ok {
			for _, rule := range e.Rules {
				_ = r.RecordRejection(coremetrics.RejectionEvent{TruckID: e.TruckID, Rule: rule, Source: e.Source, Time: e.Time})
			}
		}
	case events.FeeRecorded:
		if r, ok := sink.(coremetrics.FeeRecorder); ok {
			_ = r.RecordFee(coremetrics.FeeEvent{
				FeeID:     e.FeeID,
				CarrierID: e.CarrierID,
				LoadValue: e.LoadValue.InexactFloat64(),
				Amount:    e.Amount.InexactFloat64(),
				Time:      e.Time,
			})
		}
	case events.InvoiceGenerated:
		if r, ok := sink.(coremetrics.InvoiceRecorder); ok {
			_ = r.RecordInvoice(coremetrics.InvoiceEvent{
				InvoiceID: e.InvoiceID,
				Number:    e.Number,
				CarrierID: e.CarrierID,
				Status:    "Generated",
				Total:     e.Total.InexactFloat64(),
				Time:      e.Time,
			})
		}
	case events.InvoiceStatusChanged:
		if r, ok := sink.(coremetrics.InvoiceRecorder); ok {
			_ = r.RecordInvoice(coremetrics.InvoiceEvent{
				InvoiceID: e.InvoiceID,
				CarrierID: e.CarrierID,
				Status:    e.To.String(),
				Time:      e.Time,
			})
		}
	case events.BookabilityChanged:
		if r, ok := sink.(coremetrics.BookabilityRecorder); ok {
			_ = r.RecordBookability(coremetrics.BookabilityEvent{
				CarrierID: e.CarrierID,
				Bookable:  e.Bookable,
				Overdue:   e.Overdue,
				Time:      e.Time,
			})
		}
	case events.CarrierVerified:
		if r, ok := sink.(coremetrics.VerificationRecorder); ok {
			_ = r.RecordVerification(coremetrics.VerificationEvent{
				CarrierID: e.CarrierID,
				Status:    e.Status.String(),
				Applied:   e.Applied,
				Time:      e.Time,
			})
		}
	}
}
