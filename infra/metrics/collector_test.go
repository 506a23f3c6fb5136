package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetledger/core/events"
	coremetrics "github.com/kilianp07/fleetledger/core/metrics"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/internal/eventbus"
)

type captureSink struct {
	coremetrics.NopSink
	mu         sync.Mutex
	fees       []coremetrics.FeeEvent
	rejections []coremetrics.RejectionEvent
	invoices   []coremetrics.InvoiceEvent
}

func (c *captureSink) RecordFee(ev coremetrics.FeeEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fees = append(c.fees, ev)
	return nil
}

func (c *captureSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejections = append(c.rejections, ev)
	return nil
}

func (c *captureSink) RecordInvoice(ev coremetrics.InvoiceEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invoices = append(c.invoices, ev)
	return nil
}

func TestEventCollectorForwardsEvents(t *testing.T) {
	bus := eventbus.New()
	sink := &captureSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := StartEventCollector(ctx, bus, sink)

	now := time.Now()
	bus.Publish(events.FeeRecorded{FeeID: "f1", CarrierID: "c1", LoadValue: decimal.RequireFromString("1800.50"), Amount: decimal.RequireFromString("180.05"), Time: now})
	bus.Publish(events.ScheduleRejected{TruckID: "t1", Rules: []string{"overlap", "hos"}, Source: "schedule", Time: now})
	bus.Publish(events.InvoiceStatusChanged{InvoiceID: "i1", CarrierID: "c1", From: model.InvoiceSent, To: model.InvoicePaid, Time: now})
	bus.Publish("ignored")
	bus.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after bus close")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.fees, 1)
	assert.Equal(t, 180.05, sink.fees[0].Amount)
	require.Len(t, sink.rejections, 2, "one rejection per violated rule")
	assert.Equal(t, "hos", sink.rejections[1].Rule)
	require.Len(t, sink.invoices, 1)
	assert.Equal(t, "Paid", sink.invoices[0].Status)
}

func TestEventCollectorStopsOnCancel(t *testing.T) {
	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, coremetrics.NopSink{})
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop on cancel")
	}
}
