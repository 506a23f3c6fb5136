package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetledger/config"
	"github.com/kilianp07/fleetledger/core/factory"
	"github.com/kilianp07/fleetledger/core/ledger"
	"github.com/kilianp07/fleetledger/core/model"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func TestNewRejectsUnknownModules(t *testing.T) {
	cfg := config.Default()
	cfg.Notify.Type = "carrier-pigeon"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestSweepBlocksOverdueCarrier(t *testing.T) {
	clk := &clock{now: time.Date(2025, 7, 21, 8, 0, 0, 0, time.UTC)}
	cfg := config.Default()
	cfg.Notify.Type = "log"
	svc, err := New(cfg, ledger.WithClock(clk.Now))
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	l := svc.Ledger
	s := model.SystemSession
	c, err := l.CreateCarrier(s, model.CarrierInput{Name: "Acme"})
	require.NoError(t, err)
	truck, err := l.CreateTruck(s, model.TruckInput{Name: "T1", LicensePlate: "P1", CarrierID: c.ID})
	require.NoError(t, err)
	e, err := l.ProposeScheduleEntry(s, model.ScheduleDraft{
		TruckID: truck.ID, Title: "Run", Start: clk.Now(), End: clk.Now().Add(4 * time.Hour),
		LoadValue: model.MoneyPtr(model.MustMoney("1000")),
	})
	require.NoError(t, err)
	_, err = l.CompleteScheduleEntry(s, e.ID)
	require.NoError(t, err)
	_, err = l.GenerateInvoiceForPending(s, c.ID)
	require.NoError(t, err)

	clk.Set(time.Date(2025, 7, 24, 9, 0, 0, 0, time.UTC))
	svc.Sweep()
	ok, err := l.IsBookable(c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.API.Enabled = true
	cfg.API.Addr = "127.0.0.1:0"
	cfg.Bookability.SweepIntervalSeconds = 1
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}
