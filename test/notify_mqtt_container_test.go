//go:build !no_containers

package test

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetledger/app"
	"github.com/kilianp07/fleetledger/config"
	"github.com/kilianp07/fleetledger/core/ledger"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/notify"
	"github.com/kilianp07/fleetledger/test/util"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func loadConfig(t *testing.T, broker, metricsAddr string) *config.Config {
	t.Helper()
	data, err := os.ReadFile("testdata/config.yaml")
	require.NoError(t, err)
	text := strings.NewReplacer("BROKER", broker, "METRICS_ADDR", metricsAddr).Replace(string(data))
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func TestInvoiceNotificationOverMQTT(t *testing.T) {
	ctx := context.Background()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto: %v", err)
	}
	defer cleanup()

	msgs, unsubscribe, err := util.Subscribe(broker, "fleetledger/carriers/+/notifications")
	require.NoError(t, err)
	defer unsubscribe()

	metricsAddr := freeAddr(t)
	cfg := loadConfig(t, broker, metricsAddr)
	now := time.Date(2025, 7, 21, 8, 0, 0, 0, time.UTC)
	svc, err := app.New(cfg, ledger.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	defer svc.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = svc.Run(runCtx) }()
	metricsURL := "http://" + metricsAddr + "/metrics"
	waitCtx, cancelWait := context.WithTimeout(ctx, util.MetricTimeout)
	defer cancelWait()
	require.NoError(t, util.WaitForMetric(waitCtx, metricsURL, "go_goroutines"))

	l := svc.Ledger
	s := model.SystemSession
	c, err := l.CreateCarrier(s, model.CarrierInput{Name: "Acme"})
	require.NoError(t, err)
	truck, err := l.CreateTruck(s, model.TruckInput{Name: "T1", LicensePlate: "P1", CarrierID: c.ID})
	require.NoError(t, err)
	e, err := l.ProposeScheduleEntry(s, model.ScheduleDraft{
		TruckID: truck.ID, Title: "Run", Start: now, End: now.Add(4 * time.Hour),
		LoadValue: model.MoneyPtr(model.MustMoney("1800.50")),
	})
	require.NoError(t, err)
	_, err = l.CompleteScheduleEntry(s, e.ID)
	require.NoError(t, err)
	inv, err := l.GenerateInvoiceForPending(s, c.ID)
	require.NoError(t, err)
	l.Flush()

	select {
	case m := <-msgs:
		assert.Equal(t, "fleetledger/carriers/"+c.ID+"/notifications", m.Topic())
		var n notify.Notification
		require.NoError(t, json.Unmarshal(m.Payload(), &n))
		assert.Equal(t, notify.KindInvoiceIssued, n.Kind)
		assert.Equal(t, inv.ID, n.InvoiceID)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification received")
	}

	feeCtx, cancelFee := context.WithTimeout(ctx, util.MetricTimeout)
	defer cancelFee()
	require.NoError(t, util.WaitForMetric(feeCtx, metricsURL, "dispatch_fees_total 1"))
}
