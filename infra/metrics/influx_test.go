package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/fleetledger/core/metrics"
)

type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		l.mu.Lock()
		l.lines = append(l.lines, strings.TrimSpace(string(data)))
		l.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (l *lineRecorder) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func lineOf(p *write.Point) string {
	return strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
}

func TestInfluxSink_RecordCommand(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	res := coremetrics.CommandResult{
		Command:  "generate_invoice",
		Outcome:  coremetrics.OutcomeRejected,
		Reason:   "CONFLICT",
		Duration: 1500 * time.Microsecond,
		Time:     now,
	}
	if err := sink.RecordCommand(res); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("ledger_command").
		AddTag("command", "generate_invoice").
		AddTag("outcome", "rejected").
		AddField("duration_ms", 1.5).
		AddField("reason", "CONFLICT").
		SetTime(now)
	if got := rec.get(); len(got) != 1 || got[0] != lineOf(p) {
		t.Errorf("unexpected body: %#v", got)
	}
}

func TestInfluxSink_RecordFee(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	if err := sink.RecordFee(coremetrics.FeeEvent{FeeID: "f1", CarrierID: "c1", LoadValue: 1800.5, Amount: 180.05, Time: now}); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("dispatch_fee").
		AddTag("carrier_id", "c1").
		AddTag("fee_id", "f1").
		AddField("load_value", 1800.5).
		AddField("amount", 180.05).
		SetTime(now)
	if got := rec.get(); len(got) != 1 || got[0] != lineOf(p) {
		t.Errorf("bodies: %#v", got)
	}
}

func TestInfluxSink_RecordBookability(t *testing.T) {
	rec := &lineRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	if err := sink.RecordBookability(coremetrics.BookabilityEvent{CarrierID: "c1", Bookable: false, Overdue: 2, Time: now}); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("bookability_change").
		AddTag("carrier_id", "c1").
		AddTag("bookable", "false").
		AddField("overdue_invoices", 2).
		SetTime(now)
	if got := rec.get(); len(got) != 1 || got[0] != lineOf(p) {
		t.Errorf("bodies: %#v", got)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{
		URL:    srv.URL + "/api/v2/write",
		Token:  "tok",
		Org:    "org",
		Bucket: "bucket",
	})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
