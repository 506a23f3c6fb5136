package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/fleetledger/core/metrics"
)

func TestPromSink_RecordCommand(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	for _, outcome := range []string{coremetrics.OutcomeOK, coremetrics.OutcomeOK, coremetrics.OutcomeRejected} {
		if err := sink.RecordCommand(coremetrics.CommandResult{
			Command:  "accept_load",
			Outcome:  outcome,
			Duration: 2 * time.Millisecond,
		}); err != nil {
			t.Fatalf("record error: %v", err)
		}
	}

	expected := `
# HELP ledger_commands_total Ledger commands by name and outcome
# TYPE ledger_commands_total counter
ledger_commands_total{command="accept_load",outcome="ok"} 2
ledger_commands_total{command="accept_load",outcome="rejected"} 1
`
	if err := testutil.CollectAndCompare(sink.commands, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("duration not recorded")
	}
}

func TestPromSink_DomainRecorders(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	_ = sink.RecordFee(coremetrics.FeeEvent{FeeID: "f1", Amount: 150.5})
	_ = sink.RecordFee(coremetrics.FeeEvent{FeeID: "f2", Amount: 49.5})
	_ = sink.RecordRejection(coremetrics.RejectionEvent{Rule: "hos", Source: "schedule"})
	_ = sink.RecordBookability(coremetrics.BookabilityEvent{CarrierID: "c1", Bookable: false})

	if got := testutil.ToFloat64(sink.fees); got != 2 {
		t.Errorf("fees = %v, want 2", got)
	}
	if got := testutil.ToFloat64(sink.feeAmount); got != 200 {
		t.Errorf("fee amount = %v, want 200", got)
	}
	if got := testutil.ToFloat64(sink.rejections.WithLabelValues("hos", "schedule")); got != 1 {
		t.Errorf("hos rejections = %v, want 1", got)
	}

	expected := `
# HELP carrier_bookable 1 when the carrier may be booked, 0 when blocked by overdue invoices
# TYPE carrier_bookable gauge
carrier_bookable{carrier_id="c1"} 0
`
	if err := testutil.CollectAndCompare(sink.bookable, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected bookable metric: %v", err)
	}
	_ = sink.RecordBookability(coremetrics.BookabilityEvent{CarrierID: "c1", Bookable: true})
	if got := testutil.ToFloat64(sink.bookable.WithLabelValues("c1")); got != 1 {
		t.Errorf("bookable gauge = %v, want 1", got)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	_ = first.RecordVerification(coremetrics.VerificationEvent{Status: "Verified Active"})
	if got := testutil.ToFloat64(second.verifications.WithLabelValues("Verified Active")); got != 1 {
		t.Errorf("second sink does not share collectors: %v", got)
	}
}
