package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	commands int
	fees     int
	err      error
}

func (r *recordSink) RecordCommand(CommandResult) error {
	r.commands++
	return r.err
}

func (r *recordSink) RecordFee(FeeEvent) error {
	r.fees++
	return nil
}

// commandOnly implements no optional recorder.
type commandOnly struct{ n int }

func (c *commandOnly) RecordCommand(CommandResult) error {
	c.n++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &commandOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordCommand(CommandResult{Command: "accept_load", Outcome: OutcomeOK}); err != nil {
		t.Fatalf("record command: %v", err)
	}
	if err := m.RecordFee(FeeEvent{FeeID: "f1"}); err != nil {
		t.Fatalf("record fee: %v", err)
	}
	if s1.commands != 1 || s2.n != 1 {
		t.Fatalf("commands not forwarded")
	}
	if s1.fees != 1 {
		t.Fatalf("fee not forwarded")
	}
}

func TestMultiSinkTriesEverySink(t *testing.T) {
	failing := &recordSink{err: errors.New("influx down")}
	other := &recordSink{}
	err := NewMultiSink(failing, other).RecordCommand(CommandResult{Command: "generate_invoice"})
	if err == nil {
		t.Fatal("expected error from failing sink")
	}
	if other.commands != 1 {
		t.Fatalf("second sink skipped after failure")
	}
}
