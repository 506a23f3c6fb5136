package metrics

import "time"

// Command outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// CommandResult describes one ledger command execution.
type CommandResult struct {
	Command  string
	Outcome  string
	Reason   string
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records ledger command results.
type MetricsSink interface {
	RecordCommand(res CommandResult) error
}

// BookingEvent captures an accepted broker load.
type BookingEvent struct {
	LoadID    string
	CarrierID string
	Rate      float64
	Time      time.Time
}

// BookingRecorder records accepted loads.
type BookingRecorder interface {
	RecordBooking(ev BookingEvent) error
}

// RejectionEvent captures a schedule entry refused by the scheduling rules.
type RejectionEvent struct {
	TruckID string
	Rule    string
	Source  string
	Time    time.Time
}

// RejectionRecorder records scheduling rejections, one event per rule.
type RejectionRecorder interface {
	RecordRejection(ev RejectionEvent) error
}

// FeeEvent captures a newly recorded dispatch fee.
type FeeEvent struct {
	FeeID     string
	CarrierID string
	LoadValue float64
	Amount    float64
	Time      time.Time
}

// FeeRecorder records dispatch fees.
type FeeRecorder interface {
	RecordFee(ev FeeEvent) error
}

// InvoiceEvent captures an invoice being issued or changing status.
type InvoiceEvent struct {
	InvoiceID string
	Number    string
	CarrierID string
	Status    string
	Total     float64
	Time      time.Time
}

// InvoiceRecorder records invoice activity.
type InvoiceRecorder interface {
	RecordInvoice(ev InvoiceEvent) error
}

// BookabilityEvent captures a carrier's bookable flag flipping.
type BookabilityEvent struct {
	CarrierID string
	Bookable  bool
	Overdue   int
	Time      time.Time
}

// BookabilityRecorder records bookability transitions.
type BookabilityRecorder interface {
	RecordBookability(ev BookabilityEvent) error
}

// VerificationEvent captures a finished authority verification.
type VerificationEvent struct {
	CarrierID string
	Status    string
	Applied   bool
	Time      time.Time
}

// VerificationRecorder records verification outcomes.
type VerificationRecorder interface {
	RecordVerification(ev VerificationEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordCommand(CommandResult) error           { return nil }
func (NopSink) RecordBooking(BookingEvent) error            { return nil }
func (NopSink) RecordRejection(RejectionEvent) error        { return nil }
func (NopSink) RecordFee(FeeEvent) error                    { return nil }
func (NopSink) RecordInvoice(InvoiceEvent) error            { return nil }
func (NopSink) RecordBookability(BookabilityEvent) error    { return nil }
func (NopSink) RecordVerification(VerificationEvent) error  { return nil }
