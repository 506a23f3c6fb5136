package metrics

import "go.uber.org/multierr"

// MultiSink fans observations out to several sinks. Every sink is tried;
// failures are combined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCommand forwards the result to all sinks.
func (m *MultiSink) RecordCommand(res CommandResult) error {
	var err error
	for _, s := range m.Sinks {
		err = multierr.Append(err, s.RecordCommand(res))
	}
	return err
}

// RecordBooking forwards bookings to sinks that support them.
func (m *MultiSink) RecordBooking(ev BookingEvent) error {
	var err error
	for _, s := range m.Sinks {
		if rec, ok := s.(BookingRecorder); ok {
			err = multierr.Append(err, rec.RecordBooking(ev))
		}
	}
	return err
}

// RecordRejection forwards scheduling rejections.
func (m *MultiSink) RecordRejection(ev RejectionEvent) error {
	var err error
	for _, s := range m.Sinks {
		if rec, ok := s.(RejectionRecorder); ok {
			err = multierr.Append(err, rec.RecordRejection(ev))
		}
	}
	return err
}

// RecordFee forwards fee events.
func (m *MultiSink) RecordFee(ev FeeEvent) error {
	var err error
	for _, s := range m.Sinks {
		if rec, ok := s.(FeeRecorder); ok {
			err = multierr.Append(err, rec.RecordFee(ev))
		}
	}
	return err
}

// RecordInvoice forwards invoice events.
func (m *MultiSink) RecordInvoice(ev InvoiceEvent) error {
	var err error
	for _, s := range m.Sinks {
		if rec, ok := s.(InvoiceRecorder); ok {
			err = multierr.Append(err, rec.RecordInvoice(ev))
		}
	}
	return err
}

// RecordBookability forwards bookability transitions.
func (m *MultiSink) RecordBookability(ev BookabilityEvent) error {
	var err error
	for _, s := range m.Sinks {
		if rec, ok := s.(BookabilityRecorder); ok {
			err = multierr.Append(err, rec.RecordBookability(ev))
		}
	}
	return err
}

// RecordVerification forwards verification outcomes.
func (m *MultiSink) RecordVerification(ev VerificationEvent) error {
	var err error
	for _, s := range m.Sinks {
		if rec, ok := s.(VerificationRecorder); ok {
			err = multierr.Append(err, rec.RecordVerification(ev))
		}
	}
	return err
}
