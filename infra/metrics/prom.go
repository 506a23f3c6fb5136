package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/fleetledger/core/metrics"
)

// PromSink records ledger observations in Prometheus metrics.
type PromSink struct {
	commands      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	rejections    *prometheus.CounterVec
	bookings      prometheus.Counter
	bookedRevenue prometheus.Counter
	fees          prometheus.Counter
	feeAmount     prometheus.Counter
	invoices      *prometheus.CounterVec
	bookable      *prometheus.GaugeVec
	verifications *prometheus.CounterVec
}

// NewPromSink registers ledger metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.commands, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_commands_total",
		Help: "Ledger commands by name and outcome",
	}, []string{"command", "outcome"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_command_duration_seconds",
		Help:    "Time spent executing ledger commands",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})); err != nil {
		return nil, err
	}
	if s.rejections, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_rejections_total",
		Help: "Schedule entries refused by a scheduling rule",
	}, []string{"rule", "source"})); err != nil {
		return nil, err
	}
	if s.bookings, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broker_loads_booked_total",
		Help: "Broker loads accepted onto a truck",
	})); err != nil {
		return nil, err
	}
	if s.bookedRevenue, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broker_loads_booked_rate_total",
		Help: "Sum of offered rates of booked broker loads",
	})); err != nil {
		return nil, err
	}
	if s.fees, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_fees_total",
		Help: "Dispatch fee records created",
	})); err != nil {
		return nil, err
	}
	if s.feeAmount, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_fee_amount_total",
		Help: "Sum of dispatch fee amounts",
	})); err != nil {
		return nil, err
	}
	if s.invoices, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_events_total",
		Help: "Invoices issued or moved to a status",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.bookable, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "carrier_bookable",
		Help: "1 when the carrier may be booked, 0 when blocked by overdue invoices",
	}, []string{"carrier_id"})); err != nil {
		return nil, err
	}
	if s.verifications, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "carrier_verifications_total",
		Help: "Authority verifications by resulting status",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// RecordCommand counts the command and observes its duration.
func (s *PromSink) RecordCommand(res coremetrics.CommandResult) error {
	s.commands.WithLabelValues(res.Command, res.Outcome).Inc()
	s.duration.WithLabelValues(res.Command).Observe(res.Duration.Seconds())
	return nil
}

// RecordBooking counts an accepted load and its rate.
func (s *PromSink) RecordBooking(ev coremetrics.BookingEvent) error {
	s.bookings.Inc()
	if ev.Rate > 0 {
		s.bookedRevenue.Add(ev.Rate)
	}
	return nil
}

// RecordRejection counts a refused schedule entry.
func (s *PromSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	s.rejections.WithLabelValues(ev.Rule, ev.Source).Inc()
	return nil
}

// RecordFee counts a fee record and its amount.
func (s *PromSink) RecordFee(ev coremetrics.FeeEvent) error {
	s.fees.Inc()
	if ev.Amount > 0 {
		s.feeAmount.Add(ev.Amount)
	}
	return nil
}

// RecordInvoice counts invoice activity by status.
func (s *PromSink) RecordInvoice(ev coremetrics.InvoiceEvent) error {
	s.invoices.WithLabelValues(ev.Status).Inc()
	return nil
}

// RecordBookability sets the carrier gauge.
func (s *PromSink) RecordBookability(ev coremetrics.BookabilityEvent) error {
	v := 0.0
	if ev.Bookable {
		v = 1
	}
	s.bookable.WithLabelValues(ev.CarrierID).Set(v)
	return nil
}

// RecordVerification counts a verification outcome.
func (s *PromSink) RecordVerification(ev coremetrics.VerificationEvent) error {
	s.verifications.WithLabelValues(ev.Status).Inc()
	return nil
}
