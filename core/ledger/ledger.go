// Package ledger is the command and query surface of the fleet-operations
// ledger. It composes the entity store with the scheduling, billing,
// bookability, broker load and verification engines, and reports every
// command to the event bus and the metrics sink.
//
// All writes go through the store's single writer lock, so each command
// either commits completely or leaves state untouched.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/fleetledger/core/billing"
	"github.com/kilianp07/fleetledger/core/bookability"
	"github.com/kilianp07/fleetledger/core/brokerload"
	"github.com/kilianp07/fleetledger/core/events"
	"github.com/kilianp07/fleetledger/core/logger"
	coremetrics "github.com/kilianp07/fleetledger/core/metrics"
	"github.com/kilianp07/fleetledger/core/notify"
	"github.com/kilianp07/fleetledger/core/schedule"
	"github.com/kilianp07/fleetledger/core/store"
	"github.com/kilianp07/fleetledger/core/verification"
	"github.com/kilianp07/fleetledger/internal/eventbus"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

// ErrVerifierNotConfigured is reported as the failure message when no
// verification collaborator was provided.
var ErrVerifierNotConfigured = errors.New("verification collaborator not configured")

// Config holds the engine settings.
type Config struct {
	Billing       billing.Config
	Scheduling    schedule.Config
	VerifyTimeout time.Duration
	NotifyTimeout time.Duration
}

type options struct {
	now          func() time.Time
	newID        func() string
	bus          eventbus.EventBus
	sink         coremetrics.MetricsSink
	notifier     notify.Notifier
	verifier     verification.Verifier
	confirmation func() string
}

// Option configures a Ledger.
type Option func(*options)

// WithClock sets the clock used for timestamps and overdue checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator sets the identifier generator used by the store.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) { o.newID = gen }
}

// WithEventBus publishes ledger events on bus instead of a private one.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(o *options) { o.bus = bus }
}

// WithMetricsSink records command results to sink.
func WithMetricsSink(sink coremetrics.MetricsSink) Option {
	return func(o *options) { o.sink = sink }
}

// WithNotifier delivers carrier and driver notifications through n.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithVerifier sets the authority verification collaborator.
func WithVerifier(v verification.Verifier) Option {
	return func(o *options) { o.verifier = v }
}

// WithConfirmationGenerator overrides broker load confirmation numbers.
func WithConfirmationGenerator(gen func() string) Option {
	return func(o *options) { o.confirmation = gen }
}

// Ledger owns the state and every engine operating on it.
type Ledger struct {
	store    *store.Store
	sched    *schedule.Engine
	billing  *billing.Engine
	policy   *bookability.Policy
	loads    *brokerload.Workflow
	verify   *verification.Service
	notifier *notify.Dispatcher
	bus      eventbus.EventBus
	sink     coremetrics.MetricsSink
	now      func() time.Time
	log      logger.Logger
}

// New builds a Ledger with empty state.
func New(cfg Config, log logger.Logger, opts ...Option) (*Ledger, error) {
	if log == nil {
		return nil, fmt.Errorf("ledger: logger is required")
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.bus == nil {
		o.bus = eventbus.New()
	}
	if o.sink == nil {
		o.sink = coremetrics.NopSink{}
	}
	if o.verifier == nil {
		o.verifier = verification.VerifierFunc(func(context.Context, verification.Request) (verification.Result, error) {
			return verification.Result{}, ErrVerifierNotConfigured
		})
	}

	storeOpts := []store.Option{store.WithClock(o.now)}
	if o.newID != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(o.newID))
	}
	st := store.New(storeOpts...)
	policy := bookability.NewPolicy(o.now)

	sched, err := schedule.NewEngine(st, cfg.Scheduling, log)
	if err != nil {
		return nil, err
	}
	bill, err := billing.NewEngine(st, cfg.Billing, policy, log)
	if err != nil {
		return nil, err
	}
	dispatcher := notify.NewDispatcher(o.notifier, log, cfg.NotifyTimeout)
	var wfOpts []brokerload.Option
	if o.confirmation != nil {
		wfOpts = append(wfOpts, brokerload.WithConfirmationGenerator(o.confirmation))
	}
	loads, err := brokerload.NewWorkflow(st, sched, policy, dispatcher, log, wfOpts...)
	if err != nil {
		return nil, err
	}
	verify, err := verification.NewService(st, o.verifier, cfg.VerifyTimeout, o.now, log)
	if err != nil {
		return nil, err
	}
	return &Ledger{
		store:    st,
		sched:    sched,
		billing:  bill,
		policy:   policy,
		loads:    loads,
		verify:   verify,
		notifier: dispatcher,
		bus:      o.bus,
		sink:     o.sink,
		now:      o.now,
		log:      log,
	}, nil
}

// Events returns the bus ledger events are published on.
func (l *Ledger) Events() eventbus.EventBus { return l.bus }

// Now returns the ledger clock.
func (l *Ledger) Now() time.Time { return l.now() }

// Flush waits for in-flight notifications.
func (l *Ledger) Flush() { l.notifier.Wait() }

func (l *Ledger) publish(ev eventbus.Event) {
	l.bus.Publish(ev)
}

// observe reports a finished command to the metrics sink.
func (l *Ledger) observe(command string, start time.Time, err error) {
	res := coremetrics.CommandResult{
		Command:  command,
		Outcome:  coremetrics.OutcomeOK,
		Duration: time.Since(start),
		Time:     l.now(),
	}
	if err != nil {
		code := pkgerrors.CodeOf(err)
		res.Reason = string(code)
		res.Outcome = coremetrics.OutcomeRejected
		if code == pkgerrors.CodeInternal || code == pkgerrors.CodeDependency {
			res.Outcome = coremetrics.OutcomeError
		}
	}
	if serr := l.sink.RecordCommand(res); serr != nil {
		l.log.Debugf("record %s command: %v", command, serr)
	}
}

func (l *Ledger) bookabilityChanged(ch bookability.Change) {
	if !ch.Changed {
		return
	}
	l.publish(events.BookabilityChanged{
		CarrierID: ch.CarrierID,
		Bookable:  ch.Bookable,
		Overdue:   len(ch.OverdueIDs),
		Time:      l.now(),
	})
	if ch.Bookable {
		l.log.Infof("carrier %s is bookable again", ch.CarrierID)
		return
	}
	l.log.Warnf("carrier %s blocked by %d overdue invoice(s)", ch.CarrierID, len(ch.OverdueIDs))
	l.notifier.Send(notify.Notification{
		Kind:      notify.KindCarrierBlocked,
		CarrierID: ch.CarrierID,
		Subject:   "Account on hold",
		Message:   fmt.Sprintf("%d invoice(s) are past due. New loads cannot be booked until they are paid.", len(ch.OverdueIDs)),
	})
}

func (l *Ledger) scheduleRejected(err error, truckID, source string) {
	vs := schedule.ViolationsOf(err)
	if len(vs) == 0 {
		return
	}
	rules := make([]string, 0, len(vs))
	for _, v := range vs {
		rules = append(rules, v.Rule)
	}
	l.publish(events.ScheduleRejected{TruckID: truckID, Rules: rules, Source: source, Time: l.now()})
}
