package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/fleetledger/api"
	"github.com/kilianp07/fleetledger/config"
	"github.com/kilianp07/fleetledger/core/ledger"
	coremetrics "github.com/kilianp07/fleetledger/core/metrics"
	"github.com/kilianp07/fleetledger/core/notify"
	"github.com/kilianp07/fleetledger/infra/fmcsa"
	"github.com/kilianp07/fleetledger/infra/logger"
	"github.com/kilianp07/fleetledger/infra/metrics"
	_ "github.com/kilianp07/fleetledger/infra/mqtt" // registers the mqtt notifier
	"github.com/kilianp07/fleetledger/internal/eventbus"
)

// Service wires the ledger to its collaborators and background jobs.
type Service struct {
	Ledger   *ledger.Ledger
	cfg      *config.Config
	bus      eventbus.EventBus
	sink     coremetrics.MetricsSink
	notifier notify.Notifier
	log      logger.Logger
}

// New creates a Service from the configuration. Extra options are applied
// after the configured ones.
func New(cfg *config.Config, opts ...ledger.Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger.SetFormat(cfg.Logging.Format)
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logg := logger.New("service")

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	notifier, err := notify.NewNotifier(cfg.Notify.Module())
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}
	billingCfg, err := cfg.Billing.Engine()
	if err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}

	bus := eventbus.New()
	base := []ledger.Option{
		ledger.WithEventBus(bus),
		ledger.WithMetricsSink(sink),
		ledger.WithNotifier(notifier),
	}
	if cfg.Verification.APIKey != "" {
		base = append(base, ledger.WithVerifier(fmcsa.New(cfg.Verification)))
	}
	l, err := ledger.New(ledger.Config{
		Billing:       billingCfg,
		Scheduling:    cfg.Scheduling,
		VerifyTimeout: time.Duration(cfg.Verification.TimeoutSeconds) * time.Second,
		NotifyTimeout: cfg.Notify.Timeout(),
	}, logger.New("ledger"), append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	return &Service{Ledger: l, cfg: cfg, bus: bus, sink: sink, notifier: notifier, log: logg}, nil
}

// Run starts the background jobs and servers and blocks until the context
// is canceled or one of them fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	done := metrics.StartEventCollector(ctx, s.bus, s.sink)
	g.Go(func() error {
		<-done
		return nil
	})
	g.Go(func() error { return s.runSweep(ctx) })
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		g.Go(func() error { return metrics.StartPromServer(ctx, addr, s.log) })
	}
	if s.cfg.API.Enabled {
		g.Go(func() error { return s.serveAPI(ctx) })
	}
	s.log.Infof("service started")
	return g.Wait()
}

// runSweep persists bookability flips every configured interval.
func (s *Service) runSweep(ctx context.Context) error {
	interval := s.cfg.Bookability.Interval()
	if interval <= 0 {
		s.log.Infof("bookability sweep disabled")
		<-ctx.Done()
		return nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("sweep scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.Sweep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("sweep job: %w", err)
	}
	sched.Start()
	<-ctx.Done()
	return sched.Shutdown()
}

// Sweep recomputes bookability once and logs the carriers that flipped.
func (s *Service) Sweep() {
	changes, err := s.Ledger.RunBookabilitySweep()
	if err != nil {
		s.log.Errorf("bookability sweep: %v", err)
		return
	}
	for _, c := range changes {
		if !c.Changed {
			continue
		}
		s.log.Infof("carrier %s bookable=%t", c.CarrierID, c.Bookable)
	}
}

func (s *Service) serveAPI(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.API.Addr,
		Handler:           api.NewRouter(s.Ledger, logger.New("api")),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warnf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close flushes pending notifications and releases the collaborators.
func (s *Service) Close() error {
	s.Ledger.Flush()
	s.bus.Close()
	var err error
	if c, ok := s.notifier.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	if c, ok := s.sink.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	return err
}
