package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetledger/app"
	"github.com/kilianp07/fleetledger/config"
	"github.com/kilianp07/fleetledger/core/ledger"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/infra/logger"
	"github.com/kilianp07/fleetledger/pkg/fixture"
)

var (
	cfgPath  string
	seedPath string
)

var rootCmd = &cobra.Command{
	Use:   "fleetledger",
	Short: "Fleet operations ledger service",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (defaults apply when empty)")
	rootCmd.Flags().StringVar(&seedPath, "seed", "", "fixture replayed before serving")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	if seedPath != "" {
		fx, err := fixture.Load(seedPath)
		if err != nil {
			return err
		}
		if _, err := fixture.Replay(svc.Ledger, model.SystemSession, fx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return svc.Run(ctx)
}

// replayFixture builds a service whose clock is pinned to the fixture's
// "now" and replays the fixture into it.
func replayFixture(path string) (*app.Service, fixture.Result, error) {
	fx, err := fixture.Load(path)
	if err != nil {
		return nil, fixture.Result{}, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, fixture.Result{}, err
	}
	var opts []ledger.Option
	if fx.Now != nil {
		now := *fx.Now
		opts = append(opts, ledger.WithClock(func() time.Time { return now }))
	}
	svc, err := app.New(cfg, opts...)
	if err != nil {
		return nil, fixture.Result{}, err
	}
	res, err := fixture.Replay(svc.Ledger, model.SystemSession, fx)
	if err != nil {
		_ = svc.Close()
		return nil, res, err
	}
	return svc, res, nil
}
