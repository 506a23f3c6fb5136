package metrics

import "github.com/kilianp07/fleetledger/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusAddr is where the /metrics endpoint listens; empty disables it.
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}
