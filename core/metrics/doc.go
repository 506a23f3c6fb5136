// Package metrics defines the sinks ledger observations are recorded to.
// Every command reports a CommandResult; sinks that also implement one of
// the optional recorder interfaces receive the matching domain
// observations. Sinks such as the Prometheus and InfluxDB ones in
// infra/metrics can be combined with NewMultiSink, and NewMetricsSink
// returns a MultiSink automatically when several sinks are configured.
package metrics
