package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/fleetledger/core/metrics"
	"github.com/kilianp07/fleetledger/infra/logger"
)

// InfluxConfig holds the InfluxDB v2 connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes ledger observations to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCommand writes one point per command execution.
func (s *InfluxSink) RecordCommand(res coremetrics.CommandResult) error {
	p := write.NewPointWithMeasurement("ledger_command").
		AddTag("command", res.Command).
		AddTag("outcome", res.Outcome).
		AddField("duration_ms", round3(res.Duration.Seconds()*1000))
	if res.Reason != "" {
		p = p.AddField("reason", res.Reason)
	}
	return s.write(p.SetTime(res.Time))
}

// RecordBooking writes an accepted load.
func (s *InfluxSink) RecordBooking(ev coremetrics.BookingEvent) error {
	p := write.NewPointWithMeasurement("load_booked").
		AddTag("carrier_id", ev.CarrierID).
		AddTag("load_id", ev.LoadID).
		AddField("rate", round3(ev.Rate)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordRejection writes a refused schedule entry.
func (s *InfluxSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	p := write.NewPointWithMeasurement("schedule_rejection").
		AddTag("truck_id", ev.TruckID).
		AddTag("rule", ev.Rule).
		AddTag("source", ev.Source).
		AddField("count", 1).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordFee writes a dispatch fee record.
func (s *InfluxSink) RecordFee(ev coremetrics.FeeEvent) error {
	p := write.NewPointWithMeasurement("dispatch_fee").
		AddTag("carrier_id", ev.CarrierID).
		AddTag("fee_id", ev.FeeID).
		AddField("load_value", round3(ev.LoadValue)).
		AddField("amount", round3(ev.Amount)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordInvoice writes invoice activity.
func (s *InfluxSink) RecordInvoice(ev coremetrics.InvoiceEvent) error {
	p := write.NewPointWithMeasurement("invoice_event").
		AddTag("carrier_id", ev.CarrierID).
		AddTag("invoice_number", ev.Number).
		AddTag("status", ev.Status).
		AddField("total", round3(ev.Total)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordBookability writes a bookability transition.
func (s *InfluxSink) RecordBookability(ev coremetrics.BookabilityEvent) error {
	p := write.NewPointWithMeasurement("bookability_change").
		AddTag("carrier_id", ev.CarrierID).
		AddTag("bookable", strconv.FormatBool(ev.Bookable)).
		AddField("overdue_invoices", ev.Overdue).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordVerification writes a verification outcome.
func (s *InfluxSink) RecordVerification(ev coremetrics.VerificationEvent) error {
	p := write.NewPointWithMeasurement("carrier_verification").
		AddTag("carrier_id", ev.CarrierID).
		AddTag("status", ev.Status).
		AddField("applied", ev.Applied).
		SetTime(ev.Time)
	return s.write(p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
