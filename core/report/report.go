// Package report derives billing and utilisation summaries from a ledger
// snapshot. Reports never modify state.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetledger/core/bookability"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
)

// CarrierBilling summarises what a carrier owes.
type CarrierBilling struct {
	CarrierID       string          `json:"carrier_id"`
	CarrierName     string          `json:"carrier_name"`
	Bookable        bool            `json:"bookable"`
	Invoices        int             `json:"invoices"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	OverdueCount    int             `json:"overdue_count"`
	OverdueAmount   decimal.Decimal `json:"overdue_amount"`
	Paid            decimal.Decimal `json:"paid"`
	PendingFees     int             `json:"pending_fees"`
	PendingFeeTotal decimal.Decimal `json:"pending_fee_total"`
	FeeCount        int             `json:"fee_count"`
	FeeMean         float64         `json:"fee_mean"`
	FeeStdDev       float64         `json:"fee_stddev"`
	FeeMax          float64         `json:"fee_max"`
}

// CarrierSummary builds the billing summary of one carrier at now.
func CarrierSummary(tx *store.ReadTx, carrierID string, now time.Time) (CarrierBilling, error) {
	c, err := tx.Carrier(carrierID)
	if err != nil {
		return CarrierBilling{}, err
	}
	invoices := tx.Invoices(store.InvoiceFilter{CarrierID: carrierID})
	out := CarrierBilling{
		CarrierID:   c.ID,
		CarrierName: c.Name,
		Bookable:    bookability.IsBookable(invoices, now),
		Invoices:    len(invoices),
	}
	for _, inv := range invoices {
		switch inv.Status {
		case model.InvoiceSent:
			out.Outstanding = out.Outstanding.Add(inv.TotalAmount)
			if inv.IsOverdue(now) {
				out.OverdueCount++
				out.OverdueAmount = out.OverdueAmount.Add(inv.TotalAmount)
			}
		case model.InvoicePaid:
			out.Paid = out.Paid.Add(inv.TotalAmount)
		}
	}

	fees := tx.FeeRecords(store.FeeFilter{CarrierID: carrierID})
	amounts := make([]float64, 0, len(fees))
	for _, f := range fees {
		if f.Status == model.FeePending {
			out.PendingFees++
			out.PendingFeeTotal = out.PendingFeeTotal.Add(f.FeeAmount)
		}
		amounts = append(amounts, f.FeeAmount.InexactFloat64())
	}
	out.FeeCount = len(amounts)
	if len(amounts) > 0 {
		out.FeeMean = stat.Mean(amounts, nil)
		out.FeeMax = floats.Max(amounts)
	}
	if len(amounts) > 1 {
		out.FeeStdDev = stat.StdDev(amounts, nil)
	}
	return out, nil
}

// FleetSummary builds the billing summary of every carrier, most
// outstanding first.
func FleetSummary(tx *store.ReadTx, now time.Time) ([]CarrierBilling, error) {
	carriers := tx.Carriers()
	out := make([]CarrierBilling, 0, len(carriers))
	for _, c := range carriers {
		s, err := CarrierSummary(tx, c.ID, now)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Outstanding.GreaterThan(out[j].Outstanding)
	})
	return out, nil
}

// TruckUsage is how much of a window a truck spent committed.
type TruckUsage struct {
	TruckID        string  `json:"truck_id"`
	TruckName      string  `json:"truck_name"`
	CarrierID      string  `json:"carrier_id"`
	Entries        int     `json:"entries"`
	ScheduledHours float64 `json:"scheduled_hours"`
	WindowHours    float64 `json:"window_hours"`
	Utilisation    float64 `json:"utilisation"`
}

// TruckUtilisation reports, per truck, the share of [from, to) covered by
// schedule entries. Overlapping partial loads count once.
func TruckUtilisation(tx *store.ReadTx, from, to time.Time) ([]TruckUsage, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("report window end %s must be after start %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	window := to.Sub(from).Hours()
	trucks := tx.Trucks()
	out := make([]TruckUsage, 0, len(trucks))
	for _, t := range trucks {
		var spans []span
		for _, e := range tx.ScheduleEntriesByTruck(t.ID) {
			if !e.Overlaps(from, to) {
				continue
			}
			spans = append(spans, span{start: maxTime(e.Start, from), end: minTime(e.End, to)})
		}
		hours := floats.Sum(merge(spans))
		out = append(out, TruckUsage{
			TruckID:        t.ID,
			TruckName:      t.Name,
			CarrierID:      t.CarrierID,
			Entries:        len(spans),
			ScheduledHours: hours,
			WindowHours:    window,
			Utilisation:    hours / window,
		})
	}
	return out, nil
}

type span struct{ start, end time.Time }

// merge unions the spans and returns the length of each merged span in hours.
func merge(spans []span) []float64 {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })
	var hours []float64
	cur := spans[0]
	for _, s := range spans[1:] {
		if !s.start.After(cur.end) {
			cur.end = maxTime(cur.end, s.end)
			continue
		}
		hours = append(hours, cur.end.Sub(cur.start).Hours())
		cur = s
	}
	return append(hours, cur.end.Sub(cur.start).Hours())
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
