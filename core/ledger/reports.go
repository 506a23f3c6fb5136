package ledger

import (
	"time"

	"github.com/kilianp07/fleetledger/core/report"
	"github.com/kilianp07/fleetledger/core/store"
)

// CarrierSummary reports what the carrier owes at the current instant.
func (l *Ledger) CarrierSummary(carrierID string) (report.CarrierBilling, error) {
	now := l.now()
	return view(l, func(tx *store.ReadTx) (report.CarrierBilling, error) {
		return report.CarrierSummary(tx, carrierID, now)
	})
}

// FleetSummary reports every carrier's billing position.
func (l *Ledger) FleetSummary() ([]report.CarrierBilling, error) {
	now := l.now()
	return view(l, func(tx *store.ReadTx) ([]report.CarrierBilling, error) {
		return report.FleetSummary(tx, now)
	})
}

// TruckUtilisation reports schedule coverage per truck over [from, to).
func (l *Ledger) TruckUtilisation(from, to time.Time) ([]report.TruckUsage, error) {
	return view(l, func(tx *store.ReadTx) ([]report.TruckUsage, error) {
		return report.TruckUtilisation(tx, from, to)
	})
}
