package ledger

import (
	"github.com/kilianp07/fleetledger/core/billing"
	"github.com/kilianp07/fleetledger/core/bookability"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
)

// Carriers lists carriers with IsBookable evaluated at the current instant.
func (l *Ledger) Carriers() ([]model.Carrier, error) {
	return view(l, func(tx *store.ReadTx) ([]model.Carrier, error) {
		cs := tx.Carriers()
		for i := range cs {
			cs[i] = l.policy.Project(tx, cs[i])
		}
		return cs, nil
	})
}

// Carrier returns one carrier with IsBookable evaluated at the current instant.
func (l *Ledger) Carrier(id string) (model.Carrier, error) {
	return view(l, func(tx *store.ReadTx) (model.Carrier, error) {
		c, err := tx.Carrier(id)
		if err != nil {
			return model.Carrier{}, err
		}
		return l.policy.Project(tx, c), nil
	})
}

// IsBookable evaluates the carrier's bookability without changing state.
func (l *Ledger) IsBookable(carrierID string) (bool, error) {
	c, err := l.Carrier(carrierID)
	return c.IsBookable, err
}

func (l *Ledger) Trucks() ([]model.Truck, error) {
	return view(l, func(tx *store.ReadTx) ([]model.Truck, error) { return tx.Trucks(), nil })
}

func (l *Ledger) TrucksByCarrier(carrierID string) ([]model.Truck, error) {
	return view(l, func(tx *store.ReadTx) ([]model.Truck, error) { return tx.TrucksByCarrier(carrierID), nil })
}

func (l *Ledger) Drivers() ([]model.Driver, error) {
	return view(l, func(tx *store.ReadTx) ([]model.Driver, error) { return tx.Drivers(), nil })
}

func (l *Ledger) Shippers() ([]model.Shipper, error) {
	return view(l, func(tx *store.ReadTx) ([]model.Shipper, error) { return tx.Shippers(), nil })
}

// ScheduleEntries lists every entry, or only the truck's when truckID is set.
func (l *Ledger) ScheduleEntries(truckID string) ([]model.ScheduleEntry, error) {
	return view(l, func(tx *store.ReadTx) ([]model.ScheduleEntry, error) {
		if truckID != "" {
			return tx.ScheduleEntriesByTruck(truckID), nil
		}
		return tx.ScheduleEntries(), nil
	})
}

func (l *Ledger) ScheduleEntry(id string) (model.ScheduleEntry, error) {
	return view(l, func(tx *store.ReadTx) (model.ScheduleEntry, error) { return tx.ScheduleEntry(id) })
}

func (l *Ledger) BrokerLoads(f store.LoadFilter) ([]model.BrokerLoad, error) {
	return view(l, func(tx *store.ReadTx) ([]model.BrokerLoad, error) { return tx.BrokerLoads(f), nil })
}

func (l *Ledger) BrokerLoad(id string) (model.BrokerLoad, error) {
	return view(l, func(tx *store.ReadTx) (model.BrokerLoad, error) { return tx.BrokerLoad(id) })
}

func (l *Ledger) LoadDocuments(loadID string) ([]model.LoadDocument, error) {
	return view(l, func(tx *store.ReadTx) ([]model.LoadDocument, error) { return tx.LoadDocuments(loadID), nil })
}

func (l *Ledger) CarrierDocuments(carrierID string) ([]model.CarrierDocument, error) {
	return view(l, func(tx *store.ReadTx) ([]model.CarrierDocument, error) { return tx.CarrierDocuments(carrierID), nil })
}

func (l *Ledger) EquipmentPosts(carrierID string) ([]model.AvailableEquipmentPost, error) {
	return view(l, func(tx *store.ReadTx) ([]model.AvailableEquipmentPost, error) { return tx.EquipmentPosts(carrierID), nil })
}

func (l *Ledger) FeeRecords(f store.FeeFilter) ([]model.DispatchFeeRecord, error) {
	return view(l, func(tx *store.ReadTx) ([]model.DispatchFeeRecord, error) { return tx.FeeRecords(f), nil })
}

// PendingFeeIDs lists the carrier's fees that are not invoiced yet.
func (l *Ledger) PendingFeeIDs(carrierID string) ([]string, error) {
	return view(l, func(tx *store.ReadTx) ([]string, error) {
		if _, err := tx.Carrier(carrierID); err != nil {
			return nil, err
		}
		return billing.PendingFeeIDs(tx, carrierID), nil
	})
}

func (l *Ledger) Invoices(f store.InvoiceFilter) ([]model.Invoice, error) {
	return view(l, func(tx *store.ReadTx) ([]model.Invoice, error) { return tx.Invoices(f), nil })
}

func (l *Ledger) Invoice(id string) (model.Invoice, error) {
	return view(l, func(tx *store.ReadTx) (model.Invoice, error) { return tx.Invoice(id) })
}

// OverdueInvoices lists Sent invoices whose due date has fully elapsed.
func (l *Ledger) OverdueInvoices() ([]model.Invoice, error) {
	now := l.now()
	return view(l, func(tx *store.ReadTx) ([]model.Invoice, error) {
		return bookability.Overdue(tx.Invoices(store.InvoiceFilter{Status: model.InvoiceSent}), now), nil
	})
}

// Snapshot runs fn against a consistent view of the whole ledger.
func (l *Ledger) Snapshot(fn func(tx *store.ReadTx) error) error {
	return l.store.View(fn)
}
