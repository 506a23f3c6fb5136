package ledger

import (
	"context"
	"time"

	"github.com/kilianp07/fleetledger/core/events"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
	"github.com/kilianp07/fleetledger/core/verification"
)

// update runs fn in a write transaction and records the command.
func update[T any](l *Ledger, command string, fn func(tx *store.Tx) (T, error)) (T, error) {
	start := time.Now()
	var out T
	err := l.store.Update(func(tx *store.Tx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	l.observe(command, start, err)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// view runs fn against a consistent snapshot.
func view[T any](l *Ledger, fn func(tx *store.ReadTx) (T, error)) (T, error) {
	var out T
	err := l.store.View(func(tx *store.ReadTx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	return out, err
}

// CreateCarrier registers a carrier. It starts bookable and unverified.
func (l *Ledger) CreateCarrier(s model.Session, in model.CarrierInput) (model.Carrier, error) {
	c, err := update(l, "create_carrier", func(tx *store.Tx) (model.Carrier, error) {
		return tx.CreateCarrier(in)
	})
	if err == nil {
		l.log.Infof("carrier %s (%s) created by %s", c.ID, c.Name, s.Actor())
	}
	return c, err
}

// UpdateCarrier replaces a carrier's editable fields.
func (l *Ledger) UpdateCarrier(s model.Session, id string, in model.CarrierInput) (model.Carrier, error) {
	return update(l, "update_carrier", func(tx *store.Tx) (model.Carrier, error) {
		return tx.UpdateCarrier(id, in)
	})
}

// DeleteCarrier removes a carrier with its trucks, their schedule entries,
// documents, fees, invoices and equipment posts.
func (l *Ledger) DeleteCarrier(s model.Session, id string) (store.Cascade, error) {
	cascade, err := update(l, "delete_carrier", func(tx *store.Tx) (store.Cascade, error) {
		return tx.DeleteCarrier(id)
	})
	if err == nil {
		l.log.Infof("carrier %s deleted by %s: %d trucks, %d invoices removed", id, s.Actor(), len(cascade.Trucks), len(cascade.Invoices))
	}
	return cascade, err
}

// CreateTruck registers a truck for an existing carrier.
func (l *Ledger) CreateTruck(s model.Session, in model.TruckInput) (model.Truck, error) {
	return update(l, "create_truck", func(tx *store.Tx) (model.Truck, error) {
		return tx.CreateTruck(in)
	})
}

// UpdateTruck replaces a truck's fields.
func (l *Ledger) UpdateTruck(s model.Session, id string, in model.TruckInput) (model.Truck, error) {
	return update(l, "update_truck", func(tx *store.Tx) (model.Truck, error) {
		return tx.UpdateTruck(id, in)
	})
}

// DeleteTruck removes a truck and its schedule entries.
func (l *Ledger) DeleteTruck(s model.Session, id string) (store.Cascade, error) {
	return update(l, "delete_truck", func(tx *store.Tx) (store.Cascade, error) {
		return tx.DeleteTruck(id)
	})
}

// CreateDriver registers a driver.
func (l *Ledger) CreateDriver(s model.Session, in model.DriverInput) (model.Driver, error) {
	return update(l, "create_driver", func(tx *store.Tx) (model.Driver, error) {
		return tx.CreateDriver(in)
	})
}

// UpdateDriver replaces a driver's fields.
func (l *Ledger) UpdateDriver(s model.Session, id string, in model.DriverInput) (model.Driver, error) {
	return update(l, "update_driver", func(tx *store.Tx) (model.Driver, error) {
		return tx.UpdateDriver(id, in)
	})
}

// DeleteDriver removes a driver and clears every reference to it.
func (l *Ledger) DeleteDriver(s model.Session, id string) (store.Cascade, error) {
	return update(l, "delete_driver", func(tx *store.Tx) (store.Cascade, error) {
		return tx.DeleteDriver(id)
	})
}

// CreateShipper registers a shipper.
func (l *Ledger) CreateShipper(s model.Session, in model.ShipperInput) (model.Shipper, error) {
	return update(l, "create_shipper", func(tx *store.Tx) (model.Shipper, error) {
		return tx.CreateShipper(in)
	})
}

// AddCarrierDocument attaches a compliance document to a carrier.
func (l *Ledger) AddCarrierDocument(s model.Session, in model.CarrierDocumentInput) (model.CarrierDocument, error) {
	return update(l, "add_carrier_document", func(tx *store.Tx) (model.CarrierDocument, error) {
		return tx.CreateCarrierDocument(in)
	})
}

// PostEquipment advertises available capacity for a carrier.
func (l *Ledger) PostEquipment(s model.Session, in model.EquipmentPostInput) (model.AvailableEquipmentPost, error) {
	return update(l, "post_equipment", func(tx *store.Tx) (model.AvailableEquipmentPost, error) {
		return tx.CreateEquipmentPost(in)
	})
}

// VerifyCarrier asks the verification collaborator about the carrier's
// operating authority and records the result. The write lock is not held
// while the collaborator is called.
func (l *Ledger) VerifyCarrier(ctx context.Context, s model.Session, carrierID string) (verification.Outcome, error) {
	start := time.Now()
	out, err := l.verify.VerifyCarrier(ctx, carrierID)
	l.observe("verify_carrier", start, err)
	if err != nil {
		return verification.Outcome{}, err
	}
	l.publish(events.CarrierVerified{
		CarrierID: carrierID,
		Status:    out.Result.Status,
		Applied:   out.Applied,
		Time:      l.now(),
	})
	return out, nil
}

// DeleteShipper removes a shipper. Loads keep the stale shipper id.
func (l *Ledger) DeleteShipper(s model.Session, id string) error {
	_, err := update(l, "delete_shipper", func(tx *store.Tx) (struct{}, error) {
		return struct{}{}, tx.DeleteShipper(id)
	})
	return err
}
