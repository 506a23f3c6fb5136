package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetledger/core/model"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

var fixedNow = time.Date(2025, 7, 21, 9, 0, 0, 0, time.UTC)

func newTestStore() *Store {
	n := 0
	return New(
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
}

type seeded struct {
	carrier model.Carrier
	driver  model.Driver
	truck   model.Truck
}

func seed(t *testing.T, s *Store) seeded {
	t.Helper()
	var out seeded
	err := s.Update(func(tx *Tx) error {
		var err error
		if out.carrier, err = tx.CreateCarrier(model.CarrierInput{Name: "Acme Haul"}); err != nil {
			return err
		}
		if out.driver, err = tx.CreateDriver(model.DriverInput{Name: "Dana", LicenseNumber: "D-1"}); err != nil {
			return err
		}
		out.truck, err = tx.CreateTruck(model.TruckInput{
			Name: "T1", LicensePlate: "ABC-123", CarrierID: out.carrier.ID, DriverID: out.driver.ID,
		})
		return err
	})
	require.NoError(t, err)
	return out
}

func TestCreateCarrierDefaults(t *testing.T) {
	s := newTestStore()
	got := seed(t, s).carrier
	assert.True(t, got.IsBookable)
	assert.Equal(t, model.AuthorityNotVerified, got.AuthorityStatus)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, "id-1", got.ID)
}

func TestCreateTruckValidation(t *testing.T) {
	s := newTestStore()
	err := s.Update(func(tx *Tx) error {
		_, err := tx.CreateTruck(model.TruckInput{Name: "T1"})
		return err
	})
	require.Error(t, err)
	te := pkgerrors.As(err)
	require.NotNil(t, te)
	assert.Equal(t, pkgerrors.CodeValidation, te.Code())
	details, ok := te.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["license_plate"])
	assert.Equal(t, "is required", details["carrier_id"])
}

func TestCreateTruckUnknownCarrier(t *testing.T) {
	s := newTestStore()
	err := s.Update(func(tx *Tx) error {
		_, err := tx.CreateTruck(model.TruckInput{Name: "T1", LicensePlate: "X", CarrierID: "missing"})
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestTruckDefaultsMaintenance(t *testing.T) {
	s := newTestStore()
	assert.Equal(t, model.MaintenanceGood, seed(t, s).truck.MaintenanceStatus)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := newTestStore()
	fx := seed(t, s)
	boom := errors.New("boom")

	err := s.Update(func(tx *Tx) error {
		if _, err := tx.CreateDriver(model.DriverInput{Name: "Eve", LicenseNumber: "E-1"}); err != nil {
			return err
		}
		c, _ := tx.Carrier(fx.carrier.ID)
		c.IsBookable = false
		if err := tx.PutCarrier(c); err != nil {
			return err
		}
		if _, err := tx.DeleteTruck(fx.truck.ID); err != nil {
			return err
		}
		tx.NextInvoiceNumber(2025)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_ = s.View(func(tx *ReadTx) error {
		assert.Len(t, tx.Drivers(), 1)
		c, err := tx.Carrier(fx.carrier.ID)
		require.NoError(t, err)
		assert.True(t, c.IsBookable)
		trucks := tx.Trucks()
		require.Len(t, trucks, 1)
		assert.Equal(t, fx.truck.ID, trucks[0].ID)
		return nil
	})
	_ = s.Update(func(tx *Tx) error {
		assert.Equal(t, "INV-2025-001", tx.NextInvoiceNumber(2025))
		return nil
	})
}

func TestRollbackRestoresOrder(t *testing.T) {
	s := newTestStore()
	var ids []string
	require.NoError(t, s.Update(func(tx *Tx) error {
		for _, name := range []string{"A", "B", "C"} {
			c, err := tx.CreateCarrier(model.CarrierInput{Name: name})
			if err != nil {
				return err
			}
			ids = append(ids, c.ID)
		}
		return nil
	}))
	_ = s.Update(func(tx *Tx) error {
		_, _ = tx.DeleteCarrier(ids[1])
		_, _ = tx.DeleteCarrier(ids[0])
		return errors.New("abort")
	})
	_ = s.View(func(tx *ReadTx) error {
		var got []string
		for _, c := range tx.Carriers() {
			got = append(got, c.Name)
		}
		assert.Equal(t, []string{"A", "B", "C"}, got)
		return nil
	})
}

func TestInvoiceNumbersPerYear(t *testing.T) {
	s := newTestStore()
	_ = s.Update(func(tx *Tx) error {
		assert.Equal(t, "INV-2025-001", tx.NextInvoiceNumber(2025))
		assert.Equal(t, "INV-2025-002", tx.NextInvoiceNumber(2025))
		assert.Equal(t, "INV-2026-001", tx.NextInvoiceNumber(2026))
		return nil
	})
}

func TestInvoiceReadsAreCopies(t *testing.T) {
	s := newTestStore()
	fx := seed(t, s)
	var id string
	require.NoError(t, s.Update(func(tx *Tx) error {
		inv, err := tx.InsertInvoice(model.Invoice{CarrierID: fx.carrier.ID, FeeRecordIDs: []string{"f1"}})
		id = inv.ID
		return err
	}))
	_ = s.View(func(tx *ReadTx) error {
		inv, _ := tx.Invoice(id)
		inv.FeeRecordIDs[0] = "mutated"
		again, _ := tx.Invoice(id)
		assert.Equal(t, "f1", again.FeeRecordIDs[0])
		return nil
	})
}

func TestCreateBrokerLoadChecksDates(t *testing.T) {
	s := newTestStore()
	err := s.Update(func(tx *Tx) error {
		sh, err := tx.CreateShipper(model.ShipperInput{Name: "Shipper"})
		if err != nil {
			return err
		}
		_, err = tx.CreateBrokerLoad(model.BrokerLoadInput{
			ShipperID:          sh.ID,
			OriginAddress:      "Dallas, TX",
			DestinationAddress: "Denver, CO",
			Commodity:          "Steel",
			PickupDate:         fixedNow.Add(24 * time.Hour),
			DeliveryDate:       fixedNow,
			OfferedRate:        model.MustMoney("2000"),
		}, "broker-1")
		return err
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_ = s.View(func(tx *ReadTx) error {
		assert.Empty(t, tx.Shippers())
		return nil
	})
}
