package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
)

var now = time.Date(2025, 7, 24, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T) (*store.Store, model.Carrier, model.Truck) {
	t.Helper()
	st := store.New(store.WithClock(func() time.Time { return now }))
	var c model.Carrier
	var tr model.Truck
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		var err error
		if c, err = tx.CreateCarrier(model.CarrierInput{Name: "Acme"}); err != nil {
			return err
		}
		if tr, err = tx.CreateTruck(model.TruckInput{Name: "T1", LicensePlate: "P", CarrierID: c.ID}); err != nil {
			return err
		}
		day := time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)
		for i, amount := range []string{"1000", "2000", "3000"} {
			start := day.Add(time.Duration(i*6) * time.Hour)
			e, err := tx.InsertScheduleEntry(model.ScheduleEntry{TruckID: tr.ID, Title: "run", Start: start, End: start.Add(4 * time.Hour)})
			if err != nil {
				return err
			}
			status := model.FeePending
			if i == 0 {
				status = model.FeeInvoiced
			}
			v := model.MustMoney(amount)
			if _, err := tx.InsertFeeRecord(model.DispatchFeeRecord{
				ScheduleEntryID: e.ID, CarrierID: c.ID, OriginalLoadAmount: v,
				FeeAmount: v.Div(model.MustMoney("10")), Status: status,
			}); err != nil {
				return err
			}
		}
		if _, err := tx.InsertInvoice(model.Invoice{
			CarrierID: c.ID, Status: model.InvoiceSent, TotalAmount: model.MustMoney("100"),
			DueDate: time.Date(2025, 7, 23, 0, 0, 0, 0, time.UTC),
		}); err != nil {
			return err
		}
		_, err = tx.InsertInvoice(model.Invoice{
			CarrierID: c.ID, Status: model.InvoicePaid, TotalAmount: model.MustMoney("40"),
			DueDate: time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC),
		})
		return err
	}))
	return st, c, tr
}

func TestCarrierSummary(t *testing.T) {
	st, c, _ := seed(t)
	require.NoError(t, st.View(func(tx *store.ReadTx) error {
		s, err := CarrierSummary(tx, c.ID, now)
		require.NoError(t, err)
		assert.False(t, s.Bookable)
		assert.Equal(t, 2, s.Invoices)
		assert.Equal(t, "100.00", s.Outstanding.StringFixed(2))
		assert.Equal(t, 1, s.OverdueCount)
		assert.Equal(t, "100.00", s.OverdueAmount.StringFixed(2))
		assert.Equal(t, "40.00", s.Paid.StringFixed(2))
		assert.Equal(t, 2, s.PendingFees)
		assert.Equal(t, "500.00", s.PendingFeeTotal.StringFixed(2))
		assert.Equal(t, 3, s.FeeCount)
		assert.InDelta(t, 200.0, s.FeeMean, 1e-9)
		assert.InDelta(t, 100.0, s.FeeStdDev, 1e-9)
		assert.InDelta(t, 300.0, s.FeeMax, 1e-9)

		_, err = CarrierSummary(tx, "missing", now)
		assert.ErrorIs(t, err, store.ErrNotFound)
		return nil
	}))
}

func TestFleetSummaryOrdersByOutstanding(t *testing.T) {
	st, c, _ := seed(t)
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		_, err := tx.CreateCarrier(model.CarrierInput{Name: "Quiet"})
		return err
	}))
	require.NoError(t, st.View(func(tx *store.ReadTx) error {
		all, err := FleetSummary(tx, now)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, c.ID, all[0].CarrierID)
		assert.True(t, all[1].Bookable)
		assert.Zero(t, all[1].FeeStdDev)
		return nil
	}))
}

func TestTruckUtilisation(t *testing.T) {
	st, _, tr := seed(t)
	day := time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		// overlaps the first run by two hours
		_, err := tx.InsertScheduleEntry(model.ScheduleEntry{TruckID: tr.ID, Title: "partial", Start: day.Add(2 * time.Hour), End: day.Add(5 * time.Hour), IsPartialLoad: true})
		return err
	}))
	require.NoError(t, st.View(func(tx *store.ReadTx) error {
		usage, err := TruckUtilisation(tx, day, day.Add(24*time.Hour))
		require.NoError(t, err)
		require.Len(t, usage, 1)
		u := usage[0]
		assert.Equal(t, 4, u.Entries)
		assert.InDelta(t, 13.0, u.ScheduledHours, 1e-9)
		assert.InDelta(t, 24.0, u.WindowHours, 1e-9)
		assert.InDelta(t, 13.0/24.0, u.Utilisation, 1e-9)

		clipped, err := TruckUtilisation(tx, day.Add(3*time.Hour), day.Add(7*time.Hour))
		require.NoError(t, err)
		assert.InDelta(t, 3.0, clipped[0].ScheduledHours, 1e-9)

		_, err = TruckUtilisation(tx, day, day)
		assert.Error(t, err)
		return nil
	}))
}
