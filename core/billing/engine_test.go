package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetledger/core/bookability"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
	"github.com/kilianp07/fleetledger/infra/logger"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

var admin = model.Session{ActorID: "ops-1", Role: model.RoleAdmin}

type fixture struct {
	eng     *Engine
	st      *store.Store
	now     *time.Time
	carrier string
	entries []string
}

// newFixture seeds one carrier, truck and n schedule entries.
func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	now := time.Date(2025, 7, 24, 15, 0, 0, 0, time.UTC) // Thursday
	f := &fixture{now: &now}
	clock := func() time.Time { return *f.now }
	f.st = store.New(store.WithClock(clock))
	eng, err := NewEngine(f.st, Config{}, bookability.NewPolicy(clock), logger.NopLogger{})
	require.NoError(t, err)
	f.eng = eng
	require.NoError(t, f.st.Update(func(tx *store.Tx) error {
		c, err := tx.CreateCarrier(model.CarrierInput{Name: "Acme"})
		if err != nil {
			return err
		}
		f.carrier = c.ID
		tr, err := tx.CreateTruck(model.TruckInput{Name: "T", LicensePlate: "P", CarrierID: c.ID})
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			start := now.Add(time.Duration(i*10) * time.Hour)
			e, err := tx.InsertScheduleEntry(model.ScheduleEntry{TruckID: tr.ID, Title: "Run", Start: start, End: start.Add(time.Hour)})
			if err != nil {
				return err
			}
			f.entries = append(f.entries, e.ID)
		}
		return nil
	}))
	return f
}

func (f *fixture) fee(t *testing.T, i int, amount string) model.DispatchFeeRecord {
	t.Helper()
	r, err := f.eng.CreateFeeRecord(f.entries[i], f.carrier, model.MustMoney(amount))
	require.NoError(t, err)
	return r
}

func (f *fixture) invoice(t *testing.T, ids ...string) InvoiceResult {
	t.Helper()
	var res InvoiceResult
	require.NoError(t, f.st.Update(func(tx *store.Tx) error {
		var err error
		res, err = f.eng.GenerateInvoiceTx(tx, admin, f.carrier, ids)
		return err
	}))
	return res
}

func TestFeeAmount(t *testing.T) {
	f := newFixture(t, 1)
	r := f.fee(t, 0, "1800.50")
	assert.Equal(t, "180.05", r.FeeAmount.StringFixed(2))
	assert.Equal(t, "1800.50", r.OriginalLoadAmount.StringFixed(2))
	assert.Equal(t, model.FeePending, r.Status)
}

func TestFeeRounding(t *testing.T) {
	f := newFixture(t, 0)
	cases := map[string]string{
		"1800.50": "180.05",
		"999.95":  "100.00",
		"0.04":    "0.00",
		"123.45":  "12.35",
	}
	for in, want := range cases {
		assert.Equal(t, want, f.eng.FeeFor(decimal.RequireFromString(in)).StringFixed(2), in)
	}
}

func TestCreateFeeRecordGuards(t *testing.T) {
	f := newFixture(t, 1)
	_, err := f.eng.CreateFeeRecord(f.entries[0], f.carrier, decimal.Zero)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	f.fee(t, 0, "100")
	_, err = f.eng.CreateFeeRecord(f.entries[0], f.carrier, model.MustMoney("100"))
	assert.ErrorIs(t, err, ErrDuplicateFee)

	_, err = f.eng.CreateFeeRecord("missing", f.carrier, model.MustMoney("100"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDuplicateGuardHoldsAfterInvoicing(t *testing.T) {
	f := newFixture(t, 1)
	r := f.fee(t, 0, "100")
	f.invoice(t, r.ID)
	_, err := f.eng.CreateFeeRecord(f.entries[0], f.carrier, model.MustMoney("100"))
	assert.ErrorIs(t, err, ErrDuplicateFee)
}

func TestDueDateIsWednesday(t *testing.T) {
	f := newFixture(t, 0)
	want := time.Date(2025, 7, 23, 0, 0, 0, 0, time.UTC)
	for d := 21; d <= 27; d++ {
		got := f.eng.DueDate(time.Date(2025, 7, d, 12, 0, 0, 0, time.UTC))
		assert.True(t, got.Equal(want), "day %d: got %s", d, got)
	}
	next := f.eng.DueDate(time.Date(2025, 7, 28, 0, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Wednesday, next.Weekday())
	assert.Equal(t, 30, next.Day())
}

func TestGenerateInvoice(t *testing.T) {
	f := newFixture(t, 2)
	r := f.fee(t, 0, "1800.50")
	other := f.fee(t, 1, "500")

	res := f.invoice(t, r.ID)
	inv := res.Invoice
	assert.Equal(t, "INV-2025-001", inv.InvoiceNumber)
	assert.Equal(t, model.InvoiceSent, inv.Status)
	assert.Equal(t, "180.05", inv.TotalAmount.StringFixed(2))
	assert.Equal(t, time.Date(2025, 7, 23, 0, 0, 0, 0, time.UTC), inv.DueDate)
	assert.Equal(t, []string{r.ID}, inv.FeeRecordIDs)
	assert.Equal(t, "ops-1", inv.GeneratedBy)

	_ = f.st.View(func(tx *store.ReadTx) error {
		got, _ := tx.FeeRecord(r.ID)
		assert.Equal(t, model.FeeInvoiced, got.Status)
		assert.Equal(t, inv.ID, got.InvoiceID)
		untouched, _ := tx.FeeRecord(other.ID)
		assert.Equal(t, model.FeePending, untouched.Status)
		return nil
	})

	second := f.invoice(t, other.ID)
	assert.Equal(t, "INV-2025-002", second.Invoice.InvoiceNumber)
}

func TestGenerateInvoiceNoEligibleFees(t *testing.T) {
	f := newFixture(t, 1)
	r := f.fee(t, 0, "100")
	f.invoice(t, r.ID)

	err := f.st.Update(func(tx *store.Tx) error {
		_, err := f.eng.GenerateInvoiceTx(tx, admin, f.carrier, []string{r.ID, "unknown"})
		return err
	})
	assert.ErrorIs(t, err, ErrNoEligibleFees)
	_ = f.st.View(func(tx *store.ReadTx) error {
		assert.Len(t, tx.Invoices(store.InvoiceFilter{}), 1)
		return nil
	})
}

func TestOverdueInvoiceBlocksCarrier(t *testing.T) {
	f := newFixture(t, 1)
	*f.now = time.Date(2025, 7, 21, 10, 0, 0, 0, time.UTC) // Monday
	r := f.fee(t, 0, "100")
	res := f.invoice(t, r.ID)
	assert.True(t, res.Bookability.Bookable)
	assert.False(t, res.Bookability.Changed)

	*f.now = time.Date(2025, 7, 23, 23, 59, 0, 0, time.UTC)
	require.NoError(t, f.st.Update(func(tx *store.Tx) error {
		changes, err := f.eng.policy.RecomputeAll(tx)
		assert.Empty(t, changes, "not overdue during the due date")
		return err
	}))

	*f.now = time.Date(2025, 7, 24, 0, 0, 1, 0, time.UTC)
	require.NoError(t, f.st.Update(func(tx *store.Tx) error {
		changes, err := f.eng.policy.RecomputeAll(tx)
		require.Len(t, changes, 1)
		assert.False(t, changes[0].Bookable)
		return err
	}))

	var paid InvoiceResult
	require.NoError(t, f.st.Update(func(tx *store.Tx) error {
		var err error
		paid, err = f.eng.SetInvoiceStatusTx(tx, res.Invoice.ID, model.InvoicePaid)
		return err
	}))
	assert.True(t, paid.Bookability.Changed)
	assert.True(t, paid.Bookability.Bookable)
	_ = f.st.View(func(tx *store.ReadTx) error {
		got, _ := tx.FeeRecord(r.ID)
		assert.Equal(t, model.FeeInvoiced, got.Status)
		return nil
	})
}

func TestLateWeekInvoiceIsImmediatelyOverdue(t *testing.T) {
	f := newFixture(t, 1)
	r := f.fee(t, 0, "100")
	res := f.invoice(t, r.ID)
	assert.True(t, res.Invoice.DueDate.Before(res.Invoice.InvoiceDate))
	assert.True(t, res.Bookability.Changed)
	assert.False(t, res.Bookability.Bookable)
}

func TestDeleteFeeRecordOnlyWhilePending(t *testing.T) {
	f := newFixture(t, 2)
	pending := f.fee(t, 0, "100")
	billed := f.fee(t, 1, "100")
	f.invoice(t, billed.ID)

	err := f.st.Update(func(tx *store.Tx) error { return f.eng.DeleteFeeRecordTx(tx, billed.ID) })
	assert.ErrorIs(t, err, ErrFeeNotPending)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	require.NoError(t, f.st.Update(func(tx *store.Tx) error { return f.eng.DeleteFeeRecordTx(tx, pending.ID) }))
}

type step func(tx *store.Tx) (model.Invoice, error)

func TestManualLineItemsOrderIndependent(t *testing.T) {
	f := newFixture(t, 1)
	r := f.fee(t, 0, "1000")
	inv := f.invoice(t, r.ID).Invoice

	var charge, credit, rejected model.ManualLineItem
	require.NoError(t, f.st.Update(func(tx *store.Tx) error {
		var err error
		var got model.Invoice
		if got, charge, err = f.eng.AddManualLineItemTx(tx, admin, inv.ID, model.ManualLineItemInput{
			Description: "Detention", Amount: model.MustMoney("25"), Type: model.LineItemCharge,
		}); err != nil {
			return err
		}
		assert.Equal(t, "100.00", got.TotalAmount.StringFixed(2), "pending items do not count")
		if _, credit, err = f.eng.AddManualLineItemTx(tx, admin, inv.ID, model.ManualLineItemInput{
			Description: "Goodwill", Amount: model.MustMoney("10.50"), Type: model.LineItemCredit,
		}); err != nil {
			return err
		}
		_, rejected, err = f.eng.AddManualLineItemTx(tx, admin, inv.ID, model.ManualLineItemInput{
			Description: "Lumper", Amount: model.MustMoney("80"), Type: model.LineItemCharge,
		})
		return err
	}))

	errRollback := errors.New("rollback")
	apply := func(steps ...step) model.Invoice {
		var last model.Invoice
		err := f.st.Update(func(tx *store.Tx) error {
			for _, s := range steps {
				var err error
				if last, err = s(tx); err != nil {
					return err
				}
			}
			return errRollback
		})
		require.ErrorIs(t, err, errRollback)
		return last
	}
	approveCharge := func(tx *store.Tx) (model.Invoice, error) {
		return f.eng.ApproveManualLineItemTx(tx, admin, inv.ID, charge.ID)
	}
	approveCredit := func(tx *store.Tx) (model.Invoice, error) {
		return f.eng.ApproveManualLineItemTx(tx, admin, inv.ID, credit.ID)
	}
	reject := func(tx *store.Tx) (model.Invoice, error) {
		return f.eng.RejectManualLineItemTx(tx, admin, inv.ID, rejected.ID)
	}

	a := apply(approveCharge, approveCredit, reject)
	b := apply(reject, approveCredit, approveCharge)
	assert.Equal(t, "114.50", a.TotalAmount.StringFixed(2))
	assert.True(t, a.TotalAmount.Equal(b.TotalAmount))

	removed := apply(approveCharge, approveCredit, func(tx *store.Tx) (model.Invoice, error) {
		return f.eng.RemoveManualLineItemTx(tx, inv.ID, credit.ID)
	})
	assert.Equal(t, "125.00", removed.TotalAmount.StringFixed(2))
	assert.Len(t, removed.ManualLineItems, 2)
}

func TestManualLineItemValidation(t *testing.T) {
	f := newFixture(t, 1)
	r := f.fee(t, 0, "1000")
	inv := f.invoice(t, r.ID).Invoice
	err := f.st.Update(func(tx *store.Tx) error {
		_, _, err := f.eng.AddManualLineItemTx(tx, admin, inv.ID, model.ManualLineItemInput{
			Description: "Bad", Amount: model.MustMoney("-5"), Type: model.LineItemCharge,
		})
		return err
	})
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	err = f.st.Update(func(tx *store.Tx) error {
		_, err := f.eng.ApproveManualLineItemTx(tx, admin, inv.ID, "nope")
		return err
	})
	assert.ErrorIs(t, err, ErrLineItemNotFound)
}
