// Package billing turns completed schedule entries into dispatch fees and
// batches pending fees into carrier invoices.
//
// Invoice totals are always recomputed from the referenced fee records and
// the approved manual line items; nothing patches a total incrementally.
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/fleetledger/core/bookability"
	"github.com/kilianp07/fleetledger/core/logger"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrDuplicateFee      = errors.New("dispatch fee already recorded for schedule entry")
	ErrNoEligibleFees    = errors.New("no eligible pending fees")
	ErrFeeNotPending     = errors.New("dispatch fee is not pending")
	ErrLineItemNotFound  = errors.New("manual line item not found")
)

// DefaultFeeRate is the dispatch fee charged on a load's value.
var DefaultFeeRate = decimal.NewFromFloat(0.10)

// Config holds billing parameters.
type Config struct {
	FeeRate  decimal.Decimal
	Location *time.Location
}

// Engine applies billing rules on top of the store.
type Engine struct {
	store  *store.Store
	rate   decimal.Decimal
	loc    *time.Location
	policy *bookability.Policy
	log    logger.Logger
}

// NewEngine creates an Engine. A zero FeeRate selects DefaultFeeRate and a
// nil Location selects UTC.
func NewEngine(st *store.Store, cfg Config, policy *bookability.Policy, log logger.Logger) (*Engine, error) {
	if st == nil {
		return nil, fmt.Errorf("billing: store is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("billing: bookability policy is required")
	}
	if log == nil {
		return nil, fmt.Errorf("billing: logger is required")
	}
	rate := cfg.FeeRate
	if rate.IsZero() {
		rate = DefaultFeeRate
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("billing: fee rate must not be negative")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{store: st, rate: rate, loc: loc, policy: policy, log: log}, nil
}

// Store returns the underlying store.
func (e *Engine) Store() *store.Store { return e.store }

// FeeFor returns the dispatch fee owed on amount.
func (e *Engine) FeeFor(amount decimal.Decimal) decimal.Decimal {
	return model.RoundCurrency(model.RoundCurrency(amount).Mul(e.rate))
}

// DueDate returns the Wednesday of the Monday-start week containing t, at
// midnight in the billing location.
func (e *Engine) DueDate(t time.Time) time.Time {
	local := t.In(e.loc)
	offset := (int(local.Weekday()) + 6) % 7
	y, m, d := local.Date()
	monday := time.Date(y, m, d-offset, 0, 0, 0, 0, e.loc)
	return monday.AddDate(0, 0, 2)
}

// CreateFeeRecordTx records the fee for a schedule entry. It is rejected when
// the amount is not positive or a Pending or Invoiced record already exists
// for the entry.
func (e *Engine) CreateFeeRecordTx(tx *store.Tx, entryID, carrierID string, amount decimal.Decimal) (model.DispatchFeeRecord, error) {
	if !amount.IsPositive() {
		return model.DispatchFeeRecord{}, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrNonPositiveAmount, "load amount must be positive").
			WithDetails(map[string]string{"original_load_amount": amount.String()})
	}
	if _, err := tx.ScheduleEntry(entryID); err != nil {
		return model.DispatchFeeRecord{}, err
	}
	for _, r := range tx.FeeRecords(store.FeeFilter{ScheduleEntryID: entryID}) {
		if r.Status == model.FeePending || r.Status == model.FeeInvoiced {
			e.log.Warnf("dispatch fee for entry %s already recorded as %s", entryID, r.ID)
			return model.DispatchFeeRecord{}, pkgerrors.Wrap(pkgerrors.CodeConflict, ErrDuplicateFee, "dispatch fee already recorded").
				WithDetails(map[string]string{"schedule_entry_id": entryID, "fee_record_id": r.ID})
		}
	}
	original := model.RoundCurrency(amount)
	return tx.InsertFeeRecord(model.DispatchFeeRecord{
		ScheduleEntryID:    entryID,
		CarrierID:          carrierID,
		OriginalLoadAmount: original,
		FeeAmount:          e.FeeFor(original),
		Status:             model.FeePending,
		CalculatedDate:     tx.Now(),
	})
}

// CreateFeeRecord is CreateFeeRecordTx in its own transaction.
func (e *Engine) CreateFeeRecord(entryID, carrierID string, amount decimal.Decimal) (model.DispatchFeeRecord, error) {
	var out model.DispatchFeeRecord
	err := e.store.Update(func(tx *store.Tx) error {
		var err error
		out, err = e.CreateFeeRecordTx(tx, entryID, carrierID, amount)
		return err
	})
	return out, err
}

// DeleteFeeRecordTx removes a fee that has not been invoiced yet.
func (e *Engine) DeleteFeeRecordTx(tx *store.Tx, id string) error {
	r, err := tx.FeeRecord(id)
	if err != nil {
		return err
	}
	if r.Status != model.FeePending {
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrFeeNotPending, "only pending fees can be removed").
			WithDetails(map[string]string{"fee_record_id": id, "status": string(r.Status)})
	}
	return tx.DeleteFeeRecord(id)
}

// PendingFeeIDs lists the ids of a carrier's pending fees.
func PendingFeeIDs(tx *store.ReadTx, carrierID string) []string {
	var ids []string
	for _, r := range tx.FeeRecords(store.FeeFilter{CarrierID: carrierID, Status: model.FeePending}) {
		ids = append(ids, r.ID)
	}
	return ids
}
