// Package bookability derives whether a carrier may be assigned new loads.
//
// A carrier is bookable unless one of its Sent invoices is past the end of
// its due date. The stored Carrier.IsBookable flag is a cache of this
// predicate; Recompute keeps it in step with invoice state and Project
// evaluates it against the current clock without writing.
package bookability

import (
	"time"

	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
)

// IsBookable reports whether none of the invoices is overdue at now.
func IsBookable(invoices []model.Invoice, now time.Time) bool {
	for _, inv := range invoices {
		if inv.IsOverdue(now) {
			return false
		}
	}
	return true
}

// Overdue returns the invoices that are overdue at now.
func Overdue(invoices []model.Invoice, now time.Time) []model.Invoice {
	var res []model.Invoice
	for _, inv := range invoices {
		if inv.IsOverdue(now) {
			res = append(res, inv)
		}
	}
	return res
}

// Change records the outcome of a recomputation.
type Change struct {
	CarrierID  string   `json:"carrier_id"`
	Bookable   bool     `json:"bookable"`
	Changed    bool     `json:"changed"`
	OverdueIDs []string `json:"overdue_invoice_ids,omitempty"`
}

// Policy evaluates bookability against a clock.
type Policy struct {
	now func() time.Time
}

// NewPolicy returns a Policy. A nil clock uses time.Now.
func NewPolicy(now func() time.Time) *Policy {
	if now == nil {
		now = time.Now
	}
	return &Policy{now: now}
}

// Now returns the policy clock.
func (p *Policy) Now() time.Time { return p.now() }

func (p *Policy) evaluate(tx *store.ReadTx, carrierID string) (bool, []string) {
	overdue := Overdue(tx.Invoices(store.InvoiceFilter{CarrierID: carrierID, Status: model.InvoiceSent}), p.now())
	ids := make([]string, 0, len(overdue))
	for _, inv := range overdue {
		ids = append(ids, inv.ID)
	}
	return len(overdue) == 0, ids
}

// Project returns c with IsBookable evaluated at the current instant. The
// store is not modified.
func (p *Policy) Project(tx *store.ReadTx, c model.Carrier) model.Carrier {
	c.IsBookable, _ = p.evaluate(tx, c.ID)
	return c
}

// Recompute evaluates the predicate for one carrier and stores it when it
// differs from the cached flag. Calling it twice without an intervening
// change is a no-op.
func (p *Policy) Recompute(tx *store.Tx, carrierID string) (Change, error) {
	c, err := tx.Carrier(carrierID)
	if err != nil {
		return Change{}, err
	}
	bookable, overdue := p.evaluate(&tx.ReadTx, carrierID)
	ch := Change{CarrierID: carrierID, Bookable: bookable, OverdueIDs: overdue}
	if c.IsBookable == bookable {
		return ch, nil
	}
	c.IsBookable = bookable
	if err := tx.PutCarrier(c); err != nil {
		return Change{}, err
	}
	ch.Changed = true
	return ch, nil
}

// RecomputeAll recomputes every carrier and returns the ones that flipped.
func (p *Policy) RecomputeAll(tx *store.Tx) ([]Change, error) {
	var changed []Change
	for _, c := range tx.Carriers() {
		ch, err := p.Recompute(tx, c.ID)
		if err != nil {
			return nil, err
		}
		if ch.Changed {
			changed = append(changed, ch)
		}
	}
	return changed, nil
}
