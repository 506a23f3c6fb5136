package store

import (
	"fmt"
	"slices"

	"github.com/kilianp07/fleetledger/core/model"
)

// FeeFilter narrows FeeRecords. Zero fields match everything.
type FeeFilter struct {
	CarrierID       string
	Status          model.FeeStatus
	ScheduleEntryID string
	InvoiceID       string
}

func (f FeeFilter) match(r model.DispatchFeeRecord) bool {
	if f.CarrierID != "" && r.CarrierID != f.CarrierID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.ScheduleEntryID != "" && r.ScheduleEntryID != f.ScheduleEntryID {
		return false
	}
	if f.InvoiceID != "" && r.InvoiceID != f.InvoiceID {
		return false
	}
	return true
}

func (tx *ReadTx) FeeRecord(id string) (model.DispatchFeeRecord, error) {
	r, ok := tx.st.fees.get(id)
	if !ok {
		return model.DispatchFeeRecord{}, notFound("dispatch fee record", id)
	}
	return r, nil
}

func (tx *ReadTx) FeeRecords(f FeeFilter) []model.DispatchFeeRecord {
	return tx.st.fees.list(f.match)
}

// InsertFeeRecord stores r under a new id. Duplicate and amount guards
// belong to the billing engine.
func (tx *Tx) InsertFeeRecord(r model.DispatchFeeRecord) (model.DispatchFeeRecord, error) {
	if _, err := tx.Carrier(r.CarrierID); err != nil {
		return model.DispatchFeeRecord{}, err
	}
	r.ID = tx.newID()
	put(tx, tx.st.fees, r.ID, r)
	return r, nil
}

func (tx *Tx) PutFeeRecord(r model.DispatchFeeRecord) error {
	if _, err := tx.FeeRecord(r.ID); err != nil {
		return err
	}
	put(tx, tx.st.fees, r.ID, r)
	return nil
}

func (tx *Tx) DeleteFeeRecord(id string) error {
	if _, ok := del(tx, tx.st.fees, id); !ok {
		return notFound("dispatch fee record", id)
	}
	return nil
}

// InvoiceFilter narrows Invoices. Zero fields match everything.
type InvoiceFilter struct {
	CarrierID string
	Status    model.InvoiceStatus
}

func (f InvoiceFilter) match(inv model.Invoice) bool {
	if f.CarrierID != "" && inv.CarrierID != f.CarrierID {
		return false
	}
	if f.Status != "" && inv.Status != f.Status {
		return false
	}
	return true
}

func cloneInvoice(inv model.Invoice) model.Invoice {
	inv.FeeRecordIDs = slices.Clone(inv.FeeRecordIDs)
	inv.ManualLineItems = slices.Clone(inv.ManualLineItems)
	return inv
}

func (tx *ReadTx) Invoice(id string) (model.Invoice, error) {
	inv, ok := tx.st.invoices.get(id)
	if !ok {
		return model.Invoice{}, notFound("invoice", id)
	}
	return cloneInvoice(inv), nil
}

func (tx *ReadTx) Invoices(f InvoiceFilter) []model.Invoice {
	res := tx.st.invoices.list(f.match)
	for i := range res {
		res[i] = cloneInvoice(res[i])
	}
	return res
}

// InsertInvoice stores inv under a new id.
func (tx *Tx) InsertInvoice(inv model.Invoice) (model.Invoice, error) {
	if _, err := tx.Carrier(inv.CarrierID); err != nil {
		return model.Invoice{}, err
	}
	inv.ID = tx.newID()
	inv = cloneInvoice(inv)
	put(tx, tx.st.invoices, inv.ID, inv)
	return cloneInvoice(inv), nil
}

func (tx *Tx) PutInvoice(inv model.Invoice) error {
	if _, err := tx.Invoice(inv.ID); err != nil {
		return err
	}
	put(tx, tx.st.invoices, inv.ID, cloneInvoice(inv))
	return nil
}

func (tx *Tx) DeleteInvoice(id string) error {
	if _, ok := del(tx, tx.st.invoices, id); !ok {
		return notFound("invoice", id)
	}
	return nil
}

// NextInvoiceNumber reserves the next number of the given calendar year,
// formatted INV-<year>-<seq>. Sequences are 1-based per year.
func (tx *Tx) NextInvoiceNumber(year int) string {
	prev := tx.st.invoiceSeq[year]
	tx.st.invoiceSeq[year] = prev + 1
	tx.onRollback(func() { tx.st.invoiceSeq[year] = prev })
	return fmt.Sprintf("INV-%d-%03d", year, prev+1)
}

// NewID returns a fresh identifier from the store's generator, for values
// nested inside entities such as manual line items.
func (tx *Tx) NewID() string {
	return tx.newID()
}
