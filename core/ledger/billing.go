package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/fleetledger/core/billing"
	"github.com/kilianp07/fleetledger/core/events"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/notify"
	"github.com/kilianp07/fleetledger/core/store"
)

// CreateDispatchFeeRecord records the fee owed for a schedule entry.
func (l *Ledger) CreateDispatchFeeRecord(s model.Session, entryID, carrierID string, amount decimal.Decimal) (model.DispatchFeeRecord, error) {
	f, err := update(l, "create_fee_record", func(tx *store.Tx) (model.DispatchFeeRecord, error) {
		if _, err := tx.Carrier(carrierID); err != nil {
			return model.DispatchFeeRecord{}, err
		}
		return l.billing.CreateFeeRecordTx(tx, entryID, carrierID, amount)
	})
	if err == nil {
		l.feeRecorded(f)
	}
	return f, err
}

// DeleteFeeRecord removes a pending fee.
func (l *Ledger) DeleteFeeRecord(s model.Session, id string) error {
	_, err := update(l, "delete_fee_record", func(tx *store.Tx) (struct{}, error) {
		return struct{}{}, l.billing.DeleteFeeRecordTx(tx, id)
	})
	return err
}

// GenerateInvoice bills the carrier's pending fees among feeIDs and issues
// the invoice as Sent.
func (l *Ledger) GenerateInvoice(s model.Session, carrierID string, feeIDs []string) (model.Invoice, error) {
	res, err := update(l, "generate_invoice", func(tx *store.Tx) (billing.InvoiceResult, error) {
		return l.billing.GenerateInvoiceTx(tx, s, carrierID, feeIDs)
	})
	if err != nil {
		return model.Invoice{}, err
	}
	inv := res.Invoice
	l.publish(events.InvoiceGenerated{
		InvoiceID: inv.ID,
		Number:    inv.InvoiceNumber,
		CarrierID: inv.CarrierID,
		Total:     inv.TotalAmount,
		Fees:      len(inv.FeeRecordIDs),
		Time:      l.now(),
	})
	l.notifier.Send(notify.Notification{
		Kind:      notify.KindInvoiceIssued,
		CarrierID: inv.CarrierID,
		InvoiceID: inv.ID,
		Subject:   "Invoice " + inv.InvoiceNumber,
		Message: fmt.Sprintf("Invoice %s for %s is due %s",
			inv.InvoiceNumber, inv.TotalAmount.StringFixed(2), inv.DueDate.Format("2006-01-02")),
	})
	l.bookabilityChanged(res.Bookability)
	return inv, nil
}

// GenerateInvoiceForPending bills every pending fee of the carrier.
func (l *Ledger) GenerateInvoiceForPending(s model.Session, carrierID string) (model.Invoice, error) {
	ids, err := l.PendingFeeIDs(carrierID)
	if err != nil {
		return model.Invoice{}, err
	}
	return l.GenerateInvoice(s, carrierID, ids)
}

// SetInvoiceStatus writes an invoice status and recomputes the carrier's
// bookability.
func (l *Ledger) SetInvoiceStatus(s model.Session, id string, status model.InvoiceStatus) (model.Invoice, error) {
	var from model.InvoiceStatus
	res, err := update(l, "set_invoice_status", func(tx *store.Tx) (billing.InvoiceResult, error) {
		if before, err := tx.Invoice(id); err == nil {
			from = before.Status
		}
		return l.billing.SetInvoiceStatusTx(tx, id, status)
	})
	if err != nil {
		return model.Invoice{}, err
	}
	l.publish(events.InvoiceStatusChanged{
		InvoiceID: id,
		CarrierID: res.Invoice.CarrierID,
		From:      from,
		To:        status,
		Time:      l.now(),
	})
	l.log.Infof("invoice %s %s -> %s by %s", res.Invoice.InvoiceNumber, from, status, s.Actor())
	l.bookabilityChanged(res.Bookability)
	return res.Invoice, nil
}

// AddManualLineItem attaches a pending adjustment to an invoice.
func (l *Ledger) AddManualLineItem(s model.Session, invoiceID string, in model.ManualLineItemInput) (model.Invoice, model.ManualLineItem, error) {
	type added struct {
		inv  model.Invoice
		item model.ManualLineItem
	}
	out, err := update(l, "add_line_item", func(tx *store.Tx) (added, error) {
		inv, item, err := l.billing.AddManualLineItemTx(tx, s, invoiceID, in)
		return added{inv, item}, err
	})
	return out.inv, out.item, err
}

// RemoveManualLineItem drops an adjustment and recomputes the total.
func (l *Ledger) RemoveManualLineItem(s model.Session, invoiceID, itemID string) (model.Invoice, error) {
	return update(l, "remove_line_item", func(tx *store.Tx) (model.Invoice, error) {
		return l.billing.RemoveManualLineItemTx(tx, invoiceID, itemID)
	})
}

// ApproveManualLineItem makes an adjustment count toward the total.
func (l *Ledger) ApproveManualLineItem(s model.Session, invoiceID, itemID string) (model.Invoice, error) {
	return update(l, "approve_line_item", func(tx *store.Tx) (model.Invoice, error) {
		return l.billing.ApproveManualLineItemTx(tx, s, invoiceID, itemID)
	})
}

// RejectManualLineItem excludes an adjustment from the total.
func (l *Ledger) RejectManualLineItem(s model.Session, invoiceID, itemID string) (model.Invoice, error) {
	return update(l, "reject_line_item", func(tx *store.Tx) (model.Invoice, error) {
		return l.billing.RejectManualLineItemTx(tx, s, invoiceID, itemID)
	})
}
