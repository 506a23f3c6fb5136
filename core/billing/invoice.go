package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/fleetledger/core/bookability"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

// InvoiceResult is the outcome of a command that touches an invoice.
type InvoiceResult struct {
	Invoice     model.Invoice
	Bookability bookability.Change
}

// GenerateInvoiceTx bills the carrier's pending fees among feeIDs. The
// invoice is issued as Sent and every consumed fee is marked Invoiced.
func (e *Engine) GenerateInvoiceTx(tx *store.Tx, s model.Session, carrierID string, feeIDs []string) (InvoiceResult, error) {
	if _, err := tx.Carrier(carrierID); err != nil {
		return InvoiceResult{}, err
	}
	wanted := make(map[string]struct{}, len(feeIDs))
	for _, id := range feeIDs {
		wanted[id] = struct{}{}
	}
	var fees []model.DispatchFeeRecord
	for _, r := range tx.FeeRecords(store.FeeFilter{CarrierID: carrierID, Status: model.FeePending}) {
		if _, ok := wanted[r.ID]; ok {
			fees = append(fees, r)
		}
	}
	if len(fees) == 0 {
		e.log.Warnf("no eligible pending fees for carrier %s", carrierID)
		return InvoiceResult{}, pkgerrors.Wrap(pkgerrors.CodeConflict, ErrNoEligibleFees, "no eligible pending fees").
			WithDetails(map[string]any{"carrier_id": carrierID, "requested": feeIDs})
	}

	now := tx.Now()
	ids := make([]string, 0, len(fees))
	for _, r := range fees {
		ids = append(ids, r.ID)
	}
	inv, err := tx.InsertInvoice(model.Invoice{
		InvoiceNumber:   tx.NextInvoiceNumber(now.In(e.loc).Year()),
		CarrierID:       carrierID,
		InvoiceDate:     now,
		DueDate:         e.DueDate(now),
		FeeRecordIDs:    ids,
		Status:          model.InvoiceSent,
		GeneratedBy:     s.Actor(),
		StatusChangedAt: now,
	})
	if err != nil {
		return InvoiceResult{}, err
	}
	for _, r := range fees {
		r.Status = model.FeeInvoiced
		r.InvoiceID = inv.ID
		if err := tx.PutFeeRecord(r); err != nil {
			return InvoiceResult{}, err
		}
	}
	if inv, err = e.storeTotal(tx, inv); err != nil {
		return InvoiceResult{}, err
	}
	ch, err := e.policy.Recompute(tx, carrierID)
	if err != nil {
		return InvoiceResult{}, err
	}
	e.log.Infof("invoice %s generated for carrier %s: %s", inv.InvoiceNumber, carrierID, inv.TotalAmount.StringFixed(2))
	return InvoiceResult{Invoice: inv, Bookability: ch}, nil
}

// SetInvoiceStatusTx writes the status unconditionally and recomputes the
// carrier's bookability. Underlying fees stay Invoiced.
func (e *Engine) SetInvoiceStatusTx(tx *store.Tx, id string, status model.InvoiceStatus) (InvoiceResult, error) {
	if !status.IsValid() {
		return InvoiceResult{}, store.Invalid("status", "is invalid")
	}
	inv, err := tx.Invoice(id)
	if err != nil {
		return InvoiceResult{}, err
	}
	inv.Status = status
	inv.StatusChangedAt = tx.Now()
	if err := tx.PutInvoice(inv); err != nil {
		return InvoiceResult{}, err
	}
	ch, err := e.policy.Recompute(tx, inv.CarrierID)
	if err != nil {
		return InvoiceResult{}, err
	}
	return InvoiceResult{Invoice: inv, Bookability: ch}, nil
}

// RecomputeTotal sums the referenced fee amounts and the signed amounts of
// the approved manual line items.
func RecomputeTotal(tx *store.ReadTx, inv model.Invoice) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, id := range inv.FeeRecordIDs {
		r, err := tx.FeeRecord(id)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invoice %s: %w", inv.InvoiceNumber, err)
		}
		total = total.Add(r.FeeAmount)
	}
	for _, li := range inv.ManualLineItems {
		if li.Status == model.LineItemApproved {
			total = total.Add(li.SignedAmount())
		}
	}
	return model.RoundCurrency(total), nil
}

func (e *Engine) storeTotal(tx *store.Tx, inv model.Invoice) (model.Invoice, error) {
	total, err := RecomputeTotal(&tx.ReadTx, inv)
	if err != nil {
		return model.Invoice{}, err
	}
	inv.TotalAmount = total
	if err := tx.PutInvoice(inv); err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

// AddManualLineItemTx appends an adjustment awaiting approval. The invoice
// total is unchanged.
func (e *Engine) AddManualLineItemTx(tx *store.Tx, s model.Session, invoiceID string, in model.ManualLineItemInput) (model.Invoice, model.ManualLineItem, error) {
	if err := store.Validate(in); err != nil {
		return model.Invoice{}, model.ManualLineItem{}, err
	}
	if !in.Amount.IsPositive() {
		return model.Invoice{}, model.ManualLineItem{}, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrNonPositiveAmount, "line item amount must be positive").
			WithDetails(map[string]string{"amount": "must be positive"})
	}
	inv, err := tx.Invoice(invoiceID)
	if err != nil {
		return model.Invoice{}, model.ManualLineItem{}, err
	}
	li := model.ManualLineItem{
		ID:          tx.NewID(),
		Description: in.Description,
		Amount:      model.RoundCurrency(in.Amount),
		Type:        in.Type,
		Status:      model.LineItemPendingApproval,
		CreatedAt:   tx.Now(),
		CreatedBy:   s.Actor(),
	}
	inv.ManualLineItems = append(inv.ManualLineItems, li)
	if err := tx.PutInvoice(inv); err != nil {
		return model.Invoice{}, model.ManualLineItem{}, err
	}
	return inv, li, nil
}

// RemoveManualLineItemTx drops an adjustment and recomputes the total.
func (e *Engine) RemoveManualLineItemTx(tx *store.Tx, invoiceID, itemID string) (model.Invoice, error) {
	inv, err := tx.Invoice(invoiceID)
	if err != nil {
		return model.Invoice{}, err
	}
	_, idx, ok := inv.LineItem(itemID)
	if !ok {
		return model.Invoice{}, lineItemNotFound(invoiceID, itemID)
	}
	inv.ManualLineItems = append(inv.ManualLineItems[:idx], inv.ManualLineItems[idx+1:]...)
	return e.storeTotal(tx, inv)
}

// ApproveManualLineItemTx approves an adjustment and recomputes the total.
func (e *Engine) ApproveManualLineItemTx(tx *store.Tx, s model.Session, invoiceID, itemID string) (model.Invoice, error) {
	return e.reviewLineItem(tx, s, invoiceID, itemID, model.LineItemApproved)
}

// RejectManualLineItemTx rejects an adjustment and recomputes the total.
func (e *Engine) RejectManualLineItemTx(tx *store.Tx, s model.Session, invoiceID, itemID string) (model.Invoice, error) {
	return e.reviewLineItem(tx, s, invoiceID, itemID, model.LineItemRejected)
}

func (e *Engine) reviewLineItem(tx *store.Tx, s model.Session, invoiceID, itemID string, status model.LineItemStatus) (model.Invoice, error) {
	inv, err := tx.Invoice(invoiceID)
	if err != nil {
		return model.Invoice{}, err
	}
	li, idx, ok := inv.LineItem(itemID)
	if !ok {
		return model.Invoice{}, lineItemNotFound(invoiceID, itemID)
	}
	li.Status = status
	li.ReviewedBy = s.Actor()
	inv.ManualLineItems[idx] = li
	return e.storeTotal(tx, inv)
}

func lineItemNotFound(invoiceID, itemID string) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrLineItemNotFound, "manual line item not found").
		WithDetails(map[string]string{"invoice_id": invoiceID, "line_item_id": itemID})
}
