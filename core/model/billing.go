package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FeeStatus tracks whether a dispatch fee has been billed.
type FeeStatus string

const (
	FeePending  FeeStatus = "Pending"
	FeeInvoiced FeeStatus = "Invoiced"
)

var validFeeStatuses = []FeeStatus{FeePending, FeeInvoiced}

func (f FeeStatus) String() string { return string(f) }

// IsValid reports whether the value is a known FeeStatus.
func (f FeeStatus) IsValid() bool {
	for _, candidate := range validFeeStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "Draft"
	InvoiceSent  InvoiceStatus = "Sent"
	InvoicePaid  InvoiceStatus = "Paid"
	InvoiceVoid  InvoiceStatus = "Void"
)

var validInvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceVoid}

func (s InvoiceStatus) String() string { return string(s) }

// IsValid reports whether the value is a known InvoiceStatus.
func (s InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Settled reports whether the invoice no longer expects payment.
func (s InvoiceStatus) Settled() bool {
	return s == InvoicePaid || s == InvoiceVoid
}

// ParseInvoiceStatus converts raw input into an InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, candidate := range validInvoiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice status %q", value)
}

// LineItemType is the sign of a manual adjustment.
type LineItemType string

const (
	LineItemCharge LineItemType = "charge"
	LineItemCredit LineItemType = "credit"
)

func (t LineItemType) IsValid() bool {
	return t == LineItemCharge || t == LineItemCredit
}

// ParseLineItemType converts raw input into a LineItemType.
func ParseLineItemType(value string) (LineItemType, error) {
	t := LineItemType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid line item type %q", value)
	}
	return t, nil
}

// LineItemStatus is the approval state of a manual adjustment.
type LineItemStatus string

const (
	LineItemPendingApproval LineItemStatus = "Pending Approval"
	LineItemApproved        LineItemStatus = "Approved"
	LineItemRejected        LineItemStatus = "Rejected"
)

var validLineItemStatuses = []LineItemStatus{LineItemPendingApproval, LineItemApproved, LineItemRejected}

// IsValid reports whether the value is a known LineItemStatus.
func (s LineItemStatus) IsValid() bool {
	for _, candidate := range validLineItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// DispatchFeeRecord is the fee owed by a carrier for one completed schedule
// entry. FeeAmount is fixed at creation.
type DispatchFeeRecord struct {
	ID                 string          `json:"id"`
	ScheduleEntryID    string          `json:"schedule_entry_id"`
	CarrierID          string          `json:"carrier_id"`
	OriginalLoadAmount decimal.Decimal `json:"original_load_amount"`
	FeeAmount          decimal.Decimal `json:"fee_amount"`
	Status             FeeStatus       `json:"status"`
	CalculatedDate     time.Time       `json:"calculated_date"`
	InvoiceID          string          `json:"invoice_id,omitempty"`
}

// ManualLineItem is a non-fee adjustment on an invoice. Only approved items
// count toward the invoice total.
type ManualLineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        LineItemType    `json:"type"`
	Status      LineItemStatus  `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
	ReviewedBy  string          `json:"reviewed_by,omitempty"`
}

// SignedAmount returns +Amount for charges and -Amount for credits.
func (li ManualLineItem) SignedAmount() decimal.Decimal {
	if li.Type == LineItemCredit {
		return li.Amount.Neg()
	}
	return li.Amount
}

// ManualLineItemInput is the caller-supplied part of a manual line item.
type ManualLineItemInput struct {
	Description string          `json:"description" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Type        LineItemType    `json:"type" validate:"required,oneof=charge credit"`
}

// Invoice bills a frozen set of dispatch fees plus approved manual items to a
// carrier. TotalAmount is always derived, never set by callers.
type Invoice struct {
	ID              string           `json:"id"`
	InvoiceNumber   string           `json:"invoice_number"`
	CarrierID       string           `json:"carrier_id"`
	InvoiceDate     time.Time        `json:"invoice_date"`
	DueDate         time.Time        `json:"due_date"`
	FeeRecordIDs    []string         `json:"dispatch_fee_record_ids"`
	ManualLineItems []ManualLineItem `json:"manual_line_items"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	Status          InvoiceStatus    `json:"status"`
	GeneratedBy     string           `json:"generated_by,omitempty"`
	StatusChangedAt time.Time        `json:"status_changed_at"`
}

// EndOfDueDate is the last instant of the due date in the due date's location.
func (inv Invoice) EndOfDueDate() time.Time {
	y, m, d := inv.DueDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, inv.DueDate.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// IsOverdue reports whether a Sent invoice's due date has fully elapsed.
func (inv Invoice) IsOverdue(now time.Time) bool {
	return inv.Status == InvoiceSent && now.After(inv.EndOfDueDate())
}

// LineItem returns the manual line item with the given id.
func (inv Invoice) LineItem(id string) (ManualLineItem, int, bool) {
	for i, li := range inv.ManualLineItems {
		if li.ID == id {
			return li, i, true
		}
	}
	return ManualLineItem{}, -1, false
}
