package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/fleetledger/core/model"
)

// FeeRecorded is published when a dispatch fee record is created.
type FeeRecorded struct {
	FeeID     string
	CarrierID string
	EntryID   string
	LoadValue decimal.Decimal
	Amount    decimal.Decimal
	Time      time.Time
}

// InvoiceGenerated is published when pending fees are billed.
type InvoiceGenerated struct {
	InvoiceID string
	Number    string
	CarrierID string
	Total     decimal.Decimal
	Fees      int
	Time      time.Time
}

// InvoiceStatusChanged is published for every invoice status write.
type InvoiceStatusChanged struct {
	InvoiceID string
	CarrierID string
	From      model.InvoiceStatus
	To        model.InvoiceStatus
	Time      time.Time
}

// BookabilityChanged is published only when a carrier's persisted flag
// actually flips.
type BookabilityChanged struct {
	CarrierID string
	Bookable  bool
	Overdue   int
	Time      time.Time
}
