package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRoundCurrency(t *testing.T) {
	cases := map[string]string{
		"180.05":   "180.05",
		"180.045":  "180.05",
		"180.0449": "180.04",
		"-12.345":  "-12.35",
	}
	for in, want := range cases {
		if got := RoundCurrency(decimal.RequireFromString(in)).StringFixed(2); got != want {
			t.Errorf("RoundCurrency(%s) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseMoney("abc"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSignedAmount(t *testing.T) {
	charge := ManualLineItem{Amount: MustMoney("25.00"), Type: LineItemCharge}
	credit := ManualLineItem{Amount: MustMoney("10.50"), Type: LineItemCredit}
	if !charge.SignedAmount().Equal(MustMoney("25")) {
		t.Fatalf("charge should be positive")
	}
	if !credit.SignedAmount().Equal(MustMoney("-10.50")) {
		t.Fatalf("credit should be negative")
	}
}

func TestInvoiceOverdueUsesEndOfDay(t *testing.T) {
	due := time.Date(2025, 7, 23, 0, 0, 0, 0, time.UTC)
	inv := Invoice{Status: InvoiceSent, DueDate: due}

	if inv.IsOverdue(time.Date(2025, 7, 23, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("invoice should not be overdue on its due date")
	}
	if !inv.IsOverdue(time.Date(2025, 7, 24, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("invoice should be overdue the day after")
	}
	inv.Status = InvoicePaid
	if inv.IsOverdue(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("paid invoices are never overdue")
	}
}

func TestParseInvoiceStatus(t *testing.T) {
	s, err := ParseInvoiceStatus("Paid")
	if err != nil || s != InvoicePaid {
		t.Fatalf("unexpected parse result %v %v", s, err)
	}
	if _, err := ParseInvoiceStatus("paid"); err == nil {
		t.Fatalf("status parsing is case sensitive")
	}
	if !InvoiceVoid.Settled() || InvoiceSent.Settled() {
		t.Fatalf("Settled mismatch")
	}
}
