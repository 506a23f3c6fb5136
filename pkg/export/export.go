// Package export writes invoices and dispatch fees for accounting tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/fleetledger/core/model"
)

// InvoiceHeader is the CSV header written by WriteInvoicesCSV.
var InvoiceHeader = []string{
	"invoice_number", "carrier_id", "invoice_date", "due_date", "status",
	"fee_records", "approved_line_items", "total_amount",
}

// FeeHeader is the CSV header written by WriteFeesCSV.
var FeeHeader = []string{
	"fee_record_id", "schedule_entry_id", "carrier_id", "original_load_amount",
	"fee_amount", "status", "calculated_date", "invoice_id",
}

// WriteInvoicesJSON writes the invoices to w as a JSON array.
func WriteInvoicesJSON(w io.Writer, invoices []model.Invoice) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(invoices)
}

// WriteInvoicesCSV writes one row per invoice. Dates are written as
// YYYY-MM-DD and amounts with two decimals.
func WriteInvoicesCSV(w io.Writer, invoices []model.Invoice) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InvoiceHeader); err != nil {
		return err
	}
	for _, inv := range invoices {
		approved := 0
		for _, li := range inv.ManualLineItems {
			if li.Status == model.LineItemApproved {
				approved++
			}
		}
		rec := []string{
			inv.InvoiceNumber,
			inv.CarrierID,
			inv.InvoiceDate.Format(time.DateOnly),
			inv.DueDate.Format(time.DateOnly),
			string(inv.Status),
			strconv.Itoa(len(inv.FeeRecordIDs)),
			strconv.Itoa(approved),
			inv.TotalAmount.StringFixed(2),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFeesCSV writes one row per dispatch fee record.
func WriteFeesCSV(w io.Writer, fees []model.DispatchFeeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeeHeader); err != nil {
		return err
	}
	for _, f := range fees {
		rec := []string{
			f.ID,
			f.ScheduleEntryID,
			f.CarrierID,
			f.OriginalLoadAmount.StringFixed(2),
			f.FeeAmount.StringFixed(2),
			string(f.Status),
			f.CalculatedDate.Format(time.RFC3339),
			f.InvoiceID,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
