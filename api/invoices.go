package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
	"github.com/kilianp07/fleetledger/pkg/export"
)

type generateBody struct {
	CarrierID    string   `json:"carrier_id"`
	FeeRecordIDs []string `json:"fee_record_ids"`
}

type statusBody struct {
	Status string `json:"status"`
}

func invoiceFilter(r *http.Request) (store.InvoiceFilter, error) {
	q := r.URL.Query()
	f := store.InvoiceFilter{CarrierID: q.Get("carrier_id")}
	if raw := q.Get("status"); raw != "" {
		st, err := model.ParseInvoiceStatus(raw)
		if err != nil {
			return f, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
				WithDetails(map[string]string{"status": "is invalid"})
		}
		f.Status = st
	}
	return f, nil
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	f, err := invoiceFilter(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	invoices, err := h.ledger.Invoices(f)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// generateInvoice bills the listed fees, or every pending fee of the
// carrier when none are listed.
func (h *Handler) generateInvoice(w http.ResponseWriter, r *http.Request) {
	var body generateBody
	if err := decode(r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}
	s := sessionFrom(r)
	var (
		inv model.Invoice
		err error
	)
	if len(body.FeeRecordIDs) == 0 {
		inv, err = h.ledger.GenerateInvoiceForPending(s, body.CarrierID)
	} else {
		inv, err = h.ledger.GenerateInvoice(s, body.CarrierID, body.FeeRecordIDs)
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *Handler) overdueInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.ledger.OverdueInvoices()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if invoices == nil {
		invoices = []model.Invoice{}
	}
	writeJSON(w, http.StatusOK, invoices)
}

func (h *Handler) exportInvoices(w http.ResponseWriter, r *http.Request) {
	f, err := invoiceFilter(r)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	invoices, err := h.ledger.Invoices(f)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.csv"`)
	if err := export.WriteInvoicesCSV(w, invoices); err != nil {
		h.log.Errorf("export invoices: %v", err)
	}
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.ledger.Invoice(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handler) setInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := decode(r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}
	inv, err := h.ledger.SetInvoiceStatus(sessionFrom(r), chi.URLParam(r, "id"), model.InvoiceStatus(body.Status))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handler) addLineItem(w http.ResponseWriter, r *http.Request) {
	var in model.ManualLineItemInput
	if err := decode(r, &in); err != nil {
		writeError(w, h.log, err)
		return
	}
	inv, item, err := h.ledger.AddManualLineItem(sessionFrom(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"invoice": inv, "line_item": item})
}

func (h *Handler) approveLineItem(w http.ResponseWriter, r *http.Request) {
	h.lineItem(w, r, h.ledger.ApproveManualLineItem)
}

func (h *Handler) rejectLineItem(w http.ResponseWriter, r *http.Request) {
	h.lineItem(w, r, h.ledger.RejectManualLineItem)
}

func (h *Handler) removeLineItem(w http.ResponseWriter, r *http.Request) {
	h.lineItem(w, r, h.ledger.RemoveManualLineItem)
}

func (h *Handler) lineItem(w http.ResponseWriter, r *http.Request, fn func(model.Session, string, string) (model.Invoice, error)) {
	inv, err := fn(sessionFrom(r), chi.URLParam(r, "id"), chi.URLParam(r, "item"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
