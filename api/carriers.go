package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/fleetledger/core/model"
)

func (h *Handler) listCarriers(w http.ResponseWriter, r *http.Request) {
	cs, err := h.ledger.Carriers()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if bookable := r.URL.Query().Get("bookable"); bookable != "" {
		want := bookable == "true"
		kept := cs[:0]
		for _, c := range cs {
			if c.IsBookable == want {
				kept = append(kept, c)
			}
		}
		cs = kept
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *Handler) createCarrier(w http.ResponseWriter, r *http.Request) {
	var in model.CarrierInput
	if err := decode(r, &in); err != nil {
		writeError(w, h.log, err)
		return
	}
	c, err := h.ledger.CreateCarrier(sessionFrom(r), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) getCarrier(w http.ResponseWriter, r *http.Request) {
	c, err := h.ledger.Carrier(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) verifyCarrier(w http.ResponseWriter, r *http.Request) {
	out, err := h.ledger.VerifyCarrier(r.Context(), sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) pendingFees(w http.ResponseWriter, r *http.Request) {
	ids, err := h.ledger.PendingFeeIDs(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"fee_record_ids": ids})
}
