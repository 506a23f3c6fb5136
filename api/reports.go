package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

func (h *Handler) fleetReport(w http.ResponseWriter, r *http.Request) {
	out, err := h.ledger.FleetSummary()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) carrierReport(w http.ResponseWriter, r *http.Request) {
	out, err := h.ledger.CarrierSummary(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// utilisationReport defaults to the seven days before now.
func (h *Handler) utilisationReport(w http.ResponseWriter, r *http.Request) {
	to := h.ledger.Now()
	from := to.AddDate(0, 0, -7)
	q := r.URL.Query()
	for name, dst := range map[string]*time.Time{"from": &from, "to": &to} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, h.log, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid time").
				WithDetails(map[string]string{name: "must be RFC3339"}))
			return
		}
		*dst = t
	}
	out, err := h.ledger.TruckUtilisation(from, to)
	if err != nil {
		writeError(w, h.log, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
