package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/fleetledger/core/model"
)

func (h *Handler) listSchedule(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.ScheduleEntries(r.URL.Query().Get("truck_id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) proposeEntry(w http.ResponseWriter, r *http.Request) {
	var d model.ScheduleDraft
	if err := decode(r, &d); err != nil {
		writeError(w, h.log, err)
		return
	}
	e, err := h.ledger.ProposeScheduleEntry(sessionFrom(r), d)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) reviseEntry(w http.ResponseWriter, r *http.Request) {
	var d model.ScheduleDraft
	if err := decode(r, &d); err != nil {
		writeError(w, h.log, err)
		return
	}
	e, err := h.ledger.ReviseScheduleEntry(sessionFrom(r), chi.URLParam(r, "id"), d)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteScheduleEntry(sessionFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) completeEntry(w http.ResponseWriter, r *http.Request) {
	res, err := h.ledger.CompleteScheduleEntry(sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
