package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kilianp07/fleetledger/core/brokerload"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
)

type acceptBody struct {
	CarrierID string `json:"carrier_id"`
	TruckID   string `json:"truck_id"`
	DriverID  string `json:"driver_id"`
}

func (h *Handler) listLoads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loads, err := h.ledger.BrokerLoads(store.LoadFilter{
		Status:    model.LoadStatus(q.Get("status")),
		CarrierID: q.Get("carrier_id"),
		ShipperID: q.Get("shipper_id"),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, loads)
}

func (h *Handler) postLoad(w http.ResponseWriter, r *http.Request) {
	var in model.BrokerLoadInput
	if err := decode(r, &in); err != nil {
		writeError(w, h.log, err)
		return
	}
	l, err := h.ledger.PostLoad(sessionFrom(r), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) getLoad(w http.ResponseWriter, r *http.Request) {
	l, err := h.ledger.BrokerLoad(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// acceptLoad books the load. The carrier defaults to the session's carrier.
func (h *Handler) acceptLoad(w http.ResponseWriter, r *http.Request) {
	var body acceptBody
	if err := decode(r, &body); err != nil {
		writeError(w, h.log, err)
		return
	}
	s := sessionFrom(r)
	if body.CarrierID == "" {
		body.CarrierID = s.CarrierID
	}
	b, err := h.ledger.AcceptLoad(s, brokerload.AcceptRequest{
		LoadID:    chi.URLParam(r, "id"),
		CarrierID: body.CarrierID,
		TruckID:   body.TruckID,
		DriverID:  body.DriverID,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) markInTransit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledger.MarkLoadInTransit)
}

func (h *Handler) markDelivered(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledger.MarkLoadDelivered)
}

func (h *Handler) cancelLoad(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledger.CancelLoad)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(model.Session, string) (model.BrokerLoad, error)) {
	l, err := fn(sessionFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
