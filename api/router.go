package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/fleetledger/core/ledger"
	"github.com/kilianp07/fleetledger/core/logger"
)

// Handler serves the ledger's HTTP surface.
type Handler struct {
	ledger *ledger.Ledger
	log    logger.Logger
}

// NewRouter mounts every route under /api.
func NewRouter(l *ledger.Ledger, log logger.Logger) http.Handler {
	h := &Handler{ledger: l, log: log}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Route("/carriers", func(r chi.Router) {
			r.Get("/", h.listCarriers)
			r.Post("/", h.createCarrier)
			r.Get("/{id}", h.getCarrier)
			r.Post("/{id}/verify", h.verifyCarrier)
			r.Get("/{id}/fees/pending", h.pendingFees)
		})
		r.Route("/schedule", func(r chi.Router) {
			r.Get("/", h.listSchedule)
			r.Post("/", h.proposeEntry)
			r.Put("/{id}", h.reviseEntry)
			r.Delete("/{id}", h.deleteEntry)
			r.Post("/{id}/complete", h.completeEntry)
		})
		r.Route("/loads", func(r chi.Router) {
			r.Get("/", h.listLoads)
			r.Post("/", h.postLoad)
			r.Get("/{id}", h.getLoad)
			r.Post("/{id}/accept", h.acceptLoad)
			r.Post("/{id}/in-transit", h.markInTransit)
			r.Post("/{id}/delivered", h.markDelivered)
			r.Post("/{id}/cancel", h.cancelLoad)
		})
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.listInvoices)
			r.Post("/", h.generateInvoice)
			r.Get("/overdue", h.overdueInvoices)
			r.Get("/export.csv", h.exportInvoices)
			r.Get("/{id}", h.getInvoice)
			r.Post("/{id}/status", h.setInvoiceStatus)
			r.Post("/{id}/line-items", h.addLineItem)
			r.Post("/{id}/line-items/{item}/approve", h.approveLineItem)
			r.Post("/{id}/line-items/{item}/reject", h.rejectLineItem)
			r.Delete("/{id}/line-items/{item}", h.removeLineItem)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Get("/carriers", h.fleetReport)
			r.Get("/carriers/{id}", h.carrierReport)
			r.Get("/utilisation", h.utilisationReport)
		})
	})
	return r
}
