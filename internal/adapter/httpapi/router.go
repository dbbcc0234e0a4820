// Package httpapi exposes the transfer engine and account read paths
// over HTTP. Handlers parse requests, call the use cases and translate
// domain errors into status codes; no business logic lives here.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes creates and returns the router for the banking service.
func Routes(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/transfers", h.CreateTransfer)
		r.Get("/accounts/{accountID}", h.GetAccount)
		r.Get("/accounts/{accountID}/transactions", h.ListAccountTransactions)
	})

	return r
}
