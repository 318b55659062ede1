/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the register frontend

ROUTE GROUPS:
  /api/days/*    Day lifecycle, stock, close-out, sales, expenses
  /api/sales/*   Mutations on an individual sale

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Day routes
		r.Route("/days", func(r chi.Router) {
			r.Post("/", h.OpenDay)
			r.Get("/{date}", h.GetDay)
			r.Get("/{date}/stock", h.GetStock)
			r.Post("/{date}/close", h.CloseDay)
			r.Get("/{date}/closeout", h.GetCloseOut)
			r.Get("/{date}/sales", h.ListSales)
			r.Post("/{date}/sales", h.RecordSale)
			r.Get("/{date}/expenses", h.ListExpenses)
			r.Post("/{date}/expenses", h.AddExpense)
		})

		// Sale routes
		r.Route("/sales", func(r chi.Router) {
			r.Put("/{id}", h.UpdateSale)
			r.Delete("/{id}", h.CancelSale)
			r.Post("/{id}/payment", h.SettleSale)
			r.Post("/{id}/ready", h.MarkSaleReady)
		})
	})

	return r
}
