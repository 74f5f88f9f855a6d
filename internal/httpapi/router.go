package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(h.recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors)

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)
			r.Post("/auth/logout", h.Logout)
			r.Get("/reports/stock.xlsx", h.StockReport)
		})
	})

	return r
}
