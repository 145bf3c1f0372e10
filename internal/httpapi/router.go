package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}", h.UpdateQuantity)
		r.Delete("/items/{productId}", h.RemoveItem)
	})

	r.Post("/api/checkout", h.Checkout)

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/{orderId}", h.GetOrder)
		r.Get("/{orderId}/transitions", h.GetTransitions)
		r.Put("/{orderId}/status", h.UpdateStatus)
	})

	r.Get("/api/buyers/{buyerId}/orders", h.ListBuyerOrders)
	r.Get("/api/sellers/{sellerId}/orders", h.ListSellerOrders)

	return r
}
