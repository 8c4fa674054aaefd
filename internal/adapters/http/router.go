// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/handlers"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given.
func NewRouter(
	productHandler *handlers.ProductHandler,
	userHandler *handlers.UserHandler,
	orderHandler *handlers.OrderHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Static segments such as /search win over {id} in chi.
	r.Route("/products", func(r chi.Router) {
		r.Get("/", productHandler.ListProducts)
		r.Post("/", productHandler.CreateProduct)
		r.Get("/search", productHandler.SearchProducts)
		r.Get("/price-range", productHandler.ListByPriceRange)
		r.Get("/low-stock", productHandler.ListLowStock)
		r.Get("/{id}", productHandler.GetProduct)
		r.Put("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.ListUsers)
		r.Post("/", userHandler.CreateUser)
		r.Get("/search", userHandler.SearchUsers)
		r.Get("/username/{username}", userHandler.GetUserByUsername)
		r.Get("/{id}", userHandler.GetUser)
		r.Put("/{id}", userHandler.UpdateUser)
		r.Delete("/{id}", userHandler.DeleteUser)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", orderHandler.ListOrders)
		r.Post("/", orderHandler.CreateOrder)
		r.Get("/order-number/{orderNumber}", orderHandler.GetOrderByNumber)
		r.Get("/user/{userId}", orderHandler.ListByUser)
		r.Get("/status/{status}", orderHandler.ListByStatus)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Put("/{id}", orderHandler.UpdateOrder)
		r.Put("/{id}/status", orderHandler.UpdateOrderStatus)
		r.Delete("/{id}", orderHandler.DeleteOrder)
	})

	return r
}
