package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)
	r.Get("/restaurants/{id}/menu", handler.Menu)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Delete("/", handler.ClearCart)
		r.Post("/items", handler.AddItem)
		r.Delete("/items/{productID}", handler.RemoveItem)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/", handler.GetCheckout)
		r.Delete("/", handler.CancelCheckout)
		r.Post("/open", handler.OpenCheckout)
		r.Patch("/draft", handler.PatchDraft)
		r.Post("/next", handler.NextStep)
		r.Post("/back", handler.PrevStep)
		r.Post("/submit", handler.Submit)
		r.Get("/document", handler.ViewDocument)
		r.Get("/document/print", handler.PrintDocument)
		r.Post("/document/close", handler.CloseDocument)
	})

	r.Get("/tracker", handler.Tracker)
	r.Get("/tracker/ws", handler.TrackerSocket)
	r.Patch("/orders/{id}/status", handler.UpdateOrderStatus)
	return r
}
