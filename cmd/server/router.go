package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/slotswap-api/internal/api"
	apiMiddleware "github.com/phrazzld/slotswap-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewRequestLogger(log.New(os.Stdout, "", log.LstdFlags)))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userService, app.logger)
	slotHandler := api.NewSlotHandler(app.slotService, app.logger)
	swapHandler := api.NewSwapHandler(app.swapService, app.logger)
	notificationHandler := api.NewNotificationHandler(app.hub, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/signup", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Slot endpoints
			r.Post("/slots", slotHandler.CreateSlot)
			r.Get("/slots", slotHandler.ListMySlots)
			r.Put("/slots/{id}", slotHandler.UpdateSlot)
			r.Delete("/slots/{id}", slotHandler.DeleteSlot)

			// Swap endpoints
			r.Get("/swaps/swappable-slots", swapHandler.ListSwappable)
			r.Post("/swaps/requests", swapHandler.ProposeSwap)
			r.Post("/swaps/requests/{id}/response", swapHandler.RespondSwap)
			r.Get("/swaps/incoming", swapHandler.ListIncoming)
			r.Get("/swaps/outgoing", swapHandler.ListOutgoing)

			// Live notifications
			r.Get("/ws", notificationHandler.Connect)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
