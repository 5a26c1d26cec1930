package wire

import (
	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireEvent(
	r chi.Router,
	eventHandler *adaptor.EventHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Public browse routes
	r.Get("/api/events", eventHandler.GetEvents)
	r.Get("/api/events/{id}", eventHandler.GetEvent)
	r.Get("/api/events/{id}/ticket-tiers", eventHandler.GetTiers)

	// Organizer routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.RequireOrganizer(log))

		r.Post("/api/events", eventHandler.CreateEvent)
		r.Get("/api/events/my-events", eventHandler.GetMyEvents)
		r.Put("/api/events/{id}", eventHandler.UpdateEvent)
		r.Delete("/api/events/{id}", eventHandler.CancelEvent)
		r.Post("/api/events/{id}/ticket-tiers", eventHandler.CreateTier)
	})
}
