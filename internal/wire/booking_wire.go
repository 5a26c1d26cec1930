package wire

import (
	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Public: signature-verified provider callback
	r.Post("/api/webhook/stripe", paymentHandler.StripeWebhook)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/api/bookings", bookingHandler.CreateBooking)
		r.Get("/api/bookings/my-bookings", bookingHandler.GetMyBookings)
		r.Get("/api/bookings/{id}/qr", bookingHandler.GetRedemptionQR)

		r.Post("/api/bookings/checkout", paymentHandler.InitiateCheckout)
		r.Get("/api/bookings/payment-status/{session_id}", paymentHandler.GetPaymentStatus)
	})
}
