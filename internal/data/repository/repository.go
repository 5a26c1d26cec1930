package repository

import (
	"event-ticketing/pkg/database"

	"go.uber.org/zap"
)

// Collection names. Entities are keyed by opaque string ids in an `id`
// field; timestamps persist as ISO-8601 strings.
const (
	colUsers           = "users"
	colSessions        = "sessions"
	colCategories      = "categories"
	colEvents          = "events"
	colTicketTiers     = "ticket_tiers"
	colBookings        = "bookings"
	colPaymentSessions = "payment_sessions"
)

type Repository struct {
	User           UserRepository
	Session        SessionRepository
	Category       CategoryRepository
	Event          EventRepository
	Tier           TierRepository
	Booking        BookingRepository
	PaymentSession PaymentSessionRepository
}

func NewRepository(db *database.Mongo, log *zap.Logger) *Repository {
	return &Repository{
		User:           NewUserRepository(db, log),
		Session:        NewSessionRepository(db, log),
		Category:       NewCategoryRepository(db, log),
		Event:          NewEventRepository(db, log),
		Tier:           NewTierRepository(db, log),
		Booking:        NewBookingRepository(db, log),
		PaymentSession: NewPaymentSessionRepository(db, log),
	}
}
