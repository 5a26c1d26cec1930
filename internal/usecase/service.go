package usecase

import (
	"context"

	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/provider"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

// TxRunner runs a function inside a store transaction. Satisfied by
// database.Mongo; faked in tests.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	Auth     AuthService
	Category CategoryService
	Event    EventService
	Booking  BookingService
}

func NewService(
	repo *repository.Repository,
	tx TxRunner,
	identity provider.Identity,
	payment provider.Payment,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:     NewAuthService(repo, tx, identity, config, log),
		Category: NewCategoryService(repo, log),
		Event:    NewEventService(repo, log),
		Booking:  NewBookingService(repo, tx, payment, config, log),
	}
}
