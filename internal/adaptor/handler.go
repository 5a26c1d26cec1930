package adaptor

import (
	"errors"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"net/http"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Category *CategoryHandler
	Event    *EventHandler
	Booking  *BookingHandler
	Payment  *PaymentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		Category: NewCategoryHandler(service.Category, log),
		Event:    NewEventHandler(service.Event, log),
		Booking:  NewBookingHandler(service.Booking, log),
		Payment:  NewPaymentHandler(service.Booking, log),
	}
}

// respondError maps the service error taxonomy to HTTP statuses.
func respondError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, apperr.ErrNotAuthenticated):
		log.Warn(operation+" failed - not authenticated", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, apperr.ErrNotAuthorized):
		log.Warn(operation+" failed - not authorized", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, apperr.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, apperr.ErrValidation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, apperr.ErrInsufficientInventory):
		log.Warn(operation+" failed - insufficient inventory", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, apperr.ErrConflict):
		log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, apperr.ErrUpstream):
		log.Error(operation+" failed - upstream provider", zap.Error(err))
		utils.ResponseBadGateway(w, err.Error())

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
