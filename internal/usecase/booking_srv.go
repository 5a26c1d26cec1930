package usecase

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/provider"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

// BookingService is the booking and inventory reconciler: it turns a booking
// request into an inventory decrement plus a booking record, and reconciles
// payment provider state back into booking state without ever overselling a
// tier or double-confirming a booking.
type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error)
	GetUserBookings(ctx context.Context, userID string) ([]response.BookingResponse, error)

	InitiateCheckout(ctx context.Context, userID string, req *request.CheckoutRequest) (*response.CheckoutResponse, error)
	ReconcilePaymentStatus(ctx context.Context, sessionID string) (*response.PaymentStatusResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	RenderRedemption(ctx context.Context, userID, bookingID string) ([]byte, error)
}

type bookingService struct {
	repo    *repository.Repository
	tx      TxRunner
	payment provider.Payment
	config  *utils.Config
	log     *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	tx TxRunner,
	payment provider.Payment,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:    repo,
		tx:      tx,
		payment: payment,
		config:  config,
		log:     log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.CreateBookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, utils.FormatValidationErrors(errs))
	}

	event, err := s.repo.Event.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil || !event.Active() {
		return nil, fmt.Errorf("%w: event %s not found or inactive", apperr.ErrNotFound, req.EventID)
	}

	tier, err := s.repo.Tier.FindByID(ctx, req.TierID)
	if err != nil {
		return nil, fmt.Errorf("find tier: %w", err)
	}
	if tier == nil {
		return nil, fmt.Errorf("%w: ticket tier %s", apperr.ErrNotFound, req.TierID)
	}
	if tier.EventID != req.EventID {
		return nil, fmt.Errorf("%w: tier %s does not belong to event %s", apperr.ErrConflict, req.TierID, req.EventID)
	}

	totalPrice := tier.Price * float64(req.Quantity)

	booking := &entity.Booking{
		ID:         utils.GenerateID(),
		UserID:     userID,
		EventID:    req.EventID,
		TierID:     req.TierID,
		Quantity:   req.Quantity,
		TotalPrice: totalPrice,
		CreatedAt:  time.Now(),
	}

	if totalPrice == 0 {
		if err := s.createFreeBooking(ctx, booking, tier); err != nil {
			return nil, err
		}
	} else {
		// Paid path: inventory is checked but not reserved. The sold
		// counter moves only when payment reconciliation confirms.
		if tier.Remaining() < req.Quantity {
			return nil, fmt.Errorf("%w: %d requested, %d remaining", apperr.ErrInsufficientInventory, req.Quantity, tier.Remaining())
		}
		booking.Status = entity.BookingStatusPending
		if err := s.repo.Booking.Create(ctx, booking); err != nil {
			return nil, fmt.Errorf("create booking: %w", err)
		}
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("user_id", userID),
		zap.String("tier_id", req.TierID),
		zap.Int("quantity", req.Quantity),
		zap.Float64("total_price", totalPrice),
		zap.String("status", string(booking.Status)),
	)

	return &response.CreateBookingResponse{
		Booking:         response.BookingToResponse(booking),
		RequiresPayment: totalPrice > 0,
	}, nil
}

// createFreeBooking confirms a zero-price booking immediately. The sold
// counter moves first through the store's conditional increment, which
// rejects the booking atomically when inventory is short; the increment is
// compensated if the insert then fails.
func (s *bookingService) createFreeBooking(ctx context.Context, booking *entity.Booking, tier *entity.TicketTier) error {
	ok, err := s.repo.Tier.TryIncrementSold(ctx, tier.ID, booking.Quantity)
	if err != nil {
		return fmt.Errorf("reserve inventory: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %d requested for tier %s", apperr.ErrInsufficientInventory, booking.Quantity, tier.ID)
	}

	token := utils.GenerateRedemptionToken()
	booking.Status = entity.BookingStatusConfirmed
	booking.RedemptionToken = &token

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		if derr := s.repo.Tier.DecrementSold(ctx, tier.ID, booking.Quantity); derr != nil {
			s.log.Error("Failed to roll back sold count",
				zap.Error(derr),
				zap.String("tier_id", tier.ID),
				zap.Int("quantity", booking.Quantity),
			)
		}
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string) ([]response.BookingResponse, error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	responses := make([]response.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		resp := response.BookingToResponse(booking)

		// Best-effort joins: a failed lookup leaves the fields blank but the
		// listing still returns.
		event, err := s.repo.Event.FindByID(ctx, booking.EventID)
		if err != nil {
			s.log.Warn("Failed to join event into booking listing",
				zap.Error(err),
				zap.String("booking_id", booking.ID),
				zap.String("event_id", booking.EventID),
			)
		}
		if event != nil {
			resp.EventTitle = event.Title
			resp.EventDate = event.Date
			resp.EventLocation = event.Location
		}

		tier, err := s.repo.Tier.FindByID(ctx, booking.TierID)
		if err != nil {
			s.log.Warn("Failed to join tier into booking listing",
				zap.Error(err),
				zap.String("booking_id", booking.ID),
				zap.String("tier_id", booking.TierID),
			)
		}
		if tier != nil {
			resp.TierName = tier.Name
		}

		responses = append(responses, resp)
	}

	return responses, nil
}

func (s *bookingService) InitiateCheckout(ctx context.Context, userID string, req *request.CheckoutRequest) (*response.CheckoutResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Checkout validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, utils.FormatValidationErrors(errs))
	}

	booking, err := s.repo.Booking.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %s", apperr.ErrNotFound, req.BookingID)
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("%w: booking belongs to another user", apperr.ErrNotAuthorized)
	}
	if !booking.Pending() {
		return nil, fmt.Errorf("%w: booking already processed", apperr.ErrConflict)
	}

	metadata := map[string]string{
		"booking_id": booking.ID,
		"user_id":    userID,
	}

	checkout, err := s.payment.CreateCheckoutSession(ctx, &provider.CheckoutRequest{
		Amount:      booking.TotalPrice,
		Currency:    s.config.Payment.Currency,
		Description: fmt.Sprintf("Booking %s", booking.ID),
		SuccessURL:  req.OriginURL + "/booking-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   req.OriginURL + "/events",
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &entity.PaymentSession{
		ID:            checkout.SessionID,
		BookingID:     booking.ID,
		UserID:        userID,
		Amount:        booking.TotalPrice,
		Currency:      s.config.Payment.Currency,
		PaymentStatus: entity.PaymentStatusPending,
		Status:        entity.SessionStateInitiated,
		Metadata:      metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.PaymentSession.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store payment session: %w", err)
	}

	// Re-initiating checkout on a still-pending booking replaces the
	// reference; the previous session is orphaned, not cleaned up.
	if err := s.repo.Booking.SetPaymentSession(ctx, booking.ID, checkout.SessionID); err != nil {
		return nil, fmt.Errorf("stamp booking with session: %w", err)
	}

	s.log.Info("Checkout initiated",
		zap.String("booking_id", booking.ID),
		zap.String("session_id", checkout.SessionID),
		zap.Float64("amount", booking.TotalPrice),
	)

	return &response.CheckoutResponse{
		URL:       checkout.RedirectURL,
		SessionID: checkout.SessionID,
	}, nil
}

// ReconcilePaymentStatus syncs the stored payment session with the provider
// and, on payment, confirms the linked booking. Both the client poll and the
// webhook land here; the path is idempotent under replays for the same
// session id.
func (s *bookingService) ReconcilePaymentStatus(ctx context.Context, sessionID string) (*response.PaymentStatusResponse, error) {
	session, err := s.repo.PaymentSession.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("find payment session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: payment session %s", apperr.ErrNotFound, sessionID)
	}

	// Already reconciled as paid: inventory was counted once, never again.
	if session.Paid() {
		return &response.PaymentStatusResponse{
			Status:        string(entity.SessionStateCompleted),
			PaymentStatus: string(entity.PaymentStatusPaid),
			Amount:        session.Amount,
			Currency:      session.Currency,
		}, nil
	}

	status, err := s.payment.GetCheckoutStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.PaymentSession.UpdateStatus(ctx, sessionID, status.PaymentStatus, status.State); err != nil {
		return nil, fmt.Errorf("update payment session: %w", err)
	}

	if status.PaymentStatus == entity.PaymentStatusPaid {
		if err := s.confirmBooking(ctx, session.BookingID); err != nil {
			return nil, err
		}
	}
	// failed/expired never transition the booking: no hold was taken, so
	// there is nothing to release and the booking stays pending.

	return &response.PaymentStatusResponse{
		Status:        string(status.State),
		PaymentStatus: string(status.PaymentStatus),
		Amount:        status.Amount,
		Currency:      status.Currency,
	}, nil
}

// confirmBooking transitions the booking pending -> confirmed and moves the
// tier's sold counter, as one transaction. A replay that finds the booking
// already confirmed is a no-op.
func (s *bookingService) confirmBooking(ctx context.Context, bookingID string) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		booking, err := s.repo.Booking.FindByID(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("find booking: %w", err)
		}
		if booking == nil {
			return fmt.Errorf("%w: booking %s", apperr.ErrNotFound, bookingID)
		}
		if !booking.Pending() {
			// Poll raced the webhook; the earlier arrival won.
			return nil
		}

		confirmed, err := s.repo.Booking.Confirm(ctx, bookingID, utils.GenerateRedemptionToken())
		if err != nil {
			return err
		}
		if !confirmed {
			return nil
		}

		ok, err := s.repo.Tier.TryIncrementSold(ctx, booking.TierID, booking.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			// Inventory ran out between creation and payment. Abort the
			// transaction: the booking stays pending rather than oversell.
			s.log.Warn("Paid booking could not be confirmed, tier sold out",
				zap.String("booking_id", bookingID),
				zap.String("tier_id", booking.TierID),
				zap.Int("quantity", booking.Quantity),
			)
			return fmt.Errorf("%w: tier %s sold out", apperr.ErrInsufficientInventory, booking.TierID)
		}

		s.log.Info("Booking confirmed",
			zap.String("booking_id", bookingID),
			zap.String("tier_id", booking.TierID),
			zap.Int("quantity", booking.Quantity),
		)

		return nil
	})
}

// HandleWebhook verifies and parses a provider callback, then feeds the
// session through the same reconciliation path as the client poll.
func (s *bookingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	result, err := s.payment.VerifyWebhook(payload, signature)
	if err != nil {
		return err
	}

	s.log.Info("Webhook received",
		zap.String("session_id", result.SessionID),
		zap.String("event_type", result.EventType),
	)

	if result.EventType != "checkout.session.completed" {
		return nil
	}

	if _, err := s.ReconcilePaymentStatus(ctx, result.SessionID); err != nil {
		return fmt.Errorf("reconcile from webhook: %w", err)
	}

	return nil
}

// RenderRedemption encodes a confirmed booking's redemption token into a
// scannable PNG. Pure read: no state changes.
func (s *bookingService) RenderRedemption(ctx context.Context, userID, bookingID string) ([]byte, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %s", apperr.ErrNotFound, bookingID)
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("%w: booking belongs to another user", apperr.ErrNotAuthorized)
	}
	if !booking.Confirmed() || booking.RedemptionToken == nil {
		return nil, fmt.Errorf("%w: booking not confirmed", apperr.ErrConflict)
	}

	img, err := utils.RenderQR(*booking.RedemptionToken)
	if err != nil {
		return nil, fmt.Errorf("render redemption image: %w", err)
	}

	return img, nil
}
