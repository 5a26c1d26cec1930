package usecase

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"sync"
	"testing"
	"time"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/pkg/utils"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type bookingFixture struct {
	svc      BookingService
	repo     *repository.Repository
	tiers    *fakeTierRepo
	bookings *fakeBookingRepo
	payments *fakePaymentSessionRepo
	provider *fakePayment

	userID  string
	eventID string
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	repo, _, events, tiers, bookings, payments := newTestRepository()
	prov := newFakePayment()
	tx := &rollbackTx{bookings: bookings, tiers: tiers}

	fx := &bookingFixture{
		svc:      NewBookingService(repo, tx, prov, testConfig(), testLogger()),
		repo:     repo,
		tiers:    tiers,
		bookings: bookings,
		payments: payments,
		provider: prov,
		userID:   utils.GenerateID(),
		eventID:  utils.GenerateID(),
	}

	require.NoError(t, events.Create(context.Background(), &entity.Event{
		ID:        fx.eventID,
		CreatorID: utils.GenerateID(),
		Title:     "Gopher Conference",
		Date:      "2026-10-01T09:00:00Z",
		Location:  "Berlin",
		Category:  "Conference",
		Status:    entity.EventStatusActive,
		CreatedAt: time.Now(),
	}))

	return fx
}

func (fx *bookingFixture) addTier(t *testing.T, price float64, available, sold int) string {
	t.Helper()
	id := utils.GenerateID()
	require.NoError(t, fx.tiers.Create(context.Background(), &entity.TicketTier{
		ID:                id,
		EventID:           fx.eventID,
		Name:              "General",
		Price:             price,
		QuantityAvailable: available,
		QuantitySold:      sold,
	}))
	return id
}

func TestCreateBookingFreeTier(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 0, 10, 0)

	resp, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
		EventID:  fx.eventID,
		TierID:   tierID,
		Quantity: 2,
	})
	require.NoError(t, err)

	assert.False(t, resp.RequiresPayment)
	assert.Equal(t, string(entity.BookingStatusConfirmed), resp.Booking.Status)
	assert.Equal(t, float64(0), resp.Booking.TotalPrice)
	assert.Equal(t, 2, fx.tiers.sold(tierID))

	stored, err := fx.bookings.FindByID(context.Background(), resp.Booking.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Confirmed())
	require.NotNil(t, stored.RedemptionToken)
	assert.NotEmpty(t, *stored.RedemptionToken)
}

func TestCreateBookingPaidTier(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 25, 10, 0)

	resp, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
		EventID:  fx.eventID,
		TierID:   tierID,
		Quantity: 3,
	})
	require.NoError(t, err)

	assert.True(t, resp.RequiresPayment)
	assert.Equal(t, string(entity.BookingStatusPending), resp.Booking.Status)
	assert.Equal(t, float64(75), resp.Booking.TotalPrice)

	// No reservation until payment reconciles.
	assert.Equal(t, 0, fx.tiers.sold(tierID))

	stored, err := fx.bookings.FindByID(context.Background(), resp.Booking.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Nil(t, stored.RedemptionToken)
}

func TestCreateBookingInsufficientInventory(t *testing.T) {
	fx := newBookingFixture(t)

	t.Run("free tier", func(t *testing.T) {
		tierID := fx.addTier(t, 0, 10, 8)

		_, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
			EventID:  fx.eventID,
			TierID:   tierID,
			Quantity: 3,
		})
		require.ErrorIs(t, err, apperr.ErrInsufficientInventory)
		assert.Equal(t, 8, fx.tiers.sold(tierID))
	})

	t.Run("paid tier", func(t *testing.T) {
		tierID := fx.addTier(t, 40, 5, 5)

		_, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
			EventID:  fx.eventID,
			TierID:   tierID,
			Quantity: 1,
		})
		require.ErrorIs(t, err, apperr.ErrInsufficientInventory)
	})

	// Failed attempts leave no booking behind.
	bookings, err := fx.bookings.FindByUserID(context.Background(), fx.userID)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestCreateBookingRejectsBadReferences(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 0, 10, 0)

	t.Run("unknown event", func(t *testing.T) {
		_, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
			EventID:  utils.GenerateID(),
			TierID:   tierID,
			Quantity: 1,
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("unknown tier", func(t *testing.T) {
		_, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
			EventID:  fx.eventID,
			TierID:   utils.GenerateID(),
			Quantity: 1,
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("tier from another event", func(t *testing.T) {
		otherTier := utils.GenerateID()
		require.NoError(t, fx.tiers.Create(context.Background(), &entity.TicketTier{
			ID:                otherTier,
			EventID:           utils.GenerateID(),
			Name:              "VIP",
			Price:             100,
			QuantityAvailable: 5,
		}))

		_, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
			EventID:  fx.eventID,
			TierID:   otherTier,
			Quantity: 1,
		})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("cancelled event", func(t *testing.T) {
		require.NoError(t, fx.repo.Event.UpdateStatus(context.Background(), fx.eventID, entity.EventStatusCancelled))

		_, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
			EventID:  fx.eventID,
			TierID:   tierID,
			Quantity: 1,
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

// Ten tickets, twenty concurrent single-ticket requests: exactly ten succeed
// and the sold counter lands exactly on capacity.
func TestCreateBookingNeverOversells(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 0, 10, 0)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.svc.CreateBooking(context.Background(), utils.GenerateID(), &request.CreateBookingRequest{
				EventID:  fx.eventID,
				TierID:   tierID,
				Quantity: 1,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, apperr.ErrInsufficientInventory)
			rejected++
		}
	}

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, rejected)
	assert.Equal(t, 10, fx.tiers.sold(tierID))
}

func (fx *bookingFixture) createPaidBooking(t *testing.T, tierID string, quantity int) string {
	t.Helper()
	resp, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
		EventID:  fx.eventID,
		TierID:   tierID,
		Quantity: quantity,
	})
	require.NoError(t, err)
	return resp.Booking.ID
}

func TestGetUserBookingsJoinsEventAndTier(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 0, 10, 0)

	created, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
		EventID:  fx.eventID,
		TierID:   tierID,
		Quantity: 1,
	})
	require.NoError(t, err)

	bookings, err := fx.svc.GetUserBookings(context.Background(), fx.userID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, created.Booking.ID, bookings[0].ID)
	assert.Equal(t, "Gopher Conference", bookings[0].EventTitle)
	assert.Equal(t, "Berlin", bookings[0].EventLocation)
	assert.Equal(t, "General", bookings[0].TierName)
}

// A store failure during the listing join degrades to blank joined fields,
// but the failure is logged, not swallowed.
func TestGetUserBookingsJoinFailureIsLogged(t *testing.T) {
	repo, _, events, tiers, bookings, payments := newTestRepository()
	prov := newFakePayment()
	tx := &rollbackTx{bookings: bookings, tiers: tiers}

	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewBookingService(repo, tx, prov, testConfig(), zap.New(core))

	fx := &bookingFixture{
		svc:      svc,
		repo:     repo,
		tiers:    tiers,
		bookings: bookings,
		payments: payments,
		userID:   utils.GenerateID(),
		eventID:  utils.GenerateID(),
	}
	require.NoError(t, events.Create(context.Background(), &entity.Event{
		ID:        fx.eventID,
		CreatorID: utils.GenerateID(),
		Title:     "Gopher Conference",
		Status:    entity.EventStatusActive,
	}))
	tierID := fx.addTier(t, 0, 10, 0)

	created, err := svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
		EventID:  fx.eventID,
		TierID:   tierID,
		Quantity: 1,
	})
	require.NoError(t, err)

	events.findErr = errors.New("store unavailable")
	tiers.findErr = errors.New("store unavailable")

	listed, err := svc.GetUserBookings(context.Background(), fx.userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.Booking.ID, listed[0].ID)
	assert.Empty(t, listed[0].EventTitle)
	assert.Empty(t, listed[0].TierName)

	assert.Equal(t, 1, logs.FilterMessage("Failed to join event into booking listing").Len())
	assert.Equal(t, 1, logs.FilterMessage("Failed to join tier into booking listing").Len())
}

func TestInitiateCheckout(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 50, 10, 0)
	bookingID := fx.createPaidBooking(t, tierID, 2)

	resp, err := fx.svc.InitiateCheckout(context.Background(), fx.userID, &request.CheckoutRequest{
		BookingID: bookingID,
		OriginURL: "https://tickets.example.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.URL, resp.SessionID)

	// The provider was asked for the full booking amount and origin URLs.
	require.NotNil(t, fx.provider.lastCheckout)
	assert.Equal(t, float64(100), fx.provider.lastCheckout.Amount)
	assert.Equal(t, "usd", fx.provider.lastCheckout.Currency)
	assert.Contains(t, fx.provider.lastCheckout.SuccessURL, "https://tickets.example.com/booking-success")
	assert.Equal(t, bookingID, fx.provider.lastCheckout.Metadata["booking_id"])

	// The session is stored and the booking stamped with it.
	session, err := fx.payments.FindBySessionID(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, bookingID, session.BookingID)
	assert.Equal(t, entity.PaymentStatusPending, session.PaymentStatus)

	booking, err := fx.bookings.FindByID(context.Background(), bookingID)
	require.NoError(t, err)
	require.NotNil(t, booking.PaymentSessionID)
	assert.Equal(t, resp.SessionID, *booking.PaymentSessionID)
}

func TestInitiateCheckoutGuards(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 50, 10, 0)
	bookingID := fx.createPaidBooking(t, tierID, 1)

	t.Run("unknown booking", func(t *testing.T) {
		_, err := fx.svc.InitiateCheckout(context.Background(), fx.userID, &request.CheckoutRequest{
			BookingID: utils.GenerateID(),
			OriginURL: "https://tickets.example.com",
		})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("another user's booking", func(t *testing.T) {
		_, err := fx.svc.InitiateCheckout(context.Background(), utils.GenerateID(), &request.CheckoutRequest{
			BookingID: bookingID,
			OriginURL: "https://tickets.example.com",
		})
		assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	})

	t.Run("already confirmed booking", func(t *testing.T) {
		confirmed, err := fx.bookings.Confirm(context.Background(), bookingID, utils.GenerateRedemptionToken())
		require.NoError(t, err)
		require.True(t, confirmed)

		_, err = fx.svc.InitiateCheckout(context.Background(), fx.userID, &request.CheckoutRequest{
			BookingID: bookingID,
			OriginURL: "https://tickets.example.com",
		})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})
}

func (fx *bookingFixture) checkout(t *testing.T, bookingID string) string {
	t.Helper()
	resp, err := fx.svc.InitiateCheckout(context.Background(), fx.userID, &request.CheckoutRequest{
		BookingID: bookingID,
		OriginURL: "https://tickets.example.com",
	})
	require.NoError(t, err)
	return resp.SessionID
}

func TestReconcilePaymentStatusConfirmsOnPaid(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 50, 10, 0)
	bookingID := fx.createPaidBooking(t, tierID, 2)
	sessionID := fx.checkout(t, bookingID)

	fx.provider.setPaid(sessionID, 100, "usd")

	resp, err := fx.svc.ReconcilePaymentStatus(context.Background(), sessionID)
	require.NoError(t, err)

	assert.Equal(t, string(entity.SessionStateCompleted), resp.Status)
	assert.Equal(t, string(entity.PaymentStatusPaid), resp.PaymentStatus)

	booking, err := fx.bookings.FindByID(context.Background(), bookingID)
	require.NoError(t, err)
	assert.True(t, booking.Confirmed())
	require.NotNil(t, booking.RedemptionToken)
	assert.Equal(t, 2, fx.tiers.sold(tierID))
}

func TestReconcilePaymentStatusIdempotent(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 50, 10, 0)
	bookingID := fx.createPaidBooking(t, tierID, 2)
	sessionID := fx.checkout(t, bookingID)

	fx.provider.setPaid(sessionID, 100, "usd")

	// Webhook and client poll race each other in production; replay the
	// reconciliation and expect a single inventory movement.
	for i := 0; i < 3; i++ {
		resp, err := fx.svc.ReconcilePaymentStatus(context.Background(), sessionID)
		require.NoError(t, err)
		assert.Equal(t, string(entity.PaymentStatusPaid), resp.PaymentStatus)
	}

	assert.Equal(t, 2, fx.tiers.sold(tierID))

	// Replays short-circuit on the stored session; the provider is only
	// consulted once.
	assert.Equal(t, 1, fx.provider.statusCalls)
}

func TestReconcilePaymentStatusPendingLeavesBookingAlone(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 50, 10, 0)
	bookingID := fx.createPaidBooking(t, tierID, 1)
	sessionID := fx.checkout(t, bookingID)

	resp, err := fx.svc.ReconcilePaymentStatus(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PaymentStatusPending), resp.PaymentStatus)

	booking, err := fx.bookings.FindByID(context.Background(), bookingID)
	require.NoError(t, err)
	assert.True(t, booking.Pending())
	assert.Equal(t, 0, fx.tiers.sold(tierID))
}

func TestReconcilePaymentStatusUnknownSession(t *testing.T) {
	fx := newBookingFixture(t)

	_, err := fx.svc.ReconcilePaymentStatus(context.Background(), "cs_test_missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReconcilePaymentStatusSoldOutAborts(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 50, 10, 0)
	bookingID := fx.createPaidBooking(t, tierID, 2)
	sessionID := fx.checkout(t, bookingID)

	// Inventory drains between booking creation and payment completion.
	ok, err := fx.tiers.TryIncrementSold(context.Background(), tierID, 9)
	require.NoError(t, err)
	require.True(t, ok)

	fx.provider.setPaid(sessionID, 100, "usd")

	_, err = fx.svc.ReconcilePaymentStatus(context.Background(), sessionID)
	require.ErrorIs(t, err, apperr.ErrInsufficientInventory)

	// The transaction aborted: no confirmation, no counter movement.
	booking, err := fx.bookings.FindByID(context.Background(), bookingID)
	require.NoError(t, err)
	assert.True(t, booking.Pending())
	assert.Equal(t, 9, fx.tiers.sold(tierID))
}

func TestHandleWebhookCompletedSession(t *testing.T) {
	fx := newBookingFixture(t)
	tierID := fx.addTier(t, 50, 10, 0)
	bookingID := fx.createPaidBooking(t, tierID, 1)
	sessionID := fx.checkout(t, bookingID)

	fx.provider.setPaid(sessionID, 50, "usd")

	// The fake provider reports the payload as the session id.
	require.NoError(t, fx.svc.HandleWebhook(context.Background(), []byte(sessionID), "sig"))

	booking, err := fx.bookings.FindByID(context.Background(), bookingID)
	require.NoError(t, err)
	assert.True(t, booking.Confirmed())
	assert.Equal(t, 1, fx.tiers.sold(tierID))
}

func TestRenderRedemption(t *testing.T) {
	fx := newBookingFixture(t)
	freeTier := fx.addTier(t, 0, 10, 0)
	paidTier := fx.addTier(t, 50, 10, 0)

	confirmed, err := fx.svc.CreateBooking(context.Background(), fx.userID, &request.CreateBookingRequest{
		EventID:  fx.eventID,
		TierID:   freeTier,
		Quantity: 1,
	})
	require.NoError(t, err)
	pendingID := fx.createPaidBooking(t, paidTier, 1)

	t.Run("confirmed booking renders a PNG", func(t *testing.T) {
		img, err := fx.svc.RenderRedemption(context.Background(), fx.userID, confirmed.Booking.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
	})

	t.Run("image decodes to the stored redemption token", func(t *testing.T) {
		img, err := fx.svc.RenderRedemption(context.Background(), fx.userID, confirmed.Booking.ID)
		require.NoError(t, err)

		stored, err := fx.bookings.FindByID(context.Background(), confirmed.Booking.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.RedemptionToken)

		assert.Equal(t, *stored.RedemptionToken, decodeRedemptionImage(t, img))
	})

	t.Run("pending booking has nothing to redeem", func(t *testing.T) {
		_, err := fx.svc.RenderRedemption(context.Background(), fx.userID, pendingID)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("another user's booking", func(t *testing.T) {
		_, err := fx.svc.RenderRedemption(context.Background(), utils.GenerateID(), confirmed.Booking.ID)
		assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := fx.svc.RenderRedemption(context.Background(), fx.userID, utils.GenerateID())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func decodeRedemptionImage(t *testing.T, data []byte) string {
	t.Helper()

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)

	return result.GetText()
}
