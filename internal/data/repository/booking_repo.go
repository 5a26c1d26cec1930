package repository

import (
	"context"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"
	"event-ticketing/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id string) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID string) ([]*entity.Booking, error)

	// SetPaymentSession stamps the booking with its checkout session id.
	SetPaymentSession(ctx context.Context, id, sessionID string) error

	// Confirm transitions the booking pending -> confirmed and assigns the
	// redemption token, guarded on the current status so replays cannot
	// double-confirm. Returns false when the booking was not pending.
	Confirm(ctx context.Context, id, redemptionToken string) (bool, error)
}

type bookingDoc struct {
	ID               string  `bson:"id"`
	UserID           string  `bson:"user_id"`
	EventID          string  `bson:"event_id"`
	TierID           string  `bson:"tier_id"`
	Quantity         int     `bson:"quantity"`
	TotalPrice       float64 `bson:"total_price"`
	Status           string  `bson:"status"`
	PaymentSessionID *string `bson:"payment_session_id,omitempty"`
	RedemptionToken  *string `bson:"redemption_token,omitempty"`
	CreatedAt        string  `bson:"created_at"`
}

func bookingToDoc(b *entity.Booking) *bookingDoc {
	return &bookingDoc{
		ID:               b.ID,
		UserID:           b.UserID,
		EventID:          b.EventID,
		TierID:           b.TierID,
		Quantity:         b.Quantity,
		TotalPrice:       b.TotalPrice,
		Status:           string(b.Status),
		PaymentSessionID: b.PaymentSessionID,
		RedemptionToken:  b.RedemptionToken,
		CreatedAt:        utils.FormatTime(b.CreatedAt),
	}
}

func (d *bookingDoc) toEntity() *entity.Booking {
	return &entity.Booking{
		ID:               d.ID,
		UserID:           d.UserID,
		EventID:          d.EventID,
		TierID:           d.TierID,
		Quantity:         d.Quantity,
		TotalPrice:       d.TotalPrice,
		Status:           entity.BookingStatus(d.Status),
		PaymentSessionID: d.PaymentSessionID,
		RedemptionToken:  d.RedemptionToken,
		CreatedAt:        utils.ParseTime(d.CreatedAt),
	}
}

type bookingRepository struct {
	col *mongo.Collection
	log *zap.Logger
}

func NewBookingRepository(db *database.Mongo, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		col: db.Collection(colBookings),
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	if _, err := r.col.InsertOne(ctx, bookingToDoc(booking)); err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID),
			zap.String("user_id", booking.UserID),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID, err)
	}
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	var doc bookingDoc
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}
	return doc.toEntity(), nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID string) ([]*entity.Booking, error) {
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("find bookings for user %s: %w", userID, err)
	}
	defer cur.Close(ctx)

	var bookings []*entity.Booking
	for cur.Next(ctx) {
		var doc bookingDoc
		if err := cur.Decode(&doc); err != nil {
			r.log.Error("Failed to decode booking", zap.Error(err))
			return nil, fmt.Errorf("decode booking: %w", err)
		}
		bookings = append(bookings, doc.toEntity())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) SetPaymentSession(ctx context.Context, id, sessionID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"payment_session_id": sessionID}},
	)
	if err != nil {
		r.log.Error("Failed to set payment session on booking",
			zap.Error(err),
			zap.String("booking_id", id),
			zap.String("session_id", sessionID),
		)
		return fmt.Errorf("set payment session on booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("set payment session: booking %s not found", id)
	}
	return nil
}

func (r *bookingRepository) Confirm(ctx context.Context, id, redemptionToken string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"id": id, "status": string(entity.BookingStatusPending)},
		bson.M{"$set": bson.M{
			"status":           string(entity.BookingStatusConfirmed),
			"redemption_token": redemptionToken,
		}},
	)
	if err != nil {
		r.log.Error("Failed to confirm booking",
			zap.Error(err),
			zap.String("booking_id", id),
		)
		return false, fmt.Errorf("confirm booking %s: %w", id, err)
	}

	return res.ModifiedCount == 1, nil
}
