package repository

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"
	"event-ticketing/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type PaymentSessionRepository interface {
	Create(ctx context.Context, session *entity.PaymentSession) error
	FindBySessionID(ctx context.Context, sessionID string) (*entity.PaymentSession, error)
	UpdateStatus(ctx context.Context, sessionID string, paymentStatus entity.PaymentStatus, state entity.SessionState) error
}

type paymentSessionDoc struct {
	SessionID     string            `bson:"session_id"`
	BookingID     string            `bson:"booking_id"`
	UserID        string            `bson:"user_id"`
	Amount        float64           `bson:"amount"`
	Currency      string            `bson:"currency"`
	PaymentStatus string            `bson:"payment_status"`
	Status        string            `bson:"status"`
	Metadata      map[string]string `bson:"metadata,omitempty"`
	CreatedAt     string            `bson:"created_at"`
	UpdatedAt     string            `bson:"updated_at"`
}

func paymentSessionToDoc(p *entity.PaymentSession) *paymentSessionDoc {
	return &paymentSessionDoc{
		SessionID:     p.ID,
		BookingID:     p.BookingID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentStatus: string(p.PaymentStatus),
		Status:        string(p.Status),
		Metadata:      p.Metadata,
		CreatedAt:     utils.FormatTime(p.CreatedAt),
		UpdatedAt:     utils.FormatTime(p.UpdatedAt),
	}
}

func (d *paymentSessionDoc) toEntity() *entity.PaymentSession {
	return &entity.PaymentSession{
		ID:            d.SessionID,
		BookingID:     d.BookingID,
		UserID:        d.UserID,
		Amount:        d.Amount,
		Currency:      d.Currency,
		PaymentStatus: entity.PaymentStatus(d.PaymentStatus),
		Status:        entity.SessionState(d.Status),
		Metadata:      d.Metadata,
		CreatedAt:     utils.ParseTime(d.CreatedAt),
		UpdatedAt:     utils.ParseTime(d.UpdatedAt),
	}
}

type paymentSessionRepository struct {
	col *mongo.Collection
	log *zap.Logger
}

func NewPaymentSessionRepository(db *database.Mongo, log *zap.Logger) PaymentSessionRepository {
	return &paymentSessionRepository{
		col: db.Collection(colPaymentSessions),
		log: log.With(zap.String("repository", "payment_session")),
	}
}

func (r *paymentSessionRepository) Create(ctx context.Context, session *entity.PaymentSession) error {
	if _, err := r.col.InsertOne(ctx, paymentSessionToDoc(session)); err != nil {
		r.log.Error("Failed to create payment session",
			zap.Error(err),
			zap.String("session_id", session.ID),
			zap.String("booking_id", session.BookingID),
		)
		return fmt.Errorf("create payment session %s: %w", session.ID, err)
	}
	return nil
}

func (r *paymentSessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*entity.PaymentSession, error) {
	var doc paymentSessionDoc
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment session",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		return nil, fmt.Errorf("find payment session %s: %w", sessionID, err)
	}
	return doc.toEntity(), nil
}

func (r *paymentSessionRepository) UpdateStatus(ctx context.Context, sessionID string, paymentStatus entity.PaymentStatus, state entity.SessionState) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{
			"payment_status": string(paymentStatus),
			"status":         string(state),
			"updated_at":     utils.FormatTime(time.Now()),
		}},
	)
	if err != nil {
		r.log.Error("Failed to update payment session status",
			zap.Error(err),
			zap.String("session_id", sessionID),
			zap.String("payment_status", string(paymentStatus)),
		)
		return fmt.Errorf("update payment session %s: %w", sessionID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update payment session: session %s not found", sessionID)
	}
	return nil
}
