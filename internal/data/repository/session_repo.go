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

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByToken(ctx context.Context, token string) (*entity.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

type sessionDoc struct {
	ID        string `bson:"id"`
	UserID    string `bson:"user_id"`
	Token     string `bson:"session_token"`
	ExpiresAt string `bson:"expires_at"`
	CreatedAt string `bson:"created_at"`
}

func sessionToDoc(s *entity.Session) *sessionDoc {
	return &sessionDoc{
		ID:        s.ID,
		UserID:    s.UserID,
		Token:     s.Token,
		ExpiresAt: utils.FormatTime(s.ExpiresAt),
		CreatedAt: utils.FormatTime(s.CreatedAt),
	}
}

func (d *sessionDoc) toEntity() *entity.Session {
	return &entity.Session{
		ID:        d.ID,
		UserID:    d.UserID,
		Token:     d.Token,
		ExpiresAt: utils.ParseTime(d.ExpiresAt),
		CreatedAt: utils.ParseTime(d.CreatedAt),
	}
}

type sessionRepository struct {
	col *mongo.Collection
	log *zap.Logger
}

func NewSessionRepository(db *database.Mongo, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		col: db.Collection(colSessions),
		log: log.With(zap.String("repository", "session")),
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	if _, err := r.col.InsertOne(ctx, sessionToDoc(session)); err != nil {
		r.log.Error("Failed to create session",
			zap.Error(err),
			zap.String("user_id", session.UserID),
		)
		return fmt.Errorf("create session for user %s: %w", session.UserID, err)
	}
	return nil
}

func (r *sessionRepository) FindByToken(ctx context.Context, token string) (*entity.Session, error) {
	var doc sessionDoc
	err := r.col.FindOne(ctx, bson.M{"session_token": token}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find session by token", zap.Error(err))
		return nil, fmt.Errorf("find session: %w", err)
	}
	return doc.toEntity(), nil
}

func (r *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"session_token": token}); err != nil {
		r.log.Error("Failed to delete session", zap.Error(err))
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
