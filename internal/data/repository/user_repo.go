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

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Count(ctx context.Context) (int64, error)
	UpdateRole(ctx context.Context, id string, role entity.UserRole) error
}

type userDoc struct {
	ID        string  `bson:"id"`
	Email     string  `bson:"email"`
	Name      string  `bson:"name"`
	Picture   *string `bson:"picture,omitempty"`
	Role      string  `bson:"role"`
	CreatedAt string  `bson:"created_at"`
}

func userToDoc(u *entity.User) *userDoc {
	return &userDoc{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		Role:      string(u.Role),
		CreatedAt: utils.FormatTime(u.CreatedAt),
	}
}

func (d *userDoc) toEntity() *entity.User {
	return &entity.User{
		ID:        d.ID,
		Email:     d.Email,
		Name:      d.Name,
		Picture:   d.Picture,
		Role:      entity.UserRole(d.Role),
		CreatedAt: utils.ParseTime(d.CreatedAt),
	}
}

type userRepository struct {
	col *mongo.Collection
	log *zap.Logger
}

func NewUserRepository(db *database.Mongo, log *zap.Logger) UserRepository {
	return &userRepository{
		col: db.Collection(colUsers),
		log: log.With(zap.String("repository", "user")),
	}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if _, err := r.col.InsertOne(ctx, userToDoc(user)); err != nil {
		r.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var doc userDoc
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id, err)
	}
	return doc.toEntity(), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var doc userDoc
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}
	return doc.toEntity(), nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		r.log.Error("Failed to count users", zap.Error(err))
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role entity.UserRole) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"role": string(role)}},
	)
	if err != nil {
		r.log.Error("Failed to update user role",
			zap.Error(err),
			zap.String("user_id", id),
			zap.String("role", string(role)),
		)
		return fmt.Errorf("update role for user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update role: user %s not found", id)
	}
	return nil
}
