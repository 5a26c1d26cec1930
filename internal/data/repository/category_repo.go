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

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]*entity.Category, error)
	SeedDefaults(ctx context.Context) error
}

type categoryDoc struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

type categoryRepository struct {
	col *mongo.Collection
	log *zap.Logger
}

func NewCategoryRepository(db *database.Mongo, log *zap.Logger) CategoryRepository {
	return &categoryRepository{
		col: db.Collection(colCategories),
		log: log.With(zap.String("repository", "category")),
	}
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]*entity.Category, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		r.log.Error("Failed to find categories", zap.Error(err))
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer cur.Close(ctx)

	var categories []*entity.Category
	for cur.Next(ctx) {
		var doc categoryDoc
		if err := cur.Decode(&doc); err != nil {
			r.log.Error("Failed to decode category", zap.Error(err))
			return nil, fmt.Errorf("decode category: %w", err)
		}
		categories = append(categories, &entity.Category{ID: doc.ID, Name: doc.Name})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// SeedDefaults inserts the default category set when the collection is empty.
func (r *categoryRepository) SeedDefaults(ctx context.Context) error {
	count, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	docs := make([]interface{}, len(entity.DefaultCategories))
	for i, name := range entity.DefaultCategories {
		docs[i] = &categoryDoc{ID: utils.GenerateID(), Name: name}
	}

	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		r.log.Error("Failed to seed categories", zap.Error(err))
		return fmt.Errorf("seed categories: %w", err)
	}

	r.log.Info("Seeded default categories", zap.Int("count", len(docs)))
	return nil
}
