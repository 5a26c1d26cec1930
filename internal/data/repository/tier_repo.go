package repository

import (
	"context"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type TierRepository interface {
	Create(ctx context.Context, tier *entity.TicketTier) error
	FindByID(ctx context.Context, id string) (*entity.TicketTier, error)
	FindByEventID(ctx context.Context, eventID string) ([]*entity.TicketTier, error)

	// TryIncrementSold bumps quantity_sold by quantity only if the tier still
	// has that many tickets remaining, as one conditional update. Returns
	// false when the guard rejects the increment (insufficient inventory).
	TryIncrementSold(ctx context.Context, id string, quantity int) (bool, error)

	// DecrementSold compensates a prior increment when a paired write fails.
	DecrementSold(ctx context.Context, id string, quantity int) error
}

type tierDoc struct {
	ID                string  `bson:"id"`
	EventID           string  `bson:"event_id"`
	Name              string  `bson:"name"`
	Price             float64 `bson:"price"`
	QuantityAvailable int     `bson:"quantity_available"`
	QuantitySold      int     `bson:"quantity_sold"`
}

func tierToDoc(t *entity.TicketTier) *tierDoc {
	return &tierDoc{
		ID:                t.ID,
		EventID:           t.EventID,
		Name:              t.Name,
		Price:             t.Price,
		QuantityAvailable: t.QuantityAvailable,
		QuantitySold:      t.QuantitySold,
	}
}

func (d *tierDoc) toEntity() *entity.TicketTier {
	return &entity.TicketTier{
		ID:                d.ID,
		EventID:           d.EventID,
		Name:              d.Name,
		Price:             d.Price,
		QuantityAvailable: d.QuantityAvailable,
		QuantitySold:      d.QuantitySold,
	}
}

type tierRepository struct {
	col *mongo.Collection
	log *zap.Logger
}

func NewTierRepository(db *database.Mongo, log *zap.Logger) TierRepository {
	return &tierRepository{
		col: db.Collection(colTicketTiers),
		log: log.With(zap.String("repository", "tier")),
	}
}

func (r *tierRepository) Create(ctx context.Context, tier *entity.TicketTier) error {
	if _, err := r.col.InsertOne(ctx, tierToDoc(tier)); err != nil {
		r.log.Error("Failed to create ticket tier",
			zap.Error(err),
			zap.String("tier_id", tier.ID),
			zap.String("event_id", tier.EventID),
		)
		return fmt.Errorf("create tier %s: %w", tier.ID, err)
	}
	return nil
}

func (r *tierRepository) FindByID(ctx context.Context, id string) (*entity.TicketTier, error) {
	var doc tierDoc
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find tier by ID",
			zap.Error(err),
			zap.String("tier_id", id),
		)
		return nil, fmt.Errorf("find tier by ID %s: %w", id, err)
	}
	return doc.toEntity(), nil
}

func (r *tierRepository) FindByEventID(ctx context.Context, eventID string) ([]*entity.TicketTier, error) {
	cur, err := r.col.Find(ctx, bson.M{"event_id": eventID})
	if err != nil {
		r.log.Error("Failed to find tiers by event ID",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return nil, fmt.Errorf("find tiers for event %s: %w", eventID, err)
	}
	defer cur.Close(ctx)

	var tiers []*entity.TicketTier
	for cur.Next(ctx) {
		var doc tierDoc
		if err := cur.Decode(&doc); err != nil {
			r.log.Error("Failed to decode tier", zap.Error(err))
			return nil, fmt.Errorf("decode tier: %w", err)
		}
		tiers = append(tiers, doc.toEntity())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate tiers: %w", err)
	}

	return tiers, nil
}

func (r *tierRepository) TryIncrementSold(ctx context.Context, id string, quantity int) (bool, error) {
	// The availability check and the increment are one conditional update so
	// concurrent requests against the same tier cannot oversell it: the guard
	// sold + quantity <= available is evaluated by the store atomically with
	// the $inc.
	filter := bson.M{
		"id": id,
		"$expr": bson.M{
			"$lte": bson.A{
				bson.M{"$add": bson.A{"$quantity_sold", quantity}},
				"$quantity_available",
			},
		},
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"quantity_sold": quantity},
	})
	if err != nil {
		r.log.Error("Failed to increment sold count",
			zap.Error(err),
			zap.String("tier_id", id),
			zap.Int("quantity", quantity),
		)
		return false, fmt.Errorf("increment sold for tier %s: %w", id, err)
	}

	return res.ModifiedCount == 1, nil
}

func (r *tierRepository) DecrementSold(ctx context.Context, id string, quantity int) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{"quantity_sold": -quantity}},
	)
	if err != nil {
		r.log.Error("Failed to decrement sold count",
			zap.Error(err),
			zap.String("tier_id", id),
			zap.Int("quantity", quantity),
		)
		return fmt.Errorf("decrement sold for tier %s: %w", id, err)
	}
	return nil
}
