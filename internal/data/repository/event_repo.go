package repository

import (
	"context"
	"fmt"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"
	"event-ticketing/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id string) (*entity.Event, error)
	FindActive(ctx context.Context, category, search string) ([]*entity.Event, error)
	FindByCreator(ctx context.Context, creatorID string) ([]*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	UpdateStatus(ctx context.Context, id string, status entity.EventStatus) error
}

type eventDoc struct {
	ID          string  `bson:"id"`
	CreatorID   string  `bson:"creator_id"`
	Title       string  `bson:"title"`
	Description string  `bson:"description"`
	Date        string  `bson:"date"`
	Location    string  `bson:"location"`
	Capacity    int     `bson:"capacity"`
	Category    string  `bson:"category"`
	ImageURL    *string `bson:"image_url,omitempty"`
	Status      string  `bson:"status"`
	CreatedAt   string  `bson:"created_at"`
}

func eventToDoc(e *entity.Event) *eventDoc {
	return &eventDoc{
		ID:          e.ID,
		CreatorID:   e.CreatorID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Capacity:    e.Capacity,
		Category:    e.Category,
		ImageURL:    e.ImageURL,
		Status:      string(e.Status),
		CreatedAt:   utils.FormatTime(e.CreatedAt),
	}
}

func (d *eventDoc) toEntity() *entity.Event {
	return &entity.Event{
		ID:          d.ID,
		CreatorID:   d.CreatorID,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		Location:    d.Location,
		Capacity:    d.Capacity,
		Category:    d.Category,
		ImageURL:    d.ImageURL,
		Status:      entity.EventStatus(d.Status),
		CreatedAt:   utils.ParseTime(d.CreatedAt),
	}
}

type eventRepository struct {
	col *mongo.Collection
	log *zap.Logger
}

func NewEventRepository(db *database.Mongo, log *zap.Logger) EventRepository {
	return &eventRepository{
		col: db.Collection(colEvents),
		log: log.With(zap.String("repository", "event")),
	}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	if _, err := r.col.InsertOne(ctx, eventToDoc(event)); err != nil {
		r.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("creator_id", event.CreatorID),
		)
		return fmt.Errorf("create event %s: %w", event.ID, err)
	}
	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*entity.Event, error) {
	var doc eventDoc
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.String("event_id", id),
		)
		return nil, fmt.Errorf("find event by ID %s: %w", id, err)
	}
	return doc.toEntity(), nil
}

// FindActive lists active events, optionally filtered by category and a
// case-insensitive search over title and description.
func (r *eventRepository) FindActive(ctx context.Context, category, search string) ([]*entity.Event, error) {
	filter := bson.M{"status": string(entity.EventStatusActive)}
	if category != "" {
		filter["category"] = category
	}
	if search != "" {
		regex := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"description": regex},
		}
	}

	return r.findMany(ctx, filter)
}

func (r *eventRepository) FindByCreator(ctx context.Context, creatorID string) ([]*entity.Event, error) {
	return r.findMany(ctx, bson.M{"creator_id": creatorID})
}

func (r *eventRepository) findMany(ctx context.Context, filter bson.M) ([]*entity.Event, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		r.log.Error("Failed to find events", zap.Error(err), zap.Any("filter", filter))
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cur.Close(ctx)

	var events []*entity.Event
	for cur.Next(ctx) {
		var doc eventDoc
		if err := cur.Decode(&doc); err != nil {
			r.log.Error("Failed to decode event", zap.Error(err))
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, doc.toEntity())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"id": event.ID}, eventToDoc(event))
	if err != nil {
		r.log.Error("Failed to update event",
			zap.Error(err),
			zap.String("event_id", event.ID),
		)
		return fmt.Errorf("update event %s: %w", event.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update event: event %s not found", event.ID)
	}
	return nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status entity.EventStatus) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		r.log.Error("Failed to update event status",
			zap.Error(err),
			zap.String("event_id", id),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update status for event %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update status: event %s not found", id)
	}
	return nil
}
