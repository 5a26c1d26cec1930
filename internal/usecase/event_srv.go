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
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type EventService interface {
	CreateEvent(ctx context.Context, userID string, req *request.CreateEventRequest) (*response.EventResponse, error)
	GetEvents(ctx context.Context, category, search string) ([]response.EventResponse, error)
	GetEvent(ctx context.Context, eventID string) (*response.EventResponse, error)
	UpdateEvent(ctx context.Context, userID string, role entity.UserRole, eventID string, req *request.UpdateEventRequest) (*response.EventResponse, error)
	CancelEvent(ctx context.Context, userID string, role entity.UserRole, eventID string) error
	GetMyEvents(ctx context.Context, userID string) ([]response.EventResponse, error)

	CreateTier(ctx context.Context, userID string, role entity.UserRole, eventID string, req *request.CreateTierRequest) (*response.TierResponse, error)
	GetTiers(ctx context.Context, eventID string) ([]response.TierResponse, error)
}

type eventService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewEventService(repo *repository.Repository, log *zap.Logger) EventService {
	return &eventService{
		repo: repo,
		log:  log.With(zap.String("service", "event")),
	}
}

func (s *eventService) CreateEvent(ctx context.Context, userID string, req *request.CreateEventRequest) (*response.EventResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create event validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, utils.FormatValidationErrors(errs))
	}

	event := &entity.Event{
		ID:          utils.GenerateID(),
		CreatorID:   userID,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Status:      entity.EventStatusActive,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Event.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID),
		zap.String("creator_id", userID),
		zap.String("title", event.Title),
	)

	resp := response.EventToResponse(event)
	return &resp, nil
}

func (s *eventService) GetEvents(ctx context.Context, category, search string) ([]response.EventResponse, error) {
	events, err := s.repo.Event.FindActive(ctx, category, search)
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}

	responses := make([]response.EventResponse, 0, len(events))
	for _, event := range events {
		creator, err := s.repo.User.FindByID(ctx, event.CreatorID)
		if err != nil {
			s.log.Warn("Failed to load event creator",
				zap.Error(err),
				zap.String("event_id", event.ID),
			)
			continue
		}
		responses = append(responses, response.EventWithCreatorToResponse(event, creator))
	}

	return responses, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*response.EventResponse, error) {
	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %s", apperr.ErrNotFound, eventID)
	}

	creator, err := s.repo.User.FindByID(ctx, event.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("load event creator: %w", err)
	}

	resp := response.EventWithCreatorToResponse(event, creator)
	return &resp, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, userID string, role entity.UserRole, eventID string, req *request.UpdateEventRequest) (*response.EventResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update event validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, utils.FormatValidationErrors(errs))
	}

	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %s", apperr.ErrNotFound, eventID)
	}

	if !event.EditableBy(userID, role) {
		return nil, fmt.Errorf("%w: not the event owner", apperr.ErrNotAuthorized)
	}

	applyEventUpdate(event, req)

	if err := s.repo.Event.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.log.Info("Event updated",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
	)

	resp := response.EventToResponse(event)
	return &resp, nil
}

func applyEventUpdate(event *entity.Event, req *request.UpdateEventRequest) {
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.ImageURL != nil {
		event.ImageURL = req.ImageURL
	}
	if req.Status != nil {
		event.Status = entity.EventStatus(*req.Status)
	}
}

// CancelEvent marks the event cancelled; events are never physically deleted.
func (s *eventService) CancelEvent(ctx context.Context, userID string, role entity.UserRole, eventID string) error {
	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return fmt.Errorf("%w: event %s", apperr.ErrNotFound, eventID)
	}

	if !event.EditableBy(userID, role) {
		return fmt.Errorf("%w: not the event owner", apperr.ErrNotAuthorized)
	}

	if err := s.repo.Event.UpdateStatus(ctx, eventID, entity.EventStatusCancelled); err != nil {
		return fmt.Errorf("cancel event: %w", err)
	}

	s.log.Info("Event cancelled",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
	)

	return nil
}

func (s *eventService) GetMyEvents(ctx context.Context, userID string) ([]response.EventResponse, error) {
	events, err := s.repo.Event.FindByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get my events: %w", err)
	}

	responses := make([]response.EventResponse, len(events))
	for i, event := range events {
		responses[i] = response.EventToResponse(event)
	}

	return responses, nil
}

// ==================== TICKET TIERS ====================

func (s *eventService) CreateTier(ctx context.Context, userID string, role entity.UserRole, eventID string, req *request.CreateTierRequest) (*response.TierResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create tier validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, utils.FormatValidationErrors(errs))
	}

	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %s", apperr.ErrNotFound, eventID)
	}

	if !event.EditableBy(userID, role) {
		return nil, fmt.Errorf("%w: not the event owner", apperr.ErrNotAuthorized)
	}

	tier := &entity.TicketTier{
		ID:                utils.GenerateID(),
		EventID:           eventID,
		Name:              req.Name,
		Price:             req.Price,
		QuantityAvailable: req.QuantityAvailable,
		QuantitySold:      0,
	}

	if err := s.repo.Tier.Create(ctx, tier); err != nil {
		return nil, fmt.Errorf("create tier: %w", err)
	}

	s.log.Info("Ticket tier created",
		zap.String("tier_id", tier.ID),
		zap.String("event_id", eventID),
		zap.Float64("price", tier.Price),
		zap.Int("quantity", tier.QuantityAvailable),
	)

	resp := response.TierToResponse(tier)
	return &resp, nil
}

func (s *eventService) GetTiers(ctx context.Context, eventID string) ([]response.TierResponse, error) {
	tiers, err := s.repo.Tier.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get tiers: %w", err)
	}

	responses := make([]response.TierResponse, len(tiers))
	for i, tier := range tiers {
		responses[i] = response.TierToResponse(tier)
	}

	return responses, nil
}
