package usecase

import (
	"context"
	"fmt"

	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/response"

	"go.uber.org/zap"
)

type CategoryService interface {
	GetCategories(ctx context.Context) ([]response.CategoryResponse, error)
	SeedDefaults(ctx context.Context) error
}

type categoryService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewCategoryService(repo *repository.Repository, log *zap.Logger) CategoryService {
	return &categoryService{
		repo: repo,
		log:  log.With(zap.String("service", "category")),
	}
}

func (s *categoryService) GetCategories(ctx context.Context) ([]response.CategoryResponse, error) {
	categories, err := s.repo.Category.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get categories", zap.Error(err))
		return nil, fmt.Errorf("get categories: %w", err)
	}

	responses := make([]response.CategoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = response.CategoryResponse{ID: c.ID, Name: c.Name}
	}

	return responses, nil
}

func (s *categoryService) SeedDefaults(ctx context.Context) error {
	return s.repo.Category.SeedDefaults(ctx)
}
