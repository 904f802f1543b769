package category

import (
	"context"
	"strings"

	"smartkheti_backend/internal/common"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Service defines category business logic.
type Service interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetCategoryByName(ctx context.Context, name string) (*Category, error)
	GetAllCategories(ctx context.Context) ([]Category, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.Named("CategoryService"),
	}
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	finalSlug := strings.TrimSpace(req.Slug)
	if finalSlug == "" {
		finalSlug = req.Name
	}
	category := &Category{
		Name: strings.TrimSpace(req.Name),
		Slug: slug.Make(finalSlug),
	}
	if category.Slug == "" {
		return nil, common.NewValidationAPIError(map[string]string{"slug": "The slug could not be derived from the name."})
	}

	if err := s.repo.Create(ctx, category); err != nil {
		s.logger.Warn("Failed to create category", zap.Error(err), zap.String("name", req.Name))
		return nil, err
	}
	s.logger.Info("Category created", zap.String("id", category.ID.String()), zap.String("name", category.Name))
	return category, nil
}

func (s *service) GetCategoryByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	return s.repo.FindByName(ctx, name)
}

func (s *service) GetAllCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to get all categories", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not retrieve categories.")
	}
	return categories, nil
}
