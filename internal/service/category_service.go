package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"food-catalog/internal/domain"
	"food-catalog/internal/repository"

	"go.uber.org/zap"
)

// CategoryInput carries the client-supplied category fields. Nil means the
// field was not sent.
type CategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.CategoryWithProducts, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	logger *zap.Logger,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// ListCategories returns all categories ordered by name
func (s *categoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, internalError("Error fetching categories", err)
	}
	return categories, nil
}

// GetCategory returns a category with its active products
func (s *categoryService) GetCategory(ctx context.Context, id int64) (*domain.CategoryWithProducts, error) {
	category, err := s.findCategory(ctx, id, "Error fetching category")
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListActiveByCategory(ctx, id)
	if err != nil {
		return nil, internalError("Error fetching category", err)
	}

	return &domain.CategoryWithProducts{Category: category, Products: products}, nil
}

// CreateCategory inserts a new category with a unique name
func (s *categoryService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, validationError("Category name is required", nil)
	}
	if err := validate.Struct(input); err != nil {
		return nil, validationError("Invalid category data", err)
	}

	if _, err := s.categoryRepo.FindByName(ctx, *input.Name); err == nil {
		return nil, duplicateError("Category already exists")
	} else if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, internalError("Error creating category", err)
	}

	category := &domain.Category{
		Name:        *input.Name,
		Description: input.Description,
		Icon:        input.Icon,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		// The pre-check can lose a race; the unique constraint settles it
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, duplicateError("Category already exists")
		}
		return nil, internalError("Error creating category", err)
	}

	s.logger.Info("Category created", zap.Int64("category_id", category.ID), zap.String("name", category.Name))
	return category, nil
}

// UpdateCategory applies the provided fields. An empty name keeps the
// current one.
func (s *categoryService) UpdateCategory(ctx context.Context, id int64, input CategoryInput) (*domain.Category, error) {
	category, err := s.findCategory(ctx, id, "Error updating category")
	if err != nil {
		return nil, err
	}

	if err := validate.Struct(input); err != nil {
		return nil, validationError("Invalid category data", err)
	}

	if input.Name != nil && *input.Name != "" && *input.Name != category.Name {
		if _, err := s.categoryRepo.FindByName(ctx, *input.Name); err == nil {
			return nil, duplicateError("Category name already exists")
		} else if !errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, internalError("Error updating category", err)
		}
		category.Name = *input.Name
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.Icon != nil {
		category.Icon = input.Icon
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryAlreadyExists):
			return nil, duplicateError("Category name already exists")
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, notFoundError("Category not found")
		}
		return nil, internalError("Error updating category", err)
	}

	return category, nil
}

// DeleteCategory removes a category that no product references
func (s *categoryService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.findCategory(ctx, id, "Error deleting category"); err != nil {
		return err
	}

	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return internalError("Error deleting category", err)
	}
	if count > 0 {
		return inUseError(count)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return notFoundError("Category not found")
		case errors.Is(err, repository.ErrCategoryInUse):
			// A product was added after the count
			count, countErr := s.categoryRepo.CountProducts(ctx, id)
			if countErr != nil || count == 0 {
				count = 1
			}
			return inUseError(count)
		}
		return internalError("Error deleting category", err)
	}

	s.logger.Info("Category deleted", zap.Int64("category_id", id))
	return nil
}

func (s *categoryService) findCategory(ctx context.Context, id int64, failure string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, notFoundError("Category not found")
		}
		return nil, internalError(failure, err)
	}
	return category, nil
}

func inUseError(count int) *Error {
	return conflictError(fmt.Sprintf("Cannot delete category. It has %d product(s).", count), count)
}
