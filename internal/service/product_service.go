package service

import (
	"context"
	"errors"
	"strings"

	"food-catalog/internal/domain"
	"food-catalog/internal/media"
	"food-catalog/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxPrice is the first value that no longer fits NUMERIC(10,2)
var maxPrice = decimal.New(1, 8)

// ProductInput carries the client-supplied product fields. Nil means the
// field was not sent.
type ProductInput struct {
	Name          *string               `json:"name" validate:"omitempty,max=255"`
	Description   *string               `json:"description"`
	CategoryID    *int64                `json:"categoryId" validate:"omitempty,gt=0"`
	BasePrice     *domain.Money         `json:"basePrice"`
	CurrentPrice  *domain.Money         `json:"currentPrice"`
	CostPrice     *domain.Money         `json:"costPrice"`
	Stock         *int                  `json:"stock" validate:"omitempty,gte=0"`
	InitialStock  *int                  `json:"initialStock" validate:"omitempty,gte=0"`
	Unit          *string               `json:"unit" validate:"omitempty,max=50"`
	ExpiryDate    *domain.Date          `json:"expiryDate"`
	ShelfLife     *int                  `json:"shelfLife" validate:"omitempty,gte=0"`
	PricingMethod *domain.PricingMethod `json:"pricingMethod" validate:"omitempty,oneof=fixed dynamic ai"`
	IsActive      *bool                 `json:"isActive"`
}

// PriceInput is the body of a price-only update
type PriceInput struct {
	CurrentPrice  *domain.Money         `json:"currentPrice"`
	PricingMethod *domain.PricingMethod `json:"pricingMethod" validate:"omitempty,oneof=fixed dynamic ai"`
}

// ProductService defines the interface for product business logic
type ProductService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput, image *media.File) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput, image *media.File) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UpdateProductPrice(ctx context.Context, id int64, input PriceInput) (*domain.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	store        media.Store
	cleanup      *media.BestEffort
	logger       *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	store media.Store,
	cleanup *media.BestEffort,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		store:        store,
		cleanup:      cleanup,
		logger:       logger,
	}
}

// ListProducts returns products matching every set filter, newest first
func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, internalError("Error fetching products", err)
	}
	return products, nil
}

// GetProduct returns a product with its category name and description
func (s *productService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.findProduct(ctx, id, domain.CategoryViewDetail, "Error fetching product")
}

// CreateProduct validates the input, uploads the optional image and inserts
// the product. The image is removed again if the insert fails.
func (s *productService) CreateProduct(ctx context.Context, input ProductInput, image *media.File) (*domain.Product, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" ||
		input.CategoryID == nil || input.BasePrice == nil || input.CostPrice == nil ||
		input.ExpiryDate == nil || input.ShelfLife == nil {
		return nil, validationError("Required fields: name, categoryId, basePrice, costPrice, expiryDate, shelfLife", nil)
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	if _, err := s.findCategory(ctx, *input.CategoryID, "Error creating product"); err != nil {
		return nil, err
	}

	uploaded, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:          *input.Name,
		Description:   input.Description,
		CategoryID:    *input.CategoryID,
		BasePrice:     *input.BasePrice,
		CurrentPrice:  *input.BasePrice,
		CostPrice:     *input.CostPrice,
		Unit:          domain.DefaultUnit,
		ExpiryDate:    *input.ExpiryDate,
		ShelfLife:     *input.ShelfLife,
		PricingMethod: domain.PricingFixed,
		IsActive:      true,
	}
	if input.CurrentPrice != nil {
		product.CurrentPrice = *input.CurrentPrice
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	product.InitialStock = product.Stock
	if input.InitialStock != nil {
		product.InitialStock = *input.InitialStock
	}
	if input.Unit != nil && *input.Unit != "" {
		product.Unit = *input.Unit
	}
	if input.PricingMethod != nil {
		product.PricingMethod = *input.PricingMethod
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if uploaded != nil {
		product.Image = &uploaded.URL
		product.ImagePublicID = &uploaded.Key
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if uploaded != nil {
			s.cleanup.Delete(ctx, uploaded.Key, "create failed")
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, notFoundError("Category not found")
		}
		return nil, internalError("Error creating product", err)
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("category_id", product.CategoryID),
		zap.Bool("has_image", uploaded != nil),
	)

	return s.findProduct(ctx, product.ID, domain.CategoryViewFull, "Error creating product")
}

// UpdateProduct applies the provided fields. A new image replaces the old
// one, which is deleted only once the row points at the new image.
func (s *productService) UpdateProduct(ctx context.Context, id int64, input ProductInput, image *media.File) (*domain.Product, error) {
	product, err := s.findProduct(ctx, id, domain.CategoryViewNone, "Error updating product")
	if err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, validationError("Product name cannot be empty", nil)
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if _, err := s.findCategory(ctx, *input.CategoryID, "Error updating product"); err != nil {
			return nil, err
		}
	}

	uploaded, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	var oldKey string
	if product.ImagePublicID != nil {
		oldKey = *product.ImagePublicID
	}

	applyProductInput(product, input)
	if uploaded != nil {
		product.Image = &uploaded.URL
		product.ImagePublicID = &uploaded.Key
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if uploaded != nil {
			s.cleanup.Delete(ctx, uploaded.Key, "update failed")
		}
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, notFoundError("Product not found")
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, notFoundError("Category not found")
		}
		return nil, internalError("Error updating product", err)
	}

	if uploaded != nil && oldKey != "" && oldKey != uploaded.Key {
		s.cleanup.Delete(ctx, oldKey, "image replaced")
	}

	return s.findProduct(ctx, id, domain.CategoryViewFull, "Error updating product")
}

// DeleteProduct removes the product and then, best-effort, its image
func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.findProduct(ctx, id, domain.CategoryViewNone, "Error deleting product")
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return notFoundError("Product not found")
		}
		return internalError("Error deleting product", err)
	}

	if product.ImagePublicID != nil {
		s.cleanup.Delete(ctx, *product.ImagePublicID, "product deleted")
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// UpdateProductPrice changes only the current price and, optionally, the
// pricing method
func (s *productService) UpdateProductPrice(ctx context.Context, id int64, input PriceInput) (*domain.Product, error) {
	if input.CurrentPrice == nil {
		return nil, validationError("currentPrice is required", nil)
	}
	if err := validate.Struct(input); err != nil {
		return nil, validationError("Invalid price data", err)
	}
	if err := validatePrice("currentPrice", input.CurrentPrice); err != nil {
		return nil, err
	}

	product, err := s.findProduct(ctx, id, domain.CategoryViewNone, "Error updating product price")
	if err != nil {
		return nil, err
	}

	product.CurrentPrice = *input.CurrentPrice
	if input.PricingMethod != nil {
		product.PricingMethod = *input.PricingMethod
	}

	if err := s.productRepo.UpdatePrice(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFoundError("Product not found")
		}
		return nil, internalError("Error updating product price", err)
	}

	s.logger.Info("Product price updated",
		zap.Int64("product_id", id),
		zap.String("current_price", product.CurrentPrice.StringFixed(2)),
		zap.String("pricing_method", string(product.PricingMethod)),
	)
	return product, nil
}

func (s *productService) upload(ctx context.Context, image *media.File) (*media.UploadResult, error) {
	if image == nil {
		return nil, nil
	}

	result, err := s.store.Upload(ctx, image)
	if err != nil {
		if errors.Is(err, media.ErrInvalidFile) {
			return nil, validationError(err.Error(), err)
		}
		s.logger.Error("Image upload failed", zap.String("filename", image.Filename), zap.Error(err))
		return nil, uploadError(err)
	}
	return result, nil
}

func (s *productService) findProduct(ctx context.Context, id int64, view domain.CategoryView, failure string) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id, view)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFoundError("Product not found")
		}
		return nil, internalError(failure, err)
	}
	return product, nil
}

func (s *productService) findCategory(ctx context.Context, id int64, failure string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, notFoundError("Category not found")
		}
		return nil, internalError(failure, err)
	}
	return category, nil
}

func validateProductInput(input ProductInput) error {
	if err := validate.Struct(input); err != nil {
		return validationError("Invalid product data", err)
	}
	if input.CategoryID != nil && *input.CategoryID <= 0 {
		return validationError("categoryId must be a positive integer", nil)
	}

	for _, p := range []struct {
		field string
		value *domain.Money
	}{
		{"basePrice", input.BasePrice},
		{"currentPrice", input.CurrentPrice},
		{"costPrice", input.CostPrice},
	} {
		if err := validatePrice(p.field, p.value); err != nil {
			return err
		}
	}
	return nil
}

func validatePrice(field string, price *domain.Money) error {
	if price == nil {
		return nil
	}
	if price.IsNegative() {
		return validationError(field+" cannot be negative", nil)
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return validationError(field+" is too large", nil)
	}
	return nil
}

func applyProductInput(product *domain.Product, input ProductInput) {
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.BasePrice != nil {
		product.BasePrice = *input.BasePrice
	}
	if input.CurrentPrice != nil {
		product.CurrentPrice = *input.CurrentPrice
	}
	if input.CostPrice != nil {
		product.CostPrice = *input.CostPrice
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.InitialStock != nil {
		product.InitialStock = *input.InitialStock
	}
	if input.Unit != nil && *input.Unit != "" {
		product.Unit = *input.Unit
	}
	if input.ExpiryDate != nil {
		product.ExpiryDate = *input.ExpiryDate
	}
	if input.ShelfLife != nil {
		product.ShelfLife = *input.ShelfLife
	}
	if input.PricingMethod != nil {
		product.PricingMethod = *input.PricingMethod
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}
