package transport

import (
	"context"
	"io"

	"food-catalog/internal/domain"
	"food-catalog/internal/media"
	"food-catalog/internal/service"
)

// stubCategoryService answers with whatever the test sets
type stubCategoryService struct {
	list   func() ([]*domain.Category, error)
	get    func(id int64) (*domain.CategoryWithProducts, error)
	create func(in service.CategoryInput) (*domain.Category, error)
	update func(id int64, in service.CategoryInput) (*domain.Category, error)
	delete func(id int64) error
}

func (s *stubCategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.list()
}

func (s *stubCategoryService) GetCategory(ctx context.Context, id int64) (*domain.CategoryWithProducts, error) {
	return s.get(id)
}

func (s *stubCategoryService) CreateCategory(ctx context.Context, in service.CategoryInput) (*domain.Category, error) {
	return s.create(in)
}

func (s *stubCategoryService) UpdateCategory(ctx context.Context, id int64, in service.CategoryInput) (*domain.Category, error) {
	return s.update(id, in)
}

func (s *stubCategoryService) DeleteCategory(ctx context.Context, id int64) error {
	return s.delete(id)
}

// stubProductService records the decoded input and image it was called with
type stubProductService struct {
	list   func(filter domain.ProductFilter) ([]*domain.Product, error)
	get    func(id int64) (*domain.Product, error)
	create func(in service.ProductInput) (*domain.Product, error)
	update func(id int64, in service.ProductInput) (*domain.Product, error)
	delete func(id int64) error
	price  func(id int64, in service.PriceInput) (*domain.Product, error)

	image     *media.File
	imageBody []byte
}

func (s *stubProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	return s.list(filter)
}

func (s *stubProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.get(id)
}

func (s *stubProductService) CreateProduct(ctx context.Context, in service.ProductInput, image *media.File) (*domain.Product, error) {
	s.record(image)
	return s.create(in)
}

func (s *stubProductService) UpdateProduct(ctx context.Context, id int64, in service.ProductInput, image *media.File) (*domain.Product, error) {
	s.record(image)
	return s.update(id, in)
}

func (s *stubProductService) DeleteProduct(ctx context.Context, id int64) error {
	return s.delete(id)
}

func (s *stubProductService) UpdateProductPrice(ctx context.Context, id int64, in service.PriceInput) (*domain.Product, error) {
	return s.price(id, in)
}

func (s *stubProductService) record(image *media.File) {
	s.image = image
	if image != nil {
		s.imageBody, _ = io.ReadAll(image.Body)
	}
}
