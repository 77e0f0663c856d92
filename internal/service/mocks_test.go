package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"food-catalog/internal/domain"
	"food-catalog/internal/media"
	"food-catalog/internal/repository"

	"github.com/shopspring/decimal"
)

// Mock repositories for testing. Both return copies so callers cannot
// change stored rows without going through Update.
type mockCategoryRepository struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]*domain.Category
	products   *mockProductRepository
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[int64]*domain.Category)}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.nextID++
	category.ID = m.nextID
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	for _, c := range m.categories {
		if c.ID != category.ID && c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	category.UpdatedAt = time.Now()
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	if m.products != nil && m.products.countByCategory(id) > 0 {
		return repository.ErrCategoryInUse
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	categories := make([]*domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		cp := *c
		categories = append(categories, &cp)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *mockCategoryRepository) CountProducts(ctx context.Context, id int64) (int, error) {
	if m.products == nil {
		return 0, nil
	}
	return m.products.countByCategory(id), nil
}

type mockProductRepository struct {
	mu         sync.Mutex
	nextID     int64
	products   map[int64]*domain.Product
	categories *mockCategoryRepository

	// failWrites makes Create and Update fail as a broken database would
	failWrites error
}

func newMockProductRepository(categories *mockCategoryRepository) *mockProductRepository {
	m := &mockProductRepository{products: make(map[int64]*domain.Product), categories: categories}
	categories.products = m
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if m.failWrites != nil {
		return m.failWrites
	}
	if _, err := m.categories.FindByID(ctx, product.CategoryID); err != nil {
		return repository.ErrCategoryNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	product.ID = m.nextID
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	stored := *product
	stored.Category = nil
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if m.failWrites != nil {
		return m.failWrites
	}
	if _, err := m.categories.FindByID(ctx, product.CategoryID); err != nil {
		return repository.ErrCategoryNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	product.UpdatedAt = time.Now()
	stored := *product
	stored.Category = nil
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) UpdatePrice(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	stored.CurrentPrice = product.CurrentPrice
	stored.PricingMethod = product.PricingMethod
	stored.UpdatedAt = time.Now()
	product.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64, view domain.CategoryView) (*domain.Product, error) {
	m.mu.Lock()
	p, ok := m.products[id]
	m.mu.Unlock()
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return m.withCategory(ctx, p, view), nil
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	return m.listWhere(ctx, func(p *domain.Product) bool {
		return (filter.CategoryID == nil || p.CategoryID == *filter.CategoryID) &&
			(filter.PricingMethod == nil || p.PricingMethod == *filter.PricingMethod) &&
			(filter.IsActive == nil || p.IsActive == *filter.IsActive)
	}, domain.CategoryViewBrief), nil
}

func (m *mockProductRepository) ListActiveByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	return m.listWhere(ctx, func(p *domain.Product) bool {
		return p.CategoryID == categoryID && p.IsActive
	}, domain.CategoryViewNone), nil
}

func (m *mockProductRepository) listWhere(ctx context.Context, keep func(*domain.Product) bool, view domain.CategoryView) []*domain.Product {
	m.mu.Lock()
	matched := make([]*domain.Product, 0)
	for _, p := range m.products {
		if keep(p) {
			matched = append(matched, p)
		}
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	out := make([]*domain.Product, len(matched))
	for i, p := range matched {
		out[i] = m.withCategory(ctx, p, view)
	}
	return out
}

func (m *mockProductRepository) withCategory(ctx context.Context, p *domain.Product, view domain.CategoryView) *domain.Product {
	cp := *p
	if category, err := m.categories.FindByID(ctx, p.CategoryID); err == nil {
		cp.Category = category.Ref(view)
	}
	return &cp
}

func (m *mockProductRepository) countByCategory(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, p := range m.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n
}

// fakeStore records every upload and delete
type fakeStore struct {
	mu        sync.Mutex
	n         int
	uploads   []string
	deletes   []string
	objects   map[string]bool
	uploadErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string]bool)}
}

func (f *fakeStore) Upload(ctx context.Context, file *media.File) (*media.UploadResult, error) {
	if err := media.DefaultUploadOptions("Product", 0).ValidateFile(file); err != nil {
		return nil, err
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if _, err := io.Copy(io.Discard, file.Body); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.n++
	key := fmt.Sprintf("Product/img-%d", f.n)
	f.uploads = append(f.uploads, key)
	f.objects[key] = true
	return &media.UploadResult{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key]
}

var errDatabaseDown = errors.New("database is down")

func decimalCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
