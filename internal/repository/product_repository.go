package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"food-catalog/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	UpdatePrice(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64, view domain.CategoryView) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	ListActiveByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.name, p.description, p.category_id, p.base_price, p.current_price,
	p.cost_price, p.stock, p.initial_stock, p.unit, p.expiry_date, p.shelf_life,
	p.pricing_method, p.image, p.image_public_id, p.is_active, p.created_at, p.updated_at`

// selectProducts builds the SELECT ... FROM clause for the requested category projection
func selectProducts(view domain.CategoryView) string {
	switch view {
	case domain.CategoryViewBrief:
		return `SELECT ` + productColumns + `, c.id, c.name
		FROM products p JOIN categories c ON c.id = p.category_id`
	case domain.CategoryViewDetail:
		return `SELECT ` + productColumns + `, c.id, c.name, c.description
		FROM products p JOIN categories c ON c.id = p.category_id`
	case domain.CategoryViewFull:
		return `SELECT ` + productColumns + `, c.id, c.name, c.description, c.icon, c.created_at, c.updated_at
		FROM products p JOIN categories c ON c.id = p.category_id`
	default:
		return `SELECT ` + productColumns + ` FROM products p`
	}
}

func scanProduct(row rowScanner, view domain.CategoryView) (*domain.Product, error) {
	product := &domain.Product{}
	dest := []any{
		&product.ID,
		&product.Name,
		&product.Description,
		&product.CategoryID,
		&product.BasePrice,
		&product.CurrentPrice,
		&product.CostPrice,
		&product.Stock,
		&product.InitialStock,
		&product.Unit,
		&product.ExpiryDate,
		&product.ShelfLife,
		&product.PricingMethod,
		&product.Image,
		&product.ImagePublicID,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	}

	category := &domain.Category{}
	if view >= domain.CategoryViewBrief {
		dest = append(dest, &category.ID, &category.Name)
	}
	if view >= domain.CategoryViewDetail {
		dest = append(dest, &category.Description)
	}
	if view == domain.CategoryViewFull {
		dest = append(dest, &category.Icon, &category.CreatedAt, &category.UpdatedAt)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	product.Category = category.Ref(view)
	return product, nil
}

// Create inserts a new product and fills in the generated id and timestamps
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, category_id, base_price, current_price, cost_price,
			stock, initial_stock, unit, expiry_date, shelf_life, pricing_method, image, image_public_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.CategoryID,
		product.BasePrice,
		product.CurrentPrice,
		product.CostPrice,
		product.Stock,
		product.InitialStock,
		product.Unit,
		product.ExpiryDate,
		product.ShelfLife,
		string(product.PricingMethod),
		product.Image,
		product.ImagePublicID,
		product.IsActive,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update writes every mutable column of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, category_id = $4, base_price = $5, current_price = $6,
		    cost_price = $7, stock = $8, initial_stock = $9, unit = $10, expiry_date = $11,
		    shelf_life = $12, pricing_method = $13, image = $14, image_public_id = $15, is_active = $16
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.CategoryID,
		product.BasePrice,
		product.CurrentPrice,
		product.CostPrice,
		product.Stock,
		product.InitialStock,
		product.Unit,
		product.ExpiryDate,
		product.ShelfLife,
		string(product.PricingMethod),
		product.Image,
		product.ImagePublicID,
		product.IsActive,
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// UpdatePrice writes only current_price and pricing_method
func (r *productRepository) UpdatePrice(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET current_price = $2, pricing_method = $3
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.CurrentPrice,
		string(product.PricingMethod),
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update product price: %w", err)
	}

	return nil
}

// Delete removes a product from the database
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID, joining its category at the given view
func (r *productRepository) FindByID(ctx context.Context, id int64, view domain.CategoryView) (*domain.Product, error) {
	query := selectProducts(view) + ` WHERE p.id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id), view)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products matching every set filter, newest first, with a
// brief category projection
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	var conditions []string
	args := []any{}
	argIndex := 1

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}
	if filter.PricingMethod != nil {
		conditions = append(conditions, fmt.Sprintf("p.pricing_method = $%d", argIndex))
		args = append(args, string(*filter.PricingMethod))
		argIndex++
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}
	if filter.Search != "" {
		// ILIKE for case-insensitive search, wildcards in the input are literal
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", argIndex))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := selectProducts(domain.CategoryViewBrief) + whereClause + ` ORDER BY p.created_at DESC, p.id DESC`

	return r.queryProducts(ctx, query, domain.CategoryViewBrief, args...)
}

// ListActiveByCategory retrieves the active products of one category
func (r *productRepository) ListActiveByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error) {
	query := selectProducts(domain.CategoryViewNone) + ` WHERE p.category_id = $1 AND p.is_active = TRUE ORDER BY p.created_at DESC, p.id DESC`

	return r.queryProducts(ctx, query, domain.CategoryViewNone, categoryID)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, view domain.CategoryView, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows, view)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
