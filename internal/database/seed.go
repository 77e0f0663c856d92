package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// SeedCategory is one row of the default category set
type SeedCategory struct {
	Name        string
	Description string
	Icon        string
}

// DefaultCategories is the starter set inserted by cmd/seed
var DefaultCategories = []SeedCategory{
	{Name: "Vegetables", Description: "Fresh greens, roots and tubers", Icon: "🥬"},
	{Name: "Fruit", Description: "Domestic and imported fruit", Icon: "🍎"},
	{Name: "Meat", Description: "Fresh pork, beef and chicken", Icon: "🥩"},
	{Name: "Seafood", Description: "Fresh fish, shrimp and squid", Icon: "🐟"},
	{Name: "Dairy & Eggs", Description: "Milk products and eggs", Icon: "🥛"},
}

// SeedCategories inserts categories that do not exist yet, matched by name.
// It returns how many rows were inserted.
func SeedCategories(ctx context.Context, db *sql.DB, categories []SeedCategory, logger *zap.Logger) (int, error) {
	query := `
		INSERT INTO categories (name, description, icon)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`

	inserted := 0
	for _, c := range categories {
		result, err := db.ExecContext(ctx, query, c.Name, c.Description, c.Icon)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n > 0 {
			inserted++
			logger.Info("Seeded category", zap.String("name", c.Name))
		}
	}

	return inserted, nil
}
