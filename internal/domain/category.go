package domain

import "time"

// Category represents a product category
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Icon        *string   `json:"icon" db:"icon"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryWithProducts is a category together with its active products
type CategoryWithProducts struct {
	*Category
	Products []*Product `json:"products"`
}

// CategoryView selects how much of a category is joined onto a product
type CategoryView int

const (
	// CategoryViewNone does not join the category at all
	CategoryViewNone CategoryView = iota
	// CategoryViewBrief carries id and name
	CategoryViewBrief
	// CategoryViewDetail adds the description
	CategoryViewDetail
	// CategoryViewFull carries every column
	CategoryViewFull
)

// CategoryRef is the category projection embedded in a product
type CategoryRef struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Icon        *string    `json:"icon,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Ref projects the category down to the requested view
func (c *Category) Ref(view CategoryView) *CategoryRef {
	if c == nil || view == CategoryViewNone {
		return nil
	}

	ref := &CategoryRef{ID: c.ID, Name: c.Name}
	if view >= CategoryViewDetail {
		ref.Description = c.Description
	}
	if view == CategoryViewFull {
		createdAt, updatedAt := c.CreatedAt, c.UpdatedAt
		ref.Icon = c.Icon
		ref.CreatedAt = &createdAt
		ref.UpdatedAt = &updatedAt
	}
	return ref
}
