package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	CategoryID  int64           `json:"category_id" db:"category_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProductPatch lists the product fields a client may change
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *int64
}

// CategoryPatch lists the category fields a client may change
type CategoryPatch struct {
	Name        *string
	Description *string
}

func (p *Product) SetName(name string) {
	p.Name = name
}

func (p *Product) SetDescription(description string) {
	p.Description = description
}

func (p *Product) SetPrice(price decimal.Decimal) {
	p.Price = price
}

func (p *Product) SetStock(stock int) {
	p.Stock = stock
}

func (p *Product) SetCategoryID(categoryID int64) {
	p.CategoryID = categoryID
}

func (c *Category) SetName(name string) {
	c.Name = name
}

func (c *Category) SetDescription(description string) {
	c.Description = description
}
