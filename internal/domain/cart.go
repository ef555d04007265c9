package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinCartQuantity = 1
	MaxCartQuantity = 99
	// MaxCartLines caps the number of distinct products in one cart
	MaxCartLines = 20
)

// CartItem is a per-user reservation of a product quantity, keyed by (UserID, ProductID)
type CartItem struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartLine is a cart item joined with the product it reserves
type CartLine struct {
	UserID      int64           `json:"user_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Cart is the reconciled view of a user's cart
type Cart struct {
	UserID    int64           `json:"user_id"`
	Items     []CartLine      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// LineSubtotal returns price * quantity
func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// NewCartLine joins a cart item with its product
func NewCartLine(item CartItem, product Product) CartLine {
	return CartLine{
		UserID:      item.UserID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    item.Quantity,
		Subtotal:    LineSubtotal(product.Price, item.Quantity),
	}
}

// NewCart builds the cart view and its aggregates from reconciled lines
func NewCart(userID int64, lines []CartLine) *Cart {
	cart := &Cart{
		UserID: userID,
		Items:  lines,
		Total:  decimal.Zero,
	}
	if cart.Items == nil {
		cart.Items = []CartLine{}
	}
	for _, line := range lines {
		cart.Total = cart.Total.Add(line.Subtotal)
		cart.ItemCount += line.Quantity
	}
	return cart
}
