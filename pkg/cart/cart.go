// Package cart holds a shopping cart in memory and mirrors it to a single
// key-value slot.
package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// DefaultKey is the storage slot the mobile app uses for its cart.
const DefaultKey = "@shoppingCart"

// Item is one product line in the cart.
type Item struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	ImageURL string          `json:"image_url"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns Price times Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Product describes an item being added. The store assigns the quantity.
type Product struct {
	ID       string          `json:"id" validate:"required"`
	Title    string          `json:"title"`
	ImageURL string          `json:"image_url"`
	Price    decimal.Decimal `json:"price"`
}

// Storage is the key-value store a cart is persisted to.
type Storage interface {
	// Get returns the value at key. found is false when nothing was stored.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set overwrites the value at key.
	Set(ctx context.Context, key, value string) error
}

var (
	// ErrNoStore is returned when the cart is accessed outside a store scope.
	ErrNoStore = errors.New("cart: no store in scope")
	// ErrCorruptSnapshot indicates the persisted value is not a cart.
	ErrCorruptSnapshot = errors.New("cart: persisted snapshot is corrupt")
	// ErrWrite wraps a failed write to the backing storage.
	ErrWrite = errors.New("cart: persisting snapshot failed")
	// ErrInvalidProduct is returned when a product fails validation.
	ErrInvalidProduct = errors.New("cart: invalid product")
)
