package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the storefront catalog. The catalog and
// cart layers treat products as read-only snapshots; only the product
// service mutates them.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	CategoryID  uuid.UUID `json:"category_id" db:"category_id"`
	Category    string    `json:"category" db:"category"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	SellerID    uuid.UUID `json:"seller_id" db:"seller_id"`
	Seller      string    `json:"seller" db:"seller"`
	Featured    bool      `json:"featured" db:"featured"`
	Inventory   int       `json:"inventory" db:"inventory"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Category represents a product category. Products carry both the category
// ID (enforced by the schema) and the denormalized name the filter layer
// matches on.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
