package port

import (
	"context"

	"github.com/nikolayk812/shopcart/internal/domain"
)

// CartStorage persists a whole cart snapshot in a single slot.
type CartStorage interface {
	// Load returns an empty cart when the slot is absent or its content is malformed.
	Load(ctx context.Context) (domain.Cart, error)
	// Save overwrites the slot with the full cart.
	Save(ctx context.Context, cart domain.Cart) error
}

type InventoryClient interface {
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
}

type Notifier interface {
	Notify(ctx context.Context, notice domain.Notice)
}
