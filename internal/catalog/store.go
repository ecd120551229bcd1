package catalog

import (
	"context"
	"errors"

	"github.com/Mariosyian/marketplace/internal/domain"
)

var ErrItemNotFound = errors.New("item not found in catalog")

// Store defines the interface for catalog lookups. Consumers (the resolver
// and the web handlers) define what they need; implementations live here.
type Store interface {
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context) ([]*domain.Item, error)
	DecrementQuantity(ctx context.Context, id string) error
}
