package catalog

import (
	"context"
	"errors"

	"github.com/Mariosyian/marketplace/internal/domain"
)

// ItemCache caches single-item lookups in front of a Store.
type ItemCache interface {
	Get(ctx context.Context, id string) (*domain.Item, error)
	Set(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id string) error
}

var ErrCacheMiss = errors.New("cache miss")
