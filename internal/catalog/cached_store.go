package catalog

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/Mariosyian/marketplace/internal/domain"
)

// CachedStore wraps a Store with a read-through item cache. Cache failures
// are logged and the underlying store answers; they never surface to the
// caller.
type CachedStore struct {
	store Store
	cache ItemCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCachedStore(store Store, cache ItemCache) *CachedStore {
	return &CachedStore{
		store: store,
		cache: cache,
	}
}

func (c *CachedStore) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	// Use singleflight so concurrent misses for the same item hit the
	// store once.
	v, err, _ := c.sfg.Do(id, func() (interface{}, error) {
		item, err := c.cache.Get(ctx, id)
		if err == nil {
			return item, nil
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("cache get error: %v", err)
		}

		item, err = c.store.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}

		go func() {
			if errSet := c.cache.Set(context.Background(), item); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return item, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Item), nil
}

// ListItems always goes to the store; only single-item lookups are cached.
func (c *CachedStore) ListItems(ctx context.Context) ([]*domain.Item, error) {
	return c.store.ListItems(ctx)
}

func (c *CachedStore) DecrementQuantity(ctx context.Context, id string) error {
	if err := c.store.DecrementQuantity(ctx, id); err != nil {
		return err
	}

	if err := c.cache.Delete(ctx, id); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
	return nil
}
