package checkout

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/Mariosyian/marketplace/internal/catalog"
	"github.com/Mariosyian/marketplace/internal/domain"
)

// NoticeStaleCartItem is recorded when cart entries no longer resolve
// against the catalog and are dropped from the result.
const NoticeStaleCartItem = "Some items in your cart are no longer available and were removed."

// NoticeRecorder is the notice-list surface the resolver needs.
type NoticeRecorder interface {
	Add(msg string)
}

// Resolver joins cart entries against the catalog.
type Resolver struct {
	store   catalog.Store
	notices NoticeRecorder
}

func NewResolver(store catalog.Store, notices NoticeRecorder) *Resolver {
	return &Resolver{store: store, notices: notices}
}

// Resolve looks up every cart ID and returns the resolved line items in cart
// order together with the sum of their unit prices. Lookups run
// concurrently; an infrastructure error on any of them fails the whole
// resolution with no partial result. IDs the catalog no longer knows are
// dropped from the result and recorded as a notice instead of propagating
// downstream. Items with no stock left stay in the result flagged
// Unavailable so the order builder can reject them.
func (r *Resolver) Resolve(ctx context.Context, ids []string) ([]domain.LineItem, float64, error) {
	if len(ids) == 0 {
		return []domain.LineItem{}, 0, nil
	}

	resolved := make([]*domain.Item, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			item, err := r.store.GetItem(gctx, id)
			if err != nil {
				if errors.Is(err, catalog.ErrItemNotFound) {
					// Stale reference; slot stays nil.
					return nil
				}
				return err
			}
			resolved[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	lines := make([]domain.LineItem, 0, len(ids))
	var total float64
	dropped := false
	for _, item := range resolved {
		if item == nil {
			dropped = true
			continue
		}
		lines = append(lines, domain.LineItem{
			Item:        *item,
			Unavailable: item.Quantity <= 0,
		})
		total += item.Price
	}

	if dropped && r.notices != nil {
		r.notices.Add(NoticeStaleCartItem)
	}

	return lines, total, nil
}
