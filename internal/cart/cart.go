package cart

import (
	"errors"
	"sync"
)

var ErrDuplicateItem = errors.New("item already in cart")

// NoticeDuplicateItem is recorded when an item is added twice.
const NoticeDuplicateItem = "This item already exists in your cart."

// Cart is an ordered sequence of unique item IDs for one session. All
// methods are safe for concurrent use; every mutation takes the lock so at
// most one mutator runs at a time.
type Cart struct {
	mu  sync.Mutex
	ids []string
}

func New() *Cart {
	return &Cart{}
}

// Add appends an item ID. Adding an ID that is already present returns
// ErrDuplicateItem and leaves the cart unchanged. No catalog existence check
// happens here; unresolvable IDs are dealt with at resolve time.
func (c *Cart) Add(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.ids {
		if existing == id {
			return ErrDuplicateItem
		}
	}
	c.ids = append(c.ids, id)
	return nil
}

// Remove deletes the first occurrence of id; no-op when absent.
func (c *Cart) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.ids {
		if existing == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			return
		}
	}
}

// Clear empties the cart. Called after a successful purchase.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = nil
}

// IDs returns a copy of the cart contents in insertion order.
func (c *Cart) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	return ids
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}
