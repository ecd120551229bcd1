package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mariosyian/marketplace/internal/catalog"
	"github.com/Mariosyian/marketplace/internal/domain"
)

type mockStore struct {
	items map[string]*domain.Item
	delay map[string]time.Duration
	err   error
}

func (m *mockStore) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	if d, ok := m.delay[id]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.items[id]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	return item, nil
}

func (m *mockStore) ListItems(context.Context) ([]*domain.Item, error) {
	return nil, nil
}

func (m *mockStore) DecrementQuantity(context.Context, string) error {
	return nil
}

type recordingNotices struct {
	m        sync.Mutex
	messages []string
}

func (r *recordingNotices) Add(msg string) {
	r.m.Lock()
	defer r.m.Unlock()
	r.messages = append(r.messages, msg)
}

func storeWith(items ...*domain.Item) *mockStore {
	m := &mockStore{items: make(map[string]*domain.Item), delay: make(map[string]time.Duration)}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func TestResolve_TotalAndOrder(t *testing.T) {
	store := storeWith(
		&domain.Item{ID: "1", Name: "Keyboard", Price: 420, Quantity: 1},
		&domain.Item{ID: "2", Name: "Mouse", Price: 130, Quantity: 3},
	)
	// The first lookup finishes last; the result must stay in cart order.
	store.delay["1"] = 30 * time.Millisecond

	notices := &recordingNotices{}
	lines, total, err := NewResolver(store, notices).Resolve(context.Background(), []string{"1", "2"})
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Equal(t, "Keyboard", lines[0].Name)
	assert.Equal(t, "Mouse", lines[1].Name)
	assert.Equal(t, 550.0, total)
	assert.Empty(t, notices.messages)
}

func TestResolve_EmptyCart(t *testing.T) {
	lines, total, err := NewResolver(storeWith(), &recordingNotices{}).Resolve(context.Background(), nil)
	require.NoError(t, err)

	assert.Empty(t, lines)
	assert.Equal(t, 0.0, total)
}

func TestResolve_UnavailableItemsFlagged(t *testing.T) {
	store := storeWith(
		&domain.Item{ID: "1", Name: "Keyboard", Price: 420, Quantity: 1},
		&domain.Item{ID: "2", Name: "Mouse", Price: 130, Quantity: 0},
	)

	lines, total, err := NewResolver(store, &recordingNotices{}).Resolve(context.Background(), []string{"1", "2"})
	require.NoError(t, err)

	// Out-of-stock items stay in the result, flagged, and still count
	// towards the total; the order builder rejects them.
	require.Len(t, lines, 2)
	assert.False(t, lines[0].Unavailable)
	assert.True(t, lines[1].Unavailable)
	assert.Equal(t, 550.0, total)
}

func TestResolve_StaleReferenceDroppedWithNotice(t *testing.T) {
	store := storeWith(&domain.Item{ID: "1", Name: "Keyboard", Price: 420, Quantity: 1})

	notices := &recordingNotices{}
	lines, total, err := NewResolver(store, notices).Resolve(context.Background(), []string{"gone", "1"})
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Equal(t, "Keyboard", lines[0].Name)
	assert.Equal(t, 420.0, total)
	assert.Equal(t, []string{NoticeStaleCartItem}, notices.messages)
}

func TestResolve_LookupErrorFailsWholeResolution(t *testing.T) {
	store := storeWith(&domain.Item{ID: "1", Name: "Keyboard", Price: 420, Quantity: 1})
	store.err = errors.New("catalog offline")

	lines, total, err := NewResolver(store, &recordingNotices{}).Resolve(context.Background(), []string{"1"})

	require.Error(t, err)
	assert.Nil(t, lines)
	assert.Equal(t, 0.0, total)
}
