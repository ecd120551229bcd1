package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mariosyian/marketplace/internal/checkout"
	"github.com/Mariosyian/marketplace/internal/domain"
)

func testOrder(t *testing.T) *checkout.Order {
	t.Helper()
	lines := []domain.LineItem{
		{Item: domain.Item{ID: "1", Name: "Keyboard", Description: "A keyboard", Price: 420, Quantity: 1}},
	}
	order, err := checkout.BuildOrder(lines, 420, 10, domain.Customer{
		FirstName: "John", LastName: "Smith", Email: "john@smith.com",
	}, checkout.BuildConfig{BrandName: "mymarketplace"})
	require.NoError(t, err)
	return order
}

func TestCreateOrder_SelectsApproveLink(t *testing.T) {
	var gotAuth string
	var gotBody checkout.Order
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v2/checkout/orders", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{
			"id": "ORDER-1",
			"links": [
				{"href": "https://provider.example/self", "rel": "self", "method": "GET"},
				{"href": "https://provider.example/approve", "rel": "approve", "method": "GET"},
				{"href": "https://provider.example/capture", "rel": "capture", "method": "POST"}
			]
		}`))
	}))
	defer server.Close()

	tokens := &TokenSource{token: "test-token"}
	client := NewClient(server.URL, tokens, server.Client())

	approveURL, err := client.CreateOrder(context.Background(), testOrder(t))
	require.NoError(t, err)

	assert.Equal(t, "https://provider.example/approve", approveURL)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "CAPTURE", gotBody.Intent)
}

func TestCreateOrder_NoApproveLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "ORDER-1", "links": [{"href": "x", "rel": "self", "method": "GET"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &TokenSource{token: "test-token"}, server.Client())

	_, err := client.CreateOrder(context.Background(), testOrder(t))

	require.ErrorIs(t, err, ErrNoApproveLink)
}

func TestCreateOrder_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	// An absent token is sent as-is; the provider rejects it and the
	// failure surfaces as a plain error.
	client := NewClient(server.URL, &TokenSource{}, server.Client())

	_, err := client.CreateOrder(context.Background(), testOrder(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
