package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Mariosyian/marketplace/internal/checkout"
)

var ErrNoApproveLink = errors.New("order response has no approve link")

// NewHTTPClient builds the outbound client shared by the token source and
// the order client, with tracing on the transport.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Client creates orders against the checkout provider. Calls go through a
// circuit breaker so a struggling provider sheds load fast instead of tying
// up request handlers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenSource
	breaker    *gobreaker.CircuitBreaker[*orderResponse]
}

func NewClient(baseURL string, tokens *TokenSource, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		breaker: gobreaker.NewCircuitBreaker[*orderResponse](gobreaker.Settings{
			Name: "checkout-orders",
		}),
	}
}

type orderResponse struct {
	ID    string `json:"id"`
	Links []link `json:"links"`
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// CreateOrder posts the order payload and returns the URL the buyer must be
// redirected to for approval. The bearer token is attached as-is; while
// unauthenticated the provider rejects the call and the error is surfaced as
// a generic checkout failure.
func (c *Client) CreateOrder(ctx context.Context, order *checkout.Order) (string, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("failed to marshal order: %w", err)
	}

	resp, err := c.breaker.Execute(func() (*orderResponse, error) {
		return c.postOrder(ctx, body)
	})
	if err != nil {
		return "", err
	}

	for _, l := range resp.Links {
		if l.Rel == "approve" {
			return l.Href, nil
		}
	}
	return "", ErrNoApproveLink
}

func (c *Client) postOrder(ctx context.Context, body []byte) (*orderResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.tokens.Token())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order creation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("order creation failed: status %d", resp.StatusCode)
	}

	var parsed orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	return &parsed, nil
}
