package paypal

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// defaultRefreshInterval is used until the provider tells us how long a
// token actually lives.
const defaultRefreshInterval = 3600 * time.Second

// TokenSource holds the process-wide bearer token for the checkout provider
// and keeps it fresh with a client-credentials exchange on a background
// timer. Token never blocks: while unauthenticated it returns "" and the
// provider rejects the call, which checkout surfaces as a generic failure.
type TokenSource struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu       sync.RWMutex
	token    string
	interval time.Duration
}

func NewTokenSource(baseURL, clientID, clientSecret string, httpClient *http.Client) *TokenSource {
	return &TokenSource{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		interval:     defaultRefreshInterval,
	}
}

// Token returns the current bearer token, or "" while unauthenticated.
func (t *TokenSource) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// Run refreshes immediately, then on a timer whose interval is the last
// expires_in reported by the provider. It returns when ctx is cancelled, so
// process shutdown leaves no dangling timer. Run never blocks request
// handling; it owns its own goroutine.
func (t *TokenSource) Run(ctx context.Context) {
	t.refresh(ctx)

	timer := time.NewTimer(t.refreshInterval())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			log.Println("Retrieving access token...")
			t.refresh(ctx)
			timer.Reset(t.refreshInterval())
		case <-ctx.Done():
			return
		}
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// refresh performs one client-credentials exchange. Any failure is logged
// and the previous token (if any) is kept; the next scheduled tick retries.
// There is no backoff and no immediate retry.
func (t *TokenSource) refresh(ctx context.Context) {
	if t.clientID == "" || t.clientSecret == "" {
		log.Println("Checkout provider credentials are missing; skipping token refresh")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		log.Printf("Error building token request: %v", err)
		return
	}
	req.SetBasicAuth(t.clientID, t.clientSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		log.Printf("Error while fetching access token: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Error while fetching access token: status %d", resp.StatusCode)
		return
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("Error decoding token response: %v", err)
		return
	}
	if body.AccessToken == "" || body.ExpiresIn <= 0 {
		log.Printf("Token response missing access_token or expires_in")
		return
	}

	t.mu.Lock()
	t.token = body.AccessToken
	t.interval = time.Duration(body.ExpiresIn) * time.Second
	t.mu.Unlock()

	log.Printf("Access token received. Expires in %d seconds.", body.ExpiresIn)
}

func (t *TokenSource) refreshInterval() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.interval
}
