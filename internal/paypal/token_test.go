package paypal

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSource_Refresh(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/oauth2/token", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "T1", "expires_in": 100}`))
	}))
	defer server.Close()

	ts := NewTokenSource(server.URL, "client-id", "client-secret", server.Client())
	assert.Empty(t, ts.Token())
	assert.Equal(t, defaultRefreshInterval, ts.refreshInterval())

	ts.refresh(context.Background())

	// The token is held until the next refresh, and the next refresh is
	// scheduled with the reported expiry, not the default.
	assert.Equal(t, "T1", ts.Token())
	assert.Equal(t, 100*time.Second, ts.refreshInterval())

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("client-id:client-secret"))
	assert.Equal(t, wantAuth, gotAuth)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
}

func TestTokenSource_RefreshFailure_KeepsPreviousToken(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"access_token": "T1", "expires_in": 100}`))
	}))
	defer server.Close()

	ts := NewTokenSource(server.URL, "client-id", "client-secret", server.Client())
	ts.refresh(context.Background())
	require.Equal(t, "T1", ts.Token())

	fail.Store(true)
	ts.refresh(context.Background())

	assert.Equal(t, "T1", ts.Token())
	assert.Equal(t, 100*time.Second, ts.refreshInterval())
}

func TestTokenSource_MissingCredentials_SkipsExchange(t *testing.T) {
	var called atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	}))
	defer server.Close()

	ts := NewTokenSource(server.URL, "", "", server.Client())
	ts.refresh(context.Background())

	assert.False(t, called.Load())
	assert.Empty(t, ts.Token())
}

func TestTokenSource_Run_StopsOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token": "T1", "expires_in": 100}`))
	}))
	defer server.Close()

	ts := NewTokenSource(server.URL, "client-id", "client-secret", server.Client())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ts.Run(ctx)
		close(done)
	}()

	// The initial refresh happens immediately.
	require.Eventually(t, func() bool { return ts.Token() == "T1" },
		time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
