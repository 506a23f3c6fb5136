package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetTokenIsCached(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls)
	client := NewClientCred(context.Background(), Conf{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL})

	for i := 0; i < 3; i++ {
		token, err := client.GetToken()
		require.NoError(t, err)
		assert.Equal(t, "token123", token)
	}
	assert.Equal(t, int32(1), calls.Load())

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, client.SetAuthHeader(req))
	assert.Equal(t, "Bearer token123", req.Header.Get("Authorization"))
}

func TestTransportAddsBearer(t *testing.T) {
	var calls atomic.Int32
	tokens := tokenServer(t, &calls)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token123", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	client := NewClientCred(context.Background(), Conf{ClientID: "id", TokenURL: tokens.URL})
	hc := &http.Client{Transport: client.Transport(nil)}
	resp, err := hc.Get(api.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestEnabled(t *testing.T) {
	assert.False(t, Conf{}.Enabled())
	assert.False(t, Conf{ClientID: "id"}.Enabled())
	assert.True(t, Conf{ClientID: "id", TokenURL: "http://x"}.Enabled())
}
