// Package auth authenticates outbound collaborator calls with the OAuth2
// client credentials flow.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// ClientCred hands out cached access tokens and refreshes them on expiry.
type ClientCred struct {
	src oauth2.TokenSource
}

// NewClientCred builds a ClientCred. ctx is used for token requests.
func NewClientCred(ctx context.Context, conf Conf) *ClientCred {
	cfg := conf.toOauth2Config()
	return &ClientCred{src: cfg.TokenSource(ctx)}
}

// GetToken returns a valid access token, requesting a new one when the
// cached token expired.
func (c *ClientCred) GetToken() (string, error) {
	tok, err := c.src.Token()
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return tok.AccessToken, nil
}

// SetAuthHeader adds the bearer token to r.
func (c *ClientCred) SetAuthHeader(r *http.Request) error {
	tok, err := c.src.Token()
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	tok.SetAuthHeader(r)
	return nil
}

// Transport wraps base so every request carries the bearer token. A nil
// base uses http.DefaultTransport.
func (c *ClientCred) Transport(base http.RoundTripper) http.RoundTripper {
	return &oauth2.Transport{Source: c.src, Base: base}
}
