// Package fmcsa implements the verification collaborator against the FMCSA
// QCMobile carrier lookup API.
package fmcsa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/kilianp07/fleetledger/auth"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/verification"
)

// DefaultBaseURL is the public QCMobile endpoint.
const DefaultBaseURL = "https://mobile.fmcsa.dot.gov/qc/services"

// Config holds the API endpoint and credentials.
type Config struct {
	BaseURL        string    `json:"base_url"`
	APIKey         string    `json:"api_key"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	// OAuth authenticates requests through a token gateway when set.
	OAuth          auth.Conf `json:"oauth"`
}

// Client queries carrier authority.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = verification.DefaultTimeout
	}
	c := &Client{baseURL: base, apiKey: cfg.APIKey, http: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.OAuth.Enabled() {
		hc := *c.http
		hc.Transport = auth.NewClientCred(context.Background(), cfg.OAuth).Transport(hc.Transport)
		c.http = &hc
	}
	return c
}

type carrierRecord struct {
	LegalName        string      `json:"legalName"`
	DBAName          string      `json:"dbaName"`
	DOTNumber        json.Number `json:"dotNumber"`
	AllowedToOperate string      `json:"allowedToOperate"`
	PhyStreet        string      `json:"phyStreet"`
	PhyCity          string      `json:"phyCity"`
	PhyState         string      `json:"phyState"`
	PhyZipcode       string      `json:"phyZipcode"`
	Telephone        string      `json:"telephone"`
}

type lookupResponse struct {
	Content json.RawMessage `json:"content"`
}

type contentEntry struct {
	Carrier carrierRecord `json:"carrier"`
}

// docketNumber reduces an MC number such as "MC-123456" to its digits.
func docketNumber(mc string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, mc)
}

// Verify implements verification.Verifier.
func (c *Client) Verify(ctx context.Context, req verification.Request) (verification.Result, error) {
	var path string
	switch req.Kind {
	case verification.IdentifierMC:
		docket := docketNumber(req.Value)
		if docket == "" {
			return verification.Result{}, fmt.Errorf("MC number %q has no digits", req.Value)
		}
		path = "/carriers/docket-number/" + docket
	case verification.IdentifierDOT:
		path = "/carriers/" + url.PathEscape(req.Value)
	default:
		return verification.Result{}, fmt.Errorf("unsupported identifier kind %q", req.Kind)
	}
	endpoint := c.baseURL + path + "?webKey=" + url.QueryEscape(c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return verification.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return verification.Result{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return verification.Result{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return verification.Result{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	var lr lookupResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return verification.Result{}, fmt.Errorf("failed to decode response: %w", err)
	}
	rec, ok, err := firstCarrier(lr.Content)
	if err != nil {
		return verification.Result{}, err
	}
	if !ok {
		return verification.Result{
			Status:  model.AuthorityVerificationFailed,
			Message: fmt.Sprintf("no carrier found for %s %s", req.Kind, req.Value),
		}, nil
	}
	return toResult(rec, req), nil
}

// firstCarrier accepts the object form returned for DOT lookups and the
// array form returned for docket lookups.
func firstCarrier(raw json.RawMessage) (carrierRecord, bool, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return carrierRecord{}, false, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var entries []contentEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return carrierRecord{}, false, fmt.Errorf("failed to decode content: %w", err)
		}
		if len(entries) == 0 {
			return carrierRecord{}, false, nil
		}
		return entries[0].Carrier, true, nil
	}
	var entry contentEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return carrierRecord{}, false, fmt.Errorf("failed to decode content: %w", err)
	}
	return entry.Carrier, entry.Carrier.LegalName != "", nil
}

func toResult(rec carrierRecord, req verification.Request) verification.Result {
	status := model.AuthorityVerifiedInactive
	if strings.EqualFold(rec.AllowedToOperate, "Y") {
		status = model.AuthorityVerifiedActive
	}
	details := model.CarrierDetails{
		LegalName: rec.LegalName,
		Phone:     rec.Telephone,
	}
	details.DOTNumber = rec.DOTNumber.String()
	if req.Kind == verification.IdentifierMC {
		details.MCNumber = req.Value
	}
	var addr []string
	for _, part := range []string{rec.PhyStreet, rec.PhyCity, strings.TrimSpace(rec.PhyState + " " + rec.PhyZipcode)} {
		if part != "" {
			addr = append(addr, part)
		}
	}
	details.Address = strings.Join(addr, ", ")
	return verification.Result{Status: status, Details: details}
}
