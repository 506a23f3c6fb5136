package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/fleetledger/core/billing"
)

// BillingConfig holds the dispatch fee rate and the zone invoices are
// dated in.
type BillingConfig struct {
	FeeRate  string `json:"fee_rate"`
	Timezone string `json:"timezone"`
	Currency string `json:"currency"`
}

func (c *BillingConfig) SetDefaults() {
	if c.FeeRate == "" {
		c.FeeRate = billing.DefaultFeeRate.String()
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
}

func (c BillingConfig) Validate() error {
	_, err := c.Engine()
	return err
}

// Engine converts the section into the billing engine configuration.
func (c BillingConfig) Engine() (billing.Config, error) {
	rate, err := decimal.NewFromString(c.FeeRate)
	if err != nil {
		return billing.Config{}, fmt.Errorf("invalid fee_rate %q: %w", c.FeeRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return billing.Config{}, fmt.Errorf("fee_rate %s must be between 0 and 1", c.FeeRate)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return billing.Config{}, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return billing.Config{FeeRate: rate, Location: loc}, nil
}
