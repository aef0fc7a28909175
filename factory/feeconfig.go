/*
Package factory provides JSON to Go fee-configuration conversion.

PURPOSE:
  Converts JSON fee definitions into billing.FeeConfig values. Tenant
  admins configure the monthly fee from the settings screen without
  code changes; the factory validates the payload and fills defaults.

JSON SCHEMA:
  {
    "monthly_fee": 3500,
    "currency": "ARS"
  }

DEFAULTS:
  monthly_fee: 3000 (the system-wide default fee)
  currency:    "ARS"

The billing start month is fixed to March by the reconciliation core
and is deliberately not configurable here.

USAGE:
  f := factory.NewFeeFactory()
  cfg, err := f.ParseConfig("tenant-1", jsonString)

SEE ALSO:
  - billing/types.go: FeeConfig definition
  - reconcile/accrual.go: BillingStartMonth and the default fee
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kurso/billing-engine/billing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// FeeConfigJSON is the JSON representation of a tenant fee configuration.
type FeeConfigJSON struct {
	MonthlyFee *float64 `json:"monthly_fee,omitempty"`
	Currency   string   `json:"currency,omitempty"`
}

// =============================================================================
// FEE FACTORY
// =============================================================================

// FeeFactory converts JSON fee configurations to billing.FeeConfig.
type FeeFactory struct{}

// NewFeeFactory creates a new fee factory.
func NewFeeFactory() *FeeFactory {
	return &FeeFactory{}
}

// ParseConfig parses a JSON fee configuration for a tenant, applying
// defaults for absent fields and rejecting invalid values.
func (f *FeeFactory) ParseConfig(tenantID, jsonStr string) (billing.FeeConfig, error) {
	var raw FeeConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return billing.FeeConfig{}, fmt.Errorf("%w: %v", billing.ErrInvalidFeeConfig, err)
	}
	return f.FromJSON(tenantID, raw)
}

// FromJSON converts an already-decoded payload, applying defaults.
func (f *FeeFactory) FromJSON(tenantID string, raw FeeConfigJSON) (billing.FeeConfig, error) {
	cfg := billing.DefaultFeeConfig(tenantID)
	cfg.UpdatedAt = time.Now()

	if raw.MonthlyFee != nil {
		fee := decimal.NewFromFloat(*raw.MonthlyFee)
		if !fee.IsPositive() {
			return billing.FeeConfig{}, fmt.Errorf("%w: monthly_fee must be positive, got %s",
				billing.ErrInvalidFeeConfig, fee)
		}
		cfg.MonthlyFee = fee
	}

	if raw.Currency != "" {
		if len(raw.Currency) != 3 {
			return billing.FeeConfig{}, fmt.Errorf("%w: currency must be a 3-letter code, got %q",
				billing.ErrInvalidFeeConfig, raw.Currency)
		}
		cfg.Currency = raw.Currency
	}

	return cfg, nil
}

// ToJSON renders a FeeConfig back to its JSON representation.
func (f *FeeFactory) ToJSON(cfg billing.FeeConfig) FeeConfigJSON {
	fee, _ := cfg.MonthlyFee.Float64()
	return FeeConfigJSON{
		MonthlyFee: &fee,
		Currency:   cfg.Currency,
	}
}

// DefaultJSON returns the JSON representation of the default config.
func (f *FeeFactory) DefaultJSON(tenantID string) FeeConfigJSON {
	return f.ToJSON(billing.DefaultFeeConfig(tenantID))
}
