package marketdata

import (
	"context"
	"errors"

	"github.com/trogers1052/market-radar/internal/models"
)

// ErrUnsupported is returned by optional capabilities a provider does not
// implement.
var ErrUnsupported = errors.New("capability not supported")

// Provider is a single market data source. GetSnapshot must not error for
// "ticker not found" — it returns a snapshot with nil fields instead — but may
// error for transport failures, which the gateway catches.
type Provider interface {
	Name() string
	GetSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error)
}

// CompanyProfile is basic company reference data from a provider that
// supports it.
type CompanyProfile struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	MarketCap         float64 `json:"market_cap"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Industry          string  `json:"industry,omitempty"`
	Exchange          string  `json:"exchange,omitempty"`
	Currency          string  `json:"currency,omitempty"`
}

// ProfileProvider is the optional company-profile capability. Providers
// without profile data simply do not implement it; implementations return
// ErrUnsupported for symbols outside their coverage.
type ProfileProvider interface {
	CompanyProfile(ctx context.Context, symbol string) (*CompanyProfile, error)
}
