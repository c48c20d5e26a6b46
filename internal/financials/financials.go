// Package financials looks up the company figures that seed a valuation:
// latest free cash flow, shares outstanding, cash and total debt.
package financials

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrEmptySymbol is returned when a lookup is attempted without a ticker.
	ErrEmptySymbol = errors.New("symbol is required")

	// ErrNoData means the provider answered but had no usable reports,
	// which is also how Alpha Vantage signals an exhausted API quota.
	ErrNoData = errors.New("no cash flow data found or API limit reached")

	// ErrUpstream wraps transport and decoding failures talking to the provider.
	ErrUpstream = errors.New("financials provider request failed")

	// ErrNotFound is returned by a Store that has no fresh snapshot.
	ErrNotFound = errors.New("financials snapshot not found")
)

// Financials is a point-in-time snapshot of the inputs a provider can fill.
type Financials struct {
	Symbol    string    `json:"symbol"`
	FCF       float64   `json:"fcf"`
	Shares    float64   `json:"shares"`
	Cash      float64   `json:"cash"`
	Debt      float64   `json:"debt"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Provider fetches financials for a ticker symbol.
type Provider interface {
	Fetch(ctx context.Context, symbol string) (*Financials, error)
}

// Store persists snapshots between process restarts.
type Store interface {
	Get(ctx context.Context, symbol string, maxAge time.Duration) (*Financials, error)
	Put(ctx context.Context, f *Financials) error
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "" {
		return "", ErrEmptySymbol
	}
	return normalized, nil
}
