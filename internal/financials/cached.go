package financials

import (
	"context"
	"errors"
	"time"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
	"go.uber.org/zap"
)

// CachedProvider answers from memory, then from an optional Store, and only
// then from the upstream provider. Store failures are logged and skipped.
type CachedProvider struct {
	upstream Provider
	memory   *MemoryCache[string, Financials]
	store    Store
	ttl      time.Duration
	logger   *zap.Logger
	onClose  func() error
}

// NewCachedProvider wraps upstream. store may be nil. A non-positive ttl
// falls back to constants.DefaultCacheTTLHours so both tiers agree on expiry.
func NewCachedProvider(logger *zap.Logger, upstream Provider, store Store, ttl time.Duration) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTLHours * time.Hour
	}
	sweep := ttl / 4
	if sweep < time.Minute {
		sweep = time.Minute
	}
	return &CachedProvider{
		upstream: upstream,
		memory:   NewMemoryCache[string, Financials](ttl, sweep),
		store:    store,
		ttl:      ttl,
		logger:   logger,
	}
}

// Fetch implements Provider.
func (p *CachedProvider) Fetch(ctx context.Context, symbol string) (*Financials, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	if cached, ok := p.memory.Get(symbol); ok {
		p.logger.Debug("financials cache hit",
			zap.String("op", "financials.CachedProvider.Fetch"),
			zap.String("symbol", symbol),
			zap.String("tier", "memory"),
		)
		return &cached, nil
	}

	if p.store != nil {
		stored, err := p.store.Get(ctx, symbol, p.ttl)
		switch {
		case err == nil:
			p.memory.Set(symbol, *stored)
			p.logger.Debug("financials cache hit",
				zap.String("op", "financials.CachedProvider.Fetch"),
				zap.String("symbol", symbol),
				zap.String("tier", "store"),
			)
			return stored, nil
		case !errors.Is(err, ErrNotFound):
			p.logger.Warn("financials store read failed",
				zap.String("op", "financials.CachedProvider.Fetch"),
				zap.String("symbol", symbol),
				zap.Error(err),
			)
		}
	}

	fetched, err := p.upstream.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	p.memory.Set(symbol, *fetched)
	if p.store != nil {
		if err := p.store.Put(ctx, fetched); err != nil {
			p.logger.Warn("financials store write failed",
				zap.String("op", "financials.CachedProvider.Fetch"),
				zap.String("symbol", symbol),
				zap.Error(err),
			)
		}
	}
	return fetched, nil
}

// Close stops the memory cache janitor and releases a store opened by Open.
func (p *CachedProvider) Close() error {
	p.memory.Close()
	if p.onClose != nil {
		return p.onClose()
	}
	return nil
}
