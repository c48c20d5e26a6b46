package financials

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Open builds the production provider: an Alpha Vantage client behind the
// memory cache and, when cachePath is set, a SQLite snapshot store. Close the
// returned provider to release the store.
func Open(logger *zap.Logger, cfg ClientConfig, cacheTTL time.Duration, cachePath string) (*CachedProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := NewAlphaVantageClient(logger, cfg)

	if cachePath == "" {
		return NewCachedProvider(logger, client, nil, cacheTTL), nil
	}

	if dir := filepath.Dir(cachePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}
	store, err := NewSQLiteStore(cachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open financials cache %s: %w", cachePath, err)
	}

	provider := NewCachedProvider(logger, client, store, cacheTTL)
	provider.onClose = store.Close
	logger.Info("financials cache opened",
		zap.String("op", "financials.Open"),
		zap.String("path", cachePath),
		zap.Duration("ttl", cacheTTL),
	)
	return provider, nil
}
