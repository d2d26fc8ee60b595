package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	ttlcache "github.com/diogo/llm-phishing-analyzer/internal/cache"
	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

// MemoryCache is an in-memory implementation of the CacheRepository interface
type MemoryCache struct {
	entries     *ttlcache.TTLCache[string, *core.DomainRecord]
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     ttlcache.New[string, *core.DomainRecord](),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache
}

// Get retrieves a cached record for a domain
func (c *MemoryCache) Get(ctx context.Context, domain string) (*core.DomainRecord, bool) {
	return c.entries.Get(domain)
}

// Set stores a domain record
func (c *MemoryCache) Set(ctx context.Context, domain string, record *core.DomainRecord, ttl time.Duration) error {
	c.entries.Set(domain, record, ttl)
	return nil
}

// Delete removes a cached record
func (c *MemoryCache) Delete(ctx context.Context, domain string) error {
	c.entries.Delete(domain)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	dropped := c.entries.Sweep()
	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", dropped))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	close(c.stopCh)
}
