package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

// SQLiteCache is a SQLite implementation of the CacheRepository interface
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS domain_cache (
			domain TEXT PRIMARY KEY,
			created_at TIMESTAMP,
			registry_expires_at TIMESTAMP,
			registrar TEXT,
			expires_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index on expires_at for faster cleanup
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_expires_at ON domain_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves a cached record for a domain
func (c *SQLiteCache) Get(ctx context.Context, domain string) (*core.DomainRecord, bool) {
	var createdAt, registryExpiresAt, registrar string

	err := c.db.QueryRowContext(ctx, `
		SELECT created_at, registry_expires_at, registrar
		FROM domain_cache
		WHERE domain = ? AND expires_at > ?
	`, domain, time.Now().Format(time.RFC3339)).Scan(&createdAt, &registryExpiresAt, &registrar)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false
		}
		c.logger.Error("Failed to query domain cache", zap.Error(err), zap.String("domain", domain))
		return nil, false
	}

	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		c.logger.Error("Failed to parse created_at timestamp", zap.Error(err))
		return nil, false
	}
	registryExpires, _ := time.Parse(time.RFC3339, registryExpiresAt)

	return &core.DomainRecord{
		Domain:    domain,
		CreatedAt: created,
		ExpiresAt: registryExpires,
		Registrar: registrar,
	}, true
}

// Set stores a domain record
func (c *SQLiteCache) Set(ctx context.Context, domain string, record *core.DomainRecord, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)

	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO domain_cache (domain, created_at, registry_expires_at, registrar, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, domain,
		record.CreatedAt.Format(time.RFC3339),
		record.ExpiresAt.Format(time.RFC3339),
		record.Registrar,
		expiresAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cached record
func (c *SQLiteCache) Delete(ctx context.Context, domain string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM domain_cache
		WHERE domain = ?
	`, domain)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM domain_cache
		WHERE expires_at <= ?
	`, time.Now().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *SQLiteCache) startCleanupTask() {
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

// Stop stops the background cleanup task and closes the database connection
func (c *SQLiteCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
