package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

const mysqlTimeLayout = "2006-01-02 15:04:05"

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS domain_cache (
			domain VARCHAR(255) PRIMARY KEY,
			created_at TIMESTAMP,
			registry_expires_at TIMESTAMP,
			registrar VARCHAR(255),
			expires_at TIMESTAMP,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
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
func (c *MySQLCache) Get(ctx context.Context, domain string) (*core.DomainRecord, bool) {
	var createdAt, registryExpiresAt, registrar string

	err := c.db.QueryRowContext(ctx, `
		SELECT created_at, registry_expires_at, registrar
		FROM domain_cache
		WHERE domain = ? AND expires_at > NOW()
	`, domain).Scan(&createdAt, &registryExpiresAt, &registrar)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false
		}
		c.logger.Error("Failed to query domain cache", zap.Error(err), zap.String("domain", domain))
		return nil, false
	}

	created, err := time.Parse(mysqlTimeLayout, createdAt)
	if err != nil {
		c.logger.Error("Failed to parse created_at timestamp", zap.Error(err))
		return nil, false
	}
	registryExpires, _ := time.Parse(mysqlTimeLayout, registryExpiresAt)

	return &core.DomainRecord{
		Domain:    domain,
		CreatedAt: created,
		ExpiresAt: registryExpires,
		Registrar: registrar,
	}, true
}

// Set stores a domain record
func (c *MySQLCache) Set(ctx context.Context, domain string, record *core.DomainRecord, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO domain_cache (domain, created_at, registry_expires_at, registrar, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			created_at = VALUES(created_at),
			registry_expires_at = VALUES(registry_expires_at),
			registrar = VALUES(registrar),
			expires_at = VALUES(expires_at)
	`, domain,
		record.CreatedAt.Format(mysqlTimeLayout),
		record.ExpiresAt.Format(mysqlTimeLayout),
		record.Registrar,
		expiresAt.Format(mysqlTimeLayout))

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}

	return nil
}

// Delete removes a cached record
func (c *MySQLCache) Delete(ctx context.Context, domain string) error {
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
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM domain_cache
		WHERE expires_at <= NOW()
	`)

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
func (c *MySQLCache) startCleanupTask() {
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
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
