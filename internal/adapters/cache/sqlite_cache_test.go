package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

func newTestCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(":memory:", zap.NewNop(), time.Hour)
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	t.Cleanup(c.Stop)
	return c
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	record := &core.DomainRecord{
		Domain:    "example.com",
		CreatedAt: time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2030, 3, 15, 0, 0, 0, 0, time.UTC),
		Registrar: "Example Registrar Inc",
	}
	if err := c.Set(ctx, "example.com", record, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get(ctx, "example.com")
	if !ok {
		t.Fatal("Get returned no record for freshly stored domain")
	}
	if !got.CreatedAt.Equal(record.CreatedAt) || got.Registrar != record.Registrar {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}

func TestExpiredEntryIsAbsent(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	record := &core.DomainRecord{
		Domain:    "stale.example.com",
		CreatedAt: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := c.Set(ctx, "stale.example.com", record, -time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, ok := c.Get(ctx, "stale.example.com"); ok {
		t.Error("Get returned an expired record")
	}

	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	record := &core.DomainRecord{
		Domain:    "gone.example.com",
		CreatedAt: time.Date(2021, 5, 5, 0, 0, 0, 0, time.UTC),
	}
	if err := c.Set(ctx, "gone.example.com", record, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "gone.example.com"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get(ctx, "gone.example.com"); ok {
		t.Error("Get returned a deleted record")
	}
}

func TestMemoryCacheHonorsInterface(t *testing.T) {
	var _ core.CacheRepository = NewMemoryCache(zap.NewNop(), time.Hour)
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	record := &core.DomainRecord{
		Domain:    "example.org",
		CreatedAt: time.Date(2018, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := c.Set(ctx, "example.org", record, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get(ctx, "example.org")
	if !ok || got.Domain != "example.org" {
		t.Fatalf("Get = %+v, %v; want stored record", got, ok)
	}

	if err := c.Delete(ctx, "example.org"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get(ctx, "example.org"); ok {
		t.Error("Get returned a deleted record")
	}
}
