// Package whois resolves domain registration data over the WHOIS protocol.
package whois

import (
	"context"
	"fmt"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

// Registry is a DomainRegistry implementation backed by WHOIS lookups.
type Registry struct {
	client *whois.Client
	logger *zap.Logger
}

// NewRegistry creates a WHOIS-backed domain registry.
func NewRegistry(timeout time.Duration, logger *zap.Logger) *Registry {
	client := whois.NewClient()
	client.SetTimeout(timeout)

	return &Registry{
		client: client,
		logger: logger,
	}
}

// Lookup implements core.DomainRegistry.
func (r *Registry) Lookup(ctx context.Context, domain string) (*core.DomainRecord, error) {
	type lookupResult struct {
		raw string
		err error
	}
	ch := make(chan lookupResult, 1)
	go func() {
		raw, err := r.client.Whois(domain)
		ch <- lookupResult{raw: raw, err: err}
	}()

	var raw string
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("whois query failed for %s: %w", domain, res.err)
		}
		raw = res.raw
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse whois response for %s: %w", domain, err)
	}

	record := &core.DomainRecord{Domain: domain}
	if info.Domain != nil {
		if info.Domain.CreatedDateInTime != nil {
			record.CreatedAt = *info.Domain.CreatedDateInTime
		}
		if info.Domain.ExpirationDateInTime != nil {
			record.ExpiresAt = *info.Domain.ExpirationDateInTime
		}
	}
	if info.Registrar != nil {
		record.Registrar = info.Registrar.Name
	}

	if record.CreatedAt.IsZero() {
		return nil, fmt.Errorf("whois response for %s carries no creation date", domain)
	}

	r.logger.Debug("Resolved domain registration data",
		zap.String("domain", domain),
		zap.Time("created_at", record.CreatedAt),
		zap.String("registrar", record.Registrar))

	return record, nil
}
