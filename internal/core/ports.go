package core

import (
	"context"
	"crypto/x509"
	"time"
)

// Agent is one analysis capability (URL, text/markup, certificate, vision).
// Analyze may return (nil, nil) when the agent has nothing to contribute;
// the orchestrator treats that as an absent contributor, not a failure.
type Agent interface {
	// Kind returns the agent's identity in the closed AgentKind set.
	Kind() AgentKind

	// Analyze scores the input facet this agent covers. Implementations
	// must respect the context deadline.
	Analyze(ctx context.Context, input *AnalysisInput) (*AgentResult, error)
}

// LLMClient is a single inference backend consulted by the failover chain.
type LLMClient interface {
	// Name identifies the backend in logs and chain configuration.
	Name() string

	// SupportsVision reports whether the backend accepts image payloads.
	// Text-only backends are skipped for multimodal requests.
	SupportsVision() bool

	// Analyze sends a rendered prompt and returns the structured verdict.
	Analyze(ctx context.Context, req *InferenceRequest) (*InferenceResponse, error)

	// Chat sends a rendered prompt and returns free-form text, used by the
	// explanation channel.
	Chat(ctx context.Context, system, prompt string) (string, error)
}

// DomainRegistry looks up registration data for a root domain.
type DomainRegistry interface {
	Lookup(ctx context.Context, domain string) (*DomainRecord, error)
}

// CertFetcher performs a TLS handshake and returns the peer certificate.
type CertFetcher interface {
	Fetch(ctx context.Context, host string) (*x509.Certificate, error)
}

// CacheRepository persists domain registry records between analyses.
type CacheRepository interface {
	// Get retrieves a cached record, reporting whether a valid (unexpired)
	// entry was found.
	Get(ctx context.Context, domain string) (*DomainRecord, bool)

	// Set stores a record with the given time-to-live.
	Set(ctx context.Context, domain string, record *DomainRecord, ttl time.Duration) error

	// Delete removes a cached record.
	Delete(ctx context.Context, domain string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}

// HistoryRepository persists consolidated verdicts for later review.
type HistoryRepository interface {
	Save(ctx context.Context, record *ScanRecord) error
	Recent(ctx context.Context, limit int) ([]ScanRecord, error)
	Stats(ctx context.Context) (*HistoryStats, error)
	Close() error
}
