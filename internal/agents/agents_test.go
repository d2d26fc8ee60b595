package agents

import (
	"context"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
	"github.com/diogo/llm-phishing-analyzer/internal/utils"
)

// downChain simulates every inference backend being unreachable.
type downChain struct{}

func (downChain) Infer(context.Context, string, map[string]string, []byte, core.Language, string) *core.InferenceResponse {
	return nil
}

// cannedChain returns a fixed structured response.
type cannedChain struct {
	resp *core.InferenceResponse
}

func (c cannedChain) Infer(context.Context, string, map[string]string, []byte, core.Language, string) *core.InferenceResponse {
	return c.resp
}

type fakeRegistry struct {
	record *core.DomainRecord
	err    error
	calls  int
}

func (f *fakeRegistry) Lookup(ctx context.Context, domain string) (*core.DomainRecord, error) {
	f.calls++
	return f.record, f.err
}

type mapCache struct {
	entries map[string]*core.DomainRecord
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*core.DomainRecord)}
}

func (m *mapCache) Get(ctx context.Context, domain string) (*core.DomainRecord, bool) {
	r, ok := m.entries[domain]
	return r, ok
}

func (m *mapCache) Set(ctx context.Context, domain string, record *core.DomainRecord, ttl time.Duration) error {
	m.entries[domain] = record
	return nil
}

func (m *mapCache) Delete(ctx context.Context, domain string) error {
	delete(m.entries, domain)
	return nil
}

func (m *mapCache) Cleanup(ctx context.Context) error { return nil }

type fakeFetcher struct {
	cert *x509.Certificate
	err  error
}

func (f *fakeFetcher) Fetch(ctx context.Context, host string) (*x509.Certificate, error) {
	return f.cert, f.err
}

func hasFinding(findings []string, fragment string) bool {
	for _, f := range findings {
		if strings.Contains(f, fragment) {
			return true
		}
	}
	return false
}

func TestURLHeuristicFlagsLiteralIPWithKeywords(t *testing.T) {
	agent := NewURLAgent(downChain{}, nil, newMapCache(), zap.NewNop())

	res, err := agent.Analyze(context.Background(), &core.AnalysisInput{
		URL:      "http://192.168.1.1/login?verify=1",
		Language: core.LangEN,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Score < 0.5 {
		t.Errorf("score = %v, want >= 0.5 for literal IP + keywords", res.Score)
	}
	if res.Verdict != core.VerdictPhishing {
		t.Errorf("verdict = %v, want Phishing", res.Verdict)
	}
	if !hasFinding(res.Findings, "IP address") {
		t.Errorf("findings do not mention IP usage: %v", res.Findings)
	}
	if !res.Fallback || !hasFinding(res.Findings, "fallback") {
		t.Error("result not marked as heuristic fallback")
	}
}

func TestURLHeuristicScoreIsClamped(t *testing.T) {
	agent := NewURLAgent(downChain{}, nil, newMapCache(), zap.NewNop())

	// Every lexical signal at once sums past 1.0 before clamping.
	res, err := agent.Analyze(context.Background(), &core.AnalysisInput{
		URL:      "http://login.verify.secure.paypal.bank-update-pay.192.168.1.1/@signin?account=1&padding=aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Language: core.LangEN,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Score != 1.0 {
		t.Errorf("score = %v, want clamp at 1.0", res.Score)
	}
}

func TestURLAgentPrefersChainResult(t *testing.T) {
	agent := NewURLAgent(cannedChain{resp: &core.InferenceResponse{
		Verdict:   "Suspicious",
		Score:     0.55,
		Summary:   "brand look-alike in subdomain",
		ModelUsed: "gpt-4o",
	}}, nil, newMapCache(), zap.NewNop())

	res, err := agent.Analyze(context.Background(), &core.AnalysisInput{URL: "http://paypa1.example", Language: core.LangEN})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fallback {
		t.Error("chain result marked as fallback")
	}
	if res.Verdict != core.VerdictSuspicious || res.Score != 0.55 {
		t.Errorf("result = (%v, %v), want chain-adapted (Suspicious, 0.55)", res.Verdict, res.Score)
	}
	if res.Agent != core.AgentURLLexical {
		t.Errorf("agent id = %v, want AgentURLLexical", res.Agent)
	}
}

func TestURLAgentCachesRegistryLookups(t *testing.T) {
	registry := &fakeRegistry{record: &core.DomainRecord{
		Domain:    "fresh-domain.com",
		CreatedAt: time.Now().Add(-10 * 24 * time.Hour),
	}}
	agent := NewURLAgent(downChain{}, registry, newMapCache(), zap.NewNop())

	input := &core.AnalysisInput{URL: "https://fresh-domain.com/promo", Language: core.LangEN}
	first, err := agent.Analyze(context.Background(), input)
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	if _, err := agent.Analyze(context.Background(), input); err != nil {
		t.Fatalf("second Analyze: %v", err)
	}

	if registry.calls != 1 {
		t.Errorf("registry consulted %d times, want 1 (second hit served from cache)", registry.calls)
	}
	if !hasFinding(first.Findings, "days ago") {
		t.Errorf("findings missing domain-age signal: %v", first.Findings)
	}
}

func TestURLAgentToleratesRegistryFailure(t *testing.T) {
	registry := &fakeRegistry{err: errors.New("whois unreachable")}
	agent := NewURLAgent(downChain{}, registry, newMapCache(), zap.NewNop())

	res, err := agent.Analyze(context.Background(), &core.AnalysisInput{
		URL:      "https://example.com",
		Language: core.LangEN,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res == nil {
		t.Fatal("registry failure must degrade, not remove the agent")
	}
}

func TestUnifiedHeuristicMarkupSignals(t *testing.T) {
	agent := NewUnifiedAgent(downChain{}, nil, utils.NewTextProcessor(zap.NewNop()), zap.NewNop())

	html := `<html><body>
		<form action="http://collector.evil/submit">
			<input type="text" name="user">
			<input type="password" name="pass">
		</form></body></html>`
	res, err := agent.Analyze(context.Background(), &core.AnalysisInput{
		Text:     "URGENTE: sua conta expira hoje, clique aqui http://evil.test/login",
		HTML:     html,
		Language: core.LangPT,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// Lexicon hits (capped 0.5) + raw link 0.2 + form 0.2 + password 0.15.
	if res.Score < 0.5 {
		t.Errorf("score = %v, want >= 0.5", res.Score)
	}
	if res.Verdict != core.VerdictPhishing {
		t.Errorf("verdict = %v, want Phishing", res.Verdict)
	}
	if !hasFinding(res.Findings, "Formulário") {
		t.Errorf("findings missing form signal: %v", res.Findings)
	}
	if !hasFinding(res.Findings, "senha") {
		t.Errorf("findings missing password-field signal: %v", res.Findings)
	}
}

func TestUnifiedNeutralOnInsufficientData(t *testing.T) {
	agent := NewUnifiedAgent(downChain{}, nil, utils.NewTextProcessor(zap.NewNop()), zap.NewNop())

	res, err := agent.Analyze(context.Background(), &core.AnalysisInput{Text: "oi", Language: core.LangEN})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Verdict != core.VerdictNeutral || res.Score != 0 {
		t.Errorf("result = (%v, %v), want (Neutral, 0)", res.Verdict, res.Score)
	}
}

func TestVisionFallbackIsWeakLegitimate(t *testing.T) {
	agent := NewVisionAgent(downChain{}, zap.NewNop())

	res, err := agent.Analyze(context.Background(), &core.AnalysisInput{
		Image:    []byte{0xFF, 0xD8, 0xFF},
		Language: core.LangEN,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Score != fallbackVisionScore || res.Verdict != core.VerdictLegitimate {
		t.Errorf("fallback = (%v, %v), want (Legitimate, %v)", res.Verdict, res.Score, fallbackVisionScore)
	}

	if res, err := agent.Analyze(context.Background(), &core.AnalysisInput{}); err != nil || res != nil {
		t.Errorf("no-image analyze = (%v, %v), want absent contributor", res, err)
	}
}

func TestCertAgentScoresFreshFreeCertificate(t *testing.T) {
	now := time.Now()
	agent := NewCertAgent(&fakeFetcher{cert: &x509.Certificate{
		Issuer:    pkix.Name{CommonName: "R11", Organization: []string{"Let's Encrypt"}},
		NotBefore: now.Add(-2 * 24 * time.Hour),
		NotAfter:  now.Add(88 * 24 * time.Hour),
	}}, zap.NewNop())

	res, err := agent.Analyze(context.Background(), &core.AnalysisInput{
		URL:      "https://fresh.example.com",
		Language: core.LangEN,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// 0.3 free issuer + 0.5 under 7 days + 0.1 short validity window.
	if res.Score < 0.89 || res.Score > 0.91 {
		t.Errorf("score = %v, want 0.9", res.Score)
	}
	if res.Verdict != core.VerdictPhishing {
		t.Errorf("verdict = %v, want Phishing (> 0.6)", res.Verdict)
	}
	if !hasFinding(res.Findings, "Let's Encrypt") {
		t.Errorf("findings missing issuer: %v", res.Findings)
	}
}

func TestCertAgentAbsentOnHandshakeFailure(t *testing.T) {
	agent := NewCertAgent(&fakeFetcher{err: errors.New("connection refused")}, zap.NewNop())

	res, err := agent.Analyze(context.Background(), &core.AnalysisInput{URL: "https://unreachable.test"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res != nil {
		t.Errorf("handshake failure produced %+v, want absent contributor", res)
	}
}
