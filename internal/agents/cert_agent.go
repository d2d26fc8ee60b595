package agents

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

// Heuristic weights for certificate signals.
const (
	weightFreeIssuer    = 0.3
	weightCertUnder7d   = 0.5
	weightCertUnder30d  = 0.2
	weightShortValidity = 0.1
)

// freeIssuers are certificate authorities handing out free or automated
// certificates, disproportionately common on phishing hosts.
var freeIssuers = []string{
	"Let's Encrypt", "ZeroSSL", "Cloudflare Inc", "Google Trust Services",
}

// CertAgent inspects the TLS certificate presented by the target host. A
// failed handshake yields no result: the host is treated as an absent
// contributor, never as evidence either way.
type CertAgent struct {
	fetcher core.CertFetcher
	logger  *zap.Logger
	now     func() time.Time
}

// NewCertAgent creates the certificate agent.
func NewCertAgent(fetcher core.CertFetcher, logger *zap.Logger) *CertAgent {
	return &CertAgent{fetcher: fetcher, logger: logger, now: time.Now}
}

// Kind implements core.Agent.
func (a *CertAgent) Kind() core.AgentKind { return core.AgentCertificate }

// Analyze implements core.Agent.
func (a *CertAgent) Analyze(ctx context.Context, input *core.AnalysisInput) (*core.AgentResult, error) {
	if input.URL == "" {
		return nil, nil
	}

	parsed, err := url.Parse(input.URL)
	if err != nil || parsed.Hostname() == "" {
		return nil, nil
	}
	host := parsed.Hostname()

	cert, err := a.fetcher.Fetch(ctx, host)
	if err != nil {
		a.logger.Info("TLS handshake failed, certificate agent absent",
			zap.String("host", host),
			zap.Error(err))
		return nil, nil
	}

	lang := input.Language
	score := 0.0
	var findings []string

	issuer := cert.Issuer.CommonName
	if len(cert.Issuer.Organization) > 0 {
		issuer = fmt.Sprintf("%s (%s)", cert.Issuer.Organization[0], cert.Issuer.CommonName)
	}

	free := false
	for _, known := range freeIssuers {
		if strings.Contains(issuer, known) {
			free = true
			break
		}
	}
	if free {
		score += weightFreeIssuer
		findings = append(findings, pick(lang,
			"Emissor gratuito/comum: "+issuer,
			"Free/automated issuer: "+issuer))
	} else {
		findings = append(findings, pick(lang,
			"Emissor confiável: "+issuer,
			"Trusted issuer: "+issuer))
	}

	now := a.now()
	ageDays := int(now.Sub(cert.NotBefore).Hours() / 24)
	switch {
	case ageDays < 7:
		score += weightCertUnder7d
		findings = append(findings, pick(lang,
			fmt.Sprintf("Certificado emitido há apenas %d dias", ageDays),
			fmt.Sprintf("Certificate issued only %d days ago", ageDays)))
	case ageDays < 30:
		score += weightCertUnder30d
		findings = append(findings, pick(lang,
			fmt.Sprintf("Certificado recente (%d dias)", ageDays),
			fmt.Sprintf("Recent certificate (%d days)", ageDays)))
	}

	validityDays := int(cert.NotAfter.Sub(cert.NotBefore).Hours() / 24)
	if validityDays <= 90 {
		score += weightShortValidity
		findings = append(findings, pick(lang,
			fmt.Sprintf("Certificado de curta duração (%d dias)", validityDays),
			fmt.Sprintf("Short-term certificate (%d days)", validityDays)))
	}

	score = clampScore(score)
	verdict := core.VerdictLegitimate
	switch {
	case score > 0.6:
		verdict = core.VerdictPhishing
	case score > 0.3:
		verdict = core.VerdictSuspicious
	}

	return &core.AgentResult{
		Agent:    a.Kind(),
		Score:    score,
		Verdict:  verdict,
		Findings: findings,
		SuggestedFollowup: pick(lang,
			"Como posso saber se um certificado SSL é realmente confiável?",
			"How can I tell if an SSL certificate is truly trustworthy?"),
		AnalyzedAt: now,
	}, nil
}
