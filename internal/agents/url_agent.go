package agents

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
	"github.com/diogo/llm-phishing-analyzer/internal/prompts"
)

// Heuristic weights for the lexical URL fallback. The values are the
// original system's empirically tuned constants; the final score is the
// clamped sum.
const (
	weightLiteralIP     = 0.8
	weightAtSign        = 0.7
	weightManySubdomain = 0.4
	weightLongURL       = 0.3
	weightManyHyphens   = 0.2
	weightKeywordHit    = 0.2
	weightPlainHTTP     = 0.15

	weightDomainUnder30d  = 0.5
	weightDomainUnder180d = 0.3
	weightDomainUnder365d = 0.1
)

const (
	maxURLLength   = 75
	maxSubdomains  = 3
	maxHostHyphens = 2
)

// suspiciousKeywords are substrings commonly planted in phishing URLs.
var suspiciousKeywords = []string{
	"login", "verify", "update", "secure", "account", "bank", "pay", "paypal", "signin",
}

// domainRecordTTL bounds how long registry lookups are reused.
const domainRecordTTL = time.Hour

// URLAgent scores the lexical shape of a URL, consulting the domain
// registry through a TTL cache for the age signal.
type URLAgent struct {
	chain    InferenceChain
	registry core.DomainRegistry
	cache    core.CacheRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewURLAgent creates a lexical URL agent. registry may be nil when no
// registry lookup is configured; the age signal is then skipped.
func NewURLAgent(chain InferenceChain, registry core.DomainRegistry, cache core.CacheRepository, logger *zap.Logger) *URLAgent {
	return &URLAgent{
		chain:    chain,
		registry: registry,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Kind implements core.Agent.
func (a *URLAgent) Kind() core.AgentKind { return core.AgentURLLexical }

// Analyze implements core.Agent.
func (a *URLAgent) Analyze(ctx context.Context, input *core.AnalysisInput) (*core.AgentResult, error) {
	if input.URL == "" {
		return nil, nil
	}

	if resp := a.chain.Infer(ctx, prompts.TemplateURL, map[string]string{
		"url":  input.URL,
		"lang": string(input.Language),
	}, nil, input.Language, input.ModelPref); resp != nil {
		return adaptResponse(a.Kind(), resp), nil
	}

	return a.heuristic(ctx, input), nil
}

// heuristic is the deterministic fallback used when no backend responded.
func (a *URLAgent) heuristic(ctx context.Context, input *core.AnalysisInput) *core.AgentResult {
	lang := input.Language
	score := 0.0
	findings := []string{pick(lang,
		"Análise heurística (fallback)",
		"Heuristic analysis (fallback mode)")}

	parsed, err := url.Parse(input.URL)
	host := ""
	if err == nil {
		host = parsed.Hostname()
	}
	if host == "" {
		// Bare hostnames pasted without a scheme still deserve a look.
		host = strings.Split(input.URL, "/")[0]
	}

	literalIP := net.ParseIP(host) != nil
	if literalIP {
		score += weightLiteralIP
		findings = append(findings, pick(lang,
			"Uso de endereço IP em vez de domínio",
			"Uses a literal IP address instead of a domain name"))
	}

	if len(input.URL) > maxURLLength {
		score += weightLongURL
		findings = append(findings, pick(lang,
			"URL excessivamente longa",
			"Excessively long URL"))
	}

	if dots := strings.Count(host, "."); dots > maxSubdomains {
		score += weightManySubdomain
		findings = append(findings, pick(lang,
			fmt.Sprintf("Número elevado de subdomínios (%d)", dots),
			fmt.Sprintf("High number of subdomains (%d)", dots)))
	}

	if strings.Contains(input.URL, "@") {
		score += weightAtSign
		findings = append(findings, pick(lang,
			"Uso de símbolo '@' (frequentemente usado para mascarar URLs)",
			"Contains '@' (often used to mask the real destination)"))
	}

	if strings.Count(host, "-") > maxHostHyphens {
		score += weightManyHyphens
		findings = append(findings, pick(lang,
			"Muitos hífens no domínio",
			"Too many hyphens in the host name"))
	}

	lower := strings.ToLower(input.URL)
	var hits []string
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	if len(hits) > 0 {
		score += weightKeywordHit * float64(len(hits))
		findings = append(findings, pick(lang,
			"Palavras-chave suspeitas encontradas: "+strings.Join(hits, ", "),
			"Suspicious keywords found: "+strings.Join(hits, ", ")))
	}

	if parsed != nil && parsed.Scheme != "" && parsed.Scheme != "https" {
		score += weightPlainHTTP
		findings = append(findings, pick(lang,
			"Conexão sem HTTPS",
			"Connection does not use HTTPS"))
	}

	if !literalIP && host != "" {
		if ageScore, finding := a.domainAgeSignal(ctx, host, lang); finding != "" {
			score += ageScore
			findings = append(findings, finding)
		}
	}

	score = clampScore(score)
	return &core.AgentResult{
		Agent:      a.Kind(),
		Score:      score,
		Verdict:    thresholdVerdict(score),
		Findings:   findings,
		Fallback:   true,
		AnalyzedAt: a.now(),
	}
}

// domainAgeSignal resolves the registration age of the root domain through
// the cache. A failed lookup contributes nothing; it is retried on the next
// analysis because failures are never cached.
func (a *URLAgent) domainAgeSignal(ctx context.Context, host string, lang core.Language) (float64, string) {
	if a.registry == nil || a.cache == nil {
		return 0, ""
	}

	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		a.logger.Debug("Could not derive root domain", zap.String("host", host), zap.Error(err))
		return 0, ""
	}

	record, ok := a.cache.Get(ctx, root)
	if !ok {
		record, err = a.registry.Lookup(ctx, root)
		if err != nil || record == nil {
			a.logger.Debug("Registry lookup unavailable", zap.String("domain", root), zap.Error(err))
			return 0, ""
		}
		if err := a.cache.Set(ctx, root, record, domainRecordTTL); err != nil {
			a.logger.Warn("Failed to cache registry record", zap.String("domain", root), zap.Error(err))
		}
	}

	if record.CreatedAt.IsZero() {
		return 0, ""
	}

	ageDays := int(record.Age(a.now()).Hours() / 24)
	switch {
	case ageDays < 30:
		return weightDomainUnder30d, pick(lang,
			fmt.Sprintf("Domínio registrado há apenas %d dias", ageDays),
			fmt.Sprintf("Domain registered only %d days ago", ageDays))
	case ageDays < 180:
		return weightDomainUnder180d, pick(lang,
			fmt.Sprintf("Domínio recente (%d dias)", ageDays),
			fmt.Sprintf("Recently registered domain (%d days)", ageDays))
	case ageDays < 365:
		return weightDomainUnder365d, pick(lang,
			fmt.Sprintf("Domínio com menos de um ano (%d dias)", ageDays),
			fmt.Sprintf("Domain younger than a year (%d days)", ageDays))
	default:
		return 0, ""
	}
}
