package agents

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
	"github.com/diogo/llm-phishing-analyzer/internal/prompts"
	"github.com/diogo/llm-phishing-analyzer/internal/utils"
)

// Heuristic weights for the text/HTML fallback.
const (
	weightLexiconHit   = 0.1
	weightLexiconCap   = 0.5
	weightRawLink      = 0.2
	weightFormPresent  = 0.2
	weightPasswordType = 0.15
)

// maxHTMLSnippet bounds how much markup is handed to the prompt.
const maxHTMLSnippet = 1500

// phishingLexicon holds pressure and credential phrases typical of phishing
// messages, Portuguese and English mixed as in real campaign corpora.
var phishingLexicon = []string{
	"urgente", "imediatamente", "expirar", "expira", "bloqueado", "suspensa",
	"suspensão", "bloqueio", "encerrar", "cancelamento", "prazo",
	"clique aqui", "acesse agora", "confirme", "verifique", "atualize",
	"sua conta", "account suspended", "unusual activity", "verify your account",
	"parabéns", "ganhou", "prêmio", "resgate",
	"senha", "password", "cpf", "cartão", "dados bancários",
}

var rawLinkPattern = regexp.MustCompile(`https?://[^\s]+`)

// UnifiedAgent analyzes free text and page markup in a single pass. When
// given only a URL it fetches the page itself with a short timeout.
type UnifiedAgent struct {
	chain      InferenceChain
	httpClient *http.Client
	textProc   *utils.TextProcessor
	logger     *zap.Logger
}

// NewUnifiedAgent creates the combined text/HTML agent.
func NewUnifiedAgent(chain InferenceChain, httpClient *http.Client, textProc *utils.TextProcessor, logger *zap.Logger) *UnifiedAgent {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &UnifiedAgent{
		chain:      chain,
		httpClient: httpClient,
		textProc:   textProc,
		logger:     logger,
	}
}

// Kind implements core.Agent.
func (a *UnifiedAgent) Kind() core.AgentKind { return core.AgentUnifiedText }

// Analyze implements core.Agent.
func (a *UnifiedAgent) Analyze(ctx context.Context, input *core.AnalysisInput) (*core.AgentResult, error) {
	html := input.HTML
	if html == "" && input.URL != "" {
		html = a.fetchHTML(ctx, input.URL)
	}

	text := input.Text
	if text == "" {
		text = input.URL
	}

	if len(strings.TrimSpace(text)) < 5 && html == "" {
		return &core.AgentResult{
			Agent:   a.Kind(),
			Score:   0,
			Verdict: core.VerdictNeutral,
			Findings: []string{pick(input.Language,
				"Dados insuficientes para análise",
				"Insufficient data for analysis")},
			AnalyzedAt: time.Now(),
		}, nil
	}

	promptURL := input.URL
	if promptURL == "" {
		promptURL = pick(input.Language, "Não fornecida", "Not provided")
	}
	promptHTML := html
	if promptHTML == "" {
		promptHTML = pick(input.Language, "Não disponível", "Not available")
	}

	if resp := a.chain.Infer(ctx, prompts.TemplateUnified, map[string]string{
		"text": a.textProc.ProcessText(text, maxHTMLSnippet),
		"url":  promptURL,
		"html": a.textProc.ProcessText(promptHTML, maxHTMLSnippet),
		"lang": string(input.Language),
	}, nil, input.Language, input.ModelPref); resp != nil {
		return adaptResponse(a.Kind(), resp), nil
	}

	return a.heuristic(text, html, input.Language), nil
}

// fetchHTML retrieves the page body; failures simply disable the markup
// signals.
func (a *UnifiedAgent) fetchHTML(ctx context.Context, rawURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("Could not fetch page HTML", zap.String("url", rawURL), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		a.logger.Warn("Could not parse fetched HTML", zap.String("url", rawURL), zap.Error(err))
		return ""
	}
	out, err := doc.Html()
	if err != nil {
		return ""
	}
	return out
}

// heuristic combines the lexicon, raw-link and markup-structure signals.
func (a *UnifiedAgent) heuristic(text, html string, lang core.Language) *core.AgentResult {
	score := 0.0
	findings := []string{pick(lang,
		"Análise heurística (fallback)",
		"Heuristic analysis (fallback mode)")}

	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range phishingLexicon {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) > 0 {
		hit := weightLexiconHit * float64(len(matched))
		if hit > weightLexiconCap {
			hit = weightLexiconCap
		}
		score += hit
		sample := matched
		if len(sample) > 3 {
			sample = sample[:3]
		}
		findings = append(findings, pick(lang,
			"Palavras suspeitas: "+strings.Join(sample, ", "),
			"Suspicious wording: "+strings.Join(sample, ", ")))
	}

	if rawLinkPattern.MatchString(text) {
		score += weightRawLink
		findings = append(findings, pick(lang,
			"Contém links no texto",
			"Contains raw links in the text"))
	}

	if html != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			if doc.Find("form").Length() > 0 {
				score += weightFormPresent
				findings = append(findings, pick(lang,
					"Formulário detectado no HTML",
					"Form element detected in the markup"))
			}
			if doc.Find(`input[type="password"]`).Length() > 0 {
				score += weightPasswordType
				findings = append(findings, pick(lang,
					"Campo de senha detectado",
					"Password input field detected"))
			}
		} else {
			a.logger.Debug("Markup not parseable, skipping HTML signals", zap.Error(err))
		}
	}

	score = clampScore(score)
	return &core.AgentResult{
		Agent:    a.Kind(),
		Score:    score,
		Verdict:  thresholdVerdict(score),
		Findings: findings,
		SuggestedFollowup: pick(lang,
			"Como posso saber se um link é realmente perigoso?",
			"How can I tell if a link is truly dangerous?"),
		Fallback:   true,
		AnalyzedAt: time.Now(),
	}
}
