package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/prompts"
)

// ChatChain is the slice of the failover chain the explanation channel uses.
type ChatChain interface {
	Chat(ctx context.Context, templateID string, vars map[string]string, modelPref string) (string, error)
}

// AnalysisService is the in-process entry point for the excluded HTTP
// layer: full multi-agent analysis plus the guarded explanation channel.
type AnalysisService struct {
	orchestrator *Orchestrator
	consolidator *Consolidator
	guardrail    *Guardrail
	chain        ChatChain
	history      HistoryRepository
	logger       *zap.Logger

	mu          sync.RWMutex
	lastContext *AnalysisContext
}

// NewAnalysisService creates the analysis service. history may be nil when
// persistence is disabled.
func NewAnalysisService(
	orchestrator *Orchestrator,
	consolidator *Consolidator,
	guardrail *Guardrail,
	chain ChatChain,
	history HistoryRepository,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		orchestrator: orchestrator,
		consolidator: consolidator,
		guardrail:    guardrail,
		chain:        chain,
		history:      history,
		logger:       logger,
	}
}

// AnalyzeFull dispatches every applicable agent, consolidates their
// verdicts and records the outcome. It fails only on empty input; agent
// failures degrade to a lower-confidence verdict.
func (s *AnalysisService) AnalyzeFull(ctx context.Context, input *AnalysisInput) (*ConsolidatedVerdict, error) {
	if input == nil || !input.HasPayload() {
		return nil, ErrNoInput
	}
	if input.Language == "" {
		input.Language = LangPT
	}

	s.logger.Info("Starting multi-agent analysis",
		zap.Bool("url", input.URL != ""),
		zap.Bool("text", input.Text != ""),
		zap.Bool("html", input.HTML != ""),
		zap.Bool("image", len(input.Image) > 0),
		zap.String("language", string(input.Language)))

	results, err := s.orchestrator.Dispatch(ctx, input)
	if err != nil {
		return nil, err
	}

	verdict := s.consolidator.Consolidate(results, input.Language)

	s.setLastContext(&AnalysisContext{
		Verdict:   verdict,
		Language:  input.Language,
		ModelPref: input.ModelPref,
	})
	s.saveHistory(ctx, input, verdict)

	return verdict, nil
}

// ChatExplanation answers a follow-up question about an analysis. The
// guardrail runs first; its refusal is a successful response, not an error.
func (s *AnalysisService) ChatExplanation(ctx context.Context, query string, analysisCtx *AnalysisContext) string {
	if analysisCtx == nil {
		analysisCtx = s.LastContext()
	}
	lang := LangPT
	modelPref := ""
	if analysisCtx != nil {
		lang = analysisCtx.Language
		modelPref = analysisCtx.ModelPref
	}

	if s.guardrail.IsHarmful(query) {
		s.logger.Warn("Guardrail blocked explanation query")
		return s.guardrail.RefusalMessage(lang)
	}

	answer, err := s.chain.Chat(ctx, prompts.TemplateChat, map[string]string{
		"context":    serializeContext(analysisCtx),
		"user_query": query,
		"lang":       string(lang),
	}, modelPref)
	if err != nil {
		s.logger.Warn("Explanation channel unavailable", zap.Error(err))
		if lang == LangPT {
			return "Opa, minha inteligência está um pouco sobrecarregada agora. Por favor, aguarde uns 30 segundos e tente me perguntar novamente!"
		}
		return "My reasoning engine is a bit overloaded right now. Please wait about 30 seconds and ask me again!"
	}
	return answer
}

// LastContext returns the most recent analysis context, for callers that do
// not track sessions themselves.
func (s *AnalysisService) LastContext() *AnalysisContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastContext
}

func (s *AnalysisService) setLastContext(ctx *AnalysisContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastContext = ctx
}

// saveHistory persists the scan; storage failures are logged, never fatal.
func (s *AnalysisService) saveHistory(ctx context.Context, input *AnalysisInput, verdict *ConsolidatedVerdict) {
	if s.history == nil {
		return
	}

	recordURL := input.URL
	if recordURL == "" {
		recordURL = fmt.Sprintf("Analysis: %s", time.Now().Format("15:04:05"))
	}

	err := s.history.Save(ctx, &ScanRecord{
		URL:         recordURL,
		Verdict:     string(verdict.Verdict),
		Confidence:  verdict.Score,
		Description: verdict.Summary,
		Timestamp:   verdict.AnalyzedAt,
	})
	if err != nil {
		s.logger.Error("Failed to save scan history", zap.Error(err))
	}
}

// serializeContext renders the analysis context for the chat prompt.
func serializeContext(ctx *AnalysisContext) string {
	if ctx == nil || ctx.Verdict == nil {
		return "{}"
	}

	type agentView struct {
		Agent    string   `json:"agent"`
		Verdict  string   `json:"verdict"`
		Score    float64  `json:"score"`
		Findings []string `json:"findings"`
	}
	view := struct {
		Verdict  string      `json:"verdict"`
		Score    float64     `json:"score"`
		Summary  string      `json:"summary"`
		PerAgent []agentView `json:"agents"`
	}{
		Verdict: string(ctx.Verdict.Verdict),
		Score:   ctx.Verdict.Score,
		Summary: ctx.Verdict.Summary,
	}
	for _, res := range ctx.Verdict.PerAgent {
		view.PerAgent = append(view.PerAgent, agentView{
			Agent:    res.Agent.String(),
			Verdict:  string(res.Verdict),
			Score:    res.Score,
			Findings: res.Findings,
		})
	}

	out, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}
