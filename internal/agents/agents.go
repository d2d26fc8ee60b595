// Package agents contains the four analysis agents: lexical URL, unified
// text/HTML, TLS certificate and vision. Each agent tries the inference
// failover chain first and falls back to deterministic heuristics, so an
// analysis never fails just because every LLM backend is unreachable.
package agents

import (
	"context"
	"math"
	"time"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
	"github.com/diogo/llm-phishing-analyzer/internal/llm"
)

// InferenceChain is the slice of the failover chain the agents consume.
type InferenceChain interface {
	Infer(ctx context.Context, templateID string, vars map[string]string, image []byte, lang core.Language, modelPref string) *core.InferenceResponse
}

// adaptResponse converts a validated chain response into this agent's result.
func adaptResponse(kind core.AgentKind, resp *core.InferenceResponse) *core.AgentResult {
	verdict, _ := llm.NormalizeVerdict(resp.Verdict)
	findings := []string{resp.Summary}
	return &core.AgentResult{
		Agent:             kind,
		Score:             clampScore(resp.Score),
		Verdict:           verdict,
		Findings:          findings,
		SuggestedFollowup: resp.SuggestedFollowup,
		ModelUsed:         resp.ModelUsed,
		AnalyzedAt:        time.Now(),
	}
}

// clampScore bounds a score to [0, 1].
func clampScore(s float64) float64 {
	return math.Min(math.Max(s, 0), 1)
}

// pick returns the Portuguese or English variant for the given language.
func pick(lang core.Language, pt, en string) string {
	if lang == core.LangPT {
		return pt
	}
	return en
}

// thresholdVerdict maps a heuristic score onto a verdict using the shared
// fallback thresholds.
func thresholdVerdict(score float64) core.Verdict {
	switch {
	case score >= 0.5:
		return core.VerdictPhishing
	case score >= 0.25:
		return core.VerdictSuspicious
	default:
		return core.VerdictLegitimate
	}
}
