package agents

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
	"github.com/diogo/llm-phishing-analyzer/internal/prompts"
)

// fallbackVisionScore is the neutral default when no vision backend is
// reachable. Pixel heuristics are deliberately out of scope, so the visual
// fallback is weak.
const fallbackVisionScore = 0.1

// VisionAgent delegates screenshot analysis entirely to the inference chain.
type VisionAgent struct {
	chain  InferenceChain
	logger *zap.Logger
}

// NewVisionAgent creates the vision agent.
func NewVisionAgent(chain InferenceChain, logger *zap.Logger) *VisionAgent {
	return &VisionAgent{chain: chain, logger: logger}
}

// Kind implements core.Agent.
func (a *VisionAgent) Kind() core.AgentKind { return core.AgentVision }

// Analyze implements core.Agent.
func (a *VisionAgent) Analyze(ctx context.Context, input *core.AnalysisInput) (*core.AgentResult, error) {
	if len(input.Image) == 0 {
		return nil, nil
	}

	if resp := a.chain.Infer(ctx, prompts.TemplateVision, map[string]string{
		"lang": string(input.Language),
	}, input.Image, input.Language, input.ModelPref); resp != nil {
		return adaptResponse(a.Kind(), resp), nil
	}

	a.logger.Info("Vision backends unavailable, returning neutral visual score")
	return &core.AgentResult{
		Agent:   a.Kind(),
		Score:   fallbackVisionScore,
		Verdict: core.VerdictLegitimate,
		Findings: []string{pick(input.Language,
			"Análise visual indisponível (usando modo básico)",
			"Visual analysis unavailable (fallback mode)")},
		Fallback:   true,
		AnalyzedAt: time.Now(),
	}, nil
}
