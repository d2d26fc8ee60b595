package core

import (
	"time"
)

// Consolidation thresholds over the weighted mean.
const (
	phishingThreshold   = 0.6
	suspiciousThreshold = 0.4
)

// agentWeights is the static ensemble weight table. It is a total function
// over the closed AgentKind set, so no agent ever falls through to a
// default.
var agentWeights = map[AgentKind]float64{
	AgentURLLexical:   0.25,
	AgentUnifiedText:  0.35,
	AgentCertificate:  0.25,
	AgentVision:       0.15,
}

// Consolidator combines agent results into a single verdict by weighted
// averaging.
type Consolidator struct {
	weights map[AgentKind]float64
}

// NewConsolidator creates a consolidator with the default weight table.
func NewConsolidator() *Consolidator {
	return &Consolidator{weights: agentWeights}
}

// Consolidate computes the re-normalized weighted mean of the supplied
// results: absent agents contribute to neither numerator nor denominator.
// The mean is commutative, so completion order never changes the verdict.
// The suggested follow-up is the first non-empty one in completion order;
// this tie-break is arbitrary, not a designed preference.
func (c *Consolidator) Consolidate(results []AgentResult, lang Language) *ConsolidatedVerdict {
	if len(results) == 0 {
		return &ConsolidatedVerdict{
			Verdict:    VerdictUnknown,
			Score:      0,
			Summary:    summaryFor(VerdictUnknown, lang),
			AnalyzedAt: time.Now(),
		}
	}

	totalScore := 0.0
	totalWeight := 0.0
	followup := ""
	for _, res := range results {
		weight := c.weights[res.Agent]
		totalScore += res.Score * weight
		totalWeight += weight
		if followup == "" && res.SuggestedFollowup != "" {
			followup = res.SuggestedFollowup
		}
	}

	finalScore := 0.0
	if totalWeight > 0 {
		finalScore = totalScore / totalWeight
	}

	verdict := VerdictLegitimate
	switch {
	case finalScore > phishingThreshold:
		verdict = VerdictPhishing
	case finalScore > suspiciousThreshold:
		verdict = VerdictSuspicious
	}

	return &ConsolidatedVerdict{
		Verdict:           verdict,
		Score:             finalScore,
		Summary:           summaryFor(verdict, lang),
		PerAgent:          results,
		SuggestedFollowup: followup,
		AnalyzedAt:        time.Now(),
	}
}

// summaryFor returns the templated natural-language summary for a verdict.
func summaryFor(v Verdict, lang Language) string {
	if lang == LangPT {
		switch v {
		case VerdictPhishing:
			return "Alta probabilidade de fraude detectada por múltiplos agentes."
		case VerdictSuspicious:
			return "Padrões anômalos detectados. Recomenda-se cautela extrema."
		case VerdictUnknown:
			return "Nenhum dado fornecido."
		default:
			return "A análise não encontrou evidências significativas de phishing."
		}
	}
	switch v {
	case VerdictPhishing:
		return "High probability of fraud detected by multiple agents."
	case VerdictSuspicious:
		return "Anomalous patterns detected. Extreme caution is advised."
	case VerdictUnknown:
		return "No data provided."
	default:
		return "The analysis found no significant evidence of phishing."
	}
}
