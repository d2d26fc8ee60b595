package core

import (
	"math"
	"testing"
)

func TestConsolidateWeightedMean(t *testing.T) {
	c := NewConsolidator()

	results := []AgentResult{
		{Agent: AgentURLLexical, Score: 0.8, Verdict: VerdictPhishing},
		{Agent: AgentUnifiedText, Score: 0.6, Verdict: VerdictPhishing},
		{Agent: AgentCertificate, Score: 0.4, Verdict: VerdictSuspicious},
	}

	got := c.Consolidate(results, LangEN)

	// (0.8*0.25 + 0.6*0.35 + 0.4*0.25) / (0.25 + 0.35 + 0.25)
	want := (0.8*0.25 + 0.6*0.35 + 0.4*0.25) / 0.85
	if math.Abs(got.Score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", got.Score, want)
	}
	if got.Verdict != VerdictSuspicious {
		t.Errorf("verdict = %v, want Suspicious for score %v", got.Verdict, got.Score)
	}
	if len(got.PerAgent) != 3 {
		t.Errorf("per-agent results = %d, want 3", len(got.PerAgent))
	}
}

func TestConsolidateOrderIndependent(t *testing.T) {
	c := NewConsolidator()

	results := []AgentResult{
		{Agent: AgentURLLexical, Score: 0.9},
		{Agent: AgentUnifiedText, Score: 0.2},
		{Agent: AgentCertificate, Score: 0.7},
		{Agent: AgentVision, Score: 0.1},
	}
	permuted := []AgentResult{results[2], results[0], results[3], results[1]}

	a := c.Consolidate(results, LangEN)
	b := c.Consolidate(permuted, LangEN)
	if math.Abs(a.Score-b.Score) > 1e-12 {
		t.Errorf("score depends on result order: %v vs %v", a.Score, b.Score)
	}
	if a.Verdict != b.Verdict {
		t.Errorf("verdict depends on result order: %v vs %v", a.Verdict, b.Verdict)
	}
}

func TestConsolidateEmptyIsUnknown(t *testing.T) {
	got := NewConsolidator().Consolidate(nil, LangEN)
	if got.Verdict != VerdictUnknown || got.Score != 0 {
		t.Errorf("empty consolidation = (%v, %v), want (Unknown, 0)", got.Verdict, got.Score)
	}
	if got.Summary == "" {
		t.Error("empty consolidation has no summary")
	}
}

func TestConsolidateRenormalizesForAbsentAgents(t *testing.T) {
	c := NewConsolidator()

	// A single contributor must carry its own score untouched: the mean is
	// over supplied results only, not a fixed four-agent denominator.
	got := c.Consolidate([]AgentResult{{Agent: AgentVision, Score: 0.8}}, LangEN)
	if math.Abs(got.Score-0.8) > 1e-9 {
		t.Errorf("single-agent score = %v, want 0.8", got.Score)
	}
	if got.Verdict != VerdictPhishing {
		t.Errorf("verdict = %v, want Phishing (> 0.6)", got.Verdict)
	}
}

func TestConsolidateThresholds(t *testing.T) {
	c := NewConsolidator()

	cases := []struct {
		score float64
		want  Verdict
	}{
		{0.61, VerdictPhishing},
		{0.6, VerdictSuspicious},
		{0.41, VerdictSuspicious},
		{0.4, VerdictLegitimate},
		{0.0, VerdictLegitimate},
	}
	for _, tc := range cases {
		got := c.Consolidate([]AgentResult{{Agent: AgentURLLexical, Score: tc.score}}, LangEN)
		if got.Verdict != tc.want {
			t.Errorf("score %v: verdict = %v, want %v", tc.score, got.Verdict, tc.want)
		}
	}
}

func TestConsolidateFirstNonEmptyFollowup(t *testing.T) {
	c := NewConsolidator()

	got := c.Consolidate([]AgentResult{
		{Agent: AgentURLLexical, Score: 0.1},
		{Agent: AgentCertificate, Score: 0.1, SuggestedFollowup: "is this CA trustworthy?"},
		{Agent: AgentUnifiedText, Score: 0.1, SuggestedFollowup: "is this link dangerous?"},
	}, LangEN)

	if got.SuggestedFollowup != "is this CA trustworthy?" {
		t.Errorf("followup = %q, want first non-empty in completion order", got.SuggestedFollowup)
	}
}

func TestWeightTableIsTotalOverAgentKinds(t *testing.T) {
	for kind := AgentKind(0); kind < agentKindCount; kind++ {
		if w, ok := agentWeights[kind]; !ok || w <= 0 {
			t.Errorf("agent %v has no positive weight (got %v)", kind, w)
		}
	}
}
