package core

import (
	"time"
)

// Verdict is the outcome of an analysis, either per-agent or consolidated.
type Verdict string

const (
	VerdictPhishing   Verdict = "Phishing"
	VerdictSuspicious Verdict = "Suspicious"
	VerdictLegitimate Verdict = "Legitimate"
	VerdictNeutral    Verdict = "Neutral"
	VerdictError      Verdict = "Error"
	VerdictUnknown    Verdict = "Unknown"
)

// Language selects the output language for findings, summaries and chat.
type Language string

const (
	LangPT Language = "PT"
	LangEN Language = "EN"
)

// Localize returns the display label for the verdict in the given language.
func (v Verdict) Localize(lang Language) string {
	if lang != LangPT {
		return string(v)
	}
	switch v {
	case VerdictPhishing:
		return "Phishing"
	case VerdictSuspicious:
		return "Suspeito"
	case VerdictLegitimate:
		return "Legítima"
	case VerdictNeutral:
		return "Neutro"
	case VerdictError:
		return "Erro"
	default:
		return "Desconhecido"
	}
}

// AgentKind identifies one of the fixed set of analysis agents.
type AgentKind int

const (
	AgentURLLexical AgentKind = iota
	AgentUnifiedText
	AgentCertificate
	AgentVision
	agentKindCount
)

// String returns the agent's human-readable name.
func (k AgentKind) String() string {
	switch k {
	case AgentURLLexical:
		return "URL Lexical Analyzer"
	case AgentUnifiedText:
		return "Unified Text/HTML Analyzer"
	case AgentCertificate:
		return "TLS Certificate Analyzer"
	case AgentVision:
		return "Vision Analysis Agent"
	default:
		return "Unknown Agent"
	}
}

// AgentResult is the outcome of a single agent's analysis.
type AgentResult struct {
	Agent             AgentKind
	Score             float64
	Verdict           Verdict
	Findings          []string
	SuggestedFollowup string
	ModelUsed         string
	Fallback          bool
	AnalyzedAt        time.Time
}

// ConsolidatedVerdict is the weighted-ensemble combination of agent results.
type ConsolidatedVerdict struct {
	Verdict           Verdict
	Score             float64
	Summary           string
	PerAgent          []AgentResult
	SuggestedFollowup string
	AnalyzedAt        time.Time
}

// AnalysisInput carries the artifact facets submitted for analysis.
// At least one of URL, Text, HTML or Image must be non-empty.
type AnalysisInput struct {
	URL       string
	Text      string
	HTML      string
	Image     []byte
	ModelPref string
	Language  Language
}

// HasPayload reports whether the input carries anything to analyze.
func (in *AnalysisInput) HasPayload() bool {
	return in.URL != "" || in.Text != "" || in.HTML != "" || len(in.Image) > 0
}

// AnalysisContext bridges the most recent verdict into the chat explanation
// channel. It is passed explicitly per session rather than read from shared
// state.
type AnalysisContext struct {
	Verdict   *ConsolidatedVerdict
	Language  Language
	ModelPref string
}

// DomainRecord holds registry data for a root domain.
type DomainRecord struct {
	Domain    string
	CreatedAt time.Time
	ExpiresAt time.Time
	Registrar string
}

// Age returns how long the domain has been registered at the given instant.
func (r *DomainRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt)
}

// InferenceRequest is a rendered prompt ready for an LLM backend.
type InferenceRequest struct {
	System    string
	Prompt    string
	Image     []byte
	Language  Language
	ModelPref string
}

// InferenceResponse is the structured record expected back from a backend.
// The failover chain validates it before accepting.
type InferenceResponse struct {
	Verdict           string  `json:"result"`
	Score             float64 `json:"score"`
	Summary           string  `json:"summary"`
	SuggestedFollowup string  `json:"suggested_question,omitempty"`
	ModelUsed         string  `json:"-"`
}

// ScanRecord is one persisted analysis, mirroring the history table.
type ScanRecord struct {
	ID          int64
	URL         string
	Verdict     string
	Confidence  float64
	Description string
	Timestamp   time.Time
}

// TimelinePoint is one entry in the recent-analysis timeline.
type TimelinePoint struct {
	Date    string
	Verdict string
}

// HistoryStats aggregates the persisted scan history.
type HistoryStats struct {
	Total         int
	Phishing      int
	Suspicious    int
	Legitimate    int
	DetectionRate float64
	AvgConfidence float64
	Timeline      []TimelinePoint
}
