package llm

import (
	"fmt"
	"strings"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

// NormalizeVerdict maps a model-reported verdict string (including the
// Portuguese labels some models echo back) onto the closed Verdict set.
func NormalizeVerdict(s string) (core.Verdict, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phishing":
		return core.VerdictPhishing, true
	case "suspicious", "suspeito", "suspect":
		return core.VerdictSuspicious, true
	case "legitimate", "legítima", "legitima", "legit", "safe":
		return core.VerdictLegitimate, true
	default:
		return core.VerdictUnknown, false
	}
}

// validate checks an inference response against the expected schema.
func validate(resp *core.InferenceResponse) error {
	if resp == nil {
		return fmt.Errorf("nil response")
	}
	if _, ok := NormalizeVerdict(resp.Verdict); !ok {
		return fmt.Errorf("verdict %q outside expected set", resp.Verdict)
	}
	if resp.Score < 0 || resp.Score > 1 {
		return fmt.Errorf("score %v outside [0, 1]", resp.Score)
	}
	if strings.TrimSpace(resp.Summary) == "" {
		return fmt.Errorf("empty summary")
	}
	return nil
}
