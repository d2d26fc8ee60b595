package prompts

import (
	"strings"
	"testing"
)

func TestLoadValidatesAllTemplates(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.System() == "" {
		t.Error("system prompt is empty")
	}
}

func TestRenderSubstitutesVariables(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	out, err := r.Render(TemplateURL, map[string]string{
		"url":  "http://example.com/login",
		"lang": "EN",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, "http://example.com/login") {
		t.Errorf("rendered output missing url value:\n%s", out)
	}
	if strings.Contains(out, "{{url}}") || strings.Contains(out, "{{lang}}") {
		t.Errorf("rendered output still contains placeholders:\n%s", out)
	}
}

func TestRenderDoesNotReexpandValues(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// A value containing placeholder syntax must be carried through
	// literally, not substituted again.
	out, err := r.Render(TemplateURL, map[string]string{
		"url":  "http://evil.test/{{lang}}",
		"lang": "PT",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, "http://evil.test/{{lang}}") {
		t.Errorf("value containing {{ was re-substituted:\n%s", out)
	}
}

func TestRenderRejectsUndeclaredVariable(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := r.Render(TemplateVision, map[string]string{"html": "<p>"}); err == nil {
		t.Error("Render accepted a variable the template does not declare")
	}
	if _, err := r.Render("no_such_template.txt", nil); err == nil {
		t.Error("Render accepted an unknown template id")
	}
}
