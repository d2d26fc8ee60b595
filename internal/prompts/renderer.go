// Package prompts loads the embedded prompt templates and renders them by
// exact placeholder substitution.
package prompts

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Template identifiers.
const (
	TemplateSystem  = "system_prompt.txt"
	TemplateURL     = "prompt_url.txt"
	TemplateUnified = "prompt_unified.txt"
	TemplateVision  = "prompt_vision.txt"
	TemplateChat    = "prompt_chat.txt"
)

// declaredVars lists the placeholders each template is allowed to use. A
// template referencing anything else is rejected at load time, so a
// template/variable mismatch surfaces immediately instead of leaving
// {{var}} literals in rendered output.
var declaredVars = map[string][]string{
	TemplateSystem:  {},
	TemplateURL:     {"url", "lang"},
	TemplateUnified: {"url", "text", "html", "lang"},
	TemplateVision:  {"lang"},
	TemplateChat:    {"context", "user_query", "lang"},
}

type template struct {
	body string
	vars map[string]bool
}

// Renderer holds the validated templates.
type Renderer struct {
	templates map[string]*template
}

// Load reads every declared template from the embedded filesystem and
// validates its placeholders.
func Load() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template)}

	for id, vars := range declaredVars {
		raw, err := templateFS.ReadFile("templates/" + id)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt template %s: %w", id, err)
		}

		allowed := make(map[string]bool, len(vars))
		for _, v := range vars {
			allowed[v] = true
		}

		for _, name := range scanPlaceholders(string(raw)) {
			if !allowed[name] {
				return nil, fmt.Errorf("template %s references unknown placeholder {{%s}}", id, name)
			}
		}

		r.templates[id] = &template{body: string(raw), vars: allowed}
	}

	return r, nil
}

// System returns the rendered system prompt.
func (r *Renderer) System() string {
	return r.templates[TemplateSystem].body
}

// Render substitutes vars into the named template in a single left-to-right
// pass. Placeholder sequences inside a substituted value are not expanded
// again, so values containing {{ are safe.
func (r *Renderer) Render(id string, vars map[string]string) (string, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return "", fmt.Errorf("unknown prompt template: %s", id)
	}
	for name := range vars {
		if !tmpl.vars[name] {
			return "", fmt.Errorf("template %s does not declare variable %q", id, name)
		}
	}

	var b strings.Builder
	body := tmpl.body
	for {
		start := strings.Index(body, "{{")
		if start < 0 {
			b.WriteString(body)
			break
		}
		end := strings.Index(body[start:], "}}")
		if end < 0 {
			b.WriteString(body)
			break
		}
		end += start

		b.WriteString(body[:start])
		name := body[start+2 : end]
		if value, ok := vars[name]; ok {
			b.WriteString(value)
		} else {
			// Declared but unsupplied: keep the literal so the gap is visible.
			b.WriteString(body[start : end+2])
		}
		body = body[end+2:]
	}

	return b.String(), nil
}

// scanPlaceholders returns the names of every {{...}} sequence in body.
func scanPlaceholders(body string) []string {
	var names []string
	for {
		start := strings.Index(body, "{{")
		if start < 0 {
			return names
		}
		end := strings.Index(body[start:], "}}")
		if end < 0 {
			return names
		}
		names = append(names, body[start+2:start+end])
		body = body[start+end+2:]
	}
}
