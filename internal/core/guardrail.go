package core

import (
	"strings"
	"unicode"
)

// creationTokens are verbs expressing intent to produce something, English
// and Portuguese. Matched as whole words only: short Portuguese imperatives
// like "gere" and "crie" otherwise fire inside benign words ("gerenciar").
var creationTokens = map[string]bool{
	"create": true, "generate": true, "build": true, "develop": true,
	"make": true, "write": true, "code": true,
	"criar": true, "crie": true, "gerar": true, "gere": true,
	"construir": true, "desenvolver": true, "desenvolva": true,
	"fazer": true, "faça": true, "escrever": true, "escreva": true,
}

// maliciousTokens name artifacts the explanation channel must never help
// produce.
var maliciousTokens = []string{
	"malware", "exploit", "payload", "ransomware", "trojan", "botnet",
	"keylogger", "backdoor", "rootkit", "spyware",
	"phishing page", "phishing site", "phishing email", "phishing script",
	"página de phishing", "site de phishing", "email de phishing", "script de phishing",
	"vírus", "virus",
}

// Guardrail classifies a follow-up query as malicious-intent before it
// reaches the explanation channel.
type Guardrail struct{}

// NewGuardrail creates the content-safety guardrail.
func NewGuardrail() *Guardrail {
	return &Guardrail{}
}

// IsHarmful reports whether the query combines a creation verb with a
// malicious artifact. The conjunction is required: asking to "explain
// ransomware" is fine, and so is "create a budget".
func (g *Guardrail) IsHarmful(query string) bool {
	lower := strings.ToLower(query)

	creation := false
	for _, word := range strings.FieldsFunc(lower, isNotLetter) {
		if creationTokens[word] {
			creation = true
			break
		}
	}
	if !creation {
		return false
	}

	for _, token := range maliciousTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func isNotLetter(r rune) bool {
	return !unicode.IsLetter(r)
}

// RefusalMessage returns the fixed safety response in the requested language.
func (g *Guardrail) RefusalMessage(lang Language) string {
	if lang == LangPT {
		return "Não posso ajudar a criar conteúdo malicioso. Posso explicar como esses ataques funcionam para que você se proteja."
	}
	return "I can't help create malicious content. I can explain how these attacks work so you can protect yourself."
}
