// Package llm implements the inference failover chain: an ordered list of
// LLM backends tried until one returns a structurally valid response.
package llm

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
	"github.com/diogo/llm-phishing-analyzer/internal/prompts"
)

// Backend declares one chain candidate. The client handle is created lazily
// on first use and reused across calls.
type Backend struct {
	Name    string
	Vision  bool
	Factory func() (core.LLMClient, error)
}

// Chain tries each backend in order and returns the first valid response.
type Chain struct {
	backends []Backend
	renderer *prompts.Renderer
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[string]core.LLMClient
}

// NewChain creates a failover chain over the given backends. timeout bounds
// each individual backend request.
func NewChain(backends []Backend, renderer *prompts.Renderer, timeout time.Duration, logger *zap.Logger) *Chain {
	return &Chain{
		backends: backends,
		renderer: renderer,
		timeout:  timeout,
		logger:   logger,
		clients:  make(map[string]core.LLMClient),
	}
}

// client returns the cached handle for a backend, creating it on first use.
func (c *Chain) client(b Backend) (core.LLMClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl, ok := c.clients[b.Name]; ok {
		return cl, nil
	}

	c.logger.Info("Initializing LLM backend", zap.String("backend", b.Name))
	cl, err := b.Factory()
	if err != nil {
		return nil, err
	}
	c.clients[b.Name] = cl
	return cl, nil
}

// candidates returns the backends in try order for this request. A model
// preference naming a configured backend moves it to the front; image
// requests drop backends without vision support regardless of position.
func (c *Chain) candidates(modelPref string, multimodal bool) []Backend {
	ordered := make([]Backend, 0, len(c.backends))
	for _, b := range c.backends {
		if multimodal && !b.Vision {
			continue
		}
		if b.Name == modelPref {
			ordered = append([]Backend{b}, ordered...)
			continue
		}
		ordered = append(ordered, b)
	}
	return ordered
}

// Infer renders the named template and walks the chain. A nil return means
// every backend failed; that is an expected outcome and the caller falls
// back to heuristics.
func (c *Chain) Infer(ctx context.Context, templateID string, vars map[string]string, image []byte, lang core.Language, modelPref string) *core.InferenceResponse {
	prompt, err := c.renderer.Render(templateID, vars)
	if err != nil {
		c.logger.Error("Failed to render prompt template",
			zap.String("template", templateID),
			zap.Error(err))
		return nil
	}

	req := &core.InferenceRequest{
		System:    c.renderer.System(),
		Prompt:    prompt,
		Image:     image,
		Language:  lang,
		ModelPref: modelPref,
	}

	for _, b := range c.candidates(modelPref, len(image) > 0) {
		cl, err := c.client(b)
		if err != nil {
			c.logger.Warn("Failed to initialize LLM backend",
				zap.String("backend", b.Name),
				zap.Error(err))
			continue
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := cl.Analyze(reqCtx, req)
		cancel()
		if err != nil {
			c.logger.Warn("LLM backend failed, trying next candidate",
				zap.String("backend", b.Name),
				zap.String("template", templateID),
				zap.Error(err))
			continue
		}

		if err := validate(resp); err != nil {
			c.logger.Warn("LLM response failed schema validation",
				zap.String("backend", b.Name),
				zap.Error(err))
			continue
		}

		c.logger.Debug("LLM analysis successful",
			zap.String("backend", b.Name),
			zap.String("template", templateID))
		return resp
	}

	c.logger.Info("All LLM backends failed, heuristic fallback engaged",
		zap.String("template", templateID))
	return nil
}

// Chat renders the named template and returns the first backend's free-form
// answer. Unlike Infer, an all-backends failure is reported as an error so
// the explanation channel can show its overload message.
func (c *Chain) Chat(ctx context.Context, templateID string, vars map[string]string, modelPref string) (string, error) {
	prompt, err := c.renderer.Render(templateID, vars)
	if err != nil {
		return "", err
	}

	var lastErr error
	for _, b := range c.candidates(modelPref, false) {
		cl, err := c.client(b)
		if err != nil {
			lastErr = err
			continue
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		answer, err := cl.Chat(reqCtx, c.renderer.System(), prompt)
		cancel()
		if err != nil {
			c.logger.Warn("Chat backend failed, trying next candidate",
				zap.String("backend", b.Name),
				zap.Error(err))
			lastErr = err
			continue
		}
		if strings.TrimSpace(answer) != "" {
			return answer, nil
		}
	}

	if lastErr == nil {
		lastErr = context.DeadlineExceeded
	}
	return "", lastErr
}
