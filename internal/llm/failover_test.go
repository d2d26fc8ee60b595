package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
	"github.com/diogo/llm-phishing-analyzer/internal/prompts"
)

type fakeClient struct {
	name   string
	vision bool
	resp   *core.InferenceResponse
	err    error
	calls  int
}

func (f *fakeClient) Name() string         { return f.name }
func (f *fakeClient) SupportsVision() bool { return f.vision }

func (f *fakeClient) Analyze(ctx context.Context, req *core.InferenceRequest) (*core.InferenceResponse, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeClient) Chat(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.resp.Summary, nil
}

func backendFor(c *fakeClient) Backend {
	return Backend{
		Name:    c.name,
		Vision:  c.vision,
		Factory: func() (core.LLMClient, error) { return c, nil },
	}
}

func newTestChain(t *testing.T, backends ...Backend) *Chain {
	t.Helper()
	renderer, err := prompts.Load()
	if err != nil {
		t.Fatalf("prompts.Load: %v", err)
	}
	return NewChain(backends, renderer, time.Second, zap.NewNop())
}

func valid() *core.InferenceResponse {
	return &core.InferenceResponse{Verdict: "Phishing", Score: 0.9, Summary: "credential harvesting page"}
}

func urlVars() map[string]string {
	return map[string]string{"url": "http://example.com", "lang": "EN"}
}

func TestInferReturnsFirstValidResponse(t *testing.T) {
	first := &fakeClient{name: "openai", resp: valid()}
	second := &fakeClient{name: "gemini", resp: valid()}
	chain := newTestChain(t, backendFor(first), backendFor(second))

	resp := chain.Infer(context.Background(), prompts.TemplateURL, urlVars(), nil, core.LangEN, "")
	if resp == nil {
		t.Fatal("Infer returned nil with a healthy backend")
	}
	if second.calls != 0 {
		t.Error("second backend was consulted despite first candidate succeeding")
	}
}

func TestInferAdvancesPastFailures(t *testing.T) {
	bad := &fakeClient{name: "openai", err: errors.New("connection refused")}
	malformed := &fakeClient{name: "gemini", resp: &core.InferenceResponse{Verdict: "Banana", Score: 0.5, Summary: "x"}}
	good := &fakeClient{name: "bedrock", resp: valid()}
	chain := newTestChain(t, backendFor(bad), backendFor(malformed), backendFor(good))

	resp := chain.Infer(context.Background(), prompts.TemplateURL, urlVars(), nil, core.LangEN, "")
	if resp == nil {
		t.Fatal("Infer returned nil with a healthy final candidate")
	}
	if good.calls != 1 {
		t.Errorf("final backend called %d times, want 1", good.calls)
	}
}

func TestInferNilWhenAllBackendsFail(t *testing.T) {
	down := &fakeClient{name: "openai", err: errors.New("timeout")}
	chain := newTestChain(t, backendFor(down))

	if resp := chain.Infer(context.Background(), prompts.TemplateURL, urlVars(), nil, core.LangEN, ""); resp != nil {
		t.Errorf("Infer = %+v, want nil when every backend fails", resp)
	}
}

func TestInferSkipsTextOnlyBackendsForImages(t *testing.T) {
	textOnly := &fakeClient{name: "bedrock", vision: false, resp: valid()}
	visual := &fakeClient{name: "gemini", vision: true, resp: valid()}
	chain := newTestChain(t, backendFor(textOnly), backendFor(visual))

	resp := chain.Infer(context.Background(), prompts.TemplateVision,
		map[string]string{"lang": "EN"}, []byte{0xFF, 0xD8}, core.LangEN, "")
	if resp == nil {
		t.Fatal("Infer returned nil")
	}
	if textOnly.calls != 0 {
		t.Error("text-only backend received an image request")
	}
	if visual.calls != 1 {
		t.Errorf("vision backend called %d times, want 1", visual.calls)
	}
}

func TestInferHonorsModelPreference(t *testing.T) {
	def := &fakeClient{name: "ollama", resp: valid()}
	preferred := &fakeClient{name: "openai", resp: valid()}
	chain := newTestChain(t, backendFor(def), backendFor(preferred))

	resp := chain.Infer(context.Background(), prompts.TemplateURL, urlVars(), nil, core.LangEN, "openai")
	if resp == nil {
		t.Fatal("Infer returned nil")
	}
	if def.calls != 0 {
		t.Error("default backend tried before the preferred one")
	}
	if preferred.calls != 1 {
		t.Errorf("preferred backend called %d times, want 1", preferred.calls)
	}
}

func TestClientHandleReusedAcrossCalls(t *testing.T) {
	created := 0
	cl := &fakeClient{name: "openai", resp: valid()}
	b := Backend{
		Name: "openai",
		Factory: func() (core.LLMClient, error) {
			created++
			return cl, nil
		},
	}
	chain := newTestChain(t, b)

	for i := 0; i < 3; i++ {
		if resp := chain.Infer(context.Background(), prompts.TemplateURL, urlVars(), nil, core.LangEN, ""); resp == nil {
			t.Fatal("Infer returned nil")
		}
	}
	if created != 1 {
		t.Errorf("backend handle created %d times, want 1 (lazy init, reused)", created)
	}
}

func TestChatReturnsAnswerOrError(t *testing.T) {
	good := &fakeClient{name: "openai", resp: &core.InferenceResponse{Summary: "it is dangerous"}}
	chain := newTestChain(t, backendFor(good))

	vars := map[string]string{"context": "{}", "user_query": "why?", "lang": "EN"}
	answer, err := chain.Chat(context.Background(), prompts.TemplateChat, vars, "")
	if err != nil || answer == "" {
		t.Fatalf("Chat = (%q, %v), want non-empty answer", answer, err)
	}

	down := &fakeClient{name: "openai", err: errors.New("overloaded")}
	chain = newTestChain(t, backendFor(down))
	if _, err := chain.Chat(context.Background(), prompts.TemplateChat, vars, ""); err == nil {
		t.Error("Chat succeeded with every backend down")
	}
}
