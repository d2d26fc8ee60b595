package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/adapters/bedrock"
	"github.com/diogo/llm-phishing-analyzer/internal/adapters/gemini"
	"github.com/diogo/llm-phishing-analyzer/internal/adapters/openai"
	"github.com/diogo/llm-phishing-analyzer/internal/config"
	"github.com/diogo/llm-phishing-analyzer/internal/llm"
)

// LLMFactory builds the inference failover chain candidates
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateBackends creates the chain candidates in configured order. Client
// handles are not created here; the chain initializes each backend lazily
// on first use.
func (f *LLMFactory) CreateBackends() ([]llm.Backend, error) {
	llmConfig := f.cfg.GetLLM()
	if len(llmConfig.Backends) == 0 {
		return nil, fmt.Errorf("no LLM backends configured")
	}

	backends := make([]llm.Backend, 0, len(llmConfig.Backends))
	for _, name := range llmConfig.Backends {
		switch name {
		case "openai":
			factory := openai.NewFactory(f.cfg, f.logger)
			backends = append(backends, llm.Backend{
				Name:    "openai",
				Vision:  true,
				Factory: factory.CreateClient,
			})
		case "gemini":
			factory := gemini.NewFactory(f.cfg, f.logger)
			backends = append(backends, llm.Backend{
				Name:    "gemini",
				Vision:  true,
				Factory: factory.CreateClient,
			})
		case "bedrock":
			factory := bedrock.NewFactory(f.cfg, f.logger)
			backends = append(backends, llm.Backend{
				Name:    "bedrock",
				Vision:  false,
				Factory: factory.CreateClient,
			})
		default:
			return nil, fmt.Errorf("unsupported LLM backend: %s", name)
		}
	}

	return backends, nil
}
