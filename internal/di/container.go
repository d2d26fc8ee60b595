package di

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/adapters/history"
	"github.com/diogo/llm-phishing-analyzer/internal/adapters/tlsprobe"
	"github.com/diogo/llm-phishing-analyzer/internal/adapters/whois"
	"github.com/diogo/llm-phishing-analyzer/internal/agents"
	"github.com/diogo/llm-phishing-analyzer/internal/config"
	"github.com/diogo/llm-phishing-analyzer/internal/core"
	"github.com/diogo/llm-phishing-analyzer/internal/factory"
	"github.com/diogo/llm-phishing-analyzer/internal/llm"
	"github.com/diogo/llm-phishing-analyzer/internal/logging"
	"github.com/diogo/llm-phishing-analyzer/internal/prompts"
	"github.com/diogo/llm-phishing-analyzer/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	return provideComponents(container)
}

// BuildContainerWith creates a container around pre-built configuration and
// logger instances, used by the CLI entry point.
func BuildContainerWith(cfg *config.Config, logger *zap.Logger) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *zap.Logger { return logger }); err != nil {
		return nil, err
	}

	return provideComponents(container)
}

// provideComponents registers everything downstream of config and logging.
func provideComponents(container *dig.Container) (*dig.Container, error) {
	// Register prompt renderer
	if err := container.Provide(prompts.Load); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}

	// Register inference failover chain
	if err := container.Provide(func(f *factory.LLMFactory, cfg *config.Config, renderer *prompts.Renderer, logger *zap.Logger) (*llm.Chain, error) {
		backends, err := f.CreateBackends()
		if err != nil {
			return nil, err
		}
		return llm.NewChain(backends, renderer, cfg.GetOrchestrator().TaskTimeout, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register domain registry
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.DomainRegistry {
		whoisCfg := cfg.GetWhois()
		if !whoisCfg.Enabled {
			logger.Info("WHOIS lookups disabled, domain age signal unavailable")
			return nil
		}
		return whois.NewRegistry(whoisCfg.Timeout, logger)
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory, logger *zap.Logger) (core.CacheRepository, error) {
		if !f.IsCacheEnabled() {
			logger.Info("Domain cache disabled, registry lookups are uncached")
			return nil, nil
		}
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register certificate fetcher
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.CertFetcher {
		return tlsprobe.NewFetcher(cfg.GetCert().Timeout, logger)
	}); err != nil {
		return nil, err
	}

	// Register history repository
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.HistoryRepository, error) {
		historyCfg := cfg.GetHistory()
		if !historyCfg.Enabled {
			return nil, nil
		}
		if err := os.MkdirAll(filepath.Dir(historyCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		return history.NewSQLiteHistory(historyCfg.SQLitePath, logger)
	}); err != nil {
		return nil, err
	}

	// Register analysis agents
	if err := container.Provide(func(
		chain *llm.Chain,
		registry core.DomainRegistry,
		cacheRepo core.CacheRepository,
		fetcher core.CertFetcher,
		textProc *utils.TextProcessor,
		logger *zap.Logger,
	) []core.Agent {
		return []core.Agent{
			agents.NewURLAgent(chain, registry, cacheRepo, logger),
			agents.NewUnifiedAgent(chain, nil, textProc, logger),
			agents.NewCertAgent(fetcher, logger),
			agents.NewVisionAgent(chain, logger),
		}
	}); err != nil {
		return nil, err
	}

	// Register orchestrator
	if err := container.Provide(func(agentList []core.Agent, cfg *config.Config, logger *zap.Logger) *core.Orchestrator {
		orchCfg := cfg.GetOrchestrator()
		return core.NewOrchestrator(agentList, orchCfg.PoolSize, orchCfg.TaskTimeout, logger)
	}); err != nil {
		return nil, err
	}

	// Register consolidator and guardrail
	if err := container.Provide(core.NewConsolidator); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewGuardrail); err != nil {
		return nil, err
	}

	// Register chat channel view of the chain
	if err := container.Provide(func(chain *llm.Chain) core.ChatChain { return chain }); err != nil {
		return nil, err
	}

	// Register analysis service
	if err := container.Provide(core.NewAnalysisService); err != nil {
		return nil, err
	}

	return container, nil
}
