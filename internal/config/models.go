package config

import (
	"time"

	"golang.org/x/text/language"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

// LLMConfig represents the configuration for the inference failover chain
type LLMConfig struct {
	Backends []string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OrchestratorConfig represents the configuration for the agent orchestrator
type OrchestratorConfig struct {
	PoolSize    int
	TaskTimeout time.Duration
}

// AnalysisConfig represents general analysis behaviour
type AnalysisConfig struct {
	Language core.Language
}

// WhoisConfig represents the configuration for WHOIS lookups
type WhoisConfig struct {
	Enabled bool
	Timeout time.Duration
}

// CertConfig represents the configuration for certificate probing
type CertConfig struct {
	Timeout time.Duration
}

// CacheConfig represents the configuration for the domain record cache
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// HistoryConfig represents the configuration for the analysis history store
type HistoryConfig struct {
	Enabled    bool
	SQLitePath string
}

// GetLLM returns the failover chain configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Backends: c.GetStringSlice("llm.backends"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetOrchestrator returns the orchestrator configuration
func (c *Config) GetOrchestrator() OrchestratorConfig {
	timeout, err := c.GetDuration("orchestrator.task_timeout")
	if err != nil {
		timeout = 30 * time.Second
	}
	return OrchestratorConfig{
		PoolSize:    c.GetInt("orchestrator.pool_size"),
		TaskTimeout: timeout,
	}
}

// GetAnalysis returns the general analysis configuration. Unknown or
// unparseable language tags fall back to Portuguese, the original
// audience of this tool.
func (c *Config) GetAnalysis() AnalysisConfig {
	lang := core.LangPT
	if tag, err := language.Parse(c.GetString("analysis.language")); err == nil {
		if base, _ := tag.Base(); base.String() == "en" {
			lang = core.LangEN
		}
	}
	return AnalysisConfig{Language: lang}
}

// GetWhois returns the WHOIS lookup configuration
func (c *Config) GetWhois() WhoisConfig {
	timeout, err := c.GetDuration("whois.timeout")
	if err != nil {
		timeout = 10 * time.Second
	}
	return WhoisConfig{
		Enabled: c.GetBool("whois.enabled"),
		Timeout: timeout,
	}
}

// GetCert returns the certificate probe configuration
func (c *Config) GetCert() CertConfig {
	timeout, err := c.GetDuration("cert.timeout")
	if err != nil {
		timeout = 10 * time.Second
	}
	return CertConfig{Timeout: timeout}
}

// GetCache returns the domain cache configuration
func (c *Config) GetCache() CacheConfig {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		ttl = time.Hour
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		cleanup = 10 * time.Minute
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}
}

// GetHistory returns the history store configuration
func (c *Config) GetHistory() HistoryConfig {
	return HistoryConfig{
		Enabled:    c.GetBool("history.enabled"),
		SQLitePath: c.GetString("history.sqlite_path"),
	}
}
