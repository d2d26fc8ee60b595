package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/config"
	"github.com/diogo/llm-phishing-analyzer/internal/core"
	"github.com/diogo/llm-phishing-analyzer/internal/di"
	"github.com/diogo/llm-phishing-analyzer/internal/logging"
)

var (
	// Input flags
	targetURL = flag.String("url", "", "URL to analyze")
	text      = flag.String("text", "", "Message text to analyze")
	htmlFile  = flag.String("html-file", "", "File with page HTML to analyze")
	imageFile = flag.String("image-file", "", "Screenshot file to analyze")

	// Analysis flags
	model    = flag.String("model", "", "Preferred LLM backend (openai, gemini, bedrock)")
	lang     = flag.String("lang", "", "Output language (pt, en)")
	question = flag.String("question", "", "Follow-up question about the analysis")

	// History flags
	showHistory = flag.Bool("history", false, "Print recent analyses and exit")
	showStats   = flag.Bool("stats", false, "Print history statistics and exit")

	// Logging flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = config.NewFromViper(config.NewEmptyViper())
	}

	container, err := di.BuildContainerWith(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build container", zap.Error(err))
	}

	if *showHistory || *showStats {
		if err := runHistory(container); err != nil {
			logger.Fatal("Failed to read history", zap.Error(err))
		}
		return
	}

	if err := runAnalysis(container, cfg); err != nil {
		logger.Fatal("Analysis failed", zap.Error(err))
	}
}

// runAnalysis performs a one-shot analysis and prints the verdict as JSON.
func runAnalysis(container *dig.Container, cfg *config.Config) error {
	return container.Invoke(func(service *core.AnalysisService) error {
		input := &core.AnalysisInput{
			URL:       *targetURL,
			Text:      *text,
			ModelPref: *model,
			Language:  outputLanguage(cfg),
		}

		if *htmlFile != "" {
			data, err := os.ReadFile(*htmlFile)
			if err != nil {
				return fmt.Errorf("failed to read HTML file: %w", err)
			}
			input.HTML = string(data)
		}
		if *imageFile != "" {
			data, err := os.ReadFile(*imageFile)
			if err != nil {
				return fmt.Errorf("failed to read image file: %w", err)
			}
			input.Image = data
		}

		ctx := context.Background()
		verdict, err := service.AnalyzeFull(ctx, input)
		if err != nil {
			return err
		}

		if err := printJSON(verdictView(verdict, input.Language)); err != nil {
			return err
		}

		if *question != "" {
			answer := service.ChatExplanation(ctx, *question, &core.AnalysisContext{
				Verdict:   verdict,
				Language:  input.Language,
				ModelPref: input.ModelPref,
			})
			fmt.Printf("\n%s\n", answer)
		}
		return nil
	})
}

// runHistory prints recent scans or aggregate statistics.
func runHistory(container *dig.Container) error {
	return container.Invoke(func(repo core.HistoryRepository) error {
		if repo == nil {
			return fmt.Errorf("history persistence is disabled")
		}
		defer repo.Close()

		ctx := context.Background()
		if *showStats {
			stats, err := repo.Stats(ctx)
			if err != nil {
				return err
			}
			return printJSON(stats)
		}

		records, err := repo.Recent(ctx, 10)
		if err != nil {
			return err
		}
		return printJSON(records)
	})
}

// outputLanguage resolves the language flag, falling back to configuration.
func outputLanguage(cfg *config.Config) core.Language {
	switch *lang {
	case "en", "EN":
		return core.LangEN
	case "pt", "PT":
		return core.LangPT
	default:
		return cfg.GetAnalysis().Language
	}
}

// verdictView shapes the consolidated verdict for JSON output.
func verdictView(v *core.ConsolidatedVerdict, lang core.Language) any {
	type agentView struct {
		Agent             string   `json:"agent"`
		Verdict           string   `json:"verdict"`
		Score             float64  `json:"score"`
		Findings          []string `json:"findings"`
		ModelUsed         string   `json:"model_used,omitempty"`
		Fallback          bool     `json:"fallback,omitempty"`
		SuggestedFollowup string   `json:"suggested_question,omitempty"`
	}
	view := struct {
		Verdict           string      `json:"verdict"`
		Score             float64     `json:"score"`
		Summary           string      `json:"summary"`
		SuggestedFollowup string      `json:"suggested_question,omitempty"`
		Agents            []agentView `json:"agents"`
	}{
		Verdict:           v.Verdict.Localize(lang),
		Score:             v.Score,
		Summary:           v.Summary,
		SuggestedFollowup: v.SuggestedFollowup,
	}
	for _, res := range v.PerAgent {
		view.Agents = append(view.Agents, agentView{
			Agent:             res.Agent.String(),
			Verdict:           res.Verdict.Localize(lang),
			Score:             res.Score,
			Findings:          res.Findings,
			ModelUsed:         res.ModelUsed,
			Fallback:          res.Fallback,
			SuggestedFollowup: res.SuggestedFollowup,
		})
	}
	return view
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
