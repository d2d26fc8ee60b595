package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Orchestrator fans an analysis request out to every applicable agent over a
// bounded worker pool and collects whatever completes within the deadline.
type Orchestrator struct {
	agents      []Agent
	poolSize    int
	taskTimeout time.Duration
	logger      *zap.Logger
}

// NewOrchestrator creates an orchestrator over the given agents. poolSize
// bounds how many agents run at once; taskTimeout is the per-agent deadline.
func NewOrchestrator(agents []Agent, poolSize int, taskTimeout time.Duration, logger *zap.Logger) *Orchestrator {
	if poolSize <= 0 {
		poolSize = 3
	}
	if taskTimeout <= 0 {
		taskTimeout = 30 * time.Second
	}
	return &Orchestrator{
		agents:      agents,
		poolSize:    poolSize,
		taskTimeout: taskTimeout,
		logger:      logger,
	}
}

// applicable selects the agents that can contribute given the inputs: URL
// and certificate agents need a URL, vision needs an image, and the unified
// agent runs on any of url/text/markup.
func (o *Orchestrator) applicable(input *AnalysisInput) []Agent {
	var selected []Agent
	for _, agent := range o.agents {
		switch agent.Kind() {
		case AgentURLLexical, AgentCertificate:
			if input.URL != "" {
				selected = append(selected, agent)
			}
		case AgentVision:
			if len(input.Image) > 0 {
				selected = append(selected, agent)
			}
		case AgentUnifiedText:
			if input.URL != "" || input.Text != "" || input.HTML != "" {
				selected = append(selected, agent)
			}
		}
	}
	return selected
}

// Dispatch runs every applicable agent and returns their results in
// completion order. A timed-out or failed agent is excluded; its siblings
// are unaffected. Returns ErrNoInput when no agent is applicable.
func (o *Orchestrator) Dispatch(ctx context.Context, input *AnalysisInput) ([]AgentResult, error) {
	selected := o.applicable(input)
	if len(selected) == 0 {
		return nil, ErrNoInput
	}

	var (
		mu      sync.Mutex
		results []AgentResult
	)

	g := new(errgroup.Group)
	g.SetLimit(o.poolSize)

	for _, agent := range selected {
		agent := agent
		g.Go(func() error {
			taskCtx, cancel := context.WithTimeout(ctx, o.taskTimeout)
			defer cancel()

			type outcome struct {
				res *AgentResult
				err error
			}

			// The agent runs in its own goroutine so a task that ignores
			// its deadline is abandoned, not waited on. The abandoned
			// goroutine is reclaimed when its own I/O call times out.
			start := time.Now()
			done := make(chan outcome, 1)
			go func() {
				res, err := agent.Analyze(taskCtx, input)
				done <- outcome{res: res, err: err}
			}()

			select {
			case out := <-done:
				if out.err != nil {
					o.logger.Warn("Agent failed, excluded from consolidation",
						zap.String("agent", agent.Kind().String()),
						zap.Duration("elapsed", time.Since(start)),
						zap.Error(out.err))
					return nil
				}
				if out.res == nil {
					o.logger.Debug("Agent produced no result",
						zap.String("agent", agent.Kind().String()))
					return nil
				}
				mu.Lock()
				results = append(results, *out.res)
				mu.Unlock()
			case <-taskCtx.Done():
				o.logger.Warn("Agent exceeded its deadline, abandoned",
					zap.String("agent", agent.Kind().String()),
					zap.Duration("deadline", o.taskTimeout))
			}
			return nil
		})
	}

	// Agent errors are swallowed above; Wait only blocks for completion.
	_ = g.Wait()

	o.logger.Info("Dispatch complete",
		zap.Int("dispatched", len(selected)),
		zap.Int("completed", len(results)))
	return results, nil
}
