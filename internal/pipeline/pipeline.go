// Package pipeline wires the screening engine, the analysis strategies and
// the batch runner into one service used by the CLI and the HTTP server.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/batch"
	"github.com/spigell/hh-screener/internal/ingestion"
	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/strategy"
)

// AIConfig enables the generative analysis strategy in front of the deterministic one.
type AIConfig struct {
	Analyzer ai.Analyzer
	Provider string
	Model    string
	// Cache is skipped when CacheDisabled is set.
	Cache         strategy.CacheOptions
	CacheDisabled bool
}

type Config struct {
	Criteria      screening.EvaluationCriteria
	EngineOptions []screening.Option
	// AI is optional; without it every candidate is scored by the rule-based engine.
	AI          *AIConfig
	Concurrency int
	Logger      *zap.Logger
}

// Service screens candidate pools. It is safe for concurrent use.
type Service struct {
	cfg        Config
	logger     *zap.Logger
	chain      *strategy.Chain
	aiStrategy strategy.Strategy
	runner     *batch.Runner
}

func New(cfg Config) (*Service, error) {
	if err := cfg.Criteria.Validate(); err != nil {
		return nil, fmt.Errorf("invalid criteria: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{cfg: cfg, logger: log}

	engine := screening.NewEngine(cfg.Criteria, cfg.EngineOptions...)
	if cfg.AI != nil {
		s.aiStrategy = s.newAIStrategy(engine)
		if !cfg.AI.CacheDisabled {
			opts := cfg.AI.Cache
			if opts.Logger == nil {
				opts.Logger = log
			}
			s.aiStrategy = strategy.NewCached(s.aiStrategy, opts)
		}
	}

	s.chain = s.newChain(engine, s.aiStrategy)
	s.runner = s.newRunner(s.chain)

	return s, nil
}

func (s *Service) newAIStrategy(engine *screening.Engine) strategy.Strategy {
	name := s.cfg.AI.Provider
	if name == "" {
		name = "ai"
	}
	return strategy.NewAI(name, s.cfg.AI.Model, strategy.AIDeps{
		Analyzer: s.cfg.AI.Analyzer,
		Engine:   engine,
		Logger:   s.logger,
	})
}

func (s *Service) newChain(engine *screening.Engine, aiStrategy strategy.Strategy) *strategy.Chain {
	strategies := make([]strategy.Strategy, 0, 2)
	if aiStrategy != nil {
		strategies = append(strategies, aiStrategy)
	}
	strategies = append(strategies, strategy.NewDeterministic(engine))
	return strategy.NewChain(s.logger, strategies...)
}

func (s *Service) newRunner(chain *strategy.Chain) *batch.Runner {
	return batch.NewRunner(chain, batch.Options{
		Concurrency: s.cfg.Concurrency,
		Logger:      s.logger,
	})
}

// Chain is the strategy chain used for requests without their own criteria.
func (s *Service) Chain() *strategy.Chain { return s.chain }

func (s *Service) Concurrency() int { return s.runner.Concurrency() }

// Run screens the pool with the configured criteria.
func (s *Service) Run(ctx context.Context, candidates []*screening.CandidateProfile, req *screening.JobRequirements) (*batch.Result, error) {
	return s.runner.Run(ctx, candidates, req)
}

// Screen runs a self-contained request. Custom criteria get a fresh engine
// and chain; AI results are not cached for them since the cache key does not
// cover the weights.
func (s *Service) Screen(ctx context.Context, req *ingestion.ScreenRequest) (*batch.Result, error) {
	if req == nil {
		return nil, errors.New("screen request is required")
	}
	if req.Criteria == nil {
		return s.Run(ctx, req.Candidates, req.Requirements)
	}

	if err := req.Criteria.Validate(); err != nil {
		return nil, fmt.Errorf("invalid criteria: %w", err)
	}

	engine := screening.NewEngine(*req.Criteria, s.cfg.EngineOptions...)
	var aiStrategy strategy.Strategy
	if s.cfg.AI != nil && s.aiStrategy.IsEnabled() {
		aiStrategy = s.newAIStrategy(engine)
	}

	return s.newRunner(s.newChain(engine, aiStrategy)).Run(ctx, req.Candidates, req.Requirements)
}
