package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/screening"
)

var (
	// ErrNoStrategy is returned when every strategy in the chain is disabled.
	ErrNoStrategy = errors.New("no analysis strategy enabled")
	// ErrAllFailed is returned when every enabled strategy failed for a candidate.
	ErrAllFailed = errors.New("all analysis strategies failed")
)

// Strategy produces an analysis result for a single candidate.
type Strategy interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Analyze(ctx context.Context, candidate *screening.CandidateProfile, req *screening.JobRequirements) (*screening.AnalysisResult, error)
}

// Status represents runtime information about a strategy.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by strategies that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Step counts how a strategy fared over a run.
type Step struct {
	Name      string
	Attempted int
	Succeeded int
	Failed    int
}

// DisableByName marks a strategy with the provided name as disabled while keeping it in the list.
func DisableByName(strategies []Strategy, name, reason string) {
	for _, s := range strategies {
		if s.Name() == name {
			s.Disable(reason)
		}
	}
}

// Describe returns status entries for the provided strategies.
func Describe(strategies []Strategy) []Status {
	statuses := make([]Status, 0, len(strategies))
	for _, s := range strategies {
		if reporter, ok := s.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    s.Name(),
			Enabled: s.IsEnabled(),
		})
	}
	return statuses
}

// Chain tries its strategies in order; the first one that succeeds wins.
type Chain struct {
	strategies []Strategy
	logger     *zap.Logger

	mu    sync.Mutex
	steps map[string]*Step
}

func NewChain(logger *zap.Logger, strategies ...Strategy) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		strategies: strategies,
		logger:     logger,
		steps:      make(map[string]*Step, len(strategies)),
	}
}

func (c *Chain) Strategies() []Strategy { return c.strategies }

// Analyze runs the chain for one candidate and stamps the winning strategy as the result source.
func (c *Chain) Analyze(ctx context.Context, candidate *screening.CandidateProfile, req *screening.JobRequirements) (*screening.AnalysisResult, error) {
	var errs []error
	tried := 0

	for _, s := range c.strategies {
		if !s.IsEnabled() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tried++

		result, err := s.Analyze(ctx, candidate, req)
		if err == nil && result == nil {
			err = errors.New("strategy returned no result")
		}
		if err != nil {
			c.record(s.Name(), false)
			c.logger.Warn("analysis strategy failed, trying the next one",
				logger.Strategy(s.Name()),
				logger.Candidate(candidateID(candidate)),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}

		c.record(s.Name(), true)
		if result.Source == "" {
			result.Source = s.Name()
		}
		return result, nil
	}

	if tried == 0 {
		return nil, ErrNoStrategy
	}
	return nil, fmt.Errorf("%w: %w", ErrAllFailed, errors.Join(errs...))
}

func (c *Chain) record(name string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	step, found := c.steps[name]
	if !found {
		step = &Step{Name: name}
		c.steps[name] = step
	}
	step.Attempted++
	if ok {
		step.Succeeded++
	} else {
		step.Failed++
	}
}

// Steps returns per-strategy counters in chain order.
func (c *Chain) Steps() []Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	steps := make([]Step, 0, len(c.strategies))
	for _, s := range c.strategies {
		if step, ok := c.steps[s.Name()]; ok {
			steps = append(steps, *step)
			continue
		}
		steps = append(steps, Step{Name: s.Name()})
	}
	return steps
}

func candidateID(c *screening.CandidateProfile) string {
	if c == nil {
		return ""
	}
	return c.ID
}
