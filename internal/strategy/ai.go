package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/utils"
)

type aiStrategy struct {
	name     string
	model    string
	analyzer ai.Analyzer
	engine   *screening.Engine
	logger   *zap.Logger
	enabled  bool
	reason   string
}

type AIDeps struct {
	Analyzer ai.Analyzer
	Engine   *screening.Engine
	Logger   *zap.Logger
}

// NewAI builds the strategy backed by an external generative analyzer.
// Scores returned by the provider go through the same aggregation and
// classification as the rule-based engine.
func NewAI(name, model string, deps AIDeps) Strategy {
	s := &aiStrategy{
		name:     name,
		model:    model,
		analyzer: deps.Analyzer,
		engine:   deps.Engine,
		logger:   deps.Logger,
		enabled:  true,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.analyzer == nil || s.engine == nil {
		s.Disable("analyzer is not configured")
	}
	return s
}

func (s *aiStrategy) Name() string { return s.name }

func (s *aiStrategy) Disable(reason string) {
	s.enabled = false
	s.reason = reason
}

func (s *aiStrategy) IsEnabled() bool { return s.enabled }

func (s *aiStrategy) Analyze(ctx context.Context, candidate *screening.CandidateProfile, req *screening.JobRequirements) (*screening.AnalysisResult, error) {
	if err := screening.CheckCandidate(candidate); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.New("job requirements are required")
	}

	assessment, err := s.analyzer.Assess(ctx, candidate, req)
	if err != nil {
		return nil, fmt.Errorf("assess candidate: %w", err)
	}
	if assessment == nil {
		return nil, errors.New("assess candidate: empty assessment")
	}

	result := s.engine.Assemble(candidate, req, assessment.Scores)
	overrideNarrative(&result.Narrative, assessment)
	result.Source = s.name

	s.logger.Debug("candidate assessed by AI provider",
		logger.Candidate(candidate.ID),
		zap.Int("score", result.Overall.Score),
	)

	return &result, nil
}

// overrideNarrative keeps the generated fields unless the provider supplied its own.
func overrideNarrative(n *screening.Narrative, a *ai.CandidateAssessment) {
	if items := utils.TrimAll(a.Strengths); len(items) > 0 {
		n.Strengths = items
	}
	if items := utils.TrimAll(a.Weaknesses); len(items) > 0 {
		n.Weaknesses = items
	}
	if items := utils.TrimAll(a.Risks); len(items) > 0 {
		n.Risks = items
	}
	if items := utils.TrimAll(a.Opportunities); len(items) > 0 {
		n.Opportunities = items
	}
	if reasoning := strings.TrimSpace(a.Reasoning); reasoning != "" {
		n.DetailedReasoning = reasoning
	}
	if message := strings.TrimSpace(a.ScoutMessage); message != "" {
		n.ScoutMessage = message
	}
}

func (s *aiStrategy) Status() Status {
	details := map[string]string{}
	if s.model != "" {
		details["model"] = s.model
	}
	return Status{
		Name:    s.name,
		Enabled: s.enabled,
		Reason:  s.reason,
		Details: details,
	}
}
