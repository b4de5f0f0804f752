package strategy

import (
	"context"
	"strconv"

	"github.com/spigell/hh-screener/internal/screening"
)

const DeterministicName = "deterministic"

type deterministic struct {
	engine  *screening.Engine
	enabled bool
	reason  string
}

// NewDeterministic wraps the rule-based engine. It needs no network access.
func NewDeterministic(engine *screening.Engine) Strategy {
	return &deterministic{engine: engine, enabled: true}
}

func (s *deterministic) Name() string { return DeterministicName }

func (s *deterministic) Disable(reason string) {
	s.enabled = false
	s.reason = reason
}

func (s *deterministic) IsEnabled() bool { return s.enabled }

func (s *deterministic) Analyze(_ context.Context, candidate *screening.CandidateProfile, req *screening.JobRequirements) (*screening.AnalysisResult, error) {
	result, err := s.engine.Analyze(candidate, req)
	if err != nil {
		return nil, err
	}
	result.Source = DeterministicName
	return &result, nil
}

func (s *deterministic) Status() Status {
	criteria := s.engine.Criteria()
	return Status{
		Name:    s.Name(),
		Enabled: s.enabled,
		Reason:  s.reason,
		Details: map[string]string{
			"skills_weight":     strconv.FormatFloat(criteria.SkillsWeight, 'f', -1, 64),
			"experience_weight": strconv.FormatFloat(criteria.ExperienceWeight, 'f', -1, 64),
			"education_weight":  strconv.FormatFloat(criteria.EducationWeight, 'f', -1, 64),
			"salary_weight":     strconv.FormatFloat(criteria.SalaryWeight, 'f', -1, 64),
		},
	}
}
