package ai

import (
	"context"

	"github.com/spigell/hh-screener/internal/screening"
)

// CandidateAssessment is what an external generative service returns for one candidate.
// Empty narrative fields mean the provider did not supply them.
type CandidateAssessment struct {
	Scores        screening.ScoreBreakdown
	Strengths     []string
	Weaknesses    []string
	Risks         []string
	Opportunities []string
	Reasoning     string
	ScoutMessage  string
	Raw           string
}

type Analyzer interface {
	Assess(ctx context.Context, candidate *screening.CandidateProfile, req *screening.JobRequirements) (*CandidateAssessment, error)
}
