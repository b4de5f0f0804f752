package screening

import (
	"fmt"
	"strings"
)

// Engine evaluates single candidates. It holds no per-candidate state and is
// safe for concurrent use.
type Engine struct {
	criteria   EvaluationCriteria
	thresholds Thresholds
	keywords   Keywords
	matcher    SkillMatcher
	scout      ScoutProfile
}

type Option func(*Engine)

func WithThresholds(t Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

func WithKeywords(k Keywords) Option {
	return func(e *Engine) { e.keywords = k }
}

func WithSkillMatcher(m SkillMatcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

func WithScoutProfile(p ScoutProfile) Option {
	return func(e *Engine) { e.scout = p }
}

func NewEngine(criteria EvaluationCriteria, opts ...Option) *Engine {
	e := &Engine{
		criteria:   criteria,
		thresholds: DefaultThresholds(),
		keywords:   DefaultKeywords(),
		matcher:    ContainmentMatcher{},
		scout:      DefaultScoutProfile(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Criteria() EvaluationCriteria { return e.criteria }

// Score computes the six dimension scores.
func (e *Engine) Score(c *CandidateProfile, r *JobRequirements) ScoreBreakdown {
	return ScoreBreakdown{
		Skills:      ScoreSkills(e.matcher, c.Skills, r.RequiredSkills, r.PreferredSkills),
		Experience:  ScoreExperience(c.Experience, r.MinExperience, r.MaxExperience),
		Education:   ScoreEducation(e.keywords.Education, c.Education, r.EducationLevel),
		Salary:      ScoreSalary(c.ExpectedSalary, r.SalaryRange),
		Location:    ScoreLocation(e.keywords.MajorCities, c.Location, r.Location, r.JobType),
		CulturalFit: ScoreCulturalFit(e.keywords.Teamwork, c),
	}
}

// Assemble classifies a breakdown and attaches the narrative. Scores coming
// from outside the engine are clamped first.
func (e *Engine) Assemble(c *CandidateProfile, r *JobRequirements, b ScoreBreakdown) AnalysisResult {
	b = b.Clamp()
	overall := e.thresholds.Classify(OverallScore(b, e.criteria))

	return AnalysisResult{
		CandidateID:   c.ID,
		CandidateName: c.DisplayName(),
		Overall:       overall,
		Breakdown:     b,
		Narrative:     BuildNarrative(c, r, b, overall, e.scout),
	}
}

// Analyze runs the full single-candidate evaluation.
func (e *Engine) Analyze(c *CandidateProfile, r *JobRequirements) (AnalysisResult, error) {
	if err := CheckCandidate(c); err != nil {
		return AnalysisResult{}, err
	}
	if r == nil {
		return AnalysisResult{}, fmt.Errorf("job requirements are required")
	}
	return e.Assemble(c, r, e.Score(c, r)), nil
}

// CheckCandidate rejects records that cannot be evaluated at all.
func CheckCandidate(c *CandidateProfile) error {
	if c == nil {
		return fmt.Errorf("%w: nil record", ErrMalformedCandidate)
	}
	if c.Invalid != "" {
		return fmt.Errorf("%w: %s", ErrMalformedCandidate, c.Invalid)
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedCandidate)
	}
	return nil
}
