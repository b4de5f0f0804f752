package screening

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedCandidate is returned when a candidate record cannot be evaluated at all.
var ErrMalformedCandidate = errors.New("malformed candidate record")

type JobType string

const (
	JobTypeFullTime JobType = "full-time"
	JobTypePartTime JobType = "part-time"
	JobTypeContract JobType = "contract"
	JobTypeRemote   JobType = "remote"
)

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

type Status string

const (
	StatusExcellent  Status = "excellent"
	StatusGood       Status = "good"
	StatusAcceptable Status = "acceptable"
	StatusPoor       Status = "poor"
	// StatusError marks a candidate whose record could not be evaluated.
	StatusError Status = "error"
)

type Recommendation string

const (
	RecommendationHire     Recommendation = "hire"
	RecommendationConsider Recommendation = "consider"
	RecommendationMaybe    Recommendation = "maybe"
	RecommendationReject   Recommendation = "reject"
)

type RetentionRisk string

const (
	RetentionRiskLow    RetentionRisk = "low"
	RetentionRiskMedium RetentionRisk = "medium"
	RetentionRiskHigh   RetentionRisk = "high"
)

type ActionType string

const (
	ActionInterview       ActionType = "interview"
	ActionSkillAssessment ActionType = "skill_assessment"
	ActionReferenceCheck  ActionType = "reference_check"
	ActionNegotiation     ActionType = "negotiation"
	ActionOnboarding      ActionType = "onboarding"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Project is a project recorded on a candidate profile.
type Project struct {
	Name         string   `json:"name"`
	Technologies []string `json:"technologies,omitempty"`
	Role         string   `json:"role,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// WorkExperience is a previous role held by a candidate.
type WorkExperience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// CandidateProfile is a structured candidate record produced by ingestion.
// Optional numeric fields are pointers so that "missing" can be told apart from zero.
type CandidateProfile struct {
	ID             string           `json:"id" validate:"required"`
	Name           string           `json:"name"`
	Skills         []string         `json:"skills"`
	Experience     *float64         `json:"experience,omitempty"`
	Education      string           `json:"education,omitempty"`
	CurrentSalary  *float64         `json:"currentSalary,omitempty"`
	ExpectedSalary *float64         `json:"expectedSalary,omitempty"`
	Location       string           `json:"location,omitempty"`
	Languages      []string         `json:"languages,omitempty"`
	Certifications []string         `json:"certifications,omitempty"`
	Projects       []Project        `json:"projects,omitempty"`
	PreviousRoles  []WorkExperience `json:"previousRoles,omitempty"`

	// Invalid describes why ingestion could not decode the record.
	Invalid string `json:"-"`
}

// DisplayName returns the candidate name, falling back to the ID.
func (c *CandidateProfile) DisplayName() string {
	if c == nil {
		return ""
	}
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return c.ID
}

type SalaryRange struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"omitempty,gtefield=Min"`
}

// JobRequirements describe the position the pool is screened against.
type JobRequirements struct {
	Title           string      `json:"title" validate:"required"`
	RequiredSkills  []string    `json:"requiredSkills"`
	PreferredSkills []string    `json:"preferredSkills"`
	MinExperience   float64     `json:"minExperience" validate:"gte=0"`
	MaxExperience   *float64    `json:"maxExperience,omitempty" validate:"omitempty,gte=0"`
	EducationLevel  string      `json:"educationLevel"`
	SalaryRange     SalaryRange `json:"salaryRange"`
	Location        string      `json:"location"`
	JobType         JobType     `json:"jobType" validate:"omitempty,oneof=full-time part-time contract remote"`
	Urgency         Urgency     `json:"urgency" validate:"omitempty,oneof=low medium high critical"`
}

// Validate checks the requirements using struct tags plus the experience range.
// A zero maxExperience means no upper bound.
func (r *JobRequirements) Validate() error {
	if r == nil {
		return errors.New("job requirements are required")
	}
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.MaxExperience != nil && *r.MaxExperience > 0 && *r.MaxExperience < r.MinExperience {
		return fmt.Errorf("maxExperience %.1f is below minExperience %.1f", *r.MaxExperience, r.MinExperience)
	}
	return nil
}

// CustomCriterion is an extension hook. Built-in scorers do not evaluate it.
type CustomCriterion struct {
	ID     string  `json:"id" mapstructure:"id"`
	Name   string  `json:"name" mapstructure:"name"`
	Weight float64 `json:"weight" mapstructure:"weight" validate:"gte=0"`
	Rule   string  `json:"rule,omitempty" mapstructure:"rule"`
}

// EvaluationCriteria holds the relative weights used by the aggregator.
// LocationWeight and CulturalFitWeight fall back to defaultFixedWeight when zero.
type EvaluationCriteria struct {
	SkillsWeight      float64           `json:"skillsWeight" mapstructure:"skills-weight" validate:"gte=0"`
	ExperienceWeight  float64           `json:"experienceWeight" mapstructure:"experience-weight" validate:"gte=0"`
	EducationWeight   float64           `json:"educationWeight" mapstructure:"education-weight" validate:"gte=0"`
	SalaryWeight      float64           `json:"salaryWeight" mapstructure:"salary-weight" validate:"gte=0"`
	LocationWeight    float64           `json:"locationWeight,omitempty" mapstructure:"location-weight" validate:"gte=0"`
	CulturalFitWeight float64           `json:"culturalFitWeight,omitempty" mapstructure:"cultural-fit-weight" validate:"gte=0"`
	CustomCriteria    []CustomCriterion `json:"customCriteria,omitempty" mapstructure:"custom-criteria" validate:"dive"`
}

const defaultFixedWeight = 5

// DefaultCriteria returns the stock 40/30/20/10 weighting.
func DefaultCriteria() EvaluationCriteria {
	return EvaluationCriteria{
		SkillsWeight:      40,
		ExperienceWeight:  30,
		EducationWeight:   20,
		SalaryWeight:      10,
		LocationWeight:    defaultFixedWeight,
		CulturalFitWeight: defaultFixedWeight,
	}
}

func (c EvaluationCriteria) withDefaults() EvaluationCriteria {
	if c.LocationWeight == 0 {
		c.LocationWeight = defaultFixedWeight
	}
	if c.CulturalFitWeight == 0 {
		c.CulturalFitWeight = defaultFixedWeight
	}
	return c
}

// Validate rejects negative weights.
func (c EvaluationCriteria) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// ScoreBreakdown holds the six dimension scores, each in [0,100].
type ScoreBreakdown struct {
	Skills      float64 `json:"skillsScore" mapstructure:"skillsScore"`
	Experience  float64 `json:"experienceScore" mapstructure:"experienceScore"`
	Education   float64 `json:"educationScore" mapstructure:"educationScore"`
	Salary      float64 `json:"salaryScore" mapstructure:"salaryScore"`
	Location    float64 `json:"locationScore" mapstructure:"locationScore"`
	CulturalFit float64 `json:"culturalFitScore" mapstructure:"culturalFitScore"`
}

// Clamp returns a copy with every score forced into [0,100].
func (b ScoreBreakdown) Clamp() ScoreBreakdown {
	return ScoreBreakdown{
		Skills:      clamp(b.Skills),
		Experience:  clamp(b.Experience),
		Education:   clamp(b.Education),
		Salary:      clamp(b.Salary),
		Location:    clamp(b.Location),
		CulturalFit: clamp(b.CulturalFit),
	}
}

// Mean is the unweighted average of all six dimensions.
func (b ScoreBreakdown) Mean() float64 {
	return (b.Skills + b.Experience + b.Education + b.Salary + b.Location + b.CulturalFit) / 6
}

type Overall struct {
	Score          int            `json:"score"`
	Status         Status         `json:"status"`
	Recommendation Recommendation `json:"recommendation,omitempty"`
	Confidence     int            `json:"confidence"`
}

type ActionItem struct {
	Type        ActionType `json:"type"`
	Priority    Priority   `json:"priority"`
	Description string     `json:"description"`
	Deadline    string     `json:"deadline,omitempty"`
}

// Narrative is the explanatory part of an analysis result.
type Narrative struct {
	Strengths               []string      `json:"strengths"`
	Weaknesses              []string      `json:"weaknesses"`
	Risks                   []string      `json:"risks"`
	Opportunities           []string      `json:"opportunities"`
	DetailedReasoning       string        `json:"detailedReasoning"`
	ActionItems             []ActionItem  `json:"actionItems"`
	InterviewQuestions      []string      `json:"interviewQuestions"`
	ScoutMessage            string        `json:"scoutMessage"`
	EstimatedOnboardingTime string        `json:"estimatedOnboardingTime"`
	RetentionRisk           RetentionRisk `json:"retentionRisk"`
}

// AnalysisResult is the evaluation of one candidate. Treat it as a value.
type AnalysisResult struct {
	CandidateID   string         `json:"candidateId"`
	CandidateName string         `json:"candidateName,omitempty"`
	Source        string         `json:"source,omitempty"`
	Overall       Overall        `json:"overall"`
	Breakdown     ScoreBreakdown `json:"breakdown"`
	Error         string         `json:"error,omitempty"`
	Narrative     `yaml:",inline"`
}

// Failed reports whether the result records an evaluation failure.
func (r AnalysisResult) Failed() bool {
	return r.Overall.Status == StatusError
}

// ErrorResult builds the placeholder recorded for a candidate that could not be evaluated.
func ErrorResult(candidateID, candidateName string, err error) AnalysisResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return AnalysisResult{
		CandidateID:   candidateID,
		CandidateName: candidateName,
		Overall:       Overall{Status: StatusError},
		Error:         msg,
	}
}
