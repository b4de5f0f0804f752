package screening

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrativeWeakCandidate(t *testing.T) {
	t.Parallel()

	req := frontendRequirements()
	candidate := &CandidateProfile{
		ID:             "c-weak",
		Name:           "Ito Ken",
		Skills:         []string{"Java"},
		Experience:     ptr(1),
		Education:      "高校",
		ExpectedSalary: ptr(1000),
		Location:       "Berlin",
	}

	result, err := NewEngine(DefaultCriteria()).Analyze(candidate, req)
	require.NoError(t, err)

	assert.Equal(t, StatusPoor, result.Overall.Status)
	assert.Equal(t, RecommendationReject, result.Overall.Recommendation)

	// Skills, experience, education, salary and location are all below 60.
	assert.Len(t, result.Weaknesses, 5)
	assert.Empty(t, result.Strengths)
	assert.Len(t, result.Risks, 2)
	assert.Empty(t, result.Opportunities)
	assert.Equal(t, "3+ months", result.EstimatedOnboardingTime)
	assert.Equal(t, RetentionRiskHigh, result.RetentionRisk)

	types := make([]ActionType, 0, len(result.ActionItems))
	for _, item := range result.ActionItems {
		types = append(types, item.Type)
	}
	assert.Equal(t, []ActionType{ActionSkillAssessment, ActionNegotiation}, types)

	require.Len(t, result.InterviewQuestions, 4)
	assert.Contains(t, result.InterviewQuestions[2], "JavaScript")
	assert.Contains(t, result.ScoutMessage, "We would love to hear more")
	assert.Contains(t, result.DetailedReasoning, "do not proceed")
}

func TestNarrativeRetentionRiskTiers(t *testing.T) {
	t.Parallel()

	req := frontendRequirements()
	candidate := &CandidateProfile{ID: "c", ExpectedSalary: ptr(600)}

	cases := []struct {
		name      string
		breakdown ScoreBreakdown
		salary    float64
		want      RetentionRisk
	}{
		{name: "no factors", breakdown: ScoreBreakdown{Salary: 95, Location: 95, CulturalFit: 80}, salary: 600, want: RetentionRiskLow},
		{name: "one factor", breakdown: ScoreBreakdown{Salary: 60, Location: 95, CulturalFit: 80}, salary: 600, want: RetentionRiskLow},
		{name: "two factors", breakdown: ScoreBreakdown{Salary: 60, Location: 50, CulturalFit: 80}, salary: 600, want: RetentionRiskMedium},
		{name: "salary far above budget", breakdown: ScoreBreakdown{Salary: 60, Location: 50, CulturalFit: 80}, salary: 800, want: RetentionRiskHigh},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := *candidate
			c.ExpectedSalary = ptr(tc.salary)
			assert.Equal(t, tc.want, retentionRisk(&c, req, tc.breakdown))
		})
	}
}

func TestNarrativeOnboardingBuckets(t *testing.T) {
	t.Parallel()

	flat := func(v float64) ScoreBreakdown { return ScoreBreakdown{v, v, v, v, v, v} }

	assert.Equal(t, "2-3 weeks", onboardingTime(flat(85)))
	assert.Equal(t, "1-2 months", onboardingTime(flat(84.9)))
	assert.Equal(t, "1-2 months", onboardingTime(flat(70)))
	assert.Equal(t, "2-3 months", onboardingTime(flat(60)))
	assert.Equal(t, "3+ months", onboardingTime(flat(59)))
}

func TestScoutMessageTone(t *testing.T) {
	t.Parallel()

	req := frontendRequirements()
	candidate := strongCandidate()
	scout := ScoutProfile{Company: "Example KK", Sender: "Tanaka"}

	enthusiastic := scoutMessage(candidate, req, Overall{Score: 85}, scout)
	interested := scoutMessage(candidate, req, Overall{Score: 70}, scout)
	standard := scoutMessage(candidate, req, Overall{Score: 69}, scout)

	assert.Contains(t, enthusiastic, "genuinely impressed")
	assert.Contains(t, interested, "strong fit")
	assert.Contains(t, standard, "love to hear more")

	for _, msg := range []string{enthusiastic, interested, standard} {
		assert.True(t, strings.HasPrefix(msg, "Dear Sato Hanako,"))
		assert.Contains(t, msg, "JavaScript, React, Node.js")
		assert.Contains(t, msg, "Frontend Engineer")
		assert.Contains(t, msg, "500-700")
		assert.Contains(t, msg, "5 years")
	}
}

func TestInterviewQuestionsWithoutRequiredSkills(t *testing.T) {
	t.Parallel()

	req := &JobRequirements{Title: "Generalist"}
	questions := interviewQuestions(&CandidateProfile{ID: "c"}, req, ScoreBreakdown{Skills: 10, Experience: 90})

	require.Len(t, questions, 3)
	assert.Contains(t, questions[2], "the core stack of this role")
}

func TestFormatScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "70", FormatScore(70))
	assert.Equal(t, "66.4", FormatScore(66.42857))
	assert.Equal(t, "0", FormatScore(0))
}
