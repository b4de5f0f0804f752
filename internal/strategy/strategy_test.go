package strategy

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/screening"
)

type stubStrategy struct {
	name    string
	enabled bool
	err     error
	calls   atomic.Int32
}

func newStub(name string, err error) *stubStrategy {
	return &stubStrategy{name: name, enabled: true, err: err}
}

func (s *stubStrategy) Name() string    { return s.name }
func (s *stubStrategy) Disable(string)  { s.enabled = false }
func (s *stubStrategy) IsEnabled() bool { return s.enabled }

func (s *stubStrategy) Analyze(_ context.Context, c *screening.CandidateProfile, _ *screening.JobRequirements) (*screening.AnalysisResult, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &screening.AnalysisResult{CandidateID: c.ID}, nil
}

type stubAnalyzer struct {
	assessment *ai.CandidateAssessment
	err        error
	calls      atomic.Int32
}

func (s *stubAnalyzer) Assess(context.Context, *screening.CandidateProfile, *screening.JobRequirements) (*ai.CandidateAssessment, error) {
	s.calls.Add(1)
	return s.assessment, s.err
}

func ptr(v float64) *float64 { return &v }

func requirements() *screening.JobRequirements {
	return &screening.JobRequirements{
		Title:          "SRE",
		RequiredSkills: []string{"Linux", "Go"},
		MinExperience:  2,
		SalaryRange:    screening.SalaryRange{Min: 500, Max: 800},
		Location:       "Tokyo",
		JobType:        screening.JobTypeFullTime,
	}
}

func candidate() *screening.CandidateProfile {
	return &screening.CandidateProfile{
		ID: "c-1", Name: "Candidate", Skills: []string{"Linux", "Go"},
		Experience: ptr(4), ExpectedSalary: ptr(600), Location: "Tokyo",
	}
}

func TestChainFirstSuccessWins(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	failing := newStub("gemini", errors.New("quota exceeded"))
	winner := newStub("second", nil)
	unused := newStub("third", nil)

	chain := NewChain(zap.New(core), failing, winner, unused)
	result, err := chain.Analyze(context.Background(), candidate(), requirements())
	require.NoError(t, err)

	assert.Equal(t, "second", result.Source)
	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, int32(1), winner.calls.Load())
	assert.Equal(t, int32(0), unused.calls.Load())

	entries := observed.FilterMessage("analysis strategy failed, trying the next one").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gemini", entries[0].ContextMap()["strategy"])

	assert.Equal(t, []Step{
		{Name: "gemini", Attempted: 1, Failed: 1},
		{Name: "second", Attempted: 1, Succeeded: 1},
		{Name: "third"},
	}, chain.Steps())
}

func TestChainSkipsDisabled(t *testing.T) {
	t.Parallel()

	first := newStub("gemini", nil)
	fallback := newStub(DeterministicName, nil)
	strategies := []Strategy{first, fallback}
	DisableByName(strategies, "gemini", "no api key")

	result, err := NewChain(nil, strategies...).Analyze(context.Background(), candidate(), requirements())
	require.NoError(t, err)
	assert.Equal(t, DeterministicName, result.Source)
	assert.Equal(t, int32(0), first.calls.Load())
}

func TestChainErrors(t *testing.T) {
	t.Parallel()

	disabled := newStub("off", nil)
	disabled.Disable("test")
	_, err := NewChain(nil, disabled).Analyze(context.Background(), candidate(), requirements())
	assert.ErrorIs(t, err, ErrNoStrategy)

	_, err = NewChain(nil).Analyze(context.Background(), candidate(), requirements())
	assert.ErrorIs(t, err, ErrNoStrategy)

	cause := errors.New("boom")
	_, err = NewChain(nil, newStub("a", cause), newStub("b", errors.New("bang"))).Analyze(context.Background(), candidate(), requirements())
	assert.ErrorIs(t, err, ErrAllFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "a: boom")
	assert.Contains(t, err.Error(), "b: bang")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewChain(nil, newStub("a", nil)).Analyze(ctx, candidate(), requirements())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	engine := screening.NewEngine(screening.DefaultCriteria())
	aiStrategy := NewAI("gemini", "gemini-2.5-flash", AIDeps{})
	strategies := []Strategy{aiStrategy, NewDeterministic(engine), newStub("plain", nil)}

	statuses := Describe(strategies)
	require.Len(t, statuses, 3)

	assert.Equal(t, "gemini", statuses[0].Name)
	assert.False(t, statuses[0].Enabled)
	assert.Equal(t, "analyzer is not configured", statuses[0].Reason)
	assert.Equal(t, "gemini-2.5-flash", statuses[0].Details["model"])

	assert.True(t, statuses[1].Enabled)
	assert.Equal(t, "40", statuses[1].Details["skills_weight"])

	assert.Equal(t, Status{Name: "plain", Enabled: true}, statuses[2])
}

func TestDeterministicStrategy(t *testing.T) {
	t.Parallel()

	s := NewDeterministic(screening.NewEngine(screening.DefaultCriteria()))
	result, err := s.Analyze(context.Background(), candidate(), requirements())
	require.NoError(t, err)
	assert.Equal(t, DeterministicName, result.Source)
	assert.Equal(t, "c-1", result.CandidateID)

	_, err = s.Analyze(context.Background(), &screening.CandidateProfile{}, requirements())
	assert.ErrorIs(t, err, screening.ErrMalformedCandidate)
}

func TestAIStrategyUsesProviderScores(t *testing.T) {
	t.Parallel()

	engine := screening.NewEngine(screening.DefaultCriteria())
	analyzer := &stubAnalyzer{assessment: &ai.CandidateAssessment{
		Scores:       screening.ScoreBreakdown{Skills: 120, Experience: 90, Education: math.NaN(), Salary: 90, Location: 90, CulturalFit: 90},
		Strengths:    []string{"  Deep Linux knowledge ", ""},
		Reasoning:    "Strong operational background.",
		ScoutMessage: "Hello from the team",
	}}

	s := NewAI("gemini", "model", AIDeps{Analyzer: analyzer, Engine: engine})
	require.True(t, s.IsEnabled())

	result, err := s.Analyze(context.Background(), candidate(), requirements())
	require.NoError(t, err)

	assert.Equal(t, "gemini", result.Source)
	assert.InDelta(t, 100, result.Breakdown.Skills, 1e-9)
	assert.InDelta(t, 0, result.Breakdown.Education, 1e-9)

	// (4000 + 2700 + 0 + 900 + 450 + 450) / 110 = 77.27
	assert.Equal(t, 77, result.Overall.Score)
	assert.Equal(t, screening.StatusGood, result.Overall.Status)

	assert.Equal(t, []string{"Deep Linux knowledge"}, result.Strengths)
	assert.Equal(t, "Strong operational background.", result.DetailedReasoning)
	assert.Equal(t, "Hello from the team", result.ScoutMessage)
	// Fields the provider left empty come from the rule-based narrative.
	assert.NotEmpty(t, result.Weaknesses)
	assert.NotEmpty(t, result.InterviewQuestions)
	assert.NotEmpty(t, result.EstimatedOnboardingTime)
}

func TestAIStrategyFailures(t *testing.T) {
	t.Parallel()

	engine := screening.NewEngine(screening.DefaultCriteria())

	failing := NewAI("gemini", "", AIDeps{Analyzer: &stubAnalyzer{err: errors.New("503")}, Engine: engine})
	_, err := failing.Analyze(context.Background(), candidate(), requirements())
	assert.ErrorContains(t, err, "503")

	empty := NewAI("gemini", "", AIDeps{Analyzer: &stubAnalyzer{}, Engine: engine})
	_, err = empty.Analyze(context.Background(), candidate(), requirements())
	assert.Error(t, err)

	analyzer := &stubAnalyzer{}
	malformed := NewAI("gemini", "", AIDeps{Analyzer: analyzer, Engine: engine})
	_, err = malformed.Analyze(context.Background(), nil, requirements())
	assert.ErrorIs(t, err, screening.ErrMalformedCandidate)
	assert.Equal(t, int32(0), analyzer.calls.Load())
}

func TestAIFallsBackToDeterministic(t *testing.T) {
	t.Parallel()

	engine := screening.NewEngine(screening.DefaultCriteria())
	chain := NewChain(nil,
		NewAI("gemini", "", AIDeps{Analyzer: &stubAnalyzer{err: errors.New("unavailable")}, Engine: engine}),
		NewDeterministic(engine),
	)

	result, err := chain.Analyze(context.Background(), candidate(), requirements())
	require.NoError(t, err)

	expected, err := engine.Analyze(candidate(), requirements())
	require.NoError(t, err)
	expected.Source = DeterministicName

	assert.Equal(t, expected, *result)
}

func TestCachedStrategy(t *testing.T) {
	t.Parallel()

	inner := newStub("gemini", nil)
	cached := NewCached(inner, CacheOptions{Size: 10, TTL: time.Minute})

	for range 3 {
		result, err := cached.Analyze(context.Background(), candidate(), requirements())
		require.NoError(t, err)
		assert.Equal(t, "c-1", result.CandidateID)
	}
	assert.Equal(t, int32(1), inner.calls.Load())

	other := candidate()
	other.ExpectedSalary = ptr(650)
	_, err := cached.Analyze(context.Background(), other, requirements())
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())

	status := cached.Status()
	assert.Equal(t, "gemini", status.Name)
	assert.Equal(t, "1m0s", status.Details["cache_ttl"])
	assert.NotEmpty(t, status.Details["cache_entries"])
}

func TestCachedStrategyDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	inner := newStub("gemini", errors.New("rate limited"))
	cached := NewCached(inner, CacheOptions{})

	for range 2 {
		_, err := cached.Analyze(context.Background(), candidate(), requirements())
		assert.Error(t, err)
	}
	assert.Equal(t, int32(2), inner.calls.Load())

	cached.Disable("switched off")
	assert.False(t, inner.IsEnabled())
	assert.False(t, cached.IsEnabled())
}

func TestCachedStrategyUnhashableInput(t *testing.T) {
	t.Parallel()

	inner := newStub("gemini", nil)
	cached := NewCached(inner, CacheOptions{})

	odd := candidate()
	odd.Experience = ptr(math.NaN())

	for range 2 {
		_, err := cached.Analyze(context.Background(), odd, requirements())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), inner.calls.Load())
}
