package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/batch"
	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/strategy"
)

func TestEngineOptions(t *testing.T) {
	opts, err := engineOptions(&Config{})
	require.NoError(t, err)
	assert.Empty(t, opts)

	opts, err = engineOptions(&Config{
		Thresholds: &screening.Thresholds{Excellent: 90, Good: 80, Acceptable: 70},
		Scout:      &screening.ScoutProfile{Company: "Acme", Sender: "Hiring"},
		Keywords:   &KeywordsConfig{MajorCities: []string{"Berlin"}},
	})
	require.NoError(t, err)
	assert.Len(t, opts, 3)

	_, err = engineOptions(&Config{Thresholds: &screening.Thresholds{Excellent: 50, Good: 80, Acceptable: 70}})
	assert.Error(t, err)
}

func TestNewServiceWithoutAI(t *testing.T) {
	criteria := screening.DefaultCriteria()
	svc, err := newService(context.Background(), &Config{
		Criteria: &criteria,
		Batch:    &BatchConfig{Concurrency: 20},
	}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, batch.MaxConcurrency, svc.Concurrency())
	require.Len(t, svc.Chain().Strategies(), 1)
	assert.Equal(t, strategy.DeterministicName, svc.Chain().Strategies()[0].Name())
}

func TestNewServiceSkipsBrokenAI(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	os.Unsetenv("GEMINI_API_KEY")

	svc, err := newService(context.Background(), &Config{
		AI: &AIConfig{Enabled: true, Provider: "gemini"},
	}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, svc.Chain().Strategies(), 1)

	_, _, err = newAIAnalyzer(context.Background(), &AIConfig{Provider: "openai"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported ai provider")
}

func TestHandleAction(t *testing.T) {
	result := &batch.Result{Reports: batch.Reports{
		ExecutiveSummary:  "summary text",
		DetailedReport:    "detailed text",
		DiversityAnalysis: "diversity text",
		MarketComparison:  "market text",
	}}

	var out bytes.Buffer
	for _, action := range []string{PromptExecutiveSummary, PromptDetailedReport, PromptDiversityAnalysis, PromptMarketComparison} {
		require.NoError(t, handleAction(action, &out, zap.NewNop(), result))
	}
	for _, text := range []string{"summary text", "detailed text", "diversity text", "market text"} {
		assert.Contains(t, out.String(), text)
	}

	assert.True(t, errors.Is(handleAction(PromptExit, &out, zap.NewNop(), result), errExit))
	assert.Error(t, handleAction("unknown", &out, zap.NewNop(), result))
}

func TestRedacted(t *testing.T) {
	config := &Config{AI: &AIConfig{Gemini: &GeminiConfig{APIKey: "secret", Model: "m"}}}

	safe := redacted(config)
	assert.Equal(t, "***", safe.AI.Gemini.APIKey)
	assert.Equal(t, "m", safe.AI.Gemini.Model)
	assert.Equal(t, "secret", config.AI.Gemini.APIKey)

	assert.Nil(t, redacted(nil))
}
