package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/ai/gemini"
	"github.com/spigell/hh-screener/internal/pipeline"
	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/secrets"
	"github.com/spigell/hh-screener/internal/strategy"
)

// newService builds the screening pipeline. A broken AI setup is logged and
// skipped so that the rule-based engine still screens the pool.
func newService(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline.Service, error) {
	opts, err := engineOptions(config)
	if err != nil {
		return nil, err
	}

	criteria := screening.DefaultCriteria()
	if config.Criteria != nil {
		criteria = *config.Criteria
	}

	pcfg := pipeline.Config{
		Criteria:      criteria,
		EngineOptions: opts,
		Logger:        logger,
	}
	if config.Batch != nil {
		pcfg.Concurrency = config.Batch.Concurrency
	}

	if config.AI != nil && config.AI.Enabled {
		analyzer, model, err := newAIAnalyzer(ctx, config.AI, logger)
		if err != nil {
			logger.Warn("skipping AI analysis", zap.Error(err))
		} else {
			pcfg.AI = &pipeline.AIConfig{
				Analyzer: analyzer,
				Provider: gemini.ProviderName,
				Model:    model,
				Cache: strategy.CacheOptions{
					Size: config.AI.CacheSize,
					TTL:  config.AI.CacheTTL,
				},
			}
		}
	}

	return pipeline.New(pcfg)
}

func engineOptions(config *Config) ([]screening.Option, error) {
	var opts []screening.Option

	if config.Thresholds != nil {
		if err := config.Thresholds.Validate(); err != nil {
			return nil, err
		}
		opts = append(opts, screening.WithThresholds(*config.Thresholds))
	}

	if config.Scout != nil {
		opts = append(opts, screening.WithScoutProfile(*config.Scout))
	}

	if kw := config.Keywords; kw != nil {
		keywords := screening.DefaultKeywords()
		if len(kw.Education) > 0 {
			keywords.Education.Entries = kw.Education
		}
		if kw.EducationFallback > 0 {
			keywords.Education.Fallback = kw.EducationFallback
		}
		if len(kw.MajorCities) > 0 {
			keywords.MajorCities = kw.MajorCities
		}
		if len(kw.Teamwork) > 0 {
			keywords.Teamwork = kw.Teamwork
		}
		opts = append(opts, screening.WithKeywords(keywords))
	}

	return opts, nil
}

func newAIAnalyzer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Analyzer, string, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.ProviderName {
		return nil, "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	gcfg := cfg.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		File:  gcfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, gemini.GeneratorConfig{
		APIKey:     apiKey,
		Model:      gcfg.Model,
		MaxRetries: gcfg.MaxRetries,
		RetryDelay: gcfg.RetryDelay,
	}, logger)
	if err != nil {
		return nil, "", err
	}

	analyzer := gemini.NewAnalyzer(generator, logger.With(zap.String("component", "analyzer")), gcfg.MaxLogLength)
	return analyzer, generator.Model(), nil
}

func logStrategies(logger *zap.Logger, strategies []strategy.Strategy) {
	for _, status := range strategy.Describe(strategies) {
		fields := []zap.Field{
			zap.String("strategy", status.Name),
			zap.Bool("enabled", status.Enabled),
		}
		if status.Reason != "" {
			fields = append(fields, zap.String("reason", status.Reason))
		}
		if len(status.Details) > 0 {
			fields = append(fields, zap.Any("details", status.Details))
		}
		logger.Info("analysis strategy", fields...)
	}
}
