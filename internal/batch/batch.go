package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/screening"
)

// ErrEmptyPool is returned when a batch is started without candidates.
var ErrEmptyPool = errors.New("candidate pool is empty")

const (
	DefaultConcurrency = 4
	MaxConcurrency     = 8
)

// Analyzer evaluates one candidate. Implementations must be safe for concurrent use.
type Analyzer interface {
	Analyze(ctx context.Context, candidate *screening.CandidateProfile, req *screening.JobRequirements) (*screening.AnalysisResult, error)
}

type Options struct {
	// Concurrency bounds how many candidates are analyzed at once.
	// Zero means DefaultConcurrency; values are clamped to [1, MaxConcurrency].
	Concurrency int
	Logger      *zap.Logger
	// Now is used for run timestamps. Defaults to time.Now.
	Now func() time.Time
}

type Runner struct {
	analyzer    Analyzer
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

func NewRunner(analyzer Analyzer, opts Options) *Runner {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Runner{
		analyzer:    analyzer,
		concurrency: clampConcurrency(opts.Concurrency),
		logger:      log,
		now:         now,
	}
}

func clampConcurrency(n int) int {
	switch {
	case n == 0:
		return DefaultConcurrency
	case n < 1:
		return 1
	case n > MaxConcurrency:
		return MaxConcurrency
	default:
		return n
	}
}

func (r *Runner) Concurrency() int { return r.concurrency }

// Run analyzes every candidate and folds the results into a batch result.
// A failing candidate is recorded with the error status; it never aborts the run.
// Cancellation is checked between candidates.
func (r *Runner) Run(ctx context.Context, candidates []*screening.CandidateProfile, req *screening.JobRequirements) (*Result, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyPool
	}
	if req == nil {
		return nil, errors.New("job requirements are required")
	}

	runID := uuid.NewString()
	started := r.now()
	log := logger.WithRun(r.logger, runID, req.Title)
	log.Info("batch started",
		zap.Int("candidates", len(candidates)),
		zap.Int("concurrency", r.concurrency),
	)

	results := make([]screening.AnalysisResult, len(candidates))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, candidate := range candidates {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = r.analyzeOne(gCtx, log, candidate, req)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s interrupted: %w", runID, err)
	}

	result, err := Aggregate(results, candidates, req)
	if err != nil {
		return nil, err
	}

	result.RunID = runID
	result.GeneratedAt = started.UTC()
	result.ProcessingTimeMs = r.now().Sub(started).Milliseconds()

	log.Info("batch finished",
		zap.Int("analyzed", result.Summary.TotalCandidates-result.Summary.ErrorCandidates),
		zap.Int("failed", result.Summary.ErrorCandidates),
		zap.Int("average_score", result.Summary.AverageScore),
		zap.Int64("processing_time_ms", result.ProcessingTimeMs),
	)

	return result, nil
}

func (r *Runner) analyzeOne(ctx context.Context, log *zap.Logger, candidate *screening.CandidateProfile, req *screening.JobRequirements) (result screening.AnalysisResult) {
	id, name := identify(candidate)

	defer func() {
		if rec := recover(); rec != nil {
			log.Warn("candidate analysis panicked", logger.Candidate(id), zap.Any("panic", rec))
			result = screening.ErrorResult(id, name, fmt.Errorf("analysis panicked: %v", rec))
		}
	}()

	if err := screening.CheckCandidate(candidate); err != nil {
		log.Warn("candidate skipped", logger.Candidate(id), zap.Error(err))
		return screening.ErrorResult(id, name, err)
	}

	analysis, err := r.analyzer.Analyze(ctx, candidate, req)
	if err != nil {
		log.Warn("candidate analysis failed", logger.Candidate(id), zap.Error(err))
		return screening.ErrorResult(id, name, err)
	}
	if analysis == nil {
		log.Warn("candidate analysis returned nothing", logger.Candidate(id))
		return screening.ErrorResult(id, name, errors.New("empty analysis result"))
	}

	log.Debug("candidate analyzed",
		logger.Candidate(id),
		zap.String("source", analysis.Source),
		zap.Int("score", analysis.Overall.Score),
		zap.String("status", string(analysis.Overall.Status)),
	)

	return *analysis
}

func identify(c *screening.CandidateProfile) (string, string) {
	if c == nil {
		return "", ""
	}
	return c.ID, c.DisplayName()
}
