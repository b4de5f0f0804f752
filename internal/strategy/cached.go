package strategy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/maypok86/otter/v2"
	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/screening"
)

const (
	DefaultCacheSize = 1_000
	DefaultCacheTTL  = time.Hour
)

type CacheOptions struct {
	Size   int
	TTL    time.Duration
	Logger *zap.Logger
}

// Cached memoizes successful results of the wrapped strategy, keyed by the
// candidate and requirements contents. Failures are never cached.
type Cached struct {
	inner  Strategy
	cache  *otter.Cache[string, screening.AnalysisResult]
	ttl    time.Duration
	logger *zap.Logger
}

func NewCached(inner Strategy, opts CacheOptions) *Cached {
	size := opts.Size
	if size <= 0 {
		size = DefaultCacheSize
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Cached{
		inner: inner,
		cache: otter.Must(&otter.Options[string, screening.AnalysisResult]{
			MaximumSize:      size,
			InitialCapacity:  min(size, 64),
			ExpiryCalculator: otter.ExpiryWriting[string, screening.AnalysisResult](ttl),
		}),
		ttl:    ttl,
		logger: logger,
	}
}

func (c *Cached) Name() string { return c.inner.Name() }

func (c *Cached) Disable(reason string) { c.inner.Disable(reason) }

func (c *Cached) IsEnabled() bool { return c.inner.IsEnabled() }

func (c *Cached) Analyze(ctx context.Context, candidate *screening.CandidateProfile, req *screening.JobRequirements) (*screening.AnalysisResult, error) {
	key, err := fingerprint(c.inner.Name(), candidate, req)
	if err != nil {
		c.logger.Debug("cache key unavailable", zap.Error(err))
		return c.inner.Analyze(ctx, candidate, req)
	}

	if cached, ok := c.cache.GetIfPresent(key); ok {
		c.logger.Debug("analysis cache hit", logger.Strategy(c.Name()), logger.Candidate(candidateID(candidate)))
		return &cached, nil
	}

	result, err := c.inner.Analyze(ctx, candidate, req)
	if err != nil || result == nil {
		return result, err
	}

	c.cache.Set(key, *result)
	return result, nil
}

// Len is the approximate number of cached results.
func (c *Cached) Len() int { return c.cache.EstimatedSize() }

func (c *Cached) Status() Status {
	status := Status{Name: c.Name(), Enabled: c.IsEnabled()}
	if reporter, ok := c.inner.(statusProvider); ok {
		status = reporter.Status()
	}

	details := make(map[string]string, len(status.Details)+2)
	for k, v := range status.Details {
		details[k] = v
	}
	details["cache_entries"] = strconv.Itoa(c.Len())
	details["cache_ttl"] = c.ttl.String()
	status.Details = details

	return status
}

func fingerprint(name string, candidate *screening.CandidateProfile, req *screening.JobRequirements) (string, error) {
	payload, err := json.Marshal(struct {
		Strategy     string                      `json:"strategy"`
		Candidate    *screening.CandidateProfile `json:"candidate"`
		Requirements *screening.JobRequirements  `json:"requirements"`
	}{name, candidate, req})
	if err != nil {
		return "", fmt.Errorf("marshal cache key: %w", err)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
