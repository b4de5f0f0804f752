package batch

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/spigell/hh-screener/internal/screening"
)

const (
	topSkillsLimit     = 10
	topCandidatesLimit = 10
	shortlistLimit     = 5
	skillGapScore      = 70
	thinPoolCandidates = 3
)

type SkillFrequency struct {
	Skill     string `json:"skill"`
	Frequency int    `json:"frequency"`
}

type BucketCount struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// Bucket is a half-open interval [Min, Max).
type Bucket struct {
	Label string
	Min   float64
	Max   float64
}

func (b Bucket) contains(v float64) bool {
	return v >= b.Min && v < b.Max
}

// SalaryBuckets are expressed in the currency unit of the input data.
var SalaryBuckets = []Bucket{
	{Label: "under 300", Min: 0, Max: 300},
	{Label: "300-500", Min: 300, Max: 500},
	{Label: "500-700", Min: 500, Max: 700},
	{Label: "700-1000", Min: 700, Max: 1000},
	{Label: "1000 and above", Min: 1000, Max: math.Inf(1)},
}

var ExperienceBuckets = []Bucket{
	{Label: "under 1 year", Min: 0, Max: 1},
	{Label: "1-3 years", Min: 1, Max: 3},
	{Label: "3-5 years", Min: 3, Max: 5},
	{Label: "5-10 years", Min: 5, Max: 10},
	{Label: "10 years and above", Min: 10, Max: math.Inf(1)},
}

type Summary struct {
	TotalCandidates        int              `json:"totalCandidates"`
	ExcellentCandidates    int              `json:"excellentCandidates"`
	GoodCandidates         int              `json:"goodCandidates"`
	AcceptableCandidates   int              `json:"acceptableCandidates"`
	PoorCandidates         int              `json:"poorCandidates"`
	ErrorCandidates        int              `json:"errorCandidates"`
	AverageScore           int              `json:"averageScore"`
	TopSkills              []SkillFrequency `json:"topSkills"`
	SalaryDistribution     []BucketCount    `json:"salaryDistribution"`
	ExperienceDistribution []BucketCount    `json:"experienceDistribution"`
}

type Recommendations struct {
	TopCandidates      []screening.AnalysisResult `json:"topCandidates"`
	InterviewShortlist []string                   `json:"interviewShortlist"`
	SkillGaps          []string                   `json:"skillGaps"`
	MarketInsights     []string                   `json:"marketInsights"`
	HiringStrategy     []string                   `json:"hiringStrategy"`
}

// Result is the outcome of one batch run.
type Result struct {
	RunID            string                     `json:"runId"`
	GeneratedAt      time.Time                  `json:"generatedAt"`
	ProcessingTimeMs int64                      `json:"processingTimeMs"`
	Results          []screening.AnalysisResult `json:"results"`
	Summary          Summary                    `json:"summary"`
	Recommendations  Recommendations            `json:"recommendations"`
	Reports          Reports                    `json:"reports"`
}

// Aggregate folds per-candidate results and the raw pool into pool statistics,
// recommendations and reports. results[i] must belong to candidates[i].
func Aggregate(results []screening.AnalysisResult, candidates []*screening.CandidateProfile, req *screening.JobRequirements) (*Result, error) {
	if len(results) == 0 {
		return nil, ErrEmptyPool
	}

	summary := Summarize(results, candidates)
	recommendations := Recommend(results, req)

	reports, err := RenderReports(results, candidates, req, summary, recommendations)
	if err != nil {
		return nil, fmt.Errorf("render reports: %w", err)
	}

	return &Result{
		Results:         results,
		Summary:         summary,
		Recommendations: recommendations,
		Reports:         reports,
	}, nil
}

// Summarize computes tier counts, the average score of evaluated candidates,
// skill frequencies and the salary / experience histograms.
func Summarize(results []screening.AnalysisResult, candidates []*screening.CandidateProfile) Summary {
	s := Summary{TotalCandidates: len(results)}

	scored, total := 0, 0
	for _, r := range results {
		switch r.Overall.Status {
		case screening.StatusExcellent:
			s.ExcellentCandidates++
		case screening.StatusGood:
			s.GoodCandidates++
		case screening.StatusAcceptable:
			s.AcceptableCandidates++
		case screening.StatusPoor:
			s.PoorCandidates++
		default:
			s.ErrorCandidates++
			continue
		}
		scored++
		total += r.Overall.Score
	}
	if scored > 0 {
		s.AverageScore = int(math.Round(float64(total) / float64(scored)))
	}

	s.TopSkills = topSkills(candidates, topSkillsLimit)
	s.SalaryDistribution = histogram(SalaryBuckets, candidates, func(c *screening.CandidateProfile) *float64 { return c.ExpectedSalary })
	s.ExperienceDistribution = histogram(ExperienceBuckets, candidates, func(c *screening.CandidateProfile) *float64 { return c.Experience })

	return s
}

func topSkills(candidates []*screening.CandidateProfile, limit int) []SkillFrequency {
	counts := map[string]int{}
	var order []string
	for _, c := range candidates {
		if c == nil {
			continue
		}
		for _, skill := range c.Skills {
			if strings.TrimSpace(skill) == "" {
				continue
			}
			if _, seen := counts[skill]; !seen {
				order = append(order, skill)
			}
			counts[skill]++
		}
	}

	freqs := make([]SkillFrequency, 0, len(order))
	for _, skill := range order {
		freqs = append(freqs, SkillFrequency{Skill: skill, Frequency: counts[skill]})
	}
	slices.SortStableFunc(freqs, func(a, b SkillFrequency) int {
		return cmp.Compare(b.Frequency, a.Frequency)
	})

	if len(freqs) > limit {
		freqs = freqs[:limit]
	}
	return freqs
}

// histogram counts candidates whose value is present and positive.
func histogram(buckets []Bucket, candidates []*screening.CandidateProfile, value func(*screening.CandidateProfile) *float64) []BucketCount {
	counts := make([]BucketCount, len(buckets))
	for i, b := range buckets {
		counts[i].Range = b.Label
	}

	for _, c := range candidates {
		if c == nil {
			continue
		}
		v := value(c)
		if v == nil || math.IsNaN(*v) || *v <= 0 {
			continue
		}
		for i, b := range buckets {
			if b.contains(*v) {
				counts[i].Count++
				break
			}
		}
	}
	return counts
}

// Recommend ranks hire/consider candidates and derives the pool-level notes.
func Recommend(results []screening.AnalysisResult, req *screening.JobRequirements) Recommendations {
	top := make([]screening.AnalysisResult, 0, len(results))
	for _, r := range results {
		if r.Overall.Recommendation == screening.RecommendationHire || r.Overall.Recommendation == screening.RecommendationConsider {
			top = append(top, r)
		}
	}
	slices.SortStableFunc(top, func(a, b screening.AnalysisResult) int {
		return cmp.Compare(b.Overall.Score, a.Overall.Score)
	})
	if len(top) > topCandidatesLimit {
		top = top[:topCandidatesLimit]
	}

	shortlist := make([]string, 0, shortlistLimit)
	for _, r := range top[:min(shortlistLimit, len(top))] {
		shortlist = append(shortlist, r.CandidateID)
	}

	gaps := SkillGaps(results, req.RequiredSkills)

	return Recommendations{
		TopCandidates:      top,
		InterviewShortlist: shortlist,
		SkillGaps:          gaps,
		MarketInsights:     marketInsights(results, req, len(top), gaps),
		HiringStrategy:     hiringStrategy(req, len(top), gaps),
	}
}

// SkillGaps reports the required skills considered scarce in the pool.
// Coverage is approximated from each candidate's overall skills score, not
// per skill, so either every required skill is a gap or none is.
func SkillGaps(results []screening.AnalysisResult, required []string) []string {
	evaluated, covered := 0, 0
	for _, r := range results {
		if r.Failed() {
			continue
		}
		evaluated++
		if r.Breakdown.Skills > skillGapScore {
			covered++
		}
	}

	gaps := []string{}
	if evaluated == 0 || float64(covered) >= float64(evaluated)*0.5 {
		return gaps
	}
	for _, skill := range required {
		if s := strings.ToLower(strings.TrimSpace(skill)); s != "" {
			gaps = append(gaps, s)
		}
	}
	return gaps
}

func marketInsights(results []screening.AnalysisResult, req *screening.JobRequirements, topCount int, gaps []string) []string {
	summary := Summarize(results, nil)
	evaluated := summary.TotalCandidates - summary.ErrorCandidates

	insights := []string{
		fmt.Sprintf("Average score of the %s candidate pool: %d points", req.Title, summary.AverageScore),
		fmt.Sprintf("Share of strong candidates: %d%%", percent(topCount, evaluated)),
	}
	if len(gaps) > 0 {
		insights = append(insights, "Skills in short supply: "+strings.Join(gaps, ", "))
	} else {
		insights = append(insights, "Required skills are well supplied in this pool")
	}
	return insights
}

func hiringStrategy(req *screening.JobRequirements, topCount int, gaps []string) []string {
	strategy := make([]string, 0, 3)

	if req.Urgency == screening.UrgencyCritical {
		strategy = append(strategy, "Urgency is critical: interview the top candidates first")
	} else {
		strategy = append(strategy, "Run a planned hiring process focused on candidate quality")
	}

	if topCount < thinPoolCandidates {
		strategy = append(strategy, "The pool is thin: revisit the requirements or widen the sourcing channels")
	} else {
		strategy = append(strategy, "The candidate pool is large enough")
	}

	if len(gaps) > 0 {
		strategy = append(strategy, "Cover skill gaps with potential hires and onboarding training")
	} else {
		strategy = append(strategy, "Enough candidates meet the required skills")
	}

	return strategy
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
