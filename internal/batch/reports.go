package batch

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/spigell/hh-screener/internal/screening"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var reportTemplates = template.Must(template.New("reports").Funcs(template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/*.tmpl"))

const (
	reportLeadingSkills = 3
	reportTopSkills     = 5
)

type Reports struct {
	ExecutiveSummary  string `json:"executiveSummary"`
	DetailedReport    string `json:"detailedReport"`
	DiversityAnalysis string `json:"diversityAnalysis"`
	MarketComparison  string `json:"marketComparison"`
}

type diversityStats struct {
	MultiEmployerPercent int
	MultilingualPercent  int
	CertifiedPercent     int
}

type reportData struct {
	Requirements        *screening.JobRequirements
	Summary             Summary
	Recommendations     Recommendations
	Results             []screening.AnalysisResult
	Recommended         int
	ExcellentPercent    int
	LeadingSkills       []string
	TopSkills           []SkillFrequency
	Critical            bool
	Budget              string
	WithinBudgetPercent int
	CommonExperience    string
	Diversity           diversityStats
	SuccessChance       string
	HiringPeriod        string
}

// RenderReports formats the four report sections from already computed statistics.
func RenderReports(results []screening.AnalysisResult, candidates []*screening.CandidateProfile, req *screening.JobRequirements, summary Summary, rec Recommendations) (Reports, error) {
	data := reportData{
		Requirements:        req,
		Summary:             summary,
		Recommendations:     rec,
		Results:             results,
		Recommended:         countRecommended(results),
		ExcellentPercent:    percent(summary.ExcellentCandidates, summary.TotalCandidates-summary.ErrorCandidates),
		TopSkills:           summary.TopSkills[:min(reportTopSkills, len(summary.TopSkills))],
		Critical:            req.Urgency == screening.UrgencyCritical,
		Budget:              fmt.Sprintf("%g-%g", req.SalaryRange.Min, req.SalaryRange.Max),
		WithinBudgetPercent: withinBudgetPercent(candidates, req.SalaryRange),
		CommonExperience:    largestBucket(summary.ExperienceDistribution),
		Diversity:           diversity(candidates),
		SuccessChance:       successChance(summary.ExcellentCandidates),
		HiringPeriod:        hiringPeriod(req.Urgency),
	}
	for _, s := range data.TopSkills[:min(reportLeadingSkills, len(data.TopSkills))] {
		data.LeadingSkills = append(data.LeadingSkills, s.Skill)
	}

	var (
		reports Reports
		err     error
	)
	sections := []struct {
		name string
		dst  *string
	}{
		{"executive_summary.tmpl", &reports.ExecutiveSummary},
		{"detailed_report.tmpl", &reports.DetailedReport},
		{"diversity_analysis.tmpl", &reports.DiversityAnalysis},
		{"market_comparison.tmpl", &reports.MarketComparison},
	}
	for _, section := range sections {
		if *section.dst, err = render(section.name, data); err != nil {
			return Reports{}, err
		}
	}

	return reports, nil
}

func render(name string, data reportData) (string, error) {
	var sb strings.Builder
	if err := reportTemplates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return sb.String(), nil
}

func countRecommended(results []screening.AnalysisResult) int {
	n := 0
	for _, r := range results {
		if r.Overall.Recommendation == screening.RecommendationHire || r.Overall.Recommendation == screening.RecommendationConsider {
			n++
		}
	}
	return n
}

func withinBudgetPercent(candidates []*screening.CandidateProfile, budget screening.SalaryRange) int {
	stated, within := 0, 0
	for _, c := range candidates {
		if c == nil || c.ExpectedSalary == nil || *c.ExpectedSalary <= 0 {
			continue
		}
		stated++
		if *c.ExpectedSalary >= budget.Min && *c.ExpectedSalary <= budget.Max {
			within++
		}
	}
	return percent(within, stated)
}

// largestBucket returns the first bucket with the highest non-zero count.
func largestBucket(counts []BucketCount) string {
	best, label := 0, ""
	for _, c := range counts {
		if c.Count > best {
			best, label = c.Count, c.Range
		}
	}
	return label
}

func diversity(candidates []*screening.CandidateProfile) diversityStats {
	total, multiEmployer, multilingual, certified := 0, 0, 0, 0
	for _, c := range candidates {
		if c == nil {
			continue
		}
		total++
		if distinctEmployers(c.PreviousRoles) > 1 {
			multiEmployer++
		}
		if countNonBlank(c.Languages) > 1 {
			multilingual++
		}
		if countNonBlank(c.Certifications) > 0 {
			certified++
		}
	}
	return diversityStats{
		MultiEmployerPercent: percent(multiEmployer, total),
		MultilingualPercent:  percent(multilingual, total),
		CertifiedPercent:     percent(certified, total),
	}
}

func distinctEmployers(roles []screening.WorkExperience) int {
	seen := map[string]struct{}{}
	for _, role := range roles {
		if company := strings.ToLower(strings.TrimSpace(role.Company)); company != "" {
			seen[company] = struct{}{}
		}
	}
	return len(seen)
}

func countNonBlank(values []string) int {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

func successChance(excellent int) string {
	switch {
	case excellent > 3:
		return "high"
	case excellent > 1:
		return "medium"
	default:
		return "low"
	}
}

func hiringPeriod(urgency screening.Urgency) string {
	if urgency == screening.UrgencyCritical {
		return "2-4 weeks"
	}
	return "1-2 months"
}
