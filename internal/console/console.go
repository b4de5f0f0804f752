// Package console renders batch results for the terminal.
package console

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/spigell/hh-screener/internal/batch"
	"github.com/spigell/hh-screener/internal/screening"
)

const (
	maxBarWidth    = 40
	shortlistWidth = 24
)

func statusColor(status screening.Status) *color.Color {
	switch status {
	case screening.StatusExcellent:
		return color.New(color.FgGreen, color.Bold)
	case screening.StatusGood:
		return color.New(color.FgGreen)
	case screening.StatusAcceptable:
		return color.New(color.FgYellow)
	case screening.StatusPoor:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgHiBlack)
	}
}

// Summary renders the pool overview: tier counts, histograms and the shortlist.
func Summary(result *batch.Result, req *screening.JobRequirements) string {
	if result == nil {
		return "No batch result available\n"
	}

	var out strings.Builder
	title := color.New(color.Bold)
	s := result.Summary

	position := "unknown position"
	if req != nil && strings.TrimSpace(req.Title) != "" {
		position = req.Title
	}
	out.WriteString(title.Sprintf("Screening results for %s", position))
	out.WriteString("\n")
	fmt.Fprintf(&out, "Candidates: %d, average score: %d\n\n", s.TotalCandidates, s.AverageScore)

	tiers := []struct {
		status screening.Status
		count  int
	}{
		{screening.StatusExcellent, s.ExcellentCandidates},
		{screening.StatusGood, s.GoodCandidates},
		{screening.StatusAcceptable, s.AcceptableCandidates},
		{screening.StatusPoor, s.PoorCandidates},
		{screening.StatusError, s.ErrorCandidates},
	}
	for _, tier := range tiers {
		if tier.status == screening.StatusError && tier.count == 0 {
			continue
		}
		label := fmt.Sprintf("%-10s", tier.status)
		fmt.Fprintf(&out, "  %s %3d\n", statusColor(tier.status).Sprint(label), tier.count)
	}
	out.WriteString("\n")

	out.WriteString(Histogram("Expected salary", s.SalaryDistribution))
	out.WriteString("\n")
	out.WriteString(Histogram("Experience", s.ExperienceDistribution))
	out.WriteString("\n")
	out.WriteString(Shortlist(result.Recommendations.TopCandidates))

	if gaps := result.Recommendations.SkillGaps; len(gaps) > 0 {
		out.WriteString("\n")
		out.WriteString(color.New(color.FgRed).Sprintf("Skill gaps: %s", strings.Join(gaps, ", ")))
		out.WriteString("\n")
	}

	return out.String()
}

// Histogram draws one bar per bucket, scaled so the largest bucket fits maxBarWidth.
func Histogram(title string, buckets []batch.BucketCount) string {
	var out strings.Builder
	out.WriteString(color.New(color.Bold).Sprint(title))
	out.WriteString("\n")

	largest, labelWidth := 0, 0
	for _, b := range buckets {
		largest = max(largest, b.Count)
		labelWidth = max(labelWidth, len(b.Range))
	}
	if largest == 0 {
		out.WriteString("  No data available\n")
		return out.String()
	}

	bar := color.New(color.FgBlue)
	for _, b := range buckets {
		line := fmt.Sprintf("  %-*s (%2d) ", labelWidth, b.Range, b.Count)
		if b.Count > 0 {
			width := max(1, b.Count*maxBarWidth/largest)
			line += bar.Sprint(strings.Repeat("█", width))
		}
		out.WriteString(line + "\n")
	}

	return out.String()
}

// Shortlist lists the top candidates with their score and recommendation.
func Shortlist(top []screening.AnalysisResult) string {
	var out strings.Builder
	out.WriteString(color.New(color.Bold).Sprint("Top candidates"))
	out.WriteString("\n")

	if len(top) == 0 {
		out.WriteString("  No candidates are recommended\n")
		return out.String()
	}

	for i, r := range top {
		name := r.CandidateName
		if name == "" {
			name = r.CandidateID
		}
		if len([]rune(name)) > shortlistWidth {
			name = string([]rune(name)[:shortlistWidth-1]) + "…"
		}
		score := statusColor(r.Overall.Status).Sprintf("%3d", r.Overall.Score)
		fmt.Fprintf(&out, "  %2d. %-*s %s  %s\n", i+1, shortlistWidth, name, score, r.Overall.Recommendation)
	}

	return out.String()
}

// Failures lists candidates that could not be evaluated.
func Failures(results []screening.AnalysisResult) string {
	var out strings.Builder
	for _, r := range results {
		if !r.Failed() {
			continue
		}
		if out.Len() == 0 {
			out.WriteString(color.New(color.FgRed, color.Bold).Sprint("Failed candidates"))
			out.WriteString("\n")
		}
		id := r.CandidateID
		if id == "" {
			id = "(no id)"
		}
		fmt.Fprintf(&out, "  %s: %s\n", id, r.Error)
	}
	return out.String()
}
