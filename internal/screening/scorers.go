package screening

import (
	"math"
	"strings"
)

// Neutral scores used when the candidate record lacks the input for a dimension.
const (
	NeutralExperienceScore = 50
	NeutralSalaryScore     = 70
	NeutralEducationScore  = 60
	RemoteLocationScore    = 90
)

const (
	requiredSkillsShare  = 70
	preferredSkillsShare = 30
	skillCountStep       = 20

	inRangeScore = 95

	defaultExperienceSpan = 10

	culturalFitBase = 75
)

// ScoreSkills scores required and preferred skill coverage.
// An empty required list falls back to a skill-count heuristic.
func ScoreSkills(matcher SkillMatcher, candidateSkills, required, preferred []string) float64 {
	if matcher == nil {
		matcher = ContainmentMatcher{}
	}
	skills := nonBlank(candidateSkills)
	required = nonBlank(required)
	preferred = nonBlank(preferred)

	if len(required) == 0 {
		return clamp(float64(len(skills) * skillCountStep))
	}

	requiredScore := float64(countMatched(matcher, skills, required)) / float64(len(required)) * requiredSkillsShare

	preferredScore := float64(preferredSkillsShare)
	if len(preferred) > 0 {
		preferredScore = float64(countMatched(matcher, skills, preferred)) / float64(len(preferred)) * preferredSkillsShare
	}

	return clamp(requiredScore + preferredScore)
}

func countMatched(matcher SkillMatcher, skills, requested []string) int {
	matched := 0
	for _, want := range requested {
		for _, have := range skills {
			if matcher.Matches(have, want) {
				matched++
				break
			}
		}
	}
	return matched
}

// ScoreExperience applies the shortage / in-range / overqualification curve.
func ScoreExperience(years *float64, minYears float64, maxYears *float64) float64 {
	experience, ok := usable(years)
	if !ok {
		return NeutralExperienceScore
	}

	upper := minYears + defaultExperienceSpan
	if maximum, ok := usable(maxYears); ok {
		upper = maximum
	}

	switch {
	case experience < minYears:
		shortage := minYears - experience
		return clamp(math.Max(0, 60-shortage*15))
	case experience > upper:
		excess := experience - upper
		return clamp(math.Max(70, 95-excess*2))
	default:
		return inRangeScore
	}
}

// ScoreEducation compares the candidate and required levels from the lookup table.
func ScoreEducation(table LevelTable, education, required string) float64 {
	if strings.TrimSpace(education) == "" {
		return NeutralEducationScore
	}

	candidateLevel := table.Lookup(education)
	requiredLevel := table.Lookup(required)

	if candidateLevel >= requiredLevel {
		return clamp(math.Min(100, candidateLevel+5))
	}
	gap := requiredLevel - candidateLevel
	return clamp(math.Max(40, candidateLevel-gap))
}

// ScoreSalary scores the expected salary against the budget range.
// An unset range (max <= 0) carries no signal and yields the neutral score.
func ScoreSalary(expected *float64, salaryRange SalaryRange) float64 {
	value, ok := usable(expected)
	if !ok || salaryRange.Max <= 0 {
		return NeutralSalaryScore
	}

	switch {
	case value >= salaryRange.Min && value <= salaryRange.Max:
		return inRangeScore
	case value < salaryRange.Min:
		shortfallPercent := (salaryRange.Min - value) / salaryRange.Min * 100
		return clamp(math.Max(60, 95-shortfallPercent*0.5))
	default:
		excessPercent := (value - salaryRange.Max) / salaryRange.Max * 100
		return clamp(math.Max(30, 95-excessPercent*2))
	}
}

// ScoreLocation scores commute/relocation feasibility.
func ScoreLocation(majorCities KeywordList, candidateLocation, requiredLocation string, jobType JobType) float64 {
	candidate := strings.ToLower(strings.TrimSpace(candidateLocation))
	if candidate == "" || jobType == JobTypeRemote {
		return RemoteLocationScore
	}
	required := strings.ToLower(strings.TrimSpace(requiredLocation))

	if strings.Contains(candidate, required) || strings.Contains(required, candidate) {
		return 95
	}
	if majorCities.MatchAny(candidate) && majorCities.MatchAny(required) {
		return 70
	}
	return 50
}

// ScoreCulturalFit adds soft-signal bonuses on top of a fixed base.
func ScoreCulturalFit(teamwork KeywordList, candidate *CandidateProfile) float64 {
	score := float64(culturalFitBase)
	if candidate == nil {
		return score
	}

	if len(candidate.Projects) > 2 {
		score += 10
	}
	if len(nonBlank(candidate.Languages)) > 1 {
		score += 5
	}
	if len(nonBlank(candidate.Certifications)) > 0 {
		score += 5
	}
	if hasTeamworkAchievement(teamwork, candidate.PreviousRoles) {
		score += 5
	}

	return clamp(score)
}

func hasTeamworkAchievement(teamwork KeywordList, roles []WorkExperience) bool {
	for _, role := range roles {
		for _, achievement := range role.Achievements {
			if teamwork.MatchAny(achievement) {
				return true
			}
		}
	}
	return false
}

// usable treats nil, non-positive, NaN and infinite values as missing.
func usable(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	value := *v
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0, false
	}
	return value, true
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
