package screening

import (
	"fmt"
	"math"
)

// Thresholds are the minimum overall scores of each tier.
type Thresholds struct {
	Excellent  int `json:"excellent" mapstructure:"excellent"`
	Good       int `json:"good" mapstructure:"good"`
	Acceptable int `json:"acceptable" mapstructure:"acceptable"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Excellent: 85, Good: 75, Acceptable: 60}
}

// Validate requires strictly descending thresholds inside [0,100].
func (t Thresholds) Validate() error {
	if t.Excellent > 100 || t.Acceptable < 0 {
		return fmt.Errorf("thresholds must lie in [0,100]: %+v", t)
	}
	if !(t.Excellent > t.Good && t.Good > t.Acceptable) {
		return fmt.Errorf("thresholds must be strictly descending: %+v", t)
	}
	return nil
}

// Classify maps an overall score to its tier. Tiers are checked top-down and the first match wins.
func (t Thresholds) Classify(score int) Overall {
	switch {
	case score >= t.Excellent:
		return Overall{Score: score, Status: StatusExcellent, Recommendation: RecommendationHire, Confidence: 95}
	case score >= t.Good:
		return Overall{Score: score, Status: StatusGood, Recommendation: RecommendationConsider, Confidence: 85}
	case score >= t.Acceptable:
		return Overall{Score: score, Status: StatusAcceptable, Recommendation: RecommendationMaybe, Confidence: 70}
	default:
		return Overall{Score: score, Status: StatusPoor, Recommendation: RecommendationReject, Confidence: 60}
	}
}

// OverallScore is the weighted mean of the breakdown, rounded to an integer.
// Location and cultural fit carry their own (fixed by default) weights.
func OverallScore(b ScoreBreakdown, criteria EvaluationCriteria) int {
	c := criteria.withDefaults()

	total := c.SkillsWeight + c.ExperienceWeight + c.EducationWeight + c.SalaryWeight +
		c.LocationWeight + c.CulturalFitWeight
	if total <= 0 {
		return 0
	}

	weighted := b.Skills*c.SkillsWeight +
		b.Experience*c.ExperienceWeight +
		b.Education*c.EducationWeight +
		b.Salary*c.SalaryWeight +
		b.Location*c.LocationWeight +
		b.CulturalFit*c.CulturalFitWeight

	return int(clamp(math.Round(weighted / total)))
}
