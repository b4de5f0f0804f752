package screening

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	strengthThreshold = 80
	weaknessThreshold = 60
	riskThreshold     = 70

	salaryRiskFactor     = 1.2
	retentionSalaryRatio = 1.1

	richProjectHistory = 3
	scoutTopSkills     = 3
)

// ScoutProfile signs the outreach message.
type ScoutProfile struct {
	Company string `json:"company" mapstructure:"company"`
	Sender  string `json:"sender" mapstructure:"sender"`
}

func DefaultScoutProfile() ScoutProfile {
	return ScoutProfile{Company: "Our company", Sender: "Recruiting team"}
}

// BuildNarrative derives the explanatory fields from a scored breakdown.
func BuildNarrative(c *CandidateProfile, r *JobRequirements, b ScoreBreakdown, overall Overall, scout ScoutProfile) Narrative {
	n := Narrative{
		Strengths:     []string{},
		Weaknesses:    []string{},
		Risks:         []string{},
		Opportunities: []string{},
	}

	for _, d := range dimensions(c, r, b) {
		switch {
		case d.score >= strengthThreshold:
			n.Strengths = append(n.Strengths, d.strength)
		case d.score < weaknessThreshold:
			n.Weaknesses = append(n.Weaknesses, d.weakness)
		}
	}

	if expected, ok := usable(c.ExpectedSalary); ok && r.SalaryRange.Max > 0 && expected > r.SalaryRange.Max*salaryRiskFactor {
		n.Risks = append(n.Risks, "Salary expectation may be too high for the budget")
	}
	if b.Location < riskThreshold {
		n.Risks = append(n.Risks, "Relocation or commute arrangements will be needed")
	}

	if len(nonBlank(c.Certifications)) > 0 {
		n.Opportunities = append(n.Opportunities, "Invests in continuous learning and certifications")
	}
	if len(c.Projects) > richProjectHistory {
		n.Opportunities = append(n.Opportunities, "Rich project history suggests a fast ramp-up")
	}

	n.DetailedReasoning = detailedReasoning(c, r, b, overall)
	n.ActionItems = actionItems(overall, b)
	n.InterviewQuestions = interviewQuestions(c, r, b)
	n.ScoutMessage = scoutMessage(c, r, overall, scout)
	n.EstimatedOnboardingTime = onboardingTime(b)
	n.RetentionRisk = retentionRisk(c, r, b)

	return n
}

type dimension struct {
	score    float64
	strength string
	weakness string
}

func dimensions(c *CandidateProfile, r *JobRequirements, b ScoreBreakdown) []dimension {
	years := formatOptional(c.Experience, " years")
	salary := formatOptional(c.ExpectedSalary, "")
	location := orUnknown(c.Location)

	return []dimension{
		{b.Skills, fmt.Sprintf("Strong technical skill match (%s points)", FormatScore(b.Skills)),
			fmt.Sprintf("Technical skills fall short of the requirements (%s points)", FormatScore(b.Skills))},
		{b.Experience, fmt.Sprintf("Experience fits the target range (%s)", years),
			fmt.Sprintf("Experience deviates from the requested range (%s)", years)},
		{b.Education, fmt.Sprintf("Relevant educational background (%s)", orUnknown(c.Education)),
			fmt.Sprintf("Education below the requested level (%s)", orUnknown(c.Education))},
		{b.Salary, fmt.Sprintf("Salary expectation fits the budget (%s)", salary),
			fmt.Sprintf("Salary expectation does not match the budget (%s vs %s)", salary, formatRange(r.SalaryRange))},
		{b.Location, fmt.Sprintf("Location is compatible with the role (%s)", location),
			fmt.Sprintf("Location is far from the workplace (%s)", location)},
		{b.CulturalFit, "Strong signals of team and culture fit",
			"Limited evidence of team and culture fit"},
	}
}

func detailedReasoning(c *CandidateProfile, r *JobRequirements, b ScoreBreakdown, overall Overall) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Evaluation of %s\n\n", c.DisplayName())
	fmt.Fprintf(&sb, "Overall score: %d (%s)\n\n", overall.Score, overall.Status)

	fmt.Fprintf(&sb, "* Skills: %s points\n", FormatScore(b.Skills))
	fmt.Fprintf(&sb, "Required skills [%s] were matched against the candidate skills [%s].\n\n",
		strings.Join(r.RequiredSkills, ", "), strings.Join(c.Skills, ", "))

	fmt.Fprintf(&sb, "* Experience: %s points\n", FormatScore(b.Experience))
	fmt.Fprintf(&sb, "The role asks for at least %s years; the candidate reports %s.\n\n",
		strconv.FormatFloat(r.MinExperience, 'f', -1, 64), formatOptional(c.Experience, " years"))

	fmt.Fprintf(&sb, "* Education: %s points\n", FormatScore(b.Education))
	fmt.Fprintf(&sb, "Requested level %q; the candidate holds %q.\n\n", r.EducationLevel, c.Education)

	fmt.Fprintf(&sb, "* Salary fit: %s points\n", FormatScore(b.Salary))
	fmt.Fprintf(&sb, "Budget %s; expected salary %s.\n\n", formatRange(r.SalaryRange), formatOptional(c.ExpectedSalary, ""))

	fmt.Fprintf(&sb, "* Location: %s points, cultural fit: %s points\n\n", FormatScore(b.Location), FormatScore(b.CulturalFit))

	fmt.Fprintf(&sb, "Recommended action: %s", recommendedAction(overall.Recommendation))

	return sb.String()
}

func recommendedAction(rec Recommendation) string {
	switch rec {
	case RecommendationHire:
		return "move forward with hiring"
	case RecommendationConsider:
		return "run an interview to confirm the details"
	case RecommendationMaybe:
		return "compare against the other candidates first"
	default:
		return "do not proceed"
	}
}

func actionItems(overall Overall, b ScoreBreakdown) []ActionItem {
	items := []ActionItem{}

	if overall.Recommendation == RecommendationHire || overall.Recommendation == RecommendationConsider {
		items = append(items, ActionItem{
			Type:        ActionInterview,
			Priority:    PriorityHigh,
			Description: "Schedule a technical interview and a culture-fit conversation",
		})
	}
	if b.Skills < strengthThreshold {
		items = append(items, ActionItem{
			Type:        ActionSkillAssessment,
			Priority:    PriorityMedium,
			Description: "Run a detailed technical skill assessment",
		})
	}
	if b.Salary < riskThreshold {
		items = append(items, ActionItem{
			Type:        ActionNegotiation,
			Priority:    PriorityMedium,
			Description: "Align compensation expectations with the budget",
		})
	}

	return items
}

func interviewQuestions(c *CandidateProfile, r *JobRequirements, b ScoreBreakdown) []string {
	questions := []string{
		fmt.Sprintf("What draws you to the %s position, and where do you want your career to go?", r.Title),
		"Walk us through the most technically challenging project you have worked on.",
	}

	if b.Skills < strengthThreshold {
		skill := "the core stack of this role"
		if required := nonBlank(r.RequiredSkills); len(required) > 0 {
			skill = required[0]
		}
		questions = append(questions, fmt.Sprintf("Describe concrete production experience you have with %s.", skill))
	}
	if b.Experience < strengthThreshold {
		questions = append(questions, "Which experience in your career helped you grow the most?")
	}
	if len(c.Projects) > 0 {
		questions = append(questions, fmt.Sprintf("What was your role and contribution in the %s project?", c.Projects[0].Name))
	}

	return questions
}

func scoutMessage(c *CandidateProfile, r *JobRequirements, overall Overall, scout ScoutProfile) string {
	name := c.DisplayName()

	var opening string
	switch {
	case overall.Score >= 85:
		opening = fmt.Sprintf("We were genuinely impressed by your technical skills and experience, %s.", name)
	case overall.Score >= 70:
		opening = fmt.Sprintf("After reviewing your profile, %s, we believe you could be a strong fit for our team.", name)
	default:
		opening = fmt.Sprintf("We would love to hear more about your experience, %s.", name)
	}

	skills := nonBlank(c.Skills)
	topSkills := "your technical background"
	leadSkill := "your expertise"
	if len(skills) > 0 {
		topSkills = strings.Join(skills[:min(scoutTopSkills, len(skills))], ", ")
		leadSkill = skills[0]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n", name)
	fmt.Fprintf(&sb, "%s\n\n", opening)
	fmt.Fprintf(&sb, "We are currently hiring for the %s position and are looking for people with experience in %s.\n\n", r.Title, topSkills)
	sb.WriteString("Position overview:\n")
	fmt.Fprintf(&sb, "- Role: %s\n", r.Title)
	fmt.Fprintf(&sb, "- Location: %s\n", orUnknown(r.Location))
	fmt.Fprintf(&sb, "- Salary range: %s\n\n", formatRange(r.SalaryRange))
	fmt.Fprintf(&sb, "Your %s of experience, and %s in particular, would make a real contribution to our projects.\n\n",
		formatOptional(c.Experience, " years"), leadSkill)
	sb.WriteString("If this sounds interesting, we would be happy to start with a casual conversation. Thank you for considering it.\n\n")
	fmt.Fprintf(&sb, "%s\n%s", scout.Company, scout.Sender)

	return sb.String()
}

func onboardingTime(b ScoreBreakdown) string {
	avg := b.Mean()
	switch {
	case avg >= 85:
		return "2-3 weeks"
	case avg >= 70:
		return "1-2 months"
	case avg >= 60:
		return "2-3 months"
	default:
		return "3+ months"
	}
}

func retentionRisk(c *CandidateProfile, r *JobRequirements, b ScoreBreakdown) RetentionRisk {
	factors := 0
	if b.Salary < riskThreshold {
		factors++
	}
	if b.Location < riskThreshold {
		factors++
	}
	if b.CulturalFit < riskThreshold {
		factors++
	}
	if expected, ok := usable(c.ExpectedSalary); ok && r.SalaryRange.Max > 0 && expected > r.SalaryRange.Max*retentionSalaryRatio {
		factors++
	}

	switch {
	case factors >= 3:
		return RetentionRiskHigh
	case factors >= 2:
		return RetentionRiskMedium
	default:
		return RetentionRiskLow
	}
}

// FormatScore renders a score with at most one decimal.
func FormatScore(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

func formatOptional(v *float64, suffix string) string {
	value, ok := usable(v)
	if !ok {
		return "unknown"
	}
	return strconv.FormatFloat(value, 'f', -1, 64) + suffix
}

func formatRange(r SalaryRange) string {
	return fmt.Sprintf("%s-%s", strconv.FormatFloat(r.Min, 'f', -1, 64), strconv.FormatFloat(r.Max, 'f', -1, 64))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
