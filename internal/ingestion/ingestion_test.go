package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hh-screener/internal/screening"
)

const requirementsYAML = `
title: Backend Engineer
requiredSkills: [Go, PostgreSQL]
preferredSkills:
  - Kubernetes
minExperience: 3
maxExperience: 8
educationLevel: Bachelor
salaryRange:
  min: 500
  max: 800
location: Tokyo
jobType: full-time
urgency: high
`

const candidatesYAML = `
candidates:
  - id: c-1
    name: Aiko
    skills: [Go, PostgreSQL, Docker]
    experience: 5
    expectedSalary: 650
    education: Master of Science
    projects:
      - name: Billing
        technologies: [Go]
    previousRoles:
      - company: Acme
        achievements: [Led a team of four]
  - id: c-2
    skills: [Java]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRequirementsYAML(t *testing.T) {
	t.Parallel()

	req, err := LoadRequirements(writeFile(t, "job.yaml", requirementsYAML))
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", req.Title)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, req.RequiredSkills)
	assert.Equal(t, []string{"Kubernetes"}, req.PreferredSkills)
	assert.InDelta(t, 3, req.MinExperience, 1e-9)
	require.NotNil(t, req.MaxExperience)
	assert.InDelta(t, 8, *req.MaxExperience, 1e-9)
	assert.Equal(t, screening.SalaryRange{Min: 500, Max: 800}, req.SalaryRange)
	assert.Equal(t, screening.JobTypeFullTime, req.JobType)
	assert.Equal(t, screening.UrgencyHigh, req.Urgency)
}

func TestParseRequirementsJSON(t *testing.T) {
	t.Parallel()

	req, err := ParseRequirements([]byte(`{"title": "SRE", "requiredSkills": ["Linux"], "urgency": "critical"}`))
	require.NoError(t, err)
	assert.Equal(t, "SRE", req.Title)
	assert.Nil(t, req.MaxExperience)
	assert.Equal(t, screening.UrgencyCritical, req.Urgency)

	unbounded, err := ParseRequirements([]byte(`{"title": "SRE", "minExperience": 3, "maxExperience": 0}`))
	require.NoError(t, err)
	require.NotNil(t, unbounded.MaxExperience)
	assert.Zero(t, *unbounded.MaxExperience)
}

func TestParseRequirementsValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		field string
	}{
		{name: "missing title", input: `requiredSkills: [Go]`, field: "(root)"},
		{name: "unknown urgency", input: "title: SRE\nurgency: someday", field: "urgency"},
		{name: "skills are not strings", input: "title: SRE\nrequiredSkills: [{name: Go}]", field: "requiredSkills.0"},
		{name: "inverted salary range", input: "title: SRE\nsalaryRange: {min: 800, max: 500}", field: "JobRequirements.SalaryRange.Max"},
		{name: "inverted experience range", input: "title: SRE\nminExperience: 5\nmaxExperience: 2", field: "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseRequirements([]byte(tt.input))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "requirements", ve.Document)
			require.NotEmpty(t, ve.Errors)
			assert.Equal(t, tt.field, ve.Errors[0].Field)
		})
	}
}

func TestLoadCandidates(t *testing.T) {
	t.Parallel()

	candidates, err := LoadCandidates(writeFile(t, "pool.yaml", candidatesYAML))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, "c-1", first.ID)
	assert.Equal(t, []string{"Go", "PostgreSQL", "Docker"}, first.Skills)
	require.NotNil(t, first.Experience)
	assert.InDelta(t, 5, *first.Experience, 1e-9)
	require.NotNil(t, first.ExpectedSalary)
	assert.InDelta(t, 650, *first.ExpectedSalary, 1e-9)
	assert.Nil(t, first.CurrentSalary)
	assert.Equal(t, "Billing", first.Projects[0].Name)
	assert.Equal(t, []string{"Led a team of four"}, first.PreviousRoles[0].Achievements)

	second := candidates[1]
	assert.Nil(t, second.Experience)
	assert.Nil(t, second.ExpectedSalary)
}

func TestParseCandidatesKeepsIncompleteRecords(t *testing.T) {
	t.Parallel()

	candidates, err := ParseCandidates([]byte(`[{"name": "No id"}, {"id": "c-2", "experience": null}]`))
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Empty(t, candidates[0].ID)
	assert.ErrorIs(t, screening.CheckCandidate(candidates[0]), screening.ErrMalformedCandidate)
	assert.Nil(t, candidates[1].Experience)
}

func TestParseCandidatesKeepsMistypedRecords(t *testing.T) {
	t.Parallel()

	candidates, err := ParseCandidates([]byte(`[
		{"id": "c-1", "experience": 5},
		{"id": "c-2", "name": "Bo", "experience": "five years"},
		42
	]`))
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Empty(t, candidates[0].Invalid)
	require.NoError(t, screening.CheckCandidate(candidates[0]))

	assert.Equal(t, "c-2", candidates[1].ID)
	assert.Equal(t, "Bo", candidates[1].Name)
	assert.Nil(t, candidates[1].Experience)
	assert.Contains(t, candidates[1].Invalid, "experience")
	assert.ErrorIs(t, screening.CheckCandidate(candidates[1]), screening.ErrMalformedCandidate)

	assert.Empty(t, candidates[2].ID)
	assert.NotEmpty(t, candidates[2].Invalid)
}

func TestParseCandidatesErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseCandidates([]byte("[]"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "candidates", ve.Document)

	_, err = ParseCandidates([]byte(`{"candidates": {"id": "c-1"}}`))
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "candidates validation failed")

	_, err = ParseCandidates([]byte("   "))
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = ParseCandidates([]byte("skills: [unclosed"))
	assert.Error(t, err)

	_, err = LoadCandidates(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadCandidates("")
	assert.Error(t, err)
}

func TestParseScreenRequest(t *testing.T) {
	t.Parallel()

	body := `{
		"requirements": {"title": "SRE", "requiredSkills": ["Linux"]},
		"candidates": [{"id": "c-1", "skills": ["Linux"]}],
		"criteria": {"skillsWeight": 50, "experienceWeight": 20}
	}`

	req, err := ParseScreenRequest([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "SRE", req.Requirements.Title)
	require.Len(t, req.Candidates, 1)

	require.NotNil(t, req.Criteria)
	assert.InDelta(t, 50, req.Criteria.SkillsWeight, 1e-9)
	assert.InDelta(t, 20, req.Criteria.ExperienceWeight, 1e-9)
	// Weights absent from the request keep their defaults.
	assert.InDelta(t, 20, req.Criteria.EducationWeight, 1e-9)
	assert.InDelta(t, 10, req.Criteria.SalaryWeight, 1e-9)

	withoutCriteria, err := ParseScreenRequest([]byte(`{"requirements": {"title": "SRE"}, "candidates": [{"id": "c-1"}]}`))
	require.NoError(t, err)
	assert.Nil(t, withoutCriteria.Criteria)
}

func TestParseScreenRequestErrors(t *testing.T) {
	t.Parallel()

	var ve *ValidationError

	_, err := ParseScreenRequest([]byte(`["not", "an", "object"]`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "request", ve.Document)

	_, err = ParseScreenRequest([]byte(`{"candidates": [{"id": "c-1"}]}`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "requirements", ve.Document)

	_, err = ParseScreenRequest([]byte(`{"requirements": {"title": "SRE"}, "candidates": []}`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "candidates", ve.Document)

	_, err = ParseScreenRequest([]byte(`{"requirements": {"title": "SRE"}, "candidates": [{"id": "c-1"}], "criteria": {"skillsWeight": -1}}`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "criteria", ve.Document)
	assert.Equal(t, "EvaluationCriteria.SkillsWeight", ve.Errors[0].Field)
}
