package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Analyzer asks Gemini to score a candidate against the job requirements.
type Analyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var (
	//go:embed system.md
	systemInstruction string
	//go:embed prompt.md
	promptTemplate string
)

const defaultMaxLogLength = 200

func NewAnalyzer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Analyzer) Assess(ctx context.Context, candidate *screening.CandidateProfile, req *screening.JobRequirements) (*ai.CandidateAssessment, error) {
	if candidate == nil {
		return nil, fmt.Errorf("candidate is required")
	}
	if req == nil {
		return nil, fmt.Errorf("job requirements are required")
	}

	candidateJSON, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate payload: %w", err)
	}

	requirementsJSON, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal requirements payload: %w", err)
	}

	prompt := buildPrompt(string(candidateJSON), string(requirementsJSON))

	a.logger.Debug("gemini generate content request",
		logger.Candidate(candidate.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response",
		logger.Candidate(candidate.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildPrompt(candidateJSON, requirementsJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Position:\n{{REQUIREMENTS_JSON}}\n\nCandidate:\n{{CANDIDATE_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{REQUIREMENTS_JSON}}", requirementsJSON)
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_JSON}}", candidateJSON)
	return prompt
}

// assessmentResponse mirrors the JSON object requested in prompt.md.
type assessmentResponse struct {
	Scores        screening.ScoreBreakdown `mapstructure:",squash"`
	Strengths     []string                 `mapstructure:"strengths"`
	Weaknesses    []string                 `mapstructure:"weaknesses"`
	Risks         []string                 `mapstructure:"risks"`
	Opportunities []string                 `mapstructure:"opportunities"`
	Reasoning     string                   `mapstructure:"detailedReasoning"`
	ScoutMessage  string                   `mapstructure:"scoutMessage"`
}

var requiredScoreKeys = []string{
	"skillsScore", "experienceScore", "educationScore",
	"salaryScore", "locationScore", "culturalFitScore",
}

func parseResponse(raw string) (*ai.CandidateAssessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	// Some models nest the scores under "breakdown".
	if nested, ok := data["breakdown"].(map[string]any); ok {
		for k, v := range nested {
			if _, exists := data[k]; !exists {
				data[k] = v
			}
		}
	}

	var missing []string
	for _, key := range requiredScoreKeys {
		if v, ok := data[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("parse gemini response: missing scores %s", strings.Join(missing, ", "))
	}

	var resp assessmentResponse
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &resp,
	})
	if err != nil {
		return nil, fmt.Errorf("create response decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	return &ai.CandidateAssessment{
		Scores:        resp.Scores.Clamp(),
		Strengths:     resp.Strengths,
		Weaknesses:    resp.Weaknesses,
		Risks:         resp.Risks,
		Opportunities: resp.Opportunities,
		Reasoning:     strings.TrimSpace(resp.Reasoning),
		ScoutMessage:  strings.TrimSpace(resp.ScoutMessage),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
