// Package ingestion loads already-structured job requirements and candidate
// pools from YAML or JSON documents and validates them before screening.
package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/spigell/hh-screener/internal/screening"
)

// ErrEmptyDocument is returned for a document without any content.
var ErrEmptyDocument = errors.New("document is empty")

// ValidationError aggregates every problem found in one document.
type ValidationError struct {
	Document string
	Errors   []FieldError
}

// FieldError is a single validation problem at a field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed:", ve.Document)
	for i, err := range ve.Errors {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, err.Field, err.Message)
	}
	return sb.String()
}

// ScreenRequest is a self-contained screening job: one position and its pool.
type ScreenRequest struct {
	Requirements *screening.JobRequirements    `json:"requirements"`
	Candidates   []*screening.CandidateProfile `json:"candidates"`
	Criteria     *screening.EvaluationCriteria `json:"criteria,omitempty"`
}

// LoadRequirements reads and validates a job requirements document.
func LoadRequirements(path string) (*screening.JobRequirements, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRequirements(data)
}

// LoadCandidates reads a candidate pool. The document is either a list of
// candidates or an object with a "candidates" list.
func LoadCandidates(path string) ([]*screening.CandidateProfile, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCandidates(data)
}

func readFile(path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("document path is required")
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func ParseRequirements(data []byte) (*screening.JobRequirements, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, err
	}
	return requirementsFrom(doc)
}

func ParseCandidates(data []byte) ([]*screening.CandidateProfile, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, err
	}
	return candidatesFrom(unwrapCandidates(doc))
}

// ParseScreenRequest decodes a request carrying requirements, candidates and
// optional criteria. Each part is validated like its standalone document.
func ParseScreenRequest(data []byte) (*ScreenRequest, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, err
	}
	fields, ok := doc.(map[string]any)
	if !ok {
		return nil, &ValidationError{Document: "request", Errors: []FieldError{{Field: "(root)", Message: "Invalid type. Expected: object"}}}
	}

	req := &ScreenRequest{}
	if req.Requirements, err = requirementsFrom(fields["requirements"]); err != nil {
		return nil, err
	}
	if req.Candidates, err = candidatesFrom(fields["candidates"]); err != nil {
		return nil, err
	}

	if raw, ok := fields["criteria"]; ok && raw != nil {
		criteria := screening.DefaultCriteria()
		if err := remarshal(raw, &criteria); err != nil {
			return nil, fmt.Errorf("decode criteria: %w", err)
		}
		if err := ValidateCriteria(criteria); err != nil {
			return nil, err
		}
		req.Criteria = &criteria
	}

	return req, nil
}

func requirementsFrom(doc any) (*screening.JobRequirements, error) {
	if err := validateSchema("requirements", requirementsSchema, doc); err != nil {
		return nil, err
	}

	var req screening.JobRequirements
	if err := remarshal(doc, &req); err != nil {
		return nil, fmt.Errorf("decode requirements: %w", err)
	}
	if err := ValidateRequirements(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// candidatesFrom only rejects a document that is not a non-empty list. Each
// record is validated on its own; a broken one is kept as a placeholder so
// the batch reports it as a failed candidate.
func candidatesFrom(doc any) ([]*screening.CandidateProfile, error) {
	if err := validateSchema("candidates", candidatesSchema, doc); err != nil {
		return nil, err
	}

	items, _ := doc.([]any)
	candidates := make([]*screening.CandidateProfile, 0, len(items))
	for _, item := range items {
		candidate, err := candidateFrom(item)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func candidateFrom(item any) (*screening.CandidateProfile, error) {
	errs, err := schemaErrors("candidate", candidateSchema, item)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return invalidCandidate(item, errs), nil
	}

	var candidate screening.CandidateProfile
	if err := remarshal(item, &candidate); err != nil {
		return invalidCandidate(item, []FieldError{{Field: "(root)", Message: err.Error()}}), nil
	}
	return &candidate, nil
}

// invalidCandidate keeps whatever identity the broken record carries.
func invalidCandidate(item any, errs []FieldError) *screening.CandidateProfile {
	problems := make([]string, 0, len(errs))
	for _, fe := range errs {
		problems = append(problems, fe.Field+": "+fe.Message)
	}

	candidate := &screening.CandidateProfile{Invalid: strings.Join(problems, "; ")}
	if fields, ok := item.(map[string]any); ok {
		candidate.ID, _ = fields["id"].(string)
		candidate.Name, _ = fields["name"].(string)
	}
	return candidate
}

func unwrapCandidates(doc any) any {
	if fields, ok := doc.(map[string]any); ok {
		if list, found := fields["candidates"]; found {
			return list
		}
	}
	return doc
}

// decode parses a JSON or YAML document into generic values.
func decode(data []byte) (any, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, ErrEmptyDocument
	}

	var doc any
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		// JSON allows tab indentation, which YAML rejects.
		if err := json.Unmarshal(data, &doc); err == nil && doc != nil {
			return doc, nil
		}
		doc = nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if doc == nil {
		return nil, ErrEmptyDocument
	}
	return doc, nil
}

func remarshal(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// ValidateRequirements runs the struct rules on the requirements.
func ValidateRequirements(req *screening.JobRequirements) error {
	return asValidationError("requirements", req.Validate())
}

func ValidateCriteria(criteria screening.EvaluationCriteria) error {
	return asValidationError("criteria", criteria.Validate())
}

func asValidationError(document string, err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Document: document, Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}

	ve := &ValidationError{Document: document, Errors: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg := fmt.Sprintf("failed on the %q rule", fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("failed on the %q rule (%s)", fe.Tag(), fe.Param())
		}
		ve.Errors = append(ve.Errors, FieldError{Field: fe.Namespace(), Message: msg})
	}
	return ve
}
