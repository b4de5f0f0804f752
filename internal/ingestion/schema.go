package ingestion

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

var (
	//go:embed schemas/requirements.schema.json
	requirementsSchemaJSON string
	//go:embed schemas/candidates.schema.json
	candidatesSchemaJSON string
	//go:embed schemas/candidate.schema.json
	candidateSchemaJSON string

	requirementsSchema = compiledSchema(requirementsSchemaJSON)
	candidatesSchema   = compiledSchema(candidatesSchemaJSON)
	candidateSchema    = compiledSchema(candidateSchemaJSON)
)

func compiledSchema(content string) func() (*gojsonschema.Schema, error) {
	return sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	})
}

// validateSchema checks a decoded document against one of the embedded schemas.
func validateSchema(document string, schema func() (*gojsonschema.Schema, error), doc any) error {
	errs, err := schemaErrors(document, schema, doc)
	if err != nil {
		return err
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Document: document, Errors: errs}
}

func schemaErrors(document string, schema func() (*gojsonschema.Schema, error), doc any) ([]FieldError, error) {
	compiled, err := schema()
	if err != nil {
		return nil, fmt.Errorf("load %s schema: %w", document, err)
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", document, err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		errs = append(errs, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return errs, nil
}
