// Package schemas validates JSON documents against the JSON Schemas embedded in the binary.
package schemas

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names
const (
	Vocabulary    = "vocabulary.schema.json"
	BatchManifest = "batch_manifest.schema.json"
)

//go:embed *.schema.json
var schemaFS embed.FS

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s validation failed:\n", ve.Schema))
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema or the document itself
type SchemaLoadError struct {
	Schema  string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Schema, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Schema, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Get returns the raw content of an embedded schema.
func Get(name string) ([]byte, error) {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, &SchemaLoadError{Schema: name, Message: "schema not embedded", Cause: err}
	}
	return data, nil
}

// Validate checks a JSON document against the named embedded schema.
func Validate(name string, document []byte) error {
	schema, err := Get(name)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		// Malformed JSON in either the schema or the document lands here.
		return &SchemaLoadError{Schema: name, Message: "validation could not run", Cause: err}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Schema: name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
