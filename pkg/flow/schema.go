package flow

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
)

const graphSchemaURL = "https://stepgraph.dev/schemas/graph.json"

// graphSchemaJSON describes the payload shape only. Step types and name
// references are checked by Validate so they get their own error codes.
const graphSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://stepgraph.dev/schemas/graph.json",
  "type": "object",
  "minProperties": 1,
  "additionalProperties": { "$ref": "#/$defs/step" },
  "$defs": {
    "step": {
      "type": "object",
      "required": ["type", "next"],
      "properties": {
        "type": { "type": "string", "minLength": 1 },
        "next": {
          "type": "array",
          "items": { "type": "string", "minLength": 1 }
        },
        "box_next": { "type": "boolean" },
        "box_ends": { "type": ["string", "null"] },
        "doc": { "type": ["string", "null"] }
      }
    }
  }
}`

// SchemaValidator checks raw payloads against the graph JSON Schema.
// It is safe for concurrent use.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles the embedded graph schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	c := jsonschema.NewCompiler()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(graphSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal graph schema: %w", err)
	}
	if err := c.AddResource(graphSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add graph schema resource: %w", err)
	}

	schema, err := c.Compile(graphSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile graph schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate checks data against the schema.
// Malformed JSON and schema violations are both reported as ErrInvalidPayload
// with code INVALID_GRAPH.
func (v *SchemaValidator) Validate(data []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrInvalidPayload, "payload is not valid JSON: %v", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidGraph, ErrInvalidPayload, "%s", schemaMessage(err))
	}
	return nil
}

// schemaMessage flattens a validation error into a single line.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	return strings.Join(strings.Fields(ve.Error()), " ")
}

var (
	defaultValidator     *SchemaValidator
	defaultValidatorErr  error
	defaultValidatorOnce sync.Once
)

// DefaultSchemaValidator returns a shared, lazily compiled validator.
func DefaultSchemaValidator() (*SchemaValidator, error) {
	defaultValidatorOnce.Do(func() {
		defaultValidator, defaultValidatorErr = NewSchemaValidator()
	})
	return defaultValidator, defaultValidatorErr
}
