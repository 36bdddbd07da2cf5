package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const evaluateSchemaURL = "https://schemas.pravnik.mk/compliance/evaluate-request.schema.json"

// evaluateRequestSchema describes the body of POST /catalogs/{type}/assessments.
// Profile completeness of the company is checked by the service, not here.
const evaluateRequestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["company", "answers"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string", "maxLength": 64},
    "sampleSeed": {"type": "integer"},
    "company": {
      "type": "object",
      "required": ["companyId"],
      "additionalProperties": false,
      "properties": {
        "companyId": {"type": "string", "minLength": 1, "maxLength": 255},
        "name": {"type": "string"},
        "address": {"type": "string"},
        "taxNumber": {"type": "string"},
        "manager": {"type": "string"},
        "email": {"type": "string"},
        "industryId": {"type": "string"},
        "industryName": {"type": "string"}
      }
    },
    "answers": {
      "type": "object",
      "additionalProperties": {"type": "string", "maxLength": 64}
    }
  }
}`

// fieldProblem is one schema violation reported back to the client
type fieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func compileEvaluateSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(evaluateSchemaURL, strings.NewReader(evaluateRequestSchema)); err != nil {
		return nil, fmt.Errorf("failed to load evaluate schema: %w", err)
	}
	schema, err := c.Compile(evaluateSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile evaluate schema: %w", err)
	}
	return schema, nil
}

// schemaProblems flattens a schema validation error into its leaf causes
func schemaProblems(err error) []fieldProblem {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []fieldProblem{{Field: "", Message: err.Error()}}
	}

	var problems []fieldProblem
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			problems = append(problems, fieldProblem{Field: e.InstanceLocation, Message: e.Message})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return problems
}
