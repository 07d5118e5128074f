package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is the JSON Schema every canonical document satisfies.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "outline"],
  "additionalProperties": false,
  "properties": {
    "title": {"type": "string"},
    "outline": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["level", "text", "page", "confidence"],
        "additionalProperties": false,
        "properties": {
          "level": {"enum": ["H1", "H2", "H3"]},
          "text": {"type": "string", "minLength": 1},
          "page": {"type": "integer", "minimum": 1},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("outline.json", strings.NewReader(Schema)); err != nil {
			schemaErr = fmt.Errorf("load outline schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("outline.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile outline schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Validate checks a rendered JSON document against Schema.
func Validate(data []byte) error {
	s, err := compiled()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode outline json: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("outline does not match schema: %w", err)
	}
	return nil
}
