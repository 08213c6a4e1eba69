package coverage

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// CoverallsSchema is the JSON Schema accepted for Coveralls reports.
// Only the fields read by wcc are constrained.
const CoverallsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "grcov coveralls report",
  "type": "object",
  "required": ["source_files"],
  "properties": {
    "source_files": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "coverage"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "coverage": {
            "type": "array",
            "items": {
              "anyOf": [
                {"type": "null"},
                {"type": "integer", "minimum": 0}
              ]
            }
          }
        }
      }
    }
  }
}`

// CovdirSchema is the JSON Schema accepted for Covdir reports. Nodes
// with children are directories, all others are files.
const CovdirSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "grcov covdir report",
  "$ref": "#/$defs/node",
  "$defs": {
    "node": {
      "type": "object",
      "required": ["name", "coveragePercent"],
      "properties": {
        "name": {"type": "string"},
        "coveragePercent": {"type": "number", "minimum": 0, "maximum": 100},
        "coverage": {
          "type": "array",
          "items": {"type": "integer", "minimum": -1}
        },
        "children": {
          "type": "object",
          "additionalProperties": {"$ref": "#/$defs/node"}
        }
      }
    }
  }
}`

// validate checks data against schema, wrapping every failure in
// ErrMalformed.
func validate(name, schema string, data []byte) error {
	sch, err := jsonschema.UnmarshalJSON(strings.NewReader(schema))
	if err != nil {
		return fmt.Errorf("parsing %s schema: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name+".json", sch); err != nil {
		return fmt.Errorf("adding %s schema: %w", name, err)
	}
	compiled, err := compiler.Compile(name + ".json")
	if err != nil {
		return fmt.Errorf("compiling %s schema: %w", name, err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := compiled.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
