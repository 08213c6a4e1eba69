package report

// Schema is the JSON Schema (Draft 2020-12) for the wcc JSON output.
// It documents the structure returned by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/wcc/report.schema.json",
  "title": "Weighted Code Coverage Report",
  "description": "Output schema for wcc run --format=json",
  "type": "object",
  "required": [
    "project", "mode", "thresholds", "files", "project_metrics",
    "complex_files_cyclomatic", "complex_files_cognitive", "ignored_files"
  ],
  "properties": {
    "project": { "type": "string" },
    "mode": { "enum": ["files", "functions"] },
    "thresholds": { "$ref": "#/$defs/Thresholds" },
    "files": {
      "type": "array",
      "items": { "$ref": "#/$defs/File" }
    },
    "project_metrics": {
      "type": "object",
      "required": ["total", "min", "max", "average"],
      "properties": {
        "total": { "$ref": "#/$defs/Metrics" },
        "min": { "$ref": "#/$defs/Metrics" },
        "max": { "$ref": "#/$defs/Metrics" },
        "average": { "$ref": "#/$defs/Metrics" }
      }
    },
    "complex_files_cyclomatic": {
      "type": "array",
      "items": { "type": "string" }
    },
    "complex_files_cognitive": {
      "type": "array",
      "items": { "type": "string" }
    },
    "ignored_files": {
      "type": "array",
      "items": { "type": "string" }
    }
  },
  "$defs": {
    "Thresholds": {
      "type": "object",
      "required": [
        "wcc", "crap_cyclomatic", "crap_cognitive",
        "skunk_cyclomatic", "skunk_cognitive"
      ],
      "properties": {
        "wcc": { "type": "number", "minimum": 0 },
        "crap_cyclomatic": { "type": "number", "minimum": 0 },
        "crap_cognitive": { "type": "number", "minimum": 0 },
        "skunk_cyclomatic": { "type": "number", "minimum": 0 },
        "skunk_cognitive": { "type": "number", "minimum": 0 }
      }
    },
    "File": {
      "type": "object",
      "required": ["name", "metrics"],
      "properties": {
        "name": { "type": "string" },
        "metrics": { "$ref": "#/$defs/Metrics" },
        "functions": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["name", "metrics"],
            "properties": {
              "name": {
                "type": "string",
                "description": "Function name followed by its line span"
              },
              "metrics": { "$ref": "#/$defs/Metrics" }
            }
          }
        }
      }
    },
    "Metrics": {
      "type": "object",
      "required": ["cyclomatic", "cognitive", "coverage"],
      "properties": {
        "cyclomatic": { "$ref": "#/$defs/Data" },
        "cognitive": { "$ref": "#/$defs/Data" },
        "coverage": {
          "type": "number",
          "minimum": 0,
          "maximum": 100,
          "description": "Line coverage percentage"
        }
      }
    },
    "Data": {
      "type": "object",
      "required": ["wcc", "crap", "skunk", "complexity", "is_complex"],
      "properties": {
        "wcc": { "type": "number", "minimum": 0, "maximum": 100 },
        "crap": { "type": "number", "minimum": 0 },
        "skunk": { "type": "number", "minimum": 0 },
        "complexity": { "type": "number", "minimum": 0 },
        "is_complex": { "type": "boolean" }
      }
    }
  }
}`
