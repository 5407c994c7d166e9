package gateway

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var nullableNumber = map[string]any{"type": []string{"number", "string", "null"}}

// submissionSchema checks a single stored submission. Numeric fields may
// arrive as numbers, numeric strings or null.
var submissionSchema = map[string]any{
	"type":     "object",
	"required": []string{"child_id"},
	"properties": map[string]any{
		"id":              map[string]any{"type": []string{"string", "number", "null"}},
		"homework_id":     map[string]any{"type": []string{"string", "number", "null"}},
		"child_id":        map[string]any{"type": []string{"string", "number"}},
		"score":           nullableNumber,
		"percentage":      nullableNumber,
		"total_questions": nullableNumber,
		"answers_data":    map[string]any{"type": []string{"string", "object", "null"}},
		"submitted_at":    map[string]any{"type": []string{"string", "null"}},
	},
}

// listItemSchema only requires the owner of each entry. The remaining
// fields are checked on the entry that matches the child.
var listItemSchema = map[string]any{
	"type":     "object",
	"required": []string{"child_id"},
	"properties": map[string]any{
		"child_id": map[string]any{"type": []string{"string", "number"}},
	},
}

// schemas holds the raw definitions of every backend response we parse.
var schemas = map[string]map[string]any{
	"submission": submissionSchema,
	"submission_list": {
		"type":     "object",
		"required": []string{"success"},
		"properties": map[string]any{
			"success":     map[string]any{"type": "boolean"},
			"message":     map[string]any{"type": "string"},
			"submissions": map[string]any{"type": "array", "items": listItemSchema},
		},
	},
	"submit_response": {
		"type":     "object",
		"required": []string{"success"},
		"properties": map[string]any{
			"success":    map[string]any{"type": "boolean"},
			"message":    map[string]any{"type": "string"},
			"submission": submissionSchema,
		},
	},
}

// compiled caches compiled schemas by name.
var compiled sync.Map // map[string]*jsonschema.Schema

// validateBody checks raw JSON against the named schema. Returns
// *ErrInvalidResponse on failure.
func validateBody(name string, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	sch, err := schemaFor(name)
	if err != nil {
		return &ErrInvalidResponse{Body: raw, Err: fmt.Errorf("compile schema %q: %w", name, err)}
	}
	if err := sch.Validate(parsed); err != nil {
		return &ErrInvalidResponse{Body: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func schemaFor(name string) (*jsonschema.Schema, error) {
	if cached, ok := compiled.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	// The compiler wants a plain decoded JSON value.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var doc any
	if err := json.Unmarshal(defBytes, &doc); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	compiled.Store(name, sch)
	return sch, nil
}
