package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// Schema validates serialized tool arguments and describes them to the
// model.
type Schema interface {
	// Parameters returns the JSON Schema sent to the model.
	Parameters() map[string]any
	// Parse validates raw and returns the typed input. Failures are
	// *ValidationError.
	Parse(raw string) (any, error)
}

type reflectedSchema[T any] struct {
	params   map[string]any
	required []string
}

// SchemaFor reflects the JSON Schema of T, which must be a struct. Fields
// without omitempty are required.
func SchemaFor[T any]() Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	var v T
	data, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		panic(fmt.Sprintf("tools: reflect schema: %v", err))
	}

	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		panic(fmt.Sprintf("tools: decode schema: %v", err))
	}
	delete(params, "$schema")
	delete(params, "$id")

	if _, ok := params["properties"]; !ok {
		params["properties"] = map[string]any{}
	}

	var required []string
	if list, ok := params["required"].([]any); ok {
		for _, name := range list {
			if s, ok := name.(string); ok {
				required = append(required, s)
			}
		}
	}

	return &reflectedSchema[T]{params: params, required: required}
}

func (s *reflectedSchema[T]) Parameters() map[string]any {
	return s.params
}

// Parse treats empty input as an empty object and ignores unknown
// properties.
func (s *reflectedSchema[T]) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return nil, &ValidationError{Err: errors.New("arguments must be a JSON object")}
	}

	for _, name := range s.required {
		if _, ok := fields[name]; !ok {
			return nil, &ValidationError{Err: fmt.Errorf("missing required property %q", name)}
		}
	}

	var in T
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Err: fmt.Errorf("property %q must be %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)}
		}
		return nil, &ValidationError{Err: err}
	}

	return in, nil
}
