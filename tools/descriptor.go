package tools

import (
	"context"
	"fmt"

	"github.com/tailored-agentic-units/scout/core/protocol"
)

// ExecuteFunc runs a tool against input already produced by its Schema.
type ExecuteFunc func(ctx context.Context, input any) (any, error)

// Descriptor is the static metadata and callable contract of one tool.
type Descriptor struct {
	Name        string
	Description string
	Schema      Schema
	Execute     ExecuteFunc
}

// New builds a Descriptor whose schema is reflected from In and whose
// execute function receives the parsed In.
//
//	type weatherInput struct {
//		City string `json:"city" jsonschema_description:"City name."`
//	}
//
//	desc := tools.New("get_weather", "Current weather for a city.",
//		func(ctx context.Context, in weatherInput) (weather, error) { ... })
func New[In, Out any](name, description string, fn func(ctx context.Context, in In) (Out, error)) Descriptor {
	return Descriptor{
		Name:        name,
		Description: description,
		Schema:      SchemaFor[In](),
		Execute: func(ctx context.Context, input any) (any, error) {
			in, ok := input.(In)
			if !ok {
				return nil, fmt.Errorf("%s: unexpected input type %T", name, input)
			}
			return fn(ctx, in)
		},
	}
}

// Tool returns the wire projection of d sent to the model.
func (d Descriptor) Tool() protocol.Tool {
	return protocol.Tool{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  d.Schema.Parameters(),
	}
}

func (d Descriptor) validate() error {
	switch {
	case d.Name == "":
		return ErrEmptyName
	case d.Schema == nil:
		return fmt.Errorf("%w: %s", ErrNoSchema, d.Name)
	case d.Execute == nil:
		return fmt.Errorf("%w: %s", ErrNoExecute, d.Name)
	}
	return nil
}
