package tools_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/tailored-agentic-units/scout/tools"
)

type echoInput struct {
	Input string `json:"input"`
}

func echoTool(name string) tools.Descriptor {
	return tools.New(name, "test tool: "+name, func(_ context.Context, in echoInput) (string, error) {
		return in.Input, nil
	})
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		desc    tools.Descriptor
		wantErr error
	}{
		{name: "valid tool", desc: echoTool("echo")},
		{name: "empty name", desc: tools.Descriptor{}, wantErr: tools.ErrEmptyName},
		{
			name:    "no schema",
			desc:    tools.Descriptor{Name: "x", Execute: func(context.Context, any) (any, error) { return nil, nil }},
			wantErr: tools.ErrNoSchema,
		},
		{
			name:    "no execute",
			desc:    tools.Descriptor{Name: "x", Schema: tools.SchemaFor[echoInput]()},
			wantErr: tools.ErrNoExecute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := tools.NewRegistry()
			err := r.Register(tt.desc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Register() unexpected error: %v", err)
			}
		})
	}
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	r, _ := tools.NewRegistry()

	if err := r.Register(echoTool("dup")); err != nil {
		t.Fatalf("first Register() failed: %v", err)
	}

	err := r.Register(echoTool("dup"))
	if !errors.Is(err, tools.ErrAlreadyExists) {
		t.Errorf("second Register() error = %v, want %v", err, tools.ErrAlreadyExists)
	}
}

func TestNewRegistry_Duplicate(t *testing.T) {
	_, err := tools.NewRegistry(echoTool("a"), echoTool("a"))
	if !errors.Is(err, tools.ErrAlreadyExists) {
		t.Errorf("NewRegistry() error = %v, want %v", err, tools.ErrAlreadyExists)
	}
}

func TestRegistry_Replace(t *testing.T) {
	r, err := tools.NewRegistry(echoTool("a"), echoTool("b"), echoTool("c"))
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}

	updated := echoTool("b")
	updated.Description = "updated"
	if err := r.Replace(updated); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}

	got, ok := r.Get("b")
	if !ok {
		t.Fatal("Get() returned false after Replace")
	}
	if got.Description != "updated" {
		t.Errorf("got description %q, want %q", got.Description, "updated")
	}
	if names := r.Names(); !slices.Equal(names, []string{"a", "b", "c"}) {
		t.Errorf("Replace changed order: %v", names)
	}
}

func TestRegistry_Replace_NotFound(t *testing.T) {
	r, _ := tools.NewRegistry()

	if err := r.Replace(echoTool("missing")); !errors.Is(err, tools.ErrNotFound) {
		t.Errorf("Replace() error = %v, want %v", err, tools.ErrNotFound)
	}
}

func TestRegistry_Get_NotFound(t *testing.T) {
	r, _ := tools.NewRegistry(echoTool("a"))

	if _, ok := r.Get("nonexistent"); ok {
		t.Error("Get() returned true for nonexistent tool")
	}
}

func TestRegistry_Order(t *testing.T) {
	names := []string{"web_search", "get_datetime", "get_weather", "alpha"}

	r, _ := tools.NewRegistry()
	for _, n := range names {
		if err := r.Register(echoTool(n)); err != nil {
			t.Fatalf("Register(%q) failed: %v", n, err)
		}
	}

	if got := r.Names(); !slices.Equal(got, names) {
		t.Errorf("Names() = %v, want %v", got, names)
	}
	if r.Len() != len(names) {
		t.Errorf("Len() = %d, want %d", r.Len(), len(names))
	}

	for i, d := range r.List() {
		if d.Name != names[i] {
			t.Errorf("List()[%d] = %q, want %q", i, d.Name, names[i])
		}
	}

	wire := r.Tools()
	for i, tool := range wire {
		if tool.Name != names[i] {
			t.Errorf("Tools()[%d] = %q, want %q", i, tool.Name, names[i])
		}
		if tool.Description != "test tool: "+names[i] {
			t.Errorf("Tools()[%d] description = %q", i, tool.Description)
		}
		if tool.Parameters["type"] != "object" {
			t.Errorf("Tools()[%d] parameters type = %v, want object", i, tool.Parameters["type"])
		}
	}
}

func TestRegistry_Names_DefensiveCopy(t *testing.T) {
	r, _ := tools.NewRegistry(echoTool("a"))

	names := r.Names()
	names[0] = "tampered"

	if r.Names()[0] != "a" {
		t.Error("Names() exposes internal slice")
	}
}
