package tools_test

import (
	"context"
	"testing"
	"time"

	"github.com/tailored-agentic-units/scout/tools"
)

func TestDateTime(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	desc := tools.DateTime(func() time.Time { return fixed })

	if desc.Name != "get_datetime" {
		t.Errorf("got name %q, want get_datetime", desc.Name)
	}

	tests := []struct {
		name    string
		raw     string
		want    tools.DateTimeOutput
		wantErr bool
	}{
		{name: "default utc", raw: `{}`, want: tools.DateTimeOutput{DateTime: "2026-03-14T15:09:26Z", Timezone: "UTC"}},
		{name: "empty arguments", raw: ``, want: tools.DateTimeOutput{DateTime: "2026-03-14T15:09:26Z", Timezone: "UTC"}},
		{name: "unknown zone", raw: `{"timezone":"Mars/Olympus"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := desc.Schema.Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			out, err := desc.Execute(context.Background(), in)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if out.(tools.DateTimeOutput) != tt.want {
				t.Errorf("got %+v, want %+v", out, tt.want)
			}
		})
	}
}

func TestConfig(t *testing.T) {
	cfg := tools.DefaultConfig()
	if cfg.MaxAttempts != 3 || cfg.Validation != tools.ValidationFail {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	cfg.Merge(&tools.Config{MaxAttempts: 5, Validation: tools.ValidationAbsorb})
	if cfg.MaxAttempts != 5 || cfg.Validation != tools.ValidationAbsorb {
		t.Errorf("merge did not apply: %+v", cfg)
	}

	cfg.Merge(&tools.Config{})
	if cfg.MaxAttempts != 5 || cfg.Validation != tools.ValidationAbsorb {
		t.Errorf("zero merge overwrote values: %+v", cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	bad := tools.Config{Validation: "ignore"}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted unknown policy")
	}
}
