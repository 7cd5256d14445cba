package tools

import (
	"context"
	"fmt"
	"time"
)

// DateTimeInput selects the zone the current time is reported in.
type DateTimeInput struct {
	Timezone string `json:"timezone,omitempty" jsonschema_description:"IANA time zone name such as Europe/Paris. Defaults to UTC."`
}

// DateTimeOutput is the reported time.
type DateTimeOutput struct {
	DateTime string `json:"datetime"`
	Timezone string `json:"timezone"`
}

// DateTime returns the get_datetime tool. A nil now uses time.Now.
func DateTime(now func() time.Time) Descriptor {
	if now == nil {
		now = time.Now
	}

	return New("get_datetime", "Get the current date and time, optionally in a specific time zone.",
		func(ctx context.Context, in DateTimeInput) (DateTimeOutput, error) {
			name := in.Timezone
			if name == "" {
				name = "UTC"
			}

			loc, err := time.LoadLocation(name)
			if err != nil {
				return DateTimeOutput{}, fmt.Errorf("unknown time zone %q", name)
			}

			return DateTimeOutput{
				DateTime: now().In(loc).Format(time.RFC3339),
				Timezone: loc.String(),
			}, nil
		})
}
