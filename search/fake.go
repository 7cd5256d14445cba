package search

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrSimulatedFailure is returned by every Failing search.
var ErrSimulatedFailure = errors.New("simulated search failure")

// Fake returns the same two results for every query. It backs the
// offline research demo.
type Fake struct {
	calls atomic.Int64
}

// NewFake creates the fixed-result provider.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) Name() string { return ProviderFake }

func (f *Fake) Search(ctx context.Context, _ string, opts Options) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.calls.Add(1)

	results := []Result{
		{
			Title:   "Expo SQLite Migrations",
			URL:     "https://docs.expo.dev/versions/latest/sdk/sqlite/",
			Snippet: "Expo SQLite supports migrations via...",
		},
		{
			Title:   "Drizzle ORM",
			URL:     "https://orm.drizzle.team/",
			Snippet: "Type-safe SQL ORM with migration support",
		},
	}
	if opts.Count > 0 && opts.Count < len(results) {
		results = results[:opts.Count]
	}
	return results, nil
}

// Calls reports how many searches were served.
func (f *Fake) Calls() int { return int(f.calls.Load()) }

// Failing fails every search with ErrSimulatedFailure.
type Failing struct {
	calls atomic.Int64
}

// NewFailing creates the always-failing provider.
func NewFailing() *Failing { return &Failing{} }

func (f *Failing) Name() string { return ProviderError }

func (f *Failing) Search(context.Context, string, Options) ([]Result, error) {
	f.calls.Add(1)
	return nil, ErrSimulatedFailure
}

// Calls reports how many searches were attempted.
func (f *Failing) Calls() int { return int(f.calls.Load()) }
