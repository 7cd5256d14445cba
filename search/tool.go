package search

import (
	"context"

	"github.com/tailored-agentic-units/scout/tools"
)

// ToolName is the name the web search tool is registered under.
const ToolName = "web_search"

// WebSearchInput is the argument object of the web_search tool.
type WebSearchInput struct {
	Query string `json:"query" jsonschema_description:"The search query."`
	Count int    `json:"count,omitempty" jsonschema_description:"Maximum number of results to return."`
}

// Searcher runs queries. Both *Manager and every Provider satisfy it.
type Searcher interface {
	Search(ctx context.Context, query string, opts Options) ([]Result, error)
}

// WebSearch returns the web_search tool backed by searcher.
func WebSearch(searcher Searcher) tools.Descriptor {
	return tools.New(ToolName, "Search the web for information",
		func(ctx context.Context, in WebSearchInput) ([]Result, error) {
			return searcher.Search(ctx, in.Query, Options{Count: in.Count})
		})
}
