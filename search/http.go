package search

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tailored-agentic-units/scout/observability"
)

// DefaultTimeout bounds every HTTP search request.
const DefaultTimeout = 15 * time.Second

// defaultCount is used when a query leaves Options.Count zero.
const defaultCount = 5

// Option configures an HTTP-backed provider.
type Option func(*httpOptions)

type httpOptions struct {
	client   *http.Client
	endpoint string
	observer observability.Observer
}

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *httpOptions) {
		if c != nil {
			o.client = c
		}
	}
}

// WithEndpoint overrides the provider's request URL.
func WithEndpoint(endpoint string) Option {
	return func(o *httpOptions) {
		if endpoint != "" {
			o.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithObserver sets the observer that receives provider diagnostics.
func WithObserver(obs observability.Observer) Option {
	return func(o *httpOptions) {
		o.observer = obs
	}
}

func newHTTPOptions(endpoint string, opts []Option) httpOptions {
	o := httpOptions{
		client:   &http.Client{Timeout: DefaultTimeout},
		endpoint: endpoint,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.observer = observability.OrNoOp(o.observer)
	return o
}

func readErrorBody(r io.Reader, limit int64) string {
	body, _ := io.ReadAll(io.LimitReader(r, limit))
	return strings.TrimSpace(string(body))
}
