package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tailored-agentic-units/scout/observability"
)

const (
	// DefaultGoogleEndpoint is the Google results page that is scraped.
	DefaultGoogleEndpoint = "https://www.google.com/search"

	googleUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	googleMaxResults = 10
	noDescription    = "No description available"
)

// EventGoogleFailed is emitted when a Google fetch or parse fails and the
// search degrades to an empty result list.
const EventGoogleFailed observability.EventType = "search.google.failed"

// Google scrapes the public Google results page. Google changes its
// markup often and blocks automated clients, so every failure degrades to
// an empty result list rather than an error.
type Google struct {
	httpOptions
}

// NewGoogle creates the HTML-scraping provider.
func NewGoogle(opts ...Option) *Google {
	return &Google{httpOptions: newHTTPOptions(DefaultGoogleEndpoint, opts)}
}

func (g *Google) Name() string { return ProviderGoogle }

func (g *Google) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}

	body, err := g.fetch(ctx, query, lang)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.observer.OnEvent(ctx, observability.NewEvent(EventGoogleFailed, observability.LevelWarning, "search.google", map[string]any{
			"query": query,
			"error": err.Error(),
		}))
		return []Result{}, nil
	}
	defer body.Close()

	results, err := ParseGoogleResults(body)
	if err != nil {
		g.observer.OnEvent(ctx, observability.NewEvent(EventGoogleFailed, observability.LevelWarning, "search.google", map[string]any{
			"query": query,
			"error": err.Error(),
		}))
		return []Result{}, nil
	}

	if opts.Count > 0 && len(results) > opts.Count {
		results = results[:opts.Count]
	}
	return results, nil
}

func (g *Google) fetch(ctx context.Context, query, lang string) (io.ReadCloser, error) {
	params := url.Values{
		"q":  {query},
		"hl": {lang},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google: build request: %w", err)
	}
	req.Header.Set("User-Agent", googleUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("google: HTTP %d: %s", resp.StatusCode, readErrorBody(resp.Body, 512))
	}

	return resp.Body, nil
}

// ParseGoogleResults extracts up to ten results from a Google results
// page. A result is a div with class "g" holding an h3 title and a
// "/url?q=" redirect link; results without an http URL or a title are
// skipped.
func ParseGoogleResults(r io.Reader) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("google: parse html: %w", err)
	}

	var blocks []*html.Node
	collectBlocks(doc, &blocks)

	results := make([]Result, 0, min(len(blocks), googleMaxResults))
	for _, block := range blocks {
		if len(results) == googleMaxResults {
			break
		}

		title := cleanText(textOf(findElement(block, atom.H3, "")))
		link := redirectTarget(block)
		if title == "" || !strings.HasPrefix(link, "http") {
			continue
		}

		snippetNode := findElement(block, atom.Div, "VwiC3b")
		if snippetNode == nil {
			snippetNode = findElement(block, atom.Span, "st")
		}
		snippet := cleanText(textOf(snippetNode))
		if snippet == "" {
			snippet = noDescription
		}

		results = append(results, Result{Title: title, URL: link, Snippet: snippet})
	}

	return results, nil
}

// collectBlocks gathers the outermost div.g containers in document order.
func collectBlocks(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Div && hasClass(n, "g") {
		*out = append(*out, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(c, out)
	}
}

// findElement returns the first descendant of n with the given tag and,
// when class is non-empty, that class.
func findElement(n *html.Node, tag atom.Atom, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == tag && (class == "" || hasClass(c, class)) {
			return c
		}
		if found := findElement(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

// redirectTarget decodes the destination of the first "/url?q=" link.
func redirectTarget(n *html.Node) string {
	var target string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			href := attr(n, "href")
			if rest, ok := strings.CutPrefix(href, "/url?q="); ok {
				rest, _, _ = strings.Cut(rest, "&")
				decoded, err := url.QueryUnescape(rest)
				if err != nil {
					decoded = rest
				}
				target = decoded
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(n)
	return target
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textOf returns the concatenated text of all descendants of n.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

// cleanText collapses runs of whitespace, including non-breaking spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
