// Package providers implements model backends: an OpenAI-compatible HTTP
// client and an Anthropic Messages client.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/tailored-agentic-units/scout/agent"
	"github.com/tailored-agentic-units/scout/core/protocol"
	"github.com/tailored-agentic-units/scout/core/response"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
)

// ErrMissingAPIKey is returned when the canonical OpenAI endpoint is
// configured without a key.
var ErrMissingAPIKey = errors.New("api key is required")

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// OpenAI talks to any OpenAI-compatible /chat/completions endpoint
// (OpenAI, Ollama, vLLM).
type OpenAI struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

// NewOpenAI creates an OpenAI backend. The API key falls back to the
// OPENAI_API_KEY environment variable and is only required for the
// canonical OpenAI base URL. A nil httpClient uses one with cfg's timeout.
func NewOpenAI(cfg *agent.Config, httpClient *http.Client) (*OpenAI, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" && baseURL == DefaultOpenAIBaseURL {
		return nil, fmt.Errorf("openai: %w (set api_key or OPENAI_API_KEY)", ErrMissingAPIKey)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}

	return &OpenAI{
		baseURL:   baseURL,
		apiKey:    apiKey,
		model:     model,
		maxTokens: cfg.MaxTokens,
		client:    httpClient,
	}, nil
}

// Model returns the model name sent with each request.
func (o *OpenAI) Model() string {
	return o.model
}

func (o *OpenAI) Chat(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.Response, error) {
	body, err := json.Marshal(NewChatRequest(o.model, o.maxTokens, messages, tools))
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, fmt.Errorf("openai: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	parsed, err := response.ParseTools(data)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	out, err := parsed.Response()
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return out, nil
}
