package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tailored-agentic-units/scout/agent"
	"github.com/tailored-agentic-units/scout/core/protocol"
	"github.com/tailored-agentic-units/scout/core/response"
)

const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

// Anthropic talks to the Anthropic Messages API.
type Anthropic struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic creates an Anthropic backend. The SDK reads
// ANTHROPIC_API_KEY when cfg carries no key. SDK-level retries are
// disabled; agent.Client owns the retry policy. A nil httpClient uses one
// with cfg's timeout.
func NewAnthropic(cfg *agent.Config, httpClient *http.Client) *Anthropic {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}

	opts := []option.RequestOption{
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = DefaultAnthropicModel
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	c := anthropic.NewClient(opts...)
	return &Anthropic{client: &c, model: model, maxTokens: maxTokens}
}

func (a *Anthropic) Chat(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.Response, error) {
	system, conv := anthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  conv,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(tools) > 0 {
		params.Tools = anthropicTools(tools)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var text []string
	var calls []protocol.ToolCall
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			text = append(text, v.Text)
		case anthropic.ToolUseBlock:
			calls = append(calls, protocol.NewToolCall(v.ID, v.Name, v.JSON.Input.Raw()))
		}
	}

	var out *response.Response
	if len(calls) > 0 {
		out = response.NewToolCallBatch(calls...)
	} else {
		out = response.NewFinal(strings.Join(text, "\n"))
	}
	out.Usage = &response.TokenUsage{
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
		TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
	}
	return out, nil
}

// anthropicMessages lifts system messages into the system prompt and folds
// consecutive tool results into a single user turn.
func anthropicMessages(messages []protocol.Message) (string, []anthropic.MessageParam) {
	var system []string
	conv := make([]anthropic.MessageParam, 0, len(messages))

	var pending []anthropic.ContentBlockParamUnion
	flush := func() {
		if len(pending) > 0 {
			conv = append(conv, anthropic.NewUserMessage(pending...))
			pending = nil
		}
	}

	for _, m := range messages {
		switch m.Role {
		case protocol.RoleSystem:
			system = append(system, m.Content)

		case protocol.RoleTool:
			pending = append(pending, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false))

		case protocol.RoleUser:
			flush()
			conv = append(conv, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))

		case protocol.RoleAssistant:
			flush()
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				args := strings.TrimSpace(tc.Arguments)
				if args == "" {
					args = "{}"
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    tc.ID,
					Name:  tc.Name,
					Input: json.RawMessage(args),
				}})
			}
			if len(blocks) > 0 {
				conv = append(conv, anthropic.NewAssistantMessage(blocks...))
			}
		}
	}
	flush()

	return strings.Join(system, "\n\n"), conv
}

func anthropicTools(tools []protocol.Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := anthropic.ToolInputSchemaParam{
			Properties: t.Parameters["properties"],
			Required:   requiredFields(t.Parameters["required"]),
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: schema,
		}})
	}
	return out
}

func requiredFields(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
