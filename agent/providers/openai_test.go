package providers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/scout/agent"
	"github.com/tailored-agentic-units/scout/agent/providers"
	"github.com/tailored-agentic-units/scout/core/protocol"
	"github.com/tailored-agentic-units/scout/core/response"
)

type capturedRequest struct {
	path   string
	auth   string
	header http.Header
	body   map[string]any
}

func newOpenAIServer(t *testing.T, status int, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if captured != nil {
			captured.path = r.URL.Path
			captured.auth = r.Header.Get("Authorization")
			captured.header = r.Header.Clone()
			_ = json.Unmarshal(data, &captured.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

var transcript = []protocol.Message{
	protocol.NewMessage(protocol.RoleSystem, "You are a helpful CLI research agent."),
	protocol.NewMessage(protocol.RoleUser, "Weather in Paris?"),
	{
		Role:      protocol.RoleAssistant,
		ToolCalls: []protocol.ToolCall{protocol.NewToolCall("call_1", "get_weather", `{"city":"Paris"}`)},
	},
	protocol.NewToolResult("get_weather", "call_1", `{"temp":20}`),
}

var weatherTool = protocol.Tool{
	Name:        "get_weather",
	Description: "Current weather.",
	Parameters: map[string]any{
		"type":       "object",
		"properties": map[string]any{"city": map[string]any{"type": "string"}},
		"required":   []any{"city"},
	},
}

func TestOpenAI_Chat_Final(t *testing.T) {
	var captured capturedRequest
	srv := newOpenAIServer(t, http.StatusOK, `{
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "It is 20°C in Paris."}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 30, "completion_tokens": 8, "total_tokens": 38}
	}`, &captured)

	o, err := providers.NewOpenAI(&agent.Config{BaseURL: srv.URL + "/", APIKey: "sk-test", MaxTokens: 128}, srv.Client())
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}

	resp, err := o.Chat(context.Background(), transcript, []protocol.Tool{weatherTool})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if !resp.IsFinal() || resp.Content != "It is 20°C in Paris." {
		t.Errorf("got %+v", resp)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 38 {
		t.Errorf("got usage %+v", resp.Usage)
	}

	if captured.path != "/chat/completions" {
		t.Errorf("got path %q, want /chat/completions", captured.path)
	}
	if captured.auth != "Bearer sk-test" {
		t.Errorf("got auth %q", captured.auth)
	}
	if captured.body["model"] != providers.DefaultOpenAIModel {
		t.Errorf("got model %v, want %s", captured.body["model"], providers.DefaultOpenAIModel)
	}
	if captured.body["tool_choice"] != "auto" {
		t.Errorf("got tool_choice %v, want auto", captured.body["tool_choice"])
	}
	if captured.body["max_tokens"] != float64(128) {
		t.Errorf("got max_tokens %v, want 128", captured.body["max_tokens"])
	}

	msgs, _ := captured.body["messages"].([]any)
	if len(msgs) != 4 {
		t.Fatalf("sent %d messages, want 4", len(msgs))
	}
	assistant := msgs[2].(map[string]any)
	calls, _ := assistant["tool_calls"].([]any)
	if len(calls) != 1 {
		t.Fatalf("assistant message carries %d tool calls, want 1", len(calls))
	}
	fn := calls[0].(map[string]any)["function"].(map[string]any)
	if fn["name"] != "get_weather" {
		t.Errorf("got function name %v", fn["name"])
	}
	tool := msgs[3].(map[string]any)
	if tool["tool_call_id"] != "call_1" || tool["role"] != "tool" {
		t.Errorf("got tool message %v", tool)
	}

	tools, _ := captured.body["tools"].([]any)
	if len(tools) != 1 || tools[0].(map[string]any)["type"] != "function" {
		t.Errorf("got tools %v", captured.body["tools"])
	}
}

func TestOpenAI_Chat_ToolCalls(t *testing.T) {
	srv := newOpenAIServer(t, http.StatusOK, `{
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": null, "tool_calls": [
			{"id": "call_a", "type": "function", "function": {"name": "web_search", "arguments": "{\"query\":\"go\"}"}},
			{"id": "call_b", "type": "function", "function": {"name": "get_datetime", "arguments": "{}"}}
		]}, "finish_reason": "tool_calls"}]
	}`, nil)

	o, _ := providers.NewOpenAI(&agent.Config{BaseURL: srv.URL}, srv.Client())

	resp, err := o.Chat(context.Background(), transcript[:2], nil)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Kind != response.KindToolCallBatch || len(resp.ToolCalls) != 2 {
		t.Fatalf("got %+v", resp)
	}
	if resp.ToolCalls[0].ID != "call_a" || resp.ToolCalls[1].Name != "get_datetime" {
		t.Errorf("tool calls out of order: %+v", resp.ToolCalls)
	}
}

func TestOpenAI_Chat_NoToolsOmitsToolChoice(t *testing.T) {
	var captured capturedRequest
	srv := newOpenAIServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"4"}}]}`, &captured)

	o, _ := providers.NewOpenAI(&agent.Config{BaseURL: srv.URL}, srv.Client())
	if _, err := o.Chat(context.Background(), transcript[:2], nil); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if _, ok := captured.body["tool_choice"]; ok {
		t.Error("tool_choice sent without tools")
	}
	if _, ok := captured.body["tools"]; ok {
		t.Error("tools sent when empty")
	}
	if captured.auth != "" {
		t.Errorf("authorization sent without key: %q", captured.auth)
	}
}

func TestOpenAI_Chat_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reply   string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"overloaded"}`, "status 500"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, "status 401"},
		{"malformed body", http.StatusOK, `not json`, "failed to parse"},
		{"no choices", http.StatusOK, `{"choices":[]}`, response.ErrEmptyChoices.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newOpenAIServer(t, tt.status, tt.reply, nil)
			o, _ := providers.NewOpenAI(&agent.Config{BaseURL: srv.URL}, srv.Client())

			_, err := o.Chat(context.Background(), transcript[:2], nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewOpenAI_APIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := providers.NewOpenAI(&agent.Config{}, nil); !errors.Is(err, providers.ErrMissingAPIKey) {
		t.Errorf("got %v, want ErrMissingAPIKey", err)
	}

	if _, err := providers.NewOpenAI(&agent.Config{BaseURL: "http://localhost:11434/v1"}, nil); err != nil {
		t.Errorf("local endpoint without key failed: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-env")
	o, err := providers.NewOpenAI(&agent.Config{Model: "gpt-4o"}, nil)
	if err != nil {
		t.Fatalf("env key not used: %v", err)
	}
	if o.Model() != "gpt-4o" {
		t.Errorf("got model %q, want gpt-4o", o.Model())
	}
}
