package letter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// sharedHTTPClient is used by all drafting providers; a 2-minute timeout
// covers slow model responses without pinning a cycle forever.
var sharedHTTPClient = &http.Client{
	Timeout: 2 * time.Minute,
}

const defaultMaxTokens = 1500

// CompletionRequest holds the parameters for one drafting call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// CompletionResponse holds the drafted text and the model that produced it.
type CompletionResponse struct {
	Content string
	Model   string
}

// Provider is the interface for letter-drafting model backends.
type Provider interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// NewProvider parses a "provider:model" string and returns the matching
// Provider. The API key is read from the environment at construction time
// and validated immediately.
// Example: "anthropic:claude-sonnet-4-5".
func NewProvider(providerModel string) (Provider, error) {
	parts := strings.SplitN(providerModel, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid letter provider %q: expected provider:model", providerModel)
	}
	switch parts[0] {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		return &anthropicProvider{model: parts[1], apiKey: apiKey}, nil
	default:
		return nil, fmt.Errorf("unknown letter provider %q: supported provider is anthropic", parts[0])
	}
}

// anthropicAPIURL is a var to allow test overrides via httptest.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicAPIURL returns the current Anthropic API endpoint URL.
func AnthropicAPIURL() string { return anthropicAPIURL }

// SetAnthropicAPIURL overrides the Anthropic API endpoint URL.
// Intended for use in tests only.
func SetAnthropicAPIURL(u string) { anthropicAPIURL = u }

const anthropicVersion = "2023-06-01"

type anthropicProvider struct {
	model  string
	apiKey string // unexported; never serialized by encoding/json
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *anthropicProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body := anthropicRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    req.SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.UserPrompt},
		},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := sharedHTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	const maxBodyBytes = 4 * 1024 * 1024
	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var ar anthropicResponse
	if err := json.Unmarshal(respBytes, &ar); err != nil {
		return nil, fmt.Errorf("parsing response JSON (HTTP %d, body: %s): %w",
			resp.StatusCode, truncate(string(respBytes), 200), err)
	}

	if resp.StatusCode != http.StatusOK {
		if ar.Error != nil {
			return nil, fmt.Errorf("anthropic: %s: %s", ar.Error.Type, ar.Error.Message)
		}
		return nil, fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, truncate(string(respBytes), 200))
	}

	var content string
	for _, block := range ar.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	if content == "" {
		return nil, fmt.Errorf("anthropic: no text content in response (got %d content blocks)", len(ar.Content))
	}

	return &CompletionResponse{
		Content: content,
		Model:   fmt.Sprintf("anthropic:%s", ar.Model),
	}, nil
}

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
