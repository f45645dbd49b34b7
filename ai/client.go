package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"
	defaultTimeout = 30 * time.Second
	// 60 requests per minute with a small burst.
	defaultRateLimit = 1.0
	defaultBurst     = 5
)

// ChatMessage is a role-tagged message sent to the completion API.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest describes one chat-completion call.
type CompletionRequest struct {
	Messages    []ChatMessage
	JSON        bool // ask for a JSON object response
	Temperature float64
	MaxTokens   int
}

// Completer produces assistant text for a list of messages.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ClientConfig configures an OpenAIClient.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// RatePerSecond bounds outgoing calls; 0 uses the default.
	RatePerSecond float64
}

// OpenAIClient talks to an OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewOpenAIClient builds a client. The API key is attached as a bearer token by
// an oauth2 static token source.
func NewOpenAIClient(cfg ClientConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = defaultRateLimit
	}

	hc := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.APIKey,
		TokenType:   "Bearer",
	}))
	hc.Timeout = timeout

	return &OpenAIClient{
		model:      model,
		baseURL:    baseURL,
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Limit(rps), defaultBurst),
	}, nil
}

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []ChatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat *openAIRespFormat `json:"response_format,omitempty"`
}

type openAIRespFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

type openAIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the messages and returns the first choice's content.
func (o *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body := openAIRequest{
		Model:       o.model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		body.ResponseFormat = &openAIRespFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr openAIError
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(raw))
	}

	var out openAIResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", errors.New("empty response from API")
	}
	return out.Choices[0].Message.Content, nil
}

var _ Completer = (*OpenAIClient)(nil)
