package prompts

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
)

const (
	anthropicVersion = "2023-06-01"
	maxTokens        = 1000

	instruction = "Generate a thoughtful journal prompt that helps capture meaningful memories and life experiences. " +
		"The prompt should encourage deep reflection and detailed responses."
)

// AnthropicClient implements Client using the Anthropic Messages API.
// API docs: https://docs.anthropic.com/en/api/messages
type AnthropicClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
}

// NewAnthropicClient creates a new Messages API client.
func NewAnthropicClient(apiURL, apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
	}
}

func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// Generate asks the model for one journal question.
func (c *AnthropicClient) Generate(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("api key not configured")
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: instruction}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var apiResponse messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, block := range apiResponse.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", errors.New("response contained no text")
}

// Messages API request and response types

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}
