// Package describe obtains short file descriptions from an OpenAI-compatible chat
// completions endpoint.
package describe

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
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the chat model asked for descriptions.
	DefaultModel = "gpt-4"
	// DefaultMaxTokens keeps descriptions short.
	DefaultMaxTokens = 150
	// DefaultTemperature keeps descriptions focused.
	DefaultTemperature = 0.3
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	completionsPath   = "/chat/completions"
	maxErrorBodyBytes = 512

	systemPrompt = "You are ChatGPT, a large language model trained by OpenAI."
	mainPrompt   = "Provide a concise description of the following source file, focusing on the filename, its path, " +
		"its purpose, and key variables with their purposes. Do not include unnecessary explanations of open-source platforms or general concepts."
)

// ErrMissingAPIKey is returned by NewClient without an API key.
var ErrMissingAPIKey = errors.New("an API key is required for descriptions")

// Describer produces a short description of file content. hint is an optional
// partial prompt placed before the standard instructions.
type Describer interface {
	Describe(ctx context.Context, content string, hint string) (Description, error)
}

// Config configures a Client. Zero values select the defaults.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature *float64
	Timeout     time.Duration
	Retry       *RetryConfig
	HTTPClient  *http.Client
}

// Client implements Describer against the chat completions API.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	retry       RetryConfig
	http        *http.Client
}

// NewClient creates a chat completions client.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client := &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxTokens,
		temperature: DefaultTemperature,
		retry:       DefaultRetryConfig(),
		http:        cfg.HTTPClient,
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	if client.model == "" {
		client.model = DefaultModel
	}
	if client.maxTokens <= 0 {
		client.maxTokens = DefaultMaxTokens
	}
	if cfg.Temperature != nil {
		client.temperature = *cfg.Temperature
	}
	if cfg.Retry != nil {
		client.retry = *cfg.Retry
	}
	if client.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client.http = &http.Client{Timeout: timeout}
	}
	return client, nil
}

// Model returns the configured chat model.
func (client *Client) Model() string {
	return client.model
}

// Describe sends content to the API and returns the trimmed first choice.
func (client *Client) Describe(ctx context.Context, content string, hint string) (Description, error) {
	body, marshalError := json.Marshal(client.buildRequest(content, hint))
	if marshalError != nil {
		return Description{}, &APIError{Kind: ErrorKindMalformed, Message: "marshal request", Err: marshalError}
	}

	var parsed chatResponse
	retryError := withRetry(ctx, client.retry, func() (time.Duration, error) {
		return client.send(ctx, body, &parsed)
	})
	if retryError != nil {
		return Description{}, retryError
	}

	if len(parsed.Choices) == 0 {
		return Description{}, &APIError{Kind: ErrorKindMalformed, Message: "no choices in API response"}
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return Description{}, &APIError{Kind: ErrorKindMalformed, Message: "empty description in API response"}
	}
	return Description{Text: text, Usage: parsed.Usage}, nil
}

func (client *Client) buildRequest(content string, hint string) chatRequest {
	prompt := mainPrompt
	if trimmedHint := strings.TrimSpace(hint); trimmedHint != "" {
		prompt = trimmedHint + "\n" + prompt
	}
	return chatRequest{
		Model: client.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt + "\n\n```\n" + content + "\n```"},
		},
		MaxTokens:   client.maxTokens,
		Temperature: client.temperature,
	}
}

// send performs one request. It returns the Retry-After hint of throttled responses.
func (client *Client) send(ctx context.Context, body []byte, result *chatResponse) (time.Duration, error) {
	request, requestError := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+completionsPath, bytes.NewReader(body))
	if requestError != nil {
		return 0, &APIError{Kind: ErrorKindMalformed, Message: "create request", Err: requestError}
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+client.apiKey)

	response, responseError := client.http.Do(request)
	if responseError != nil {
		return 0, &APIError{Kind: ErrorKindNetwork, Err: responseError}
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return 0, &APIError{Kind: ErrorKindNetwork, StatusCode: response.StatusCode, Message: "read response", Err: readError}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return parseRetryAfter(response), &APIError{
			Kind:       kindForStatus(response.StatusCode),
			StatusCode: response.StatusCode,
			Message:    truncate(strings.TrimSpace(string(responseBody)), maxErrorBodyBytes),
		}
	}

	if unmarshalError := json.Unmarshal(responseBody, result); unmarshalError != nil {
		return 0, &APIError{Kind: ErrorKindMalformed, StatusCode: response.StatusCode, Message: "unmarshal response", Err: unmarshalError}
	}
	return 0, nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return fmt.Sprintf("%s... (%d bytes)", value[:limit], len(value))
}
