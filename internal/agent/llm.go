// internal/agent/llm.go
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"flight-concierge/internal/common/errors"
	"flight-concierge/internal/common/logger"
	"flight-concierge/internal/common/metrics"
)

// ChatMessage is one entry in an OpenAI-style conversation.
type ChatMessage struct {
	Role       string     `json:"role"` // "system", "user", "assistant", "tool"
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a single function call requested by the model.
type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"` // JSON string
	} `json:"function"`
}

// ChatResponse is the decoded assistant turn.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// LLMClient abstracts the chat-completion endpoint so the loop can be tested
// against fakes.
type LLMClient interface {
	ChatCompletion(ctx context.Context, messages []ChatMessage, tools []map[string]interface{}) (*ChatResponse, error)
}

// LLMConfig holds the model endpoint settings.
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// HTTPLLMClient calls an OpenAI-compatible chat-completions endpoint, such as
// a Hugging Face inference endpoint, with exponential-backoff retries.
type HTTPLLMClient struct {
	config *LLMConfig
	client *http.Client
	logger logger.Logger
}

func NewHTTPLLMClient(config *LLMConfig, log logger.Logger) *HTTPLLMClient {
	return &HTTPLLMClient{
		config: config,
		// No client timeout; the per-request context carries the deadline.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"client": "llm"}),
	}
}

func (c *HTTPLLMClient) ChatCompletion(ctx context.Context, messages []ChatMessage, tools []map[string]interface{}) (*ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestBody := map[string]interface{}{
		"model":       c.config.Model,
		"messages":    messages,
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
	}
	if len(tools) > 0 {
		requestBody["tools"] = tools
	}

	body, err := json.Marshal(requestBody)
	if err != nil {
		return nil, errors.NewLLMRequestError(err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.LLMRequests.WithLabelValues("timeout").Inc()
				return nil, errors.NewLLMTimeoutError()
			}
		}

		resp, err := c.doRequest(ctx, body)
		if err == nil {
			metrics.LLMRequests.WithLabelValues("success").Inc()
			return resp, nil
		}
		lastErr = err

		if stdErr, ok := err.(*errors.StandardError); ok && !stdErr.Retryable {
			break
		}
		if ctx.Err() != nil {
			metrics.LLMRequests.WithLabelValues("timeout").Inc()
			return nil, errors.NewLLMTimeoutError()
		}

		c.logger.Warn("model request failed, retrying", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	metrics.LLMRequests.WithLabelValues("failure").Inc()
	return nil, errors.Normalize(lastErr)
}

func (c *HTTPLLMClient) doRequest(ctx context.Context, body []byte) (*ChatResponse, error) {
	endpoint := strings.TrimSuffix(c.config.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewLLMRequestError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || strings.Contains(err.Error(), "timeout") {
			return nil, errors.NewLLMTimeoutError()
		}
		return nil, errors.NewLLMRequestError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		apiErr := fmt.Errorf("model endpoint returned %d: %s", resp.StatusCode, string(respBody))
		// 4xx other than 429 will not succeed on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			stdErr := errors.NewLLMRequestError(apiErr)
			stdErr.Retryable = false
			return nil, stdErr
		}
		return nil, errors.NewLLMRequestError(apiErr)
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content   string     `json:"content"`
				ToolCalls []ToolCall `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, errors.NewLLMRequestError(err)
	}

	if len(apiResponse.Choices) == 0 {
		return nil, errors.NewLLMEmptyResponseError()
	}

	msg := apiResponse.Choices[0].Message
	return &ChatResponse{
		Content:   msg.Content,
		ToolCalls: msg.ToolCalls,
	}, nil
}
