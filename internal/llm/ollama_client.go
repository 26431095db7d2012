package llm

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

	"hirewise-backend/internal/config"
	"hirewise-backend/utilities"
)

type OllamaClient struct {
	ollamaURL string
	model     string
	client    *http.Client
}

func NewOllamaClient(cfg config.AIConfig) *OllamaClient {
	return &OllamaClient{
		ollamaURL: cfg.URL,
		model:     cfg.Model,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Generate sends the prompt and returns the full model output. One retry on
// transport failure; anything beyond that is the caller's fallback problem.
func (o *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := o.callOllama(ctx, prompt)
	if err == nil {
		return response, nil
	}
	if ctx.Err() != nil {
		return "", err
	}

	utilities.Warn("llm call failed, retrying once: %v", err)
	return o.callOllama(ctx, prompt)
}

func (o *OllamaClient) callOllama(ctx context.Context, prompt string) (string, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.ollamaURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	fullBody := string(bodyBytes)

	// The response may be streamed as multiple JSON objects separated by
	// newlines; aggregate the chunks into one final string.
	if strings.Contains(fullBody, "\n") {
		return AggregateStreamedResponse(fullBody), nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return "", err
	}
	if responseText, ok := result["response"].(string); ok {
		return responseText, nil
	}

	return "", errors.New("invalid response from model endpoint")
}

type LLMResponseChunk struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

// AggregateStreamedResponse takes the full raw response body (a string with
// multiple JSON objects separated by newlines) and concatenates the
// "response" fields into one final string.
func AggregateStreamedResponse(body string) string {
	lines := strings.Split(body, "\n")
	var builder strings.Builder
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			var chunk LLMResponseChunk
			if err := json.Unmarshal([]byte(trimmed), &chunk); err != nil {
				utilities.Warn("error unmarshaling stream chunk: %v", err)
				continue
			}
			builder.WriteString(chunk.Response)
		}
	}
	return builder.String()
}
