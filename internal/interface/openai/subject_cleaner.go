package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"timetable-sync-service/internal/domain/repository"
	"timetable-sync-service/pkg/logger"
)

const systemPrompt = "You are given the subject cell of a university timetable, " +
	"which may contain the course name mixed with lecturer names, group tags and " +
	"layout noise. Reply with only the cleaned course name, nothing else."

// SubjectCleanerClient implements the SubjectCleaner interface against the
// OpenAI chat completions API. It is strictly best effort: callers fall back
// to the raw text on any error, so this client never retries.
type SubjectCleanerClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  logger.Logger
}

// NewSubjectCleanerClient creates a new subject cleaner client
func NewSubjectCleanerClient(baseURL, apiKey, model string, logger logger.Logger) repository.SubjectCleaner {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &SubjectCleanerClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Clean asks the model for a cleaned-up course name
func (c *SubjectCleanerClient) Clean(ctx context.Context, text string) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0,
		MaxTokens:   128,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cleanup service returned status %d", resp.StatusCode)
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("cleanup service returned no choices")
	}

	cleaned := strings.TrimSpace(response.Choices[0].Message.Content)
	c.logger.Debug("Subject cleaned", "raw", text, "cleaned", cleaned)
	return cleaned, nil
}
