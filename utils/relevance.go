package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Relevance verdicts.
const (
	RelevanceRelevant = "relevant"
	RelevanceOffTopic = "off_topic"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const relevancePrompt = "You are a classifier for a tutoring platform. " +
	"Given a help request's subject and description, answer with exactly one word: " +
	"RELEVANT if it is a genuine academic help request, OFF_TOPIC otherwise."

// CheckRelevance classifies a task description through the chat-completion
// API. Advisory only: it runs after the task is created and its failure or
// unavailability never blocks creation. Callers log errors and move on.
func CheckRelevance(subject, description string) (string, error) {
	apiKey := os.Getenv("RELEVANCE_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("RELEVANCE_API_KEY not set")
	}
	baseURL := os.Getenv("RELEVANCE_API_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := os.Getenv("RELEVANCE_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: relevancePrompt},
			{Role: "user", Content: fmt.Sprintf("Subject: %s\n\n%s", subject, description)},
		},
		Temperature: 0,
		MaxTokens:   5,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 20 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("relevance API returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("relevance API returned no choices")
	}
	verdict := strings.ToUpper(strings.TrimSpace(parsed.Choices[0].Message.Content))
	if strings.HasPrefix(verdict, "OFF") {
		return RelevanceOffTopic, nil
	}
	return RelevanceRelevant, nil
}
