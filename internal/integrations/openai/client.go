// Файл: internal/integrations/openai/client.go
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client - обертка над OpenAI chat completions API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *zap.Logger
}

func New(baseURL, apiKey, model string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		logger:     logger.Named("openai"),
	}
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ChatCompletion отправляет историю диалога и возвращает ответ модели
// вместе с количеством потраченных токенов.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, maxTokens int) (string, int, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", 0, fmt.Errorf("ошибка сериализации запроса к OpenAI: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("ошибка создания запроса к OpenAI: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("ошибка выполнения запроса к OpenAI: %w", err)
	}
	defer resp.Body.Close()

	var chatRes chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatRes); err != nil {
		return "", 0, fmt.Errorf("ошибка парсинга ответа OpenAI: %w", err)
	}

	if chatRes.Error != nil {
		return "", 0, fmt.Errorf("OpenAI вернул ошибку: %s", chatRes.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return "", 0, fmt.Errorf("OpenAI вернул статус: %s", resp.Status)
	}
	if len(chatRes.Choices) == 0 {
		return "", 0, fmt.Errorf("OpenAI вернул пустой ответ")
	}

	c.logger.Debug("Получен ответ OpenAI", zap.Int("tokens", chatRes.Usage.TotalTokens))
	return chatRes.Choices[0].Message.Content, chatRes.Usage.TotalTokens, nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к OpenAI: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("OpenAI недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("OpenAI вернул статус: %s", resp.Status)
	}
	return nil
}
