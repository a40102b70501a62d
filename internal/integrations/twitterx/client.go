// Файл: internal/integrations/twitterx/client.go
package twitterx

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

// Client - обертка над Twitter (X) v2 tweets API с bearer токеном
// пользовательского контекста (OAuth 2.0 user token).
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *zap.Logger
}

func New(baseURL, accessToken string, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 20 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		logger:      logger.Named("twitter"),
	}
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// PostTweet публикует твит и возвращает его ID.
func (c *Client) PostTweet(ctx context.Context, text string) (string, error) {
	data, err := json.Marshal(tweetRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса к Twitter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса к Twitter: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка публикации твита: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("Twitter API вернул статус: %s", resp.Status)
	}

	var tweetRes tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&tweetRes); err != nil {
		return "", fmt.Errorf("ошибка парсинга ответа Twitter: %w", err)
	}

	c.logger.Debug("Твит опубликован", zap.String("tweet_id", tweetRes.Data.ID))
	return tweetRes.Data.ID, nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/2/users/me", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к Twitter: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Twitter недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Twitter API вернул статус: %s", resp.Status)
	}
	return nil
}
