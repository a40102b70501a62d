// Файл: internal/integrations/linkedin/client.go
package linkedin

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

// Client - обертка над LinkedIn ugcPosts API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	authorURN   string
	logger      *zap.Logger
}

func New(baseURL, accessToken, authorURN string, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 20 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		authorURN:   authorURN,
		logger:      logger.Named("linkedin"),
	}
}

type shareContent struct {
	ShareCommentary struct {
		Text string `json:"text"`
	} `json:"shareCommentary"`
	ShareMediaCategory string `json:"shareMediaCategory"`
}

type postRequest struct {
	Author          string `json:"author"`
	LifecycleState  string `json:"lifecycleState"`
	SpecificContent struct {
		ShareContent shareContent `json:"com.linkedin.ugc.ShareContent"`
	} `json:"specificContent"`
	Visibility struct {
		MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
	} `json:"visibility"`
}

type postResponse struct {
	ID string `json:"id"`
}

// PostShare публикует текстовый пост от имени настроенного автора.
func (c *Client) PostShare(ctx context.Context, text string) (string, error) {
	var reqBody postRequest
	reqBody.Author = c.authorURN
	reqBody.LifecycleState = "PUBLISHED"
	reqBody.SpecificContent.ShareContent.ShareCommentary.Text = text
	reqBody.SpecificContent.ShareContent.ShareMediaCategory = "NONE"
	reqBody.Visibility.MemberNetworkVisibility = "PUBLIC"

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса к LinkedIn: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/ugcPosts", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса к LinkedIn: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка публикации поста в LinkedIn: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("LinkedIn API вернул статус: %s", resp.Status)
	}

	var postRes postResponse
	if err := json.NewDecoder(resp.Body).Decode(&postRes); err != nil {
		return "", fmt.Errorf("ошибка парсинга ответа LinkedIn: %w", err)
	}

	c.logger.Debug("Пост опубликован в LinkedIn", zap.String("post_id", postRes.ID))
	return postRes.ID, nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/userinfo", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к LinkedIn: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("LinkedIn недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("LinkedIn API вернул статус: %s", resp.Status)
	}
	return nil
}
