// Файл: internal/integrations/twilio/client.go
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client - обертка над Twilio Messages API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	logger     *zap.Logger
}

func New(baseURL, accountSID, authToken, fromNumber string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		logger:     logger.Named("twilio"),
	}
}

type Message struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	To     string `json:"to"`
}

// SendSMS отправляет SMS на номер в формате E.164 и возвращает SID сообщения.
func (c *Client) SendSMS(ctx context.Context, toNumber, body string) (*Message, error) {
	form := url.Values{}
	form.Set("To", toNumber)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса к Twilio: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка отправки SMS через Twilio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return nil, fmt.Errorf("Twilio вернул ошибку: %s", apiErr.Message)
		}
		return nil, fmt.Errorf("Twilio вернул статус: %s", resp.Status)
	}

	var msg Message
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа Twilio: %w", err)
	}

	c.logger.Debug("SMS отправлено", zap.String("to", toNumber), zap.String("sid", msg.SID))
	return &msg, nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к Twilio: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Twilio недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Twilio вернул статус: %s", resp.Status)
	}
	return nil
}
