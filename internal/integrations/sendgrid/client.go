// Файл: internal/integrations/sendgrid/client.go
package sendgrid

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

// Client - обертка над SendGrid v3 mail API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	fromEmail  string
	fromName   string
	logger     *zap.Logger
}

func New(baseURL, apiKey, fromEmail, fromName string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		logger:     logger.Named("sendgrid"),
	}
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []address `json:"to"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

// SendEmail отправляет письмо одному получателю. Тело трактуется как HTML.
func (c *Client) SendEmail(ctx context.Context, toEmail, subject, htmlBody string) error {
	reqBody := mailRequest{
		Personalizations: []personalization{{To: []address{{Email: toEmail}}}},
		From:             address{Email: c.fromEmail, Name: c.fromName},
		Subject:          subject,
		Content:          []content{{Type: "text/html", Value: htmlBody}},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("ошибка сериализации запроса к SendGrid: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к SendGrid: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки письма через SendGrid: %w", err)
	}
	defer resp.Body.Close()

	// Успешная отправка возвращает 202 Accepted без тела.
	if resp.StatusCode >= 400 {
		return fmt.Errorf("SendGrid вернул статус: %s", resp.Status)
	}

	c.logger.Debug("Письмо отправлено", zap.String("to", toEmail))
	return nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v3/scopes", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к SendGrid: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SendGrid недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("SendGrid вернул статус: %s", resp.Status)
	}
	return nil
}
