// Файл: internal/integrations/stripe/client.go
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client - тонкая обертка над Stripe API (form-encoded запросы, как требует вендор).
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	logger     *zap.Logger
}

func New(baseURL, secretKey string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		logger:     logger.Named("stripe"),
	}
}

type PaymentIntent struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreatePaymentIntent создает платеж на amountCents в валюте currency.
func (c *Client) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("payment_method_types[]", "card")
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var intent PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	var intent PaymentIntent
	if err := c.do(ctx, http.MethodGet, "/payment_intents/"+id, nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// CreateRefund возвращает средства; amountCents=0 означает полный возврат.
func (c *Client) CreateRefund(ctx context.Context, paymentIntentID string, amountCents int64) (*Refund, error) {
	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	if amountCents > 0 {
		form.Set("amount", strconv.FormatInt(amountCents, 10))
	}

	var refund Refund
	if err := c.do(ctx, http.MethodPost, "/refunds", form, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/balance", nil, &struct{}{})
}

func (c *Client) do(ctx context.Context, method, endpoint string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к Stripe: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса к Stripe '%s': %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа Stripe: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("Stripe API '%s' вернул ошибку: %s", endpoint, apiErr.Error.Message)
		}
		return fmt.Errorf("Stripe API '%s' вернул статус: %s", endpoint, resp.Status)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа Stripe '%s': %w", endpoint, err)
	}

	c.logger.Debug("Запрос к Stripe выполнен", zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))
	return nil
}
