// Файл: internal/integrations/bitpay/client.go
package bitpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client - обертка над BitPay invoice API.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	merchantToken string
	logger        *zap.Logger
}

func New(baseURL, apiKey, merchantToken string, logger *zap.Logger) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 20 * time.Second},
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		merchantToken: merchantToken,
		logger:        logger.Named("bitpay"),
	}
}

type Invoice struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

type invoiceRequest struct {
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	OrderID         string  `json:"orderId,omitempty"`
	NotificationURL string  `json:"notificationURL,omitempty"`
	RedirectURL     string  `json:"redirectURL,omitempty"`
	Token           string  `json:"token"`
	Buyer           *buyer  `json:"buyer,omitempty"`
}

type buyer struct {
	Email string `json:"email,omitempty"`
}

type invoiceEnvelope struct {
	Data Invoice `json:"data"`
}

func (c *Client) CreateInvoice(ctx context.Context, price float64, currency, orderID, notifyURL, redirectURL, buyerEmail string) (*Invoice, error) {
	reqBody := invoiceRequest{
		Price:           price,
		Currency:        currency,
		OrderID:         orderID,
		NotificationURL: notifyURL,
		RedirectURL:     redirectURL,
		Token:           c.merchantToken,
	}
	if buyerEmail != "" {
		reqBody.Buyer = &buyer{Email: buyerEmail}
	}

	var envelope invoiceEnvelope
	if err := c.do(ctx, http.MethodPost, "/invoices", reqBody, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

func (c *Client) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	var envelope invoiceEnvelope
	if err := c.do(ctx, http.MethodGet, "/invoices/"+id+"?token="+c.merchantToken, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	// /rates публичный и дешевый.
	return c.do(ctx, http.MethodGet, "/rates", nil, &struct{}{})
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса к BitPay: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к BitPay: %w", err)
	}
	req.Header.Set("X-Accept-Version", "2.0.0")
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса к BitPay '%s': %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("BitPay API '%s' вернул статус: %s", endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа BitPay '%s': %w", endpoint, err)
	}

	c.logger.Debug("Запрос к BitPay выполнен", zap.String("endpoint", endpoint))
	return nil
}
