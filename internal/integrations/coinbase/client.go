// Файл: internal/integrations/coinbase/client.go
package coinbase

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

// Client - обертка над Coinbase Commerce API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

func New(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger.Named("coinbase"),
	}
}

type Charge struct {
	ID        string            `json:"id"`
	HostedURL string            `json:"hosted_url"`
	Addresses map[string]string `json:"addresses"`
	Timeline  []TimelineEntry   `json:"timeline"`
}

type TimelineEntry struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

type chargeRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	PricingType string            `json:"pricing_type"`
	LocalPrice  localPrice        `json:"local_price"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type localPrice struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type chargeEnvelope struct {
	Data Charge `json:"data"`
}

// CreateCharge создает крипто-платеж с фиксированной ценой.
func (c *Client) CreateCharge(ctx context.Context, name, description, amount, currency string, metadata map[string]string) (*Charge, error) {
	reqBody := chargeRequest{
		Name:        name,
		Description: description,
		PricingType: "fixed_price",
		LocalPrice:  localPrice{Amount: amount, Currency: currency},
		Metadata:    metadata,
	}

	var envelope chargeEnvelope
	if err := c.do(ctx, http.MethodPost, "/charges", reqBody, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

func (c *Client) GetCharge(ctx context.Context, id string) (*Charge, error) {
	var envelope chargeEnvelope
	if err := c.do(ctx, http.MethodGet, "/charges/"+id, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// LatestStatus возвращает последний статус из таймлайна чарджа.
func (ch *Charge) LatestStatus() string {
	if len(ch.Timeline) == 0 {
		return ""
	}
	return ch.Timeline[len(ch.Timeline)-1].Status
}

func (c *Client) Healthcheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/charges?limit=1", nil, &struct{}{})
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса к Coinbase: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к Coinbase: %w", err)
	}
	req.Header.Set("X-CC-Api-Key", c.apiKey)
	req.Header.Set("X-CC-Version", "2018-03-22")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса к Coinbase '%s': %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Coinbase API '%s' вернул статус: %s", endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа Coinbase '%s': %w", endpoint, err)
	}

	c.logger.Debug("Запрос к Coinbase выполнен", zap.String("endpoint", endpoint))
	return nil
}
