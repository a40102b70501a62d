// Файл: internal/integrations/paypal/client.go
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Client - обертка над PayPal Orders API v2.
// Access-токен кэшируется до истечения, как в любом OAuth client-credentials флоу.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	logger       *zap.Logger

	token       string
	tokenExpiry time.Time
	tokenMutex  sync.RWMutex
}

func New(baseURL, clientID, clientSecret string, logger *zap.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 20 * time.Second},
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger.Named("paypal"),
	}
}

type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links"`
}

type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

// ApproveURL возвращает ссылку, по которой покупатель подтверждает оплату.
func (o *Order) ApproveURL() string {
	for _, l := range o.Links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type purchaseUnit struct {
	ReferenceID string      `json:"reference_id,omitempty"`
	Amount      orderAmount `json:"amount"`
}

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

func (c *Client) CreateOrder(ctx context.Context, value, currency, referenceID string) (*Order, error) {
	reqBody := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: referenceID,
			Amount:      orderAmount{CurrencyCode: strings.ToUpper(currency), Value: value},
		}},
	}

	var order Order
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", reqBody, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, "/v2/checkout/orders/"+id, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// RefundCapture возвращает средства по захваченному платежу.
// value="" означает полный возврат.
func (c *Client) RefundCapture(ctx context.Context, captureID, value, currency string) (string, error) {
	var reqBody interface{}
	if value != "" {
		reqBody = map[string]interface{}{
			"amount": orderAmount{CurrencyCode: strings.ToUpper(currency), Value: value},
		}
	}

	var refund refundResponse
	if err := c.do(ctx, http.MethodPost, "/v2/payments/captures/"+captureID+"/refund", reqBody, &refund); err != nil {
		return "", err
	}
	return refund.Status, nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	_, err := c.getToken(ctx)
	return err
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) getToken(ctx context.Context) (string, error) {
	c.tokenMutex.RLock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		token := c.token
		c.tokenMutex.RUnlock()
		return token, nil
	}
	c.tokenMutex.RUnlock()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса токена PayPal: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("не удалось получить токен PayPal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("PayPal OAuth вернул статус: %s", resp.Status)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("ошибка парсинга токена PayPal: %w", err)
	}

	c.tokenMutex.Lock()
	c.token = tr.AccessToken
	// Обновляем чуть раньше реального истечения.
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn-60) * time.Second)
	c.tokenMutex.Unlock()

	return tr.AccessToken, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса к PayPal: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к PayPal: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса к PayPal '%s': %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("PayPal API '%s' вернул статус: %s", endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа PayPal '%s': %w", endpoint, err)
	}

	c.logger.Debug("Запрос к PayPal выполнен", zap.String("endpoint", endpoint))
	return nil
}
