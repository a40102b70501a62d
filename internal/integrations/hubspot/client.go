// Файл: internal/integrations/hubspot/client.go
package hubspot

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

// Client - обертка над HubSpot CRM v3 contacts API.
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
		logger:     logger.Named("hubspot"),
	}
}

type Contact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type contactRequest struct {
	Properties map[string]string `json:"properties"`
}

// CreateContact создает контакт с переданными свойствами (email, firstname, ...).
func (c *Client) CreateContact(ctx context.Context, properties map[string]string) (*Contact, error) {
	var contact Contact
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts", contactRequest{Properties: properties}, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Limit        int           `json:"limit"`
}

type filterGroup struct {
	Filters []filter `json:"filters"`
}

type filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchResponse struct {
	Total   int       `json:"total"`
	Results []Contact `json:"results"`
}

// SearchByEmail ищет контакт по точному совпадению email.
func (c *Client) SearchByEmail(ctx context.Context, email string) (*Contact, error) {
	reqBody := searchRequest{
		FilterGroups: []filterGroup{{
			Filters: []filter{{PropertyName: "email", Operator: "EQ", Value: email}},
		}},
		Limit: 1,
	}

	var res searchResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/search", reqBody, &res); err != nil {
		return nil, err
	}
	if res.Total == 0 {
		return nil, nil
	}
	return &res.Results[0], nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/crm/v3/objects/contacts?limit=1", nil, &struct{}{})
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса к HubSpot: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к HubSpot: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса к HubSpot '%s': %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HubSpot API '%s' вернул статус: %s", endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа HubSpot '%s': %w", endpoint, err)
	}

	c.logger.Debug("Запрос к HubSpot выполнен", zap.String("endpoint", endpoint))
	return nil
}
