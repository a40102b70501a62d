// Файл: internal/integrations/gohighlevel/client.go
package gohighlevel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client - обертка над GoHighLevel v1 contacts API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	locationID string
	logger     *zap.Logger
}

func New(baseURL, apiKey, locationID string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		locationID: locationID,
		logger:     logger.Named("gohighlevel"),
	}
}

type Contact struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type contactEnvelope struct {
	Contact Contact `json:"contact"`
}

type upsertRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"firstName,omitempty"`
	LastName   string `json:"lastName,omitempty"`
	Phone      string `json:"phone,omitempty"`
	LocationID string `json:"locationId"`
}

// UpsertContact создает или обновляет контакт по email.
func (c *Client) UpsertContact(ctx context.Context, contact Contact) (*Contact, error) {
	reqBody := upsertRequest{
		Email:      contact.Email,
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		Phone:      contact.Phone,
		LocationID: c.locationID,
	}

	var env contactEnvelope
	if err := c.do(ctx, http.MethodPost, "/v1/contacts/", reqBody, &env); err != nil {
		return nil, err
	}
	return &env.Contact, nil
}

type lookupResponse struct {
	Contacts []Contact `json:"contacts"`
}

// LookupByEmail ищет контакт по email через lookup endpoint.
func (c *Client) LookupByEmail(ctx context.Context, email string) (*Contact, error) {
	var res lookupResponse
	endpoint := "/v1/contacts/lookup?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, err
	}
	if len(res.Contacts) == 0 {
		return nil, nil
	}
	return &res.Contacts[0], nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/contacts/?limit=1", nil, &struct{}{})
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса к GoHighLevel: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к GoHighLevel: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса к GoHighLevel '%s': %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("GoHighLevel API '%s' вернул статус: %s", endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа GoHighLevel '%s': %w", endpoint, err)
	}
	return nil
}
