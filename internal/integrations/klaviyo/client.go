// Файл: internal/integrations/klaviyo/client.go
package klaviyo

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

const apiRevision = "2024-02-15"

// Client - обертка над Klaviyo profiles API.
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
		logger:     logger.Named("klaviyo"),
	}
}

type ProfileAttributes struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type Profile struct {
	ID         string            `json:"id"`
	Attributes ProfileAttributes `json:"attributes"`
}

type profileBody struct {
	Data profileData `json:"data"`
}

type profileData struct {
	Type       string            `json:"type"`
	Attributes ProfileAttributes `json:"attributes"`
}

type profileEnvelope struct {
	Data Profile `json:"data"`
}

// CreateProfile создает профиль. Klaviyo возвращает 409 если профиль
// с таким email уже существует.
func (c *Client) CreateProfile(ctx context.Context, attrs ProfileAttributes) (*Profile, error) {
	reqBody := profileBody{Data: profileData{Type: "profile", Attributes: attrs}}

	var env profileEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/profiles/", reqBody, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

type profileListEnvelope struct {
	Data []Profile `json:"data"`
}

// FindByEmail ищет профиль фильтром equals по email.
func (c *Client) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	filterQuery := url.QueryEscape(fmt.Sprintf(`equals(email,"%s")`, email))

	var env profileListEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/profiles/?filter="+filterQuery, nil, &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, nil
	}
	return &env.Data[0], nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/profiles/?page[size]=1", nil, &struct{}{})
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса к Klaviyo: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к Klaviyo: %w", err)
	}
	req.Header.Set("Authorization", "Klaviyo-API-Key "+c.apiKey)
	req.Header.Set("revision", apiRevision)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса к Klaviyo '%s': %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Klaviyo API '%s' вернул статус: %s", endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа Klaviyo '%s': %w", endpoint, err)
	}
	return nil
}
