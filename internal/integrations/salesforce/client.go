// Файл: internal/integrations/salesforce/client.go
package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Client - обертка над Salesforce REST API с OAuth токеном (password grant).
type Client struct {
	httpClient   *http.Client
	loginURL     string
	clientID     string
	clientSecret string
	username     string
	password     string
	logger       *zap.Logger

	mu          sync.RWMutex
	accessToken string
	instanceURL string
	tokenExpiry time.Time
}

func New(loginURL, clientID, clientSecret, username, password string, logger *zap.Logger) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 20 * time.Second},
		loginURL:     strings.TrimRight(loginURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		username:     username,
		password:     password,
		logger:       logger.Named("salesforce"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
	TokenType   string `json:"token_type"`
}

func (c *Client) getToken(ctx context.Context) (string, string, error) {
	c.mu.RLock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		token, instance := c.accessToken, c.instanceURL
		c.mu.RUnlock()
		return token, instance, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, c.instanceURL, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("username", c.username)
	form.Set("password", c.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL+"/services/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", fmt.Errorf("ошибка создания запроса токена Salesforce: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("ошибка получения токена Salesforce: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("Salesforce OAuth вернул статус: %s", resp.Status)
	}

	var tokenRes tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenRes); err != nil {
		return "", "", fmt.Errorf("ошибка парсинга токена Salesforce: %w", err)
	}

	c.accessToken = tokenRes.AccessToken
	c.instanceURL = strings.TrimRight(tokenRes.InstanceURL, "/")
	// Salesforce не возвращает expires_in для password grant, токен живет по
	// настройке сессии организации. Обновляем раз в час.
	c.tokenExpiry = time.Now().Add(1 * time.Hour)

	c.logger.Debug("Получен новый токен Salesforce")
	return c.accessToken, c.instanceURL, nil
}

type Contact struct {
	ID        string `json:"Id"`
	Email     string `json:"Email"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Phone     string `json:"Phone"`
}

type createResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// CreateContact создает контакт. LastName обязателен в Salesforce,
// при отсутствии подставляется email.
func (c *Client) CreateContact(ctx context.Context, contact Contact) (string, error) {
	if contact.LastName == "" {
		contact.LastName = contact.Email
	}

	payload := map[string]string{
		"Email":     contact.Email,
		"FirstName": contact.FirstName,
		"LastName":  contact.LastName,
		"Phone":     contact.Phone,
	}

	var res createResponse
	if err := c.do(ctx, http.MethodPost, "/services/data/v58.0/sobjects/Contact", payload, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

type queryResponse struct {
	TotalSize int       `json:"totalSize"`
	Records   []Contact `json:"records"`
}

// QueryByEmail выполняет SOQL запрос на поиск контакта по email.
func (c *Client) QueryByEmail(ctx context.Context, email string) (*Contact, error) {
	soql := fmt.Sprintf("SELECT Id, Email, FirstName, LastName, Phone FROM Contact WHERE Email = '%s' LIMIT 1",
		strings.ReplaceAll(email, "'", "\\'"))

	var res queryResponse
	endpoint := "/services/data/v58.0/query?q=" + url.QueryEscape(soql)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, err
	}
	if res.TotalSize == 0 {
		return nil, nil
	}
	return &res.Records[0], nil
}

func (c *Client) Healthcheck(ctx context.Context) error {
	_, _, err := c.getToken(ctx)
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	token, instance, err := c.getToken(ctx)
	if err != nil {
		return err
	}

	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса к Salesforce: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, instance+endpoint, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к Salesforce: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса к Salesforce '%s': %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Salesforce API '%s' вернул статус: %s", endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка парсинга ответа Salesforce '%s': %w", endpoint, err)
	}
	return nil
}
