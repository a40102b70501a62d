// Файл: internal/services/whitelabel.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/filestorage"
	"ai-assistant/pkg/types"
)

// События конфигурации, на которые могут подписываться вебхуки.
const (
	ConfigEventBranding     = "branding.updated"
	ConfigEventFeatures     = "features.updated"
	ConfigEventIntegrations = "integrations.updated"
	ConfigEventPlugins      = "plugins.updated"
	ConfigEventStatus       = "client.status_changed"
)

type WhitelabelServiceInterface interface {
	GetClients(ctx context.Context, filter types.Filter) ([]entities.WhitelabelClient, uint64, error)
	FindClient(ctx context.Context, id uint64) (*entities.WhitelabelClient, error)
	CreateClient(ctx context.Context, payload dto.CreateClientDTO) (*entities.WhitelabelClient, error)
	SetActive(ctx context.Context, id uint64, active bool, actorID *uint64) error
	DeleteClient(ctx context.Context, id uint64) error

	GetTheme(ctx context.Context, slug string) (*dto.ClientThemeDTO, error)
	UpdateBranding(ctx context.Context, id uint64, payload dto.UpdateBrandingDTO, actorID *uint64) (*entities.WhitelabelClient, error)
	UpdateFeatures(ctx context.Context, id uint64, payload dto.UpdateFeaturesDTO, actorID *uint64) (*entities.WhitelabelClient, error)
	UpdateIntegrations(ctx context.Context, id uint64, payload dto.UpdateIntegrationsDTO, actorID *uint64) (*entities.WhitelabelClient, error)
	UploadLogo(ctx context.Context, id uint64, file multipart.File, fileName string, actorID *uint64) (string, error)

	RegisterWebhook(ctx context.Context, clientID uint64, payload dto.RegisterWebhookDTO) (*entities.ConfigWebhook, error)
	GetWebhooks(ctx context.Context, clientID uint64) ([]entities.ConfigWebhook, error)
	DeleteWebhook(ctx context.Context, id uint64) error
	GetChanges(ctx context.Context, clientID uint64, limit uint64) ([]entities.ConfigChange, error)
}

type WhitelabelService struct {
	wlRepo      repositories.WhitelabelRepositoryInterface
	fileStorage filestorage.FileStorageInterface
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewWhitelabelService(
	wlRepo repositories.WhitelabelRepositoryInterface,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) WhitelabelServiceInterface {
	return &WhitelabelService{
		wlRepo:      wlRepo,
		fileStorage: fileStorage,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

func (s *WhitelabelService) GetClients(ctx context.Context, filter types.Filter) ([]entities.WhitelabelClient, uint64, error) {
	return s.wlRepo.GetClients(ctx, filter)
}

func (s *WhitelabelService) FindClient(ctx context.Context, id uint64) (*entities.WhitelabelClient, error) {
	return s.wlRepo.FindClient(ctx, id)
}

func (s *WhitelabelService) CreateClient(ctx context.Context, payload dto.CreateClientDTO) (*entities.WhitelabelClient, error) {
	existing, err := s.wlRepo.FindClientBySlug(ctx, payload.Slug)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewBadRequestError("slug '" + payload.Slug + "' уже занят")
	}

	branding, _ := json.Marshal(entities.Branding{CompanyName: payload.Name})
	defaultPlugins, _ := json.Marshal(map[string]bool{})

	client := entities.WhitelabelClient{
		Slug:         payload.Slug,
		Name:         payload.Name,
		Branding:     branding,
		Features:     json.RawMessage(`{}`),
		Integrations: json.RawMessage(`{}`),
		Plugins:      defaultPlugins,
		IsActive:     true,
	}

	newID, err := s.wlRepo.CreateClient(ctx, client)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Создан whitelabel-клиент",
		zap.Uint64("client_id", newID), zap.String("slug", payload.Slug))

	return s.wlRepo.FindClient(ctx, newID)
}

func (s *WhitelabelService) SetActive(ctx context.Context, id uint64, active bool, actorID *uint64) error {
	if err := s.wlRepo.SetActive(ctx, id, active); err != nil {
		return err
	}

	action := "deactivated"
	if active {
		action = "activated"
	}
	s.recordAndNotify(ctx, id, action, ConfigEventStatus, actorID,
		map[string]interface{}{"is_active": active})
	return nil
}

func (s *WhitelabelService) DeleteClient(ctx context.Context, id uint64) error {
	return s.wlRepo.DeleteClient(ctx, id)
}

func (s *WhitelabelService) GetTheme(ctx context.Context, slug string) (*dto.ClientThemeDTO, error) {
	client, err := s.wlRepo.FindClientBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, apperrors.NewNotFoundError("клиент отключен")
	}

	var branding entities.Branding
	if len(client.Branding) > 0 {
		if err := json.Unmarshal(client.Branding, &branding); err != nil {
			s.logger.Warn("битый branding JSON", zap.Uint64("client_id", client.ID), zap.Error(err))
		}
	}
	if branding.CompanyName == "" {
		branding.CompanyName = client.Name
	}

	return &dto.ClientThemeDTO{
		CompanyName:    branding.CompanyName,
		PrimaryColor:   branding.PrimaryColor,
		SecondaryColor: branding.SecondaryColor,
		LogoURL:        branding.LogoURL,
	}, nil
}

// UpdateBranding мержит непустые поля DTO в текущий branding JSON.
func (s *WhitelabelService) UpdateBranding(ctx context.Context, id uint64, payload dto.UpdateBrandingDTO, actorID *uint64) (*entities.WhitelabelClient, error) {
	client, err := s.wlRepo.FindClient(ctx, id)
	if err != nil {
		return nil, err
	}

	var branding entities.Branding
	if len(client.Branding) > 0 {
		_ = json.Unmarshal(client.Branding, &branding)
	}

	if payload.CompanyName != "" {
		branding.CompanyName = payload.CompanyName
	}
	if payload.PrimaryColor != "" {
		branding.PrimaryColor = payload.PrimaryColor
	}
	if payload.SecondaryColor != "" {
		branding.SecondaryColor = payload.SecondaryColor
	}
	if payload.WelcomeText != "" {
		branding.WelcomeText = payload.WelcomeText
	}
	if payload.SystemPrompt != "" {
		branding.SystemPrompt = payload.SystemPrompt
	}

	raw, err := json.Marshal(branding)
	if err != nil {
		return nil, err
	}
	if err := s.wlRepo.UpdateConfigColumn(ctx, id, "branding", raw); err != nil {
		return nil, err
	}

	s.recordAndNotify(ctx, id, "branding.updated", ConfigEventBranding, actorID, branding)
	return s.wlRepo.FindClient(ctx, id)
}

func (s *WhitelabelService) UpdateFeatures(ctx context.Context, id uint64, payload dto.UpdateFeaturesDTO, actorID *uint64) (*entities.WhitelabelClient, error) {
	raw, err := json.Marshal(payload.Features)
	if err != nil {
		return nil, err
	}
	if err := s.wlRepo.UpdateConfigColumn(ctx, id, "features", raw); err != nil {
		return nil, err
	}

	s.recordAndNotify(ctx, id, "features.updated", ConfigEventFeatures, actorID, payload.Features)
	return s.wlRepo.FindClient(ctx, id)
}

func (s *WhitelabelService) UpdateIntegrations(ctx context.Context, id uint64, payload dto.UpdateIntegrationsDTO, actorID *uint64) (*entities.WhitelabelClient, error) {
	raw, err := json.Marshal(payload.Integrations)
	if err != nil {
		return nil, err
	}
	if err := s.wlRepo.UpdateConfigColumn(ctx, id, "integrations", raw); err != nil {
		return nil, err
	}

	// В историю секреты интеграций не пишем, только список ключей.
	keys := make([]string, 0, len(payload.Integrations))
	for key := range payload.Integrations {
		keys = append(keys, key)
	}
	s.recordAndNotify(ctx, id, "integrations.updated", ConfigEventIntegrations, actorID,
		map[string]interface{}{"integrations": keys})
	return s.wlRepo.FindClient(ctx, id)
}

// UploadLogo сохраняет файл логотипа и прописывает его URL в branding.
func (s *WhitelabelService) UploadLogo(ctx context.Context, id uint64, file multipart.File, fileName string, actorID *uint64) (string, error) {
	client, err := s.wlRepo.FindClient(ctx, id)
	if err != nil {
		return "", err
	}

	path, err := s.fileStorage.Save(file, fileName, fmt.Sprintf("logos/%d", id))
	if err != nil {
		return "", fmt.Errorf("ошибка сохранения логотипа: %w", err)
	}

	var branding entities.Branding
	if len(client.Branding) > 0 {
		_ = json.Unmarshal(client.Branding, &branding)
	}
	oldLogo := branding.LogoURL
	branding.LogoURL = path

	raw, err := json.Marshal(branding)
	if err != nil {
		return "", err
	}
	if err := s.wlRepo.UpdateConfigColumn(ctx, id, "branding", raw); err != nil {
		return "", err
	}

	if oldLogo != "" {
		if err := s.fileStorage.Delete(oldLogo); err != nil {
			s.logger.Warn("не удалось удалить старый логотип",
				zap.String("path", oldLogo), zap.Error(err))
		}
	}

	s.recordAndNotify(ctx, id, "logo.updated", ConfigEventBranding, actorID,
		map[string]interface{}{"logo_url": path})
	return path, nil
}

func (s *WhitelabelService) RegisterWebhook(ctx context.Context, clientID uint64, payload dto.RegisterWebhookDTO) (*entities.ConfigWebhook, error) {
	if _, err := s.wlRepo.FindClient(ctx, clientID); err != nil {
		return nil, err
	}

	events, err := json.Marshal(payload.Events)
	if err != nil {
		return nil, err
	}

	webhook := entities.ConfigWebhook{
		ClientID: clientID,
		URL:      payload.URL,
		Events:   events,
	}
	newID, err := s.wlRepo.CreateWebhook(ctx, webhook)
	if err != nil {
		return nil, err
	}

	webhook.ID = newID
	return &webhook, nil
}

func (s *WhitelabelService) GetWebhooks(ctx context.Context, clientID uint64) ([]entities.ConfigWebhook, error) {
	return s.wlRepo.GetWebhooks(ctx, clientID)
}

func (s *WhitelabelService) DeleteWebhook(ctx context.Context, id uint64) error {
	return s.wlRepo.DeleteWebhook(ctx, id)
}

func (s *WhitelabelService) GetChanges(ctx context.Context, clientID uint64, limit uint64) ([]entities.ConfigChange, error) {
	return s.wlRepo.GetChanges(ctx, clientID, limit)
}

// recordAndNotify пишет запись в историю изменений и асинхронно
// дергает подписанные вебхуки. Ошибки не прерывают основную операцию.
func (s *WhitelabelService) recordAndNotify(ctx context.Context, clientID uint64, action, event string, actorID *uint64, payload interface{}) {
	change := entities.ConfigChange{
		ClientID: clientID,
		Action:   action,
		ActorID:  actorID,
	}
	if err := s.wlRepo.RecordChange(ctx, change); err != nil {
		s.logger.Warn("не удалось записать изменение конфигурации",
			zap.Uint64("client_id", clientID), zap.Error(err))
	}

	webhooks, err := s.wlRepo.GetWebhooks(ctx, clientID)
	if err != nil {
		s.logger.Warn("не удалось получить вебхуки клиента",
			zap.Uint64("client_id", clientID), zap.Error(err))
		return
	}

	for _, webhook := range webhooks {
		if !webhookSubscribed(webhook, event) {
			continue
		}
		go s.dispatchWebhook(webhook, event, payload)
	}
}

func webhookSubscribed(webhook entities.ConfigWebhook, event string) bool {
	var events []string
	if err := json.Unmarshal(webhook.Events, &events); err != nil {
		return false
	}
	for _, e := range events {
		if e == event || e == "*" {
			return true
		}
	}
	return false
}

func (s *WhitelabelService) dispatchWebhook(webhook entities.ConfigWebhook, event string, payload interface{}) {
	body, err := json.Marshal(map[string]interface{}{
		"event":      event,
		"client_id":  webhook.ClientID,
		"payload":    payload,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("вебхук недоступен",
			zap.String("url", webhook.URL), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		s.logger.Warn("вебхук вернул ошибку",
			zap.String("url", webhook.URL), zap.Int("status", resp.StatusCode))
	}
}
