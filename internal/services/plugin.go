// Файл: internal/services/plugin.go
package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/plugins"
	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
)

const healthcheckTimeout = 5 * time.Second

type PluginServiceInterface interface {
	Toggle(ctx context.Context, clientID uint64, name string, enabled bool) error
	IsEnabled(ctx context.Context, clientID uint64, name string) (bool, error)
	Statuses(ctx context.Context, clientID uint64) ([]dto.PluginStatusDTO, error)
}

type PluginService struct {
	registry plugins.RegistryInterface
	wlRepo   repositories.WhitelabelRepositoryInterface
	logger   *zap.Logger
}

func NewPluginService(
	registry plugins.RegistryInterface,
	wlRepo repositories.WhitelabelRepositoryInterface,
	logger *zap.Logger,
) PluginServiceInterface {
	return &PluginService{registry: registry, wlRepo: wlRepo, logger: logger}
}

func (s *PluginService) clientToggles(ctx context.Context, clientID uint64) (map[string]bool, error) {
	client, err := s.wlRepo.FindClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	toggles := make(map[string]bool)
	if len(client.Plugins) > 0 {
		if err := json.Unmarshal(client.Plugins, &toggles); err != nil {
			s.logger.Warn("битый plugins JSON", zap.Uint64("client_id", clientID), zap.Error(err))
		}
	}
	return toggles, nil
}

// Toggle включает или выключает плагин для конкретного тенанта.
func (s *PluginService) Toggle(ctx context.Context, clientID uint64, name string, enabled bool) error {
	if _, err := s.registry.Get(name); err != nil {
		return apperrors.NewNotFoundError("плагин '" + name + "' не найден")
	}

	toggles, err := s.clientToggles(ctx, clientID)
	if err != nil {
		return err
	}
	toggles[name] = enabled

	raw, err := json.Marshal(toggles)
	if err != nil {
		return err
	}
	if err := s.wlRepo.UpdateConfigColumn(ctx, clientID, "plugins", raw); err != nil {
		return err
	}

	s.logger.Info("Переключен плагин",
		zap.Uint64("client_id", clientID),
		zap.String("plugin", name),
		zap.Bool("enabled", enabled))
	return nil
}

// IsEnabled проверяет доступность плагина тенанту. Плагин, глобально
// выключенный в реестре, недоступен независимо от настроек тенанта;
// тенант без явного переключателя получает плагин включенным.
func (s *PluginService) IsEnabled(ctx context.Context, clientID uint64, name string) (bool, error) {
	if _, err := s.registry.Get(name); err != nil {
		return false, apperrors.ErrPluginNotFound
	}
	if !s.registry.IsEnabled(name) {
		return false, nil
	}

	toggles, err := s.clientToggles(ctx, clientID)
	if err != nil {
		return false, err
	}
	if enabled, exists := toggles[name]; exists {
		return enabled, nil
	}
	return true, nil
}

// Statuses возвращает состояние всех плагинов тенанта вместе с
// результатами healthcheck-ов вендоров.
func (s *PluginService) Statuses(ctx context.Context, clientID uint64) ([]dto.PluginStatusDTO, error) {
	toggles, err := s.clientToggles(ctx, clientID)
	if err != nil {
		return nil, err
	}

	names := s.registry.All()
	statuses := make([]dto.PluginStatusDTO, 0, len(names))
	for _, name := range names {
		status := dto.PluginStatusDTO{Name: name, Enabled: s.registry.IsEnabled(name)}
		if enabled, exists := toggles[name]; exists && status.Enabled {
			status.Enabled = enabled
		}

		if status.Enabled {
			plugin, err := s.registry.Get(name)
			if err == nil {
				checkCtx, cancel := context.WithTimeout(ctx, healthcheckTimeout)
				if err := plugin.Healthcheck(checkCtx); err != nil {
					status.Error = err.Error()
				} else {
					status.Healthy = true
				}
				cancel()
			}
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}
