// Файл: internal/services/plugin_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/plugins"
)

func newPluginEnvForTest(t *testing.T) (PluginServiceInterface, *plugins.Registry, uint64) {
	t.Helper()

	registry := plugins.NewRegistry()
	require.NoError(t, registry.Register(plugins.NewPlugin(plugins.PluginCRM, nil)))
	require.NoError(t, registry.Register(plugins.NewPlugin(plugins.PluginPayments, nil)))

	repo := newFakeWhitelabelRepo()
	wlSvc := newWhitelabelForTest(repo, &fakeFileStorage{})
	client, err := wlSvc.CreateClient(context.Background(), dto.CreateClientDTO{Slug: "acme", Name: "Acme Corp"})
	require.NoError(t, err)

	return NewPluginService(registry, repo, zap.NewNop()), registry, client.ID
}

func TestPluginEnabledByDefault(t *testing.T) {
	svc, _, clientID := newPluginEnvForTest(t)

	// Тенант без явного переключателя получает плагин включенным.
	enabled, err := svc.IsEnabled(context.Background(), clientID, plugins.PluginCRM)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestPluginToggle(t *testing.T) {
	svc, _, clientID := newPluginEnvForTest(t)

	require.NoError(t, svc.Toggle(context.Background(), clientID, plugins.PluginCRM, false))

	enabled, err := svc.IsEnabled(context.Background(), clientID, plugins.PluginCRM)
	require.NoError(t, err)
	assert.False(t, enabled)

	// Второй плагин переключатель не задел.
	enabled, err = svc.IsEnabled(context.Background(), clientID, plugins.PluginPayments)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, svc.Toggle(context.Background(), clientID, plugins.PluginCRM, true))
	enabled, err = svc.IsEnabled(context.Background(), clientID, plugins.PluginCRM)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestPluginGlobalDisableWins(t *testing.T) {
	svc, registry, clientID := newPluginEnvForTest(t)

	require.NoError(t, svc.Toggle(context.Background(), clientID, plugins.PluginCRM, true))
	require.NoError(t, registry.Disable(plugins.PluginCRM))

	// Глобальное отключение перекрывает настройку тенанта.
	enabled, err := svc.IsEnabled(context.Background(), clientID, plugins.PluginCRM)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestPluginUnknown(t *testing.T) {
	svc, _, clientID := newPluginEnvForTest(t)

	_, err := svc.IsEnabled(context.Background(), clientID, "billing")
	assert.Error(t, err)

	err = svc.Toggle(context.Background(), clientID, "billing", true)
	assert.Error(t, err)
}

func TestPluginStatuses(t *testing.T) {
	svc, _, clientID := newPluginEnvForTest(t)

	require.NoError(t, svc.Toggle(context.Background(), clientID, plugins.PluginPayments, false))

	statuses, err := svc.Statuses(context.Background(), clientID)
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	byName := make(map[string]dto.PluginStatusDTO)
	for _, status := range statuses {
		byName[status.Name] = status
	}
	assert.True(t, byName[plugins.PluginCRM].Enabled)
	assert.True(t, byName[plugins.PluginCRM].Healthy)
	assert.False(t, byName[plugins.PluginPayments].Enabled)
}
