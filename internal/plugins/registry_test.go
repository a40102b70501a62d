package plugins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.Register(NewPlugin(PluginCRM, nil)))

	// Повторная регистрация того же имени запрещена.
	assert.Error(t, registry.Register(NewPlugin(PluginCRM, nil)))

	plugin, err := registry.Get(PluginCRM)
	require.NoError(t, err)
	assert.Equal(t, PluginCRM, plugin.Name())

	_, err = registry.Get(PluginPayments)
	assert.Error(t, err)
}

func TestRegistryEnableDisable(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(NewPlugin(PluginMessaging, nil)))

	// Зарегистрированный плагин включен по умолчанию.
	assert.True(t, registry.IsEnabled(PluginMessaging))

	require.NoError(t, registry.Disable(PluginMessaging))
	assert.False(t, registry.IsEnabled(PluginMessaging))

	require.NoError(t, registry.Enable(PluginMessaging))
	assert.True(t, registry.IsEnabled(PluginMessaging))

	// Незарегистрированный плагин переключать нельзя.
	assert.Error(t, registry.Enable(PluginSocial))
	assert.Error(t, registry.Disable(PluginSocial))
	assert.False(t, registry.IsEnabled(PluginSocial))
}

func TestRegistryAll(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(NewPlugin(PluginCRM, nil)))
	require.NoError(t, registry.Register(NewPlugin(PluginAnalytics, nil)))

	names := registry.All()
	assert.ElementsMatch(t, []string{PluginCRM, PluginAnalytics}, names)
}

func TestPluginHealthcheck(t *testing.T) {
	// Плагин без healthcheck-функции всегда здоров.
	healthy := NewPlugin(PluginAnalytics, nil)
	assert.NoError(t, healthy.Healthcheck(context.Background()))

	called := false
	checked := NewPlugin(PluginCRM, func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, checked.Healthcheck(context.Background()))
	assert.True(t, called)
}
