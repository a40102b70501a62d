package plugins

import "context"

// Имена плагинов, известные системе.
const (
	PluginAIChatbot = "ai_chatbot"
	PluginCRM       = "crm"
	PluginPayments  = "payments"
	PluginMessaging = "messaging"
	PluginSocial    = "social"
	PluginNurturing = "nurturing"
	PluginAnalytics = "analytics"
)

// Plugin - включаемый/выключаемый интеграционный модуль.
type Plugin interface {
	Name() string
	// Healthcheck - дешевая проверка доступности вендора.
	Healthcheck(ctx context.Context) error
}

type pluginFunc struct {
	name  string
	check func(ctx context.Context) error
}

func (p pluginFunc) Name() string { return p.name }

func (p pluginFunc) Healthcheck(ctx context.Context) error {
	if p.check == nil {
		return nil
	}
	return p.check(ctx)
}

// NewPlugin оборачивает healthcheck-функцию в Plugin.
func NewPlugin(name string, check func(ctx context.Context) error) Plugin {
	return pluginFunc{name: name, check: check}
}
