// Файл: internal/plugins/registry.go
package plugins

import (
	"fmt"
	"sync"
)

// RegistryInterface определяет, что должен уметь реестр плагинов.
type RegistryInterface interface {
	// Register добавляет плагин в список доступных.
	Register(plugin Plugin) error

	// Get находит плагин по имени.
	Get(name string) (Plugin, error)

	// Enable/Disable переключают флаг плагина.
	Enable(name string) error
	Disable(name string) error

	// IsEnabled сообщает, включен ли плагин.
	IsEnabled(name string) bool

	// All возвращает имена всех зарегистрированных плагинов.
	All() []string
}

// Registry - потокобезопасное хранилище плагинов с флагами включения.
type Registry struct {
	plugins map[string]Plugin
	enabled map[string]bool
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		enabled: make(map[string]bool),
	}
}

func (r *Registry) Register(plugin Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := plugin.Name()
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("плагин с именем '%s' уже зарегистрирован", name)
	}

	r.plugins[name] = plugin
	r.enabled[name] = true
	return nil
}

func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugin, exists := r.plugins[name]
	if !exists {
		return nil, fmt.Errorf("плагин с именем '%s' не найден", name)
	}
	return plugin, nil
}

func (r *Registry) Enable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; !exists {
		return fmt.Errorf("невозможно включить плагин '%s': он не зарегистрирован", name)
	}
	r.enabled[name] = true
	return nil
}

func (r *Registry) Disable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; !exists {
		return fmt.Errorf("невозможно отключить плагин '%s': он не зарегистрирован", name)
	}
	r.enabled[name] = false
	return nil
}

func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[name]
}

func (r *Registry) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	return names
}
