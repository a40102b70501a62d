package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillTemplate(t *testing.T) {
	data := map[string]interface{}{
		"name":    "Иван",
		"company": "Acme",
		"count":   3,
	}

	result := FillTemplate("Здравствуйте, {{name}} из {{company}}! У вас {{count}} новых лида.", data)
	assert.Equal(t, "Здравствуйте, Иван из Acme! У вас 3 новых лида.", result)

	// Неизвестные плейсхолдеры остаются как есть.
	result = FillTemplate("Привет, {{name}}! Ваш план: {{plan}}.", data)
	assert.Equal(t, "Привет, Иван! Ваш план: {{plan}}.", result)

	assert.Equal(t, "без плейсхолдеров", FillTemplate("без плейсхолдеров", data))
	assert.Equal(t, "", FillTemplate("", data))
}

func TestTemplatePlaceholders(t *testing.T) {
	placeholders := TemplatePlaceholders("Привет, {{name}}! Компания {{company}} ждет.")
	assert.Equal(t, []string{"name", "company"}, placeholders)

	assert.Empty(t, TemplatePlaceholders("без плейсхолдеров"))

	// Незакрытая скобка обрывает разбор.
	assert.Empty(t, TemplatePlaceholders("привет {{name"))
}
