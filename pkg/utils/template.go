package utils

import (
	"fmt"
	"strings"
)

// FillTemplate подставляет значения в плейсхолдеры вида {{name}}.
// Неизвестные плейсхолдеры остаются как есть — так проще заметить опечатку в шаблоне.
func FillTemplate(template string, data map[string]interface{}) string {
	result := template
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		result = strings.ReplaceAll(result, placeholder, fmt.Sprintf("%v", value))
	}
	return result
}

// TemplatePlaceholders возвращает список плейсхолдеров, найденных в шаблоне.
func TemplatePlaceholders(template string) []string {
	var out []string
	rest := template
	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			break
		}
		out = append(out, rest[start+2:start+end])
		rest = rest[start+end+2:]
	}
	return out
}
