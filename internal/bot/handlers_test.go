// Файл: internal/bot/handlers_test.go
package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"

	"ai-assistant/internal/entities"
)

func TestSplitHashtag(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		wantTag  string
		wantRest string
	}{
		{name: "тег с аргументами", text: "#lead Иван Петров; ivan@example.com", wantTag: "lead", wantRest: "Иван Петров; ivan@example.com"},
		{name: "тег без аргументов", text: "#support", wantTag: "support", wantRest: ""},
		{name: "регистр приводится к нижнему", text: "#Lead Иван", wantTag: "lead", wantRest: "Иван"},
		{name: "пробелы вокруг", text: "  #pay 49.99  ", wantTag: "pay", wantRest: "49.99"},
		{name: "без решетки", text: "lead Иван", wantTag: "lead", wantRest: "Иван"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tag, rest := splitHashtag(tc.text)
			assert.Equal(t, tc.wantTag, tag)
			assert.Equal(t, tc.wantRest, rest)
		})
	}
}

func TestContactLeadDTO(t *testing.T) {
	payload := contactLeadDTO(7, &tgbotapi.Contact{
		FirstName:   "Иван",
		LastName:    "Петров",
		PhoneNumber: "+992 (90) 000-00-00",
	})

	assert.Equal(t, uint64(7), payload.ClientID)
	assert.Equal(t, "Иван Петров", payload.FullName)
	assert.Equal(t, "+992900000000", payload.PhoneNumber)
	assert.Equal(t, entities.LeadSourceTelegram, payload.Source)

	// Без имени лид получает номер телефона вместо ФИО.
	payload = contactLeadDTO(7, &tgbotapi.Contact{PhoneNumber: "+992900000001"})
	assert.Equal(t, "+992900000001", payload.FullName)
}

func TestSplitFields(t *testing.T) {
	// Недостающие поля добиваются пустыми строками.
	fields := splitFields("Иван Петров; ivan@example.com", 3)
	assert.Equal(t, []string{"Иван Петров", "ivan@example.com", ""}, fields)

	// Лишние разделители уходят в последнее поле.
	fields = splitFields("a; b; c; d", 2)
	assert.Equal(t, []string{"a", "b; c; d"}, fields)

	fields = splitFields("", 2)
	assert.Equal(t, []string{"", ""}, fields)
}
