package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPhone проверяет номер в формате E.164 (с опциональным плюсом).
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(NormalizePhone(phone))
}

// NormalizePhone убирает пробелы, скобки и дефисы.
func NormalizePhone(phone string) string {
	replacer := strings.NewReplacer(" ", "", "(", "", ")", "", "-", "")
	return replacer.Replace(phone)
}
