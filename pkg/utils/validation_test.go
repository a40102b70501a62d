package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ivan@example.com"))
	assert.True(t, IsValidEmail("user.name+tag@sub.example.io"))

	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("ivan@"))
	assert.False(t, IsValidEmail("@example.com"))
	assert.False(t, IsValidEmail("ivan@example"))
	assert.False(t, IsValidEmail("иван@пример.рф"))
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+79001234567"))
	assert.True(t, IsValidPhone("79001234567"))
	assert.True(t, IsValidPhone("+7 (900) 123-45-67"))

	assert.False(t, IsValidPhone(""))
	assert.False(t, IsValidPhone("+0123456789"))
	assert.False(t, IsValidPhone("12345"))
	assert.False(t, IsValidPhone("телефон"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+79001234567", NormalizePhone("+7 (900) 123-45-67"))
	assert.Equal(t, "+79001234567", NormalizePhone("+79001234567"))
}
