// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations регистрирует кастомные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("e164_phone", isE164PhoneNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("hex_color", isHexColor); err != nil {
		return err
	}
	if err := v.RegisterValidation("email", isGoodEmailFormat); err != nil {
		return err
	}
	return nil
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(fl.Field().String())
}

func isE164PhoneNumber(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^\+[1-9]\d{6,14}$`)
	return re.MatchString(fl.Field().String())
}

// Цвета брендинга whitelabel-клиентов: #RGB или #RRGGBB.
func isHexColor(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	return re.MatchString(fl.Field().String())
}
