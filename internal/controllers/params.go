// Файл: internal/controllers/params.go
package controllers

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "ai-assistant/pkg/errors"
)

// clientIDFromQuery достает обязательный query-параметр client_id.
func clientIDFromQuery(ctx echo.Context) (uint64, error) {
	raw := ctx.QueryParam("client_id")
	if raw == "" {
		return 0, apperrors.NewBadRequestError("Параметр client_id обязателен")
	}
	clientID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || clientID == 0 {
		return 0, apperrors.NewBadRequestError("Некорректный client_id")
	}
	return clientID, nil
}

// periodFromQuery разбирает необязательные from/to (YYYY-MM-DD).
// Пустой период = последние 30 дней.
func periodFromQuery(ctx echo.Context) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := ctx.QueryParam("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, apperrors.NewBadRequestError("Неверный формат даты from")
		}
		from = parsed
	}
	if raw := ctx.QueryParam("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, apperrors.NewBadRequestError("Неверный формат даты to")
		}
		to = parsed.Add(24 * time.Hour)
	}

	return from, to, nil
}
