// Файл: internal/controllers/telegram_controller.go
package controllers

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ai-assistant/internal/bot"
)

type TelegramController struct {
	bot    *bot.Bot
	logger *zap.Logger
}

func NewTelegramController(b *bot.Bot, logger *zap.Logger) *TelegramController {
	return &TelegramController{bot: b, logger: logger}
}

// HandleWebhook принимает апдейты от Telegram в режиме вебхука.
// Telegram ждет 200 на любой апдейт, иначе будет слать его повторно.
func (c *TelegramController) HandleWebhook(ctx echo.Context) error {
	var update tgbotapi.Update
	if err := ctx.Bind(&update); err != nil {
		c.logger.Warn("Telegram: не удалось разобрать апдейт", zap.Error(err))
		return ctx.NoContent(http.StatusOK)
	}

	c.bot.ProcessUpdate(ctx.Request().Context(), update)
	return ctx.NoContent(http.StatusOK)
}
