package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

// Апдейты приходят с серверов Telegram, авторизация не нужна.
func runTelegramRouter(api *echo.Group, tgCtrl *controllers.TelegramController) {
	api.POST("/webhooks/telegram", tgCtrl.HandleWebhook)
}
