package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runChatRouter(secureGroup *echo.Group, chatCtrl *controllers.ChatController) {
	secureGroup.POST("/chat", chatCtrl.Chat)
	secureGroup.GET("/chat/summary", chatCtrl.Summarize)
	secureGroup.DELETE("/chat/history", chatCtrl.ResetHistory)
}
