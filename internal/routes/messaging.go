package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runMessagingRouter(secureGroup *echo.Group, messagingCtrl *controllers.MessagingController) {
	secureGroup.POST("/messages/email", messagingCtrl.SendEmail)
	secureGroup.POST("/messages/sms", messagingCtrl.SendSMS)
	secureGroup.POST("/messages/bulk", messagingCtrl.SendBulk)
	secureGroup.POST("/messages/templates", messagingCtrl.CreateTemplate)
	secureGroup.GET("/messages/templates", messagingCtrl.GetTemplates)
	secureGroup.DELETE("/messages/templates/:id", messagingCtrl.DeleteTemplate)
	secureGroup.GET("/messages/logs", messagingCtrl.GetMessageLogs)
	secureGroup.GET("/messages/analytics", messagingCtrl.GetAnalytics)
}
