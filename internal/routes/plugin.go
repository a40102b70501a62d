package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runPluginRouter(secureGroup *echo.Group, pluginCtrl *controllers.PluginController) {
	secureGroup.GET("/plugins", pluginCtrl.Statuses)
	secureGroup.POST("/plugins/toggle", pluginCtrl.Toggle)
}
