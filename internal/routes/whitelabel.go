package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runWhitelabelRouter(api *echo.Group, secureGroup *echo.Group, wlCtrl *controllers.WhitelabelController) {
	secureGroup.GET("/clients", wlCtrl.GetClients)
	secureGroup.GET("/clients/:id", wlCtrl.FindClient)
	secureGroup.POST("/clients", wlCtrl.CreateClient)
	secureGroup.PUT("/clients/:id/active", wlCtrl.SetActive)
	secureGroup.DELETE("/clients/:id", wlCtrl.DeleteClient)

	secureGroup.PUT("/clients/:id/branding", wlCtrl.UpdateBranding)
	secureGroup.PUT("/clients/:id/features", wlCtrl.UpdateFeatures)
	secureGroup.PUT("/clients/:id/integrations", wlCtrl.UpdateIntegrations)
	secureGroup.POST("/clients/:id/logo", wlCtrl.UploadLogo)

	secureGroup.POST("/clients/:id/webhooks", wlCtrl.RegisterWebhook)
	secureGroup.GET("/clients/:id/webhooks", wlCtrl.GetWebhooks)
	secureGroup.DELETE("/clients/:id/webhooks/:webhookId", wlCtrl.DeleteWebhook)
	secureGroup.GET("/clients/:id/changes", wlCtrl.GetChanges)

	// Тема отдается без авторизации: ее запрашивает виджет на сайте клиента.
	api.GET("/theme/:slug", wlCtrl.GetTheme)
}
