package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runCrmRouter(secureGroup *echo.Group, crmCtrl *controllers.CrmController) {
	secureGroup.POST("/crm/sync", crmCtrl.SyncContact)
	secureGroup.GET("/crm/search", crmCtrl.SearchContact)
	secureGroup.GET("/crm/platforms", crmCtrl.PlatformStatuses)
	secureGroup.GET("/crm/records", crmCtrl.GetSyncRecords)
}
