package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runPricingRouter(api *echo.Group, secureGroup *echo.Group, pricingCtrl *controllers.PricingController) {
	// Каталог планов и промо открыты: их показывает публичный лендинг.
	api.GET("/pricing/plans", pricingCtrl.GetPlans)
	api.GET("/pricing/offers", pricingCtrl.GetOffers)
	api.GET("/pricing/quote", pricingCtrl.QuotePlan)

	secureGroup.GET("/pricing/fees", pricingCtrl.CompareFees)
	secureGroup.GET("/pricing/usage", pricingCtrl.GetUsage)
}
