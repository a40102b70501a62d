package routes

import (
	"github.com/labstack/echo/v4"

	"ai-assistant/internal/controllers"
)

func runPaymentRouter(api *echo.Group, secureGroup *echo.Group, paymentCtrl *controllers.PaymentController) {
	secureGroup.POST("/payments", paymentCtrl.CreatePayment)
	secureGroup.GET("/payments/transactions", paymentCtrl.GetTransactions)
	secureGroup.GET("/payments/stats", paymentCtrl.GetStats)
	secureGroup.GET("/payments/:id/status", paymentCtrl.GetStatus)
	secureGroup.POST("/payments/:id/refund", paymentCtrl.Refund)

	// Вебхуки провайдеров без авторизации: подлинность проверяется
	// подписью или повторным запросом к провайдеру.
	api.POST("/payments/webhook/:provider", paymentCtrl.HandleWebhook)
}
