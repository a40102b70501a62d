package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"ai-assistant/internal/bot"
	"ai-assistant/internal/controllers"
	"ai-assistant/internal/integrations/bitpay"
	"ai-assistant/internal/integrations/coinbase"
	"ai-assistant/internal/integrations/gohighlevel"
	"ai-assistant/internal/integrations/hubspot"
	"ai-assistant/internal/integrations/klaviyo"
	"ai-assistant/internal/integrations/linkedin"
	"ai-assistant/internal/integrations/openai"
	"ai-assistant/internal/integrations/paypal"
	"ai-assistant/internal/integrations/salesforce"
	"ai-assistant/internal/integrations/sendgrid"
	"ai-assistant/internal/integrations/stripe"
	"ai-assistant/internal/integrations/twilio"
	"ai-assistant/internal/integrations/twitterx"
	"ai-assistant/internal/listeners"
	"ai-assistant/internal/plugins"
	"ai-assistant/internal/repositories"
	"ai-assistant/internal/scheduler"
	"ai-assistant/internal/services"
	"ai-assistant/pkg/config"
	"ai-assistant/pkg/eventbus"
	"ai-assistant/pkg/filestorage"
	"ai-assistant/pkg/middleware"
	"ai-assistant/pkg/service"
	"ai-assistant/pkg/telegram"
	appwebsocket "ai-assistant/pkg/websocket"
)

type Loggers struct {
	Main    *zap.Logger
	Auth    *zap.Logger
	Payment *zap.Logger
	Bot     *zap.Logger
}

// App - фоновые компоненты, которые main запускает после регистрации маршрутов.
type App struct {
	Bot       *bot.Bot
	Scheduler *scheduler.Scheduler
	Hub       *appwebsocket.Hub
}

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers, cfg *config.Config) (*App, error) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	fileStorage, err := filestorage.NewLocalFileStorage("uploads")
	if err != nil {
		loggers.Main.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}
	bus := eventbus.New(loggers.Main)
	hub := appwebsocket.NewHub(loggers.Main)
	notifier := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID, loggers.Main)

	// --- 1. РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn, loggers.Main)
	leadRepo := repositories.NewLeadRepository(dbConn, loggers.Main)
	txRepo := repositories.NewTransactionRepository(dbConn, loggers.Payment)
	campaignRepo := repositories.NewCampaignRepository(dbConn, loggers.Main)
	syncRepo := repositories.NewCrmSyncRepository(dbConn, loggers.Main)
	messageRepo := repositories.NewMessageRepository(dbConn, loggers.Main)
	onboardingRepo := repositories.NewOnboardingRepository(dbConn, loggers.Main)
	wlRepo := repositories.NewWhitelabelRepository(dbConn, loggers.Main)
	metricRepo := repositories.NewMetricRepository(dbConn, loggers.Main)
	postRepo := repositories.NewSocialPostRepository(dbConn, loggers.Main)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 2. КЛИЕНТЫ ВНЕШНИХ API ---
	openaiClient := openai.New(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, loggers.Main)
	stripeClient := stripe.New(cfg.Payments.Stripe.BaseURL, cfg.Payments.Stripe.SecretKey, loggers.Payment)
	coinbaseClient := coinbase.New(cfg.Payments.Coinbase.BaseURL, cfg.Payments.Coinbase.APIKey, loggers.Payment)
	bitpayClient := bitpay.New(cfg.Payments.BitPay.BaseURL, cfg.Payments.BitPay.APIKey, cfg.Payments.BitPay.MerchantToken, loggers.Payment)
	paypalClient := paypal.New(cfg.Payments.PayPal.BaseURL, cfg.Payments.PayPal.ClientID, cfg.Payments.PayPal.ClientSecret, loggers.Payment)
	hubspotClient := hubspot.New(cfg.CRM.HubSpot.BaseURL, cfg.CRM.HubSpot.APIKey, loggers.Main)
	salesforceClient := salesforce.New(cfg.CRM.Salesforce.BaseURL, cfg.CRM.Salesforce.ClientID, cfg.CRM.Salesforce.ClientSecret, cfg.CRM.Salesforce.Username, cfg.CRM.Salesforce.Password, loggers.Main)
	ghlClient := gohighlevel.New(cfg.CRM.GoHighLevel.BaseURL, cfg.CRM.GoHighLevel.APIKey, cfg.CRM.GoHighLevel.LocationID, loggers.Main)
	klaviyoClient := klaviyo.New(cfg.CRM.Klaviyo.BaseURL, cfg.CRM.Klaviyo.APIKey, loggers.Main)
	sendgridClient := sendgrid.New(cfg.Messaging.SendGrid.BaseURL, cfg.Messaging.SendGrid.APIKey, cfg.Messaging.SendGrid.FromEmail, cfg.Messaging.SendGrid.FromName, loggers.Main)
	twilioClient := twilio.New(cfg.Messaging.Twilio.BaseURL, cfg.Messaging.Twilio.AccountSID, cfg.Messaging.Twilio.AuthToken, cfg.Messaging.Twilio.FromNumber, loggers.Main)
	twitterClient := twitterx.New(cfg.Social.Twitter.BaseURL, cfg.Social.Twitter.BearerToken, loggers.Main)
	linkedinClient := linkedin.New(cfg.Social.LinkedIn.BaseURL, cfg.Social.LinkedIn.AccessToken, cfg.Social.LinkedIn.AuthorURN, loggers.Main)

	// --- 3. РЕЕСТР ПЛАГИНОВ ---
	registry := plugins.NewRegistry()
	registryEntries := []plugins.Plugin{
		plugins.NewPlugin(plugins.PluginAIChatbot, openaiClient.Healthcheck),
		plugins.NewPlugin(plugins.PluginCRM, hubspotClient.Healthcheck),
		plugins.NewPlugin(plugins.PluginPayments, stripeClient.Healthcheck),
		plugins.NewPlugin(plugins.PluginMessaging, sendgridClient.Healthcheck),
		plugins.NewPlugin(plugins.PluginSocial, twitterClient.Healthcheck),
		plugins.NewPlugin(plugins.PluginNurturing, sendgridClient.Healthcheck),
		// Аналитика не зависит от внешних вендоров.
		plugins.NewPlugin(plugins.PluginAnalytics, nil),
	}
	for _, p := range registryEntries {
		if err := registry.Register(p); err != nil {
			loggers.Main.Fatal("не удалось зарегистрировать плагин", zap.String("plugin", p.Name()), zap.Error(err))
		}
	}

	// --- 4. СЕРВИСЫ ---
	pricingService := services.NewPricingService(leadRepo, messageRepo, syncRepo, cacheRepo, loggers.Main)
	authService := services.NewAuthService(userRepo, jwtSvc, loggers.Auth)
	userService := services.NewUserService(userRepo, pricingService, loggers.Main)
	leadService := services.NewLeadService(leadRepo, bus, loggers.Main)
	paymentService := services.NewPaymentService(txRepo, stripeClient, coinbaseClient, bitpayClient, paypalClient, &cfg.Payments, bus, loggers.Payment)
	crmService := services.NewCrmService(hubspotClient, salesforceClient, ghlClient, klaviyoClient, syncRepo, loggers.Main)
	messagingService := services.NewMessagingService(sendgridClient, twilioClient, messageRepo, &cfg.Messaging, loggers.Main)
	aichatService := services.NewAIChatService(openaiClient, cacheRepo, wlRepo, &cfg.OpenAI, loggers.Main)
	nurturingService := services.NewNurturingService(campaignRepo, leadRepo, messagingService, loggers.Main)
	whitelabelService := services.NewWhitelabelService(wlRepo, fileStorage, loggers.Main)
	pluginService := services.NewPluginService(registry, wlRepo, loggers.Main)
	onboardingService := services.NewOnboardingService(onboardingRepo, userRepo, notifier, loggers.Main)
	analyticsService := services.NewAnalyticsService(metricRepo, wlRepo, leadRepo, messageRepo, syncRepo, txRepo, cacheRepo, loggers.Main)
	socialService := services.NewSocialService(twitterClient, linkedinClient, postRepo, loggers.Main)

	// --- 5. СЛУШАТЕЛИ СОБЫТИЙ ---
	notificationListener := listeners.NewNotificationListener(notifier, hub, loggers.Main)
	notificationListener.Register(bus)

	// --- 6. КОНТРОЛЛЕРЫ ---
	authCtrl := controllers.NewAuthController(authService, loggers.Auth)
	userCtrl := controllers.NewUserController(userService, loggers.Main)
	leadCtrl := controllers.NewLeadController(leadService, loggers.Main)
	paymentCtrl := controllers.NewPaymentController(paymentService, loggers.Payment)
	crmCtrl := controllers.NewCrmController(crmService, loggers.Main)
	messagingCtrl := controllers.NewMessagingController(messagingService, loggers.Main)
	chatCtrl := controllers.NewChatController(aichatService, loggers.Main)
	pluginCtrl := controllers.NewPluginController(pluginService, loggers.Main)
	wlCtrl := controllers.NewWhitelabelController(whitelabelService, loggers.Main)
	onboardingCtrl := controllers.NewOnboardingController(onboardingService, loggers.Main)
	analyticsCtrl := controllers.NewAnalyticsController(analyticsService, loggers.Main)
	nurturingCtrl := controllers.NewNurturingController(nurturingService, loggers.Main)
	socialCtrl := controllers.NewSocialController(socialService, loggers.Main)
	pricingCtrl := controllers.NewPricingController(pricingService, loggers.Main)
	healthCtrl := controllers.NewHealthController(dbConn, redisClient, registry, loggers.Main)
	wsCtrl := controllers.NewWebSocketController(hub, jwtSvc, loggers.Main)

	// --- 7. ТЕЛЕГРАМ-БОТ ---
	var tgBot *bot.Bot
	if cfg.Telegram.BotToken != "" {
		tgBot, err = bot.New(&cfg.Telegram, bot.Deps{
			AIChat:     aichatService,
			Leads:      leadService,
			Onboarding: onboardingService,
			Pricing:    pricingService,
			Analytics:  analyticsService,
			Social:     socialService,
			Messaging:  messagingService,
			Crm:        crmService,
			UserRepo:   userRepo,
			CacheRepo:  cacheRepo,
		}, loggers.Bot)
		if err != nil {
			return nil, err
		}
	} else {
		loggers.Main.Warn("TELEGRAM_BOT_TOKEN не задан, бот отключен")
	}

	// --- 8. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, secureGroup, authCtrl)
	runUserRouter(secureGroup, userCtrl)
	runLeadRouter(secureGroup, leadCtrl)
	runPaymentRouter(api, secureGroup, paymentCtrl)
	runCrmRouter(secureGroup, crmCtrl)
	runMessagingRouter(secureGroup, messagingCtrl)
	runChatRouter(secureGroup, chatCtrl)
	runPluginRouter(secureGroup, pluginCtrl)
	runWhitelabelRouter(api, secureGroup, wlCtrl)
	runOnboardingRouter(secureGroup, onboardingCtrl)
	runAnalyticsRouter(secureGroup, analyticsCtrl)
	runNurturingRouter(secureGroup, nurturingCtrl)
	runSocialRouter(secureGroup, socialCtrl)
	runPricingRouter(api, secureGroup, pricingCtrl)
	runWebSocketRouter(e, wsCtrl)

	e.GET("/health", healthCtrl.Check)

	if tgBot != nil {
		runTelegramRouter(api, controllers.NewTelegramController(tgBot, loggers.Bot))
	}

	sched := scheduler.New(paymentService, nurturingService, analyticsService, onboardingService, cfg.Payments.PollInterval, loggers.Main)

	loggers.Main.Info("InitRouter: Создание маршрутов завершено")
	return &App{Bot: tgBot, Scheduler: sched, Hub: hub}, nil
}
