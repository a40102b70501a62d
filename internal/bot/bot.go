// Файл: internal/bot/bot.go
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ai-assistant/internal/repositories"
	"ai-assistant/internal/services"
	"ai-assistant/pkg/config"
)

// Bot - телеграм-интерфейс ассистента: AI-чат, команды онбординга,
// поддержки и быстрые действия через хештеги.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.TelegramConfig

	aichat     services.AIChatServiceInterface
	leads      services.LeadServiceInterface
	onboarding services.OnboardingServiceInterface
	pricing    services.PricingServiceInterface
	analytics  services.AnalyticsServiceInterface
	social     services.SocialServiceInterface
	messaging  services.MessagingServiceInterface
	crm        services.CrmServiceInterface

	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface

	logger *zap.Logger
}

type Deps struct {
	AIChat     services.AIChatServiceInterface
	Leads      services.LeadServiceInterface
	Onboarding services.OnboardingServiceInterface
	Pricing    services.PricingServiceInterface
	Analytics  services.AnalyticsServiceInterface
	Social     services.SocialServiceInterface
	Messaging  services.MessagingServiceInterface
	Crm        services.CrmServiceInterface
	UserRepo   repositories.UserRepositoryInterface
	CacheRepo  repositories.CacheRepositoryInterface
}

func New(cfg *config.TelegramConfig, deps Deps, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации телеграм-бота: %w", err)
	}
	api.Debug = cfg.Debug

	logger.Info("Телеграм-бот авторизован", zap.String("username", api.Self.UserName))

	return &Bot{
		api:        api,
		cfg:        cfg,
		aichat:     deps.AIChat,
		leads:      deps.Leads,
		onboarding: deps.Onboarding,
		pricing:    deps.Pricing,
		analytics:  deps.Analytics,
		social:     deps.Social,
		messaging:  deps.Messaging,
		crm:        deps.Crm,
		userRepo:   deps.UserRepo,
		cacheRepo:  deps.CacheRepo,
		logger:     logger.Named("bot"),
	}, nil
}

// Run запускает обработку обновлений long polling-ом и блокируется
// до отмены контекста. В режиме вебхука обновления приходят через
// ProcessUpdate из HTTP-роута, и Run только выставляет вебхук.
func (b *Bot) Run(ctx context.Context) error {
	if b.cfg.WebhookEnabled {
		wh, err := tgbotapi.NewWebhook(b.cfg.WebhookURL)
		if err != nil {
			return fmt.Errorf("ошибка конфигурации вебхука: %w", err)
		}
		if _, err := b.api.Request(wh); err != nil {
			return fmt.Errorf("ошибка установки вебхука: %w", err)
		}
		b.logger.Info("Вебхук установлен", zap.String("url", b.cfg.WebhookURL))
		<-ctx.Done()
		return nil
	}

	// При запуске в режиме polling старый вебхук надо снять.
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("не удалось снять вебхук", zap.Error(err))
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("Бот запущен в режиме long polling")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.ProcessUpdate(ctx, update)
		}
	}
}

// ProcessUpdate обрабатывает одно обновление. Паника в обработчике
// не должна ронять весь цикл.
func (b *Bot) ProcessUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("паника в обработчике обновления", zap.Any("panic", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("не удалось отправить сообщение",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("не удалось отправить сообщение",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
