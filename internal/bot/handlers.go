// Файл: internal/bot/handlers.go
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/pkg/utils"
)

// Защита от флуда: не чаще одного сообщения в 2 секунды на чат.
const messageCooldown = 2 * time.Second

// Состояние диалога живет 10 минут.
const stateTTL = 10 * time.Minute

const (
	stateSupportMessage = "support_message"
)

func cooldownKey(chatID int64) string { return fmt.Sprintf("tg_cooldown:%d", chatID) }
func stateKey(chatID int64) string    { return fmt.Sprintf("tg_state:%d", chatID) }

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if b.onCooldown(ctx, chatID) {
		return
	}

	if message.Contact != nil {
		b.handleContact(ctx, message)
		return
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	// Ожидаем ли мы от этого чата текст тикета.
	if state, err := b.cacheRepo.Get(ctx, stateKey(chatID)); err == nil && strings.HasPrefix(state, stateSupportMessage) {
		b.finishSupportTicket(ctx, message, state)
		return
	}

	if strings.HasPrefix(text, "#") {
		b.handleHashtag(ctx, message)
		return
	}

	b.handleChat(ctx, message)
}

func (b *Bot) onCooldown(ctx context.Context, chatID int64) bool {
	if _, err := b.cacheRepo.Get(ctx, cooldownKey(chatID)); err == nil {
		return true
	}
	if err := b.cacheRepo.Set(ctx, cooldownKey(chatID), "1", messageCooldown); err != nil {
		b.logger.Warn("не удалось поставить cooldown", zap.Error(err))
	}
	return false
}

func (b *Bot) resolveUser(ctx context.Context, chatID int64) *entities.User {
	user, err := b.userRepo.FindUserByTelegramChatID(ctx, chatID)
	if err != nil {
		return nil
	}
	return user
}

func clientIDOf(user *entities.User) uint64 {
	if user == nil || user.ClientID == nil {
		return 0
	}
	return *user.ClientID
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.commandStart(ctx, message)
	case "help":
		b.reply(chatID, helpText)
	case "status":
		b.commandStatus(ctx, chatID)
	case "onboard":
		b.commandOnboard(ctx, chatID)
	case "support":
		b.commandSupport(chatID)
	case "pricing":
		b.commandPricing(chatID)
	case "report":
		b.commandReport(chatID)
	default:
		b.reply(chatID, "Неизвестная команда. Наберите /help для списка команд.")
	}
}

const helpText = `Доступные команды:
/start - приветствие и статус привязки
/status - сводка по вашему аккаунту
/onboard - прогресс настройки
/support - создать обращение в поддержку
/pricing - тарифы и комиссии
/report - отчеты по метрикам

Быстрые действия:
#lead Имя; email@example.com - создать лида
#crm email@example.com - синхронизировать контакт с CRM
#social текст - опубликовать пост в соцсети
#email кому@example.com; Тема; Текст - отправить письмо
#sms +992900000000; Текст - отправить SMS
#report - отчет за последние 30 дней

Любое другое сообщение - вопрос AI-ассистенту.`

func (b *Bot) commandStart(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user := b.resolveUser(ctx, chatID)

	if user == nil {
		b.reply(chatID, "Здравствуйте! Я AI-ассистент для вашего бизнеса.\n\n"+
			"Этот чат еще не привязан к аккаунту. Попросите администратора привязать "+
			fmt.Sprintf("chat_id %d в панели управления, после чего вам откроются все функции.", chatID))
		return
	}

	b.reply(chatID, fmt.Sprintf("С возвращением, %s! Наберите /help, чтобы посмотреть, что я умею.", user.FullName))
}

func (b *Bot) commandStatus(ctx context.Context, chatID int64) {
	user := b.resolveUser(ctx, chatID)
	if user == nil {
		b.reply(chatID, "Чат не привязан к аккаунту. Наберите /start.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Аккаунт: %s\nТариф: %s\n", user.Email, user.PlanID)

	clientID := clientIDOf(user)
	if clientID != 0 {
		if snapshot, err := b.analytics.GetLatestSnapshot(ctx, clientID); err == nil {
			fmt.Fprintf(&sb, "\nМетрики на %s:\n", snapshot.CollectedAt.Format("02.01.2006"))
			fmt.Fprintf(&sb, "Лиды: %d (конвертировано %d)\n", snapshot.LeadsTotal, snapshot.LeadsConverted)
			fmt.Fprintf(&sb, "Сообщения AI: %d\n", snapshot.ChatMessages)
			fmt.Fprintf(&sb, "Рассылки: %d\n", snapshot.MessagesSent)
		}
		if progress, err := b.onboarding.GetProgress(ctx, clientID); err == nil && !progress.Completed {
			fmt.Fprintf(&sb, "\nОнбординг: %d%% (/onboard)\n", progress.PercentDone)
		}
	}

	b.reply(chatID, sb.String())
}

func (b *Bot) commandOnboard(ctx context.Context, chatID int64) {
	user := b.resolveUser(ctx, chatID)
	clientID := clientIDOf(user)
	if clientID == 0 {
		b.reply(chatID, "Чат не привязан к клиенту. Наберите /start.")
		return
	}

	progress, err := b.onboarding.Init(ctx, dto.InitOnboardingDTO{
		ClientID:       clientID,
		TelegramChatID: chatID,
	})
	if err != nil {
		b.reply(chatID, "Не удалось получить прогресс онбординга, попробуйте позже.")
		b.logger.Error("ошибка онбординга", zap.Error(err))
		return
	}

	if progress.Completed {
		b.reply(chatID, "Онбординг завершен, все функции открыты.")
		return
	}

	b.reply(chatID, fmt.Sprintf(
		"Прогресс настройки: %d%%\nТекущий шаг: %s\n\nЗавершите шаг в панели управления, и я пойду дальше.",
		progress.PercentDone, progress.CurrentStep))
}

func (b *Bot) commandSupport(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Оплата", "support:billing"),
			tgbotapi.NewInlineKeyboardButtonData("Интеграции", "support:integrations"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Бот", "support:bot"),
			tgbotapi.NewInlineKeyboardButtonData("Другое", "support:other"),
		),
	)
	b.replyWithKeyboard(chatID, "Выберите тему обращения:", keyboard)
}

func (b *Bot) commandPricing(chatID int64) {
	var sb strings.Builder
	sb.WriteString("Тарифы:\n")
	for _, plan := range b.pricing.GetPlans() {
		if plan.PriceCents == 0 {
			fmt.Fprintf(&sb, "%s - бесплатно\n", plan.Name)
			continue
		}
		fmt.Fprintf(&sb, "%s - $%d.%02d/мес\n", plan.Name, plan.PriceCents/100, plan.PriceCents%100)
	}

	sb.WriteString("\nКомиссии на платеж $100:\n")
	for _, fee := range b.pricing.CompareFees(10000) {
		fmt.Fprintf(&sb, "%s - $%d.%02d\n", fee.Provider, fee.FeeCents/100, fee.FeeCents%100)
	}

	b.reply(chatID, sb.String())
}

func (b *Bot) commandReport(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Обзор", "report:overview"),
			tgbotapi.NewInlineKeyboardButtonData("Вовлеченность", "report:engagement"),
			tgbotapi.NewInlineKeyboardButtonData("Конверсия", "report:conversion"),
		),
	)
	b.replyWithKeyboard(chatID, "Какой отчет подготовить?", keyboard)
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Телеграм требует подтверждать каждый callback.
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("не удалось подтвердить callback", zap.Error(err))
	}

	chatID := callback.Message.Chat.ID
	parts := strings.SplitN(callback.Data, ":", 2)
	if len(parts) != 2 {
		return
	}

	switch parts[0] {
	case "support":
		state := stateSupportMessage + ":" + parts[1]
		if err := b.cacheRepo.Set(ctx, stateKey(chatID), state, stateTTL); err != nil {
			b.logger.Warn("не удалось сохранить состояние диалога", zap.Error(err))
		}
		b.reply(chatID, "Опишите проблему одним сообщением.")
	case "report":
		b.sendReport(ctx, chatID, parts[1])
	}
}

func (b *Bot) finishSupportTicket(ctx context.Context, message *tgbotapi.Message, state string) {
	chatID := message.Chat.ID
	_ = b.cacheRepo.Del(ctx, stateKey(chatID))

	topic := "other"
	if parts := strings.SplitN(state, ":", 2); len(parts) == 2 {
		topic = parts[1]
	}

	user := b.resolveUser(ctx, chatID)
	ticket, err := b.onboarding.CreateTicket(ctx, dto.CreateTicketDTO{
		ClientID:       clientIDOf(user),
		TelegramChatID: chatID,
		Topic:          topic,
		Message:        message.Text,
	})
	if err != nil {
		b.reply(chatID, "Не удалось создать обращение, попробуйте позже.")
		b.logger.Error("ошибка создания тикета", zap.Error(err))
		return
	}

	b.reply(chatID, fmt.Sprintf("Обращение #%d создано. Мы ответим в этом чате.", ticket.ID))
}

func (b *Bot) sendReport(ctx context.Context, chatID int64, reportType string) {
	user := b.resolveUser(ctx, chatID)
	clientID := clientIDOf(user)
	if clientID == 0 {
		b.reply(chatID, "Чат не привязан к клиенту. Наберите /start.")
		return
	}

	report, err := b.analytics.GenerateReport(ctx, dto.ReportRequestDTO{
		ClientID: clientID,
		Type:     reportType,
	})
	if err != nil {
		b.reply(chatID, "Не удалось построить отчет, попробуйте позже.")
		b.logger.Error("ошибка построения отчета", zap.Error(err))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Отчет '%s' за %s - %s\n\n", report.Type, report.PeriodFrom, report.PeriodTo)
	if len(report.Totals) == 0 {
		sb.WriteString("Данных за период пока нет.")
	}
	for key, value := range report.Totals {
		fmt.Fprintf(&sb, "%s: %v\n", key, value)
	}

	b.reply(chatID, sb.String())
}

// handleContact превращает пересланный контакт в лида.
func (b *Bot) handleContact(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	user := b.resolveUser(ctx, chatID)
	clientID := clientIDOf(user)
	if clientID == 0 {
		b.reply(chatID, "Чат не привязан к аккаунту, контакт не сохранен. Наберите /start.")
		return
	}

	lead, err := b.leads.CreateLead(ctx, contactLeadDTO(clientID, message.Contact))
	if err != nil {
		b.reply(chatID, "Не удалось сохранить контакт: "+err.Error())
		return
	}

	b.reply(chatID, fmt.Sprintf("Лид #%d '%s' создан из контакта.", lead.ID, lead.FullName))
}

func contactLeadDTO(clientID uint64, contact *tgbotapi.Contact) dto.CreateLeadDTO {
	fullName := strings.TrimSpace(contact.FirstName + " " + contact.LastName)
	if fullName == "" {
		fullName = contact.PhoneNumber
	}
	return dto.CreateLeadDTO{
		ClientID:    clientID,
		FullName:    fullName,
		PhoneNumber: utils.NormalizePhone(contact.PhoneNumber),
		Source:      entities.LeadSourceTelegram,
	}
}

// handleHashtag разбирает быстрые действия вида "#lead Имя; email".
func (b *Bot) handleHashtag(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	tag, rest := splitHashtag(message.Text)

	user := b.resolveUser(ctx, chatID)
	clientID := clientIDOf(user)
	if clientID == 0 {
		b.reply(chatID, "Быстрые действия доступны только привязанным аккаунтам. Наберите /start.")
		return
	}

	switch tag {
	case "lead":
		b.hashtagLead(ctx, chatID, clientID, rest)
	case "crm":
		b.hashtagCrm(ctx, chatID, clientID, rest)
	case "social":
		b.hashtagSocial(ctx, chatID, clientID, rest)
	case "email":
		b.hashtagEmail(ctx, chatID, clientID, rest)
	case "sms":
		b.hashtagSMS(ctx, chatID, clientID, rest)
	case "report":
		b.sendReport(ctx, chatID, "overview")
	default:
		b.reply(chatID, "Неизвестный хештег #"+tag+". Наберите /help.")
	}
}

func splitHashtag(text string) (string, string) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "#")
	parts := strings.SplitN(text, " ", 2)
	tag := strings.ToLower(parts[0])
	rest := ""
	if len(parts) == 2 {
		rest = strings.TrimSpace(parts[1])
	}
	return tag, rest
}

func (b *Bot) hashtagLead(ctx context.Context, chatID int64, clientID uint64, rest string) {
	fields := splitFields(rest, 2)
	if fields[0] == "" {
		b.reply(chatID, "Формат: #lead Имя; email@example.com")
		return
	}

	payload := dto.CreateLeadDTO{
		ClientID: clientID,
		FullName: fields[0],
		Source:   entities.LeadSourceTelegram,
	}
	if utils.IsValidEmail(fields[1]) {
		payload.Email = fields[1]
	}

	lead, err := b.leads.CreateLead(ctx, payload)
	if err != nil {
		b.reply(chatID, "Не удалось создать лида: "+err.Error())
		return
	}
	b.reply(chatID, fmt.Sprintf("Лид #%d '%s' создан.", lead.ID, lead.FullName))
}

func (b *Bot) hashtagCrm(ctx context.Context, chatID int64, clientID uint64, rest string) {
	if !utils.IsValidEmail(rest) {
		b.reply(chatID, "Формат: #crm email@example.com")
		return
	}

	results, err := b.crm.SyncContact(ctx, dto.SyncContactDTO{
		ClientID: clientID,
		Contact:  dto.ContactDTO{Email: rest},
	})
	if err != nil {
		b.reply(chatID, "Синхронизация не удалась: "+err.Error())
		return
	}

	var sb strings.Builder
	sb.WriteString("Синхронизация:\n")
	for _, result := range results {
		mark := "ok"
		if !result.Success {
			mark = "ошибка"
		}
		fmt.Fprintf(&sb, "%s - %s\n", result.Platform, mark)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) hashtagSocial(ctx context.Context, chatID int64, clientID uint64, rest string) {
	if rest == "" {
		b.reply(chatID, "Формат: #social текст поста")
		return
	}

	results, err := b.social.Post(ctx, dto.SocialPostDTO{
		ClientID: clientID,
		Content:  rest,
	})
	if err != nil {
		b.reply(chatID, "Публикация не удалась: "+err.Error())
		return
	}

	var sb strings.Builder
	sb.WriteString("Публикация:\n")
	for _, result := range results {
		mark := "ok"
		if !result.Success {
			mark = "ошибка"
		}
		fmt.Fprintf(&sb, "%s - %s\n", result.Platform, mark)
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) hashtagEmail(ctx context.Context, chatID int64, clientID uint64, rest string) {
	fields := splitFields(rest, 3)
	if !utils.IsValidEmail(fields[0]) || fields[1] == "" || fields[2] == "" {
		b.reply(chatID, "Формат: #email кому@example.com; Тема; Текст")
		return
	}

	err := b.messaging.SendEmail(ctx, dto.SendEmailDTO{
		ClientID: clientID,
		To:       fields[0],
		Subject:  fields[1],
		Content:  fields[2],
	})
	if err != nil {
		b.reply(chatID, "Письмо не отправлено: "+err.Error())
		return
	}
	b.reply(chatID, "Письмо отправлено на "+fields[0])
}

func (b *Bot) hashtagSMS(ctx context.Context, chatID int64, clientID uint64, rest string) {
	fields := splitFields(rest, 2)
	if fields[0] == "" || fields[1] == "" {
		b.reply(chatID, "Формат: #sms +992900000000; Текст")
		return
	}

	err := b.messaging.SendSMS(ctx, dto.SendSMSDTO{
		ClientID: clientID,
		To:       fields[0],
		Message:  fields[1],
	})
	if err != nil {
		b.reply(chatID, "SMS не отправлено: "+err.Error())
		return
	}
	b.reply(chatID, "SMS отправлено на "+fields[0])
}

// splitFields режет строку по ';' и дополняет до n элементов.
func splitFields(text string, n int) []string {
	parts := strings.SplitN(text, ";", n)
	fields := make([]string, n)
	for i := range parts {
		fields[i] = strings.TrimSpace(parts[i])
	}
	return fields
}

func (b *Bot) handleChat(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	user := b.resolveUser(ctx, chatID)
	clientID := clientIDOf(user)
	if clientID == 0 {
		b.reply(chatID, "Чтобы общаться с AI-ассистентом, привяжите чат к аккаунту. Наберите /start.")
		return
	}

	typing := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(typing); err != nil {
		b.logger.Debug("не удалось отправить chat action", zap.Error(err))
	}

	response, err := b.aichat.Chat(ctx, dto.ChatMessageDTO{
		ClientID: clientID,
		UserID:   chatID,
		Message:  message.Text,
	})
	if err != nil {
		b.reply(chatID, "Ассистент сейчас недоступен, попробуйте позже.")
		b.logger.Error("ошибка AI-чата", zap.Error(err))
		return
	}

	b.reply(chatID, response.Reply)
}
