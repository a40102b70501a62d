// Файл: pkg/telegram/notifier.go
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// NotifierInterface - односторонняя отправка служебных сообщений в
// телеграм. Интерактивной логикой занимается бот, этот клиент нужен
// сервисам и слушателям событий, чтобы не зависеть от бота.
type NotifierInterface interface {
	NotifyAdmin(ctx context.Context, text string) error
	NotifyChat(ctx context.Context, chatID int64, text string) error
}

type Notifier struct {
	botToken    string
	adminChatID int64
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewNotifier(botToken string, adminChatID int64, logger *zap.Logger) NotifierInterface {
	return &Notifier{
		botToken:    botToken,
		adminChatID: adminChatID,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		logger:      logger.Named("telegram"),
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

func (n *Notifier) NotifyAdmin(ctx context.Context, text string) error {
	if n.adminChatID == 0 {
		n.logger.Debug("админ-чат не настроен, уведомление пропущено")
		return nil
	}
	return n.NotifyChat(ctx, n.adminChatID, text)
}

func (n *Notifier) NotifyChat(ctx context.Context, chatID int64, text string) error {
	if n.botToken == "" {
		return fmt.Errorf("токен Telegram-бота не установлен")
	}

	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)

	reqBody, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки запроса в Telegram: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	// Telegram всегда возвращает 200 OK, даже при ошибках
	var telegramResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		ErrorCode   int    `json:"error_code,omitempty"`
	}
	if err := json.Unmarshal(body, &telegramResp); err != nil {
		return fmt.Errorf("ошибка декодирования ответа Telegram API: %w", err)
	}
	if !telegramResp.OK {
		return fmt.Errorf("telegram API ошибка: код %d, описание: %s",
			telegramResp.ErrorCode, telegramResp.Description)
	}

	return nil
}
