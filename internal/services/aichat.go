// Файл: internal/services/aichat.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/integrations/openai"
	"ai-assistant/internal/repositories"
	"ai-assistant/pkg/config"
	apperrors "ai-assistant/pkg/errors"
)

const (
	defaultSystemPrompt = "Ты - дружелюбный ассистент компании. Отвечай кратко и по делу."
	historyTTL          = 24 * time.Hour
	maxResponseTokens   = 500
)

type AIChatServiceInterface interface {
	Chat(ctx context.Context, payload dto.ChatMessageDTO) (*dto.ChatResponseDTO, error)
	Summarize(ctx context.Context, clientID uint64, userID int64) (string, error)
	ResetHistory(ctx context.Context, clientID uint64, userID int64) error
}

type AIChatService struct {
	openai    *openai.Client
	cacheRepo repositories.CacheRepositoryInterface
	wlRepo    repositories.WhitelabelRepositoryInterface
	cfg       *config.OpenAIConfig
	logger    *zap.Logger
}

func NewAIChatService(
	openaiClient *openai.Client,
	cacheRepo repositories.CacheRepositoryInterface,
	wlRepo repositories.WhitelabelRepositoryInterface,
	cfg *config.OpenAIConfig,
	logger *zap.Logger,
) AIChatServiceInterface {
	return &AIChatService{
		openai:    openaiClient,
		cacheRepo: cacheRepo,
		wlRepo:    wlRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

func historyKey(clientID uint64, userID int64) string {
	return fmt.Sprintf("chat_history:%d:%d", clientID, userID)
}

func chatCounterKey(clientID uint64) string {
	return fmt.Sprintf("chat_messages:%d", clientID)
}

// Chat прогоняет сообщение через OpenAI с историей диалога из Redis.
// История обрезается до MaxHistory сообщений, системный промпт берется
// из брендинга whitelabel-клиента.
func (s *AIChatService) Chat(ctx context.Context, payload dto.ChatMessageDTO) (*dto.ChatResponseDTO, error) {
	history, err := s.loadHistory(ctx, payload.ClientID, payload.UserID)
	if err != nil {
		s.logger.Warn("Не удалось загрузить историю диалога", zap.Error(err))
		history = nil
	}

	history = append(history, openai.Message{Role: openai.RoleUser, Content: payload.Message})
	history = s.trimHistory(history)

	messages := make([]openai.Message, 0, len(history)+1)
	messages = append(messages, openai.Message{
		Role:    openai.RoleSystem,
		Content: s.systemPrompt(ctx, payload.ClientID),
	})
	messages = append(messages, history...)

	reply, tokens, err := s.openai.ChatCompletion(ctx, messages, maxResponseTokens)
	if err != nil {
		return nil, err
	}

	history = append(history, openai.Message{Role: openai.RoleAssistant, Content: reply})
	history = s.trimHistory(history)

	if err := s.saveHistory(ctx, payload.ClientID, payload.UserID, history); err != nil {
		s.logger.Warn("Не удалось сохранить историю диалога", zap.Error(err))
	}

	// Счетчик сообщений для метрик, сбрасывается при снятии снапшота.
	if _, err := s.cacheRepo.Incr(ctx, chatCounterKey(payload.ClientID)); err != nil {
		s.logger.Warn("Не удалось увеличить счетчик сообщений", zap.Error(err))
	}

	s.logger.Debug("Диалог обработан",
		zap.Uint64("client_id", payload.ClientID),
		zap.Int64("user_id", payload.UserID),
		zap.Int("tokens", tokens),
	)

	return &dto.ChatResponseDTO{Reply: reply}, nil
}

// Summarize просит модель кратко пересказать текущий диалог,
// например для передачи живому менеджеру.
func (s *AIChatService) Summarize(ctx context.Context, clientID uint64, userID int64) (string, error) {
	history, err := s.loadHistory(ctx, clientID, userID)
	if err != nil {
		return "", err
	}
	if len(history) == 0 {
		return "", apperrors.NewNotFoundError("история диалога пуста")
	}

	messages := make([]openai.Message, 0, len(history)+2)
	messages = append(messages, openai.Message{
		Role:    openai.RoleSystem,
		Content: "Ты - помощник менеджера. Кратко перескажи диалог с клиентом: что спрашивал, что ему ответили, какие остались открытые вопросы.",
	})
	messages = append(messages, history...)
	messages = append(messages, openai.Message{Role: openai.RoleUser, Content: "Составь краткое резюме этого диалога."})

	summary, _, err := s.openai.ChatCompletion(ctx, messages, maxResponseTokens)
	if err != nil {
		return "", err
	}
	return summary, nil
}

func (s *AIChatService) ResetHistory(ctx context.Context, clientID uint64, userID int64) error {
	return s.cacheRepo.Del(ctx, historyKey(clientID, userID))
}

func (s *AIChatService) systemPrompt(ctx context.Context, clientID uint64) string {
	client, err := s.wlRepo.FindClient(ctx, clientID)
	if err != nil {
		return defaultSystemPrompt
	}

	var branding struct {
		SystemPrompt string `json:"system_prompt"`
		CompanyName  string `json:"company_name"`
	}
	if err := json.Unmarshal(client.Branding, &branding); err != nil {
		return defaultSystemPrompt
	}

	if branding.SystemPrompt != "" {
		return branding.SystemPrompt
	}
	if branding.CompanyName != "" {
		return fmt.Sprintf("Ты - дружелюбный ассистент компании %s. Отвечай кратко и по делу.", branding.CompanyName)
	}
	return defaultSystemPrompt
}

func (s *AIChatService) loadHistory(ctx context.Context, clientID uint64, userID int64) ([]openai.Message, error) {
	raw, err := s.cacheRepo.Get(ctx, historyKey(clientID, userID))
	if err != nil || raw == "" {
		return nil, err
	}

	var history []openai.Message
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("ошибка парсинга истории диалога: %w", err)
	}
	return history, nil
}

func (s *AIChatService) saveHistory(ctx context.Context, clientID uint64, userID int64, history []openai.Message) error {
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return s.cacheRepo.Set(ctx, historyKey(clientID, userID), string(data), historyTTL)
}

func (s *AIChatService) trimHistory(history []openai.Message) []openai.Message {
	max := s.cfg.MaxHistory
	if max <= 0 {
		max = 20
	}
	if len(history) > max {
		return history[len(history)-max:]
	}
	return history
}
