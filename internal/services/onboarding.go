// Файл: internal/services/onboarding.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/types"
)

// Порядок шагов онбординга. "done" не шаг, а финальное состояние.
var onboardingSteps = []string{
	entities.OnboardingStepProfile,
	entities.OnboardingStepIntegrations,
	entities.OnboardingStepPayment,
}

// Напоминание шлём клиентам, не двигавшимся дольше этого срока.
const stalledAfter = 72 * time.Hour

// AdminNotifier - отправка служебных уведомлений (телеграм-бот).
type AdminNotifier interface {
	NotifyAdmin(ctx context.Context, text string) error
	NotifyChat(ctx context.Context, chatID int64, text string) error
}

type OnboardingServiceInterface interface {
	Init(ctx context.Context, payload dto.InitOnboardingDTO) (*dto.OnboardingProgressDTO, error)
	GetProgress(ctx context.Context, clientID uint64) (*dto.OnboardingProgressDTO, error)
	UpdateStep(ctx context.Context, clientID uint64, payload dto.UpdateStepDTO) (*dto.OnboardingProgressDTO, error)
	SendReminders(ctx context.Context) error

	CreateTicket(ctx context.Context, payload dto.CreateTicketDTO) (*entities.SupportTicket, error)
	GetTickets(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.SupportTicket, uint64, error)
	ResolveTicket(ctx context.Context, id uint64) error
}

type OnboardingService struct {
	onboardingRepo repositories.OnboardingRepositoryInterface
	userRepo       repositories.UserRepositoryInterface
	notifier       AdminNotifier
	logger         *zap.Logger
}

func NewOnboardingService(
	onboardingRepo repositories.OnboardingRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	notifier AdminNotifier,
	logger *zap.Logger,
) OnboardingServiceInterface {
	return &OnboardingService{
		onboardingRepo: onboardingRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

func toProgressDTO(progress *entities.OnboardingProgress) *dto.OnboardingProgressDTO {
	completed := progress.CompletedAt != nil
	percent := len(progress.CompletedSteps) * 100 / len(onboardingSteps)
	if completed {
		percent = 100
	}

	return &dto.OnboardingProgressDTO{
		ClientID:       progress.ClientID,
		CurrentStep:    progress.CurrentStep,
		CompletedSteps: progress.CompletedSteps,
		PercentDone:    percent,
		Completed:      completed,
	}
}

// Init создает запись прогресса. Повторный вызов возвращает
// существующий прогресс без изменений.
func (s *OnboardingService) Init(ctx context.Context, payload dto.InitOnboardingDTO) (*dto.OnboardingProgressDTO, error) {
	existing, err := s.onboardingRepo.FindProgress(ctx, payload.ClientID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return toProgressDTO(existing), nil
	}

	progress := entities.OnboardingProgress{
		ClientID:       payload.ClientID,
		CurrentStep:    entities.OnboardingStepProfile,
		CompletedSteps: []string{},
	}
	if _, err := s.onboardingRepo.CreateProgress(ctx, progress); err != nil {
		return nil, err
	}

	s.logger.Info("Онбординг начат", zap.Uint64("client_id", payload.ClientID))

	created, err := s.onboardingRepo.FindProgress(ctx, payload.ClientID)
	if err != nil {
		return nil, err
	}
	return toProgressDTO(created), nil
}

func (s *OnboardingService) GetProgress(ctx context.Context, clientID uint64) (*dto.OnboardingProgressDTO, error) {
	progress, err := s.onboardingRepo.FindProgress(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return toProgressDTO(progress), nil
}

// UpdateStep завершает текущий шаг. Шаги идут строго по порядку:
// нельзя завершить payment, не пройдя integrations.
func (s *OnboardingService) UpdateStep(ctx context.Context, clientID uint64, payload dto.UpdateStepDTO) (*dto.OnboardingProgressDTO, error) {
	progress, err := s.onboardingRepo.FindProgress(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if progress.CompletedAt != nil {
		return nil, apperrors.NewBadRequestError("онбординг уже завершен")
	}
	if payload.StepID == entities.OnboardingStepDone {
		return nil, apperrors.NewBadRequestError("шаг 'done' выставляется автоматически")
	}
	if payload.StepID != progress.CurrentStep {
		return nil, apperrors.NewBadRequestError(
			fmt.Sprintf("шаги идут по порядку: сейчас ожидается '%s'", progress.CurrentStep))
	}

	progress.CompletedSteps = append(progress.CompletedSteps, payload.StepID)

	next := nextStep(payload.StepID)
	if next == entities.OnboardingStepDone {
		now := time.Now()
		progress.CompletedAt = &now
	}
	progress.CurrentStep = next

	if err := s.onboardingRepo.UpdateProgress(ctx, clientID, *progress); err != nil {
		return nil, err
	}

	if next == entities.OnboardingStepDone {
		s.logger.Info("Онбординг завершен", zap.Uint64("client_id", clientID))
		if s.notifier != nil {
			text := fmt.Sprintf("Клиент #%d завершил онбординг", clientID)
			if err := s.notifier.NotifyAdmin(ctx, text); err != nil {
				s.logger.Warn("не удалось уведомить администратора", zap.Error(err))
			}
		}
	}

	return toProgressDTO(progress), nil
}

func nextStep(current string) string {
	for i, step := range onboardingSteps {
		if step == current {
			if i+1 < len(onboardingSteps) {
				return onboardingSteps[i+1]
			}
			return entities.OnboardingStepDone
		}
	}
	return entities.OnboardingStepDone
}

// SendReminders находит застрявших клиентов и пишет их пользователям
// в телеграм. Вызывается планировщиком.
func (s *OnboardingService) SendReminders(ctx context.Context) error {
	stalled, err := s.onboardingRepo.GetStalled(ctx, stalledAfter)
	if err != nil {
		return err
	}

	for _, progress := range stalled {
		if err := s.remind(ctx, progress); err != nil {
			s.logger.Warn("не удалось отправить напоминание",
				zap.Uint64("client_id", progress.ClientID), zap.Error(err))
			continue
		}
		if err := s.onboardingRepo.TouchReminder(ctx, progress.ClientID); err != nil {
			s.logger.Warn("не удалось отметить напоминание",
				zap.Uint64("client_id", progress.ClientID), zap.Error(err))
		}
	}

	return nil
}

func (s *OnboardingService) remind(ctx context.Context, progress entities.OnboardingProgress) error {
	if s.notifier == nil {
		return nil
	}

	text := fmt.Sprintf(
		"Вы остановились на шаге '%s' настройки ассистента. Продолжите, чтобы открыть все функции.",
		progress.CurrentStep)

	users, _, err := s.userRepo.GetUsers(ctx, types.Filter{
		Filter: map[string]interface{}{"client_id": fmt.Sprintf("%d", progress.ClientID)},
	})
	if err != nil {
		return err
	}

	sent := false
	for _, user := range users {
		if !user.TelegramChatID.Valid {
			continue
		}
		if err := s.notifier.NotifyChat(ctx, user.TelegramChatID.Int64, text); err != nil {
			s.logger.Warn("телеграм недоступен",
				zap.Int64("chat_id", user.TelegramChatID.Int64), zap.Error(err))
			continue
		}
		sent = true
	}

	if !sent {
		return s.notifier.NotifyAdmin(ctx,
			fmt.Sprintf("Клиент #%d застрял на шаге '%s'", progress.ClientID, progress.CurrentStep))
	}
	return nil
}

func (s *OnboardingService) CreateTicket(ctx context.Context, payload dto.CreateTicketDTO) (*entities.SupportTicket, error) {
	ticket := entities.SupportTicket{
		ClientID:       payload.ClientID,
		TelegramChatID: payload.TelegramChatID,
		Topic:          payload.Topic,
		Message:        payload.Message,
		Status:         entities.TicketStatusOpen,
	}

	newID, err := s.onboardingRepo.CreateTicket(ctx, ticket)
	if err != nil {
		return nil, err
	}
	ticket.ID = newID

	if s.notifier != nil {
		text := fmt.Sprintf("Новый тикет #%d от клиента #%d: %s", newID, payload.ClientID, payload.Topic)
		if err := s.notifier.NotifyAdmin(ctx, text); err != nil {
			s.logger.Warn("не удалось уведомить администратора о тикете", zap.Error(err))
		}
	}

	return &ticket, nil
}

func (s *OnboardingService) GetTickets(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.SupportTicket, uint64, error) {
	return s.onboardingRepo.GetTickets(ctx, clientID, filter)
}

func (s *OnboardingService) ResolveTicket(ctx context.Context, id uint64) error {
	return s.onboardingRepo.ResolveTicket(ctx, id)
}
