// Файл: internal/services/onboarding_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
)

func newOnboardingForTest(repo *fakeOnboardingRepo, users *fakeUserRepo, notifier *fakeNotifier) OnboardingServiceInterface {
	return NewOnboardingService(repo, users, notifier, zap.NewNop())
}

func TestOnboardingInit(t *testing.T) {
	repo := newFakeOnboardingRepo()
	svc := newOnboardingForTest(repo, newFakeUserRepo(), newFakeNotifier())

	progress, err := svc.Init(context.Background(), dto.InitOnboardingDTO{ClientID: 1})
	require.NoError(t, err)
	assert.Equal(t, entities.OnboardingStepProfile, progress.CurrentStep)
	assert.Equal(t, 0, progress.PercentDone)
	assert.False(t, progress.Completed)

	// Повторный Init не сбрасывает прогресс.
	_, err = svc.UpdateStep(context.Background(), 1, dto.UpdateStepDTO{StepID: entities.OnboardingStepProfile})
	require.NoError(t, err)

	again, err := svc.Init(context.Background(), dto.InitOnboardingDTO{ClientID: 1})
	require.NoError(t, err)
	assert.Equal(t, entities.OnboardingStepIntegrations, again.CurrentStep)
}

func TestOnboardingStepsInOrder(t *testing.T) {
	repo := newFakeOnboardingRepo()
	notifier := newFakeNotifier()
	svc := newOnboardingForTest(repo, newFakeUserRepo(), notifier)

	_, err := svc.Init(context.Background(), dto.InitOnboardingDTO{ClientID: 1})
	require.NoError(t, err)

	// Нельзя перескочить через шаг.
	_, err = svc.UpdateStep(context.Background(), 1, dto.UpdateStepDTO{StepID: entities.OnboardingStepPayment})
	assert.Error(t, err)

	// "done" руками не выставляется.
	_, err = svc.UpdateStep(context.Background(), 1, dto.UpdateStepDTO{StepID: entities.OnboardingStepDone})
	assert.Error(t, err)

	progress, err := svc.UpdateStep(context.Background(), 1, dto.UpdateStepDTO{StepID: entities.OnboardingStepProfile})
	require.NoError(t, err)
	assert.Equal(t, entities.OnboardingStepIntegrations, progress.CurrentStep)
	assert.Equal(t, 33, progress.PercentDone)

	_, err = svc.UpdateStep(context.Background(), 1, dto.UpdateStepDTO{StepID: entities.OnboardingStepIntegrations})
	require.NoError(t, err)

	progress, err = svc.UpdateStep(context.Background(), 1, dto.UpdateStepDTO{StepID: entities.OnboardingStepPayment})
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.Equal(t, 100, progress.PercentDone)
	assert.Equal(t, entities.OnboardingStepDone, progress.CurrentStep)

	// Администратор получает уведомление о завершении.
	require.Len(t, notifier.adminMessages, 1)
	assert.Contains(t, notifier.adminMessages[0], "завершил онбординг")

	// После завершения шаги менять нельзя.
	_, err = svc.UpdateStep(context.Background(), 1, dto.UpdateStepDTO{StepID: entities.OnboardingStepProfile})
	assert.Error(t, err)
}

func TestCreateTicketNotifiesAdmin(t *testing.T) {
	repo := newFakeOnboardingRepo()
	notifier := newFakeNotifier()
	svc := newOnboardingForTest(repo, newFakeUserRepo(), notifier)

	ticket, err := svc.CreateTicket(context.Background(), dto.CreateTicketDTO{
		ClientID:       5,
		TelegramChatID: 1234,
		Topic:          "Не подключается CRM",
		Message:        "При синхронизации выдает ошибку авторизации",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TicketStatusOpen, ticket.Status)
	assert.NotZero(t, ticket.ID)

	require.Len(t, notifier.adminMessages, 1)
	assert.Contains(t, notifier.adminMessages[0], "Не подключается CRM")
}

func TestResolveTicket(t *testing.T) {
	repo := newFakeOnboardingRepo()
	svc := newOnboardingForTest(repo, newFakeUserRepo(), newFakeNotifier())

	ticket, err := svc.CreateTicket(context.Background(), dto.CreateTicketDTO{
		ClientID: 5, TelegramChatID: 1234, Topic: "Вопрос", Message: "Как сменить тариф?",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ResolveTicket(context.Background(), ticket.ID))
	assert.True(t, repo.resolved[ticket.ID])
}
