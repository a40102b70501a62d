// Файл: internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ai-assistant/internal/services"
)

// Таймаут одного фонового прохода.
const jobTimeout = 5 * time.Minute

// Scheduler запускает фоновые задачи: поллинг платежей, шаги
// кампаний, срезы метрик и напоминания об онбординге.
type Scheduler struct {
	cron *cron.Cron

	payments   services.PaymentServiceInterface
	nurturing  services.NurturingServiceInterface
	analytics  services.AnalyticsServiceInterface
	onboarding services.OnboardingServiceInterface

	paymentPollInterval time.Duration
	logger              *zap.Logger
}

func New(
	payments services.PaymentServiceInterface,
	nurturing services.NurturingServiceInterface,
	analytics services.AnalyticsServiceInterface,
	onboarding services.OnboardingServiceInterface,
	paymentPollInterval time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cron:                cron.New(),
		payments:            payments,
		nurturing:           nurturing,
		analytics:           analytics,
		onboarding:          onboarding,
		paymentPollInterval: paymentPollInterval,
		logger:              logger.Named("scheduler"),
	}
}

func (s *Scheduler) Start() error {
	jobs := []struct {
		spec string
		name string
		run  func(ctx context.Context) error
	}{
		{fmt.Sprintf("@every %s", s.paymentPollInterval), "payments.poll", s.payments.PollPending},
		{"@every 1m", "nurturing.process", s.nurturing.ProcessDue},
		{"@every 1h", "onboarding.reminders", s.onboarding.SendReminders},
		// Срезы метрик собираем ночью, когда нагрузка минимальна.
		{"0 2 * * *", "analytics.snapshots", s.analytics.CollectSnapshots},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()

			if err := job.run(ctx); err != nil {
				s.logger.Error("фоновая задача завершилась с ошибкой",
					zap.String("job", job.name), zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("ошибка регистрации задачи %s: %w", job.name, err)
		}
	}

	s.cron.Start()
	s.logger.Info("Планировщик запущен", zap.Int("jobs", len(jobs)))
	return nil
}

// Stop останавливает планировщик и дожидается активных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Планировщик остановлен")
}
