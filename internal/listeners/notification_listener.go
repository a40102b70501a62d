// Файл: internal/listeners/notification_listener.go
package listeners

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ai-assistant/internal/events"
	"ai-assistant/internal/services"
	"ai-assistant/pkg/eventbus"
	"ai-assistant/pkg/telegram"
	"ai-assistant/pkg/websocket"
)

// NotificationListener превращает доменные события в уведомления:
// телеграм для администратора и websocket для дашборда.
type NotificationListener struct {
	notifier telegram.NotifierInterface
	hub      *websocket.Hub
	logger   *zap.Logger
}

func NewNotificationListener(
	notifier telegram.NotifierInterface,
	hub *websocket.Hub,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notifier: notifier,
		hub:      hub,
		logger:   logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe("payment.completed", l.handlePaymentCompleted)
	bus.Subscribe("payment.failed", l.handlePaymentFailed)
	bus.Subscribe("lead.created", l.handleLeadCreated)
	bus.Subscribe("lead.converted", l.handleLeadConverted)
	l.logger.Info("NotificationListener подписан на события платежей и лидов")
}

func (l *NotificationListener) notify(ctx context.Context, event, message string, data map[string]interface{}) {
	if err := l.notifier.NotifyAdmin(ctx, message); err != nil {
		l.logger.Error("Не удалось отправить телеграм-уведомление",
			zap.String("event", event), zap.Error(err))
	}

	l.hub.BroadcastEvent("notification", websocket.EventPayload{
		EventID: uuid.New().String(),
		Event:   event,
		Message: message,
		Data:    data,
	})
}

func (l *NotificationListener) handlePaymentCompleted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.PaymentCompletedEvent)
	if !ok {
		return nil
	}

	tx := e.Transaction
	message := fmt.Sprintf("Платеж #%d на %s %s через %s завершен",
		tx.ID, services.CentsToAmount(tx.AmountCents), tx.Currency, tx.Provider)

	l.notify(ctx, event.Name(), message, map[string]interface{}{
		"transaction_id": tx.ID,
		"client_id":      tx.ClientID,
		"provider":       tx.Provider,
		"amount_cents":   tx.AmountCents,
	})
	return nil
}

func (l *NotificationListener) handlePaymentFailed(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.PaymentFailedEvent)
	if !ok {
		return nil
	}

	tx := e.Transaction
	message := fmt.Sprintf("Платеж #%d через %s не прошел (статус %s)",
		tx.ID, tx.Provider, tx.Status)

	l.notify(ctx, event.Name(), message, map[string]interface{}{
		"transaction_id": tx.ID,
		"client_id":      tx.ClientID,
		"provider":       tx.Provider,
		"status":         tx.Status,
	})
	return nil
}

func (l *NotificationListener) handleLeadCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.LeadCreatedEvent)
	if !ok {
		return nil
	}

	message := fmt.Sprintf("Новый лид '%s' (источник: %s)", e.Lead.FullName, e.Lead.Source)
	l.notify(ctx, event.Name(), message, map[string]interface{}{
		"lead_id":   e.Lead.ID,
		"client_id": e.Lead.ClientID,
		"source":    e.Lead.Source,
	})
	return nil
}

func (l *NotificationListener) handleLeadConverted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.LeadConvertedEvent)
	if !ok {
		return nil
	}

	message := fmt.Sprintf("Лид '%s' сконвертирован", e.Lead.FullName)
	l.notify(ctx, event.Name(), message, map[string]interface{}{
		"lead_id":   e.Lead.ID,
		"client_id": e.Lead.ClientID,
	})
	return nil
}
