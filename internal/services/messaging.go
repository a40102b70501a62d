// Файл: internal/services/messaging.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/integrations/sendgrid"
	"ai-assistant/internal/integrations/twilio"
	"ai-assistant/internal/repositories"
	"ai-assistant/pkg/config"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/types"
	"ai-assistant/pkg/utils"
)

type MessagingServiceInterface interface {
	SendEmail(ctx context.Context, payload dto.SendEmailDTO) error
	SendSMS(ctx context.Context, payload dto.SendSMSDTO) error
	SendBulkEmail(ctx context.Context, payload dto.SendBulkDTO) (*dto.BulkResultDTO, error)
	CreateTemplate(ctx context.Context, payload dto.CreateTemplateDTO) (*entities.MessageTemplate, error)
	GetTemplates(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageTemplate, uint64, error)
	DeleteTemplate(ctx context.Context, id uint64) error
	GetMessageLogs(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageLog, uint64, error)
	GetAnalytics(ctx context.Context, clientID uint64, from, to time.Time) (*dto.MessagingAnalyticsDTO, error)
}

type MessagingService struct {
	sendgrid    *sendgrid.Client
	twilio      *twilio.Client
	messageRepo repositories.MessageRepositoryInterface
	cfg         *config.MessagingConfig
	logger      *zap.Logger
}

func NewMessagingService(
	sendgridClient *sendgrid.Client,
	twilioClient *twilio.Client,
	messageRepo repositories.MessageRepositoryInterface,
	cfg *config.MessagingConfig,
	logger *zap.Logger,
) MessagingServiceInterface {
	return &MessagingService{
		sendgrid:    sendgridClient,
		twilio:      twilioClient,
		messageRepo: messageRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// withRetry повторяет отправку до RetryAttempts раз с нарастающей паузой.
func (s *MessagingService) withRetry(ctx context.Context, send func() error) error {
	attempts := s.cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = send()
		if lastErr == nil {
			return nil
		}

		s.logger.Warn("Попытка отправки не удалась",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)

		if attempt < attempts {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

// resolveContent подставляет шаблон, если он указан.
func (s *MessagingService) resolveContent(ctx context.Context, clientID uint64, templateName, content, subject string, data map[string]interface{}) (string, string, error) {
	if templateName == "" {
		return utils.FillTemplate(content, data), subject, nil
	}

	template, err := s.messageRepo.FindTemplateByName(ctx, clientID, templateName)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", "", apperrors.NewNotFoundError("шаблон '" + templateName + "' не найден")
		}
		return "", "", err
	}

	resolvedSubject := subject
	if template.Subject != nil && *template.Subject != "" {
		resolvedSubject = utils.FillTemplate(*template.Subject, data)
	}

	return utils.FillTemplate(template.Content, data), resolvedSubject, nil
}

func (s *MessagingService) SendEmail(ctx context.Context, payload dto.SendEmailDTO) error {
	content, subject, err := s.resolveContent(ctx, payload.ClientID, payload.Template,
		payload.Content, payload.Subject, payload.TemplateData)
	if err != nil {
		return err
	}

	sendErr := s.withRetry(ctx, func() error {
		return s.sendgrid.SendEmail(ctx, payload.To, subject, content)
	})

	s.logSend(ctx, entities.MessageLog{
		ClientID:  payload.ClientID,
		Type:      entities.MessageTypeEmail,
		Recipient: payload.To,
		Subject:   &subject,
		Provider:  "sendgrid",
	}, sendErr)

	return sendErr
}

func (s *MessagingService) SendSMS(ctx context.Context, payload dto.SendSMSDTO) error {
	if !utils.IsValidPhone(utils.NormalizePhone(payload.To)) {
		return apperrors.NewBadRequestError("номер телефона должен быть в формате E.164")
	}

	content, _, err := s.resolveContent(ctx, payload.ClientID, payload.Template,
		payload.Message, "", payload.TemplateData)
	if err != nil {
		return err
	}

	to := utils.NormalizePhone(payload.To)
	sendErr := s.withRetry(ctx, func() error {
		_, err := s.twilio.SendSMS(ctx, to, content)
		return err
	})

	s.logSend(ctx, entities.MessageLog{
		ClientID:  payload.ClientID,
		Type:      entities.MessageTypeSMS,
		Recipient: to,
		Provider:  "twilio",
	}, sendErr)

	return sendErr
}

// SendBulkEmail рассылает письмо списку получателей с персональными данными
// для плейсхолдеров. Ошибки отдельных получателей собираются, рассылка
// не прерывается.
func (s *MessagingService) SendBulkEmail(ctx context.Context, payload dto.SendBulkDTO) (*dto.BulkResultDTO, error) {
	result := &dto.BulkResultDTO{Total: len(payload.Recipients)}

	for _, recipient := range payload.Recipients {
		if recipient.Email == "" {
			result.Failed++
			result.Errors = append(result.Errors, "пропущен получатель без email")
			continue
		}

		content := utils.FillTemplate(payload.Content, recipient.Data)
		subject := utils.FillTemplate(payload.Subject, recipient.Data)

		sendErr := s.withRetry(ctx, func() error {
			return s.sendgrid.SendEmail(ctx, recipient.Email, subject, content)
		})

		s.logSend(ctx, entities.MessageLog{
			ClientID:  payload.ClientID,
			Type:      entities.MessageTypeEmail,
			Recipient: recipient.Email,
			Subject:   &subject,
			Provider:  "sendgrid",
		}, sendErr)

		if sendErr != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", recipient.Email, sendErr))
		} else {
			result.Sent++
		}
	}

	return result, nil
}

func (s *MessagingService) logSend(ctx context.Context, log entities.MessageLog, sendErr error) {
	log.Success = sendErr == nil
	if sendErr != nil {
		msg := sendErr.Error()
		log.Error = &msg
	}
	if _, err := s.messageRepo.CreateMessageLog(ctx, log); err != nil {
		s.logger.Error("Ошибка записи лога отправки", zap.Error(err))
	}
}

func (s *MessagingService) CreateTemplate(ctx context.Context, payload dto.CreateTemplateDTO) (*entities.MessageTemplate, error) {
	template := entities.MessageTemplate{
		ClientID: payload.ClientID,
		Type:     payload.Type,
		Name:     payload.Name,
		Content:  payload.Content,
	}
	if payload.Subject != "" {
		template.Subject = &payload.Subject
	}

	newID, err := s.messageRepo.CreateTemplate(ctx, template)
	if err != nil {
		return nil, err
	}
	return s.messageRepo.FindTemplate(ctx, newID)
}

func (s *MessagingService) GetTemplates(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageTemplate, uint64, error) {
	return s.messageRepo.GetTemplates(ctx, clientID, filter)
}

func (s *MessagingService) DeleteTemplate(ctx context.Context, id uint64) error {
	return s.messageRepo.DeleteTemplate(ctx, id)
}

func (s *MessagingService) GetMessageLogs(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageLog, uint64, error) {
	return s.messageRepo.GetMessageLogs(ctx, clientID, filter)
}

func (s *MessagingService) GetAnalytics(ctx context.Context, clientID uint64, from, to time.Time) (*dto.MessagingAnalyticsDTO, error) {
	stats, err := s.messageRepo.GetStats(ctx, clientID, from, to)
	if err != nil {
		return nil, err
	}

	analytics := &dto.MessagingAnalyticsDTO{
		EmailsTotal: stats.EmailsSent + stats.EmailsFail,
		SMSTotal:    stats.SMSSent + stats.SMSFail,
	}

	total := analytics.EmailsTotal + analytics.SMSTotal
	if total > 0 {
		analytics.SuccessRate = float64(stats.EmailsSent+stats.SMSSent) / float64(total) * 100
	}

	return analytics, nil
}
