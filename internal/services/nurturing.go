// Файл: internal/services/nurturing.go
package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/types"
	"ai-assistant/pkg/utils"
)

// Шаблоны прогревочных кампаний.
const (
	CampaignTemplateWelcome      = "welcome"
	CampaignTemplateReEngagement = "re_engagement"
)

// campaignStepDef - шаг шаблона кампании. Delay отсчитывается от
// предыдущего шага; в теле поддерживаются плейсхолдеры {{name}} и
// {{company}}.
type campaignStepDef struct {
	Channel string
	Delay   time.Duration
	Subject string
	Body    string
}

var campaignTemplates = map[string][]campaignStepDef{
	CampaignTemplateWelcome: {
		{
			Channel: entities.StepChannelEmail,
			Delay:   0,
			Subject: "Добро пожаловать, {{name}}!",
			Body:    "Здравствуйте, {{name}}! Спасибо за интерес к нашему AI-ассистенту. Мы поможем вам автоматизировать общение с клиентами.",
		},
		{
			Channel: entities.StepChannelEmail,
			Delay:   48 * time.Hour,
			Subject: "{{name}}, вот что умеет ваш ассистент",
			Body:    "AI-чат, синхронизация с CRM, приём платежей и рассылки - всё в одном месте. Ответьте на это письмо, если нужна помощь с настройкой.",
		},
		{
			Channel: entities.StepChannelSMS,
			Delay:   96 * time.Hour,
			Body:    "{{name}}, ваш AI-ассистент готов к работе. Напишите нам, если остались вопросы.",
		},
	},
	CampaignTemplateReEngagement: {
		{
			Channel: entities.StepChannelEmail,
			Delay:   0,
			Subject: "{{name}}, мы скучаем по вам",
			Body:    "Давно не виделись! За это время мы добавили новые интеграции и улучшили AI-ответы. Загляните в личный кабинет.",
		},
		{
			Channel: entities.StepChannelEmail,
			Delay:   72 * time.Hour,
			Subject: "Специальное предложение для {{name}}",
			Body:    "Вернитесь в течение недели и получите месяц тарифа Pro бесплатно.",
		},
	},
}

type NurturingServiceInterface interface {
	StartCampaign(ctx context.Context, payload dto.StartCampaignDTO) (*entities.Campaign, error)
	PauseCampaign(ctx context.Context, id uint64) error
	ResumeCampaign(ctx context.Context, id uint64) error
	GetCampaigns(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Campaign, uint64, error)
	GetProgress(ctx context.Context, id uint64) (*dto.CampaignProgressDTO, error)
	ProcessDue(ctx context.Context) error
}

type NurturingService struct {
	campaignRepo repositories.CampaignRepositoryInterface
	leadRepo     repositories.LeadRepositoryInterface
	messaging    MessagingServiceInterface
	logger       *zap.Logger
}

func NewNurturingService(
	campaignRepo repositories.CampaignRepositoryInterface,
	leadRepo repositories.LeadRepositoryInterface,
	messaging MessagingServiceInterface,
	logger *zap.Logger,
) NurturingServiceInterface {
	return &NurturingService{
		campaignRepo: campaignRepo,
		leadRepo:     leadRepo,
		messaging:    messaging,
		logger:       logger,
	}
}

// StartCampaign запускает кампанию по шаблону. На одного лида может
// быть только одна активная кампания.
func (s *NurturingService) StartCampaign(ctx context.Context, payload dto.StartCampaignDTO) (*entities.Campaign, error) {
	steps, ok := campaignTemplates[payload.Template]
	if !ok {
		return nil, apperrors.NewBadRequestError("неизвестный шаблон кампании: " + payload.Template)
	}

	lead, err := s.leadRepo.FindLead(ctx, payload.LeadID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("лид не найден")
		}
		return nil, err
	}
	if lead.ClientID != payload.ClientID {
		return nil, apperrors.NewNotFoundError("лид не найден")
	}

	existing, err := s.campaignRepo.FindActiveByLead(ctx, payload.LeadID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewBadRequestError("у лида уже есть активная кампания")
	}

	firstRun := time.Now().Add(steps[0].Delay)
	campaign := entities.Campaign{
		ClientID:    payload.ClientID,
		LeadID:      payload.LeadID,
		Template:    payload.Template,
		Status:      entities.CampaignStatusActive,
		CurrentStep: 0,
		NextRunAt:   &firstRun,
	}

	newID, err := s.campaignRepo.CreateCampaign(ctx, campaign)
	if err != nil {
		return nil, err
	}

	if lead.Status == entities.LeadStatusNew {
		if err := s.leadRepo.UpdateLeadStatus(ctx, lead.ID, entities.LeadStatusNurturing); err != nil {
			s.logger.Warn("не удалось перевести лида в nurturing",
				zap.Uint64("lead_id", lead.ID), zap.Error(err))
		}
	}

	s.logger.Info("Кампания запущена",
		zap.Uint64("campaign_id", newID),
		zap.Uint64("lead_id", payload.LeadID),
		zap.String("template", payload.Template))

	return s.campaignRepo.FindCampaign(ctx, newID)
}

func (s *NurturingService) PauseCampaign(ctx context.Context, id uint64) error {
	campaign, err := s.campaignRepo.FindCampaign(ctx, id)
	if err != nil {
		return err
	}
	if campaign.Status != entities.CampaignStatusActive {
		return apperrors.NewBadRequestError("можно приостановить только активную кампанию")
	}
	return s.campaignRepo.UpdateCampaignStatus(ctx, id, entities.CampaignStatusPaused)
}

func (s *NurturingService) ResumeCampaign(ctx context.Context, id uint64) error {
	campaign, err := s.campaignRepo.FindCampaign(ctx, id)
	if err != nil {
		return err
	}
	if campaign.Status != entities.CampaignStatusPaused {
		return apperrors.NewBadRequestError("можно возобновить только приостановленную кампанию")
	}

	if err := s.campaignRepo.UpdateCampaignStatus(ctx, id, entities.CampaignStatusActive); err != nil {
		return err
	}
	// После паузы следующий шаг выполняется сразу.
	now := time.Now()
	return s.campaignRepo.AdvanceCampaign(ctx, id, campaign.CurrentStep, &now)
}

func (s *NurturingService) GetCampaigns(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Campaign, uint64, error) {
	return s.campaignRepo.GetCampaigns(ctx, clientID, filter)
}

func (s *NurturingService) GetProgress(ctx context.Context, id uint64) (*dto.CampaignProgressDTO, error) {
	campaign, err := s.campaignRepo.FindCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	executed, err := s.campaignRepo.GetSteps(ctx, id)
	if err != nil {
		return nil, err
	}

	progress := &dto.CampaignProgressDTO{
		ID:          campaign.ID,
		LeadID:      campaign.LeadID,
		Template:    campaign.Template,
		Status:      campaign.Status,
		CurrentStep: campaign.CurrentStep,
		TotalSteps:  len(campaignTemplates[campaign.Template]),
		NextRunAt:   campaign.NextRunAt,
		Steps:       make([]dto.StepResultDTO, 0, len(executed)),
	}
	for _, step := range executed {
		progress.Steps = append(progress.Steps, dto.StepResultDTO{
			StepIndex:  step.StepIndex,
			Channel:    step.Channel,
			Subject:    step.Subject,
			ExecutedAt: step.ExecutedAt,
			Success:    step.Success,
		})
	}

	return progress, nil
}

// ProcessDue выполняет все кампании, у которых настало время шага.
// Вызывается планировщиком.
func (s *NurturingService) ProcessDue(ctx context.Context) error {
	due, err := s.campaignRepo.GetDue(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, campaign := range due {
		if err := s.executeStep(ctx, campaign); err != nil {
			s.logger.Error("ошибка выполнения шага кампании",
				zap.Uint64("campaign_id", campaign.ID), zap.Error(err))
		}
	}

	return nil
}

func (s *NurturingService) executeStep(ctx context.Context, campaign entities.Campaign) error {
	steps, ok := campaignTemplates[campaign.Template]
	if !ok || campaign.CurrentStep >= len(steps) {
		return s.campaignRepo.UpdateCampaignStatus(ctx, campaign.ID, entities.CampaignStatusCompleted)
	}

	lead, err := s.leadRepo.FindLead(ctx, campaign.LeadID)
	if err != nil {
		// Лид удалён, кампания продолжаться не может.
		return s.campaignRepo.UpdateCampaignStatus(ctx, campaign.ID, entities.CampaignStatusCompleted)
	}

	// Сконвертированного лида больше не прогреваем.
	if lead.Status == entities.LeadStatusConverted || lead.Status == entities.LeadStatusLost {
		return s.campaignRepo.UpdateCampaignStatus(ctx, campaign.ID, entities.CampaignStatusCompleted)
	}

	stepDef := steps[campaign.CurrentStep]
	sendErr := s.deliver(ctx, campaign, lead, stepDef)

	record := entities.CampaignStep{
		CampaignID: campaign.ID,
		StepIndex:  campaign.CurrentStep,
		Channel:    stepDef.Channel,
		Subject:    stepDef.Subject,
		Body:       stepDef.Body,
	}
	stepID, err := s.campaignRepo.CreateStep(ctx, record)
	if err != nil {
		return err
	}
	if err := s.campaignRepo.MarkStepExecuted(ctx, stepID, sendErr == nil); err != nil {
		return err
	}

	nextStep := campaign.CurrentStep + 1
	if nextStep >= len(steps) {
		s.logger.Info("Кампания завершена", zap.Uint64("campaign_id", campaign.ID))
		return s.campaignRepo.UpdateCampaignStatus(ctx, campaign.ID, entities.CampaignStatusCompleted)
	}

	nextRun := time.Now().Add(steps[nextStep].Delay)
	return s.campaignRepo.AdvanceCampaign(ctx, campaign.ID, nextStep, &nextRun)
}

func (s *NurturingService) deliver(ctx context.Context, campaign entities.Campaign, lead *entities.Lead, stepDef campaignStepDef) error {
	data := map[string]interface{}{
		"name": lead.FullName,
	}
	if lead.Company != nil {
		data["company"] = *lead.Company
	}

	switch stepDef.Channel {
	case entities.StepChannelEmail:
		if lead.Email == nil {
			return apperrors.NewBadRequestError("у лида нет email")
		}
		return s.messaging.SendEmail(ctx, dto.SendEmailDTO{
			ClientID:     campaign.ClientID,
			To:           *lead.Email,
			Subject:      utils.FillTemplate(stepDef.Subject, data),
			Content:      stepDef.Body,
			TemplateData: data,
		})
	case entities.StepChannelSMS:
		if lead.PhoneNumber == nil {
			return apperrors.NewBadRequestError("у лида нет номера телефона")
		}
		return s.messaging.SendSMS(ctx, dto.SendSMSDTO{
			ClientID:     campaign.ClientID,
			To:           *lead.PhoneNumber,
			Message:      stepDef.Body,
			TemplateData: data,
		})
	default:
		return apperrors.NewBadRequestError("неподдерживаемый канал: " + stepDef.Channel)
	}
}
