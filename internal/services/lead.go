// Файл: internal/services/lead.go
package services

import (
	"context"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/events"
	"ai-assistant/internal/repositories"
	"ai-assistant/pkg/eventbus"
	"ai-assistant/pkg/types"
	"ai-assistant/pkg/utils"
)

type LeadServiceInterface interface {
	GetLeads(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Lead, uint64, error)
	FindLead(ctx context.Context, id uint64) (*entities.Lead, error)
	CreateLead(ctx context.Context, payload dto.CreateLeadDTO) (*entities.Lead, error)
	UpdateLead(ctx context.Context, id uint64, payload dto.UpdateLeadDTO) (*entities.Lead, error)
	DeleteLead(ctx context.Context, id uint64) error
}

type LeadService struct {
	leadRepo repositories.LeadRepositoryInterface
	bus      *eventbus.Bus
	logger   *zap.Logger
}

func NewLeadService(
	leadRepo repositories.LeadRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) LeadServiceInterface {
	return &LeadService{
		leadRepo: leadRepo,
		bus:      bus,
		logger:   logger,
	}
}

func (s *LeadService) GetLeads(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Lead, uint64, error) {
	return s.leadRepo.GetLeads(ctx, clientID, filter)
}

func (s *LeadService) FindLead(ctx context.Context, id uint64) (*entities.Lead, error) {
	return s.leadRepo.FindLead(ctx, id)
}

func (s *LeadService) CreateLead(ctx context.Context, payload dto.CreateLeadDTO) (*entities.Lead, error) {
	lead := entities.Lead{
		ClientID: payload.ClientID,
		FullName: payload.FullName,
		Source:   payload.Source,
		Status:   entities.LeadStatusNew,
	}
	if payload.Email != "" {
		lead.Email = &payload.Email
	}
	if payload.PhoneNumber != "" {
		phone := utils.NormalizePhone(payload.PhoneNumber)
		lead.PhoneNumber = &phone
	}
	if payload.Company != "" {
		lead.Company = &payload.Company
	}
	if payload.Notes != "" {
		lead.Notes = &payload.Notes
	}

	newID, err := s.leadRepo.CreateLead(ctx, lead)
	if err != nil {
		return nil, err
	}

	created, err := s.leadRepo.FindLead(ctx, newID)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.LeadCreatedEvent{Lead: *created})
	s.logger.Info("Создан новый лид",
		zap.Uint64("lead_id", created.ID),
		zap.String("source", created.Source),
	)

	return created, nil
}

func (s *LeadService) UpdateLead(ctx context.Context, id uint64, payload dto.UpdateLeadDTO) (*entities.Lead, error) {
	lead, err := s.leadRepo.FindLead(ctx, id)
	if err != nil {
		return nil, err
	}

	wasConverted := lead.Status == entities.LeadStatusConverted

	if payload.FullName.Valid {
		lead.FullName = payload.FullName.String
	}
	if payload.Email.Valid {
		lead.Email = &payload.Email.String
	}
	if payload.PhoneNumber.Valid {
		phone := utils.NormalizePhone(payload.PhoneNumber.String)
		lead.PhoneNumber = &phone
	}
	if payload.Company.Valid {
		lead.Company = &payload.Company.String
	}
	if payload.Status.Valid {
		lead.Status = payload.Status.String
	}
	if payload.Notes.Valid {
		lead.Notes = &payload.Notes.String
	}

	if err := s.leadRepo.UpdateLead(ctx, id, *lead); err != nil {
		return nil, err
	}

	updated, err := s.leadRepo.FindLead(ctx, id)
	if err != nil {
		return nil, err
	}

	if !wasConverted && updated.Status == entities.LeadStatusConverted {
		s.bus.Publish(ctx, events.LeadConvertedEvent{Lead: *updated})
	}

	return updated, nil
}

func (s *LeadService) DeleteLead(ctx context.Context, id uint64) error {
	return s.leadRepo.DeleteLead(ctx, id)
}
