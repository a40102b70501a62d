// Файл: internal/services/crm.go
package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/integrations/gohighlevel"
	"ai-assistant/internal/integrations/hubspot"
	"ai-assistant/internal/integrations/klaviyo"
	"ai-assistant/internal/integrations/salesforce"
	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/types"
)

// Имена CRM-платформ.
const (
	PlatformHubSpot     = "hubspot"
	PlatformSalesforce  = "salesforce"
	PlatformGoHighLevel = "gohighlevel"
	PlatformKlaviyo     = "klaviyo"
)

var allCrmPlatforms = []string{PlatformHubSpot, PlatformSalesforce, PlatformGoHighLevel, PlatformKlaviyo}

type CrmServiceInterface interface {
	SyncContact(ctx context.Context, payload dto.SyncContactDTO) ([]dto.SyncResultDTO, error)
	SearchContact(ctx context.Context, clientID uint64, email string) (map[string]*dto.ContactDTO, error)
	PlatformStatuses(ctx context.Context) []dto.PlatformStatusDTO
	GetSyncRecords(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.CrmSyncRecord, uint64, error)
}

type CrmService struct {
	hubspot     *hubspot.Client
	salesforce  *salesforce.Client
	gohighlevel *gohighlevel.Client
	klaviyo     *klaviyo.Client
	syncRepo    repositories.CrmSyncRepositoryInterface
	logger      *zap.Logger
}

func NewCrmService(
	hubspotClient *hubspot.Client,
	salesforceClient *salesforce.Client,
	gohighlevelClient *gohighlevel.Client,
	klaviyoClient *klaviyo.Client,
	syncRepo repositories.CrmSyncRepositoryInterface,
	logger *zap.Logger,
) CrmServiceInterface {
	return &CrmService{
		hubspot:     hubspotClient,
		salesforce:  salesforceClient,
		gohighlevel: gohighlevelClient,
		klaviyo:     klaviyoClient,
		syncRepo:    syncRepo,
		logger:      logger,
	}
}

// SyncContact отправляет контакт на все указанные платформы параллельно.
// Ошибка одной платформы не останавливает остальные.
func (s *CrmService) SyncContact(ctx context.Context, payload dto.SyncContactDTO) ([]dto.SyncResultDTO, error) {
	platforms := payload.Platforms
	if len(platforms) == 0 {
		platforms = allCrmPlatforms
	}

	results := make([]dto.SyncResultDTO, len(platforms))
	var wg sync.WaitGroup

	for i, platform := range platforms {
		wg.Add(1)
		go func(i int, platform string) {
			defer wg.Done()

			remoteID, err := s.syncOne(ctx, platform, payload.Contact)

			result := dto.SyncResultDTO{Platform: platform, Success: err == nil}
			record := entities.CrmSyncRecord{
				ClientID: payload.ClientID,
				Email:    payload.Contact.Email,
				Platform: platform,
				Success:  err == nil,
			}
			if err != nil {
				msg := err.Error()
				result.Error = &msg
				record.Error = &msg
				s.logger.Warn("Ошибка синхронизации с CRM",
					zap.String("platform", platform),
					zap.String("email", payload.Contact.Email),
					zap.Error(err),
				)
			} else if remoteID != "" {
				result.RemoteID = &remoteID
				record.RemoteID = &remoteID
			}

			if _, err := s.syncRepo.CreateSyncRecord(ctx, record); err != nil {
				s.logger.Error("Ошибка записи результата синхронизации", zap.Error(err))
			}

			results[i] = result
		}(i, platform)
	}

	wg.Wait()
	return results, nil
}

func (s *CrmService) syncOne(ctx context.Context, platform string, contact dto.ContactDTO) (string, error) {
	switch platform {
	case PlatformHubSpot:
		properties := map[string]string{
			"email":     contact.Email,
			"firstname": contact.FirstName,
			"lastname":  contact.LastName,
			"phone":     contact.PhoneNumber,
			"company":   contact.Company,
		}
		for k, v := range contact.Properties {
			properties[k] = v
		}

		// HubSpot не делает upsert по email, сначала ищем.
		existing, err := s.hubspot.SearchByEmail(ctx, contact.Email)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return existing.ID, nil
		}

		created, err := s.hubspot.CreateContact(ctx, properties)
		if err != nil {
			return "", err
		}
		return created.ID, nil

	case PlatformSalesforce:
		existing, err := s.salesforce.QueryByEmail(ctx, contact.Email)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return existing.ID, nil
		}

		return s.salesforce.CreateContact(ctx, salesforce.Contact{
			Email:     contact.Email,
			FirstName: contact.FirstName,
			LastName:  contact.LastName,
			Phone:     contact.PhoneNumber,
		})

	case PlatformGoHighLevel:
		upserted, err := s.gohighlevel.UpsertContact(ctx, gohighlevel.Contact{
			Email:     contact.Email,
			FirstName: contact.FirstName,
			LastName:  contact.LastName,
			Phone:     contact.PhoneNumber,
		})
		if err != nil {
			return "", err
		}
		return upserted.ID, nil

	case PlatformKlaviyo:
		existing, err := s.klaviyo.FindByEmail(ctx, contact.Email)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return existing.ID, nil
		}

		profile, err := s.klaviyo.CreateProfile(ctx, klaviyo.ProfileAttributes{
			Email:       contact.Email,
			FirstName:   contact.FirstName,
			LastName:    contact.LastName,
			PhoneNumber: contact.PhoneNumber,
		})
		if err != nil {
			return "", err
		}
		return profile.ID, nil
	}

	return "", apperrors.NewBadRequestError("неизвестная CRM-платформа: " + platform)
}

// SearchContact ищет контакт по email на всех платформах.
func (s *CrmService) SearchContact(ctx context.Context, clientID uint64, email string) (map[string]*dto.ContactDTO, error) {
	found := make(map[string]*dto.ContactDTO, len(allCrmPlatforms))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, platform := range allCrmPlatforms {
		wg.Add(1)
		go func(platform string) {
			defer wg.Done()

			contact, err := s.searchOne(ctx, platform, email)
			if err != nil {
				s.logger.Warn("Ошибка поиска контакта в CRM",
					zap.String("platform", platform),
					zap.Error(err),
				)
				return
			}

			mu.Lock()
			found[platform] = contact
			mu.Unlock()
		}(platform)
	}

	wg.Wait()
	return found, nil
}

func (s *CrmService) searchOne(ctx context.Context, platform, email string) (*dto.ContactDTO, error) {
	switch platform {
	case PlatformHubSpot:
		contact, err := s.hubspot.SearchByEmail(ctx, email)
		if err != nil || contact == nil {
			return nil, err
		}
		return &dto.ContactDTO{
			Email:     contact.Properties["email"],
			FirstName: contact.Properties["firstname"],
			LastName:  contact.Properties["lastname"],
		}, nil

	case PlatformSalesforce:
		contact, err := s.salesforce.QueryByEmail(ctx, email)
		if err != nil || contact == nil {
			return nil, err
		}
		return &dto.ContactDTO{
			Email:       contact.Email,
			FirstName:   contact.FirstName,
			LastName:    contact.LastName,
			PhoneNumber: contact.Phone,
		}, nil

	case PlatformGoHighLevel:
		contact, err := s.gohighlevel.LookupByEmail(ctx, email)
		if err != nil || contact == nil {
			return nil, err
		}
		return &dto.ContactDTO{
			Email:       contact.Email,
			FirstName:   contact.FirstName,
			LastName:    contact.LastName,
			PhoneNumber: contact.Phone,
		}, nil

	case PlatformKlaviyo:
		profile, err := s.klaviyo.FindByEmail(ctx, email)
		if err != nil || profile == nil {
			return nil, err
		}
		return &dto.ContactDTO{
			Email:       profile.Attributes.Email,
			FirstName:   profile.Attributes.FirstName,
			LastName:    profile.Attributes.LastName,
			PhoneNumber: profile.Attributes.PhoneNumber,
		}, nil
	}

	return nil, apperrors.NewBadRequestError("неизвестная CRM-платформа: " + platform)
}

// PlatformStatuses проверяет доступность всех платформ.
func (s *CrmService) PlatformStatuses(ctx context.Context) []dto.PlatformStatusDTO {
	statuses := make([]dto.PlatformStatusDTO, len(allCrmPlatforms))
	var wg sync.WaitGroup

	checks := map[string]func(context.Context) error{
		PlatformHubSpot:     s.hubspot.Healthcheck,
		PlatformSalesforce:  s.salesforce.Healthcheck,
		PlatformGoHighLevel: s.gohighlevel.Healthcheck,
		PlatformKlaviyo:     s.klaviyo.Healthcheck,
	}

	for i, platform := range allCrmPlatforms {
		wg.Add(1)
		go func(i int, platform string) {
			defer wg.Done()

			status := dto.PlatformStatusDTO{Platform: platform, Connected: true}
			if err := checks[platform](ctx); err != nil {
				status.Connected = false
				status.Error = err.Error()
			}
			statuses[i] = status
		}(i, platform)
	}

	wg.Wait()
	return statuses
}

func (s *CrmService) GetSyncRecords(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.CrmSyncRecord, uint64, error) {
	return s.syncRepo.GetSyncRecords(ctx, clientID, filter)
}
