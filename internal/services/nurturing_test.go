// Файл: internal/services/nurturing_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
)

func strPtr(s string) *string { return &s }

func newNurturingForTest(campaigns *fakeCampaignRepo, leads *fakeLeadRepo, messaging *fakeMessaging) NurturingServiceInterface {
	return NewNurturingService(campaigns, leads, messaging, zap.NewNop())
}

func seedLead(leads *fakeLeadRepo, clientID uint64, status string) uint64 {
	id, _ := leads.CreateLead(context.Background(), entities.Lead{
		ClientID:    clientID,
		FullName:    "Иван Петров",
		Email:       strPtr("ivan@example.com"),
		PhoneNumber: strPtr("+79001234567"),
		Source:      entities.LeadSourceManual,
		Status:      status,
	})
	return id
}

func TestStartCampaign(t *testing.T) {
	campaigns := newFakeCampaignRepo()
	leads := newFakeLeadRepo()
	svc := newNurturingForTest(campaigns, leads, &fakeMessaging{})

	leadID := seedLead(leads, 1, entities.LeadStatusNew)

	campaign, err := svc.StartCampaign(context.Background(), dto.StartCampaignDTO{
		ClientID: 1, LeadID: leadID, Template: CampaignTemplateWelcome,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.CampaignStatusActive, campaign.Status)
	assert.Equal(t, 0, campaign.CurrentStep)
	require.NotNil(t, campaign.NextRunAt)
	// Первый шаг welcome без задержки.
	assert.WithinDuration(t, time.Now(), *campaign.NextRunAt, 5*time.Second)

	// Новый лид переходит в прогрев.
	assert.Equal(t, entities.LeadStatusNurturing, leads.statusLog[leadID])
}

func TestStartCampaignUnknownTemplate(t *testing.T) {
	svc := newNurturingForTest(newFakeCampaignRepo(), newFakeLeadRepo(), &fakeMessaging{})

	_, err := svc.StartCampaign(context.Background(), dto.StartCampaignDTO{
		ClientID: 1, LeadID: 1, Template: "black_friday",
	})
	assert.Error(t, err)
}

func TestStartCampaignForeignLead(t *testing.T) {
	campaigns := newFakeCampaignRepo()
	leads := newFakeLeadRepo()
	svc := newNurturingForTest(campaigns, leads, &fakeMessaging{})

	leadID := seedLead(leads, 2, entities.LeadStatusNew)

	// Лид принадлежит другому клиенту.
	_, err := svc.StartCampaign(context.Background(), dto.StartCampaignDTO{
		ClientID: 1, LeadID: leadID, Template: CampaignTemplateWelcome,
	})
	assert.Error(t, err)
}

func TestStartCampaignDuplicate(t *testing.T) {
	campaigns := newFakeCampaignRepo()
	leads := newFakeLeadRepo()
	svc := newNurturingForTest(campaigns, leads, &fakeMessaging{})

	leadID := seedLead(leads, 1, entities.LeadStatusNew)

	_, err := svc.StartCampaign(context.Background(), dto.StartCampaignDTO{
		ClientID: 1, LeadID: leadID, Template: CampaignTemplateWelcome,
	})
	require.NoError(t, err)

	_, err = svc.StartCampaign(context.Background(), dto.StartCampaignDTO{
		ClientID: 1, LeadID: leadID, Template: CampaignTemplateReEngagement,
	})
	assert.Error(t, err)
}

func TestPauseAndResume(t *testing.T) {
	campaigns := newFakeCampaignRepo()
	leads := newFakeLeadRepo()
	svc := newNurturingForTest(campaigns, leads, &fakeMessaging{})

	leadID := seedLead(leads, 1, entities.LeadStatusNew)
	campaign, err := svc.StartCampaign(context.Background(), dto.StartCampaignDTO{
		ClientID: 1, LeadID: leadID, Template: CampaignTemplateWelcome,
	})
	require.NoError(t, err)

	require.NoError(t, svc.PauseCampaign(context.Background(), campaign.ID))
	assert.Equal(t, entities.CampaignStatusPaused, campaigns.campaigns[campaign.ID].Status)

	// Повторная пауза невозможна.
	assert.Error(t, svc.PauseCampaign(context.Background(), campaign.ID))

	require.NoError(t, svc.ResumeCampaign(context.Background(), campaign.ID))
	assert.Equal(t, entities.CampaignStatusActive, campaigns.campaigns[campaign.ID].Status)
	assert.Error(t, svc.ResumeCampaign(context.Background(), campaign.ID))
}

func TestProcessDueSendsEmailAndAdvances(t *testing.T) {
	campaigns := newFakeCampaignRepo()
	leads := newFakeLeadRepo()
	messaging := &fakeMessaging{}
	svc := newNurturingForTest(campaigns, leads, messaging)

	leadID := seedLead(leads, 1, entities.LeadStatusNurturing)
	campaign, err := svc.StartCampaign(context.Background(), dto.StartCampaignDTO{
		ClientID: 1, LeadID: leadID, Template: CampaignTemplateWelcome,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ProcessDue(context.Background()))

	require.Len(t, messaging.emails, 1)
	assert.Equal(t, "ivan@example.com", messaging.emails[0].To)
	// Плейсхолдер имени подставляется в тему.
	assert.Equal(t, "Добро пожаловать, Иван Петров!", messaging.emails[0].Subject)

	updated := campaigns.campaigns[campaign.ID]
	assert.Equal(t, 1, updated.CurrentStep)
	require.NotNil(t, updated.NextRunAt)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), *updated.NextRunAt, 5*time.Second)

	// Шаг записан как успешный.
	require.Len(t, campaigns.steps, 1)
	assert.True(t, campaigns.executed[campaigns.steps[0].ID])
}

func TestProcessDueCompletesOnConvertedLead(t *testing.T) {
	campaigns := newFakeCampaignRepo()
	leads := newFakeLeadRepo()
	messaging := &fakeMessaging{}
	svc := newNurturingForTest(campaigns, leads, messaging)

	leadID := seedLead(leads, 1, entities.LeadStatusNurturing)
	campaign, err := svc.StartCampaign(context.Background(), dto.StartCampaignDTO{
		ClientID: 1, LeadID: leadID, Template: CampaignTemplateWelcome,
	})
	require.NoError(t, err)

	require.NoError(t, leads.UpdateLeadStatus(context.Background(), leadID, entities.LeadStatusConverted))
	require.NoError(t, svc.ProcessDue(context.Background()))

	assert.Empty(t, messaging.emails)
	assert.Equal(t, entities.CampaignStatusCompleted, campaigns.campaigns[campaign.ID].Status)
}

func TestProcessDueCompletesAfterLastStep(t *testing.T) {
	campaigns := newFakeCampaignRepo()
	leads := newFakeLeadRepo()
	messaging := &fakeMessaging{}
	svc := newNurturingForTest(campaigns, leads, messaging)

	leadID := seedLead(leads, 1, entities.LeadStatusNurturing)
	campaign, err := svc.StartCampaign(context.Background(), dto.StartCampaignDTO{
		ClientID: 1, LeadID: leadID, Template: CampaignTemplateReEngagement,
	})
	require.NoError(t, err)

	// Выполняем оба шага, искусственно приближая время следующего запуска.
	require.NoError(t, svc.ProcessDue(context.Background()))
	past := time.Now().Add(-time.Minute)
	require.NoError(t, campaigns.AdvanceCampaign(context.Background(), campaign.ID, 1, &past))
	require.NoError(t, svc.ProcessDue(context.Background()))

	assert.Len(t, messaging.emails, 2)
	assert.Equal(t, entities.CampaignStatusCompleted, campaigns.campaigns[campaign.ID].Status)
}

func TestGetProgress(t *testing.T) {
	campaigns := newFakeCampaignRepo()
	leads := newFakeLeadRepo()
	svc := newNurturingForTest(campaigns, leads, &fakeMessaging{})

	leadID := seedLead(leads, 1, entities.LeadStatusNew)
	campaign, err := svc.StartCampaign(context.Background(), dto.StartCampaignDTO{
		ClientID: 1, LeadID: leadID, Template: CampaignTemplateWelcome,
	})
	require.NoError(t, err)

	require.NoError(t, svc.ProcessDue(context.Background()))

	progress, err := svc.GetProgress(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.TotalSteps)
	assert.Equal(t, 1, progress.CurrentStep)
	require.Len(t, progress.Steps, 1)
	assert.Equal(t, entities.StepChannelEmail, progress.Steps[0].Channel)
}
