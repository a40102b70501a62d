// Файл: internal/services/fakes_test.go
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/types"
)

// Фейковые репозитории для юнит-тестов сервисов. Хранят всё в памяти,
// у каждого метода есть перехватчик для подмены поведения.

type fakeLeadRepo struct {
	leads      map[uint64]*entities.Lead
	statusLog  map[uint64]string
	countTotal uint64
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[uint64]*entities.Lead), statusLog: make(map[uint64]string)}
}

func (f *fakeLeadRepo) GetLeads(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Lead, uint64, error) {
	var out []entities.Lead
	for _, l := range f.leads {
		if l.ClientID == clientID {
			out = append(out, *l)
		}
	}
	return out, uint64(len(out)), nil
}

func (f *fakeLeadRepo) FindLead(ctx context.Context, id uint64) (*entities.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *lead
	return &copied, nil
}

func (f *fakeLeadRepo) FindLeadByEmail(ctx context.Context, clientID uint64, email string) (*entities.Lead, error) {
	for _, l := range f.leads {
		if l.ClientID == clientID && l.Email != nil && *l.Email == email {
			copied := *l
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeLeadRepo) FindLeadByTelegramChatID(ctx context.Context, clientID uint64, chatID int64) (*entities.Lead, error) {
	for _, l := range f.leads {
		if l.ClientID == clientID && l.TelegramChatID != nil && *l.TelegramChatID == chatID {
			copied := *l
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeLeadRepo) CreateLead(ctx context.Context, lead entities.Lead) (uint64, error) {
	id := uint64(len(f.leads) + 1)
	lead.ID = id
	f.leads[id] = &lead
	return id, nil
}

func (f *fakeLeadRepo) UpdateLead(ctx context.Context, id uint64, lead entities.Lead) error {
	if _, ok := f.leads[id]; !ok {
		return apperrors.ErrNotFound
	}
	lead.ID = id
	f.leads[id] = &lead
	return nil
}

func (f *fakeLeadRepo) UpdateLeadStatus(ctx context.Context, id uint64, status string) error {
	lead, ok := f.leads[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	lead.Status = status
	f.statusLog[id] = status
	return nil
}

func (f *fakeLeadRepo) DeleteLead(ctx context.Context, id uint64) error {
	delete(f.leads, id)
	return nil
}

func (f *fakeLeadRepo) CountByStatus(ctx context.Context, clientID uint64, status string) (uint64, error) {
	if status == "" {
		return f.countTotal, nil
	}
	var n uint64
	for _, l := range f.leads {
		if l.ClientID == clientID && l.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeMessageRepo struct {
	sentCount uint64
	logs      []entities.MessageLog
	templates map[uint64]*entities.MessageTemplate
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{templates: make(map[uint64]*entities.MessageTemplate)}
}

func (f *fakeMessageRepo) GetMessageLogs(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageLog, uint64, error) {
	return f.logs, uint64(len(f.logs)), nil
}

func (f *fakeMessageRepo) CreateMessageLog(ctx context.Context, log entities.MessageLog) (uint64, error) {
	f.logs = append(f.logs, log)
	return uint64(len(f.logs)), nil
}

func (f *fakeMessageRepo) GetStats(ctx context.Context, clientID uint64, from, to time.Time) (*repositories.MessagingStats, error) {
	return &repositories.MessagingStats{}, nil
}

func (f *fakeMessageRepo) CountSent(ctx context.Context, clientID uint64) (uint64, error) {
	return f.sentCount, nil
}

func (f *fakeMessageRepo) GetTemplates(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageTemplate, uint64, error) {
	var out []entities.MessageTemplate
	for _, t := range f.templates {
		out = append(out, *t)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeMessageRepo) FindTemplate(ctx context.Context, id uint64) (*entities.MessageTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return t, nil
}

func (f *fakeMessageRepo) FindTemplateByName(ctx context.Context, clientID uint64, name string) (*entities.MessageTemplate, error) {
	for _, t := range f.templates {
		if t.ClientID == clientID && t.Name == name {
			return t, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeMessageRepo) CreateTemplate(ctx context.Context, template entities.MessageTemplate) (uint64, error) {
	id := uint64(len(f.templates) + 1)
	template.ID = id
	f.templates[id] = &template
	return id, nil
}

func (f *fakeMessageRepo) DeleteTemplate(ctx context.Context, id uint64) error {
	if _, ok := f.templates[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(f.templates, id)
	return nil
}

type fakeCrmSyncRepo struct {
	syncCount uint64
	records   []entities.CrmSyncRecord
}

func (f *fakeCrmSyncRepo) GetSyncRecords(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.CrmSyncRecord, uint64, error) {
	return f.records, uint64(len(f.records)), nil
}

func (f *fakeCrmSyncRepo) CreateSyncRecord(ctx context.Context, record entities.CrmSyncRecord) (uint64, error) {
	f.records = append(f.records, record)
	return uint64(len(f.records)), nil
}

func (f *fakeCrmSyncRepo) FindLastSync(ctx context.Context, clientID uint64, email, platform string) (*entities.CrmSyncRecord, error) {
	return nil, apperrors.ErrNotFound
}

func (f *fakeCrmSyncRepo) CountSyncs(ctx context.Context, clientID uint64) (uint64, error) {
	return f.syncCount, nil
}

type fakeCacheRepo struct {
	values map[string]string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{values: make(map[string]string)}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	switch v := value.(type) {
	case string:
		f.values[key] = v
	case []byte:
		f.values[key] = string(v)
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		f.values[key] = string(raw)
	}
	return nil
}

func (f *fakeCacheRepo) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	n, _ := strconv.ParseInt(f.values[key], 10, 64)
	n++
	f.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (f *fakeCacheRepo) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	_, ok := f.values[key]
	return ok, nil
}

type fakeCampaignRepo struct {
	campaigns map[uint64]*entities.Campaign
	steps     []entities.CampaignStep
	executed  map[uint64]bool
	nextID    uint64
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: make(map[uint64]*entities.Campaign), executed: make(map[uint64]bool)}
}

func (f *fakeCampaignRepo) GetCampaigns(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Campaign, uint64, error) {
	var out []entities.Campaign
	for _, c := range f.campaigns {
		if c.ClientID == clientID {
			out = append(out, *c)
		}
	}
	return out, uint64(len(out)), nil
}

func (f *fakeCampaignRepo) FindCampaign(ctx context.Context, id uint64) (*entities.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCampaignRepo) FindActiveByLead(ctx context.Context, leadID uint64) (*entities.Campaign, error) {
	for _, c := range f.campaigns {
		if c.LeadID == leadID && c.Status == entities.CampaignStatusActive {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeCampaignRepo) CreateCampaign(ctx context.Context, campaign entities.Campaign) (uint64, error) {
	f.nextID++
	campaign.ID = f.nextID
	f.campaigns[f.nextID] = &campaign
	return f.nextID, nil
}

func (f *fakeCampaignRepo) AdvanceCampaign(ctx context.Context, id uint64, nextStep int, nextRunAt *time.Time) error {
	c, ok := f.campaigns[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.CurrentStep = nextStep
	c.NextRunAt = nextRunAt
	return nil
}

func (f *fakeCampaignRepo) UpdateCampaignStatus(ctx context.Context, id uint64, status string) error {
	c, ok := f.campaigns[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.Status = status
	return nil
}

func (f *fakeCampaignRepo) GetDue(ctx context.Context, now time.Time) ([]entities.Campaign, error) {
	var out []entities.Campaign
	for _, c := range f.campaigns {
		if c.Status == entities.CampaignStatusActive && c.NextRunAt != nil && !c.NextRunAt.After(now) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCampaignRepo) CreateStep(ctx context.Context, step entities.CampaignStep) (uint64, error) {
	step.ID = uint64(len(f.steps) + 1)
	f.steps = append(f.steps, step)
	return step.ID, nil
}

func (f *fakeCampaignRepo) GetSteps(ctx context.Context, campaignID uint64) ([]entities.CampaignStep, error) {
	var out []entities.CampaignStep
	for _, s := range f.steps {
		if s.CampaignID == campaignID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCampaignRepo) MarkStepExecuted(ctx context.Context, stepID uint64, success bool) error {
	f.executed[stepID] = success
	return nil
}

type fakeWhitelabelRepo struct {
	clients  map[uint64]*entities.WhitelabelClient
	webhooks []entities.ConfigWebhook
	changes  []entities.ConfigChange
}

func newFakeWhitelabelRepo() *fakeWhitelabelRepo {
	return &fakeWhitelabelRepo{clients: make(map[uint64]*entities.WhitelabelClient)}
}

func (f *fakeWhitelabelRepo) GetClients(ctx context.Context, filter types.Filter) ([]entities.WhitelabelClient, uint64, error) {
	var out []entities.WhitelabelClient
	for _, c := range f.clients {
		out = append(out, *c)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeWhitelabelRepo) FindClient(ctx context.Context, id uint64) (*entities.WhitelabelClient, error) {
	c, ok := f.clients[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeWhitelabelRepo) FindClientBySlug(ctx context.Context, slug string) (*entities.WhitelabelClient, error) {
	for _, c := range f.clients {
		if c.Slug == slug {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeWhitelabelRepo) CreateClient(ctx context.Context, client entities.WhitelabelClient) (uint64, error) {
	id := uint64(len(f.clients) + 1)
	client.ID = id
	f.clients[id] = &client
	return id, nil
}

func (f *fakeWhitelabelRepo) UpdateConfigColumn(ctx context.Context, id uint64, column string, value json.RawMessage) error {
	c, ok := f.clients[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	switch column {
	case "branding":
		c.Branding = value
	case "features":
		c.Features = value
	case "integrations":
		c.Integrations = value
	case "plugins":
		c.Plugins = value
	}
	return nil
}

func (f *fakeWhitelabelRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	c, ok := f.clients[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.IsActive = active
	return nil
}

func (f *fakeWhitelabelRepo) DeleteClient(ctx context.Context, id uint64) error {
	delete(f.clients, id)
	return nil
}

func (f *fakeWhitelabelRepo) CreateWebhook(ctx context.Context, webhook entities.ConfigWebhook) (uint64, error) {
	webhook.ID = uint64(len(f.webhooks) + 1)
	f.webhooks = append(f.webhooks, webhook)
	return webhook.ID, nil
}

func (f *fakeWhitelabelRepo) GetWebhooks(ctx context.Context, clientID uint64) ([]entities.ConfigWebhook, error) {
	var out []entities.ConfigWebhook
	for _, w := range f.webhooks {
		if w.ClientID == clientID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWhitelabelRepo) DeleteWebhook(ctx context.Context, id uint64) error {
	for i, w := range f.webhooks {
		if w.ID == id {
			f.webhooks = append(f.webhooks[:i], f.webhooks[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeWhitelabelRepo) RecordChange(ctx context.Context, change entities.ConfigChange) error {
	f.changes = append(f.changes, change)
	return nil
}

func (f *fakeWhitelabelRepo) GetChanges(ctx context.Context, clientID uint64, limit uint64) ([]entities.ConfigChange, error) {
	return f.changes, nil
}

type fakeOnboardingRepo struct {
	progress map[uint64]*entities.OnboardingProgress
	tickets  []entities.SupportTicket
	resolved map[uint64]bool
}

func newFakeOnboardingRepo() *fakeOnboardingRepo {
	return &fakeOnboardingRepo{progress: make(map[uint64]*entities.OnboardingProgress), resolved: make(map[uint64]bool)}
}

func (f *fakeOnboardingRepo) FindProgress(ctx context.Context, clientID uint64) (*entities.OnboardingProgress, error) {
	p, ok := f.progress[clientID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *p
	copied.CompletedSteps = append([]string(nil), p.CompletedSteps...)
	return &copied, nil
}

func (f *fakeOnboardingRepo) CreateProgress(ctx context.Context, progress entities.OnboardingProgress) (uint64, error) {
	id := uint64(len(f.progress) + 1)
	progress.ID = id
	f.progress[progress.ClientID] = &progress
	return id, nil
}

func (f *fakeOnboardingRepo) UpdateProgress(ctx context.Context, clientID uint64, progress entities.OnboardingProgress) error {
	if _, ok := f.progress[clientID]; !ok {
		return apperrors.ErrNotFound
	}
	f.progress[clientID] = &progress
	return nil
}

func (f *fakeOnboardingRepo) TouchReminder(ctx context.Context, clientID uint64) error {
	p, ok := f.progress[clientID]
	if !ok {
		return apperrors.ErrNotFound
	}
	now := time.Now()
	p.LastReminderAt = &now
	return nil
}

func (f *fakeOnboardingRepo) GetStalled(ctx context.Context, inactiveFor time.Duration) ([]entities.OnboardingProgress, error) {
	var out []entities.OnboardingProgress
	cutoff := time.Now().Add(-inactiveFor)
	for _, p := range f.progress {
		if p.CompletedAt == nil && p.UpdatedAt.Before(cutoff) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeOnboardingRepo) CreateTicket(ctx context.Context, ticket entities.SupportTicket) (uint64, error) {
	ticket.ID = uint64(len(f.tickets) + 1)
	f.tickets = append(f.tickets, ticket)
	return ticket.ID, nil
}

func (f *fakeOnboardingRepo) GetTickets(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.SupportTicket, uint64, error) {
	return f.tickets, uint64(len(f.tickets)), nil
}

func (f *fakeOnboardingRepo) ResolveTicket(ctx context.Context, id uint64) error {
	f.resolved[id] = true
	return nil
}

type fakeMetricRepo struct {
	snapshots []entities.MetricSnapshot
}

func (f *fakeMetricRepo) CreateSnapshot(ctx context.Context, snapshot entities.MetricSnapshot) (uint64, error) {
	snapshot.ID = uint64(len(f.snapshots) + 1)
	f.snapshots = append(f.snapshots, snapshot)
	return snapshot.ID, nil
}

func (f *fakeMetricRepo) GetSnapshots(ctx context.Context, clientID uint64, from, to time.Time) ([]entities.MetricSnapshot, error) {
	var out []entities.MetricSnapshot
	for _, s := range f.snapshots {
		if s.ClientID == clientID && !s.CollectedAt.Before(from) && s.CollectedAt.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeMetricRepo) GetLatest(ctx context.Context, clientID uint64) (*entities.MetricSnapshot, error) {
	for i := len(f.snapshots) - 1; i >= 0; i-- {
		if f.snapshots[i].ClientID == clientID {
			copied := f.snapshots[i]
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeTransactionRepo struct {
	transactions  map[uint64]*entities.Transaction
	sumCompleted  int64
	countComplete uint64
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[uint64]*entities.Transaction)}
}

func (f *fakeTransactionRepo) GetTransactions(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Transaction, uint64, error) {
	var out []entities.Transaction
	for _, tx := range f.transactions {
		if tx.ClientID == clientID {
			out = append(out, *tx)
		}
	}
	return out, uint64(len(out)), nil
}

func (f *fakeTransactionRepo) FindTransaction(ctx context.Context, id uint64) (*entities.Transaction, error) {
	tx, ok := f.transactions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *tx
	return &copied, nil
}

func (f *fakeTransactionRepo) FindByProviderTxID(ctx context.Context, provider, providerTxID string) (*entities.Transaction, error) {
	for _, tx := range f.transactions {
		if tx.Provider == provider && tx.ProviderTxID == providerTxID {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeTransactionRepo) CreateTransaction(ctx context.Context, tx entities.Transaction) (uint64, error) {
	id := uint64(len(f.transactions) + 1)
	tx.ID = id
	f.transactions[id] = &tx
	return id, nil
}

func (f *fakeTransactionRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	tx, ok := f.transactions[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	tx.Status = status
	return nil
}

func (f *fakeTransactionRepo) GetPending(ctx context.Context, providers []string, olderThan time.Duration) ([]entities.Transaction, error) {
	var out []entities.Transaction
	for _, tx := range f.transactions {
		if tx.Status == entities.TransactionStatusPending {
			out = append(out, *tx)
		}
	}
	return out, nil
}

// GetProviderStats агрегирует по памяти так же, как SQL группирует по provider/status.
func (f *fakeTransactionRepo) GetProviderStats(ctx context.Context, clientID uint64, from, to time.Time) ([]repositories.ProviderStat, error) {
	grouped := make(map[string]*repositories.ProviderStat)
	var keys []string
	for _, tx := range f.transactions {
		if tx.ClientID != clientID {
			continue
		}
		key := tx.Provider + "/" + tx.Status
		stat, ok := grouped[key]
		if !ok {
			stat = &repositories.ProviderStat{Provider: tx.Provider, Status: tx.Status}
			grouped[key] = stat
			keys = append(keys, key)
		}
		stat.Count++
		stat.TotalCents += tx.AmountCents
	}

	sort.Strings(keys)
	out := make([]repositories.ProviderStat, 0, len(keys))
	for _, key := range keys {
		out = append(out, *grouped[key])
	}
	return out, nil
}

func (f *fakeTransactionRepo) SumCompleted(ctx context.Context, clientID uint64, from, to time.Time) (int64, uint64, error) {
	return f.sumCompleted, f.countComplete, nil
}

type fakeUserRepo struct {
	users map[uint64]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint64]*entities.User)}
}

func (f *fakeUserRepo) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	var out []entities.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeUserRepo) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) FindUserByTelegramChatID(ctx context.Context, chatID int64) (*entities.User, error) {
	for _, u := range f.users {
		if u.TelegramChatID.Valid && u.TelegramChatID.Int64 == chatID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user entities.User) (uint64, error) {
	id := uint64(len(f.users) + 1)
	user.ID = id
	f.users[id] = &user
	return id, nil
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, id uint64, user entities.User) error {
	if _, ok := f.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	user.ID = id
	f.users[id] = &user
	return nil
}

func (f *fakeUserRepo) LinkTelegram(ctx context.Context, id uint64, chatID int64, telegramName string) error {
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.TelegramChatID = sql.NullInt64{Int64: chatID, Valid: true}
	u.TelegramName = &telegramName
	return nil
}

func (f *fakeUserRepo) UpdatePlan(ctx context.Context, id uint64, planID string) error {
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.PlanID = planID
	return nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, id uint64) error {
	delete(f.users, id)
	return nil
}

// fakeNotifier собирает уведомления, которые ушли бы в телеграм.
type fakeNotifier struct {
	adminMessages []string
	chatMessages  map[int64][]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{chatMessages: make(map[int64][]string)}
}

func (f *fakeNotifier) NotifyAdmin(ctx context.Context, text string) error {
	f.adminMessages = append(f.adminMessages, text)
	return nil
}

func (f *fakeNotifier) NotifyChat(ctx context.Context, chatID int64, text string) error {
	f.chatMessages[chatID] = append(f.chatMessages[chatID], text)
	return nil
}

// fakeMessaging записывает отправки вместо реальных вендоров.
type fakeMessaging struct {
	emails []dto.SendEmailDTO
	sms    []dto.SendSMSDTO
	err    error
}

func (f *fakeMessaging) SendEmail(ctx context.Context, payload dto.SendEmailDTO) error {
	if f.err != nil {
		return f.err
	}
	f.emails = append(f.emails, payload)
	return nil
}

func (f *fakeMessaging) SendSMS(ctx context.Context, payload dto.SendSMSDTO) error {
	if f.err != nil {
		return f.err
	}
	f.sms = append(f.sms, payload)
	return nil
}

func (f *fakeMessaging) SendBulkEmail(ctx context.Context, payload dto.SendBulkDTO) (*dto.BulkResultDTO, error) {
	return &dto.BulkResultDTO{}, nil
}

func (f *fakeMessaging) CreateTemplate(ctx context.Context, payload dto.CreateTemplateDTO) (*entities.MessageTemplate, error) {
	return nil, nil
}

func (f *fakeMessaging) GetTemplates(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageTemplate, uint64, error) {
	return nil, 0, nil
}

func (f *fakeMessaging) DeleteTemplate(ctx context.Context, id uint64) error { return nil }

func (f *fakeMessaging) GetMessageLogs(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageLog, uint64, error) {
	return nil, 0, nil
}

func (f *fakeMessaging) GetAnalytics(ctx context.Context, clientID uint64, from, to time.Time) (*dto.MessagingAnalyticsDTO, error) {
	return &dto.MessagingAnalyticsDTO{}, nil
}
