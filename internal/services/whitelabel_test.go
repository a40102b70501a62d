// Файл: internal/services/whitelabel_test.go
package services

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
)

type fakeFileStorage struct {
	saved   []string
	deleted []string
}

func (f *fakeFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	path := prefix + "/" + originalFileName
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeFileStorage) Delete(filePath string) error {
	f.deleted = append(f.deleted, filePath)
	return nil
}

func newWhitelabelForTest(repo *fakeWhitelabelRepo, storage *fakeFileStorage) WhitelabelServiceInterface {
	return NewWhitelabelService(repo, storage, zap.NewNop())
}

func TestCreateClientRejectsTakenSlug(t *testing.T) {
	repo := newFakeWhitelabelRepo()
	svc := newWhitelabelForTest(repo, &fakeFileStorage{})

	client, err := svc.CreateClient(context.Background(), dto.CreateClientDTO{Slug: "acme", Name: "Acme Corp"})
	require.NoError(t, err)
	assert.True(t, client.IsActive)

	_, err = svc.CreateClient(context.Background(), dto.CreateClientDTO{Slug: "acme", Name: "Другая компания"})
	assert.Error(t, err)
}

func TestGetTheme(t *testing.T) {
	repo := newFakeWhitelabelRepo()
	svc := newWhitelabelForTest(repo, &fakeFileStorage{})

	client, err := svc.CreateClient(context.Background(), dto.CreateClientDTO{Slug: "acme", Name: "Acme Corp"})
	require.NoError(t, err)

	theme, err := svc.GetTheme(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", theme.CompanyName)

	// Отключенный клиент темы не отдает.
	require.NoError(t, repo.SetActive(context.Background(), client.ID, false))
	_, err = svc.GetTheme(context.Background(), "acme")
	assert.Error(t, err)

	_, err = svc.GetTheme(context.Background(), "unknown")
	assert.Error(t, err)
}

func TestUpdateBrandingMergesFields(t *testing.T) {
	repo := newFakeWhitelabelRepo()
	svc := newWhitelabelForTest(repo, &fakeFileStorage{})

	client, err := svc.CreateClient(context.Background(), dto.CreateClientDTO{Slug: "acme", Name: "Acme Corp"})
	require.NoError(t, err)

	_, err = svc.UpdateBranding(context.Background(), client.ID,
		dto.UpdateBrandingDTO{PrimaryColor: "#112233"}, nil)
	require.NoError(t, err)

	// Второе обновление не затирает цвет из первого.
	updated, err := svc.UpdateBranding(context.Background(), client.ID,
		dto.UpdateBrandingDTO{CompanyName: "Acme Inc"}, nil)
	require.NoError(t, err)

	var branding entities.Branding
	require.NoError(t, json.Unmarshal(updated.Branding, &branding))
	assert.Equal(t, "Acme Inc", branding.CompanyName)
	assert.Equal(t, "#112233", branding.PrimaryColor)

	// Каждое обновление фиксируется в истории.
	assert.Len(t, repo.changes, 2)
}

func TestUploadLogoReplacesOld(t *testing.T) {
	repo := newFakeWhitelabelRepo()
	storage := &fakeFileStorage{}
	svc := newWhitelabelForTest(repo, storage)

	client, err := svc.CreateClient(context.Background(), dto.CreateClientDTO{Slug: "acme", Name: "Acme Corp"})
	require.NoError(t, err)

	first, err := svc.UploadLogo(context.Background(), client.ID, nil, "logo-v1.png", nil)
	require.NoError(t, err)

	second, err := svc.UploadLogo(context.Background(), client.ID, nil, "logo-v2.png", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Старый файл удаляется после замены.
	require.Len(t, storage.deleted, 1)
	assert.Equal(t, first, storage.deleted[0])

	updated, err := svc.FindClient(context.Background(), client.ID)
	require.NoError(t, err)
	var branding entities.Branding
	require.NoError(t, json.Unmarshal(updated.Branding, &branding))
	assert.Equal(t, second, branding.LogoURL)
}

func TestWebhookSubscribed(t *testing.T) {
	testCases := []struct {
		name   string
		events string
		event  string
		want   bool
	}{
		{name: "точное совпадение", events: `["branding.updated"]`, event: ConfigEventBranding, want: true},
		{name: "wildcard", events: `["*"]`, event: ConfigEventFeatures, want: true},
		{name: "другое событие", events: `["branding.updated"]`, event: ConfigEventFeatures, want: false},
		{name: "битый JSON", events: `не json`, event: ConfigEventBranding, want: false},
		{name: "пустой список", events: `[]`, event: ConfigEventBranding, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			webhook := entities.ConfigWebhook{Events: json.RawMessage(tc.events)}
			assert.Equal(t, tc.want, webhookSubscribed(webhook, tc.event))
		})
	}
}

func TestRegisterWebhook(t *testing.T) {
	repo := newFakeWhitelabelRepo()
	svc := newWhitelabelForTest(repo, &fakeFileStorage{})

	client, err := svc.CreateClient(context.Background(), dto.CreateClientDTO{Slug: "acme", Name: "Acme Corp"})
	require.NoError(t, err)

	webhook, err := svc.RegisterWebhook(context.Background(), client.ID, dto.RegisterWebhookDTO{
		URL:    "https://example.com/hooks",
		Events: []string{ConfigEventBranding},
	})
	require.NoError(t, err)
	assert.NotZero(t, webhook.ID)

	// Для несуществующего клиента вебхук не регистрируется.
	_, err = svc.RegisterWebhook(context.Background(), 999, dto.RegisterWebhookDTO{
		URL: "https://example.com/hooks", Events: []string{"*"},
	})
	assert.Error(t, err)
}
