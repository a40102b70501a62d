// Файл: internal/services/analytics_test.go
package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
)

func newAnalyticsForTest(metrics *fakeMetricRepo, wl *fakeWhitelabelRepo, leads *fakeLeadRepo, messages *fakeMessageRepo, syncs *fakeCrmSyncRepo, txs *fakeTransactionRepo, cache *fakeCacheRepo) AnalyticsServiceInterface {
	return NewAnalyticsService(metrics, wl, leads, messages, syncs, txs, cache, zap.NewNop())
}

func seedSnapshots(metrics *fakeMetricRepo, clientID uint64) {
	base := time.Now().Add(-48 * time.Hour)
	metrics.snapshots = append(metrics.snapshots,
		entities.MetricSnapshot{
			ClientID: clientID, ChatMessages: 10, MessagesSent: 5,
			LeadsTotal: 4, LeadsConverted: 1, PaymentsCents: 5000, PaymentsCount: 1,
			CollectedAt: base,
		},
		entities.MetricSnapshot{
			ClientID: clientID, ChatMessages: 30, MessagesSent: 12,
			LeadsTotal: 10, LeadsConverted: 4, PaymentsCents: 15000, PaymentsCount: 3,
			CollectedAt: base.Add(24 * time.Hour),
		},
	)
}

func TestGenerateReportOverview(t *testing.T) {
	metrics := &fakeMetricRepo{}
	seedSnapshots(metrics, 1)
	svc := newAnalyticsForTest(metrics, newFakeWhitelabelRepo(), newFakeLeadRepo(),
		newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeTransactionRepo(), newFakeCacheRepo())

	report, err := svc.GenerateReport(context.Background(), dto.ReportRequestDTO{
		ClientID: 1, Type: ReportOverview,
	})
	require.NoError(t, err)
	require.Len(t, report.Series, 2)

	// Итоги берутся из последнего среза: снимки кумулятивные.
	assert.Equal(t, int64(30), report.Totals["chat_messages"])
	assert.Equal(t, int64(15000), report.Totals["payments_cents"])
}

func TestGenerateReportConversionRate(t *testing.T) {
	metrics := &fakeMetricRepo{}
	seedSnapshots(metrics, 1)
	svc := newAnalyticsForTest(metrics, newFakeWhitelabelRepo(), newFakeLeadRepo(),
		newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeTransactionRepo(), newFakeCacheRepo())

	report, err := svc.GenerateReport(context.Background(), dto.ReportRequestDTO{
		ClientID: 1, Type: ReportConversion,
	})
	require.NoError(t, err)
	assert.Equal(t, "40.0%", report.Totals["conversion_rate"])
}

func TestGenerateReportBadPeriod(t *testing.T) {
	svc := newAnalyticsForTest(&fakeMetricRepo{}, newFakeWhitelabelRepo(), newFakeLeadRepo(),
		newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeTransactionRepo(), newFakeCacheRepo())

	_, err := svc.GenerateReport(context.Background(), dto.ReportRequestDTO{
		ClientID: 1, Type: ReportOverview, From: "2026-02-01", To: "2026-01-01",
	})
	assert.Error(t, err)

	_, err = svc.GenerateReport(context.Background(), dto.ReportRequestDTO{
		ClientID: 1, Type: ReportOverview, From: "01.02.2026",
	})
	assert.Error(t, err)
}

func TestExportReportXLSX(t *testing.T) {
	metrics := &fakeMetricRepo{}
	seedSnapshots(metrics, 1)
	svc := newAnalyticsForTest(metrics, newFakeWhitelabelRepo(), newFakeLeadRepo(),
		newFakeMessageRepo(), &fakeCrmSyncRepo{}, newFakeTransactionRepo(), newFakeCacheRepo())

	data, fileName, err := svc.ExportReportXLSX(context.Background(), dto.ReportRequestDTO{
		ClientID: 1, Type: ReportOverview,
	})
	require.NoError(t, err)
	assert.Contains(t, fileName, "report_overview_1_")

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer file.Close()

	header, err := file.GetCellValue("Отчет", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Дата", header)

	rows, err := file.GetRows("Отчет")
	require.NoError(t, err)
	// Заголовок, два среза, пустая строка и итоги.
	assert.GreaterOrEqual(t, len(rows), 4)
}

func TestCollectSnapshots(t *testing.T) {
	metrics := &fakeMetricRepo{}
	wl := newFakeWhitelabelRepo()
	leads := newFakeLeadRepo()
	leads.countTotal = 8
	txs := newFakeTransactionRepo()
	txs.sumCompleted = 12300
	txs.countComplete = 4
	cache := newFakeCacheRepo()
	cache.values[chatCounterKey(1)] = "17"

	wlSvc := newWhitelabelForTest(wl, &fakeFileStorage{})
	client, err := wlSvc.CreateClient(context.Background(), dto.CreateClientDTO{Slug: "acme", Name: "Acme Corp"})
	require.NoError(t, err)

	svc := newAnalyticsForTest(metrics, wl, leads, newFakeMessageRepo(), &fakeCrmSyncRepo{}, txs, cache)

	require.NoError(t, svc.CollectSnapshots(context.Background()))
	require.Len(t, metrics.snapshots, 1)

	snapshot := metrics.snapshots[0]
	assert.Equal(t, client.ID, snapshot.ClientID)
	assert.Equal(t, uint64(8), snapshot.LeadsTotal)
	assert.Equal(t, int64(12300), snapshot.PaymentsCents)
	assert.Equal(t, uint64(4), snapshot.PaymentsCount)

	latest, err := svc.GetLatestSnapshot(context.Background(), client.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(17), latest.ChatMessages)
}
