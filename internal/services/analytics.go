// Файл: internal/services/analytics.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/types"
)

// Типы отчетов.
const (
	ReportOverview   = "overview"
	ReportEngagement = "engagement"
	ReportConversion = "conversion"
)

const defaultReportPeriod = 30 * 24 * time.Hour

type AnalyticsServiceInterface interface {
	CollectSnapshots(ctx context.Context) error
	GenerateReport(ctx context.Context, payload dto.ReportRequestDTO) (*dto.ReportDTO, error)
	ExportReportXLSX(ctx context.Context, payload dto.ReportRequestDTO) ([]byte, string, error)
	GetLatestSnapshot(ctx context.Context, clientID uint64) (*entities.MetricSnapshot, error)
}

type AnalyticsService struct {
	metricRepo  repositories.MetricRepositoryInterface
	wlRepo      repositories.WhitelabelRepositoryInterface
	leadRepo    repositories.LeadRepositoryInterface
	messageRepo repositories.MessageRepositoryInterface
	syncRepo    repositories.CrmSyncRepositoryInterface
	txRepo      repositories.TransactionRepositoryInterface
	cacheRepo   repositories.CacheRepositoryInterface
	logger      *zap.Logger
}

func NewAnalyticsService(
	metricRepo repositories.MetricRepositoryInterface,
	wlRepo repositories.WhitelabelRepositoryInterface,
	leadRepo repositories.LeadRepositoryInterface,
	messageRepo repositories.MessageRepositoryInterface,
	syncRepo repositories.CrmSyncRepositoryInterface,
	txRepo repositories.TransactionRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
) AnalyticsServiceInterface {
	return &AnalyticsService{
		metricRepo:  metricRepo,
		wlRepo:      wlRepo,
		leadRepo:    leadRepo,
		messageRepo: messageRepo,
		syncRepo:    syncRepo,
		txRepo:      txRepo,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// CollectSnapshots снимает срез метрик по каждому активному клиенту.
// Вызывается планировщиком раз в сутки.
func (s *AnalyticsService) CollectSnapshots(ctx context.Context) error {
	clients, _, err := s.wlRepo.GetClients(ctx, types.Filter{
		Filter: map[string]interface{}{"is_active": "true"},
	})
	if err != nil {
		return err
	}

	now := time.Now()
	for _, client := range clients {
		snapshot, err := s.buildSnapshot(ctx, client.ID, now)
		if err != nil {
			s.logger.Error("не удалось собрать метрики клиента",
				zap.Uint64("client_id", client.ID), zap.Error(err))
			continue
		}
		if _, err := s.metricRepo.CreateSnapshot(ctx, *snapshot); err != nil {
			s.logger.Error("не удалось сохранить срез метрик",
				zap.Uint64("client_id", client.ID), zap.Error(err))
		}
	}

	s.logger.Info("Срезы метрик собраны", zap.Int("clients", len(clients)))
	return nil
}

func (s *AnalyticsService) buildSnapshot(ctx context.Context, clientID uint64, now time.Time) (*entities.MetricSnapshot, error) {
	leadsTotal, err := s.leadRepo.CountByStatus(ctx, clientID, "")
	if err != nil {
		return nil, err
	}
	leadsConverted, err := s.leadRepo.CountByStatus(ctx, clientID, entities.LeadStatusConverted)
	if err != nil {
		return nil, err
	}
	messagesSent, err := s.messageRepo.CountSent(ctx, clientID)
	if err != nil {
		return nil, err
	}
	crmSyncs, err := s.syncRepo.CountSyncs(ctx, clientID)
	if err != nil {
		return nil, err
	}
	paymentsCents, paymentsCount, err := s.txRepo.SumCompleted(ctx, clientID, time.Time{}, now)
	if err != nil {
		return nil, err
	}

	var chatMessages uint64
	if raw, err := s.cacheRepo.Get(ctx, chatCounterKey(clientID)); err == nil {
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			chatMessages = n
		}
	}

	return &entities.MetricSnapshot{
		ClientID:       clientID,
		ChatMessages:   chatMessages,
		MessagesSent:   messagesSent,
		CrmSyncs:       crmSyncs,
		LeadsTotal:     leadsTotal,
		LeadsConverted: leadsConverted,
		PaymentsCents:  paymentsCents,
		PaymentsCount:  paymentsCount,
		CollectedAt:    now,
	}, nil
}

func (s *AnalyticsService) GetLatestSnapshot(ctx context.Context, clientID uint64) (*entities.MetricSnapshot, error) {
	return s.metricRepo.GetLatest(ctx, clientID)
}

func reportPeriod(payload dto.ReportRequestDTO) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.Add(-defaultReportPeriod)

	var err error
	if payload.From != "" {
		from, err = time.Parse("2006-01-02", payload.From)
		if err != nil {
			return from, to, apperrors.NewBadRequestError("неверный формат даты from")
		}
	}
	if payload.To != "" {
		to, err = time.Parse("2006-01-02", payload.To)
		if err != nil {
			return from, to, apperrors.NewBadRequestError("неверный формат даты to")
		}
		// Включаем весь день to.
		to = to.Add(24 * time.Hour)
	}
	if !from.Before(to) {
		return from, to, apperrors.NewBadRequestError("период from должен быть раньше to")
	}
	return from, to, nil
}

// reportColumns определяет, какие метрики попадают в отчет каждого типа.
func reportColumns(reportType string) []string {
	switch reportType {
	case ReportEngagement:
		return []string{"chat_messages", "messages_sent", "crm_syncs"}
	case ReportConversion:
		return []string{"leads_total", "leads_converted", "payments_count", "payments_cents"}
	default:
		return []string{"chat_messages", "messages_sent", "leads_total", "payments_cents"}
	}
}

func snapshotValue(snapshot entities.MetricSnapshot, column string) int64 {
	switch column {
	case "chat_messages":
		return int64(snapshot.ChatMessages)
	case "messages_sent":
		return int64(snapshot.MessagesSent)
	case "crm_syncs":
		return int64(snapshot.CrmSyncs)
	case "leads_total":
		return int64(snapshot.LeadsTotal)
	case "leads_converted":
		return int64(snapshot.LeadsConverted)
	case "payments_count":
		return int64(snapshot.PaymentsCount)
	case "payments_cents":
		return snapshot.PaymentsCents
	}
	return 0
}

func (s *AnalyticsService) GenerateReport(ctx context.Context, payload dto.ReportRequestDTO) (*dto.ReportDTO, error) {
	from, to, err := reportPeriod(payload)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.metricRepo.GetSnapshots(ctx, payload.ClientID, from, to)
	if err != nil {
		return nil, err
	}

	columns := reportColumns(payload.Type)
	report := &dto.ReportDTO{
		Type:        payload.Type,
		PeriodFrom:  from.Format("2006-01-02"),
		PeriodTo:    to.Format("2006-01-02"),
		Totals:      map[string]interface{}{},
		Series:      make([]dto.ReportPointDTO, 0, len(snapshots)),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, snapshot := range snapshots {
		point := dto.ReportPointDTO{
			Date:   snapshot.CollectedAt.Format("2006-01-02"),
			Values: make(map[string]int64, len(columns)),
		}
		for _, column := range columns {
			point.Values[column] = snapshotValue(snapshot, column)
		}
		report.Series = append(report.Series, point)
	}

	// Снимки кумулятивные, итог берется из последнего.
	if len(snapshots) > 0 {
		last := snapshots[len(snapshots)-1]
		for _, column := range columns {
			report.Totals[column] = snapshotValue(last, column)
		}
		if payload.Type == ReportConversion && last.LeadsTotal > 0 {
			rate := float64(last.LeadsConverted) / float64(last.LeadsTotal) * 100
			report.Totals["conversion_rate"] = fmt.Sprintf("%.1f%%", rate)
		}
	}

	return report, nil
}

// ExportReportXLSX отдает отчет как xlsx-файл.
func (s *AnalyticsService) ExportReportXLSX(ctx context.Context, payload dto.ReportRequestDTO) ([]byte, string, error) {
	report, err := s.GenerateReport(ctx, payload)
	if err != nil {
		return nil, "", err
	}

	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Отчет"
	index, err := file.NewSheet(sheet)
	if err != nil {
		return nil, "", err
	}
	file.SetActiveSheet(index)
	_ = file.DeleteSheet("Sheet1")

	columns := reportColumns(payload.Type)

	_ = file.SetCellValue(sheet, "A1", "Дата")
	for i, column := range columns {
		cell, err := excelize.CoordinatesToCellName(i+2, 1)
		if err != nil {
			return nil, "", err
		}
		_ = file.SetCellValue(sheet, cell, column)
	}

	for rowIdx, point := range report.Series {
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		_ = file.SetCellValue(sheet, cell, point.Date)
		for colIdx, column := range columns {
			cell, err := excelize.CoordinatesToCellName(colIdx+2, rowIdx+2)
			if err != nil {
				return nil, "", err
			}
			_ = file.SetCellValue(sheet, cell, point.Values[column])
		}
	}

	totalsRow := len(report.Series) + 3
	cell, _ := excelize.CoordinatesToCellName(1, totalsRow)
	_ = file.SetCellValue(sheet, cell, "Итого")
	for colIdx, column := range columns {
		if value, ok := report.Totals[column]; ok {
			cell, _ := excelize.CoordinatesToCellName(colIdx+2, totalsRow)
			_ = file.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("ошибка записи xlsx: %w", err)
	}

	fileName := fmt.Sprintf("report_%s_%d_%s.xlsx",
		payload.Type, payload.ClientID, time.Now().Format("20060102"))
	return buf.Bytes(), fileName, nil
}
