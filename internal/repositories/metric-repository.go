package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ai-assistant/internal/entities"
)

type MetricRepositoryInterface interface {
	CreateSnapshot(ctx context.Context, snapshot entities.MetricSnapshot) (uint64, error)
	GetSnapshots(ctx context.Context, clientID uint64, from, to time.Time) ([]entities.MetricSnapshot, error)
	GetLatest(ctx context.Context, clientID uint64) (*entities.MetricSnapshot, error)
}

type MetricRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewMetricRepository(storage *pgxpool.Pool, logger *zap.Logger) MetricRepositoryInterface {
	return &MetricRepository{storage: storage, logger: logger}
}

func (r *MetricRepository) CreateSnapshot(ctx context.Context, snapshot entities.MetricSnapshot) (uint64, error) {
	query := `
		INSERT INTO metric_snapshots (client_id, chat_messages, messages_sent, crm_syncs, leads_total, leads_converted, payments_cents, payments_count, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		snapshot.ClientID, snapshot.ChatMessages, snapshot.MessagesSent, snapshot.CrmSyncs,
		snapshot.LeadsTotal, snapshot.LeadsConverted, snapshot.PaymentsCents,
		snapshot.PaymentsCount, snapshot.CollectedAt,
	).Scan(&newID)

	return newID, err
}

func (r *MetricRepository) GetSnapshots(ctx context.Context, clientID uint64, from, to time.Time) ([]entities.MetricSnapshot, error) {
	query := `
		SELECT id, client_id, chat_messages, messages_sent, crm_syncs, leads_total, leads_converted, payments_cents, payments_count, collected_at
		FROM metric_snapshots
		WHERE client_id = $1 AND collected_at >= $2 AND collected_at < $3
		ORDER BY collected_at ASC
	`
	rows, err := r.storage.Query(ctx, query, clientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []entities.MetricSnapshot
	for rows.Next() {
		var s entities.MetricSnapshot
		if err := rows.Scan(
			&s.ID, &s.ClientID, &s.ChatMessages, &s.MessagesSent, &s.CrmSyncs,
			&s.LeadsTotal, &s.LeadsConverted, &s.PaymentsCents, &s.PaymentsCount, &s.CollectedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования metric_snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, nil
}

func (r *MetricRepository) GetLatest(ctx context.Context, clientID uint64) (*entities.MetricSnapshot, error) {
	query := `
		SELECT id, client_id, chat_messages, messages_sent, crm_syncs, leads_total, leads_converted, payments_cents, payments_count, collected_at
		FROM metric_snapshots
		WHERE client_id = $1
		ORDER BY collected_at DESC
		LIMIT 1
	`
	var s entities.MetricSnapshot
	err := r.storage.QueryRow(ctx, query, clientID).Scan(
		&s.ID, &s.ClientID, &s.ChatMessages, &s.MessagesSent, &s.CrmSyncs,
		&s.LeadsTotal, &s.LeadsConverted, &s.PaymentsCents, &s.PaymentsCount, &s.CollectedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
