package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ai-assistant/internal/entities"
	db "ai-assistant/internal/infrastructure/bd"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/types"
)

const crmSyncTable = "crm_sync_records"

var crmSyncMap = map[string]string{
	"id":         "s.id",
	"client_id":  "s.client_id",
	"email":      "s.email",
	"platform":   "s.platform",
	"success":    "s.success",
	"created_at": "s.created_at",
}

const crmSyncColumns = `s.id, s.client_id, s.email, s.platform, s.remote_id,
	s.success, s.error, s.created_at, s.updated_at`

type CrmSyncRepositoryInterface interface {
	GetSyncRecords(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.CrmSyncRecord, uint64, error)
	CreateSyncRecord(ctx context.Context, record entities.CrmSyncRecord) (uint64, error)
	FindLastSync(ctx context.Context, clientID uint64, email, platform string) (*entities.CrmSyncRecord, error)
	CountSyncs(ctx context.Context, clientID uint64) (uint64, error)
}

type CrmSyncRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCrmSyncRepository(storage *pgxpool.Pool, logger *zap.Logger) CrmSyncRepositoryInterface {
	return &CrmSyncRepository{storage: storage, logger: logger}
}

func scanCrmSyncRecord(row pgx.Row) (*entities.CrmSyncRecord, error) {
	var s entities.CrmSyncRecord
	var remoteID, syncError sql.NullString

	err := row.Scan(
		&s.ID, &s.ClientID, &s.Email, &s.Platform, &remoteID,
		&s.Success, &syncError, &s.CreatedAt, &s.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования crm_sync_record: %w", err)
	}

	if remoteID.Valid {
		s.RemoteID = &remoteID.String
	}
	if syncError.Valid {
		s.Error = &syncError.String
	}

	return &s, nil
}

func (r *CrmSyncRepository) GetSyncRecords(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.CrmSyncRecord, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(s.id)").From(crmSyncTable + " AS s").
		Where(sq.Eq{"s.client_id": clientID})

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, crmSyncMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.CrmSyncRecord{}, 0, nil
	}

	baseBuilder := psql.Select(crmSyncColumns).From(crmSyncTable + " AS s").
		Where(sq.Eq{"s.client_id": clientID})
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("s.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, crmSyncMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]entities.CrmSyncRecord, 0, filter.Limit)
	for rows.Next() {
		record, err := scanCrmSyncRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *record)
	}

	return records, total, nil
}

func (r *CrmSyncRepository) CreateSyncRecord(ctx context.Context, record entities.CrmSyncRecord) (uint64, error) {
	query := `
		INSERT INTO crm_sync_records (client_id, email, platform, remote_id, success, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		record.ClientID, record.Email, record.Platform, record.RemoteID,
		record.Success, record.Error,
	).Scan(&newID)

	return newID, err
}

func (r *CrmSyncRepository) FindLastSync(ctx context.Context, clientID uint64, email, platform string) (*entities.CrmSyncRecord, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(crmSyncColumns).From(crmSyncTable + " AS s").
		Where(sq.Eq{"s.client_id": clientID, "s.email": email, "s.platform": platform}).
		OrderBy("s.id DESC").Limit(1)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanCrmSyncRecord(r.storage.QueryRow(ctx, query, args...))
}

func (r *CrmSyncRepository) CountSyncs(ctx context.Context, clientID uint64) (uint64, error) {
	query := `SELECT COUNT(id) FROM crm_sync_records WHERE client_id = $1 AND success = TRUE`
	var total uint64
	err := r.storage.QueryRow(ctx, query, clientID).Scan(&total)
	return total, err
}
