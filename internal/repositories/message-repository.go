package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ai-assistant/internal/entities"
	db "ai-assistant/internal/infrastructure/bd"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/types"
)

const (
	messageLogTable      = "message_logs"
	messageTemplateTable = "message_templates"
)

var messageLogMap = map[string]string{
	"id":          "m.id",
	"client_id":   "m.client_id",
	"type":        "m.type",
	"recipient":   "m.recipient",
	"provider":    "m.provider",
	"success":     "m.success",
	"campaign_id": "m.campaign_id",
	"created_at":  "m.created_at",
}

const messageLogColumns = `m.id, m.client_id, m.type, m.recipient, m.subject,
	m.provider, m.success, m.error, m.campaign_id, m.created_at, m.updated_at`

// MessagingStats - агрегат отправок за период.
type MessagingStats struct {
	EmailsSent uint64
	EmailsFail uint64
	SMSSent    uint64
	SMSFail    uint64
}

type MessageRepositoryInterface interface {
	GetMessageLogs(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageLog, uint64, error)
	CreateMessageLog(ctx context.Context, log entities.MessageLog) (uint64, error)
	GetStats(ctx context.Context, clientID uint64, from, to time.Time) (*MessagingStats, error)
	CountSent(ctx context.Context, clientID uint64) (uint64, error)

	GetTemplates(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageTemplate, uint64, error)
	FindTemplate(ctx context.Context, id uint64) (*entities.MessageTemplate, error)
	FindTemplateByName(ctx context.Context, clientID uint64, name string) (*entities.MessageTemplate, error)
	CreateTemplate(ctx context.Context, template entities.MessageTemplate) (uint64, error)
	DeleteTemplate(ctx context.Context, id uint64) error
}

type MessageRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewMessageRepository(storage *pgxpool.Pool, logger *zap.Logger) MessageRepositoryInterface {
	return &MessageRepository{storage: storage, logger: logger}
}

func scanMessageLog(row pgx.Row) (*entities.MessageLog, error) {
	var m entities.MessageLog
	var subject, sendError sql.NullString
	var campaignID sql.NullInt64

	err := row.Scan(
		&m.ID, &m.ClientID, &m.Type, &m.Recipient, &subject,
		&m.Provider, &m.Success, &sendError, &campaignID, &m.CreatedAt, &m.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования message_log: %w", err)
	}

	if subject.Valid {
		m.Subject = &subject.String
	}
	if sendError.Valid {
		m.Error = &sendError.String
	}
	if campaignID.Valid {
		id := uint64(campaignID.Int64)
		m.CampaignID = &id
	}

	return &m, nil
}

func (r *MessageRepository) GetMessageLogs(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageLog, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	applyBase := func(b sq.SelectBuilder) sq.SelectBuilder {
		b = b.Where(sq.Eq{"m.client_id": clientID})
		if filter.Search != "" {
			b = b.Where(sq.ILike{"m.recipient": "%" + filter.Search + "%"})
		}
		return b
	}

	countBuilder := applyBase(psql.Select("COUNT(m.id)").From(messageLogTable + " AS m"))

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, messageLogMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.MessageLog{}, 0, nil
	}

	baseBuilder := applyBase(psql.Select(messageLogColumns).From(messageLogTable + " AS m"))
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("m.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, messageLogMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]entities.MessageLog, 0, filter.Limit)
	for rows.Next() {
		log, err := scanMessageLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, *log)
	}

	return logs, total, nil
}

func (r *MessageRepository) CreateMessageLog(ctx context.Context, log entities.MessageLog) (uint64, error) {
	query := `
		INSERT INTO message_logs (client_id, type, recipient, subject, provider, success, error, campaign_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		log.ClientID, log.Type, log.Recipient, log.Subject, log.Provider,
		log.Success, log.Error, log.CampaignID,
	).Scan(&newID)

	return newID, err
}

func (r *MessageRepository) GetStats(ctx context.Context, clientID uint64, from, to time.Time) (*MessagingStats, error) {
	query := `
		SELECT
			COUNT(id) FILTER (WHERE type = 'email' AND success),
			COUNT(id) FILTER (WHERE type = 'email' AND NOT success),
			COUNT(id) FILTER (WHERE type = 'sms' AND success),
			COUNT(id) FILTER (WHERE type = 'sms' AND NOT success)
		FROM message_logs
		WHERE client_id = $1 AND created_at >= $2 AND created_at < $3
	`
	var stats MessagingStats
	err := r.storage.QueryRow(ctx, query, clientID, from, to).Scan(
		&stats.EmailsSent, &stats.EmailsFail, &stats.SMSSent, &stats.SMSFail,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *MessageRepository) CountSent(ctx context.Context, clientID uint64) (uint64, error) {
	query := `SELECT COUNT(id) FROM message_logs WHERE client_id = $1 AND success = TRUE`
	var total uint64
	err := r.storage.QueryRow(ctx, query, clientID).Scan(&total)
	return total, err
}

// --- Шаблоны ---

var messageTemplateMap = map[string]string{
	"id":         "t.id",
	"client_id":  "t.client_id",
	"type":       "t.type",
	"name":       "t.name",
	"created_at": "t.created_at",
}

const messageTemplateColumns = `t.id, t.client_id, t.type, t.name, t.subject, t.content,
	t.created_at, t.updated_at`

func scanMessageTemplate(row pgx.Row) (*entities.MessageTemplate, error) {
	var t entities.MessageTemplate
	var subject sql.NullString

	err := row.Scan(
		&t.ID, &t.ClientID, &t.Type, &t.Name, &subject, &t.Content,
		&t.CreatedAt, &t.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования message_template: %w", err)
	}

	if subject.Valid {
		t.Subject = &subject.String
	}

	return &t, nil
}

func (r *MessageRepository) GetTemplates(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.MessageTemplate, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(t.id)").From(messageTemplateTable + " AS t").
		Where(sq.Eq{"t.client_id": clientID})

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, messageTemplateMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.MessageTemplate{}, 0, nil
	}

	baseBuilder := psql.Select(messageTemplateColumns).From(messageTemplateTable + " AS t").
		Where(sq.Eq{"t.client_id": clientID})
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("t.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, messageTemplateMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	templates := make([]entities.MessageTemplate, 0, filter.Limit)
	for rows.Next() {
		template, err := scanMessageTemplate(rows)
		if err != nil {
			return nil, 0, err
		}
		templates = append(templates, *template)
	}

	return templates, total, nil
}

func (r *MessageRepository) FindTemplate(ctx context.Context, id uint64) (*entities.MessageTemplate, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(messageTemplateColumns).From(messageTemplateTable + " AS t").
		Where(sq.Eq{"t.id": id})

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanMessageTemplate(r.storage.QueryRow(ctx, query, args...))
}

func (r *MessageRepository) FindTemplateByName(ctx context.Context, clientID uint64, name string) (*entities.MessageTemplate, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(messageTemplateColumns).From(messageTemplateTable + " AS t").
		Where(sq.Eq{"t.client_id": clientID, "t.name": name})

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanMessageTemplate(r.storage.QueryRow(ctx, query, args...))
}

func (r *MessageRepository) CreateTemplate(ctx context.Context, template entities.MessageTemplate) (uint64, error) {
	query := `
		INSERT INTO message_templates (client_id, type, name, subject, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		template.ClientID, template.Type, template.Name, template.Subject, template.Content,
	).Scan(&newID)

	return newID, err
}

func (r *MessageRepository) DeleteTemplate(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM message_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
