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

const leadTable = "leads"

var leadMap = map[string]string{
	"id":         "l.id",
	"client_id":  "l.client_id",
	"full_name":  "l.full_name",
	"email":      "l.email",
	"source":     "l.source",
	"status":     "l.status",
	"created_at": "l.created_at",
	"updated_at": "l.updated_at",
}

const leadColumns = `l.id, l.client_id, l.full_name, l.email, l.phone_number, l.company,
	l.source, l.status, l.telegram_chat_id, l.notes, l.created_at, l.updated_at`

type LeadRepositoryInterface interface {
	GetLeads(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Lead, uint64, error)
	FindLead(ctx context.Context, id uint64) (*entities.Lead, error)
	FindLeadByEmail(ctx context.Context, clientID uint64, email string) (*entities.Lead, error)
	FindLeadByTelegramChatID(ctx context.Context, clientID uint64, chatID int64) (*entities.Lead, error)
	CreateLead(ctx context.Context, lead entities.Lead) (uint64, error)
	UpdateLead(ctx context.Context, id uint64, lead entities.Lead) error
	UpdateLeadStatus(ctx context.Context, id uint64, status string) error
	DeleteLead(ctx context.Context, id uint64) error
	CountByStatus(ctx context.Context, clientID uint64, status string) (uint64, error)
}

type LeadRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewLeadRepository(storage *pgxpool.Pool, logger *zap.Logger) LeadRepositoryInterface {
	return &LeadRepository{storage: storage, logger: logger}
}

func scanLead(row pgx.Row) (*entities.Lead, error) {
	var l entities.Lead
	var email, phone, company, notes sql.NullString
	var telegramChatID sql.NullInt64

	err := row.Scan(
		&l.ID, &l.ClientID, &l.FullName, &email, &phone, &company,
		&l.Source, &l.Status, &telegramChatID, &notes, &l.CreatedAt, &l.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования lead: %w", err)
	}

	if email.Valid {
		l.Email = &email.String
	}
	if phone.Valid {
		l.PhoneNumber = &phone.String
	}
	if company.Valid {
		l.Company = &company.String
	}
	if notes.Valid {
		l.Notes = &notes.String
	}
	if telegramChatID.Valid {
		l.TelegramChatID = &telegramChatID.Int64
	}

	return &l, nil
}

func (r *LeadRepository) GetLeads(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Lead, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	applyBase := func(b sq.SelectBuilder) sq.SelectBuilder {
		b = b.Where(sq.Eq{"l.client_id": clientID, "l.deleted_at": nil})
		if filter.Search != "" {
			pat := "%" + filter.Search + "%"
			b = b.Where(sq.Or{
				sq.ILike{"l.full_name": pat},
				sq.ILike{"l.email": pat},
				sq.ILike{"l.company": pat},
			})
		}
		return b
	}

	countBuilder := applyBase(psql.Select("COUNT(l.id)").From(leadTable + " AS l"))

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, leadMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Lead{}, 0, nil
	}

	baseBuilder := applyBase(psql.Select(leadColumns).From(leadTable + " AS l"))
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("l.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, leadMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]entities.Lead, 0, filter.Limit)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, *lead)
	}

	return leads, total, nil
}

func (r *LeadRepository) findOne(ctx context.Context, where sq.Sqlizer) (*entities.Lead, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	queryBuilder := psql.Select(leadColumns).From(leadTable + " AS l").
		Where(sq.Eq{"l.deleted_at": nil}).Where(where)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanLead(r.storage.QueryRow(ctx, query, args...))
}

func (r *LeadRepository) FindLead(ctx context.Context, id uint64) (*entities.Lead, error) {
	return r.findOne(ctx, sq.Eq{"l.id": id})
}

func (r *LeadRepository) FindLeadByEmail(ctx context.Context, clientID uint64, email string) (*entities.Lead, error) {
	return r.findOne(ctx, sq.Eq{"l.client_id": clientID, "l.email": email})
}

func (r *LeadRepository) FindLeadByTelegramChatID(ctx context.Context, clientID uint64, chatID int64) (*entities.Lead, error) {
	return r.findOne(ctx, sq.Eq{"l.client_id": clientID, "l.telegram_chat_id": chatID})
}

func (r *LeadRepository) CreateLead(ctx context.Context, lead entities.Lead) (uint64, error) {
	query := `
		INSERT INTO leads (client_id, full_name, email, phone_number, company, source, status, telegram_chat_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		lead.ClientID, lead.FullName, lead.Email, lead.PhoneNumber, lead.Company,
		lead.Source, lead.Status, lead.TelegramChatID, lead.Notes,
	).Scan(&newID)

	return newID, err
}

func (r *LeadRepository) UpdateLead(ctx context.Context, id uint64, lead entities.Lead) error {
	query := `
		UPDATE leads
		SET full_name = $1, email = $2, phone_number = $3, company = $4,
		    status = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
	`
	result, err := r.storage.Exec(ctx, query,
		lead.FullName, lead.Email, lead.PhoneNumber, lead.Company,
		lead.Status, lead.Notes, id,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *LeadRepository) UpdateLeadStatus(ctx context.Context, id uint64, status string) error {
	query := `UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.storage.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *LeadRepository) DeleteLead(ctx context.Context, id uint64) error {
	query := `UPDATE leads SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *LeadRepository) CountByStatus(ctx context.Context, clientID uint64, status string) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select("COUNT(id)").From(leadTable).
		Where(sq.Eq{"client_id": clientID, "deleted_at": nil})
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
