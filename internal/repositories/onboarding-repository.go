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
	onboardingTable    = "onboarding_progress"
	supportTicketTable = "support_tickets"
)

const onboardingColumns = `o.id, o.client_id, o.current_step, o.completed_steps,
	o.completed_at, o.last_reminder_at, o.created_at, o.updated_at`

type OnboardingRepositoryInterface interface {
	FindProgress(ctx context.Context, clientID uint64) (*entities.OnboardingProgress, error)
	CreateProgress(ctx context.Context, progress entities.OnboardingProgress) (uint64, error)
	UpdateProgress(ctx context.Context, clientID uint64, progress entities.OnboardingProgress) error
	TouchReminder(ctx context.Context, clientID uint64) error
	GetStalled(ctx context.Context, inactiveFor time.Duration) ([]entities.OnboardingProgress, error)

	CreateTicket(ctx context.Context, ticket entities.SupportTicket) (uint64, error)
	GetTickets(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.SupportTicket, uint64, error)
	ResolveTicket(ctx context.Context, id uint64) error
}

type OnboardingRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOnboardingRepository(storage *pgxpool.Pool, logger *zap.Logger) OnboardingRepositoryInterface {
	return &OnboardingRepository{storage: storage, logger: logger}
}

func scanOnboardingProgress(row pgx.Row) (*entities.OnboardingProgress, error) {
	var o entities.OnboardingProgress
	var completedAt, lastReminderAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.ClientID, &o.CurrentStep, &o.CompletedSteps,
		&completedAt, &lastReminderAt, &o.CreatedAt, &o.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования onboarding_progress: %w", err)
	}

	if completedAt.Valid {
		o.CompletedAt = &completedAt.Time
	}
	if lastReminderAt.Valid {
		o.LastReminderAt = &lastReminderAt.Time
	}

	return &o, nil
}

func (r *OnboardingRepository) FindProgress(ctx context.Context, clientID uint64) (*entities.OnboardingProgress, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(onboardingColumns).From(onboardingTable + " AS o").
		Where(sq.Eq{"o.client_id": clientID})

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanOnboardingProgress(r.storage.QueryRow(ctx, query, args...))
}

func (r *OnboardingRepository) CreateProgress(ctx context.Context, progress entities.OnboardingProgress) (uint64, error) {
	query := `
		INSERT INTO onboarding_progress (client_id, current_step, completed_steps, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		progress.ClientID, progress.CurrentStep, progress.CompletedSteps, progress.CompletedAt,
	).Scan(&newID)

	return newID, err
}

func (r *OnboardingRepository) UpdateProgress(ctx context.Context, clientID uint64, progress entities.OnboardingProgress) error {
	query := `
		UPDATE onboarding_progress
		SET current_step = $1, completed_steps = $2, completed_at = $3, updated_at = NOW()
		WHERE client_id = $4
	`
	result, err := r.storage.Exec(ctx, query,
		progress.CurrentStep, progress.CompletedSteps, progress.CompletedAt, clientID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OnboardingRepository) TouchReminder(ctx context.Context, clientID uint64) error {
	query := `UPDATE onboarding_progress SET last_reminder_at = NOW(), updated_at = NOW() WHERE client_id = $1`
	result, err := r.storage.Exec(ctx, query, clientID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetStalled возвращает незавершенные онбординги без активности и без
// недавнего напоминания. Используется шедулером напоминаний.
func (r *OnboardingRepository) GetStalled(ctx context.Context, inactiveFor time.Duration) ([]entities.OnboardingProgress, error) {
	cutoff := time.Now().Add(-inactiveFor)
	query := `
		SELECT ` + "o.id, o.client_id, o.current_step, o.completed_steps, o.completed_at, o.last_reminder_at, o.created_at, o.updated_at" + `
		FROM onboarding_progress o
		WHERE o.completed_at IS NULL
		  AND o.updated_at < $1
		  AND (o.last_reminder_at IS NULL OR o.last_reminder_at < $1)
		ORDER BY o.id ASC
	`
	rows, err := r.storage.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stalled []entities.OnboardingProgress
	for rows.Next() {
		progress, err := scanOnboardingProgress(rows)
		if err != nil {
			return nil, err
		}
		stalled = append(stalled, *progress)
	}

	return stalled, nil
}

// --- Тикеты поддержки ---

var supportTicketMap = map[string]string{
	"id":         "t.id",
	"client_id":  "t.client_id",
	"topic":      "t.topic",
	"status":     "t.status",
	"created_at": "t.created_at",
}

func (r *OnboardingRepository) CreateTicket(ctx context.Context, ticket entities.SupportTicket) (uint64, error) {
	query := `
		INSERT INTO support_tickets (client_id, telegram_chat_id, topic, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		ticket.ClientID, ticket.TelegramChatID, ticket.Topic, ticket.Message, ticket.Status,
	).Scan(&newID)

	return newID, err
}

func (r *OnboardingRepository) GetTickets(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.SupportTicket, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(t.id)").From(supportTicketTable + " AS t").
		Where(sq.Eq{"t.client_id": clientID})

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, supportTicketMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.SupportTicket{}, 0, nil
	}

	baseBuilder := psql.Select(
		"t.id", "t.client_id", "t.telegram_chat_id", "t.topic", "t.message", "t.status",
		"t.created_at", "t.updated_at",
	).From(supportTicketTable + " AS t").Where(sq.Eq{"t.client_id": clientID})
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("t.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, supportTicketMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets := make([]entities.SupportTicket, 0, filter.Limit)
	for rows.Next() {
		var t entities.SupportTicket
		if err := rows.Scan(
			&t.ID, &t.ClientID, &t.TelegramChatID, &t.Topic, &t.Message, &t.Status,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования support_ticket: %w", err)
		}
		tickets = append(tickets, t)
	}

	return tickets, total, nil
}

func (r *OnboardingRepository) ResolveTicket(ctx context.Context, id uint64) error {
	query := `UPDATE support_tickets SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.storage.Exec(ctx, query, entities.TicketStatusResolved, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
