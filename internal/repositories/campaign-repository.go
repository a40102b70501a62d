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

const campaignTable = "campaigns"

var campaignMap = map[string]string{
	"id":         "c.id",
	"client_id":  "c.client_id",
	"lead_id":    "c.lead_id",
	"template":   "c.template",
	"status":     "c.status",
	"created_at": "c.created_at",
}

const campaignColumns = `c.id, c.client_id, c.lead_id, c.template, c.status,
	c.current_step, c.next_run_at, c.created_at, c.updated_at`

type CampaignRepositoryInterface interface {
	GetCampaigns(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Campaign, uint64, error)
	FindCampaign(ctx context.Context, id uint64) (*entities.Campaign, error)
	FindActiveByLead(ctx context.Context, leadID uint64) (*entities.Campaign, error)
	CreateCampaign(ctx context.Context, campaign entities.Campaign) (uint64, error)
	AdvanceCampaign(ctx context.Context, id uint64, nextStep int, nextRunAt *time.Time) error
	UpdateCampaignStatus(ctx context.Context, id uint64, status string) error
	GetDue(ctx context.Context, now time.Time) ([]entities.Campaign, error)
	CreateStep(ctx context.Context, step entities.CampaignStep) (uint64, error)
	GetSteps(ctx context.Context, campaignID uint64) ([]entities.CampaignStep, error)
	MarkStepExecuted(ctx context.Context, stepID uint64, success bool) error
}

type CampaignRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCampaignRepository(storage *pgxpool.Pool, logger *zap.Logger) CampaignRepositoryInterface {
	return &CampaignRepository{storage: storage, logger: logger}
}

func scanCampaign(row pgx.Row) (*entities.Campaign, error) {
	var c entities.Campaign
	var nextRunAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.ClientID, &c.LeadID, &c.Template, &c.Status,
		&c.CurrentStep, &nextRunAt, &c.CreatedAt, &c.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования campaign: %w", err)
	}

	if nextRunAt.Valid {
		c.NextRunAt = &nextRunAt.Time
	}

	return &c, nil
}

func (r *CampaignRepository) GetCampaigns(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Campaign, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(c.id)").From(campaignTable + " AS c").
		Where(sq.Eq{"c.client_id": clientID})

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, campaignMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Campaign{}, 0, nil
	}

	baseBuilder := psql.Select(campaignColumns).From(campaignTable + " AS c").
		Where(sq.Eq{"c.client_id": clientID})
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("c.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, campaignMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := make([]entities.Campaign, 0, filter.Limit)
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, *campaign)
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) findOne(ctx context.Context, where sq.Sqlizer) (*entities.Campaign, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	queryBuilder := psql.Select(campaignColumns).From(campaignTable + " AS c").Where(where)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanCampaign(r.storage.QueryRow(ctx, query, args...))
}

func (r *CampaignRepository) FindCampaign(ctx context.Context, id uint64) (*entities.Campaign, error) {
	return r.findOne(ctx, sq.Eq{"c.id": id})
}

func (r *CampaignRepository) FindActiveByLead(ctx context.Context, leadID uint64) (*entities.Campaign, error) {
	return r.findOne(ctx, sq.Eq{"c.lead_id": leadID, "c.status": entities.CampaignStatusActive})
}

func (r *CampaignRepository) CreateCampaign(ctx context.Context, campaign entities.Campaign) (uint64, error) {
	query := `
		INSERT INTO campaigns (client_id, lead_id, template, status, current_step, next_run_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		campaign.ClientID, campaign.LeadID, campaign.Template, campaign.Status,
		campaign.CurrentStep, campaign.NextRunAt,
	).Scan(&newID)

	return newID, err
}

func (r *CampaignRepository) AdvanceCampaign(ctx context.Context, id uint64, nextStep int, nextRunAt *time.Time) error {
	query := `UPDATE campaigns SET current_step = $1, next_run_at = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.storage.Exec(ctx, query, nextStep, nextRunAt, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CampaignRepository) UpdateCampaignStatus(ctx context.Context, id uint64, status string) error {
	query := `UPDATE campaigns SET status = $1, next_run_at = NULL, updated_at = NOW() WHERE id = $2`
	result, err := r.storage.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetDue возвращает активные кампании, у которых настало время
// следующего шага.
func (r *CampaignRepository) GetDue(ctx context.Context, now time.Time) ([]entities.Campaign, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(campaignColumns).From(campaignTable + " AS c").
		Where(sq.Eq{"c.status": entities.CampaignStatusActive}).
		Where(sq.LtOrEq{"c.next_run_at": now}).
		OrderBy("c.next_run_at ASC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []entities.Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *campaign)
	}

	return campaigns, nil
}

func (r *CampaignRepository) CreateStep(ctx context.Context, step entities.CampaignStep) (uint64, error) {
	query := `
		INSERT INTO campaign_steps (campaign_id, step_index, channel, subject, body, executed_at, success, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		step.CampaignID, step.StepIndex, step.Channel, step.Subject, step.Body,
		step.ExecutedAt, step.Success,
	).Scan(&newID)

	return newID, err
}

func (r *CampaignRepository) GetSteps(ctx context.Context, campaignID uint64) ([]entities.CampaignStep, error) {
	query := `
		SELECT id, campaign_id, step_index, channel, subject, body, executed_at, success, created_at, updated_at
		FROM campaign_steps
		WHERE campaign_id = $1
		ORDER BY step_index ASC
	`
	rows, err := r.storage.Query(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []entities.CampaignStep
	for rows.Next() {
		var s entities.CampaignStep
		var executedAt sql.NullTime
		var success sql.NullBool

		if err := rows.Scan(
			&s.ID, &s.CampaignID, &s.StepIndex, &s.Channel, &s.Subject, &s.Body,
			&executedAt, &success, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования campaign_step: %w", err)
		}

		if executedAt.Valid {
			s.ExecutedAt = &executedAt.Time
		}
		if success.Valid {
			s.Success = &success.Bool
		}
		steps = append(steps, s)
	}

	return steps, nil
}

func (r *CampaignRepository) MarkStepExecuted(ctx context.Context, stepID uint64, success bool) error {
	query := `UPDATE campaign_steps SET executed_at = NOW(), success = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.storage.Exec(ctx, query, success, stepID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
