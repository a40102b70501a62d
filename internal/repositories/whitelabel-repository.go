package repositories

import (
	"context"
	"encoding/json"
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

const whitelabelTable = "whitelabel_clients"

var whitelabelMap = map[string]string{
	"id":         "w.id",
	"slug":       "w.slug",
	"name":       "w.name",
	"is_active":  "w.is_active",
	"created_at": "w.created_at",
}

const whitelabelColumns = `w.id, w.slug, w.name, w.branding, w.features, w.integrations,
	w.plugins, w.is_active, w.created_at, w.updated_at`

type WhitelabelRepositoryInterface interface {
	GetClients(ctx context.Context, filter types.Filter) ([]entities.WhitelabelClient, uint64, error)
	FindClient(ctx context.Context, id uint64) (*entities.WhitelabelClient, error)
	FindClientBySlug(ctx context.Context, slug string) (*entities.WhitelabelClient, error)
	CreateClient(ctx context.Context, client entities.WhitelabelClient) (uint64, error)
	UpdateConfigColumn(ctx context.Context, id uint64, column string, value json.RawMessage) error
	SetActive(ctx context.Context, id uint64, active bool) error
	DeleteClient(ctx context.Context, id uint64) error

	CreateWebhook(ctx context.Context, webhook entities.ConfigWebhook) (uint64, error)
	GetWebhooks(ctx context.Context, clientID uint64) ([]entities.ConfigWebhook, error)
	DeleteWebhook(ctx context.Context, id uint64) error

	RecordChange(ctx context.Context, change entities.ConfigChange) error
	GetChanges(ctx context.Context, clientID uint64, limit uint64) ([]entities.ConfigChange, error)
}

type WhitelabelRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewWhitelabelRepository(storage *pgxpool.Pool, logger *zap.Logger) WhitelabelRepositoryInterface {
	return &WhitelabelRepository{storage: storage, logger: logger}
}

func scanWhitelabelClient(row pgx.Row) (*entities.WhitelabelClient, error) {
	var w entities.WhitelabelClient

	err := row.Scan(
		&w.ID, &w.Slug, &w.Name, &w.Branding, &w.Features, &w.Integrations,
		&w.Plugins, &w.IsActive, &w.CreatedAt, &w.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования whitelabel_client: %w", err)
	}

	return &w, nil
}

func (r *WhitelabelRepository) GetClients(ctx context.Context, filter types.Filter) ([]entities.WhitelabelClient, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	applySearch := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter.Search != "" {
			pat := "%" + filter.Search + "%"
			return b.Where(sq.Or{
				sq.ILike{"w.slug": pat},
				sq.ILike{"w.name": pat},
			})
		}
		return b
	}

	countBuilder := psql.Select("COUNT(w.id)").From(whitelabelTable + " AS w").
		Where(sq.Eq{"w.deleted_at": nil})
	countBuilder = applySearch(countBuilder)

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, whitelabelMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.WhitelabelClient{}, 0, nil
	}

	baseBuilder := psql.Select(whitelabelColumns).From(whitelabelTable + " AS w").
		Where(sq.Eq{"w.deleted_at": nil})
	baseBuilder = applySearch(baseBuilder)
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("w.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, whitelabelMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	clients := make([]entities.WhitelabelClient, 0, filter.Limit)
	for rows.Next() {
		client, err := scanWhitelabelClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *client)
	}

	return clients, total, nil
}

func (r *WhitelabelRepository) findOne(ctx context.Context, where sq.Sqlizer) (*entities.WhitelabelClient, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	queryBuilder := psql.Select(whitelabelColumns).From(whitelabelTable + " AS w").
		Where(sq.Eq{"w.deleted_at": nil}).Where(where)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanWhitelabelClient(r.storage.QueryRow(ctx, query, args...))
}

func (r *WhitelabelRepository) FindClient(ctx context.Context, id uint64) (*entities.WhitelabelClient, error) {
	return r.findOne(ctx, sq.Eq{"w.id": id})
}

func (r *WhitelabelRepository) FindClientBySlug(ctx context.Context, slug string) (*entities.WhitelabelClient, error) {
	return r.findOne(ctx, sq.Eq{"w.slug": slug})
}

func (r *WhitelabelRepository) CreateClient(ctx context.Context, client entities.WhitelabelClient) (uint64, error) {
	query := `
		INSERT INTO whitelabel_clients (slug, name, branding, features, integrations, plugins, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		client.Slug, client.Name, client.Branding, client.Features,
		client.Integrations, client.Plugins, client.IsActive,
	).Scan(&newID)

	return newID, err
}

// UpdateConfigColumn перезаписывает одну JSON-колонку конфигурации.
// Имя колонки валидируется по белому списку, в запрос оно не подставляется
// из пользовательского ввода напрямую.
func (r *WhitelabelRepository) UpdateConfigColumn(ctx context.Context, id uint64, column string, value json.RawMessage) error {
	switch column {
	case "branding", "features", "integrations", "plugins":
	default:
		return fmt.Errorf("недопустимая колонка конфигурации: %s", column)
	}

	query := fmt.Sprintf(`UPDATE whitelabel_clients SET %s = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`, column)
	result, err := r.storage.Exec(ctx, query, value, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *WhitelabelRepository) SetActive(ctx context.Context, id uint64, active bool) error {
	query := `UPDATE whitelabel_clients SET is_active = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.storage.Exec(ctx, query, active, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *WhitelabelRepository) DeleteClient(ctx context.Context, id uint64) error {
	query := `UPDATE whitelabel_clients SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- Вебхуки конфигурации ---

func (r *WhitelabelRepository) CreateWebhook(ctx context.Context, webhook entities.ConfigWebhook) (uint64, error) {
	query := `
		INSERT INTO config_webhooks (client_id, url, events, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query, webhook.ClientID, webhook.URL, webhook.Events).Scan(&newID)
	return newID, err
}

func (r *WhitelabelRepository) GetWebhooks(ctx context.Context, clientID uint64) ([]entities.ConfigWebhook, error) {
	query := `
		SELECT id, client_id, url, events, created_at, updated_at
		FROM config_webhooks
		WHERE client_id = $1
		ORDER BY id ASC
	`
	rows, err := r.storage.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []entities.ConfigWebhook
	for rows.Next() {
		var w entities.ConfigWebhook
		if err := rows.Scan(&w.ID, &w.ClientID, &w.URL, &w.Events, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования config_webhook: %w", err)
		}
		webhooks = append(webhooks, w)
	}

	return webhooks, nil
}

func (r *WhitelabelRepository) DeleteWebhook(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM config_webhooks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// --- История изменений ---

func (r *WhitelabelRepository) RecordChange(ctx context.Context, change entities.ConfigChange) error {
	query := `
		INSERT INTO config_changes (client_id, action, actor_id, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.storage.Exec(ctx, query, change.ClientID, change.Action, change.ActorID)
	return err
}

func (r *WhitelabelRepository) GetChanges(ctx context.Context, clientID uint64, limit uint64) ([]entities.ConfigChange, error) {
	if limit == 0 {
		limit = 50
	}
	query := `
		SELECT id, client_id, action, actor_id, created_at, updated_at
		FROM config_changes
		WHERE client_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := r.storage.Query(ctx, query, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []entities.ConfigChange
	for rows.Next() {
		var c entities.ConfigChange
		var actorID *uint64
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Action, &actorID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования config_change: %w", err)
		}
		c.ActorID = actorID
		changes = append(changes, c)
	}

	return changes, nil
}
