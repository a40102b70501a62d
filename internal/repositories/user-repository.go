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

const userTable = "users"

// Карта полей (фильтр + сортировка).
var userMap = map[string]string{
	"id":         "u.id",
	"full_name":  "u.full_name",
	"email":      "u.email",
	"role":       "u.role",
	"client_id":  "u.client_id",
	"plan_id":    "u.plan_id",
	"is_active":  "u.is_active",
	"created_at": "u.created_at",
	"updated_at": "u.updated_at",
}

const userColumns = `u.id, u.full_name, u.email, u.phone_number, u.password, u.role,
	u.client_id, u.telegram_chat_id, u.telegram_name, u.plan_id, u.is_active,
	u.created_at, u.updated_at`

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	FindUserByTelegramChatID(ctx context.Context, chatID int64) (*entities.User, error)
	CreateUser(ctx context.Context, user entities.User) (uint64, error)
	UpdateUser(ctx context.Context, id uint64, user entities.User) error
	LinkTelegram(ctx context.Context, id uint64, chatID int64, telegramName string) error
	UpdatePlan(ctx context.Context, id uint64, planID string) error
	DeleteUser(ctx context.Context, id uint64) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	var clientID sql.NullInt64
	var telegramName sql.NullString

	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.PhoneNumber, &u.Password, &u.Role,
		&clientID, &u.TelegramChatID, &telegramName, &u.PlanID, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования user: %w", err)
	}

	if clientID.Valid {
		id := uint64(clientID.Int64)
		u.ClientID = &id
	}
	if telegramName.Valid {
		u.TelegramName = &telegramName.String
	}

	return &u, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	applySearch := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter.Search != "" {
			pat := "%" + filter.Search + "%"
			return b.Where(sq.Or{
				sq.ILike{"u.full_name": pat},
				sq.ILike{"u.email": pat},
			})
		}
		return b
	}

	countBuilder := psql.Select("COUNT(u.id)").From(userTable + " AS u").
		Where(sq.Eq{"u.deleted_at": nil})
	countBuilder = applySearch(countBuilder)

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, userMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.User{}, 0, nil
	}

	baseBuilder := psql.Select(userColumns).From(userTable + " AS u").
		Where(sq.Eq{"u.deleted_at": nil})
	baseBuilder = applySearch(baseBuilder)

	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("u.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, userMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]entities.User, 0, filter.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}

	return users, total, nil
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Sqlizer) (*entities.User, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	queryBuilder := psql.Select(userColumns).From(userTable + " AS u").
		Where(sq.Eq{"u.deleted_at": nil}).Where(where)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *UserRepository) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"u.id": id})
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"u.email": email})
}

func (r *UserRepository) FindUserByTelegramChatID(ctx context.Context, chatID int64) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"u.telegram_chat_id": chatID})
}

func (r *UserRepository) CreateUser(ctx context.Context, user entities.User) (uint64, error) {
	query := `
		INSERT INTO users (full_name, email, phone_number, password, role, client_id, telegram_chat_id, telegram_name, plan_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		user.FullName, user.Email, user.PhoneNumber, user.Password, user.Role,
		user.ClientID, user.TelegramChatID, user.TelegramName, user.PlanID, user.IsActive,
	).Scan(&newID)

	return newID, err
}

func (r *UserRepository) UpdateUser(ctx context.Context, id uint64, user entities.User) error {
	query := `
		UPDATE users
		SET full_name = $1, email = $2, phone_number = $3, role = $4, plan_id = $5,
		    is_active = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
	`
	result, err := r.storage.Exec(ctx, query,
		user.FullName, user.Email, user.PhoneNumber, user.Role, user.PlanID,
		user.IsActive, id,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) LinkTelegram(ctx context.Context, id uint64, chatID int64, telegramName string) error {
	query := `
		UPDATE users SET telegram_chat_id = $1, telegram_name = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := r.storage.Exec(ctx, query, chatID, telegramName, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePlan(ctx context.Context, id uint64, planID string) error {
	query := `UPDATE users SET plan_id = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.storage.Exec(ctx, query, planID, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id uint64) error {
	query := `UPDATE users SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
