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

const transactionTable = "transactions"

var transactionMap = map[string]string{
	"id":         "t.id",
	"client_id":  "t.client_id",
	"provider":   "t.provider",
	"method":     "t.method",
	"status":     "t.status",
	"currency":   "t.currency",
	"created_at": "t.created_at",
	"updated_at": "t.updated_at",
}

const transactionColumns = `t.id, t.client_id, t.provider_tx_id, t.provider, t.method,
	t.amount_cents, t.currency, t.status, t.order_id, t.customer_id, t.customer_email,
	t.payment_url, t.client_secret, t.created_at, t.updated_at`

// ProviderStat - агрегат по паре провайдер/статус для статистики платежей.
type ProviderStat struct {
	Provider   string
	Status     string
	Count      uint64
	TotalCents int64
}

type TransactionRepositoryInterface interface {
	GetTransactions(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Transaction, uint64, error)
	FindTransaction(ctx context.Context, id uint64) (*entities.Transaction, error)
	FindByProviderTxID(ctx context.Context, provider, providerTxID string) (*entities.Transaction, error)
	CreateTransaction(ctx context.Context, tx entities.Transaction) (uint64, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
	GetPending(ctx context.Context, providers []string, olderThan time.Duration) ([]entities.Transaction, error)
	GetProviderStats(ctx context.Context, clientID uint64, from, to time.Time) ([]ProviderStat, error)
	SumCompleted(ctx context.Context, clientID uint64, from, to time.Time) (int64, uint64, error)
}

type TransactionRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTransactionRepository(storage *pgxpool.Pool, logger *zap.Logger) TransactionRepositoryInterface {
	return &TransactionRepository{storage: storage, logger: logger}
}

func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var t entities.Transaction
	var orderID, customerID, customerEmail, paymentURL, clientSecret sql.NullString

	err := row.Scan(
		&t.ID, &t.ClientID, &t.ProviderTxID, &t.Provider, &t.Method,
		&t.AmountCents, &t.Currency, &t.Status, &orderID, &customerID, &customerEmail,
		&paymentURL, &clientSecret, &t.CreatedAt, &t.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования transaction: %w", err)
	}

	if orderID.Valid {
		t.OrderID = &orderID.String
	}
	if customerID.Valid {
		t.CustomerID = &customerID.String
	}
	if customerEmail.Valid {
		t.CustomerEmail = &customerEmail.String
	}
	if paymentURL.Valid {
		t.PaymentURL = &paymentURL.String
	}
	if clientSecret.Valid {
		t.ClientSecret = &clientSecret.String
	}

	return &t, nil
}

func (r *TransactionRepository) GetTransactions(ctx context.Context, clientID uint64, filter types.Filter) ([]entities.Transaction, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	applyBase := func(b sq.SelectBuilder) sq.SelectBuilder {
		b = b.Where(sq.Eq{"t.client_id": clientID})
		if filter.Search != "" {
			pat := "%" + filter.Search + "%"
			b = b.Where(sq.Or{
				sq.ILike{"t.provider_tx_id": pat},
				sq.ILike{"t.customer_email": pat},
			})
		}
		return b
	}

	countBuilder := applyBase(psql.Select("COUNT(t.id)").From(transactionTable + " AS t"))

	countFilter := filter
	countFilter.WithPagination = false
	countFilter.Sort = nil
	countBuilder = db.ApplyListParams(countBuilder, countFilter, transactionMap)

	var total uint64
	sqlCount, argsCount, _ := countBuilder.ToSql()
	if err := r.storage.QueryRow(ctx, sqlCount, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Transaction{}, 0, nil
	}

	baseBuilder := applyBase(psql.Select(transactionColumns).From(transactionTable + " AS t"))
	if len(filter.Sort) == 0 {
		baseBuilder = baseBuilder.OrderBy("t.id DESC")
	}
	baseBuilder = db.ApplyListParams(baseBuilder, filter, transactionMap)

	query, args, err := baseBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	transactions := make([]entities.Transaction, 0, filter.Limit)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, *tx)
	}

	return transactions, total, nil
}

func (r *TransactionRepository) findOne(ctx context.Context, where sq.Sqlizer) (*entities.Transaction, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	queryBuilder := psql.Select(transactionColumns).From(transactionTable + " AS t").Where(where)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}
	return scanTransaction(r.storage.QueryRow(ctx, query, args...))
}

func (r *TransactionRepository) FindTransaction(ctx context.Context, id uint64) (*entities.Transaction, error) {
	return r.findOne(ctx, sq.Eq{"t.id": id})
}

func (r *TransactionRepository) FindByProviderTxID(ctx context.Context, provider, providerTxID string) (*entities.Transaction, error) {
	return r.findOne(ctx, sq.Eq{"t.provider": provider, "t.provider_tx_id": providerTxID})
}

func (r *TransactionRepository) CreateTransaction(ctx context.Context, tx entities.Transaction) (uint64, error) {
	query := `
		INSERT INTO transactions (client_id, provider_tx_id, provider, method, amount_cents, currency, status, order_id, customer_id, customer_email, payment_url, client_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		tx.ClientID, tx.ProviderTxID, tx.Provider, tx.Method, tx.AmountCents,
		tx.Currency, tx.Status, tx.OrderID, tx.CustomerID, tx.CustomerEmail,
		tx.PaymentURL, tx.ClientSecret,
	).Scan(&newID)

	return newID, err
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, id uint64, status string) error {
	query := `UPDATE transactions SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.storage.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetPending возвращает ожидающие оплаты транзакции указанных провайдеров,
// созданные не позже olderThan назад. Используется поллером крипто-платежей.
func (r *TransactionRepository) GetPending(ctx context.Context, providers []string, olderThan time.Duration) ([]entities.Transaction, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(transactionColumns).From(transactionTable + " AS t").
		Where(sq.Eq{"t.status": entities.TransactionStatusPending, "t.provider": providers}).
		Where(sq.Gt{"t.created_at": time.Now().Add(-olderThan)}).
		OrderBy("t.id ASC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []entities.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}

	return transactions, nil
}

func (r *TransactionRepository) GetProviderStats(ctx context.Context, clientID uint64, from, to time.Time) ([]ProviderStat, error) {
	query := `
		SELECT provider, status, COUNT(id), COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE client_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY provider, status
		ORDER BY provider, status
	`
	rows, err := r.storage.Query(ctx, query, clientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []ProviderStat
	for rows.Next() {
		var s ProviderStat
		if err := rows.Scan(&s.Provider, &s.Status, &s.Count, &s.TotalCents); err != nil {
			return nil, fmt.Errorf("ошибка сканирования статистики: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, nil
}

func (r *TransactionRepository) SumCompleted(ctx context.Context, clientID uint64, from, to time.Time) (int64, uint64, error) {
	query := `
		SELECT COALESCE(SUM(amount_cents), 0), COUNT(id)
		FROM transactions
		WHERE client_id = $1 AND status = $2 AND created_at >= $3 AND created_at < $4
	`
	var totalCents int64
	var count uint64
	err := r.storage.QueryRow(ctx, query, clientID, entities.TransactionStatusCompleted, from, to).Scan(&totalCents, &count)
	return totalCents, count, err
}
