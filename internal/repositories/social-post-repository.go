package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ai-assistant/internal/entities"
)

type SocialPostRepositoryInterface interface {
	CreatePost(ctx context.Context, post entities.SocialPost) (uint64, error)
	GetPosts(ctx context.Context, clientID uint64, limit uint64) ([]entities.SocialPost, error)
}

type SocialPostRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSocialPostRepository(storage *pgxpool.Pool, logger *zap.Logger) SocialPostRepositoryInterface {
	return &SocialPostRepository{storage: storage, logger: logger}
}

func (r *SocialPostRepository) CreatePost(ctx context.Context, post entities.SocialPost) (uint64, error) {
	query := `
		INSERT INTO social_posts (client_id, platform, content, remote_id, success, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`
	var newID uint64
	err := r.storage.QueryRow(ctx, query,
		post.ClientID, post.Platform, post.Content, post.RemoteID, post.Success, post.Error,
	).Scan(&newID)

	return newID, err
}

func (r *SocialPostRepository) GetPosts(ctx context.Context, clientID uint64, limit uint64) ([]entities.SocialPost, error) {
	if limit == 0 {
		limit = 50
	}
	query := `
		SELECT id, client_id, platform, content, remote_id, success, error, created_at, updated_at
		FROM social_posts
		WHERE client_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := r.storage.Query(ctx, query, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []entities.SocialPost
	for rows.Next() {
		var p entities.SocialPost
		var remoteID, postError sql.NullString

		if err := rows.Scan(
			&p.ID, &p.ClientID, &p.Platform, &p.Content, &remoteID, &p.Success, &postError,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования social_post: %w", err)
		}

		if remoteID.Valid {
			p.RemoteID = &remoteID.String
		}
		if postError.Valid {
			p.Error = &postError.String
		}
		posts = append(posts, p)
	}

	return posts, nil
}
