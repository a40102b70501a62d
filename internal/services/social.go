// Файл: internal/services/social.go
package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/integrations/linkedin"
	"ai-assistant/internal/integrations/twitterx"
	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
)

// Платформы соцсетей.
const (
	PlatformTwitter  = "twitter"
	PlatformLinkedIn = "linkedin"
)

var allSocialPlatforms = []string{PlatformTwitter, PlatformLinkedIn}

// Ограничение Twitter на длину поста.
const tweetMaxLen = 280

type SocialServiceInterface interface {
	Post(ctx context.Context, payload dto.SocialPostDTO) ([]dto.SocialPostResultDTO, error)
	GetPosts(ctx context.Context, clientID uint64, limit uint64) ([]entities.SocialPost, error)
}

type SocialService struct {
	twitter  *twitterx.Client
	linkedin *linkedin.Client
	postRepo repositories.SocialPostRepositoryInterface
	logger   *zap.Logger
}

func NewSocialService(
	twitter *twitterx.Client,
	linkedin *linkedin.Client,
	postRepo repositories.SocialPostRepositoryInterface,
	logger *zap.Logger,
) SocialServiceInterface {
	return &SocialService{
		twitter:  twitter,
		linkedin: linkedin,
		postRepo: postRepo,
		logger:   logger,
	}
}

// Post публикует контент на выбранные платформы параллельно.
// Частичный провал не считается ошибкой: результат по каждой
// платформе возвращается отдельно.
func (s *SocialService) Post(ctx context.Context, payload dto.SocialPostDTO) ([]dto.SocialPostResultDTO, error) {
	platforms := payload.Platforms
	if len(platforms) == 0 {
		platforms = allSocialPlatforms
	}

	results := make([]dto.SocialPostResultDTO, len(platforms))
	var wg sync.WaitGroup

	for i, platform := range platforms {
		wg.Add(1)
		go func(i int, platform string) {
			defer wg.Done()
			results[i] = s.postToPlatform(ctx, platform, payload)
		}(i, platform)
	}
	wg.Wait()

	for _, result := range results {
		post := entities.SocialPost{
			ClientID: payload.ClientID,
			Platform: result.Platform,
			Content:  payload.Content,
			RemoteID: result.RemoteID,
			Success:  result.Success,
			Error:    result.Error,
		}
		if _, err := s.postRepo.CreatePost(ctx, post); err != nil {
			s.logger.Error("не удалось сохранить результат публикации",
				zap.String("platform", result.Platform), zap.Error(err))
		}
	}

	return results, nil
}

func (s *SocialService) postToPlatform(ctx context.Context, platform string, payload dto.SocialPostDTO) dto.SocialPostResultDTO {
	result := dto.SocialPostResultDTO{Platform: platform}

	var remoteID string
	var err error

	switch platform {
	case PlatformTwitter:
		content := payload.Content
		if len([]rune(content)) > tweetMaxLen {
			content = string([]rune(content)[:tweetMaxLen-3]) + "..."
		}
		remoteID, err = s.twitter.PostTweet(ctx, content)
	case PlatformLinkedIn:
		remoteID, err = s.linkedin.PostShare(ctx, payload.Content)
	default:
		err = apperrors.NewBadRequestError("неизвестная платформа: " + platform)
	}

	if err != nil {
		message := err.Error()
		result.Error = &message
		s.logger.Warn("публикация не удалась",
			zap.String("platform", platform), zap.Error(err))
		return result
	}

	result.Success = true
	result.RemoteID = &remoteID
	return result
}

func (s *SocialService) GetPosts(ctx context.Context, clientID uint64, limit uint64) ([]entities.SocialPost, error) {
	return s.postRepo.GetPosts(ctx, clientID, limit)
}
