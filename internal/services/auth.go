// Файл: internal/services/auth.go
package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/service"
	"ai-assistant/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.AuthResponseDTO, error)
	GetUserByID(ctx context.Context, userID uint64) (*entities.User, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		s.logger.Warn("Попытка входа заблокированного пользователя", zap.Uint64("user_id", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.logger.Warn("Неверный пароль", zap.String("email", payload.Email))
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) Refresh(ctx context.Context, payload dto.RefreshTokenDTO) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	user, err := s.userRepo.FindUser(ctx, uint64(claims.UserID))
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uint64) (*entities.User, error) {
	return s.userRepo.FindUser(ctx, userID)
}

func (s *AuthService) buildAuthResponse(user *entities.User) (*dto.AuthResponseDTO, error) {
	accessToken, refreshToken, err := s.jwtService.GenerateTokens(int(user.ID))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponseDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserPublicDTO{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
			Role:     user.Role,
			ClientID: user.ClientID,
			PlanID:   user.PlanID,
		},
	}, nil
}
