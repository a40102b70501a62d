// Файл: internal/services/user.go
package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"ai-assistant/internal/dto"
	"ai-assistant/internal/entities"
	"ai-assistant/internal/repositories"
	apperrors "ai-assistant/pkg/errors"
	"ai-assistant/pkg/types"
	"ai-assistant/pkg/utils"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*entities.User, error)
	ChangePlan(ctx context.Context, id uint64, payload dto.ChangePlanDTO) error
	LinkTelegram(ctx context.Context, id uint64, payload dto.LinkTelegramDTO) error
	DeleteUser(ctx context.Context, id uint64) error
}

type UserService struct {
	userRepo repositories.UserRepositoryInterface
	pricing  PricingServiceInterface
	logger   *zap.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	pricing PricingServiceInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{userRepo: userRepo, pricing: pricing, logger: logger}
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	return s.userRepo.GetUsers(ctx, filter)
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	return s.userRepo.FindUser(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error) {
	existing, err := s.userRepo.FindUserByEmail(ctx, payload.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewBadRequestError("пользователь с таким email уже существует")
	}

	hashed, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, apperrors.NewInternalError("ошибка хеширования пароля", err)
	}

	planID := payload.PlanID
	if planID == "" {
		planID = PlanFree
	}

	user := entities.User{
		FullName:    payload.FullName,
		Email:       payload.Email,
		PhoneNumber: utils.NormalizePhone(payload.PhoneNumber),
		Password:    hashed,
		Role:        payload.Role,
		ClientID:    payload.ClientID,
		PlanID:      planID,
		IsActive:    true,
	}

	newID, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Создан пользователь",
		zap.Uint64("user_id", newID), zap.String("role", payload.Role))

	return s.userRepo.FindUser(ctx, newID)
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*entities.User, error) {
	user, err := s.userRepo.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.FullName.Valid {
		user.FullName = payload.FullName.String
	}
	if payload.Email.Valid && payload.Email.String != user.Email {
		existing, err := s.userRepo.FindUserByEmail(ctx, payload.Email.String)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, apperrors.NewBadRequestError("email уже занят")
		}
		user.Email = payload.Email.String
	}
	if payload.PhoneNumber.Valid {
		user.PhoneNumber = utils.NormalizePhone(payload.PhoneNumber.String)
	}
	if payload.Password.Valid {
		hashed, err := utils.HashPassword(payload.Password.String)
		if err != nil {
			return nil, apperrors.NewInternalError("ошибка хеширования пароля", err)
		}
		user.Password = hashed
	}
	if payload.Role.Valid {
		user.Role = payload.Role.String
	}
	if payload.IsActive.Valid {
		user.IsActive = payload.IsActive.Bool
	}

	if err := s.userRepo.UpdateUser(ctx, id, *user); err != nil {
		return nil, err
	}

	return s.userRepo.FindUser(ctx, id)
}

func (s *UserService) ChangePlan(ctx context.Context, id uint64, payload dto.ChangePlanDTO) error {
	if _, err := s.pricing.FindPlan(payload.PlanID); err != nil {
		return err
	}
	if _, err := s.userRepo.FindUser(ctx, id); err != nil {
		return err
	}

	if err := s.userRepo.UpdatePlan(ctx, id, payload.PlanID); err != nil {
		return err
	}

	s.logger.Info("Сменен тарифный план",
		zap.Uint64("user_id", id), zap.String("plan_id", payload.PlanID))
	return nil
}

func (s *UserService) LinkTelegram(ctx context.Context, id uint64, payload dto.LinkTelegramDTO) error {
	// Один телеграм-аккаунт нельзя привязать к двум пользователям.
	existing, err := s.userRepo.FindUserByTelegramChatID(ctx, payload.TelegramChatID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if existing != nil && existing.ID != id {
		return apperrors.NewBadRequestError("телеграм-аккаунт уже привязан к другому пользователю")
	}

	return s.userRepo.LinkTelegram(ctx, id, payload.TelegramChatID, payload.TelegramName)
}

func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	return s.userRepo.DeleteUser(ctx, id)
}
