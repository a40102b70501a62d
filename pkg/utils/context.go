package utils

import (
	"context"

	"ai-assistant/pkg/contextkeys"
	apperrors "ai-assistant/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (int, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(int)
	if !ok {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}
