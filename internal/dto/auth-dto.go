package dto

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         UserPublicDTO `json:"user"`
}

type UserPublicDTO struct {
	ID       uint64  `json:"id"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	ClientID *uint64 `json:"client_id,omitempty"`
	PlanID   string  `json:"plan_id"`
}
