package dto

import (
	"ecommert_backend/internal/models"
)

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=32"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// LoginRequest - запрос входа. Identifier - username или email
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// AuthResponse - ответ register/login: пользователь (без хеша пароля,
// он вырезается json-тегом модели) и access-токен
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// ChangePasswordRequest - запрос смены пароля
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// ForgotPasswordRequest - запрос письма для сброса пароля
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest - сброс пароля по верификационному токену из письма
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// VerifyUserRequest - подтверждение аккаунта по токену из письма
type VerifyUserRequest struct {
	Token string `json:"token" validate:"required"`
}
