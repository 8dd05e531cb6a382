package services

import (
	"fmt"

	"ecommert_backend/internal/auth"
	"ecommert_backend/internal/email"
	"ecommert_backend/internal/logger"
	"ecommert_backend/internal/models"
	"ecommert_backend/internal/repositories"
	"ecommert_backend/internal/services/dto"
	"ecommert_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// AuthService - единственная авторитетная реализация всего жизненного цикла
// учетной записи: регистрация, вход, токены, пароли, модерация.
type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Logout(db *gorm.DB, userID string) (*models.User, error)

	GetUser(db *gorm.DB, userID string) (*models.User, error)
	GetAllUsers(db *gorm.DB) ([]models.User, error)
	UpdateUser(db *gorm.DB, userID string, req *dto.UpdateUserRequest) (*models.User, error)
	DeleteUser(db *gorm.DB, userID string) error

	ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error
	ForgotPassword(db *gorm.DB, email string) error
	ResetPassword(db *gorm.DB, userID string, req *dto.ResetPasswordRequest) error
	VerifyUser(db *gorm.DB, token string) error

	BlockUser(db *gorm.DB, userID string) (*models.User, error)
	UnblockUser(db *gorm.DB, userID string) (*models.User, error)
	FetchBlockedUsers(db *gorm.DB) ([]models.User, error)
}

type authService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokens           *auth.TokenManager
	emailProvider    email.Provider
	frontendBaseURL  string
}

// NewAuthService создает AuthService. Все зависимости передаются явно,
// никакого глобального состояния.
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tokens *auth.TokenManager,
	emailProvider email.Provider,
	frontendBaseURL string,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		emailProvider:    emailProvider,
		frontendBaseURL:  frontendBaseURL,
	}
}

// Register - регистрация нового пользователя.
// Возвращает пользователя (без хеша пароля) и access-токен.
func (s *authService) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	// Уникальность username и email проверяем по отдельности,
	// чтобы отдать клиенту точную причину отказа
	if _, err := s.userRepo.FindByUsername(db, req.Username); err == nil {
		return nil, apperrors.ErrUsernameTaken
	} else if !apperrors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	if _, err := s.userRepo.FindByEmail(db, req.Email); err == nil {
		return nil, apperrors.ErrEmailTaken
	} else if !apperrors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Refresh-токен создается сразу при регистрации: первая сессия
	// начинается здесь же
	if err := s.issueRefreshToken(db, user.ID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Письмо верификации не влияет на ответ: сбой отправки не откатывает
	// регистрацию
	s.sendVerificationEmail(user)

	return &dto.AuthResponse{User: user, Token: accessToken}, nil
}

// Login - вход по username или email (сначала ищем по username).
// Ответ при неизвестном идентификаторе и при неверном пароле одинаковый.
func (s *authService) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(db, req.Identifier)
	if apperrors.Is(err, repositories.ErrUserNotFound) {
		user, err = s.userRepo.FindByEmail(db, req.Identifier)
	}
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	// Ротация: существующая запись перезаписывается новым значением токена,
	// второй строки не появляется
	if err := s.issueRefreshToken(db, user.ID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{User: user, Token: accessToken}, nil
}

// Logout - удаление refresh-токена пользователя. Если токена нет,
// возвращает nil без ошибки: повторный выход безопасен.
func (s *authService) Logout(db *gorm.DB, userID string) (*models.User, error) {
	if err := s.refreshTokenRepo.DeleteByUserID(db, userID); err != nil {
		if apperrors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, nil
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	return user, nil
}

// GetUser возвращает пользователя по id
func (s *authService) GetUser(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

// GetAllUsers возвращает всех пользователей
func (s *authService) GetAllUsers(db *gorm.DB) ([]models.User, error) {
	users, err := s.userRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return users, nil
}

// UpdateUser - частичное обновление профиля
func (s *authService) UpdateUser(db *gorm.DB, userID string, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return user, nil
}

// DeleteUser удаляет учетную запись вместе с ее refresh-токеном
func (s *authService) DeleteUser(db *gorm.DB, userID string) error {
	if err := s.userRepo.Delete(db, userID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// ChangePassword - смена пароля по старому паролю.
// Существующий refresh-токен при этом НЕ отзывается: старые сессии
// остаются живыми до собственного истечения.
func (s *authService) ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return apperrors.ErrInvalidPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdatePassword(db, userID, hash); err != nil {
		return apperrors.InternalError(err)
	}

	return nil
}

// ForgotPassword отправляет письмо со ссылкой сброса пароля.
// Отсутствие email не скрывается: клиент получает User not found.
// Токен нигде не сохраняется, его проверит ResetPassword по подписи.
func (s *authService) ForgotPassword(db *gorm.DB, emailAddr string) error {
	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	token, err := s.tokens.GenerateVerificationToken(user)
	if err != nil {
		return apperrors.InternalError(err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s?token=%s", s.frontendBaseURL, user.ID, token)
	s.sendPasswordResetEmail(user, resetURL)

	return nil
}

// ResetPassword - сброс пароля по токену из письма.
// Любая ошибка проверки токена дает один и тот же общий ответ.
// Совпадение uid из токена с userID из пути не проверяется.
func (s *authService) ResetPassword(db *gorm.DB, userID string, req *dto.ResetPasswordRequest) error {
	if _, err := s.tokens.ParseToken(req.Token); err != nil {
		return apperrors.ErrVerificationFailed
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdatePassword(db, userID, hash); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	return nil
}

// VerifyUser подтверждает аккаунт по токену из письма верификации
func (s *authService) VerifyUser(db *gorm.DB, token string) error {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return apperrors.ErrVerificationFailed
	}

	if err := s.userRepo.VerifyUser(db, claims.User.ID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalError(err)
	}

	return nil
}

// BlockUser блокирует пользователя
func (s *authService) BlockUser(db *gorm.DB, userID string) (*models.User, error) {
	return s.setBlocked(db, userID, true)
}

// UnblockUser снимает блокировку
func (s *authService) UnblockUser(db *gorm.DB, userID string) (*models.User, error) {
	return s.setBlocked(db, userID, false)
}

func (s *authService) setBlocked(db *gorm.DB, userID string, blocked bool) (*models.User, error) {
	if err := s.userRepo.SetBlocked(db, userID, blocked); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

// FetchBlockedUsers возвращает заблокированных пользователей
func (s *authService) FetchBlockedUsers(db *gorm.DB) ([]models.User, error) {
	users, err := s.userRepo.FindBlocked(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return users, nil
}

// --- Helper functions ---

// issueRefreshToken выпускает новый refresh-токен и сохраняет его.
// Если запись уже есть - перезаписывает token на месте (ротация),
// иначе создает. На пользователя всегда не больше одной записи;
// гонку конкурентных первых логинов разрешает уникальный индекс БД.
func (s *authService) issueRefreshToken(db *gorm.DB, userID string) error {
	tokenStr, err := s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return err
	}

	existing, err := s.refreshTokenRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return s.refreshTokenRepo.Create(db, &models.RefreshToken{
				UserID: userID,
				Token:  tokenStr,
			})
		}
		return err
	}

	return s.refreshTokenRepo.UpdateToken(db, existing.ID, tokenStr)
}

// sendVerificationEmail отправляет письмо верификации в фоне
func (s *authService) sendVerificationEmail(user *models.User) {
	if s.emailProvider == nil {
		return
	}

	token, err := s.tokens.GenerateVerificationToken(user)
	if err != nil {
		logger.Error("failed to generate verification token", "user_id", user.ID, "error", err)
		return
	}

	verifyURL := fmt.Sprintf("%s/verify?token=%s", s.frontendBaseURL, token)
	to := user.Email
	username := user.Username

	go func() {
		err := s.emailProvider.SendTemplate([]string{to}, "Verify your account", "verification", email.TemplateData{
			"Username":  username,
			"VerifyURL": verifyURL,
		})
		if err != nil {
			logger.Error("failed to send verification email", "email", to, "error", err)
		}
	}()
}

// sendPasswordResetEmail отправляет письмо сброса пароля в фоне
func (s *authService) sendPasswordResetEmail(user *models.User, resetURL string) {
	if s.emailProvider == nil {
		return
	}

	to := user.Email

	go func() {
		if err := s.emailProvider.SendPasswordReset(to, resetURL); err != nil {
			logger.Error("failed to send password reset email", "email", to, "error", err)
		}
	}()
}
