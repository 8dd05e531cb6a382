package middleware

import (
	"errors"
	"strings"
	"time"

	"ecommert_backend/internal/auth"
	"ecommert_backend/internal/logger"
	"ecommert_backend/internal/models"
	"ecommert_backend/internal/repositories"
	"ecommert_backend/pkg/apperrors"
	"ecommert_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware - request gate: разбирает access-токен, при истечении
// прозрачно продлевает его по refresh-токену и кладет снимок пользователя
// в контекст запроса. Зависимости передаются явно при создании.
type AuthMiddleware struct {
	tokens           *auth.TokenManager
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewAuthMiddleware создает AuthMiddleware
func NewAuthMiddleware(
	tokens *auth.TokenManager,
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:           tokens,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// TokenVerification - проверка access-токена на каждом запросе.
//
// Порядок шагов:
//  1. Нет заголовка Authorization - 401 TOKEN_NOT_FOUND_IN_HEADER.
//  2. Токен декодируется БЕЗ проверки подписи: нужны claim exp и снимок
//     пользователя.
//  3. Нет claim exp - 401 INVALID_TOKEN_EXPIRATION.
//  4. Токен истек: ищем refresh-токен пользователя. Нет записи -
//     401 INVALID_REFRESH_TOKEN. Запись есть, но подпись/срок не прошли -
//     404 USER_NOT_FOUND (статус исторический, клиенты на него завязаны).
//     Прошли - выпускаем свежий access-токен, возвращаем его в заголовке
//     Authorization ответа и пропускаем запрос.
//  5. Токен не истек: пропускаем запрос по декодированным claims,
//     подпись на этом пути не перепроверяется.
func (m *AuthMiddleware) TokenVerification() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			m.reject(c, apperrors.ErrTokenNotFoundInHeader)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := m.tokens.DecodeToken(tokenStr)
		if err != nil || claims.ExpiresAt == nil {
			m.reject(c, apperrors.ErrInvalidTokenExpiration)
			return
		}

		if claims.ExpiresAt.Before(time.Now()) {
			if !m.refreshAccessToken(c, &claims.User) {
				return
			}
		}

		c.Set(contextkeys.CurrentUserKey, &claims.User)

		ctx := logger.WithUserID(c.Request.Context(), claims.User.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// refreshAccessToken - тихое продление истекшего access-токена по
// сохраненному refresh-токену. Возвращает false, если запрос отклонен.
func (m *AuthMiddleware) refreshAccessToken(c *gin.Context, snapshot *models.User) bool {
	db := m.getDB(c)
	if db == nil {
		m.reject(c, apperrors.InternalError(errors.New("db not found in request context")))
		return false
	}

	stored, err := m.refreshTokenRepo.FindByUserID(db, snapshot.ID)
	if err != nil {
		m.reject(c, apperrors.ErrInvalidRefreshToken)
		return false
	}

	if err := m.tokens.VerifyRefreshToken(stored.Token); err != nil {
		m.reject(c, apperrors.ErrRefreshVerificationFailed)
		return false
	}

	// Проверяем, что пользователь еще существует на момент выпуска
	user, err := m.userRepo.FindByID(db, snapshot.ID)
	if err != nil {
		m.reject(c, apperrors.ErrUserNotFound)
		return false
	}

	accessToken, err := m.tokens.GenerateAccessToken(user)
	if err != nil {
		m.reject(c, apperrors.InternalError(err))
		return false
	}

	// Клиент забирает продленный токен из того же заголовка
	c.Header("Authorization", "Bearer "+accessToken)
	return true
}

// CheckIfAdmin пропускает только администраторов.
// Читает только снимок из контекста, в БД не ходит.
func (m *AuthMiddleware) CheckIfAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			m.reject(c, apperrors.ErrTokenNotFoundInHeader)
			return
		}

		if !user.IsAdmin {
			m.reject(c, apperrors.ErrActionNotPermitted)
			return
		}

		c.Next()
	}
}

// CheckIfUserBlocked отклоняет запросы заблокированных пользователей.
// Читает только снимок из контекста, в БД не ходит.
func (m *AuthMiddleware) CheckIfUserBlocked() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			m.reject(c, apperrors.ErrTokenNotFoundInHeader)
			return
		}

		if user.IsBlocked {
			m.reject(c, apperrors.ErrUserBlocked)
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, err error) {
	apperrors.HandleError(c, err)
	c.Abort()
}

func (m *AuthMiddleware) getDB(c *gin.Context) *gorm.DB {
	val, ok := c.Get(string(contextkeys.DBContextKey))
	if !ok {
		return nil
	}
	db, ok := val.(*gorm.DB)
	if !ok {
		return nil
	}
	return db
}

// GetCurrentUser извлекает снимок пользователя из контекста запроса
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	val, exists := c.Get(contextkeys.CurrentUserKey)
	if !exists {
		return nil, false
	}

	user, ok := val.(*models.User)
	if !ok {
		return nil, false
	}

	return user, true
}
