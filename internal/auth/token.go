package auth

import (
	"errors"
	"fmt"
	"time"

	"ecommert_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Сроки жизни токенов: access - 1 час, verification (письма) - 15 минут,
// refresh - 7 дней
const (
	AccessTokenTTL       = time.Hour
	VerificationTokenTTL = 15 * time.Minute
	RefreshTokenTTL      = 7 * 24 * time.Hour
)

var (
	// ErrInvalidToken возвращается при любой ошибке проверки токена:
	// истек, неверная подпись, не парсится. Вызывающий не различает причины.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims - полезная нагрузка access/verification токена.
// User - снимок пользователя на момент выпуска; PasswordHash в JSON
// не сериализуется, поэтому в токен не попадает.
type Claims struct {
	User models.User `json:"user"`
	jwt.RegisteredClaims
}

// RefreshClaims - полезная нагрузка refresh-токена
type RefreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет JWT. Создается один раз на процесс
// и передается явно (никакого глобального состояния).
type TokenManager struct {
	secret        []byte
	refreshSecret []byte
}

// NewTokenManager создает TokenManager. refreshSecret может быть пустым -
// тогда refresh-токены подписываются основным секретом.
func NewTokenManager(secret, refreshSecret string) *TokenManager {
	if refreshSecret == "" {
		refreshSecret = secret
	}
	return &TokenManager{
		secret:        []byte(secret),
		refreshSecret: []byte(refreshSecret),
	}
}

// GenerateAccessToken выпускает access-токен со снимком пользователя
// и сроком жизни 1 час
func (tm *TokenManager) GenerateAccessToken(user *models.User) (string, error) {
	return tm.generate(user, AccessTokenTTL)
}

// GenerateVerificationToken выпускает токен для ссылок верификации email
// и сброса пароля, срок жизни 15 минут
func (tm *TokenManager) GenerateVerificationToken(user *models.User) (string, error) {
	return tm.generate(user, VerificationTokenTTL)
}

func (tm *TokenManager) generate(user *models.User, ttl time.Duration) (string, error) {
	snapshot := *user
	snapshot.PasswordHash = "" // дополнительно к json:"-"
	snapshot.RefreshToken = nil
	snapshot.Cart = nil

	now := time.Now()
	claims := &Claims{
		User: snapshot,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// GenerateRefreshToken выпускает refresh-токен на 7 дней
func (tm *TokenManager) GenerateRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.refreshSecret)
}

// ParseToken проверяет подпись и срок access/verification токена.
// На любую ошибку возвращает ErrInvalidToken, не различая причину.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeToken декодирует claims БЕЗ проверки подписи. Используется
// быстрым путем request gate: непросроченному токену верим по claims.
func (tm *TokenManager) DecodeToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken проверяет подпись и срок refresh-токена
func (tm *TokenManager) VerifyRefreshToken(tokenStr string) error {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.refreshSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
