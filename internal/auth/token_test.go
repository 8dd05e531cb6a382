package auth

import (
	"encoding/json"
	"testing"
	"time"

	"ecommert_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: "user-1"},
		Username:  "alice",
		Email:     "a@x.com",
		// Хеш не должен просочиться ни в claims, ни в подписанный токен
		PasswordHash: "$2a$10$secret-hash",
		FirstName:    "Alice",
		IsAdmin:      true,
	}
}

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", "")
	user := testUser()

	tokenStr, err := tm.GenerateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims, err := tm.ParseToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.User.ID)
	assert.Equal(t, "alice", claims.User.Username)
	assert.True(t, claims.User.IsAdmin)
	assert.Empty(t, claims.User.PasswordHash)
}

func TestGenerateAccessToken_ExpiryIsOneHour(t *testing.T) {
	tm := NewTokenManager("test-secret", "")

	tokenStr, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	claims, err := tm.DecodeToken(tokenStr)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)

	expected := time.Now().Add(AccessTokenTTL)
	assert.WithinDuration(t, expected, claims.ExpiresAt.Time, time.Second)
}

func TestGenerateVerificationToken_ExpiryIsFifteenMinutes(t *testing.T) {
	tm := NewTokenManager("test-secret", "")

	tokenStr, err := tm.GenerateVerificationToken(testUser())
	require.NoError(t, err)

	claims, err := tm.DecodeToken(tokenStr)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)

	expected := time.Now().Add(VerificationTokenTTL)
	assert.WithinDuration(t, expected, claims.ExpiresAt.Time, time.Second)
}

func TestClaims_DoNotContainPasswordHash(t *testing.T) {
	tm := NewTokenManager("test-secret", "")

	tokenStr, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	claims, err := tm.DecodeToken(tokenStr)
	require.NoError(t, err)

	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "secret-hash")
	assert.NotContains(t, string(payload), "password")
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret", "")
	other := NewTokenManager("other-secret", "")

	tokenStr, err := tm.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = other.ParseToken(tokenStr)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", "")

	tokenStr := signExpiredAccessToken(t, "test-secret", testUser())

	_, err := tm.ParseToken(tokenStr)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", "")

	_, err := tm.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeToken_ReadsExpiredClaims(t *testing.T) {
	tm := NewTokenManager("test-secret", "")

	tokenStr := signExpiredAccessToken(t, "test-secret", testUser())

	// Декодирование без проверки подписи читает claims даже из
	// истекшего токена: так работает быстрый путь request gate
	claims, err := tm.DecodeToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.User.ID)
	assert.True(t, claims.ExpiresAt.Before(time.Now()))
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", "refresh-secret")

	tokenStr, err := tm.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	assert.NoError(t, tm.VerifyRefreshToken(tokenStr))
}

func TestRefreshToken_FallsBackToMainSecret(t *testing.T) {
	tm := NewTokenManager("only-secret", "")

	tokenStr, err := tm.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	assert.NoError(t, tm.VerifyRefreshToken(tokenStr))
}

func TestVerifyRefreshToken_RejectsAccessSecretWhenDistinct(t *testing.T) {
	issuer := NewTokenManager("test-secret", "refresh-secret")
	verifier := NewTokenManager("test-secret", "another-refresh-secret")

	tokenStr, err := issuer.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	assert.ErrorIs(t, verifier.VerifyRefreshToken(tokenStr), ErrInvalidToken)
}

// signExpiredAccessToken подписывает access-токен с истекшим сроком
func signExpiredAccessToken(t *testing.T, secret string, user *models.User) string {
	t.Helper()

	snapshot := *user
	snapshot.PasswordHash = ""

	claims := &Claims{
		User: snapshot,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tokenStr
}
