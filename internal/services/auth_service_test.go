package services

import (
	"encoding/json"
	"testing"
	"time"

	"ecommert_backend/internal/auth"
	"ecommert_backend/internal/services/dto"
	"ecommert_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	service   AuthService
	users     *fakeUserRepo
	refresh   *fakeRefreshTokenRepo
	tokens    *auth.TokenManager
	emailsent *fakeEmailProvider
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	refresh := newFakeRefreshTokenRepo()
	tokens := auth.NewTokenManager("test-secret", "")
	provider := newFakeEmailProvider()

	return &authFixture{
		service:   NewAuthService(users, refresh, tokens, provider, "https://shop.test"),
		users:     users,
		refresh:   refresh,
		tokens:    tokens,
		emailsent: provider,
	}
}

func registerReq() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Username:  "alice",
		Email:     "a@x.com",
		Password:  "p1-secret",
		FirstName: "Alice",
		LastName:  "Liddell",
	}
}

func TestRegister_Success(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)

	// Пароль хранится только хешем
	stored, err := f.users.FindByUsername(nil, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "p1-secret", stored.PasswordHash)
	assert.True(t, auth.CheckPasswordHash("p1-secret", stored.PasswordHash))

	// Первая сессия начинается при регистрации
	assert.Equal(t, 1, f.refresh.count())

	// Фоновое письмо верификации
	select {
	case mail := <-f.emailsent.sent:
		assert.Equal(t, []string{"a@x.com"}, mail.to)
		assert.Equal(t, "verification", mail.template)
	case <-time.After(2 * time.Second):
		t.Fatal("verification email was not sent")
	}
}

func TestRegister_ResponseNeverContainsPassword(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)

	payload, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "p1-secret")
	assert.NotContains(t, string(payload), "password_hash")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)

	req := registerReq()
	req.Email = "other@x.com"
	_, err = f.service.Register(nil, req)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Username already exists.", appErr.Message)
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)

	req := registerReq()
	req.Username = "bob"
	_, err = f.service.Register(nil, req)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Email already exists.", appErr.Message)
}

func TestLogin_ByUsernameAndByEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)

	byUsername, err := f.service.Login(nil, &dto.LoginRequest{Identifier: "alice", Password: "p1-secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, byUsername.Token)

	byEmail, err := f.service.Login(nil, &dto.LoginRequest{Identifier: "a@x.com", Password: "p1-secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.Token)
}

func TestLogin_RotationKeepsExactlyOneRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)

	first, err := f.refresh.FindByUserID(nil, f.userID(t))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.service.Login(nil, &dto.LoginRequest{Identifier: "alice", Password: "p1-secret"})
		require.NoError(t, err)
	}

	// Ротация, а не накопление: та же запись, новое значение токена
	assert.Equal(t, 1, f.refresh.count())
	after, err := f.refresh.FindByUserID(nil, f.userID(t))
	require.NoError(t, err)
	assert.Equal(t, first.ID, after.ID)
	assert.NotEqual(t, first.Token, after.Token)
}

func TestLogin_IdenticalErrorForUnknownUserAndWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)

	_, errUnknown := f.service.Login(nil, &dto.LoginRequest{Identifier: "nobody", Password: "p1-secret"})
	_, errWrongPass := f.service.Login(nil, &dto.LoginRequest{Identifier: "alice", Password: "wrong"})

	unknownErr, ok := apperrors.AsAppError(errUnknown)
	require.True(t, ok)
	wrongErr, ok := apperrors.AsAppError(errWrongPass)
	require.True(t, ok)

	assert.Equal(t, "Invalid credentials", unknownErr.Message)
	assert.Equal(t, unknownErr.Message, wrongErr.Message)
	assert.Equal(t, unknownErr.HTTPCode, wrongErr.HTTPCode)
}

func TestLogout_Idempotent(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)
	userID := f.userID(t)

	user, err := f.service.Logout(nil, userID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 0, f.refresh.count())

	// Второй выход: записи уже нет, результат nil без ошибки
	user, err = f.service.Logout(nil, userID)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestChangePassword_WrongOldPasswordLeavesHashUntouched(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)
	userID := f.userID(t)

	before, err := f.users.FindByID(nil, userID)
	require.NoError(t, err)

	err = f.service.ChangePassword(nil, userID, &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "brand-new-pass",
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid password", appErr.Message)

	after, err := f.users.FindByID(nil, userID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestChangePassword_DoesNotRevokeRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)
	userID := f.userID(t)

	err = f.service.ChangePassword(nil, userID, &dto.ChangePasswordRequest{
		OldPassword: "p1-secret",
		NewPassword: "brand-new-pass",
	})
	require.NoError(t, err)

	// Старая сессия остается живой после смены пароля
	assert.Equal(t, 1, f.refresh.count())

	_, err = f.service.Login(nil, &dto.LoginRequest{Identifier: "alice", Password: "brand-new-pass"})
	assert.NoError(t, err)
}

func TestForgotPassword_UnknownEmailSurfacesError(t *testing.T) {
	f := newAuthFixture(t)

	err := f.service.ForgotPassword(nil, "nobody@x.com")

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "User not found", appErr.Message)
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestForgotPassword_SendsResetEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)

	<-f.emailsent.sent // письмо верификации от регистрации

	require.NoError(t, f.service.ForgotPassword(nil, "a@x.com"))

	select {
	case mail := <-f.emailsent.sent:
		assert.Equal(t, []string{"a@x.com"}, mail.to)
		assert.Equal(t, "password_reset", mail.template)
	case <-time.After(2 * time.Second):
		t.Fatal("password reset email was not sent")
	}
}

func TestResetPassword_InvalidTokenGivesGenericError(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)

	err = f.service.ResetPassword(nil, f.userID(t), &dto.ResetPasswordRequest{
		Token:       "forged-token",
		NewPassword: "brand-new-pass",
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "The verification process failed. Please try again.", appErr.Message)
}

func TestResetPassword_ValidToken(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)
	userID := f.userID(t)

	user, err := f.users.FindByID(nil, userID)
	require.NoError(t, err)
	token, err := f.tokens.GenerateVerificationToken(user)
	require.NoError(t, err)

	err = f.service.ResetPassword(nil, userID, &dto.ResetPasswordRequest{
		Token:       token,
		NewPassword: "brand-new-pass",
	})
	require.NoError(t, err)

	_, err = f.service.Login(nil, &dto.LoginRequest{Identifier: "alice", Password: "brand-new-pass"})
	assert.NoError(t, err)
}

func TestVerifyUser_FlipsVerifiedFlag(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)
	userID := f.userID(t)

	user, err := f.users.FindByID(nil, userID)
	require.NoError(t, err)
	require.False(t, user.IsVerified)

	token, err := f.tokens.GenerateVerificationToken(user)
	require.NoError(t, err)

	require.NoError(t, f.service.VerifyUser(nil, token))

	verified, err := f.users.FindByID(nil, userID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
}

func TestBlockAndUnblockUser(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)
	userID := f.userID(t)

	blocked, err := f.service.BlockUser(nil, userID)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)

	list, err := f.service.FetchBlockedUsers(nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, userID, list[0].ID)

	unblocked, err := f.service.UnblockUser(nil, userID)
	require.NoError(t, err)
	assert.False(t, unblocked.IsBlocked)
}

func TestUpdateUser_PartialUpdate(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)
	userID := f.userID(t)

	newName := "Alicia"
	updated, err := f.service.UpdateUser(nil, userID, &dto.UpdateUserRequest{FirstName: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "Liddell", updated.LastName)
}

func TestDeleteUser(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(nil, registerReq())
	require.NoError(t, err)
	userID := f.userID(t)

	require.NoError(t, f.service.DeleteUser(nil, userID))

	_, err = f.service.GetUser(nil, userID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "User not found", appErr.Message)
}

// userID возвращает id единственного зарегистрированного пользователя
func (f *authFixture) userID(t *testing.T) string {
	t.Helper()
	user, err := f.users.FindByUsername(nil, "alice")
	require.NoError(t, err)
	return user.ID
}
