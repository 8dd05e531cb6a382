package handlers

import (
	"net/http"

	"ecommert_backend/internal/middleware"
	"ecommert_backend/internal/services"
	"ecommert_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
	authMw      *middleware.AuthMiddleware
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService, authMw *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
		authMw:      authMw,
	}
}

// RegisterRoutes регистрирует все маршруты аутентификации и учетных записей
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.PUT("/reset-password/:userId", h.ResetPassword)
		auth.POST("/verify", h.VerifyUser)
	}

	// Все, что ниже, проходит через request gate
	gated := rg.Group("/auth")
	gated.Use(h.authMw.TokenVerification())
	gated.Use(h.authMw.CheckIfUserBlocked())
	{
		gated.POST("/logout/:userId", h.Logout)
		gated.GET("/user/:userId", h.GetUser)
		gated.PUT("/user/:userId", h.UpdateUser)
		gated.DELETE("/user/:userId", h.DeleteUser)
		gated.PUT("/change-password/:userId", h.ChangePassword)
	}

	admin := rg.Group("/auth")
	admin.Use(h.authMw.TokenVerification())
	admin.Use(h.authMw.CheckIfUserBlocked())
	admin.Use(h.authMw.CheckIfAdmin())
	{
		admin.GET("/", h.GetAllUsers)
		admin.GET("/blocked-users", h.GetBlockedUsers)
		admin.PUT("/block-user/:userId", h.BlockUser)
		admin.PUT("/unblock-user/:userId", h.UnblockUser)
	}
}

// Register - регистрация нового пользователя
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	response, err := h.authService.Register(db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login - вход по username или email
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	response, err := h.authService.Login(db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Logout - выход: удаление refresh-токена
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.Param("userId")
	if !h.AuthorizeSelfOrAdmin(c, userID) {
		return
	}

	db := h.GetDB(c)

	user, err := h.authService.Logout(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUser возвращает пользователя по id
func (h *AuthHandler) GetUser(c *gin.Context) {
	db := h.GetDB(c)

	user, err := h.authService.GetUser(db, c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser - обновление профиля (владелец или администратор)
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("userId")
	if !h.AuthorizeSelfOrAdmin(c, userID) {
		return
	}

	var req dto.UpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	user, err := h.authService.UpdateUser(db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser - удаление учетной записи (владелец или администратор)
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("userId")
	if !h.AuthorizeSelfOrAdmin(c, userID) {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.DeleteUser(db, userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// ChangePassword - смена пароля по старому паролю
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := c.Param("userId")
	if !h.AuthorizeSelfOrAdmin(c, userID) {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.ChangePassword(db, userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// ForgotPassword отправляет письмо со ссылкой сброса пароля
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.ForgotPassword(db, req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

// ResetPassword - сброс пароля по токену из письма
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.ResetPassword(db, c.Param("userId"), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

// VerifyUser подтверждает аккаунт по токену из письма
func (h *AuthHandler) VerifyUser(c *gin.Context) {
	var req dto.VerifyUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.VerifyUser(db, req.Token); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account verified"})
}

// GetAllUsers возвращает всех пользователей (администратор)
func (h *AuthHandler) GetAllUsers(c *gin.Context) {
	db := h.GetDB(c)

	users, err := h.authService.GetAllUsers(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetBlockedUsers возвращает заблокированных пользователей (администратор)
func (h *AuthHandler) GetBlockedUsers(c *gin.Context) {
	db := h.GetDB(c)

	users, err := h.authService.FetchBlockedUsers(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// BlockUser блокирует пользователя (администратор)
func (h *AuthHandler) BlockUser(c *gin.Context) {
	db := h.GetDB(c)

	user, err := h.authService.BlockUser(db, c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UnblockUser снимает блокировку (администратор)
func (h *AuthHandler) UnblockUser(c *gin.Context) {
	db := h.GetDB(c)

	user, err := h.authService.UnblockUser(db, c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
