package handlers

import (
	"net/http"

	"ecommert_backend/internal/middleware"
	"ecommert_backend/internal/services"
	"ecommert_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	*BaseHandler
	cartService services.CartService
	authMw      *middleware.AuthMiddleware
}

func NewCartHandler(base *BaseHandler, cartService services.CartService, authMw *middleware.AuthMiddleware) *CartHandler {
	return &CartHandler{
		BaseHandler: base,
		cartService: cartService,
		authMw:      authMw,
	}
}

// RegisterRoutes регистрирует маршруты корзины. Все операции с корзиной
// требуют аутентификации; корзина всегда принадлежит текущему пользователю.
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	cart.Use(h.authMw.TokenVerification())
	cart.Use(h.authMw.CheckIfUserBlocked())
	{
		cart.POST("/", h.CreateCart)
		cart.GET("/", h.GetCart)
		cart.GET("/products", h.GetCartWithProducts)
		cart.POST("/items", h.AddProduct)
		cart.PUT("/items/:productId", h.UpdateQuantity)
		cart.DELETE("/items/:productId", h.RemoveProduct)
		cart.DELETE("/", h.ClearCart)
	}
}

// CreateCart создает корзину текущего пользователя
func (h *CartHandler) CreateCart(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	cart, err := h.cartService.CreateCart(db, user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cart)
}

// GetCart возвращает корзину с позициями
func (h *CartHandler) GetCart(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	cart, err := h.cartService.GetCart(db, user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// GetCartWithProducts возвращает корзину с товарами и суммой
func (h *CartHandler) GetCartWithProducts(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	response, err := h.cartService.GetCartWithProducts(db, user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// AddProduct добавляет товар в корзину
func (h *CartHandler) AddProduct(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.AddCartItemRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	cart, err := h.cartService.AddProduct(db, user.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// UpdateQuantity меняет количество позиции
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateCartItemRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	cart, err := h.cartService.UpdateQuantity(db, user.ID, c.Param("productId"), req.Quantity)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// RemoveProduct убирает товар из корзины
func (h *CartHandler) RemoveProduct(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	cart, err := h.cartService.RemoveProduct(db, user.ID, c.Param("productId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// ClearCart убирает все позиции из корзины
func (h *CartHandler) ClearCart(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.cartService.ClearCart(db, user.ID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
