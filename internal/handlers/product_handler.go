package handlers

import (
	"net/http"

	"ecommert_backend/internal/middleware"
	"ecommert_backend/internal/services"
	"ecommert_backend/internal/services/dto"
	"ecommert_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	*BaseHandler
	productService services.ProductService
	authMw         *middleware.AuthMiddleware
}

func NewProductHandler(base *BaseHandler, productService services.ProductService, authMw *middleware.AuthMiddleware) *ProductHandler {
	return &ProductHandler{
		BaseHandler:    base,
		productService: productService,
		authMw:         authMw,
	}
}

// RegisterRoutes регистрирует маршруты каталога товаров
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Чтение каталога открыто всем
	products := rg.Group("/products")
	{
		products.GET("/", h.GetAllProducts)
		products.GET("/featured", h.GetFeaturedProducts)
		products.GET("/:productId", h.GetProduct)
		products.GET("/:productId/reviews", h.GetProductWithReviews)
	}

	gated := rg.Group("/products")
	gated.Use(h.authMw.TokenVerification())
	gated.Use(h.authMw.CheckIfUserBlocked())
	{
		gated.PUT("/:productId/like", h.LikeProduct)
		gated.PUT("/:productId/unlike", h.UnlikeProduct)
		gated.POST("/:productId/reviews", h.AddReview)
		gated.PUT("/:productId/reviews", h.UpdateReview)
		gated.DELETE("/:productId/reviews", h.DeleteReview)
	}

	admin := rg.Group("/products")
	admin.Use(h.authMw.TokenVerification())
	admin.Use(h.authMw.CheckIfUserBlocked())
	admin.Use(h.authMw.CheckIfAdmin())
	{
		admin.POST("/", h.AddProduct)
		admin.PUT("/:productId", h.UpdateProduct)
		admin.DELETE("/:productId", h.DeleteProduct)
		admin.PUT("/:productId/feature", h.FeatureProduct)
		admin.PUT("/:productId/unfeature", h.UnfeatureProduct)
	}
}

// GetAllProducts возвращает весь каталог
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	db := h.GetDB(c)

	products, err := h.productService.GetAllProducts(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetFeaturedProducts возвращает избранные товары
func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	db := h.GetDB(c)

	products, err := h.productService.GetFeaturedProducts(db)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct возвращает товар по id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	db := h.GetDB(c)

	product, err := h.productService.GetProduct(db, c.Param("productId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetProductWithReviews возвращает товар вместе с отзывами
func (h *ProductHandler) GetProductWithReviews(c *gin.Context) {
	db := h.GetDB(c)

	product, err := h.productService.GetProductWithReviews(db, c.Param("productId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// AddProduct создает товар с изображениями (multipart, поле images)
func (h *ProductHandler) AddProduct(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.CreateProductRequest
	if !h.BindAndValidate_Form(c, &req) {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid multipart form: "+err.Error()))
		return
	}
	files := form.File["images"]

	db := h.GetDB(c)

	product, err := h.productService.AddProduct(c.Request.Context(), db, user.ID, &req, files)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct - частичное обновление товара
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req dto.UpdateProductRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	product, err := h.productService.UpdateProduct(db, c.Param("productId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct удаляет товар вместе с изображениями
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	db := h.GetDB(c)

	if err := h.productService.DeleteProduct(c.Request.Context(), db, c.Param("productId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// FeatureProduct помечает товар избранным
func (h *ProductHandler) FeatureProduct(c *gin.Context) {
	h.setFeatured(c, true)
}

// UnfeatureProduct снимает пометку избранного
func (h *ProductHandler) UnfeatureProduct(c *gin.Context) {
	h.setFeatured(c, false)
}

func (h *ProductHandler) setFeatured(c *gin.Context, featured bool) {
	db := h.GetDB(c)

	product, err := h.productService.SetFeatured(db, c.Param("productId"), featured)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// LikeProduct увеличивает счетчик лайков
func (h *ProductHandler) LikeProduct(c *gin.Context) {
	db := h.GetDB(c)

	if err := h.productService.LikeProduct(db, c.Param("productId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product liked"})
}

// UnlikeProduct уменьшает счетчик лайков
func (h *ProductHandler) UnlikeProduct(c *gin.Context) {
	db := h.GetDB(c)

	if err := h.productService.UnlikeProduct(db, c.Param("productId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product unliked"})
}

// AddReview добавляет отзыв текущего пользователя
func (h *ProductHandler) AddReview(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	review, err := h.productService.AddReview(db, user.ID, c.Param("productId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// UpdateReview меняет отзыв текущего пользователя
func (h *ProductHandler) UpdateReview(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	review, err := h.productService.UpdateReview(db, user.ID, c.Param("productId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview удаляет отзыв текущего пользователя
func (h *ProductHandler) DeleteReview(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.productService.DeleteReview(db, user.ID, c.Param("productId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
