package dto

import (
	"ecommert_backend/internal/models"
)

// AddCartItemRequest - добавление товара в корзину
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// UpdateCartItemRequest - изменение количества позиции
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartResponse - корзина с подгруженными товарами и пересчитанной суммой
type CartResponse struct {
	Cart  *models.Cart `json:"cart"`
	Total float64      `json:"total"`
}
