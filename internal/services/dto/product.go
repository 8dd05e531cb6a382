package dto

// CreateProductRequest - создание товара (multipart: поля формы + файлы изображений)
type CreateProductRequest struct {
	Name        string  `form:"name" validate:"required"`
	Description string  `form:"description"`
	Price       float64 `form:"price" validate:"required,gt=0"`
	Stock       int     `form:"stock" validate:"gte=0"`
}

// UpdateProductRequest - частичное обновление товара
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
}

// ReviewRequest - добавление или изменение отзыва о товаре
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}
