package models

// Cart - корзина. Ровно одна на пользователя (uniqueIndex на UserID).
type Cart struct {
	BaseModel
	UserID string `gorm:"not null;uniqueIndex" json:"user_id"`

	// Relations
	CartItems []CartItem `gorm:"foreignKey:CartID" json:"cart_items,omitempty"`
}

// CartItem - позиция корзины
type CartItem struct {
	BaseModel
	CartID    string `gorm:"not null;index" json:"cart_id"`
	ProductID string `gorm:"not null;index" json:"product_id"`
	Quantity  int    `gorm:"not null;default:1" json:"quantity"`

	// Relations
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
