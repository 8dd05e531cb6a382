package models

import (
	"gorm.io/datatypes"
)

// Product - товар каталога. Images хранит JSON-массив публичных URL
// загруженных изображений (до 5 на товар).
type Product struct {
	BaseModel
	Name        string         `gorm:"not null;index" json:"name"`
	UserID      string         `gorm:"not null;index" json:"user_id"`
	Description string         `json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	Stock       int            `gorm:"not null;default:0" json:"stock"`
	Images      datatypes.JSON `json:"images"`
	Featured    bool           `gorm:"default:false;index" json:"featured"`
	Likes       int            `gorm:"default:0" json:"likes"`

	// Relations
	Reviews []Review `gorm:"foreignKey:ProductID" json:"reviews,omitempty"`
}

// Review - отзыв о товаре. Один пользователь - один отзыв на товар.
type Review struct {
	BaseModel
	UserID    string `gorm:"not null;index:idx_review_user_product,unique" json:"user_id"`
	ProductID string `gorm:"not null;index:idx_review_user_product,unique" json:"product_id"`
	Rating    int    `gorm:"not null" json:"rating"`
	Comment   string `json:"comment"`
}
