package repositories

import (
	"errors"

	"ecommert_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartRepository определяет интерфейс для операций с корзинами
type CartRepository interface {
	Create(db *gorm.DB, userID string) (*models.Cart, error)
	FindByUserID(db *gorm.DB, userID string) (*models.Cart, error)
	FindByUserIDWithProducts(db *gorm.DB, userID string) (*models.Cart, error)
	AddItem(db *gorm.DB, cartID string, productID string, quantity int) error
	UpdateItemQuantity(db *gorm.DB, cartID, productID string, quantity int) error
	RemoveItem(db *gorm.DB, cartID, productID string) error
	Clear(db *gorm.DB, cartID string) error
}

type cartRepository struct{}

// NewCartRepository создает новый экземпляр CartRepository
func NewCartRepository() CartRepository {
	return &cartRepository{}
}

func (r *cartRepository) Create(db *gorm.DB, userID string) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID}
	if err := db.Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *cartRepository) FindByUserID(db *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("CartItems").First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindByUserIDWithProducts(db *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("CartItems.Product").First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) AddItem(db *gorm.DB, cartID string, productID string, quantity int) error {
	item := &models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return db.Create(item).Error
}

func (r *cartRepository) UpdateItemQuantity(db *gorm.DB, cartID, productID string, quantity int) error {
	result := db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) RemoveItem(db *gorm.DB, cartID, productID string) error {
	return db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

func (r *cartRepository) Clear(db *gorm.DB, cartID string) error {
	return db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}
