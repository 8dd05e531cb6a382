package repositories

import (
	"errors"

	"ecommert_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository определяет интерфейс для операций с товарами каталога
type ProductRepository interface {
	FindByID(db *gorm.DB, id string) (*models.Product, error)
	FindByIDWithReviews(db *gorm.DB, id string) (*models.Product, error)
	FindAll(db *gorm.DB) ([]models.Product, error)
	FindFeatured(db *gorm.DB) ([]models.Product, error)
	Create(db *gorm.DB, product *models.Product) error
	Update(db *gorm.DB, product *models.Product) error
	Delete(db *gorm.DB, id string) error
	SetFeatured(db *gorm.DB, id string, featured bool) error
	IncrementLikes(db *gorm.DB, id string, delta int) error
}

type productRepository struct{}

// NewProductRepository создает новый экземпляр ProductRepository
func NewProductRepository() ProductRepository {
	return &productRepository{}
}

func (r *productRepository) FindByID(db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	err := db.First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDWithReviews(db *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	err := db.Preload("Reviews").First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindAll(db *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	err := db.Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepository) FindFeatured(db *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	err := db.Where("featured = ?", true).Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepository) Create(db *gorm.DB, product *models.Product) error {
	return db.Create(product).Error
}

func (r *productRepository) Update(db *gorm.DB, product *models.Product) error {
	result := db.Model(product).Updates(map[string]interface{}{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"stock":       product.Stock,
		"images":      product.Images,
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) Delete(db *gorm.DB, id string) error {
	// Отзывы удаляем вместе с товаром
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Product{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
}

func (r *productRepository) SetFeatured(db *gorm.DB, id string, featured bool) error {
	result := db.Model(&models.Product{}).Where("id = ?", id).Update("featured", featured)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) IncrementLikes(db *gorm.DB, id string, delta int) error {
	result := db.Model(&models.Product{}).Where("id = ?", id).
		Update("likes", gorm.Expr("likes + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
