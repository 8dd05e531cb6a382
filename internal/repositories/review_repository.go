package repositories

import (
	"errors"

	"ecommert_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound = errors.New("review not found")
)

// ReviewRepository определяет интерфейс для операций с отзывами о товарах
type ReviewRepository interface {
	Create(db *gorm.DB, review *models.Review) error
	FindByUserAndProduct(db *gorm.DB, userID, productID string) (*models.Review, error)
	Update(db *gorm.DB, review *models.Review) error
	Delete(db *gorm.DB, userID, productID string) error
}

type reviewRepository struct{}

// NewReviewRepository создает новый экземпляр ReviewRepository
func NewReviewRepository() ReviewRepository {
	return &reviewRepository{}
}

func (r *reviewRepository) Create(db *gorm.DB, review *models.Review) error {
	return db.Create(review).Error
}

func (r *reviewRepository) FindByUserAndProduct(db *gorm.DB, userID, productID string) (*models.Review, error) {
	var review models.Review
	err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) Update(db *gorm.DB, review *models.Review) error {
	result := db.Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", review.UserID, review.ProductID).
		Updates(map[string]interface{}{
			"rating":  review.Rating,
			"comment": review.Comment,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) Delete(db *gorm.DB, userID, productID string) error {
	result := db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
