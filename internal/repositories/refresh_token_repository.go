package repositories

import (
	"errors"

	"ecommert_backend/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrRefreshTokenNotFound возвращается, когда refresh-токен не найден в БД
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

// RefreshTokenRepository определяет интерфейс для операций с refresh-токенами.
// Инвариант: на пользователя существует не больше одной записи, ротация
// перезаписывает значение токена, а не добавляет строку.
type RefreshTokenRepository interface {
	// Create создает новую запись о refresh-токене
	Create(db *gorm.DB, token *models.RefreshToken) error

	// FindByUserID находит refresh-токен пользователя
	FindByUserID(db *gorm.DB, userID string) (*models.RefreshToken, error)

	// UpdateToken перезаписывает значение токена существующей записи (ротация)
	UpdateToken(db *gorm.DB, id, tokenString string) error

	// DeleteByID удаляет запись по ее id
	DeleteByID(db *gorm.DB, id string) error

	// DeleteByUserID удаляет refresh-токен пользователя
	DeleteByUserID(db *gorm.DB, userID string) error
}

type refreshTokenRepository struct{}

// NewRefreshTokenRepository создает новый экземпляр RefreshTokenRepository
func NewRefreshTokenRepository() RefreshTokenRepository {
	return &refreshTokenRepository{}
}

func (r *refreshTokenRepository) Create(db *gorm.DB, token *models.RefreshToken) error {
	return db.Create(token).Error
}

func (r *refreshTokenRepository) FindByUserID(db *gorm.DB, userID string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := db.Where("user_id = ?", userID).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) UpdateToken(db *gorm.DB, id, tokenString string) error {
	result := db.Model(&models.RefreshToken{}).Where("id = ?", id).Update("token", tokenString)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *refreshTokenRepository) DeleteByID(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *refreshTokenRepository) DeleteByUserID(db *gorm.DB, userID string) error {
	result := db.Where("user_id = ?", userID).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}
