package services

import (
	"ecommert_backend/internal/models"
	"ecommert_backend/internal/repositories"
	"ecommert_backend/internal/services/dto"
	"ecommert_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// CartService - корзина пользователя. Одна корзина на пользователя.
type CartService interface {
	CreateCart(db *gorm.DB, userID string) (*models.Cart, error)
	GetCart(db *gorm.DB, userID string) (*models.Cart, error)
	GetCartWithProducts(db *gorm.DB, userID string) (*dto.CartResponse, error)
	AddProduct(db *gorm.DB, userID string, req *dto.AddCartItemRequest) (*models.Cart, error)
	UpdateQuantity(db *gorm.DB, userID, productID string, quantity int) (*models.Cart, error)
	RemoveProduct(db *gorm.DB, userID, productID string) (*models.Cart, error)
	ClearCart(db *gorm.DB, userID string) error
}

type cartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService создает CartService
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// CreateCart создает корзину пользователя. Вторая корзина не создается.
func (s *cartService) CreateCart(db *gorm.DB, userID string) (*models.Cart, error) {
	if _, err := s.cartRepo.FindByUserID(db, userID); err == nil {
		return nil, apperrors.ErrCartAlreadyExists
	} else if !apperrors.Is(err, repositories.ErrCartNotFound) {
		return nil, apperrors.InternalError(err)
	}

	cart, err := s.cartRepo.Create(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return cart, nil
}

// GetCart возвращает корзину с позициями
func (s *cartService) GetCart(db *gorm.DB, userID string) (*models.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCartNotFound) {
			return nil, apperrors.ErrCartNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return cart, nil
}

// GetCartWithProducts возвращает корзину с подгруженными товарами
// и пересчитанной суммой: сумма количеств, умноженных на текущие цены
func (s *cartService) GetCartWithProducts(db *gorm.DB, userID string) (*dto.CartResponse, error) {
	cart, err := s.cartRepo.FindByUserIDWithProducts(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCartNotFound) {
			return nil, apperrors.ErrCartNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	return &dto.CartResponse{
		Cart:  cart,
		Total: CartTotal(cart),
	}, nil
}

// AddProduct добавляет товар в корзину. Если товар уже лежит в корзине,
// количество увеличивается, а не дублируется позиция.
func (s *cartService) AddProduct(db *gorm.DB, userID string, req *dto.AddCartItemRequest) (*models.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCartNotFound) {
			return nil, apperrors.ErrCartNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if _, err := s.productRepo.FindByID(db, req.ProductID); err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	existing := findItem(cart, req.ProductID)
	if existing != nil {
		err = s.cartRepo.UpdateItemQuantity(db, cart.ID, req.ProductID, existing.Quantity+req.Quantity)
	} else {
		err = s.cartRepo.AddItem(db, cart.ID, req.ProductID, req.Quantity)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.GetCart(db, userID)
}

// UpdateQuantity меняет количество позиции
func (s *cartService) UpdateQuantity(db *gorm.DB, userID, productID string, quantity int) (*models.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCartNotFound) {
			return nil, apperrors.ErrCartNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.cartRepo.UpdateItemQuantity(db, cart.ID, productID, quantity); err != nil {
		if apperrors.Is(err, repositories.ErrCartItemNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	return s.GetCart(db, userID)
}

// RemoveProduct убирает товар из корзины
func (s *cartService) RemoveProduct(db *gorm.DB, userID, productID string) (*models.Cart, error) {
	cart, err := s.cartRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCartNotFound) {
			return nil, apperrors.ErrCartNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.cartRepo.RemoveItem(db, cart.ID, productID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.GetCart(db, userID)
}

// ClearCart убирает все позиции из корзины
func (s *cartService) ClearCart(db *gorm.DB, userID string) error {
	cart, err := s.cartRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCartNotFound) {
			return apperrors.ErrCartNotFound
		}
		return apperrors.InternalError(err)
	}

	if err := s.cartRepo.Clear(db, cart.ID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// CartTotal считает сумму корзины по подгруженным товарам.
// Позиции без подгруженного товара в сумму не входят.
func CartTotal(cart *models.Cart) float64 {
	var total float64
	for _, item := range cart.CartItems {
		if item.Product != nil {
			total += float64(item.Quantity) * item.Product.Price
		}
	}
	return total
}

func findItem(cart *models.Cart, productID string) *models.CartItem {
	for i := range cart.CartItems {
		if cart.CartItems[i].ProductID == productID {
			return &cart.CartItems[i]
		}
	}
	return nil
}
