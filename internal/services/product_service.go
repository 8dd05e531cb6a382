package services

import (
	"context"
	"encoding/json"
	"mime/multipart"

	"ecommert_backend/internal/logger"
	"ecommert_backend/internal/models"
	"ecommert_backend/internal/repositories"
	"ecommert_backend/internal/services/dto"
	"ecommert_backend/internal/storage"
	"ecommert_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// MaxProductImages - лимит изображений на товар
const MaxProductImages = 5

// ProductImage - запись об одном загруженном изображении.
// Key нужен, чтобы потом удалить файл из хранилища.
type ProductImage struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// ProductService - каталог товаров: CRUD, избранное, лайки, отзывы,
// загрузка изображений.
type ProductService interface {
	GetAllProducts(db *gorm.DB) ([]models.Product, error)
	GetProduct(db *gorm.DB, id string) (*models.Product, error)
	GetProductWithReviews(db *gorm.DB, id string) (*models.Product, error)
	GetFeaturedProducts(db *gorm.DB) ([]models.Product, error)

	AddProduct(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateProductRequest, files []*multipart.FileHeader) (*models.Product, error)
	UpdateProduct(db *gorm.DB, id string, req *dto.UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, db *gorm.DB, id string) error

	SetFeatured(db *gorm.DB, id string, featured bool) (*models.Product, error)
	LikeProduct(db *gorm.DB, id string) error
	UnlikeProduct(db *gorm.DB, id string) error

	AddReview(db *gorm.DB, userID, productID string, req *dto.ReviewRequest) (*models.Review, error)
	UpdateReview(db *gorm.DB, userID, productID string, req *dto.ReviewRequest) (*models.Review, error)
	DeleteReview(db *gorm.DB, userID, productID string) error
}

type productService struct {
	productRepo repositories.ProductRepository
	reviewRepo  repositories.ReviewRepository
	store       storage.Storage
	folder      string
}

// NewProductService создает ProductService
func NewProductService(
	productRepo repositories.ProductRepository,
	reviewRepo repositories.ReviewRepository,
	store storage.Storage,
	folder string,
) ProductService {
	return &productService{
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		store:       store,
		folder:      folder,
	}
}

func (s *productService) GetAllProducts(db *gorm.DB) ([]models.Product, error) {
	products, err := s.productRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return products, nil
}

func (s *productService) GetProduct(db *gorm.DB, id string) (*models.Product, error) {
	product, err := s.productRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return product, nil
}

func (s *productService) GetProductWithReviews(db *gorm.DB, id string) (*models.Product, error) {
	product, err := s.productRepo.FindByIDWithReviews(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return product, nil
}

func (s *productService) GetFeaturedProducts(db *gorm.DB) ([]models.Product, error) {
	products, err := s.productRepo.FindFeatured(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return products, nil
}

// AddProduct создает товар и загружает его изображения (не больше пяти).
// Если загрузка любого файла не удалась, уже загруженные удаляются
// best-effort и запрос завершается ошибкой.
func (s *productService) AddProduct(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateProductRequest, files []*multipart.FileHeader) (*models.Product, error) {
	if len(files) == 0 {
		return nil, apperrors.ErrNoImages
	}
	if len(files) > MaxProductImages {
		return nil, apperrors.ErrTooManyImages
	}

	images, err := s.uploadImages(ctx, files)
	if err != nil {
		return nil, err
	}

	imagesJSON, err := json.Marshal(images)
	if err != nil {
		s.deleteImages(ctx, images)
		return nil, apperrors.InternalError(err)
	}

	product := &models.Product{
		Name:        req.Name,
		UserID:      userID,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      imagesJSON,
	}

	if err := s.productRepo.Create(db, product); err != nil {
		// Товар не сохранился - файлы в хранилище никому не нужны
		s.deleteImages(ctx, images)
		return nil, apperrors.InternalError(err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(db *gorm.DB, id string, req *dto.UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if err := s.productRepo.Update(db, product); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return product, nil
}

// DeleteProduct удаляет товар вместе с отзывами, затем best-effort
// чистит его изображения в хранилище
func (s *productService) DeleteProduct(ctx context.Context, db *gorm.DB, id string) error {
	product, err := s.productRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return apperrors.ErrProductNotFound
		}
		return apperrors.InternalError(err)
	}

	if err := s.productRepo.Delete(db, id); err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return apperrors.ErrProductNotFound
		}
		return apperrors.InternalError(err)
	}

	if len(product.Images) > 0 {
		var images []ProductImage
		if err := json.Unmarshal(product.Images, &images); err != nil {
			logger.Warn("failed to decode product images for cleanup", "product_id", id, "error", err)
			return nil
		}
		s.deleteImages(ctx, images)
	}

	return nil
}

func (s *productService) SetFeatured(db *gorm.DB, id string, featured bool) (*models.Product, error) {
	if err := s.productRepo.SetFeatured(db, id, featured); err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	product, err := s.productRepo.FindByID(db, id)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return product, nil
}

func (s *productService) LikeProduct(db *gorm.DB, id string) error {
	return s.adjustLikes(db, id, 1)
}

func (s *productService) UnlikeProduct(db *gorm.DB, id string) error {
	return s.adjustLikes(db, id, -1)
}

func (s *productService) adjustLikes(db *gorm.DB, id string, delta int) error {
	if err := s.productRepo.IncrementLikes(db, id, delta); err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return apperrors.ErrProductNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// AddReview добавляет отзыв. Один пользователь - один отзыв на товар,
// уникальный индекс не даст добавить второй.
func (s *productService) AddReview(db *gorm.DB, userID, productID string, req *dto.ReviewRequest) (*models.Review, error) {
	if _, err := s.productRepo.FindByID(db, productID); err != nil {
		if apperrors.Is(err, repositories.ErrProductNotFound) {
			return nil, apperrors.ErrProductNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := s.reviewRepo.Create(db, review); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return review, nil
}

func (s *productService) UpdateReview(db *gorm.DB, userID, productID string, req *dto.ReviewRequest) (*models.Review, error) {
	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := s.reviewRepo.Update(db, review); err != nil {
		if apperrors.Is(err, repositories.ErrReviewNotFound) {
			return nil, apperrors.ErrReviewNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	updated, err := s.reviewRepo.FindByUserAndProduct(db, userID, productID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return updated, nil
}

func (s *productService) DeleteReview(db *gorm.DB, userID, productID string) error {
	if err := s.reviewRepo.Delete(db, userID, productID); err != nil {
		if apperrors.Is(err, repositories.ErrReviewNotFound) {
			return apperrors.ErrReviewNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// --- Helper functions ---

// uploadImages последовательно загружает файлы в хранилище.
// При сбое уже загруженное удаляется, частичных результатов не остается.
func (s *productService) uploadImages(ctx context.Context, files []*multipart.FileHeader) ([]ProductImage, error) {
	uploaded := make([]ProductImage, 0, len(files))

	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			s.deleteImages(ctx, uploaded)
			return nil, apperrors.InternalError(err)
		}

		key := storage.NewImageKey(s.folder, fh.Filename)
		contentType := fh.Header.Get("Content-Type")

		err = s.store.Save(ctx, key, file, contentType)
		file.Close()
		if err != nil {
			s.deleteImages(ctx, uploaded)
			return nil, apperrors.InternalError(err)
		}

		url, err := s.store.GetURL(ctx, key)
		if err != nil {
			// Файл уже в хранилище - удаляем и его тоже
			uploaded = append(uploaded, ProductImage{Key: key})
			s.deleteImages(ctx, uploaded)
			return nil, apperrors.InternalError(err)
		}

		uploaded = append(uploaded, ProductImage{URL: url, Key: key})
	}

	return uploaded, nil
}

// deleteImages удаляет файлы из хранилища best-effort: ошибки только логируются
func (s *productService) deleteImages(ctx context.Context, images []ProductImage) {
	for _, img := range images {
		if err := s.store.Delete(ctx, img.Key); err != nil {
			logger.Warn("failed to delete stored image", "key", img.Key, "error", err)
		}
	}
}
