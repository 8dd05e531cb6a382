package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"ecommert_backend/internal/email"
	"ecommert_backend/internal/models"
	"ecommert_backend/internal/repositories"

	"gorm.io/gorm"
)

// Фейковые репозитории в памяти. Аргумент db игнорируется: интерфейсы
// репозиториев позволяют тестировать сервисы без настоящей БД.

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByUsername(_ *gorm.DB, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	if user.ID == "" {
		r.nextID++
		user.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ *gorm.DB, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ *gorm.DB, userID, passwordHash string) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) SetBlocked(_ *gorm.DB, userID string, blocked bool) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsBlocked = blocked
	return nil
}

func (r *fakeUserRepo) VerifyUser(_ *gorm.DB, userID string) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsVerified = true
	return nil
}

func (r *fakeUserRepo) Delete(_ *gorm.DB, userID string) error {
	if _, ok := r.users[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) FindAll(_ *gorm.DB) ([]models.User, error) {
	return r.collect(func(*models.User) bool { return true }), nil
}

func (r *fakeUserRepo) FindBlocked(_ *gorm.DB) ([]models.User, error) {
	return r.collect(func(u *models.User) bool { return u.IsBlocked }), nil
}

func (r *fakeUserRepo) collect(keep func(*models.User) bool) []models.User {
	var out []models.User
	for _, u := range r.users {
		if keep(u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeRefreshTokenRepo struct {
	byUser map[string]*models.RefreshToken
	nextID int
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{byUser: make(map[string]*models.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(_ *gorm.DB, token *models.RefreshToken) error {
	if _, ok := r.byUser[token.UserID]; ok {
		return fmt.Errorf("unique constraint violation: refresh token for user %s", token.UserID)
	}
	if token.ID == "" {
		r.nextID++
		token.ID = fmt.Sprintf("rt-%d", r.nextID)
	}
	copied := *token
	r.byUser[token.UserID] = &copied
	return nil
}

func (r *fakeRefreshTokenRepo) FindByUserID(_ *gorm.DB, userID string) (*models.RefreshToken, error) {
	if t, ok := r.byUser[userID]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, repositories.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) UpdateToken(_ *gorm.DB, id, tokenString string) error {
	for _, t := range r.byUser {
		if t.ID == id {
			t.Token = tokenString
			return nil
		}
	}
	return repositories.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) DeleteByID(_ *gorm.DB, id string) error {
	for userID, t := range r.byUser {
		if t.ID == id {
			delete(r.byUser, userID)
			return nil
		}
	}
	return repositories.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) DeleteByUserID(_ *gorm.DB, userID string) error {
	if _, ok := r.byUser[userID]; !ok {
		return repositories.ErrRefreshTokenNotFound
	}
	delete(r.byUser, userID)
	return nil
}

func (r *fakeRefreshTokenRepo) count() int {
	return len(r.byUser)
}

type fakeProductRepo struct {
	products map[string]*models.Product
	nextID   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*models.Product)}
}

func (r *fakeProductRepo) FindByID(_ *gorm.DB, id string) (*models.Product, error) {
	if p, ok := r.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repositories.ErrProductNotFound
}

func (r *fakeProductRepo) FindByIDWithReviews(db *gorm.DB, id string) (*models.Product, error) {
	return r.FindByID(db, id)
}

func (r *fakeProductRepo) FindAll(_ *gorm.DB) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) FindFeatured(_ *gorm.DB) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		if p.Featured {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Create(_ *gorm.DB, product *models.Product) error {
	if product.ID == "" {
		r.nextID++
		product.ID = fmt.Sprintf("product-%d", r.nextID)
	}
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) Update(_ *gorm.DB, product *models.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return repositories.ErrProductNotFound
	}
	copied := *product
	r.products[product.ID] = &copied
	return nil
}

func (r *fakeProductRepo) Delete(_ *gorm.DB, id string) error {
	if _, ok := r.products[id]; !ok {
		return repositories.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) SetFeatured(_ *gorm.DB, id string, featured bool) error {
	p, ok := r.products[id]
	if !ok {
		return repositories.ErrProductNotFound
	}
	p.Featured = featured
	return nil
}

func (r *fakeProductRepo) IncrementLikes(_ *gorm.DB, id string, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return repositories.ErrProductNotFound
	}
	p.Likes += delta
	return nil
}

type fakeReviewRepo struct {
	reviews map[string]*models.Review // key: userID+"/"+productID
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*models.Review)}
}

func reviewKey(userID, productID string) string {
	return userID + "/" + productID
}

func (r *fakeReviewRepo) Create(_ *gorm.DB, review *models.Review) error {
	key := reviewKey(review.UserID, review.ProductID)
	if _, ok := r.reviews[key]; ok {
		return fmt.Errorf("unique constraint violation: review %s", key)
	}
	copied := *review
	r.reviews[key] = &copied
	return nil
}

func (r *fakeReviewRepo) FindByUserAndProduct(_ *gorm.DB, userID, productID string) (*models.Review, error) {
	if rv, ok := r.reviews[reviewKey(userID, productID)]; ok {
		copied := *rv
		return &copied, nil
	}
	return nil, repositories.ErrReviewNotFound
}

func (r *fakeReviewRepo) Update(_ *gorm.DB, review *models.Review) error {
	existing, ok := r.reviews[reviewKey(review.UserID, review.ProductID)]
	if !ok {
		return repositories.ErrReviewNotFound
	}
	existing.Rating = review.Rating
	existing.Comment = review.Comment
	return nil
}

func (r *fakeReviewRepo) Delete(_ *gorm.DB, userID, productID string) error {
	key := reviewKey(userID, productID)
	if _, ok := r.reviews[key]; !ok {
		return repositories.ErrReviewNotFound
	}
	delete(r.reviews, key)
	return nil
}

type fakeCartRepo struct {
	carts  map[string]*models.Cart // key: userID
	nextID int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*models.Cart)}
}

func (r *fakeCartRepo) Create(_ *gorm.DB, userID string) (*models.Cart, error) {
	r.nextID++
	cart := &models.Cart{
		BaseModel: models.BaseModel{ID: fmt.Sprintf("cart-%d", r.nextID)},
		UserID:    userID,
	}
	r.carts[userID] = cart
	copied := *cart
	return &copied, nil
}

func (r *fakeCartRepo) FindByUserID(_ *gorm.DB, userID string) (*models.Cart, error) {
	if cart, ok := r.carts[userID]; ok {
		copied := *cart
		copied.CartItems = append([]models.CartItem(nil), cart.CartItems...)
		return &copied, nil
	}
	return nil, repositories.ErrCartNotFound
}

func (r *fakeCartRepo) FindByUserIDWithProducts(db *gorm.DB, userID string) (*models.Cart, error) {
	return r.FindByUserID(db, userID)
}

func (r *fakeCartRepo) AddItem(_ *gorm.DB, cartID, productID string, quantity int) error {
	cart := r.findByCartID(cartID)
	if cart == nil {
		return repositories.ErrCartNotFound
	}
	cart.CartItems = append(cart.CartItems, models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

func (r *fakeCartRepo) UpdateItemQuantity(_ *gorm.DB, cartID, productID string, quantity int) error {
	cart := r.findByCartID(cartID)
	if cart == nil {
		return repositories.ErrCartNotFound
	}
	for i := range cart.CartItems {
		if cart.CartItems[i].ProductID == productID {
			cart.CartItems[i].Quantity = quantity
			return nil
		}
	}
	return repositories.ErrCartItemNotFound
}

func (r *fakeCartRepo) RemoveItem(_ *gorm.DB, cartID, productID string) error {
	cart := r.findByCartID(cartID)
	if cart == nil {
		return repositories.ErrCartNotFound
	}
	items := cart.CartItems[:0]
	for _, item := range cart.CartItems {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	cart.CartItems = items
	return nil
}

func (r *fakeCartRepo) Clear(_ *gorm.DB, cartID string) error {
	cart := r.findByCartID(cartID)
	if cart == nil {
		return repositories.ErrCartNotFound
	}
	cart.CartItems = nil
	return nil
}

func (r *fakeCartRepo) findByCartID(cartID string) *models.Cart {
	for _, cart := range r.carts {
		if cart.ID == cartID {
			return cart
		}
	}
	return nil
}

// fakeStorage записывает ключи сохраненных и удаленных файлов.
// failOnSave > 0 валит сохранение с этим порядковым номером (с единицы).
type fakeStorage struct {
	saved      []string
	deleted    []string
	failOnSave int
}

func (s *fakeStorage) Save(_ context.Context, key string, reader io.Reader, _ string) error {
	if s.failOnSave > 0 && len(s.saved)+1 == s.failOnSave {
		return fmt.Errorf("storage unavailable")
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return err
	}
	s.saved = append(s.saved, key)
	return nil
}

func (s *fakeStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("fake")), nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	for _, k := range s.saved {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStorage) GetURL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *fakeStorage) GetSignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key + "?signed", nil
}

// fakeEmailProvider отдает отправленные письма в канал, чтобы тест мог
// дождаться фоновой отправки
type fakeEmailProvider struct {
	sent chan sentEmail
}

type sentEmail struct {
	to       []string
	subject  string
	template string
}

func newFakeEmailProvider() *fakeEmailProvider {
	return &fakeEmailProvider{sent: make(chan sentEmail, 8)}
}

func (p *fakeEmailProvider) Send(e *email.Email) error {
	p.sent <- sentEmail{to: e.To, subject: e.Subject}
	return nil
}

func (p *fakeEmailProvider) SendTemplate(to []string, subject, templateName string, _ email.TemplateData) error {
	p.sent <- sentEmail{to: to, subject: subject, template: templateName}
	return nil
}

func (p *fakeEmailProvider) SendVerification(to, _ string) error {
	p.sent <- sentEmail{to: []string{to}, template: "verification"}
	return nil
}

func (p *fakeEmailProvider) SendPasswordReset(to, _ string) error {
	p.sent <- sentEmail{to: []string{to}, template: "password_reset"}
	return nil
}

func (p *fakeEmailProvider) Validate() error { return nil }
