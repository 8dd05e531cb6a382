package handlers

// AppHandlers содержит все обработчики приложения.
type AppHandlers struct {
	Auth    *AuthHandler
	Product *ProductHandler
	Cart    *CartHandler
}
