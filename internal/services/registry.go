package services

import (
	"ecommert_backend/internal/email"
	"ecommert_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService    AuthService
	ProductService ProductService
	CartService    CartService
	EmailService   email.Provider
	Storage        storage.Storage
}
