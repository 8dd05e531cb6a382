package app

import (
	"errors"
	"fmt"

	"ecommert_backend/internal/auth"
	"ecommert_backend/internal/config"
	"ecommert_backend/internal/email"
	"ecommert_backend/internal/handlers"
	"ecommert_backend/internal/logger"
	"ecommert_backend/internal/middleware"
	"ecommert_backend/internal/models"
	"ecommert_backend/internal/repositories"
	"ecommert_backend/internal/routes"
	"ecommert_backend/internal/services"
	"ecommert_backend/internal/storage"
	"ecommert_backend/internal/validator"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB := openDatabase(cfg)

	if err := autoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func openDatabase(cfg *config.Config) *gorm.DB {
	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	default:
		dialector = postgres.Open(cfg.Database.DSN)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	return gormDB
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Product{},
		&models.Review{},
		&models.Cart{},
		&models.CartItem{},
	)
}

// SetupRouter собирает весь граф зависимостей и возвращает готовый роутер.
// Вынесено из Run, чтобы тесты могли поднять сервер без реального запуска.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
		Folder:    cfg.Storage.Folder,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.RefreshSecret)

	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()

	serviceContainer := initializeServices(cfg, storageInstance, tokens, userRepo, refreshTokenRepo)

	authMw := middleware.NewAuthMiddleware(tokens, userRepo, refreshTokenRepo)

	appHandlers := initializeHandlers(serviceContainer, authMw)

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

func initializeServices(
	cfg *config.Config,
	storageInstance storage.Storage,
	tokens *auth.TokenManager,
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *services.ServiceContainer {
	emailService := initializeEmailProvider(cfg)

	productRepo := repositories.NewProductRepository()
	reviewRepo := repositories.NewReviewRepository()
	cartRepo := repositories.NewCartRepository()

	authService := services.NewAuthService(userRepo, refreshTokenRepo, tokens, emailService, cfg.Frontend.BaseURL)
	productService := services.NewProductService(productRepo, reviewRepo, storageInstance, cfg.Storage.Folder)
	cartService := services.NewCartService(cartRepo, productRepo)

	return &services.ServiceContainer{
		AuthService:    authService,
		ProductService: productService,
		CartService:    cartService,
		EmailService:   emailService,
		Storage:        storageInstance,
	}
}

// initializeEmailProvider собирает SMTP провайдер. Без настроенного SMTP
// приложение работает, письма просто не отправляются.
func initializeEmailProvider(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP is not configured, emails will not be sent")
		return nil
	}

	renderer := email.NewTemplateManager()
	if cfg.Email.TemplatesDir != "" {
		if err := renderer.LoadTemplates(cfg.Email.TemplatesDir); err != nil {
			logger.Warn("Failed to load email templates, using built-in ones", "dir", cfg.Email.TemplatesDir, "error", err)
		}
	}

	provider, err := email.NewSMTPProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	}, renderer)
	if err != nil {
		logger.Warn("Failed to initialize email provider, emails will not be sent", "error", err)
		return nil
	}

	return provider
}

func initializeHandlers(services *services.ServiceContainer, authMw *middleware.AuthMiddleware) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		Auth:    handlers.NewAuthHandler(baseHandler, services.AuthService, authMw),
		Product: handlers.NewProductHandler(baseHandler, services.ProductService, authMw),
		Cart:    handlers.NewCartHandler(baseHandler, services.CartService, authMw),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found with specified email. Creating first admin...", "email", adminEmail)

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	username := cfg.FirstAdminUsername
	if username == "" {
		username = "admin"
	}

	newAdmin := &models.User{
		Username:     username,
		Email:        adminEmail,
		PasswordHash: hash,
		IsAdmin:      true,
		IsVerified:   true,
	}

	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("Successfully created first admin user", "email", adminEmail)
	return nil
}
