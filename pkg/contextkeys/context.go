package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// DBContextKey - это ключ, по которому мы будем хранить *gorm.DB в context
const DBContextKey = contextKey("db")

// CurrentUserKey - ключ gin.Context, по которому middleware сохраняет
// снимок пользователя, извлеченный из access-токена
const CurrentUserKey = "currentUser"
