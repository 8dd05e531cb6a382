package models

// User - учетная запись пользователя магазина.
// PasswordHash никогда не уходит наружу: json:"-" вырезает его из любого
// ответа API и из claims access-токена.
type User struct {
	BaseModel
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ProfileImage string `json:"profile_image,omitempty"`
	IsAdmin      bool   `gorm:"default:false" json:"is_admin"`
	IsBlocked    bool   `gorm:"default:false" json:"is_blocked"`
	IsVerified   bool   `gorm:"default:false" json:"is_verified"`

	// Relations
	RefreshToken *RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	Cart         *Cart         `gorm:"foreignKey:UserID" json:"-"`
}

// RefreshToken - долгоживущий токен обновления.
// uniqueIndex на UserID гарантирует не больше одной записи на пользователя:
// повторный логин перезаписывает token, а не добавляет строку.
type RefreshToken struct {
	BaseModel
	UserID string `gorm:"not null;uniqueIndex" json:"user_id"`
	Token  string `gorm:"not null" json:"token"`
}
