package apperrors

import (
	"net/http"
)

/*
Этот файл содержит предопределенные ошибки доменов auth/products/cart.
Сообщения фиксированы: клиенты (и тесты) сверяются с ними дословно.
*/

// --- Auth ---

// ErrUsernameTaken - имя пользователя уже занято
var ErrUsernameTaken = New(
	CodeAlreadyExists,
	"auth",
	"Username already exists.",
	http.StatusBadRequest,
)

// ErrEmailTaken - email уже занят
var ErrEmailTaken = New(
	CodeAlreadyExists,
	"auth",
	"Email already exists.",
	http.StatusBadRequest,
)

// ErrInvalidCredentials - неверный логин или пароль.
// Сообщение одно и то же для "нет такого пользователя" и "не тот пароль",
// чтобы не раскрывать, какие идентификаторы существуют.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid credentials",
	http.StatusUnauthorized,
)

// ErrInvalidPassword - старый пароль не совпал при смене пароля
var ErrInvalidPassword = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid password",
	http.StatusUnauthorized,
)

// ErrUserNotFound - пользователь не найден
var ErrUserNotFound = New(
	CodeNotFound,
	"auth",
	"User not found",
	http.StatusNotFound,
)

// ErrVerificationFailed - верификационный токен не прошел проверку.
// Не различаем истекший и поддельный токен.
var ErrVerificationFailed = New(
	CodeInvalidToken,
	"auth",
	"The verification process failed. Please try again.",
	http.StatusUnauthorized,
)

// --- Request Gate (middleware) ---

// ErrTokenNotFoundInHeader - отсутствует заголовок Authorization
var ErrTokenNotFoundInHeader = New(
	CodeUnauthorized,
	"auth",
	"TOKEN_NOT_FOUND_IN_HEADER",
	http.StatusUnauthorized,
)

// ErrInvalidTokenExpiration - в токене нет claim exp
var ErrInvalidTokenExpiration = New(
	CodeInvalidToken,
	"auth",
	"INVALID_TOKEN_EXPIRATION",
	http.StatusUnauthorized,
)

// ErrInvalidRefreshToken - refresh-токен для пользователя не найден
var ErrInvalidRefreshToken = New(
	CodeInvalidToken,
	"auth",
	"INVALID_REFRESH_TOKEN",
	http.StatusUnauthorized,
)

// ErrRefreshVerificationFailed - refresh-токен найден, но не прошел проверку
// подписи/срока. Статус 404 и сообщение USER_NOT_FOUND исторические: клиенты
// уже завязаны на них, хотя по смыслу это ошибка аутентификации.
var ErrRefreshVerificationFailed = New(
	CodeInvalidToken,
	"auth",
	"USER_NOT_FOUND",
	http.StatusNotFound,
)

// ErrActionNotPermitted - действие требует прав администратора
var ErrActionNotPermitted = New(
	CodeForbidden,
	"auth",
	"ACTION_NOT_PERMITTED",
	http.StatusUnauthorized,
)

// ErrUserBlocked - пользователь заблокирован модерацией
var ErrUserBlocked = New(
	CodeUserBlocked,
	"auth",
	"USER_BLOCKED",
	http.StatusUnauthorized,
)

// ErrNotResourceOwner - пользователь пытается работать с чужим ресурсом
var ErrNotResourceOwner = New(
	CodeForbidden,
	"auth",
	"You are not authorized to access this user",
	http.StatusUnauthorized,
)

// --- Products ---

// ErrProductNotFound - товар не найден
var ErrProductNotFound = New(
	CodeNotFound,
	"products",
	"Product not found",
	http.StatusNotFound,
)

// ErrReviewNotFound - отзыв не найден
var ErrReviewNotFound = New(
	CodeNotFound,
	"products",
	"Review not found",
	http.StatusNotFound,
)

// ErrTooManyImages - превышен лимит изображений на товар
var ErrTooManyImages = New(
	CodeLimitExceeded,
	"products",
	"Cannot upload more than 5 images",
	http.StatusBadRequest,
)

// ErrNoImages - не передано ни одного файла изображения
var ErrNoImages = New(
	CodeValidationFailed,
	"products",
	"No image files were uploaded",
	http.StatusBadRequest,
)

// --- Cart ---

// ErrCartNotFound - корзина пользователя не найдена
var ErrCartNotFound = New(
	CodeNotFound,
	"cart",
	"Cart not found",
	http.StatusNotFound,
)

// ErrCartAlreadyExists - у пользователя уже есть корзина
var ErrCartAlreadyExists = New(
	CodeAlreadyExists,
	"cart",
	"Cart already exists for this user",
	http.StatusConflict,
)
