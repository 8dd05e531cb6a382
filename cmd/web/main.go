// @title           ecommert API
// @version         1.0
// @description     API интернет-магазина: аккаунты, каталог, корзина.
// @contact.name    ecommert
// @contact.email   support@ecommert.dev
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /api/v1

package main

import "ecommert_backend/internal/app"

func main() {
	app.Run()
}
