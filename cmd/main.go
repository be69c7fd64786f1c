//go:generate swag init -d ../ -g cmd/main.go -o ../docs --parseInternal

package main

import (
	"github.com/corray333/jersey-shop/internal/app"
	"github.com/corray333/jersey-shop/internal/config"
)

// @title          Jersey Shop API
// @version        1.0
// @description    Football jersey e-commerce backend.
// @BasePath       /api
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
