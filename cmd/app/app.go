package main

import (
	"os"

	"github.com/marble-shop/go-backend/internal/app"
	config "github.com/marble-shop/go-backend/internal/cfg"
	"github.com/marble-shop/go-backend/pkg/logger"
)

//	@title			Marble Shop API
//	@version		1.0
//	@description	Каталог товаров и оформление заказов.
//	@BasePath		/
func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
