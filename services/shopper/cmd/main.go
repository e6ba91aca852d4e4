package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/config"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/utils"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/shopper/internal/cart"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/shopper/internal/cli"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/shopper/internal/client"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml"))
	if err != nil {
		if cfg, err = config.LoadEnv(); err != nil {
			log.Fatalf("error reading config: %v", err)
		}
	}

	logger, err := config.NewLogger(config.LoggerConfig{Level: "warn", Env: cfg.Env})
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	dir := utils.ParseWithFallback("CART_DIR", "")
	if dir == "" {
		if dir, err = cart.DefaultDir(); err != nil {
			logger.Fatal("Error locating cart dir", zap.Error(err))
		}
	}

	store := cart.NewFileStore(dir, logger)
	api := client.New(cfg.API.BaseURL, 10*time.Second)

	app := cli.New(api, store, os.Stdout, logger)
	if err := app.Run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
