// main.go
package main

import (
	"context"
	"log"
	"time"

	"event-ticketing/cmd"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/provider"
	"event-ticketing/internal/wire"
	"event-ticketing/pkg/database"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db.Close(ctx)
	}()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// External providers
	identity := provider.NewIdentityClient(config.Identity.URL, logger)
	payment, err := provider.NewStripeProvider(config.Payment.SecretKey, config.Payment.WebhookSecret, logger)
	if err != nil {
		logger.Fatal("Failed to init payment provider", zap.Error(err))
	}

	// Wire all dependencies
	app := wire.Wiring(repos, db, identity, payment, config, logger)

	// Seed default categories on first start
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := app.Service.Category.SeedDefaults(ctx); err != nil {
			logger.Warn("Failed to seed categories", zap.Error(err))
		}
		cancel()
	}

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
