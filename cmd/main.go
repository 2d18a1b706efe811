package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/Deivitto/MetalFun/internal/api"
	"github.com/Deivitto/MetalFun/internal/config"
	"github.com/Deivitto/MetalFun/internal/metal"
	"github.com/Deivitto/MetalFun/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database
	var dbService services.DBService
	if cfg.DatabaseURL != "" {
		dbService, err = services.NewPostgresDBService(cfg.DatabaseURL)
	} else {
		dbService, err = services.NewSqliteDBService(cfg.SqlitePath)
	}
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer dbService.Close()

	db := dbService.GetDB()
	coinService := services.NewCoinService(db)
	txService := services.NewTransactionService(db, coinService, services.NewRandomWalkModel())
	replyService := services.NewReplyService(db, coinService)
	userService := services.NewUserService(db)
	tokenMetadataService := services.NewTokenMetadataService(db)

	metalClient := metal.NewClient(cfg.MetalAPIURL, cfg.MetalAPIKey)
	reconcileService := services.NewReconcileService(metalClient, coinService)

	server := api.NewAPIServer(
		coinService,
		txService,
		replyService,
		userService,
		tokenMetadataService,
		reconcileService,
		metalClient,
	)

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := server.Start(cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	if err := server.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
