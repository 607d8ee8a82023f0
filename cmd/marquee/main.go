package main

import (
	"os"
	"os/signal"
	"syscall"

	"marquee/internal/config"
	"marquee/internal/history"
	"marquee/internal/server"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := "./config.toml"

	// A .env file is optional; it mainly carries SCREENLY_API_KEY and
	// NGROK_AUTHTOKEN during development
	_ = godotenv.Load()

	// Initialize basic logger for startup
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}

	configureLogger(logger, &cfg.Logging)

	if cfg.Screenly.APIKey == "" {
		logger.Warn("No Screenly API key configured; callers must send their own Authorization header")
	}

	// Initialize the run history store
	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.NewStore(cfg.History.Path, logger)
		if err != nil {
			logger.WithError(err).Fatal("Error initializing history store")
		}
		defer store.Close()
	}

	// Create and configure the bridge server
	bridgeServer, err := server.NewBridgeServer(cfg, configPath, store, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error creating bridge server")
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := bridgeServer.Start(); err != nil {
			logger.WithError(err).Fatal("Server error")
		}
	}()

	// Wait for shutdown signal
	<-c

	logger.Info("Received shutdown signal")
	bridgeServer.Shutdown()
}

// configureLogger applies the logging section of the configuration.
func configureLogger(logger *logrus.Logger, cfg *config.LoggingConfig) {
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger.WithError(err).Warn("Could not open log file, logging to stderr")
			return
		}
		logger.SetOutput(file)
	}
}
