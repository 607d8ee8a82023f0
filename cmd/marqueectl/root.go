package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"marquee/internal/config"
	"marquee/internal/screenly"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagAPIKey  string
	flagBaseURL string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "marqueectl",
	Short: "marqueectl manages Screenly signage content from the command line.",
	Long: `marqueectl talks to the Screenly API directly: upload assets, build
playlists, assign them to screens, and sweep everything it created.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "./config.toml", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "Screenly API key (overrides config and SCREENLY_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Screenly API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file with flag overrides applied.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagAPIKey != "" {
		cfg.Screenly.APIKey = flagAPIKey
	}
	if flagBaseURL != "" {
		cfg.Screenly.BaseURL = flagBaseURL
	}
	return cfg, nil
}

// newLogger builds a CLI logger: quiet by default, debug with --verbose.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// newClient wires a Screenly client and resolves the credential to use.
func newClient() (*screenly.Client, screenly.Token, *logrus.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", nil, err
	}
	if cfg.Screenly.APIKey == "" {
		return nil, "", nil, errors.New("no API key: set --api-key, SCREENLY_API_KEY, or the config file")
	}

	logger := newLogger()
	return screenly.NewClient(cfg, logger), screenly.Token(cfg.Screenly.APIKey), logger, nil
}

// printJSON renders a command result to stdout.
func printJSON(payload interface{}) error {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
