package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "task-manager.com/task-manager/internal/configs"
	"task-manager.com/task-manager/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "task-manager",
	Short:         "Task manager service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.Logger.Error(err)
		os.Exit(1)
	}
}

// loadConfig reads .env when present, then the environment, and sets up
// logging from the result.
func loadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Logger.Info(".env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if err := logging.Init(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	}); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
