package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/rasnes/inegi-duckdb-framework/config"
	"github.com/rasnes/inegi-duckdb-framework/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "inegi",
	Short: "ETL cli for INEGI BISE indicators",
	Long: `Downloads INEGI indicators, writes one CSV per indicator and optionally a database table.

Runs are not locked: two runs writing to the same output directory or database at the same
time race, and either may win.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSeriesCmd())
	rootCmd.AddCommand(newPlotCmd())
	rootCmd.AddCommand(newExportCmd())
}

func isRunningOnGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

func initializeConfigAndLogger() (*config.Config, *slog.Logger, error) {
	log := logger.NewLogger()
	if !isRunningOnGitHubActions() {
		// A missing .env is fine when the variables come from the environment.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Error("Error loading .env file", "error", err)
			return nil, nil, err
		}
	}

	baseConfigFile, err := os.Open("config.base.yaml")
	if err != nil {
		log.Error(fmt.Sprintf("Error opening base config file: %v", err))
		return nil, nil, err
	}
	defer baseConfigFile.Close()

	env := os.Getenv("APP_ENV")
	var envConfigFile *os.File
	envConfigFilename := fmt.Sprintf("config.%s.yaml", env)
	if _, err := os.Stat(envConfigFilename); err == nil {
		envConfigFile, err = os.Open(envConfigFilename)
		if err != nil {
			log.Error(fmt.Sprintf("Error opening environment config file: %v", err))
			return nil, nil, err
		}
		defer envConfigFile.Close()
	}

	var cfg *config.Config
	if envConfigFile != nil {
		cfg, err = config.NewConfig(baseConfigFile, envConfigFile, env)
	} else {
		cfg, err = config.NewConfig(baseConfigFile, nil, env)
	}
	if err != nil {
		log.Error(fmt.Sprintf("Error reading config: %v", err))
		return nil, nil, err
	}

	return cfg, log, nil
}
