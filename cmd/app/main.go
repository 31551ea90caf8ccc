package main

import (
	"fmt"
	"os"

	"startup-funding-api/app"
	"startup-funding-api/internal/config"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", os.Getenv(config.ConfigEnv), "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := app.Run(cfg, logger); err != nil {
		logger.Error("app stopped", "error", err)
		os.Exit(1)
	}
}
