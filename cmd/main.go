package main

import (
	"cmp"
	"context"
	"errors"
	"os"

	"github.com/acervomestre/acervo/internal/shared"
)

// envConfig names an alternate config file.
const envConfig = "ACERVO_CONFIG"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	path := cmp.Or(os.Getenv(envConfig), "config.toml")
	if _, err := os.Stat(path); err == nil {
		if loadedConfig, err := shared.LoadConfig(path); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		}
	}
	config.ApplyEnv()
	shared.SetLogLevel(logger, shared.ParseLevel(config.Log.Level))

	if err := config.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	runner := NewRunner(RunnerOpts{Config: config, Logger: logger})
	defer runner.Close()

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrCancelled) {
			logger.Warn(shared.UserMessage(err))
			return
		}
		logger.Error(shared.UserMessage(err), "error", err)
		runner.Close()
		os.Exit(1)
	}
}
