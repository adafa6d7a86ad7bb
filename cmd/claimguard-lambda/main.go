// Command claimguard-lambda serves the prediction handler behind API Gateway.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/viper"

	"github.com/Veraticus/claimguard/internal/common"
	"github.com/Veraticus/claimguard/internal/config"
	"github.com/Veraticus/claimguard/internal/serverless"
)

func main() {
	v := viper.New()
	config.SetDefaults(v)
	v.SetDefault("logging.format", "json")
	config.BindEnv(v)

	cfg, err := config.Load(v)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	level, err := common.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	logger, err := common.NewLogger(os.Stdout, level, cfg.Logging.Format)
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	handler, sink, err := serverless.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to build handler", "error", err)
		os.Exit(1)
	}

	lambda.StartWithOptions(handler.Handle, lambda.WithEnableSIGTERM(func() {
		if err := sink.Close(); err != nil {
			logger.Warn("Failed to close notification sink", "error", err)
		}
	}))
}
