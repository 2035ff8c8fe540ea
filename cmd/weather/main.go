package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-lookup/internal/cli"
	"github.com/i474232898/weather-lookup/internal/logger"
)

func main() {
	// .env is optional; values already in the environment win.
	dotenvErr := godotenv.Load()

	logger.InitLogger()
	if dotenvErr != nil {
		logger.GetLogger().Debugw("No .env file loaded", "error", dotenvErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := cli.Execute(ctx, cli.NewApp(), os.Args[1:])

	stop()
	_ = logger.Close()
	os.Exit(code)
}
