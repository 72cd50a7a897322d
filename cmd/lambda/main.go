package main

import (
	"context"
	"os"

	"livestream-controller/internal/app"
	"livestream-controller/internal/platform/config"
	"livestream-controller/internal/platform/logger"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	_ = config.Load()

	log := logger.New(config.GetEnv("LOG_LEVEL", "info"), config.GetEnv("LOG_FORMAT", "json"))

	// Built once per execution environment so the credential and client
	// memoization carries across warm invocations.
	a, err := app.New(context.Background(), app.ConfigFromEnv(), log, nil)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}

	lambda.Start(a.Handler.HandleLambdaEvent)
}
