// Presigned Upload URL Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"auto-credit-engine/internal/config"
	"auto-credit-engine/internal/handlers"
	s3service "auto-credit-engine/internal/services/s3"
	"auto-credit-engine/internal/utils"
)

func main() {
	defer utils.Sync()

	cfg, err := config.Load()
	if err != nil {
		utils.GetLogger().Fatal("Failed to load config", zap.Error(err))
	}
	_ = utils.InitLogger(cfg.LogLevel)

	svc, err := s3service.NewService(context.Background(), cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		utils.GetLogger().Fatal("Failed to create S3 service", zap.Error(err))
	}

	lambda.Start(handlers.NewPresignedURLHandler(svc).Handle)
}
