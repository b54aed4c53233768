// Batch CSV Processor Lambda entry point, triggered by S3 uploads
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"auto-credit-engine/internal/handlers"
	"auto-credit-engine/internal/utils"
)

func main() {
	defer utils.Sync()

	deps, err := handlers.LoadDependencies(context.Background(), handlers.Options{
		RequireDatabase: true,
		WithS3:          true,
	})
	if err != nil {
		utils.GetLogger().Fatal("Failed to create handler", zap.Error(err))
	}
	defer deps.Close()

	handler := handlers.NewCSVProcessorHandler(deps.S3, deps.Service)
	lambda.Start(handler.Handle)
}
