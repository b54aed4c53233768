// Credit Decision Lambda entry point
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

	deps, err := handlers.LoadDependencies(context.Background(), handlers.Options{RequireDatabase: true})
	if err != nil {
		utils.GetLogger().Fatal("Failed to create handler", zap.Error(err))
	}
	defer deps.Close()

	handler := handlers.NewDecisionHandler(deps.Service, deps.DecisionLookup())
	lambda.Start(handler.Handle)
}
