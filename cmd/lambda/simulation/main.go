// Installment Simulation Lambda entry point
package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"auto-credit-engine/internal/config"
	"auto-credit-engine/internal/handlers"
	"auto-credit-engine/internal/services/credit"
	"auto-credit-engine/internal/utils"
)

func main() {
	defer utils.Sync()

	// Simulation is pure math; it needs the policy but no database.
	cfg, err := config.Load()
	if err != nil {
		utils.GetLogger().Fatal("Failed to load config", zap.Error(err))
	}
	_ = utils.InitLogger(cfg.LogLevel)
	engine, err := credit.NewEngine(credit.PolicyFromConfig(cfg))
	if err != nil {
		utils.GetLogger().Fatal("Invalid credit policy", zap.Error(err))
	}

	lambda.Start(handlers.NewSimulationHandler(engine).Handle)
}
