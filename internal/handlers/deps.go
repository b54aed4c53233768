package handlers

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"auto-credit-engine/internal/config"
	"auto-credit-engine/internal/services/credit"
	"auto-credit-engine/internal/services/database"
	"auto-credit-engine/internal/services/metrics"
	s3service "auto-credit-engine/internal/services/s3"
	"auto-credit-engine/internal/utils"
)

// Options selects the optional collaborators a process needs.
type Options struct {
	// RequireDatabase fails startup when the database is unreachable instead
	// of running without persistence.
	RequireDatabase bool
	// WithS3 creates the S3 service for the configured bucket.
	WithS3 bool
	// Registerer receives the decision metrics. Nil uses the default.
	Registerer prometheus.Registerer
}

// Dependencies holds everything the entry points wire into handlers.
type Dependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	Engine    *credit.Engine
	Metrics   *metrics.Metrics
	DB        *database.DB
	Decisions *database.DecisionRepository
	Service   *credit.DecisionService
	S3        *s3service.Service
}

// LoadDependencies loads config, initializes the global logger at the
// configured level and builds the engine stack.
func LoadDependencies(ctx context.Context, opts Options) (*Dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := utils.GetLogger()

	engine, err := credit.NewEngine(credit.PolicyFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("invalid credit policy: %w", err)
	}

	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Engine:  engine,
		Metrics: metrics.New(opts.Registerer),
	}

	db, err := database.New(ctx, cfg)
	switch {
	case err == nil:
		deps.DB = db
		deps.Decisions = database.NewDecisionRepository(db)
	case opts.RequireDatabase:
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	default:
		logger.Warn("Running without decision storage", zap.Error(err))
	}

	var store credit.DecisionStore
	if deps.Decisions != nil {
		store = deps.Decisions
	}
	deps.Service = credit.NewDecisionService(engine, store, deps.Metrics, logger)

	if opts.WithS3 {
		svc, err := s3service.NewService(ctx, cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.S3 = svc
	}

	return deps, nil
}

// HealthChecker returns the database as a HealthChecker, or nil.
func (d *Dependencies) HealthChecker() HealthChecker {
	if d.DB == nil {
		return nil
	}
	return d.DB
}

// DecisionLookup returns the repository as a DecisionLookup, or nil.
func (d *Dependencies) DecisionLookup() DecisionLookup {
	if d.Decisions == nil {
		return nil
	}
	return d.Decisions
}

// Close releases the database pool.
func (d *Dependencies) Close() {
	d.DB.Close()
}
