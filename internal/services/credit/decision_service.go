package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"auto-credit-engine/internal/models"
	"auto-credit-engine/internal/services/metrics"
)

// DecisionStore persists finalized decisions.
type DecisionStore interface {
	Save(ctx context.Context, decision *models.CreditDecision) error
	BulkSave(ctx context.Context, decisions []*models.CreditDecision) (*models.BulkInsertResult, error)
}

// BatchItem is one application in a batch run.
type BatchItem struct {
	Line        int
	Application models.CreditApplication
	CreditScore models.CreditScore
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	BatchID   string                   `json:"batch_id"`
	Decisions []*models.CreditDecision `json:"-"`
	Approved  int                      `json:"approved"`
	Rejected  int                      `json:"rejected"`
	Invalid   int                      `json:"invalid"`
	Persisted int                      `json:"persisted"`
	Errors    []string                 `json:"errors,omitempty"`
}

// DecisionService wraps the engine with logging, metrics and persistence.
type DecisionService struct {
	engine  *Engine
	store   DecisionStore
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewDecisionService creates a service. store and m may be nil.
func NewDecisionService(engine *Engine, store DecisionStore, m *metrics.Metrics, logger *zap.Logger) *DecisionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DecisionService{
		engine:  engine,
		store:   store,
		metrics: m,
		logger:  logger,
	}
}

// Engine returns the wrapped engine.
func (s *DecisionService) Engine() *Engine { return s.engine }

// Decide evaluates one application and persists the decision when a store is
// configured.
func (s *DecisionService) Decide(ctx context.Context, app models.CreditApplication, score models.CreditScore) (*models.CreditDecision, error) {
	decision, err := s.evaluate(app, score, "")
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Save(ctx, decision); err != nil {
			s.logger.Error("Failed to save decision",
				zap.String("decision_id", decision.ID),
				zap.Error(err))
			return nil, fmt.Errorf("failed to save decision: %w", err)
		}
	}

	return decision, nil
}

// DecideBatch evaluates every item and bulk-saves the decisions. Invalid items
// are counted and skipped; they never abort the batch.
func (s *DecisionService) DecideBatch(ctx context.Context, batchID string, items []BatchItem) (*BatchResult, error) {
	result := &BatchResult{BatchID: batchID}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		decision, err := s.evaluate(item.Application, item.CreditScore, batchID)
		if err != nil {
			result.Invalid++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", item.Line, err))
			continue
		}

		if decision.IsApproved() {
			result.Approved++
		} else {
			result.Rejected++
		}
		result.Decisions = append(result.Decisions, decision)
	}

	s.metrics.AddBatchRows("decided", len(result.Decisions))
	s.metrics.AddBatchRows("invalid", result.Invalid)

	if s.store != nil && len(result.Decisions) > 0 {
		saved, err := s.store.BulkSave(ctx, result.Decisions)
		if err != nil {
			s.logger.Error("Failed to save batch decisions",
				zap.String("batch_id", batchID),
				zap.Error(err))
			return result, fmt.Errorf("failed to save batch decisions: %w", err)
		}
		result.Persisted = saved.InsertedCount
		result.Errors = append(result.Errors, saved.Errors...)
		s.metrics.AddBatchRows("failed", saved.FailedCount)
	}

	s.logger.Info("Batch decided",
		zap.String("batch_id", batchID),
		zap.Int("approved", result.Approved),
		zap.Int("rejected", result.Rejected),
		zap.Int("invalid", result.Invalid),
		zap.Int("persisted", result.Persisted))

	return result, nil
}

func (s *DecisionService) evaluate(app models.CreditApplication, score models.CreditScore, batchID string) (*models.CreditDecision, error) {
	start := time.Now()
	decision, err := s.engine.Decide(app, score)
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			s.metrics.IncrementInvalidInput(verr.Field)
		}
		s.logger.Warn("Application rejected as invalid input",
			zap.String("application_id", app.ID()),
			zap.Error(err))
		return nil, err
	}

	decision.BatchID = batchID
	s.metrics.IncrementOutcome(string(decision.Status), string(decision.RiskLevel()))

	s.logger.Info("Credit decision",
		zap.String("decision_id", decision.ID),
		zap.String("application_id", decision.ApplicationID),
		zap.String("status", string(decision.Status)),
		zap.String("risk_level", string(decision.RiskLevel())),
		zap.String("approved_amount", decision.ApprovedAmount.StringFixed(2)),
		zap.String("interest_rate", decision.InterestRate.String()),
		zap.Strings("reasons", decision.Reasons),
		zap.Duration("elapsed", time.Since(start)))

	return decision, nil
}
