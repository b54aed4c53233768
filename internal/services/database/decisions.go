package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"auto-credit-engine/internal/models"
)

const upsertDecision = `
	INSERT INTO credit_decisions (
		id, application_id, document_id, vehicle_vin, status, credit_score, risk_level,
		requested_amount, max_eligible_amount, approved_amount, interest_rate, recommended_rate,
		term_months, monthly_installment, total_interest,
		eligibility, assessment, reasons, batch_id, decided_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8::numeric, $9::numeric, $10::numeric, $11::numeric, $12::numeric,
		$13, $14::numeric, $15::numeric,
		$16, $17, $18, $19, $20, $21
	)
	ON CONFLICT (application_id) DO UPDATE SET
		id = EXCLUDED.id,
		status = EXCLUDED.status,
		credit_score = EXCLUDED.credit_score,
		risk_level = EXCLUDED.risk_level,
		requested_amount = EXCLUDED.requested_amount,
		max_eligible_amount = EXCLUDED.max_eligible_amount,
		approved_amount = EXCLUDED.approved_amount,
		interest_rate = EXCLUDED.interest_rate,
		recommended_rate = EXCLUDED.recommended_rate,
		term_months = EXCLUDED.term_months,
		monthly_installment = EXCLUDED.monthly_installment,
		total_interest = EXCLUDED.total_interest,
		eligibility = EXCLUDED.eligibility,
		assessment = EXCLUDED.assessment,
		reasons = EXCLUDED.reasons,
		batch_id = EXCLUDED.batch_id,
		decided_at = EXCLUDED.decided_at,
		updated_at = EXCLUDED.updated_at`

const selectDecision = `
	SELECT
		id::text, application_id, document_id, vehicle_vin, status, credit_score,
		requested_amount::text, max_eligible_amount::text, approved_amount::text,
		interest_rate::text, recommended_rate::text,
		term_months, monthly_installment::text, total_interest::text,
		eligibility, assessment, reasons, COALESCE(batch_id, ''), decided_at
	FROM credit_decisions`

// DecisionRepository handles credit decision database operations.
type DecisionRepository struct {
	db *DB
}

// NewDecisionRepository creates a new decision repository.
func NewDecisionRepository(db *DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Save upserts a decision keyed by application id.
func (r *DecisionRepository) Save(ctx context.Context, d *models.CreditDecision) error {
	if err := saveDecision(ctx, r.db.pool, d); err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

// BulkSave upserts decisions in one transaction. Rows that fail are counted
// and reported; a savepoint keeps the rest of the batch alive.
func (r *DecisionRepository) BulkSave(ctx context.Context, decisions []*models.CreditDecision) (*models.BulkInsertResult, error) {
	result := &models.BulkInsertResult{}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, d := range decisions {
			sp, err := tx.Begin(ctx)
			if err != nil {
				return fmt.Errorf("failed to create savepoint: %w", err)
			}

			if err := saveDecision(ctx, sp, d); err != nil {
				_ = sp.Rollback(ctx)
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("application %s: %v", d.ApplicationID, err))
				continue
			}

			if err := sp.Commit(ctx); err != nil {
				return fmt.Errorf("failed to release savepoint: %w", err)
			}
			result.InsertedCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetByID returns the decision with the given id, or nil when none exists.
func (r *DecisionRepository) GetByID(ctx context.Context, id string) (*models.CreditDecision, error) {
	row := r.db.pool.QueryRow(ctx, selectDecision+" WHERE id::text = $1", id)

	d, err := scanDecision(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}
	return d, nil
}

// GetByApplicationID returns the latest decision for an application, or nil.
func (r *DecisionRepository) GetByApplicationID(ctx context.Context, applicationID string) (*models.CreditDecision, error) {
	row := r.db.pool.QueryRow(ctx, selectDecision+" WHERE application_id = $1", applicationID)

	d, err := scanDecision(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}
	return d, nil
}

// ListByDocument returns a customer's decisions, newest first.
func (r *DecisionRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]*models.CreditDecision, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return r.list(ctx, selectDecision+" WHERE document_id = $1 ORDER BY decided_at DESC LIMIT $2", documentID, limit)
}

// ListByBatch returns every decision produced by a batch upload.
func (r *DecisionRepository) ListByBatch(ctx context.Context, batchID string) ([]*models.CreditDecision, error) {
	return r.list(ctx, selectDecision+" WHERE batch_id = $1 ORDER BY decided_at", batchID)
}

func (r *DecisionRepository) list(ctx context.Context, query string, args ...any) ([]*models.CreditDecision, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var results []*models.CreditDecision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decisions: %w", err)
	}

	return results, nil
}

func saveDecision(ctx context.Context, ex execer, d *models.CreditDecision) error {
	eligibility, err := json.Marshal(d.Eligibility)
	if err != nil {
		return err
	}

	var assessment []byte
	if d.Assessment != nil {
		if assessment, err = json.Marshal(d.Assessment); err != nil {
			return err
		}
	}

	reasons := d.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return err
	}

	var riskLevel *string
	if lvl := d.RiskLevel(); lvl != "" {
		s := string(lvl)
		riskLevel = &s
	}

	var batchID *string
	if d.BatchID != "" {
		batchID = &d.BatchID
	}

	_, err = ex.Exec(ctx, upsertDecision,
		d.ID,
		d.ApplicationID,
		d.DocumentID,
		d.VehicleVIN,
		string(d.Status),
		d.CreditScore.Int(),
		riskLevel,
		d.RequestedAmount.String(),
		d.MaxEligibleAmount.String(),
		d.ApprovedAmount.String(),
		d.InterestRate.String(),
		d.RecommendedRate.String(),
		d.TermMonths,
		d.MonthlyInstallment.String(),
		d.TotalInterest.String(),
		eligibility,
		assessment,
		reasonsJSON,
		batchID,
		d.DecidedAt,
		time.Now().UTC(),
	)
	return err
}

func scanDecision(row pgx.Row) (*models.CreditDecision, error) {
	var d models.CreditDecision
	var status string
	var score int
	var requested, maxEligible, approved, rate, recRate, installment, interest string
	var eligibility, assessment, reasons []byte

	err := row.Scan(
		&d.ID, &d.ApplicationID, &d.DocumentID, &d.VehicleVIN, &status, &score,
		&requested, &maxEligible, &approved,
		&rate, &recRate,
		&d.TermMonths, &installment, &interest,
		&eligibility, &assessment, &reasons, &d.BatchID, &d.DecidedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Status = models.ApplicationStatus(status)
	d.CreditScore = models.CreditScore(score)

	amounts := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&d.RequestedAmount, requested},
		{&d.MaxEligibleAmount, maxEligible},
		{&d.ApprovedAmount, approved},
		{&d.InterestRate, rate},
		{&d.RecommendedRate, recRate},
		{&d.MonthlyInstallment, installment},
		{&d.TotalInterest, interest},
	}
	for _, a := range amounts {
		v, err := decimal.NewFromString(a.src)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric %q: %w", a.src, err)
		}
		*a.dst = v
	}

	if err := json.Unmarshal(eligibility, &d.Eligibility); err != nil {
		return nil, fmt.Errorf("invalid eligibility: %w", err)
	}
	if len(assessment) > 0 {
		var ra models.RiskAssessment
		if err := json.Unmarshal(assessment, &ra); err != nil {
			return nil, fmt.Errorf("invalid assessment: %w", err)
		}
		d.Assessment = &ra
	}
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &d.Reasons); err != nil {
			return nil, fmt.Errorf("invalid reasons: %w", err)
		}
	}

	return &d, nil
}
