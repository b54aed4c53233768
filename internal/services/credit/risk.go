package credit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"auto-credit-engine/internal/models"
)

// RiskScoringEngine scores independent risk factors and aggregates them. It
// holds no state between calls.
type RiskScoringEngine struct {
	policy Policy
}

// NewRiskScoringEngine creates an engine bound to policy.
func NewRiskScoringEngine(policy Policy) *RiskScoringEngine {
	return &RiskScoringEngine{policy: policy.Clone()}
}

// Assess scores every factor for the application and finalizes them.
func (e *RiskScoringEngine) Assess(app models.CreditApplication, score models.CreditScore) (models.RiskAssessment, error) {
	factors, err := e.Factors(app, score)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	return e.Finalize(factors), nil
}

// Factors evaluates each rule in a fixed order.
func (e *RiskScoringEngine) Factors(app models.CreditApplication, score models.CreditScore) ([]models.RiskFactor, error) {
	if err := app.Validate(); err != nil {
		return nil, err
	}
	if err := score.Validate(); err != nil {
		return nil, err
	}

	capacity, err := e.PaymentCapacityFactor(app)
	if err != nil {
		return nil, err
	}
	vehicle, err := e.VehicleFactor(app)
	if err != nil {
		return nil, err
	}
	dti, err := e.DebtToIncomeFactor(app.Customer())
	if err != nil {
		return nil, err
	}

	return []models.RiskFactor{
		e.CreditScoreFactor(score),
		capacity,
		vehicle,
		dti,
		e.EmploymentStabilityFactor(app.Customer()),
		e.CreditHistoryFactor(app.Customer()),
	}, nil
}

// CreditScoreFactor grades the bureau score.
func (e *RiskScoringEngine) CreditScoreFactor(score models.CreditScore) models.RiskFactor {
	grade := e.policy.Risk.CreditScoreFloor
	for _, band := range e.policy.Risk.CreditScoreBands {
		if int(score) >= band.MinScore {
			grade = band.Grade
			break
		}
	}
	return models.RiskFactor{
		Category: models.RiskCategoryCreditScore,
		Level:    grade.Level,
		Score:    grade.Score,
		Detail:   fmt.Sprintf("bureau score %d", score),
	}
}

// PaymentCapacityFactor estimates the installment of the requested amount at
// the reference rate and term and grades its share of income.
func (e *RiskScoringEngine) PaymentCapacityFactor(app models.CreditApplication) (models.RiskFactor, error) {
	installment, err := CalculateMonthlyInstallment(app.RequestedAmount(),
		e.policy.Risk.PaymentCapacityRate, e.policy.Risk.PaymentCapacityTerm)
	if err != nil {
		return models.RiskFactor{}, err
	}
	ratio, err := models.Ratio(installment, app.Customer().MonthlyIncome(), "monthly_income")
	if err != nil {
		return models.RiskFactor{}, err
	}

	grade := e.policy.Risk.PaymentCapacityBands.Lookup(ratio)
	return models.RiskFactor{
		Category: models.RiskCategoryPaymentCapacity,
		Level:    grade.Level,
		Score:    grade.Score,
		Detail:   fmt.Sprintf("estimated installment %s is %s of monthly income", installment.StringFixed(2), ratio.StringFixed(4)),
	}, nil
}

// VehicleFactor starts from a base score and adjusts it by age, mileage and
// loan-to-value brackets. The level follows the final score.
func (e *RiskScoringEngine) VehicleFactor(app models.CreditApplication) (models.RiskFactor, error) {
	rp := e.policy.Risk
	v := app.Vehicle()

	ltv, err := v.LoanToValue(app.RequestedAmount())
	if err != nil {
		return models.RiskFactor{}, err
	}
	age := v.AgeIn(e.policy.currentYear())

	score := rp.VehicleBaseScore +
		rp.VehicleAgeSteps.Lookup(age) +
		rp.VehicleMileageSteps.Lookup(v.Kilometers()) +
		rp.VehicleLTVSteps.Lookup(ltv)
	score = clampScore(score)

	level := models.RiskLevelHigh
	switch {
	case score >= rp.VehicleLowAt:
		level = models.RiskLevelLow
	case score >= rp.VehicleMediumAt:
		level = models.RiskLevelMedium
	}

	return models.RiskFactor{
		Category: models.RiskCategoryVehicle,
		Level:    level,
		Score:    score,
		Detail:   fmt.Sprintf("%d years old, %d km, loan-to-value %s", age, v.Kilometers(), ltv.StringFixed(4)),
	}, nil
}

// DebtToIncomeFactor grades current debts over income.
func (e *RiskScoringEngine) DebtToIncomeFactor(c models.Customer) (models.RiskFactor, error) {
	ratio, err := c.DebtToIncomeRatio()
	if err != nil {
		return models.RiskFactor{}, err
	}
	grade := e.policy.Risk.DebtToIncomeBands.Lookup(ratio)
	return models.RiskFactor{
		Category: models.RiskCategoryDebtToIncome,
		Level:    grade.Level,
		Score:    grade.Score,
		Detail:   fmt.Sprintf("debt-to-income %s", ratio.StringFixed(4)),
	}, nil
}

// EmploymentStabilityFactor is not evaluated yet: it needs an employment
// verification source. It always yields the pending grade.
func (e *RiskScoringEngine) EmploymentStabilityFactor(c models.Customer) models.RiskFactor {
	return e.pendingFactor(models.RiskCategoryEmploymentStability,
		fmt.Sprintf("not yet evaluated: awaiting employment verification (%d months declared)", c.WorkExperienceMonths()))
}

// CreditHistoryFactor is not evaluated yet: it needs the bureau payment
// history feed. It always yields the pending grade.
func (e *RiskScoringEngine) CreditHistoryFactor(_ models.Customer) models.RiskFactor {
	return e.pendingFactor(models.RiskCategoryCreditHistory,
		"not yet evaluated: awaiting bureau payment history")
}

func (e *RiskScoringEngine) pendingFactor(category models.RiskCategory, detail string) models.RiskFactor {
	grade := e.policy.Risk.PendingGrade
	return models.RiskFactor{
		Category:     category,
		Level:        grade.Level,
		Score:        grade.Score,
		Detail:       detail,
		NotEvaluated: true,
	}
}

// Finalize aggregates factors under the engine's policy.
func (e *RiskScoringEngine) Finalize(factors []models.RiskFactor) models.RiskAssessment {
	return Finalize(factors, e.policy.Risk)
}

// Finalize turns a list of factors into an assessment. It copies factors, so
// later changes to the caller's slice do not leak into the result, and calling
// it again with more factors is a plain re-aggregation.
//
//	score = mean(factor scores), 2 decimals half-up
//	level = LOW at >= LowRiskAt, MEDIUM at >= MediumRiskAt, else HIGH
//
// HighFactorOverride or more HIGH factors force HIGH regardless of the mean.
// No factors yields score 0, HIGH, not approved.
func Finalize(factors []models.RiskFactor, rp RiskPolicy) models.RiskAssessment {
	if len(factors) == 0 {
		return models.RiskAssessment{
			Factors:      []models.RiskFactor{},
			OverallScore: decimal.Zero,
			Level:        models.RiskLevelHigh,
			Approved:     false,
		}
	}

	owned := make([]models.RiskFactor, len(factors))
	copy(owned, factors)

	sum := decimal.Zero
	highs := 0
	for _, f := range owned {
		sum = sum.Add(decimal.NewFromInt(int64(f.Score)))
		if f.Level == models.RiskLevelHigh {
			highs++
		}
	}
	mean := sum.DivRound(decimal.NewFromInt(int64(len(owned))), models.MoneyScale)

	level := models.RiskLevelHigh
	switch {
	case mean.GreaterThanOrEqual(rp.LowRiskAt):
		level = models.RiskLevelLow
	case mean.GreaterThanOrEqual(rp.MediumRiskAt):
		level = models.RiskLevelMedium
	}

	if rp.HighFactorOverride > 0 && highs >= rp.HighFactorOverride {
		level = models.RiskLevelHigh
	}

	return models.RiskAssessment{
		Factors:      owned,
		OverallScore: mean,
		Level:        level,
		Approved:     level != models.RiskLevelHigh,
	}
}

// RecommendedInterestRate derives a rate straight from an assessment: the
// recommended-rate base table for score plus the adjustment for the overall
// level, clamped and rounded to four decimals.
func (e *RiskScoringEngine) RecommendedInterestRate(assessment models.RiskAssessment, score models.CreditScore) (decimal.Decimal, error) {
	if err := score.Validate(); err != nil {
		return decimal.Zero, err
	}
	if !assessment.Level.IsValid() {
		return decimal.Zero, models.NewValidationError("risk_level", models.ErrInvalidRiskLevel, string(assessment.Level))
	}

	rp := e.policy.RecommendedRate
	rate := rp.BaseRates.Lookup(score).Add(rp.LevelAdjustments[assessment.Level])
	return models.RoundRate(models.Clamp(rate, rp.MinRate, rp.MaxRate)), nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
