package credit

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"auto-credit-engine/internal/models"
)

// Engine is the synchronous surface of the credit decision engine. Adapters
// (HTTP, Lambda, batch) call into it; it never performs I/O.
type Engine struct {
	policy      Policy
	eligibility *EligibilityEvaluator
	maxAmount   *MaxEligibleAmountCalculator
	risk        *RiskScoringEngine
	rates       *InterestRateCalculator
}

// NewEngine validates policy and wires every component to it.
func NewEngine(policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	policy = policy.Clone()
	return &Engine{
		policy:      policy,
		eligibility: NewEligibilityEvaluator(policy),
		maxAmount:   NewMaxEligibleAmountCalculator(policy),
		risk:        NewRiskScoringEngine(policy),
		rates:       NewInterestRateCalculator(policy),
	}, nil
}

// MustNewEngine is NewEngine for policies known to be valid.
func MustNewEngine(policy Policy) *Engine {
	e, err := NewEngine(policy)
	if err != nil {
		panic(err)
	}
	return e
}

// Policy returns the rule set the engine was built with.
func (e *Engine) Policy() Policy { return e.policy.Clone() }

// EvaluateEligibility reports whether the application passes every hard rule.
func (e *Engine) EvaluateEligibility(app models.CreditApplication) (bool, error) {
	return e.eligibility.IsEligible(app)
}

// EligibilityReport returns the outcome of each hard rule.
func (e *Engine) EligibilityReport(app models.CreditApplication) (models.EligibilityReport, error) {
	return e.eligibility.Evaluate(app)
}

// CalculateMaxEligibleAmount bounds the principal by capacity and LTV.
func (e *Engine) CalculateMaxEligibleAmount(c models.Customer, v models.Vehicle) (decimal.Decimal, error) {
	return e.maxAmount.Calculate(c, v)
}

// AssessRisk scores and aggregates every risk factor.
func (e *Engine) AssessRisk(app models.CreditApplication, score models.CreditScore) (models.RiskAssessment, error) {
	return e.risk.Assess(app, score)
}

// RecommendedRateFromRisk derives a rate from an assessment's overall level.
func (e *Engine) RecommendedRateFromRisk(assessment models.RiskAssessment, score models.CreditScore) (decimal.Decimal, error) {
	return e.risk.RecommendedInterestRate(assessment, score)
}

// CalculateInterestRate returns the quoted annual rate for the application.
func (e *Engine) CalculateInterestRate(app models.CreditApplication, score models.CreditScore) (decimal.Decimal, error) {
	return e.rates.CalculateInterestRate(app, score)
}

// QuoteInterestRate returns the quoted rate with its breakdown.
func (e *Engine) QuoteInterestRate(app models.CreditApplication, score models.CreditScore) (RateQuote, error) {
	return e.rates.Quote(app, score)
}

// CalculateMonthlyInstallment returns the fixed monthly payment.
func (e *Engine) CalculateMonthlyInstallment(amount, annualRate decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	return CalculateMonthlyInstallment(amount, annualRate, termMonths)
}

// ValidateTerm checks a repayment term against the policy range.
func (e *Engine) ValidateTerm(termMonths int) error {
	if termMonths <= 0 {
		return models.NewValidationError("term_months", models.ErrNonPositiveTerm, "")
	}
	if termMonths < e.policy.MinTermMonths || termMonths > e.policy.MaxTermMonths {
		return models.NewValidationError("term_months", models.ErrInvalidTerm,
			fmt.Sprintf("%d not in [%d, %d]", termMonths, e.policy.MinTermMonths, e.policy.MaxTermMonths))
	}
	return nil
}

// Decide runs the full pipeline: eligibility gate, risk assessment, quoted and
// recommended rates, approved amount and the final installment. Business-rule
// failures produce a REJECTED decision, not an error.
func (e *Engine) Decide(app models.CreditApplication, score models.CreditScore) (*models.CreditDecision, error) {
	if err := app.Validate(); err != nil {
		return nil, err
	}
	if err := score.Validate(); err != nil {
		return nil, err
	}
	if err := e.ValidateTerm(app.TermMonths()); err != nil {
		return nil, err
	}

	decision := &models.CreditDecision{
		ID:                 uuid.NewString(),
		ApplicationID:      app.ID(),
		DocumentID:         app.Customer().DocumentID(),
		VehicleVIN:         app.Vehicle().VIN(),
		CreditScore:        score,
		RequestedAmount:    app.RequestedAmount(),
		TermMonths:         app.TermMonths(),
		ApprovedAmount:     decimal.Zero,
		InterestRate:       decimal.Zero,
		RecommendedRate:    decimal.Zero,
		MonthlyInstallment: decimal.Zero,
		TotalInterest:      decimal.Zero,
		DecidedAt:          e.policy.now().UTC(),
	}

	report, err := e.eligibility.Evaluate(app)
	if err != nil {
		return nil, err
	}
	decision.Eligibility = report

	maxEligible, err := e.maxAmount.Calculate(app.Customer(), app.Vehicle())
	if err != nil {
		return nil, err
	}
	decision.MaxEligibleAmount = maxEligible

	if !report.Eligible() {
		decision.Status = models.ApplicationStatusRejected
		for _, check := range report.FailedChecks() {
			decision.Reasons = append(decision.Reasons, "eligibility check failed: "+check)
		}
		return decision, nil
	}

	assessment, err := e.risk.Assess(app, score)
	if err != nil {
		return nil, err
	}
	decision.Assessment = &assessment

	quote, err := e.rates.Quote(app, score)
	if err != nil {
		return nil, err
	}
	decision.InterestRate = quote.Rate

	recommended, err := e.risk.RecommendedInterestRate(assessment, score)
	if err != nil {
		return nil, err
	}
	decision.RecommendedRate = recommended

	for _, category := range assessment.PendingFactors() {
		decision.Reasons = append(decision.Reasons, "risk factor not yet evaluated: "+string(category))
	}

	if !assessment.Approved {
		decision.Status = models.ApplicationStatusRejected
		reason := "overall risk " + string(assessment.Level) + " at score " + assessment.OverallScore.StringFixed(2)
		if highs := assessment.HighFactorCount(); highs >= e.policy.Risk.HighFactorOverride && e.policy.Risk.HighFactorOverride > 0 {
			reason += " (" + strconv.Itoa(highs) + " HIGH factors)"
		}
		decision.Reasons = append([]string{reason}, decision.Reasons...)
		return decision, nil
	}

	approved := models.MinDecimal(app.RequestedAmount(), maxEligible)
	if approved.LessThan(app.RequestedAmount()) {
		decision.Reasons = append(decision.Reasons, "approved amount capped at maximum eligible amount "+maxEligible.StringFixed(2))
	}

	installment, err := Amortize(approved, quote.Rate, app.TermMonths())
	if err != nil {
		return nil, err
	}

	decision.Status = models.ApplicationStatusApproved
	decision.ApprovedAmount = approved
	decision.MonthlyInstallment = installment.Payment
	decision.TotalInterest = installment.TotalInterest
	return decision, nil
}
