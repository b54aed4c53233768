package credit

import (
	"github.com/shopspring/decimal"

	"auto-credit-engine/internal/models"
)

// EligibilityEvaluator applies the hard pass/fail rules that gate scoring.
// A failing rule is a normal false result; only malformed input is an error.
type EligibilityEvaluator struct {
	policy    Policy
	maxAmount *MaxEligibleAmountCalculator
}

// NewEligibilityEvaluator creates an evaluator bound to policy.
func NewEligibilityEvaluator(policy Policy) *EligibilityEvaluator {
	return &EligibilityEvaluator{
		policy:    policy.Clone(),
		maxAmount: NewMaxEligibleAmountCalculator(policy),
	}
}

// Evaluate runs every predicate and reports each outcome. The predicates are
// side-effect free, so their order carries no meaning.
func (e *EligibilityEvaluator) Evaluate(app models.CreditApplication) (models.EligibilityReport, error) {
	if err := app.Validate(); err != nil {
		return models.EligibilityReport{}, err
	}

	customer := app.Customer()
	ratio, err := customer.DebtToIncomeRatio()
	if err != nil {
		return models.EligibilityReport{}, err
	}

	return models.EligibilityReport{
		IncomeFloorMet:         e.MeetsIncomeFloor(customer),
		AcceptableHistory:      e.HasAcceptableHistory(customer),
		VehicleQualifies:       e.VehicleQualifies(app.Vehicle()),
		DebtToIncomeAcceptable: ratio.LessThanOrEqual(e.policy.Eligibility.MaxDebtToIncome),
		DebtToIncomeRatio:      ratio,
	}, nil
}

// IsEligible requires every predicate to pass.
func (e *EligibilityEvaluator) IsEligible(app models.CreditApplication) (bool, error) {
	report, err := e.Evaluate(app)
	if err != nil {
		return false, err
	}
	return report.Eligible(), nil
}

// MeetsIncomeFloor checks monthly income against the configured minimum.
func (e *EligibilityEvaluator) MeetsIncomeFloor(c models.Customer) bool {
	return c.MonthlyIncome().GreaterThanOrEqual(e.policy.Eligibility.MinMonthlyIncome)
}

// HasAcceptableHistory delegates to the customer-level debt-ratio flag. This
// is not a bureau query; a real history check replaces it once the bureau
// integration exposes payment history.
func (e *EligibilityEvaluator) HasAcceptableHistory(c models.Customer) bool {
	return c.HasAcceptableDebtRatio(e.policy.Eligibility.MaxDebtToIncome)
}

// VehicleQualifies checks model year, odometer and brand.
func (e *EligibilityEvaluator) VehicleQualifies(v models.Vehicle) bool {
	minYear := e.policy.currentYear() - e.policy.Eligibility.MaxVehicleAgeYears
	return v.Year() >= minYear &&
		v.Kilometers() <= e.policy.Eligibility.MaxVehicleKilometers &&
		e.policy.brandAuthorized(v.Brand())
}

// DebtToIncomeAcceptable compares debts over income, rounded to four decimals
// half-up, with the policy ceiling.
func (e *EligibilityEvaluator) DebtToIncomeAcceptable(c models.Customer) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}
	ratio, err := c.DebtToIncomeRatio()
	if err != nil {
		return false, err
	}
	return ratio.LessThanOrEqual(e.policy.Eligibility.MaxDebtToIncome), nil
}

// CalculateMaxEligibleAmount bounds the principal the customer can service.
func (e *EligibilityEvaluator) CalculateMaxEligibleAmount(c models.Customer, v models.Vehicle) (decimal.Decimal, error) {
	return e.maxAmount.Calculate(c, v)
}
