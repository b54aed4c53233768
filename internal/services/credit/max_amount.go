package credit

import (
	"github.com/shopspring/decimal"

	"auto-credit-engine/internal/models"
)

// MaxEligibleAmountCalculator bounds the loan principal by payment capacity
// and by loan-to-value. It is a policy approximation; the underwritten amount
// also depends on the risk-adjusted rate.
type MaxEligibleAmountCalculator struct {
	policy MaxAmountPolicy
}

// NewMaxEligibleAmountCalculator creates a calculator bound to policy.
func NewMaxEligibleAmountCalculator(policy Policy) *MaxEligibleAmountCalculator {
	return &MaxEligibleAmountCalculator{policy: policy.MaxAmount}
}

// Calculate returns min(capacity principal, LTV ceiling * vehicle value).
func (m *MaxEligibleAmountCalculator) Calculate(c models.Customer, v models.Vehicle) (decimal.Decimal, error) {
	if err := c.Validate(); err != nil {
		return decimal.Zero, err
	}
	if err := v.Validate(); err != nil {
		return decimal.Zero, err
	}

	byCapacity, err := m.CapacityPrincipal(c.MonthlyIncome())
	if err != nil {
		return decimal.Zero, err
	}
	return models.MinDecimal(byCapacity, m.LoanToValueCeiling(v)), nil
}

// MaxMonthlyPayment is the share of income that may go to the installment.
func (m *MaxEligibleAmountCalculator) MaxMonthlyPayment(income decimal.Decimal) decimal.Decimal {
	return models.RoundMoney(income.Mul(m.policy.MaxPaymentToIncome))
}

// CapacityPrincipal inverts the annuity formula at the reference rate and term.
func (m *MaxEligibleAmountCalculator) CapacityPrincipal(income decimal.Decimal) (decimal.Decimal, error) {
	if !income.IsPositive() {
		return decimal.Zero, models.NewValidationError("monthly_income", models.ErrNonPositiveIncome, income.String())
	}
	return PrincipalForPayment(m.MaxMonthlyPayment(income), m.policy.AnnualRate, m.policy.TermMonths)
}

// LoanToValueCeiling caps the loan at a share of the vehicle value. The
// result is truncated to cents so it never exceeds the exact ceiling.
func (m *MaxEligibleAmountCalculator) LoanToValueCeiling(v models.Vehicle) decimal.Decimal {
	return v.Value().Mul(m.policy.MaxLoanToValue).Truncate(models.MoneyScale)
}
