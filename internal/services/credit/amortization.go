package credit

import (
	"time"

	"github.com/shopspring/decimal"

	"auto-credit-engine/internal/models"
)

// Installment is the fixed monthly payment for a loan and what it costs.
type Installment struct {
	Principal     decimal.Decimal `json:"principal"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	TermMonths    int             `json:"term_months"`
	Payment       decimal.Decimal `json:"monthly_payment"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

// ScheduleEntry is one period of an amortization schedule.
type ScheduleEntry struct {
	Period           int             `json:"period"`
	DueDate          time.Time       `json:"due_date"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// MonthlyRate converts an annual rate to a monthly rate at the intermediate
// scale.
func MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.DivRound(models.Twelve, models.IntermediateScale)
}

// compound returns (1+r)^n exactly.
func compound(monthlyRate decimal.Decimal, n int) decimal.Decimal {
	base := decimal.NewFromInt(1).Add(monthlyRate)
	result := decimal.NewFromInt(1)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

func validateLoanTerms(amount, annualRate decimal.Decimal, termMonths int) error {
	if !amount.IsPositive() {
		return models.NewValidationError("amount", models.ErrNonPositiveAmount, amount.String())
	}
	if termMonths <= 0 {
		return models.NewValidationError("term_months", models.ErrNonPositiveTerm, "")
	}
	if annualRate.IsNegative() {
		return models.NewValidationError("annual_rate", models.ErrNegativeRate, annualRate.String())
	}
	return nil
}

// CalculateMonthlyInstallment returns the fixed annuity payment:
//
//	r       = annualRate / 12                 (6 decimals, half-up)
//	payment = P * r * (1+r)^n / ((1+r)^n - 1) (2 decimals, half-up)
//
// A zero rate falls back to straight-line division P / n. For any positive
// annual rate the payment is at least P / n rounded up to the cent, so the
// payments always cover the principal even when r rounds to zero.
func CalculateMonthlyInstallment(amount, annualRate decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if err := validateLoanTerms(amount, annualRate, termMonths); err != nil {
		return decimal.Zero, err
	}

	n := decimal.NewFromInt(int64(termMonths))
	payment := amount.DivRound(n, models.MoneyScale)

	r := MonthlyRate(annualRate)
	if !r.IsZero() {
		factor := compound(r, termMonths)
		numerator := amount.Mul(r).Mul(factor)
		denominator := factor.Sub(decimal.NewFromInt(1))
		payment = numerator.DivRound(denominator, models.MoneyScale)
	}

	if annualRate.IsPositive() {
		if floor := straightLineCeil(amount, n); payment.LessThan(floor) {
			payment = floor
		}
	}
	return payment, nil
}

// straightLineCeil is P / n rounded up to the cent.
func straightLineCeil(amount, n decimal.Decimal) decimal.Decimal {
	return amount.DivRound(n, 16).RoundCeil(models.MoneyScale)
}

// Amortize computes the installment together with total paid and total
// interest over the whole term.
func Amortize(amount, annualRate decimal.Decimal, termMonths int) (Installment, error) {
	payment, err := CalculateMonthlyInstallment(amount, annualRate, termMonths)
	if err != nil {
		return Installment{}, err
	}
	totalPaid := payment.Mul(decimal.NewFromInt(int64(termMonths)))
	interest := totalPaid.Sub(amount)
	if interest.IsNegative() {
		// Zero-rate straight-line rounding can undershoot by a few cents.
		interest = decimal.Zero
	}
	return Installment{
		Principal:     amount,
		AnnualRate:    annualRate,
		TermMonths:    termMonths,
		Payment:       payment,
		TotalPaid:     totalPaid,
		TotalInterest: models.RoundMoney(interest),
	}, nil
}

// PrincipalForPayment inverts the annuity formula: the largest principal a
// given monthly payment services at annualRate over termMonths.
//
//	P = payment * ((1+r)^n - 1) / (r * (1+r)^n)
func PrincipalForPayment(payment, annualRate decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if err := validateLoanTerms(payment, annualRate, termMonths); err != nil {
		return decimal.Zero, err
	}

	r := MonthlyRate(annualRate)
	n := decimal.NewFromInt(int64(termMonths))
	if r.IsZero() {
		return models.RoundMoney(payment.Mul(n)), nil
	}

	factor := compound(r, termMonths)
	numerator := payment.Mul(factor.Sub(decimal.NewFromInt(1)))
	denominator := r.Mul(factor)
	return numerator.DivRound(denominator, models.MoneyScale), nil
}

// GenerateSchedule builds a period-by-period schedule whose first payment is
// due one month after start. The last period absorbs rounding so the balance
// reaches exactly zero.
func GenerateSchedule(amount, annualRate decimal.Decimal, termMonths int, start time.Time) ([]ScheduleEntry, error) {
	payment, err := CalculateMonthlyInstallment(amount, annualRate, termMonths)
	if err != nil {
		return nil, err
	}

	r := MonthlyRate(annualRate)
	schedule := make([]ScheduleEntry, 0, termMonths)
	remaining := amount

	for period := 1; period <= termMonths; period++ {
		interest := models.RoundMoney(remaining.Mul(r))
		principal := payment.Sub(interest)
		total := payment

		if period == termMonths || principal.GreaterThan(remaining) {
			principal = remaining
			total = principal.Add(interest)
		}

		remaining = remaining.Sub(principal)

		schedule = append(schedule, ScheduleEntry{
			Period:           period,
			DueDate:          start.AddDate(0, period, 0),
			Payment:          total,
			Principal:        principal,
			Interest:         interest,
			RemainingBalance: remaining,
		})

		if remaining.IsZero() {
			break
		}
	}

	return schedule, nil
}
