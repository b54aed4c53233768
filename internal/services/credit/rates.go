package credit

import (
	"github.com/shopspring/decimal"

	"auto-credit-engine/internal/models"
)

// Rate adjustment names reported in RateQuote.
const (
	AdjustmentWorkExperience = "work_experience"
	AdjustmentHighIncome     = "high_income"
	AdjustmentNewVehicle     = "new_vehicle"
	AdjustmentUsedVehicle    = "used_vehicle"
	AdjustmentHighFinancing  = "high_financing_ratio"
)

// RateAdjustment is one additive term applied to the base rate.
type RateAdjustment struct {
	Name  string          `json:"name"`
	Delta decimal.Decimal `json:"delta"`
}

// RateQuote explains how a quoted rate was built.
type RateQuote struct {
	BaseRate       decimal.Decimal  `json:"base_rate"`
	Adjustments    []RateAdjustment `json:"adjustments"`
	UnclampedRate  decimal.Decimal  `json:"unclamped_rate"`
	Rate           decimal.Decimal  `json:"rate"`
	FinancingRatio decimal.Decimal  `json:"financing_ratio"`
}

// InterestRateCalculator derives the quoted annual rate from the credit score
// and the application. Its base table differs from the recommended-rate table
// used by RiskScoringEngine; both are kept as separate policies.
type InterestRateCalculator struct {
	policy Policy
}

// NewInterestRateCalculator creates a calculator bound to policy.
func NewInterestRateCalculator(policy Policy) *InterestRateCalculator {
	return &InterestRateCalculator{policy: policy.Clone()}
}

// BaseRate looks the score up in the base table.
func (c *InterestRateCalculator) BaseRate(score models.CreditScore) (decimal.Decimal, error) {
	if err := score.Validate(); err != nil {
		return decimal.Zero, err
	}
	return c.policy.InterestRate.BaseRates.Lookup(score), nil
}

// IsNewVehicle reports whether the vehicle counts as new: current model year
// and barely driven.
func (c *InterestRateCalculator) IsNewVehicle(v models.Vehicle) bool {
	return v.AgeIn(c.policy.currentYear()) == 0 &&
		v.Kilometers() <= c.policy.InterestRate.NewVehicleMaxKilometers
}

// Quote applies every applicable adjustment to the base rate. Adjustments are
// plain sums, so their order does not matter.
func (c *InterestRateCalculator) Quote(app models.CreditApplication, score models.CreditScore) (RateQuote, error) {
	if err := app.Validate(); err != nil {
		return RateQuote{}, err
	}
	base, err := c.BaseRate(score)
	if err != nil {
		return RateQuote{}, err
	}

	ip := c.policy.InterestRate
	customer := app.Customer()
	vehicle := app.Vehicle()

	financing, err := vehicle.LoanToValue(app.RequestedAmount())
	if err != nil {
		return RateQuote{}, err
	}

	var adjustments []RateAdjustment
	if customer.WorkExperienceMonths() > ip.ExperienceMonthsOver {
		adjustments = append(adjustments, RateAdjustment{AdjustmentWorkExperience, ip.ExperienceAdjustment})
	}
	if customer.MonthlyIncome().GreaterThan(ip.HighIncomeOver) {
		adjustments = append(adjustments, RateAdjustment{AdjustmentHighIncome, ip.HighIncomeAdjustment})
	}
	if c.IsNewVehicle(vehicle) {
		adjustments = append(adjustments, RateAdjustment{AdjustmentNewVehicle, ip.NewVehicleAdjustment})
	} else {
		adjustments = append(adjustments, RateAdjustment{AdjustmentUsedVehicle, ip.UsedVehicleAdjustment})
	}
	if financing.GreaterThan(ip.FinancingRatioOver) {
		adjustments = append(adjustments, RateAdjustment{AdjustmentHighFinancing, ip.HighFinancingAdjustment})
	}

	rate := base
	for _, adj := range adjustments {
		rate = rate.Add(adj.Delta)
	}

	return RateQuote{
		BaseRate:       base,
		Adjustments:    adjustments,
		UnclampedRate:  rate,
		Rate:           models.RoundRate(models.Clamp(rate, ip.MinRate, ip.MaxRate)),
		FinancingRatio: financing,
	}, nil
}

// CalculateInterestRate returns the quoted annual rate for the application.
func (c *InterestRateCalculator) CalculateInterestRate(app models.CreditApplication, score models.CreditScore) (decimal.Decimal, error) {
	quote, err := c.Quote(app, score)
	if err != nil {
		return decimal.Zero, err
	}
	return quote.Rate, nil
}

// CalculateMonthlyInstallment is the amortization formula exposed alongside
// the rate it is usually paired with.
func (c *InterestRateCalculator) CalculateMonthlyInstallment(amount, annualRate decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	return CalculateMonthlyInstallment(amount, annualRate, termMonths)
}
