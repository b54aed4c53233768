// Package credit implements the credit decision engine: eligibility rules,
// risk scoring, interest-rate derivation and amortization math.
//
// Every operation in this package is a pure, synchronous computation over
// immutable inputs. There is no shared mutable state, so a single Engine can
// serve any number of goroutines.
package credit

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"auto-credit-engine/internal/config"
	"auto-credit-engine/internal/models"
)

// Grade is a (level, score) pair assigned by a rule bracket.
type Grade struct {
	Level models.RiskLevel
	Score int
}

// ScoreBand grades credit scores at or above MinScore.
type ScoreBand struct {
	MinScore int
	Grade    Grade
}

// RatioBand grades ratios at or below UpTo.
type RatioBand struct {
	UpTo  decimal.Decimal
	Grade Grade
}

// RatioBands is an ordered band table with a fallback for ratios above every
// band.
type RatioBands struct {
	Bands     []RatioBand
	Otherwise Grade
}

// Lookup returns the grade of the first band containing ratio.
func (b RatioBands) Lookup(ratio decimal.Decimal) Grade {
	for _, band := range b.Bands {
		if ratio.LessThanOrEqual(band.UpTo) {
			return band.Grade
		}
	}
	return b.Otherwise
}

// IntStep adds Delta to a score when the value is at or below UpTo.
type IntStep struct {
	UpTo  int
	Delta int
}

// IntSteps is an ordered step table over integer values.
type IntSteps struct {
	Steps     []IntStep
	Otherwise int
}

// Lookup returns the delta of the first step containing v.
func (s IntSteps) Lookup(v int) int {
	for _, step := range s.Steps {
		if v <= step.UpTo {
			return step.Delta
		}
	}
	return s.Otherwise
}

// RatioStep adds Delta to a score when a ratio is at or below UpTo.
type RatioStep struct {
	UpTo  decimal.Decimal
	Delta int
}

// RatioSteps is an ordered step table over ratios.
type RatioSteps struct {
	Steps     []RatioStep
	Otherwise int
}

// Lookup returns the delta of the first step containing ratio.
func (s RatioSteps) Lookup(ratio decimal.Decimal) int {
	for _, step := range s.Steps {
		if ratio.LessThanOrEqual(step.UpTo) {
			return step.Delta
		}
	}
	return s.Otherwise
}

// RateTier maps credit scores at or above MinScore to a base rate.
type RateTier struct {
	MinScore int
	Rate     decimal.Decimal
}

// RateTable is an ordered tier table with a floor rate for scores below every
// tier.
type RateTable struct {
	Tiers []RateTier
	Floor decimal.Decimal
}

// Lookup returns the base rate for score. It is a pure function of score.
func (t RateTable) Lookup(score models.CreditScore) decimal.Decimal {
	for _, tier := range t.Tiers {
		if int(score) >= tier.MinScore {
			return tier.Rate
		}
	}
	return t.Floor
}

// EligibilityPolicy holds the hard pass/fail thresholds.
type EligibilityPolicy struct {
	MinMonthlyIncome     decimal.Decimal
	MaxDebtToIncome      decimal.Decimal
	MaxVehicleAgeYears   int
	MaxVehicleKilometers int
	AuthorizedBrands     []string
}

// MaxAmountPolicy drives the maximum-eligible-amount approximation.
type MaxAmountPolicy struct {
	MaxPaymentToIncome decimal.Decimal
	AnnualRate         decimal.Decimal
	TermMonths         int
	MaxLoanToValue     decimal.Decimal
}

// RiskPolicy holds the factor tables and the aggregation thresholds.
type RiskPolicy struct {
	CreditScoreBands []ScoreBand
	CreditScoreFloor Grade

	PaymentCapacityRate  decimal.Decimal
	PaymentCapacityTerm  int
	PaymentCapacityBands RatioBands

	VehicleBaseScore    int
	VehicleAgeSteps     IntSteps
	VehicleMileageSteps IntSteps
	VehicleLTVSteps     RatioSteps
	VehicleLowAt        int
	VehicleMediumAt     int

	DebtToIncomeBands RatioBands

	// PendingGrade is assigned to rules still awaiting external verification.
	PendingGrade Grade

	LowRiskAt          decimal.Decimal
	MediumRiskAt       decimal.Decimal
	HighFactorOverride int
}

// RecommendedRatePolicy derives a rate from an assessment's overall level.
type RecommendedRatePolicy struct {
	BaseRates        RateTable
	LevelAdjustments map[models.RiskLevel]decimal.Decimal
	MinRate          decimal.Decimal
	MaxRate          decimal.Decimal
}

// InterestRatePolicy derives the quoted rate from an application.
type InterestRatePolicy struct {
	BaseRates RateTable

	ExperienceMonthsOver    int
	ExperienceAdjustment    decimal.Decimal
	HighIncomeOver          decimal.Decimal
	HighIncomeAdjustment    decimal.Decimal
	NewVehicleAdjustment    decimal.Decimal
	UsedVehicleAdjustment   decimal.Decimal
	NewVehicleMaxKilometers int
	FinancingRatioOver      decimal.Decimal
	HighFinancingAdjustment decimal.Decimal
	MinRate                 decimal.Decimal
	MaxRate                 decimal.Decimal
}

// Policy is the single configuration object injected into every component.
type Policy struct {
	Eligibility     EligibilityPolicy
	MaxAmount       MaxAmountPolicy
	Risk            RiskPolicy
	RecommendedRate RecommendedRatePolicy
	InterestRate    InterestRatePolicy

	DefaultTermMonths int
	MinTermMonths     int
	MaxTermMonths     int

	// Now supplies the clock used for vehicle age. Defaults to time.Now.
	Now func() time.Time
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultPolicy returns the production rule set.
func DefaultPolicy() Policy {
	return Policy{
		Eligibility: EligibilityPolicy{
			MinMonthlyIncome:     d("1500000"),
			MaxDebtToIncome:      d("0.40"),
			MaxVehicleAgeYears:   6,
			MaxVehicleKilometers: 100_000,
			AuthorizedBrands:     models.DefaultAuthorizedBrands(),
		},
		MaxAmount: MaxAmountPolicy{
			MaxPaymentToIncome: d("0.30"),
			AnnualRate:         d("0.12"),
			TermMonths:         60,
			MaxLoanToValue:     d("0.90"),
		},
		Risk: RiskPolicy{
			CreditScoreBands: []ScoreBand{
				{MinScore: 750, Grade: Grade{models.RiskLevelLow, 85}},
				{MinScore: 700, Grade: Grade{models.RiskLevelLow, 75}},
				{MinScore: 650, Grade: Grade{models.RiskLevelMedium, 60}},
				{MinScore: 600, Grade: Grade{models.RiskLevelMedium, 45}},
			},
			CreditScoreFloor: Grade{models.RiskLevelHigh, 20},

			PaymentCapacityRate: d("0.18"),
			PaymentCapacityTerm: 60,
			PaymentCapacityBands: RatioBands{
				Bands: []RatioBand{
					{UpTo: d("0.20"), Grade: Grade{models.RiskLevelLow, 90}},
					{UpTo: d("0.25"), Grade: Grade{models.RiskLevelLow, 80}},
					{UpTo: d("0.30"), Grade: Grade{models.RiskLevelMedium, 65}},
				},
				Otherwise: Grade{models.RiskLevelHigh, 30},
			},

			VehicleBaseScore: 70,
			VehicleAgeSteps: IntSteps{
				Steps:     []IntStep{{UpTo: 2, Delta: 15}, {UpTo: 4, Delta: 5}, {UpTo: 6, Delta: -5}},
				Otherwise: -20,
			},
			VehicleMileageSteps: IntSteps{
				Steps:     []IntStep{{UpTo: 50_000, Delta: 10}, {UpTo: 80_000, Delta: 5}, {UpTo: 100_000, Delta: -5}},
				Otherwise: -15,
			},
			VehicleLTVSteps: RatioSteps{
				Steps:     []RatioStep{{UpTo: d("0.70"), Delta: 10}, {UpTo: d("0.85"), Delta: 5}},
				Otherwise: -10,
			},
			VehicleLowAt:    80,
			VehicleMediumAt: 60,

			DebtToIncomeBands: RatioBands{
				Bands: []RatioBand{
					{UpTo: d("0.20"), Grade: Grade{models.RiskLevelLow, 90}},
					{UpTo: d("0.30"), Grade: Grade{models.RiskLevelMedium, 70}},
					{UpTo: d("0.40"), Grade: Grade{models.RiskLevelMedium, 50}},
				},
				Otherwise: Grade{models.RiskLevelHigh, 25},
			},

			PendingGrade: Grade{models.RiskLevelMedium, 70},

			LowRiskAt:          d("75"),
			MediumRiskAt:       d("60"),
			HighFactorOverride: 2,
		},
		RecommendedRate: RecommendedRatePolicy{
			BaseRates: RateTable{
				Tiers: []RateTier{
					{MinScore: 750, Rate: d("0.12")},
					{MinScore: 700, Rate: d("0.14")},
					{MinScore: 650, Rate: d("0.16")},
					{MinScore: 600, Rate: d("0.18")},
				},
				Floor: d("0.22"),
			},
			LevelAdjustments: map[models.RiskLevel]decimal.Decimal{
				models.RiskLevelLow:    d("-0.01"),
				models.RiskLevelMedium: decimal.Zero,
				models.RiskLevelHigh:   d("0.02"),
			},
			MinRate: d("0.12"),
			MaxRate: d("0.25"),
		},
		InterestRate: InterestRatePolicy{
			BaseRates: RateTable{
				Tiers: []RateTier{
					{MinScore: 800, Rate: d("0.1125")},
					{MinScore: 750, Rate: d("0.13")},
					{MinScore: 700, Rate: d("0.15")},
					{MinScore: 650, Rate: d("0.17")},
					{MinScore: 600, Rate: d("0.19")},
				},
				Floor: d("0.21"),
			},
			ExperienceMonthsOver:    36,
			ExperienceAdjustment:    d("-0.005"),
			HighIncomeOver:          d("5000000"),
			HighIncomeAdjustment:    d("-0.005"),
			NewVehicleAdjustment:    d("-0.01"),
			UsedVehicleAdjustment:   d("0.01"),
			NewVehicleMaxKilometers: 5_000,
			FinancingRatioOver:      d("0.80"),
			HighFinancingAdjustment: d("0.005"),
			MinRate:                 d("0.10"),
			MaxRate:                 d("0.25"),
		},
		DefaultTermMonths: 60,
		MinTermMonths:     12,
		MaxTermMonths:     84,
		Now:               time.Now,
	}
}

// PolicyFromConfig overlays configured overrides on DefaultPolicy.
func PolicyFromConfig(cfg *config.Config) Policy {
	p := DefaultPolicy()
	if cfg == nil {
		return p
	}
	if cfg.MinMonthlyIncome.IsPositive() {
		p.Eligibility.MinMonthlyIncome = cfg.MinMonthlyIncome
	}
	if cfg.MaxDebtToIncome.IsPositive() {
		p.Eligibility.MaxDebtToIncome = cfg.MaxDebtToIncome
	}
	if cfg.MaxVehicleAgeYears > 0 {
		p.Eligibility.MaxVehicleAgeYears = cfg.MaxVehicleAgeYears
	}
	if cfg.MaxVehicleKilometers > 0 {
		p.Eligibility.MaxVehicleKilometers = cfg.MaxVehicleKilometers
	}
	if len(cfg.AuthorizedBrands) > 0 {
		brands := make([]string, 0, len(cfg.AuthorizedBrands))
		for _, b := range cfg.AuthorizedBrands {
			if nb := models.NormalizeBrand(b); nb != "" {
				brands = append(brands, nb)
			}
		}
		p.Eligibility.AuthorizedBrands = brands
	}
	if cfg.DefaultTermMonths > 0 {
		p.DefaultTermMonths = cfg.DefaultTermMonths
	}
	return p
}

// Validate checks the policy for tables the engine cannot use.
func (p Policy) Validate() error {
	if !p.Eligibility.MinMonthlyIncome.IsPositive() {
		return fmt.Errorf("policy: minimum monthly income must be positive")
	}
	if !p.Eligibility.MaxDebtToIncome.IsPositive() {
		return fmt.Errorf("policy: debt-to-income ceiling must be positive")
	}
	if len(p.Eligibility.AuthorizedBrands) == 0 {
		return fmt.Errorf("policy: at least one authorized brand is required")
	}
	if p.MaxAmount.TermMonths <= 0 || p.Risk.PaymentCapacityTerm <= 0 {
		return fmt.Errorf("policy: reference terms must be positive")
	}
	if p.MinTermMonths <= 0 || p.MaxTermMonths < p.MinTermMonths {
		return fmt.Errorf("policy: invalid term range [%d, %d]", p.MinTermMonths, p.MaxTermMonths)
	}
	if p.DefaultTermMonths < p.MinTermMonths || p.DefaultTermMonths > p.MaxTermMonths {
		return fmt.Errorf("policy: default term %d outside [%d, %d]", p.DefaultTermMonths, p.MinTermMonths, p.MaxTermMonths)
	}
	if p.InterestRate.MinRate.GreaterThan(p.InterestRate.MaxRate) ||
		p.RecommendedRate.MinRate.GreaterThan(p.RecommendedRate.MaxRate) {
		return fmt.Errorf("policy: rate floor above ceiling")
	}
	if !descendingTiers(p.InterestRate.BaseRates.Tiers) || !descendingTiers(p.RecommendedRate.BaseRates.Tiers) {
		return fmt.Errorf("policy: rate tiers must be sorted by descending score")
	}
	for lvl := range p.RecommendedRate.LevelAdjustments {
		if !lvl.IsValid() {
			return fmt.Errorf("policy: %w %q", models.ErrInvalidRiskLevel, lvl)
		}
	}
	return nil
}

// Clone returns a deep copy of p. Components built from a policy hold their
// own copy, so later edits to the caller's tables do not reach them.
func (p Policy) Clone() Policy {
	c := p
	c.Eligibility.AuthorizedBrands = slices.Clone(p.Eligibility.AuthorizedBrands)
	c.Risk.CreditScoreBands = slices.Clone(p.Risk.CreditScoreBands)
	c.Risk.PaymentCapacityBands.Bands = slices.Clone(p.Risk.PaymentCapacityBands.Bands)
	c.Risk.VehicleAgeSteps.Steps = slices.Clone(p.Risk.VehicleAgeSteps.Steps)
	c.Risk.VehicleMileageSteps.Steps = slices.Clone(p.Risk.VehicleMileageSteps.Steps)
	c.Risk.VehicleLTVSteps.Steps = slices.Clone(p.Risk.VehicleLTVSteps.Steps)
	c.Risk.DebtToIncomeBands.Bands = slices.Clone(p.Risk.DebtToIncomeBands.Bands)
	c.RecommendedRate.BaseRates.Tiers = slices.Clone(p.RecommendedRate.BaseRates.Tiers)
	c.RecommendedRate.LevelAdjustments = maps.Clone(p.RecommendedRate.LevelAdjustments)
	c.InterestRate.BaseRates.Tiers = slices.Clone(p.InterestRate.BaseRates.Tiers)
	return c
}

func descendingTiers(tiers []RateTier) bool {
	for i := 1; i < len(tiers); i++ {
		if tiers[i].MinScore >= tiers[i-1].MinScore {
			return false
		}
	}
	return true
}

func (p Policy) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p Policy) currentYear() int {
	return p.now().Year()
}

func (p Policy) brandAuthorized(brand string) bool {
	brand = models.NormalizeBrand(brand)
	for _, b := range p.Eligibility.AuthorizedBrands {
		if strings.EqualFold(b, brand) {
			return true
		}
	}
	return false
}
