package models_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto-credit-engine/internal/models"
)

func validCustomerParams() models.CustomerParams {
	return models.CustomerParams{
		DocumentID:           " 79845123 ",
		Name:                 "Carlos Ruiz",
		DateOfBirth:          time.Date(1990, time.July, 20, 0, 0, 0, 0, time.UTC),
		MonthlyIncome:        decimal.RequireFromString("4500000"),
		CurrentMonthlyDebts:  decimal.RequireFromString("900000"),
		WorkExperienceMonths: 30,
	}
}

func validVehicleParams() models.VehicleParams {
	return models.VehicleParams{
		VIN:        "3vwfe21c04m000001",
		Brand:      "  volkswagen ",
		Model:      "Jetta",
		Year:       2022,
		Value:      decimal.RequireFromString("80000000"),
		Kilometers: 25000,
	}
}

func TestIsValidVIN(t *testing.T) {
	assert.True(t, models.IsValidVIN("1HGCM82633A004352"))
	assert.False(t, models.IsValidVIN("1HGCM82633A00435"), "16 characters")
	assert.False(t, models.IsValidVIN("1HGCM82633A0043521"), "18 characters")
	assert.False(t, models.IsValidVIN("1HGCM82633I004352"), "contains I")
	assert.False(t, models.IsValidVIN("1HGCM82633O004352"), "contains O")
	assert.False(t, models.IsValidVIN("1HGCM82633Q004352"), "contains Q")
	assert.False(t, models.IsValidVIN("1hgcm82633a004352"), "lower case")
}

func TestNormalizeBrand(t *testing.T) {
	assert.Equal(t, "VOLKSWAGEN", models.NormalizeBrand("  volkswagen "))
	assert.Equal(t, "LAND ROVER", models.NormalizeBrand("land   rover"))
	assert.Equal(t, "", models.NormalizeBrand("   "))
}

func TestNewCustomer(t *testing.T) {
	c, err := models.NewCustomer(validCustomerParams())
	require.NoError(t, err)

	assert.Equal(t, "79845123", c.DocumentID())
	assert.Equal(t, 30, c.WorkExperienceMonths())

	ratio, err := c.DebtToIncomeRatio()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.2").Equal(ratio))
	assert.True(t, c.HasAcceptableDebtRatio(decimal.RequireFromString("0.40")))
	assert.False(t, c.HasAcceptableDebtRatio(decimal.RequireFromString("0.19")))
}

func TestNewCustomer_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.CustomerParams)
		want   error
	}{
		{"empty document", func(p *models.CustomerParams) { p.DocumentID = "  " }, models.ErrEmptyDocumentID},
		{"empty name", func(p *models.CustomerParams) { p.Name = "" }, models.ErrEmptyName},
		{"missing birth date", func(p *models.CustomerParams) { p.DateOfBirth = time.Time{} }, models.ErrInvalidBirthDate},
		{"future birth date", func(p *models.CustomerParams) { p.DateOfBirth = time.Now().AddDate(1, 0, 0) }, models.ErrInvalidBirthDate},
		{"zero income", func(p *models.CustomerParams) { p.MonthlyIncome = decimal.Zero }, models.ErrNonPositiveIncome},
		{"negative debts", func(p *models.CustomerParams) { p.CurrentMonthlyDebts = decimal.NewFromInt(-1) }, models.ErrNegativeDebts},
		{"negative experience", func(p *models.CustomerParams) { p.WorkExperienceMonths = -1 }, models.ErrNegativeExperience},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validCustomerParams()
			tt.mutate(&p)
			_, err := models.NewCustomer(p)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestCustomer_AgeAt(t *testing.T) {
	c, err := models.NewCustomer(validCustomerParams())
	require.NoError(t, err)

	assert.Equal(t, 34, c.AgeAt(time.Date(2025, time.July, 19, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 35, c.AgeAt(time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)))
}

func TestCustomer_ZeroValueIsInvalid(t *testing.T) {
	var c models.Customer
	assert.ErrorIs(t, c.Validate(), models.ErrMissingCustomer)

	_, err := c.DebtToIncomeRatio()
	assert.ErrorIs(t, err, models.ErrDivisionByZero)
	assert.False(t, c.HasAcceptableDebtRatio(decimal.RequireFromString("0.40")))
}

func TestParseBirthDate(t *testing.T) {
	d, err := models.ParseBirthDate("1985-11-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1985, time.November, 3, 0, 0, 0, 0, time.UTC), d)

	d, err = models.ParseBirthDate("1985-11-03T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 1985, d.Year())

	_, err = models.ParseBirthDate("03/11/1985")
	assert.ErrorIs(t, err, models.ErrInvalidBirthDate)
}

func TestCustomerParams_UnmarshalJSON(t *testing.T) {
	var p models.CustomerParams
	err := json.Unmarshal([]byte(`{
		"document_id": "52123456",
		"name": "Ana Torres",
		"date_of_birth": "1992-04-10",
		"monthly_income": "3200000",
		"current_monthly_debts": 400000,
		"work_experience_months": 18
	}`), &p)
	require.NoError(t, err)

	assert.Equal(t, "52123456", p.DocumentID)
	assert.Equal(t, time.Date(1992, time.April, 10, 0, 0, 0, 0, time.UTC), p.DateOfBirth)
	assert.True(t, decimal.RequireFromString("3200000").Equal(p.MonthlyIncome))
	assert.True(t, decimal.RequireFromString("400000").Equal(p.CurrentMonthlyDebts))
	assert.Equal(t, 18, p.WorkExperienceMonths)

	err = json.Unmarshal([]byte(`{"date_of_birth": "April 10"}`), &p)
	assert.ErrorIs(t, err, models.ErrInvalidBirthDate)
}

func TestNewVehicleAt(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	v, err := models.NewVehicleAt(validVehicleParams(), now)
	require.NoError(t, err)
	assert.Equal(t, "3VWFE21C04M000001", v.VIN())
	assert.Equal(t, "VOLKSWAGEN", v.Brand())
	assert.Equal(t, 3, v.AgeIn(now.Year()))
	assert.Equal(t, 0, v.AgeIn(2020), "age is never negative")

	ltv, err := v.LoanToValue(decimal.RequireFromString("60000000"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.75").Equal(ltv))
}

func TestNewVehicleAt_Validation(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(p *models.VehicleParams)
		want   error
	}{
		{"bad vin", func(p *models.VehicleParams) { p.VIN = "ABC" }, models.ErrInvalidVIN},
		{"empty brand", func(p *models.VehicleParams) { p.Brand = " " }, models.ErrUnauthorizedBrand},
		{"empty model", func(p *models.VehicleParams) { p.Model = "" }, models.ErrEmptyModel},
		{"future year", func(p *models.VehicleParams) { p.Year = 2026 }, models.ErrInvalidVehicleYear},
		{"ancient year", func(p *models.VehicleParams) { p.Year = 1985 }, models.ErrInvalidVehicleYear},
		{"zero value", func(p *models.VehicleParams) { p.Value = decimal.Zero }, models.ErrNonPositiveValue},
		{"negative km", func(p *models.VehicleParams) { p.Kilometers = -10 }, models.ErrNegativeKilometers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validVehicleParams()
			tt.mutate(&p)
			_, err := models.NewVehicleAt(p, now)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, models.IsInvalidInput(err))
		})
	}
}

func TestVehicle_ZeroValueLoanToValue(t *testing.T) {
	var v models.Vehicle
	assert.ErrorIs(t, v.Validate(), models.ErrMissingVehicle)

	_, err := v.LoanToValue(decimal.NewFromInt(1000))
	assert.ErrorIs(t, err, models.ErrDivisionByZero)
}

func TestCreditApplication(t *testing.T) {
	c, err := models.NewCustomer(validCustomerParams())
	require.NoError(t, err)
	v, err := models.NewVehicle(validVehicleParams())
	require.NoError(t, err)

	app, err := models.NewCreditApplication(c, v, decimal.RequireFromString("50000000"), 48)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID())
	assert.Equal(t, models.ApplicationStatusSubmitted, app.Status())
	assert.NoError(t, app.Validate())

	approved := app.WithStatus(models.ApplicationStatusApproved)
	assert.Equal(t, models.ApplicationStatusApproved, approved.Status())
	assert.Equal(t, models.ApplicationStatusSubmitted, app.Status())

	_, err = models.NewCreditApplication(c, v, decimal.Zero, 48)
	assert.ErrorIs(t, err, models.ErrNonPositiveAmount)

	_, err = models.NewCreditApplication(c, v, decimal.NewFromInt(1), 0)
	assert.ErrorIs(t, err, models.ErrNonPositiveTerm)

	_, err = models.NewCreditApplication(models.Customer{}, v, decimal.NewFromInt(1), 12)
	assert.ErrorIs(t, err, models.ErrMissingCustomer)

	_, err = models.RestoreCreditApplication(" ", c, v, decimal.NewFromInt(1), 12, models.ApplicationStatusApproved, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidApplicationRef)
}

func TestCreditApplicationParams_ToApplication(t *testing.T) {
	p := models.CreditApplicationParams{
		ApplicationID:   "app-001",
		Customer:        validCustomerParams(),
		Vehicle:         validVehicleParams(),
		RequestedAmount: decimal.RequireFromString("40000000"),
	}

	app, err := p.ToApplication(60)
	require.NoError(t, err)
	assert.Equal(t, "app-001", app.ID())
	assert.Equal(t, 60, app.TermMonths())

	p.ApplicationID = ""
	p.TermMonths = 36
	app, err = p.ToApplication(60)
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID())
	assert.Equal(t, 36, app.TermMonths())
}

func TestNewCreditScore(t *testing.T) {
	s, err := models.NewCreditScore(300)
	require.NoError(t, err)
	assert.Equal(t, 300, s.Int())

	_, err = models.NewCreditScore(900)
	assert.NoError(t, err)

	_, err = models.NewCreditScore(299)
	assert.ErrorIs(t, err, models.ErrInvalidCreditScore)
	_, err = models.NewCreditScore(901)
	assert.ErrorIs(t, err, models.ErrInvalidCreditScore)
}

func TestValidationError(t *testing.T) {
	err := models.NewValidationError("vin", models.ErrInvalidVIN, "ABC")
	assert.Equal(t, "vin: VIN must be 17 alphanumeric characters excluding I, O and Q (ABC)", err.Error())

	var verr *models.ValidationError
	require.True(t, errors.As(error(err), &verr))
	assert.Equal(t, "vin", verr.Field)

	bare := models.NewValidationError("field", nil, "")
	assert.ErrorIs(t, bare, models.ErrInvalidInput)
}

func TestRatio(t *testing.T) {
	r, err := models.Ratio(decimal.NewFromInt(2), decimal.NewFromInt(3), "x")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.6667").Equal(r))

	_, err = models.Ratio(decimal.NewFromInt(1), decimal.Zero, "monthly_income")
	assert.ErrorIs(t, err, models.ErrDivisionByZero)
	assert.True(t, models.IsInvalidInput(err))
}

func TestRoundingHelpers(t *testing.T) {
	assert.Equal(t, "10.01", models.RoundMoney(decimal.RequireFromString("10.005")).String())
	assert.Equal(t, "0.1235", models.RoundRate(decimal.RequireFromString("0.12345")).String())
	assert.True(t, decimal.NewFromInt(5).Equal(models.Clamp(decimal.NewFromInt(9), decimal.NewFromInt(1), decimal.NewFromInt(5))))
	assert.True(t, decimal.NewFromInt(1).Equal(models.MinDecimal(decimal.NewFromInt(1), decimal.NewFromInt(2))))
}

func TestEligibilityReport_FailedChecks(t *testing.T) {
	r := models.EligibilityReport{IncomeFloorMet: true, AcceptableHistory: true, VehicleQualifies: false, DebtToIncomeAcceptable: true}
	assert.False(t, r.Eligible())
	assert.Equal(t, []string{models.CheckVehicleQualifies}, r.FailedChecks())

	r.VehicleQualifies = true
	assert.True(t, r.Eligible())
	assert.Empty(t, r.FailedChecks())
}

func TestRiskAssessment_Helpers(t *testing.T) {
	a := models.RiskAssessment{Factors: []models.RiskFactor{
		{Category: models.RiskCategoryCreditScore, Level: models.RiskLevelHigh, Score: 20},
		{Category: models.RiskCategoryCreditHistory, Level: models.RiskLevelMedium, Score: 70, NotEvaluated: true},
	}}

	assert.Equal(t, 1, a.HighFactorCount())
	assert.Equal(t, []models.RiskCategory{models.RiskCategoryCreditHistory}, a.PendingFactors())

	f, ok := a.Factor(models.RiskCategoryCreditScore)
	assert.True(t, ok)
	assert.Equal(t, 20, f.Score)
	_, ok = a.Factor(models.RiskCategoryVehicle)
	assert.False(t, ok)

	assert.True(t, models.RiskLevelMedium.IsValid())
	assert.False(t, models.RiskLevel("SEVERE").IsValid())
}
