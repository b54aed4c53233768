package credit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto-credit-engine/internal/models"
	"auto-credit-engine/internal/services/credit"
)

func TestEligibility_StrongApplicationPasses(t *testing.T) {
	evaluator := credit.NewEligibilityEvaluator(testPolicy())

	report, err := evaluator.Evaluate(strongApplication(t))
	require.NoError(t, err)

	assert.True(t, report.Eligible())
	assert.Empty(t, report.FailedChecks())
	assertDecimal(t, "0", report.DebtToIncomeRatio)
}

func TestEligibility_IncomeFloor(t *testing.T) {
	evaluator := credit.NewEligibilityEvaluator(testPolicy())

	assert.True(t, evaluator.MeetsIncomeFloor(newCustomer(t, "1500000", "0", 12)), "floor is inclusive")
	assert.False(t, evaluator.MeetsIncomeFloor(newCustomer(t, "1499999.99", "0", 12)))
}

func TestEligibility_VehicleAge(t *testing.T) {
	evaluator := credit.NewEligibilityEvaluator(testPolicy())

	// testNow is 2025, the age limit is six years.
	assert.True(t, evaluator.VehicleQualifies(newVehicle(t, 2019, "50000000", 60000)))
	assert.False(t, evaluator.VehicleQualifies(newVehicle(t, 2018, "50000000", 60000)), "seven years old")
}

func TestEligibility_VehicleMileage(t *testing.T) {
	evaluator := credit.NewEligibilityEvaluator(testPolicy())

	assert.True(t, evaluator.VehicleQualifies(newVehicle(t, 2022, "50000000", 100000)))
	assert.False(t, evaluator.VehicleQualifies(newVehicle(t, 2022, "50000000", 100001)))
}

func TestEligibility_UnauthorizedBrand(t *testing.T) {
	evaluator := credit.NewEligibilityEvaluator(testPolicy())

	v, err := models.NewVehicleAt(models.VehicleParams{
		VIN:        testVIN,
		Brand:      "Lada",
		Model:      "Niva",
		Year:       2023,
		Value:      dec("40000000"),
		Kilometers: 10000,
	}, testNow)
	require.NoError(t, err)

	assert.False(t, evaluator.VehicleQualifies(v))
}

func TestEligibility_BrandMatchIgnoresCase(t *testing.T) {
	evaluator := credit.NewEligibilityEvaluator(testPolicy())

	v, err := models.NewVehicleAt(models.VehicleParams{
		VIN:        testVIN,
		Brand:      "  volkswagen ",
		Model:      "T-Cross",
		Year:       2024,
		Value:      dec("95000000"),
		Kilometers: 0,
	}, testNow)
	require.NoError(t, err)

	assert.True(t, evaluator.VehicleQualifies(v))
}

func TestEligibility_DebtToIncomeOverCeiling(t *testing.T) {
	evaluator := credit.NewEligibilityEvaluator(testPolicy())
	app := newApplication(t,
		newCustomer(t, "5000000", "3000000", 24),
		newVehicle(t, 2023, "70000000", 20000),
		"40000000", 60)

	report, err := evaluator.Evaluate(app)
	require.NoError(t, err)

	assertDecimal(t, "0.6", report.DebtToIncomeRatio)
	assert.False(t, report.DebtToIncomeAcceptable)
	assert.False(t, report.AcceptableHistory)
	assert.True(t, report.IncomeFloorMet)
	assert.True(t, report.VehicleQualifies)
	assert.Equal(t, []string{models.CheckAcceptableHistory, models.CheckDebtToIncome}, report.FailedChecks())

	eligible, err := evaluator.IsEligible(app)
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestEligibility_DebtToIncomeCeilingInclusive(t *testing.T) {
	evaluator := credit.NewEligibilityEvaluator(testPolicy())

	ok, err := evaluator.DebtToIncomeAcceptable(newCustomer(t, "5000000", "2000000", 24))
	require.NoError(t, err)
	assert.True(t, ok, "0.40 equals the ceiling")

	ok, err = evaluator.DebtToIncomeAcceptable(newCustomer(t, "5000000", "2000001", 24))
	require.NoError(t, err)
	assert.True(t, ok, "0.4000002 rounds to 0.4000")

	ok, err = evaluator.DebtToIncomeAcceptable(newCustomer(t, "5000000", "2000300", 24))
	require.NoError(t, err)
	assert.False(t, ok, "0.40006 rounds to 0.4001")
}

func TestEligibility_ZeroValueCustomerIsInvalidInput(t *testing.T) {
	evaluator := credit.NewEligibilityEvaluator(testPolicy())

	_, err := evaluator.DebtToIncomeAcceptable(models.Customer{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.ErrorIs(t, err, models.ErrMissingCustomer)

	_, err = evaluator.Evaluate(models.CreditApplication{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
