package credit_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"auto-credit-engine/internal/models"
	"auto-credit-engine/internal/services/credit"
)

const testVIN = "1HGCM82633A004352"

var testNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testPolicy() credit.Policy {
	p := credit.DefaultPolicy()
	p.Now = func() time.Time { return testNow }
	return p
}

func newCustomer(t *testing.T, income, debts string, experienceMonths int) models.Customer {
	t.Helper()
	c, err := models.NewCustomer(models.CustomerParams{
		DocumentID:           "1020304050",
		Name:                 "Laura Gómez",
		DateOfBirth:          time.Date(1988, time.March, 2, 0, 0, 0, 0, time.UTC),
		MonthlyIncome:        dec(income),
		CurrentMonthlyDebts:  dec(debts),
		WorkExperienceMonths: experienceMonths,
	})
	require.NoError(t, err)
	return c
}

func newVehicle(t *testing.T, year int, value string, km int) models.Vehicle {
	t.Helper()
	v, err := models.NewVehicleAt(models.VehicleParams{
		VIN:        testVIN,
		Brand:      "Toyota",
		Model:      "Corolla Cross",
		Year:       year,
		Value:      dec(value),
		Kilometers: km,
	}, testNow)
	require.NoError(t, err)
	return v
}

func newApplication(t *testing.T, c models.Customer, v models.Vehicle, amount string, term int) models.CreditApplication {
	t.Helper()
	app, err := models.NewCreditApplication(c, v, dec(amount), term)
	require.NoError(t, err)
	return app
}

// strongApplication: 8M income, no debts, 48 months employed, a new 90M
// vehicle with 1,000 km, 60M requested over 60 months.
func strongApplication(t *testing.T) models.CreditApplication {
	t.Helper()
	return newApplication(t,
		newCustomer(t, "8000000", "0", 48),
		newVehicle(t, 2025, "90000000", 1000),
		"60000000", 60)
}

func mustScore(t *testing.T, v int) models.CreditScore {
	t.Helper()
	s, err := models.NewCreditScore(v)
	require.NoError(t, err)
	return s
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}
