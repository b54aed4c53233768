// Package models defines the data structures for the auto credit decision engine.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MinVehicleYear is the oldest model year the catalog accepts.
const MinVehicleYear = 1990

// VINLength is the length of a vehicle identification number.
const VINLength = 17

// DefaultAuthorizedBrands lists the brands financed out of the box.
func DefaultAuthorizedBrands() []string {
	return []string{
		"CHEVROLET",
		"FORD",
		"HONDA",
		"HYUNDAI",
		"KIA",
		"MAZDA",
		"NISSAN",
		"RENAULT",
		"SUZUKI",
		"TOYOTA",
		"VOLKSWAGEN",
	}
}

// NormalizeBrand converts a brand name to its canonical upper-case form.
func NormalizeBrand(brand string) string {
	return strings.ToUpper(strings.Join(strings.Fields(brand), " "))
}

// IsValidVIN reports whether vin is 17 characters of A-Z/0-9 without I, O or Q.
func IsValidVIN(vin string) bool {
	if len(vin) != VINLength {
		return false
	}
	for _, r := range vin {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			if r == 'I' || r == 'O' || r == 'Q' {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// VehicleParams carries the verified vehicle fields supplied by upstream
// valuation checks.
type VehicleParams struct {
	VIN        string          `json:"vin"`
	Brand      string          `json:"brand"`
	Model      string          `json:"model"`
	Year       int             `json:"year"`
	Value      decimal.Decimal `json:"value"`
	Kilometers int             `json:"kilometers"`
}

// Vehicle is the car being financed. It is immutable once constructed.
type Vehicle struct {
	vin        string
	brand      string
	model      string
	year       int
	value      decimal.Decimal
	kilometers int
}

// NewVehicle validates params against the current calendar year.
func NewVehicle(p VehicleParams) (Vehicle, error) {
	return NewVehicleAt(p, time.Now())
}

// NewVehicleAt validates params using now to bound the model year.
func NewVehicleAt(p VehicleParams, now time.Time) (Vehicle, error) {
	vin := strings.ToUpper(strings.TrimSpace(p.VIN))
	if !IsValidVIN(vin) {
		return Vehicle{}, NewValidationError("vin", ErrInvalidVIN, p.VIN)
	}
	brand := NormalizeBrand(p.Brand)
	if brand == "" {
		return Vehicle{}, NewValidationError("brand", ErrUnauthorizedBrand, "brand is empty")
	}
	if strings.TrimSpace(p.Model) == "" {
		return Vehicle{}, NewValidationError("model", ErrEmptyModel, "")
	}
	if p.Year < MinVehicleYear || p.Year > now.Year() {
		return Vehicle{}, NewValidationError("year", ErrInvalidVehicleYear,
			fmt.Sprintf("%d not in [%d, %d]", p.Year, MinVehicleYear, now.Year()))
	}
	if !p.Value.IsPositive() {
		return Vehicle{}, NewValidationError("value", ErrNonPositiveValue, p.Value.String())
	}
	if p.Kilometers < 0 {
		return Vehicle{}, NewValidationError("kilometers", ErrNegativeKilometers, "")
	}

	return Vehicle{
		vin:        vin,
		brand:      brand,
		model:      strings.TrimSpace(p.Model),
		year:       p.Year,
		value:      p.Value,
		kilometers: p.Kilometers,
	}, nil
}

// VIN returns the vehicle identification number.
func (v Vehicle) VIN() string { return v.vin }

// Brand returns the canonical brand name.
func (v Vehicle) Brand() string { return v.brand }

// Model returns the model name.
func (v Vehicle) Model() string { return v.model }

// Year returns the model year.
func (v Vehicle) Year() int { return v.year }

// Value returns the commercial value.
func (v Vehicle) Value() decimal.Decimal { return v.value }

// Kilometers returns the odometer reading.
func (v Vehicle) Kilometers() int { return v.kilometers }

// AgeIn returns the vehicle age in years for the given calendar year. It is
// never negative.
func (v Vehicle) AgeIn(currentYear int) int {
	if age := currentYear - v.year; age > 0 {
		return age
	}
	return 0
}

// LoanToValue returns amount over vehicle value at ratio scale.
func (v Vehicle) LoanToValue(amount decimal.Decimal) (decimal.Decimal, error) {
	return Ratio(amount, v.value, "vehicle_value")
}

// Validate re-checks the invariants of a possibly zero-value Vehicle.
func (v Vehicle) Validate() error {
	if v.vin == "" {
		return NewValidationError("vehicle", ErrMissingVehicle, "")
	}
	if !v.value.IsPositive() {
		return NewValidationError("vehicle_value", ErrNonPositiveValue, v.value.String())
	}
	if v.kilometers < 0 {
		return NewValidationError("kilometers", ErrNegativeKilometers, "")
	}
	return nil
}
