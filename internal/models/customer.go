// Package models defines the data structures for the auto credit decision engine.
package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CustomerParams carries the verified customer fields supplied by upstream
// document checks.
type CustomerParams struct {
	DocumentID           string          `json:"document_id"`
	Name                 string          `json:"name"`
	DateOfBirth          time.Time       `json:"date_of_birth"`
	MonthlyIncome        decimal.Decimal `json:"monthly_income"`
	CurrentMonthlyDebts  decimal.Decimal `json:"current_monthly_debts"`
	WorkExperienceMonths int             `json:"work_experience_months"`
}

// BirthDateLayout is the wire format of date_of_birth.
const BirthDateLayout = "2006-01-02"

// ParseBirthDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(BirthDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, NewValidationError("date_of_birth", ErrInvalidBirthDate, s)
	}
	return t, nil
}

// UnmarshalJSON reads date_of_birth through ParseBirthDate.
func (p *CustomerParams) UnmarshalJSON(data []byte) error {
	type alias CustomerParams
	aux := struct {
		*alias
		DateOfBirth string `json:"date_of_birth"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.DateOfBirth == "" {
		p.DateOfBirth = time.Time{}
		return nil
	}
	dob, err := ParseBirthDate(aux.DateOfBirth)
	if err != nil {
		return err
	}
	p.DateOfBirth = dob
	return nil
}

// Customer is an applicant profile. It is immutable once constructed.
type Customer struct {
	documentID           string
	name                 string
	dateOfBirth          time.Time
	monthlyIncome        decimal.Decimal
	currentMonthlyDebts  decimal.Decimal
	workExperienceMonths int
}

// NewCustomer validates params and builds a Customer.
func NewCustomer(p CustomerParams) (Customer, error) {
	if strings.TrimSpace(p.DocumentID) == "" {
		return Customer{}, NewValidationError("document_id", ErrEmptyDocumentID, "")
	}
	if strings.TrimSpace(p.Name) == "" {
		return Customer{}, NewValidationError("name", ErrEmptyName, "")
	}
	if p.DateOfBirth.IsZero() || !p.DateOfBirth.Before(time.Now()) {
		return Customer{}, NewValidationError("date_of_birth", ErrInvalidBirthDate, "")
	}
	if !p.MonthlyIncome.IsPositive() {
		return Customer{}, NewValidationError("monthly_income", ErrNonPositiveIncome, p.MonthlyIncome.String())
	}
	if p.CurrentMonthlyDebts.IsNegative() {
		return Customer{}, NewValidationError("current_monthly_debts", ErrNegativeDebts, p.CurrentMonthlyDebts.String())
	}
	if p.WorkExperienceMonths < 0 {
		return Customer{}, NewValidationError("work_experience_months", ErrNegativeExperience, "")
	}

	return Customer{
		documentID:           strings.TrimSpace(p.DocumentID),
		name:                 strings.TrimSpace(p.Name),
		dateOfBirth:          p.DateOfBirth,
		monthlyIncome:        p.MonthlyIncome,
		currentMonthlyDebts:  p.CurrentMonthlyDebts,
		workExperienceMonths: p.WorkExperienceMonths,
	}, nil
}

// DocumentID returns the national identity document number.
func (c Customer) DocumentID() string { return c.documentID }

// Name returns the customer's full name.
func (c Customer) Name() string { return c.name }

// DateOfBirth returns the customer's date of birth.
func (c Customer) DateOfBirth() time.Time { return c.dateOfBirth }

// MonthlyIncome returns the verified monthly income.
func (c Customer) MonthlyIncome() decimal.Decimal { return c.monthlyIncome }

// CurrentMonthlyDebts returns recurring monthly debt payments. Until the bureau
// debt feed is integrated upstream this is whatever the caller declared,
// zero when nothing was declared.
func (c Customer) CurrentMonthlyDebts() decimal.Decimal { return c.currentMonthlyDebts }

// WorkExperienceMonths returns the months of continuous employment.
func (c Customer) WorkExperienceMonths() int { return c.workExperienceMonths }

// AgeAt returns the customer's age in whole years at t.
func (c Customer) AgeAt(t time.Time) int {
	age := t.Year() - c.dateOfBirth.Year()
	if t.Month() < c.dateOfBirth.Month() ||
		(t.Month() == c.dateOfBirth.Month() && t.Day() < c.dateOfBirth.Day()) {
		age--
	}
	return age
}

// DebtToIncomeRatio returns current monthly debts over monthly income at ratio
// scale.
func (c Customer) DebtToIncomeRatio() (decimal.Decimal, error) {
	return Ratio(c.currentMonthlyDebts, c.monthlyIncome, "monthly_income")
}

// HasAcceptableDebtRatio is the customer-level history flag. It stands in for a
// credit-bureau history check and only looks at the declared debt ratio.
func (c Customer) HasAcceptableDebtRatio(ceiling decimal.Decimal) bool {
	ratio, err := c.DebtToIncomeRatio()
	if err != nil {
		return false
	}
	return ratio.LessThanOrEqual(ceiling)
}

// Validate re-checks the invariants, catching zero-value customers that were
// not built through NewCustomer.
func (c Customer) Validate() error {
	if c.documentID == "" {
		return NewValidationError("customer", ErrMissingCustomer, "")
	}
	if !c.monthlyIncome.IsPositive() {
		return NewValidationError("monthly_income", ErrNonPositiveIncome, c.monthlyIncome.String())
	}
	if c.currentMonthlyDebts.IsNegative() {
		return NewValidationError("current_monthly_debts", ErrNegativeDebts, c.currentMonthlyDebts.String())
	}
	return nil
}
