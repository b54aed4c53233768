// Package models defines the data structures for the auto credit decision engine.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplicationStatus represents the lifecycle state of a credit application.
type ApplicationStatus string

const (
	ApplicationStatusSubmitted ApplicationStatus = "SUBMITTED"
	ApplicationStatusApproved  ApplicationStatus = "APPROVED"
	ApplicationStatusRejected  ApplicationStatus = "REJECTED"
)

// IsValid checks if the application status is known.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// CreditApplication is a (customer, vehicle, requested amount) triple with an
// identity and a status. The requested amount is not compared to the vehicle
// value here; loan-to-value rules apply later.
type CreditApplication struct {
	id              string
	customer        Customer
	vehicle         Vehicle
	requestedAmount decimal.Decimal
	termMonths      int
	status          ApplicationStatus
	submittedAt     time.Time
}

// NewCreditApplication creates a submitted application with a fresh identity.
func NewCreditApplication(customer Customer, vehicle Vehicle, requestedAmount decimal.Decimal, termMonths int) (CreditApplication, error) {
	return RestoreCreditApplication(uuid.NewString(), customer, vehicle, requestedAmount, termMonths,
		ApplicationStatusSubmitted, time.Now().UTC())
}

// RestoreCreditApplication rebuilds an application with a known identity, for
// example one read back from storage or received from an upstream channel.
func RestoreCreditApplication(
	id string,
	customer Customer,
	vehicle Vehicle,
	requestedAmount decimal.Decimal,
	termMonths int,
	status ApplicationStatus,
	submittedAt time.Time,
) (CreditApplication, error) {
	if strings.TrimSpace(id) == "" {
		return CreditApplication{}, NewValidationError("application_id", ErrInvalidApplicationRef, "")
	}
	if err := customer.Validate(); err != nil {
		return CreditApplication{}, err
	}
	if err := vehicle.Validate(); err != nil {
		return CreditApplication{}, err
	}
	if !requestedAmount.IsPositive() {
		return CreditApplication{}, NewValidationError("requested_amount", ErrNonPositiveAmount, requestedAmount.String())
	}
	if termMonths <= 0 {
		return CreditApplication{}, NewValidationError("term_months", ErrNonPositiveTerm, "")
	}
	if !status.IsValid() {
		status = ApplicationStatusSubmitted
	}

	return CreditApplication{
		id:              id,
		customer:        customer,
		vehicle:         vehicle,
		requestedAmount: requestedAmount,
		termMonths:      termMonths,
		status:          status,
		submittedAt:     submittedAt,
	}, nil
}

// ID returns the application identity.
func (a CreditApplication) ID() string { return a.id }

// Customer returns the applicant.
func (a CreditApplication) Customer() Customer { return a.customer }

// Vehicle returns the vehicle being financed.
func (a CreditApplication) Vehicle() Vehicle { return a.vehicle }

// RequestedAmount returns the principal asked for.
func (a CreditApplication) RequestedAmount() decimal.Decimal { return a.requestedAmount }

// TermMonths returns the requested repayment term.
func (a CreditApplication) TermMonths() int { return a.termMonths }

// Status returns the current lifecycle state.
func (a CreditApplication) Status() ApplicationStatus { return a.status }

// SubmittedAt returns when the application entered the system.
func (a CreditApplication) SubmittedAt() time.Time { return a.submittedAt }

// WithStatus returns a copy of the application in the given state.
func (a CreditApplication) WithStatus(status ApplicationStatus) CreditApplication {
	a.status = status
	return a
}

// Validate re-checks a possibly zero-value application.
func (a CreditApplication) Validate() error {
	if a.id == "" {
		return NewValidationError("application_id", ErrInvalidApplicationRef, "")
	}
	if err := a.customer.Validate(); err != nil {
		return err
	}
	if err := a.vehicle.Validate(); err != nil {
		return err
	}
	if !a.requestedAmount.IsPositive() {
		return NewValidationError("requested_amount", ErrNonPositiveAmount, a.requestedAmount.String())
	}
	if a.termMonths <= 0 {
		return NewValidationError("term_months", ErrNonPositiveTerm, "")
	}
	return nil
}

// CreditApplicationParams is the wire shape of an application request.
type CreditApplicationParams struct {
	ApplicationID   string          `json:"application_id,omitempty"`
	Customer        CustomerParams  `json:"customer"`
	Vehicle         VehicleParams   `json:"vehicle"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	TermMonths      int             `json:"term_months"`
}

// ToApplication validates the params and builds a submitted application.
// A missing term falls back to defaultTerm.
func (p CreditApplicationParams) ToApplication(defaultTerm int) (CreditApplication, error) {
	customer, err := NewCustomer(p.Customer)
	if err != nil {
		return CreditApplication{}, err
	}
	vehicle, err := NewVehicle(p.Vehicle)
	if err != nil {
		return CreditApplication{}, err
	}
	term := p.TermMonths
	if term == 0 {
		term = defaultTerm
	}
	id := p.ApplicationID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	return RestoreCreditApplication(id, customer, vehicle, p.RequestedAmount, term,
		ApplicationStatusSubmitted, time.Now().UTC())
}
