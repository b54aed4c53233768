// Package models defines the data structures for the auto credit decision engine.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Eligibility check names, as reported in EligibilityReport.FailedChecks.
const (
	CheckIncomeFloor       = "income_floor"
	CheckAcceptableHistory = "acceptable_history"
	CheckVehicleQualifies  = "vehicle_qualifies"
	CheckDebtToIncome      = "debt_to_income"
)

// EligibilityReport holds the outcome of each hard eligibility predicate.
type EligibilityReport struct {
	IncomeFloorMet         bool            `json:"income_floor_met"`
	AcceptableHistory      bool            `json:"acceptable_history"`
	VehicleQualifies       bool            `json:"vehicle_qualifies"`
	DebtToIncomeAcceptable bool            `json:"debt_to_income_acceptable"`
	DebtToIncomeRatio      decimal.Decimal `json:"debt_to_income_ratio"`
}

// Eligible is the conjunction of every predicate.
func (r EligibilityReport) Eligible() bool {
	return r.IncomeFloorMet && r.AcceptableHistory && r.VehicleQualifies && r.DebtToIncomeAcceptable
}

// FailedChecks lists the predicates that did not pass.
func (r EligibilityReport) FailedChecks() []string {
	failed := make([]string, 0, 4)
	if !r.IncomeFloorMet {
		failed = append(failed, CheckIncomeFloor)
	}
	if !r.AcceptableHistory {
		failed = append(failed, CheckAcceptableHistory)
	}
	if !r.VehicleQualifies {
		failed = append(failed, CheckVehicleQualifies)
	}
	if !r.DebtToIncomeAcceptable {
		failed = append(failed, CheckDebtToIncome)
	}
	return failed
}

// CreditDecision is the record handed to downstream collaborators.
type CreditDecision struct {
	ID                 string            `json:"id" db:"id"`
	ApplicationID      string            `json:"application_id" db:"application_id"`
	DocumentID         string            `json:"document_id" db:"document_id"`
	VehicleVIN         string            `json:"vehicle_vin" db:"vehicle_vin"`
	Status             ApplicationStatus `json:"status" db:"status"`
	CreditScore        CreditScore       `json:"credit_score" db:"credit_score"`
	Eligibility        EligibilityReport `json:"eligibility" db:"eligibility"`
	Assessment         *RiskAssessment   `json:"assessment,omitempty" db:"assessment"`
	RequestedAmount    decimal.Decimal   `json:"requested_amount" db:"requested_amount"`
	MaxEligibleAmount  decimal.Decimal   `json:"max_eligible_amount" db:"max_eligible_amount"`
	ApprovedAmount     decimal.Decimal   `json:"approved_amount" db:"approved_amount"`
	InterestRate       decimal.Decimal   `json:"interest_rate" db:"interest_rate"`
	RecommendedRate    decimal.Decimal   `json:"recommended_rate" db:"recommended_rate"`
	TermMonths         int               `json:"term_months" db:"term_months"`
	MonthlyInstallment decimal.Decimal   `json:"monthly_installment" db:"monthly_installment"`
	TotalInterest      decimal.Decimal   `json:"total_interest" db:"total_interest"`
	Reasons            []string          `json:"reasons,omitempty" db:"reasons"`
	BatchID            string            `json:"batch_id,omitempty" db:"batch_id"`
	DecidedAt          time.Time         `json:"decided_at" db:"decided_at"`
}

// IsApproved reports whether credit was extended.
func (d *CreditDecision) IsApproved() bool {
	return d.Status == ApplicationStatusApproved
}

// RiskLevel returns the assessment level, or empty when the application never
// reached scoring.
func (d *CreditDecision) RiskLevel() RiskLevel {
	if d.Assessment == nil {
		return ""
	}
	return d.Assessment.Level
}

// BulkInsertResult contains the results of a bulk insert operation.
type BulkInsertResult struct {
	InsertedCount int      `json:"inserted_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
}
