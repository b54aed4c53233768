// Package models defines the data structures for the auto credit decision engine.
package models

import (
	"github.com/shopspring/decimal"
)

// RiskLevel classifies a factor or a whole assessment.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// IsValid checks if the risk level is known.
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	}
	return false
}

// RiskCategory names the dimension a factor scores.
type RiskCategory string

const (
	RiskCategoryCreditScore         RiskCategory = "CREDIT_SCORE"
	RiskCategoryPaymentCapacity     RiskCategory = "PAYMENT_CAPACITY"
	RiskCategoryVehicle             RiskCategory = "VEHICLE"
	RiskCategoryDebtToIncome        RiskCategory = "DEBT_TO_INCOME"
	RiskCategoryEmploymentStability RiskCategory = "EMPLOYMENT_STABILITY"
	RiskCategoryCreditHistory       RiskCategory = "CREDIT_HISTORY"
)

// RiskFactor is the outcome of one evaluation rule. Score is within [0, 100].
type RiskFactor struct {
	Category RiskCategory `json:"category"`
	Level    RiskLevel    `json:"level"`
	Score    int          `json:"score"`
	Detail   string       `json:"detail"`
	// NotEvaluated marks a placeholder factor whose rule still awaits an
	// external verification source.
	NotEvaluated bool `json:"not_evaluated,omitempty"`
}

// RiskAssessment is a finalized set of factors with its aggregate.
type RiskAssessment struct {
	Factors      []RiskFactor    `json:"factors"`
	OverallScore decimal.Decimal `json:"overall_score"`
	Level        RiskLevel       `json:"level"`
	Approved     bool            `json:"approved"`
}

// HighFactorCount returns the number of factors classified HIGH.
func (a RiskAssessment) HighFactorCount() int {
	n := 0
	for _, f := range a.Factors {
		if f.Level == RiskLevelHigh {
			n++
		}
	}
	return n
}

// Factor looks up a factor by category.
func (a RiskAssessment) Factor(category RiskCategory) (RiskFactor, bool) {
	for _, f := range a.Factors {
		if f.Category == category {
			return f, true
		}
	}
	return RiskFactor{}, false
}

// PendingFactors returns the categories that were not yet evaluated.
func (a RiskAssessment) PendingFactors() []RiskCategory {
	var pending []RiskCategory
	for _, f := range a.Factors {
		if f.NotEvaluated {
			pending = append(pending, f.Category)
		}
	}
	return pending
}
