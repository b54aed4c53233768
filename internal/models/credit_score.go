// Package models defines the data structures for the auto credit decision engine.
package models

import "strconv"

// Bureau score bounds.
const (
	MinCreditScore = 300
	MaxCreditScore = 900
)

// CreditScore is a bureau score. The engine consumes it and never computes it.
type CreditScore int

// NewCreditScore validates a raw bureau score.
func NewCreditScore(value int) (CreditScore, error) {
	s := CreditScore(value)
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return s, nil
}

// Validate reports whether the score lies within bureau bounds.
func (s CreditScore) Validate() error {
	if s < MinCreditScore || s > MaxCreditScore {
		return NewValidationError("credit_score", ErrInvalidCreditScore, strconv.Itoa(int(s)))
	}
	return nil
}

// Int returns the raw score.
func (s CreditScore) Int() int { return int(s) }
