// Package core provides money parsing and handling utilities.
//
// Amounts are carried as integer cents everywhere inside the process and
// cross the JSON boundary as plain numbers in currency units.
package core

import (
	"math"
	"strconv"
)

// Money is a currency amount in cents.
type Money struct {
	Cents int64
}

// CentsFromFloat converts a currency-unit number to cents with half-away
// rounding. JSON payloads carry amounts as numbers (e.g. 12.34), so this is
// the single conversion point on the way in.
func CentsFromFloat(units float64) int64 {
	return int64(math.Round(units * 100))
}

// Units returns the currency-unit value for display and serialization.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON writes the amount as a JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, m.Units(), 'f', -1, 64), nil
}

// UnmarshalJSON accepts a JSON number in currency units.
func (m *Money) UnmarshalJSON(data []byte) error {
	units, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = CentsFromFloat(units)
	return nil
}
