package booking

import (
	"fmt"
	"math"
)

const (
	MinDurationHours = 1
	MaxDurationHours = 72
)

// MaxRateCents is the largest hourly rate whose price for MaxDurationHours
// still fits in an int64.
const MaxRateCents = math.MaxInt64 / MaxDurationHours

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// ComputePrice returns the total price in cents for renting at rateCents
	// per hour for durationHours.
	ComputePrice(rateCents int64, durationHours int) (int64, error)
}

// HourlyPricingStrategy charges the listed hourly rate for every booked hour.
type HourlyPricingStrategy struct{}

// NewHourlyPricingStrategy creates a new HourlyPricingStrategy.
func NewHourlyPricingStrategy() *HourlyPricingStrategy {
	return &HourlyPricingStrategy{}
}

// ComputePrice returns rateCents * durationHours. Working in cents keeps the
// result exact to two decimal places.
func (s *HourlyPricingStrategy) ComputePrice(rateCents int64, durationHours int) (int64, error) {
	if rateCents <= 0 || rateCents > MaxRateCents {
		return 0, &InvalidRateError{RateCents: rateCents}
	}
	if durationHours < MinDurationHours || durationHours > MaxDurationHours {
		return 0, &InvalidDurationError{Hours: durationHours}
	}
	return rateCents * int64(durationHours), nil
}

// FormatCents renders an amount in cents with two decimals, e.g. 7500 -> "75.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
