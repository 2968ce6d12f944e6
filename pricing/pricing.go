// Package pricing holds the rental price rules shared by the cart and order services.
package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/gearshare/internal/errors"
)

const (
	Day = 24 * time.Hour

	secondsPerDay = int64(Day / time.Second)
	maxDuration   = time.Duration(math.MaxInt64)
)

type tier struct {
	upTo decimal.Decimal
	rate decimal.Decimal
}

var (
	tiers = []tier{
		{upTo: decimal.NewFromInt(1_000_000), rate: decimal.RequireFromString("0.03")},
		{upTo: decimal.NewFromInt(5_000_000), rate: decimal.RequireFromString("0.02")},
		{upTo: decimal.NewFromInt(20_000_000), rate: decimal.RequireFromString("0.015")},
	}
	topRate = decimal.RequireFromString("0.01")
)

// DailyRentalRate is the per-day rental charge for one unit. Tier bounds are inclusive.
func DailyRentalRate(basePrice decimal.Decimal) decimal.Decimal {
	if !basePrice.IsPositive() {
		return decimal.Zero
	}
	for _, t := range tiers {
		if basePrice.LessThanOrEqual(t.upTo) {
			return basePrice.Mul(t.rate)
		}
	}
	return basePrice.Mul(topRate)
}

// RentalDays counts started days between now and returnDate, 0 when there is no rental window.
func RentalDays(returnDate *time.Time, now time.Time) int {
	if returnDate == nil {
		return 0
	}
	diff := returnDate.Sub(now)
	if diff <= 0 {
		return 0
	}
	if diff < maxDuration {
		days := diff / Day
		if diff%Day != 0 {
			days++
		}
		return int(days)
	}

	// Sub saturates about 292 years out, so fall back to whole seconds.
	seconds := returnDate.Unix() - now.Unix()
	days := seconds / secondsPerDay
	if seconds%secondsPerDay != 0 || returnDate.Nanosecond() > now.Nanosecond() {
		days++
	}
	return int(days)
}

// AddDays moves t by whole calendar days without going through time.Duration.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

func RentalExtra(basePrice decimal.Decimal, rentalDays int) decimal.Decimal {
	return DailyRentalRate(basePrice).Mul(decimal.NewFromInt(int64(rentalDays)))
}

func PerUnitTotal(basePrice, optionExtraPrice, rentalExtra decimal.Decimal) decimal.Decimal {
	return basePrice.Add(optionExtraPrice).Add(rentalExtra)
}

func LineTotal(perUnitTotal decimal.Decimal, quantity int32) decimal.Decimal {
	return perUnitTotal.Mul(decimal.NewFromInt32(quantity))
}

// ParseReturnDate accepts YYYY-MM-DD (midnight UTC) or RFC3339. An empty string yields nil.
func ParseReturnDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: returnDate %q must be YYYY-MM-DD or RFC3339", inErrors.ErrValidation, s)
	}
	t = t.UTC()
	return &t, nil
}
