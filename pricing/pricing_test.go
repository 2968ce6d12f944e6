package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/gearshare/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDailyRentalRate(t *testing.T) {
	testCases := []struct {
		basePrice string
		expected  string
	}{
		{basePrice: "-10", expected: "0"},
		{basePrice: "0", expected: "0"},
		{basePrice: "1", expected: "0.03"},
		{basePrice: "500000", expected: "15000"},
		{basePrice: "1000000", expected: "30000"},
		{basePrice: "1000001", expected: "20000.02"},
		{basePrice: "2000000", expected: "40000"},
		{basePrice: "5000000", expected: "100000"},
		{basePrice: "5000001", expected: "75000.015"},
		{basePrice: "20000000", expected: "300000"},
		{basePrice: "20000001", expected: "200000.01"},
	}
	for _, tc := range testCases {
		t.Run(tc.basePrice, func(t *testing.T) {
			actual := DailyRentalRate(d(tc.basePrice))
			assert.Truef(t, d(tc.expected).Equal(actual), "expected %s got %s", tc.expected, actual)
		})
	}
}

func TestDailyRentalRatePercentageNeverIncreases(t *testing.T) {
	prices := []string{"1", "999999", "1000000", "1000001", "4999999", "5000000", "5000001", "20000000", "20000001", "99999999"}
	previous := decimal.NewFromInt(1)
	for _, p := range prices {
		percentage := DailyRentalRate(d(p)).Div(d(p))
		assert.Truef(t, percentage.LessThanOrEqual(previous), "percentage increased at %s", p)
		previous = percentage
	}
}

func TestDailyRentalRateMonotonicWithinTier(t *testing.T) {
	bounds := [][2]string{{"1", "1000000"}, {"1000001", "5000000"}, {"5000001", "20000000"}, {"20000001", "90000000"}}
	for _, b := range bounds {
		assert.True(t, DailyRentalRate(d(b[0])).LessThan(DailyRentalRate(d(b[1]))))
	}
}

func TestRentalDays(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	at := func(dur time.Duration) *time.Time {
		t := now.Add(dur)
		return &t
	}
	testCases := []struct {
		name       string
		returnDate *time.Time
		expected   int
	}{
		{name: "absent", returnDate: nil, expected: 0},
		{name: "past", returnDate: at(-time.Hour), expected: 0},
		{name: "now", returnDate: at(0), expected: 0},
		{name: "one nanosecond", returnDate: at(time.Nanosecond), expected: 1},
		{name: "one hour", returnDate: at(time.Hour), expected: 1},
		{name: "exactly one day", returnDate: at(Day), expected: 1},
		{name: "just over one day", returnDate: at(Day + time.Second), expected: 2},
		{name: "three days", returnDate: at(3 * Day), expected: 3},
		{name: "largest representable duration", returnDate: at(maxDuration - 1), expected: 106752},
		{name: "saturated duration", returnDate: at(maxDuration), expected: 106752},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RentalDays(tc.returnDate, now))
		})
	}
}

func TestRentalDaysFarFuture(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testCases := []struct {
		returnDate string
		expected   int
	}{
		{returnDate: "2260-01-01", expected: 86076},
		{returnDate: "2400-01-01", expected: 137210},
		{returnDate: "9999-12-31", expected: 2913052},
	}
	for _, tc := range testCases {
		t.Run(tc.returnDate, func(t *testing.T) {
			returnDate, err := ParseReturnDate(tc.returnDate)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, RentalDays(returnDate, now))
		})
	}

	t.Run("sub-second remainder past saturation rounds up", func(t *testing.T) {
		returnDate := time.Date(2400, 1, 1, 10, 0, 0, 1, time.UTC)
		exact := time.Date(2400, 1, 1, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, RentalDays(&exact, now)+1, RentalDays(&returnDate, now))
	})
}

func TestAddDays(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC), AddDays(now, 2))

	far := AddDays(now, 200_000)
	assert.True(t, far.After(now))
	assert.Equal(t, 200_000, RentalDays(&far, now))
}

func TestLinePricingScenarios(t *testing.T) {
	now := time.Now()

	t.Run("sale line without rental", func(t *testing.T) {
		base := d("500000")
		days := RentalDays(nil, now)
		perUnit := PerUnitTotal(base, decimal.Zero, RentalExtra(base, days))
		assert.True(t, d("1000000").Equal(LineTotal(perUnit, 2)))
	})

	t.Run("rental line for three days", func(t *testing.T) {
		base := d("2000000")
		returnDate := now.Add(3 * Day)
		days := RentalDays(&returnDate, now)
		extra := RentalExtra(base, days)
		perUnit := PerUnitTotal(base, decimal.Zero, extra)

		assert.True(t, d("40000").Equal(DailyRentalRate(base)))
		assert.Equal(t, 3, days)
		assert.True(t, d("120000").Equal(extra))
		assert.True(t, d("2120000").Equal(perUnit))
		assert.True(t, d("2120000").Equal(LineTotal(perUnit, 1)))
	})

	t.Run("option extra price is added per unit", func(t *testing.T) {
		perUnit := PerUnitTotal(d("100"), d("25.5"), decimal.Zero)
		assert.True(t, d("376.5").Equal(LineTotal(perUnit, 3)))
	})
}

func TestParseReturnDate(t *testing.T) {
	empty, err := ParseReturnDate("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	dateOnly, err := ParseReturnDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *dateOnly)

	rfc, err := ParseReturnDate("2024-06-01T07:00:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *rfc)

	_, err = ParseReturnDate("01/06/2024")
	assert.ErrorIs(t, err, inErrors.ErrValidation)
}
