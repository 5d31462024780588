package development

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeInMonths(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		now   time.Time
		want  int
	}{
		{name: "same day", birth: date(2023, 1, 15), now: date(2023, 1, 15), want: 0},
		{name: "one day short of a month", birth: date(2023, 1, 15), now: date(2023, 2, 14), want: 0},
		{name: "exactly one month", birth: date(2023, 1, 15), now: date(2023, 2, 15), want: 1},
		{name: "across year boundary", birth: date(2022, 11, 20), now: date(2023, 2, 25), want: 3},
		{name: "exactly two years", birth: date(2021, 6, 1), now: date(2023, 6, 1), want: 24},
		{name: "end of month birth", birth: date(2023, 1, 31), now: date(2023, 2, 28), want: 0},
		{name: "time of day ignored for future check", birth: time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), now: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AgeInMonths(tt.birth, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAgeInMonthsNeverNegative(t *testing.T) {
	birth := date(2020, 2, 29)
	for now := birth; now.Before(date(2022, 3, 1)); now = now.AddDate(0, 0, 1) {
		got, err := AgeInMonths(birth, now)
		require.NoError(t, err)
		if got < 0 {
			t.Fatalf("AgeInMonths(%s, %s) = %d, want >= 0", birth.Format(time.DateOnly), now.Format(time.DateOnly), got)
		}
	}
}

func TestAgeInMonthsRejectsBadInput(t *testing.T) {
	t.Run("future birth date", func(t *testing.T) {
		_, err := AgeInMonths(date(2024, 5, 2), date(2024, 5, 1))
		var inputErr *InputError
		require.True(t, errors.As(err, &inputErr))
		assert.Equal(t, "birthDate", inputErr.Field)
	})

	t.Run("zero birth date", func(t *testing.T) {
		_, err := AgeInMonths(time.Time{}, date(2024, 5, 1))
		var inputErr *InputError
		assert.True(t, errors.As(err, &inputErr))
	})
}

func TestAgeAtString(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{name: "one month", now: date(2023, 2, 15), want: "1 month"},
		{name: "several months", now: date(2023, 8, 15), want: "7 months"},
		{name: "one year one month", now: date(2024, 2, 15), want: "1 year and 1 month"},
		{name: "two years", now: date(2025, 1, 20), want: "2 years and 0 months"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			age, err := AgeAt(date(2023, 1, 15), tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, age.String())
		})
	}
}
