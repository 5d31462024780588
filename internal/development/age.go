// Package development computes child ages and classifies developmental
// milestones against their expected-age windows. Every function takes the
// reference instant explicitly and holds no state.
package development

import (
	"fmt"
	"time"
)

// AgeInMonths returns the number of completed calendar months between birth
// and now. A month only counts once now has reached the birth day-of-month.
func AgeInMonths(birth, now time.Time) (int, error) {
	if birth.IsZero() {
		return 0, &InputError{Field: "birthDate", Message: "birth date is required"}
	}
	if dateOnly(birth).After(dateOnly(now)) {
		return 0, &InputError{Field: "birthDate", Message: "birth date is in the future"}
	}

	months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	if now.Day() < birth.Day() {
		months--
	}
	return months, nil
}

// Age is a child's age split into completed years and remaining months
type Age struct {
	Years  int `json:"years"`
	Months int `json:"months"`
}

// AgeAt returns the child's age in years and months at now
func AgeAt(birth, now time.Time) (Age, error) {
	total, err := AgeInMonths(birth, now)
	if err != nil {
		return Age{}, err
	}
	return Age{Years: total / 12, Months: total % 12}, nil
}

// String formats the age the way the child profile page shows it
func (a Age) String() string {
	months := plural(a.Months, "month", "months")
	if a.Years == 0 {
		return months
	}
	return fmt.Sprintf("%s and %s", plural(a.Years, "year", "years"), months)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// dateOnly drops the time of day, keeping the value's location
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
