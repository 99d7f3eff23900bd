// Package datetime provides date and time utility functions.
package datetime

import (
	"math"
	"time"

	"github.com/iwvelando/loan-planner/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// AddMonths returns the date offset by the given number of calendar months.
// Schedule entry k is dated AddMonths(startDate, k).
func AddMonths(date time.Time, months int) time.Time {
	return date.AddDate(0, months, 0)
}

// MonthOffset returns the schedule month index that a payment date falls on
// relative to the disbursement date, using the mean month length rather than
// calendar months. A date before start yields a negative offset.
func MonthOffset(start, date time.Time) int {
	days := date.Sub(start).Hours() / 24
	return int(math.Floor(days / constants.DaysPerMonth))
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate, secondDate time.Time) bool {
	return firstDate.Before(secondDate)
}
