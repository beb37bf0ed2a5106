package model

import (
	"fmt"
	"time"
)

// NumberPrefix starts every invoice number
const NumberPrefix = "FAC"

// GenerateNumber formats the number of the next invoice of date's year, given how many
// invoices that year already has. Sequences past 9999 are printed in full.
func GenerateNumber(date time.Time, countThisYear int64) string {
	return fmt.Sprintf("%s-%d-%04d", NumberPrefix, date.Year(), countThisYear+1)
}

// YearBounds returns [first day of year, first day of next year) in UTC
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}
