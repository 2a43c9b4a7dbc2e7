// Package planner implements the calculation core of Cashplan.
//
// All functions in this package are pure: they take their full input,
// return a new result and never touch the database.
package planner

import (
	"errors"
	"time"

	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Occurrence is one dated instance of a line's amount.
//
// Occurrences are derived and never persisted, they are regenerated on
// demand from a line set and a query window.
type Occurrence struct {
	LineID    uuid.UUID        `json:"lineId"`
	Date      types.Date       `json:"date"`
	Amount    decimal.Decimal  `json:"amount"` // Non-negative magnitude, sign is carried by Direction
	Direction models.Direction `json:"direction"`
	Tag       string           `json:"tag"` // The line's primary tag
}

// SignedAmount resolves the amount sign from the direction flag.
// Expenses are negative, income is positive.
func (o Occurrence) SignedAmount() decimal.Decimal {
	if o.Direction == models.DirectionExpense {
		return o.Amount.Neg()
	}

	return o.Amount
}

// ErrInvertedRange is returned when a projection window ends before it starts.
// This is a programmer error of the caller, not bad user input.
var ErrInvertedRange = errors.New("the projection window end is before its start")

// Project expands a set of lines into dated occurrences over the window
// [start, end], both inclusive.
//
// Lines without an end date recur indefinitely but only materialize
// inside the window, so the work is bounded by the window length and
// never by the line lifetime. The result is ordered by date; lines keep
// their input order within a day.
func Project(lines []models.Line, start, end types.Date) ([]Occurrence, error) {
	if end.Before(start) {
		return nil, ErrInvertedRange
	}

	occurrences := make([]Occurrence, 0)
	for _, line := range lines {
		occurrences = append(occurrences, projectLine(line, start, end)...)
	}

	slices.SortStableFunc(occurrences, func(a, b Occurrence) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})

	return occurrences, nil
}

// projectLine generates the occurrences for a single line inside the window.
func projectLine(line models.Line, start, end types.Date) []Occurrence {
	// Clip the window to the line's own interval
	from := start
	if line.StartDate.After(from) {
		from = line.StartDate
	}

	to := end
	if line.EndDate != nil && line.EndDate.Before(to) {
		to = *line.EndDate
	}

	if to.Before(from) {
		return nil
	}

	var dates []types.Date

	switch line.Frequency {
	case models.FrequencyOnce:
		if !line.StartDate.Before(from) && !line.StartDate.After(to) {
			dates = append(dates, line.StartDate)
		}

	case models.FrequencyDaily:
		for d := from; !d.After(to); d = d.AddDays(1) {
			dates = append(dates, d)
		}

	case models.FrequencyWeekly:
		// Align to the first 7-day multiple from the line start that is
		// not before the clipped window
		offset := line.StartDate.DaysUntil(from)
		weeks := offset / 7
		if offset%7 != 0 {
			weeks++
		}
		if weeks < 0 {
			weeks = 0
		}

		for d := line.StartDate.AddDays(weeks * 7); !d.After(to); d = d.AddDays(7) {
			dates = append(dates, d)
		}

	case models.FrequencyMonthly:
		dates = monthlyDates(line.StartDate, from, to, 1)

	case models.FrequencyQuarterly:
		dates = monthlyDates(line.StartDate, from, to, 3)

	case models.FrequencyAnnually:
		dates = monthlyDates(line.StartDate, from, to, 12)
	}

	occurrences := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		occurrences = append(occurrences, Occurrence{
			LineID:    line.ID,
			Date:      d,
			Amount:    line.Amount,
			Direction: line.Direction,
			Tag:       line.PrimaryTag(),
		})
	}

	return occurrences
}

// monthlyDates returns the dates a month-stepped line occurs on inside
// [from, to]. The nominal day of month is the line's start day, clamped
// to the last valid day of shorter months. A day-31 line therefore lands
// on Feb 28 (or 29), it never skips the month.
func monthlyDates(lineStart, from, to types.Date, stepMonths int) []types.Date {
	// Number of whole steps between the line start month and the first
	// month of the clipped window, rounded down one step so the
	// occurrence of a partially covered month is not missed.
	months := (from.Year()-lineStart.Year())*12 + int(from.Month()) - int(lineStart.Month())
	steps := months/stepMonths - 1
	if steps < 0 {
		steps = 0
	}

	var dates []types.Date
	for {
		anchor := time.Date(lineStart.Year(), lineStart.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, steps*stepMonths, 0)

		d := types.ClampedDate(anchor.Year(), anchor.Month(), lineStart.Day())
		if d.After(to) {
			return dates
		}

		if !d.Before(from) {
			dates = append(dates, d)
		}

		steps++
	}
}
