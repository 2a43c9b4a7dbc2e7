package planner

import (
	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Period is one month of the envelope breakdown.
type Period struct {
	Month       types.Month     `json:"month"`
	Spend       decimal.Decimal `json:"spend"`       // Actual spend if the month has actuals, projected spend otherwise
	FromActuals bool            `json:"fromActuals"` // True when Spend comes from actuals
	Remaining   decimal.Decimal `json:"remaining"`   // Running remaining balance after this month
}

// Envelope is the balance-tracking forecast derived from a starting
// balance, projected occurrences and confirmed actuals.
//
// It is recomputed on demand and never persisted. Only expense-direction
// flows count as spend, income flows are tracked by the caller.
type Envelope struct {
	StartingBalance  decimal.Decimal  `json:"startingBalance"`
	TotalSpent       decimal.Decimal  `json:"totalSpent"`       // Sum of approved expense actuals up to the as-of date
	RemainingBalance decimal.Decimal  `json:"remainingBalance"` // StartingBalance - TotalSpent
	TotalProjected   decimal.Decimal  `json:"totalProjected"`   // Sum of projected expense amounts over the full window
	WillExceed       bool             `json:"willExceed"`       // True when the projected spend exceeds the starting balance
	ProjectedSurplus decimal.Decimal  `json:"projectedSurplus"` // StartingBalance - TotalProjected, negative means shortfall
	DailyBurnRate    *decimal.Decimal `json:"dailyBurnRate"`    // Nil until at least one expense actual exists
	DepletionDate    *types.Date      `json:"depletionDate"`    // Nil when the balance is not depleting or already exhausted
	DaysRemaining    *int             `json:"daysRemaining"`    // Never negative, 0 when the balance is already exhausted
	Periods          []Period         `json:"periods"`
}

// Forecast produces the envelope for a window of projected occurrences
// and the approved actuals, evaluated as of asOf.
//
// periodStart is the budget's start date, the anchor for the daily burn
// rate. Months that contain at least one approved expense actual use the
// actual spend and drop that month's projections entirely, so confirmed
// data is never double counted against its own projection.
func Forecast(startingBalance decimal.Decimal, occurrences []Occurrence, actuals []models.Actual, asOf types.Date, periodStart types.Date) Envelope {
	result := Envelope{
		StartingBalance: startingBalance,
	}

	projectedByMonth := make(map[types.Month]decimal.Decimal)
	actualByMonth := make(map[types.Month]decimal.Decimal)
	var months []types.Month

	seen := func(m types.Month) {
		for _, known := range months {
			if known.Equal(m) {
				return
			}
		}
		months = append(months, m)
	}

	for _, occurrence := range occurrences {
		if occurrence.Direction != models.DirectionExpense {
			continue
		}

		result.TotalProjected = result.TotalProjected.Add(occurrence.Amount)

		m := occurrence.Date.MonthOf()
		projectedByMonth[m] = projectedByMonth[m].Add(occurrence.Amount)
		seen(m)
	}

	hasActuals := false
	for _, actual := range actuals {
		if actual.Direction != models.DirectionExpense || !actual.Approved {
			continue
		}

		hasActuals = true

		if !actual.Date.After(asOf) {
			result.TotalSpent = result.TotalSpent.Add(actual.Amount)
		}

		m := actual.Date.MonthOf()
		actualByMonth[m] = actualByMonth[m].Add(actual.Amount)
		seen(m)
	}

	result.RemainingBalance = startingBalance.Sub(result.TotalSpent)
	result.WillExceed = result.TotalProjected.GreaterThan(startingBalance)
	result.ProjectedSurplus = startingBalance.Sub(result.TotalProjected)

	// Per-period breakdown: actuals supersede projections for months
	// where real data exists
	sortMonths(months)

	running := startingBalance
	result.Periods = make([]Period, 0, len(months))
	for _, m := range months {
		period := Period{Month: m}

		if spend, ok := actualByMonth[m]; ok {
			period.Spend = spend
			period.FromActuals = true
		} else {
			period.Spend = projectedByMonth[m]
		}

		running = running.Sub(period.Spend)
		period.Remaining = running
		result.Periods = append(result.Periods, period)
	}

	// A rate without observations is not a rate, so the burn rate stays
	// nil until actuals exist. Zero would be misleadingly optimistic.
	if hasActuals {
		elapsed := periodStart.DaysUntil(asOf) + 1
		if elapsed < 1 {
			elapsed = 1
		}

		rate := result.TotalSpent.Div(decimal.NewFromInt(int64(elapsed)))
		result.DailyBurnRate = &rate

		if result.RemainingBalance.LessThanOrEqual(decimal.Zero) {
			days := 0
			result.DaysRemaining = &days
		} else if rate.IsPositive() {
			days := int(result.RemainingBalance.Div(rate).IntPart())
			depletion := asOf.AddDays(days)
			result.DepletionDate = &depletion
			result.DaysRemaining = &days
		}
	} else if result.RemainingBalance.LessThanOrEqual(decimal.Zero) {
		days := 0
		result.DaysRemaining = &days
	}

	return result
}

func sortMonths(months []types.Month) {
	slices.SortFunc(months, func(a, b types.Month) int {
		switch {
		case a.Before(b):
			return -1
		case a.After(b):
			return 1
		}
		return 0
	})
}
