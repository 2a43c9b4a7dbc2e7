package planner

import (
	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// LineComparison is the budgeted-vs-actual delta for a single line.
type LineComparison struct {
	LineID      uuid.UUID       `json:"lineId"`
	Description string          `json:"description"`
	Budgeted    decimal.Decimal `json:"budgeted"`
	Actual      decimal.Decimal `json:"actual"`
	Variance    decimal.Decimal `json:"variance"` // Actual - Budgeted, positive means overspend for expense lines
}

// TagComparison is the budgeted-vs-actual delta for a primary tag.
type TagComparison struct {
	Tag      string          `json:"tag"`
	Budgeted decimal.Decimal `json:"budgeted"`
	Actual   decimal.Decimal `json:"actual"`
	Variance decimal.Decimal `json:"variance"`
}

// MonthComparison is the budgeted-vs-actual delta for a calendar month.
type MonthComparison struct {
	Month    types.Month     `json:"month"`
	Budgeted decimal.Decimal `json:"budgeted"`
	Actual   decimal.Decimal `json:"actual"`
	Variance decimal.Decimal `json:"variance"`
}

// Comparison holds three parallel breakdowns of the same data.
//
// Actuals without a line reference cannot be attributed to a line or
// tag bucket. They are reported in the Unbudgeted aggregate instead of
// being folded into an existing bucket or dropped; the month view still
// includes them since it buckets by date.
type Comparison struct {
	ByLine     []LineComparison  `json:"byLine"`
	ByTag      []TagComparison   `json:"byTag"`
	ByMonth    []MonthComparison `json:"byMonth"`
	Unbudgeted decimal.Decimal   `json:"unbudgeted"` // Sum of approved actuals with no matched line
}

// Compare computes budgeted-vs-actual deltas at line, tag and month
// granularity. Only approved actuals count. Line and tag buckets map
// actuals through their matched line reference, the month buckets map
// them by date.
func Compare(occurrences []Occurrence, actuals []models.Actual, lines []models.Line) Comparison {
	linesByID := make(map[uuid.UUID]models.Line, len(lines))
	for _, line := range lines {
		linesByID[line.ID] = line
	}

	budgetedByLine := make(map[uuid.UUID]decimal.Decimal)
	budgetedByTag := make(map[string]decimal.Decimal)
	budgetedByMonth := make(map[types.Month]decimal.Decimal)
	var months []types.Month
	var tags []string

	for _, occurrence := range occurrences {
		budgetedByLine[occurrence.LineID] = budgetedByLine[occurrence.LineID].Add(occurrence.Amount)

		if _, ok := budgetedByTag[occurrence.Tag]; !ok {
			tags = append(tags, occurrence.Tag)
		}
		budgetedByTag[occurrence.Tag] = budgetedByTag[occurrence.Tag].Add(occurrence.Amount)

		m := occurrence.Date.MonthOf()
		if _, ok := budgetedByMonth[m]; !ok {
			months = append(months, m)
		}
		budgetedByMonth[m] = budgetedByMonth[m].Add(occurrence.Amount)
	}

	actualByLine := make(map[uuid.UUID]decimal.Decimal)
	actualByTag := make(map[string]decimal.Decimal)
	actualByMonth := make(map[types.Month]decimal.Decimal)
	result := Comparison{}

	for _, actual := range actuals {
		if !actual.Approved {
			continue
		}

		m := actual.Date.MonthOf()
		if _, ok := actualByMonth[m]; !ok {
			if _, budgeted := budgetedByMonth[m]; !budgeted {
				months = append(months, m)
			}
		}
		actualByMonth[m] = actualByMonth[m].Add(actual.Amount)

		if actual.LineID == nil {
			result.Unbudgeted = result.Unbudgeted.Add(actual.Amount)
			continue
		}

		actualByLine[*actual.LineID] = actualByLine[*actual.LineID].Add(actual.Amount)

		if line, ok := linesByID[*actual.LineID]; ok {
			tag := line.PrimaryTag()
			if _, ok := budgetedByTag[tag]; !ok {
				if _, ok := actualByTag[tag]; !ok {
					tags = append(tags, tag)
				}
			}
			actualByTag[tag] = actualByTag[tag].Add(actual.Amount)
		}
	}

	result.ByLine = make([]LineComparison, 0, len(lines))
	for _, line := range lines {
		budgeted := budgetedByLine[line.ID]
		actual := actualByLine[line.ID]
		if budgeted.IsZero() && actual.IsZero() {
			continue
		}

		result.ByLine = append(result.ByLine, LineComparison{
			LineID:      line.ID,
			Description: line.Description,
			Budgeted:    budgeted,
			Actual:      actual,
			Variance:    actual.Sub(budgeted),
		})
	}

	slices.Sort(tags)
	result.ByTag = make([]TagComparison, 0, len(tags))
	for _, tag := range tags {
		budgeted := budgetedByTag[tag]
		actual := actualByTag[tag]
		result.ByTag = append(result.ByTag, TagComparison{
			Tag:      tag,
			Budgeted: budgeted,
			Actual:   actual,
			Variance: actual.Sub(budgeted),
		})
	}

	sortMonths(months)
	result.ByMonth = make([]MonthComparison, 0, len(months))
	for _, m := range months {
		budgeted := budgetedByMonth[m]
		actual := actualByMonth[m]
		result.ByMonth = append(result.ByMonth, MonthComparison{
			Month:    m,
			Budgeted: budgeted,
			Actual:   actual,
			Variance: actual.Sub(budgeted),
		})
	}

	return result
}
