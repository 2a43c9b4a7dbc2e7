package planner

import (
	"errors"
	"strings"
	"time"

	"github.com/cashplan/backend/internal/importer"
	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// amountTolerance is the rounding error bound under which two amounts
// count as equal.
var amountTolerance = decimal.New(1, -2)

// mediumSimilarity is the similarity strength above which a fuzzy match
// is medium confidence instead of low.
const mediumSimilarity = 0.5

// MatchResult wraps one imported row with the line it was matched to,
// if any. Results start unapproved except for high confidence matches;
// everything uncertain requires explicit user action before commit.
type MatchResult struct {
	Row        importer.Row      `json:"row"`
	LineID     *uuid.UUID        `json:"lineId"`
	Confidence models.Confidence `json:"confidence"`
	Approved   bool              `json:"approved"`
}

// Match maps imported rows to budgeted lines, one result per input row,
// order preserving. It is read-only analysis: lines are never mutated
// and nothing is committed, the result set only classifies.
//
// Three passes run in order of certainty, each considering only rows
// the previous passes left unmatched:
//
//  1. exact: tag equal (case-insensitive), amount within tolerance and
//     the row date inside a projected period of the line -> high
//  2. fuzzy: description similarity plus amount tolerance -> medium or low
//  3. amount only -> low
//
// Tag mappings are applied first to fill missing tag hints from row
// descriptions, in priority order.
func Match(rows []importer.Row, lines []models.Line, mappings []models.TagMapping) []MatchResult {
	mappings = slices.Clone(mappings)
	slices.SortStableFunc(mappings, func(a, b models.TagMapping) int {
		return int(a.Priority) - int(b.Priority)
	})

	results := make([]MatchResult, 0, len(rows))
	for _, row := range rows {
		if row.Tag == "" {
			row.Tag = mappedTag(row.Description, mappings)
		}

		results = append(results, MatchResult{
			Row:        row,
			Confidence: models.ConfidenceUnmatched,
		})
	}

	// Exact pass
	for i, result := range results {
		for _, line := range lines {
			if result.Row.Tag == "" || !hasTag(line, result.Row.Tag) {
				continue
			}

			if !amountClose(result.Row.Amount, line.Amount) {
				continue
			}

			if !activeInMonth(line, result.Row.Date.MonthOf()) {
				continue
			}

			id := line.ID
			results[i].LineID = &id
			results[i].Confidence = models.ConfidenceHigh
			results[i].Approved = true
			break
		}
	}

	// Fuzzy pass
	for i, result := range results {
		if result.Confidence != models.ConfidenceUnmatched {
			continue
		}

		var best float64
		var bestLine uuid.UUID
		for _, line := range lines {
			if !amountClose(result.Row.Amount, line.Amount) {
				continue
			}

			score := lineSimilarity(result.Row, line)
			if score > best {
				best = score
				bestLine = line.ID
			}
		}

		if best > 0 {
			id := bestLine
			results[i].LineID = &id
			results[i].Confidence = models.ConfidenceLow
			if best >= mediumSimilarity {
				results[i].Confidence = models.ConfidenceMedium
			}
		}
	}

	// Amount-only pass
	for i, result := range results {
		if result.Confidence != models.ConfidenceUnmatched {
			continue
		}

		for _, line := range lines {
			if amountClose(result.Row.Amount, line.Amount) {
				id := line.ID
				results[i].LineID = &id
				results[i].Confidence = models.ConfidenceLow
				break
			}
		}
	}

	return results
}

// mappedTag returns the tag of the first mapping whose glob pattern
// matches the description, or "".
func mappedTag(description string, mappings []models.TagMapping) string {
	for _, mapping := range mappings {
		if glob.Glob(strings.ToLower(mapping.Match), strings.ToLower(description)) {
			return mapping.Tag
		}
	}

	return ""
}

func hasTag(line models.Line, tag string) bool {
	for _, t := range line.TagList() {
		if strings.EqualFold(t, tag) {
			return true
		}
	}

	return false
}

func amountClose(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(amountTolerance)
}

// activeInMonth reports whether the line produces an occurrence in the
// given month.
func activeInMonth(line models.Line, month types.Month) bool {
	t := time.Time(month)
	start := types.NewDate(t.Year(), t.Month(), 1)
	end := types.ClampedDate(t.Year(), t.Month(), 31)

	occurrences, err := Project([]models.Line{line}, start, end)
	if err != nil {
		return false
	}

	return len(occurrences) > 0
}

// lineSimilarity scores how well a row's text matches a line, in [0, 1].
// Substring containment is scored by the share of the longer string the
// shorter one covers.
func lineSimilarity(row importer.Row, line models.Line) float64 {
	needle := row.Description
	if needle == "" {
		needle = row.Tag
	}

	best := similarity(needle, line.Description)
	for _, tag := range line.TagList() {
		if score := similarity(needle, tag); score > best {
			best = score
		}
	}

	if row.Tag != "" {
		if score := similarity(row.Tag, line.Description); score > best {
			best = score
		}
	}

	return best
}

func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == "" || b == "" {
		return 0
	}

	if a == b {
		return 1
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if strings.Contains(longer, shorter) {
		return float64(len(shorter)) / float64(len(longer))
	}

	return 0
}

var ErrResultIndexOutOfRange = errors.New("the match result index is out of range")

// Reassign links the result at index to the given line. Reassignment is
// the only way a result reaches manual confidence, and it approves the
// result since the user just asserted the link.
func Reassign(results []MatchResult, index int, lineID uuid.UUID) ([]MatchResult, error) {
	if index < 0 || index >= len(results) {
		return nil, ErrResultIndexOutOfRange
	}

	out := slices.Clone(results)
	out[index].LineID = &lineID
	out[index].Confidence = models.ConfidenceManual
	out[index].Approved = true

	return out, nil
}

// SetApproved sets the approved flag of the result at index.
func SetApproved(results []MatchResult, index int, approved bool) ([]MatchResult, error) {
	if index < 0 || index >= len(results) {
		return nil, ErrResultIndexOutOfRange
	}

	out := slices.Clone(results)
	out[index].Approved = approved

	return out, nil
}

// ApproveTier approves every result of the given confidence tier.
func ApproveTier(results []MatchResult, tier models.Confidence) []MatchResult {
	out := slices.Clone(results)
	for i := range out {
		if out[i].Confidence == tier {
			out[i].Approved = true
		}
	}

	return out
}
