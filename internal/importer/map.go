package importer

import (
	"strings"
)

// Column name candidates, checked case-insensitively in order.
var (
	dateColumns        = []string{"date", "transaction date", "booking date", "value date", "posted", "datum"}
	amountColumns      = []string{"amount", "value", "sum", "betrag"}
	descriptionColumns = []string{"description", "memo", "payee", "narrative", "note", "text"}
	tagColumns         = []string{"category", "tag", "categories"}
)

// Normalize maps a parsed table into normalized rows.
//
// formatHint names a date layout to try first, pass "" to auto-detect.
// Rows with an unparseable date or amount are skipped and counted, they
// never abort the import.
func Normalize(table Table, formatHint string) Result {
	result := Result{
		Rows:        make([]Row, 0, len(table.Rows)),
		TotalRows:   table.TotalRows,
		SkippedRows: table.SkippedRows,
		Errors:      append(make([]RowError, 0, len(table.Errors)), table.Errors...),
	}

	dateColumn := findColumn(table.Headers, dateColumns)
	amountColumn := findColumn(table.Headers, amountColumns)

	if dateColumn == "" || amountColumn == "" {
		result.SkippedRows += len(table.Rows)
		result.Errors = append(result.Errors, RowError{
			Line:  1,
			Error: "no date or amount column could be detected in the headers",
		})
		return result
	}

	descriptionColumn := findColumn(table.Headers, descriptionColumns)
	tagColumn := findColumn(table.Headers, tagColumns)

	layout := formatHint
	if layout == "" {
		samples := make([]string, 0, 10)
		for _, row := range table.Rows {
			if len(samples) == cap(samples) {
				break
			}
			samples = append(samples, row[dateColumn])
		}

		detected, err := DetectDateFormat(samples)
		if err == nil {
			layout = detected
		}
		// On ambiguity the per-row fallback walks the ordered layout
		// list anyway, the host offers a manual picker on top
	}
	result.DateLayout = layout

	for i, row := range table.Rows {
		date := ParseDate(row[dateColumn], layout)
		if date == nil {
			result.SkippedRows++
			result.Errors = append(result.Errors, RowError{
				Line:  i + 2,
				Error: "could not parse date: " + row[dateColumn],
			})
			continue
		}

		amount := ParseAmount(row[amountColumn])
		if amount == nil {
			result.SkippedRows++
			result.Errors = append(result.Errors, RowError{
				Line:  i + 2,
				Error: "could not parse amount: " + row[amountColumn],
			})
			continue
		}

		result.Rows = append(result.Rows, Row{
			Date:         *date,
			Amount:       amount.Abs(),
			OriginalSign: amount.Sign(),
			Tag:          strings.TrimSpace(row[tagColumn]),
			Description:  strings.TrimSpace(row[descriptionColumn]),
			Raw:          row,
		})
	}

	return result
}

func findColumn(headers []string, candidates []string) string {
	for _, candidate := range candidates {
		for _, header := range headers {
			if strings.EqualFold(strings.TrimSpace(header), candidate) {
				return header
			}
		}
	}

	return ""
}
