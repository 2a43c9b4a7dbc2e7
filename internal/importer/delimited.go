package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseDelimited parses comma separated text into a Table.
//
// The first row defines the column names. Quoted fields may contain the
// delimiter and embedded newlines, doubled quotes escape a literal quote.
// Rows whose column count does not match the header are recorded as an
// error and mapped best-effort, never silently corrupted.
func ParseDelimited(text string) Table {
	reader := csv.NewReader(strings.NewReader(text))

	// Column count mismatches are handled here, not by the csv reader
	reader.FieldsPerRecord = -1

	table := Table{
		Headers: make([]string, 0),
		Rows:    make([]Record, 0),
		Errors:  make([]RowError, 0),
	}

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table
	}
	if err != nil {
		table.Errors = append(table.Errors, RowError{Line: 1, Error: fmt.Sprintf("could not read header row: %v", err)})
		return table
	}

	for _, header := range headers {
		table.Headers = append(table.Headers, strings.TrimSpace(header))
	}

	line := 1
	for {
		line++

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			// The reader continues with the next line after a parse
			// error, so the row is dropped and counted, not fatal
			table.TotalRows++
			table.SkippedRows++
			table.Errors = append(table.Errors, RowError{Line: parseErr.Line, Error: parseErr.Err.Error()})
			continue
		}
		if err != nil {
			table.Errors = append(table.Errors, RowError{Line: line, Error: err.Error()})
			break
		}

		table.TotalRows++

		if len(record) != len(table.Headers) {
			table.Errors = append(table.Errors, RowError{
				Line:  line,
				Error: fmt.Sprintf("row has %d columns, expected %d", len(record), len(table.Headers)),
			})
		}

		// Best-effort mapping: surplus columns are dropped, missing
		// ones stay empty
		row := make(Record, len(table.Headers))
		for i, header := range table.Headers {
			if i < len(record) {
				row[header] = strings.TrimSpace(record[i])
			} else {
				row[header] = ""
			}
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}
