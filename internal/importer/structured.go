package importer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseStructured parses a JSON array of flat records into a Table.
//
// Record keys map directly to column names. Nested values are not
// supported and are recorded as row errors.
func ParseStructured(text string) Table {
	table := Table{
		Headers: make([]string, 0),
		Rows:    make([]Record, 0),
		Errors:  make([]RowError, 0),
	}

	decoder := json.NewDecoder(strings.NewReader(text))

	// Numbers keep their textual form instead of going through float64
	decoder.UseNumber()

	var records []map[string]interface{}
	if err := decoder.Decode(&records); err != nil {
		table.Errors = append(table.Errors, RowError{Line: 1, Error: fmt.Sprintf("not a valid JSON record array: %v", err)})
		return table
	}

	known := make(map[string]bool)
	for i, record := range records {
		table.TotalRows++

		row := make(Record, len(record))
		ok := true
		for key, value := range record {
			s, err := stringValue(value)
			if err != nil {
				table.Errors = append(table.Errors, RowError{
					Line:  i + 1,
					Error: fmt.Sprintf("field %q: %v", key, err),
				})
				ok = false
				break
			}

			row[key] = s
			if !known[key] {
				known[key] = true
				table.Headers = append(table.Headers, key)
			}
		}

		if !ok {
			table.SkippedRows++
			continue
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}

// stringValue renders a scalar JSON value as its textual form.
func stringValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	default:
		return "", fmt.Errorf("nested values are not supported")
	}
}
