package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/shopspring/decimal"
)

// Result is the outcome of validating a snapshot payload.
type Result struct {
	Valid bool      `json:"valid"`
	Error string    `json:"error,omitempty"` // Field-level reason for the first structural failure
	Data  *Snapshot `json:"-"`
}

func invalid(format string, args ...interface{}) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Validate checks a snapshot payload structurally before any import
// proceeds: required fields present, primitive types correct, enum
// fields within the allowed set. It stops at the first failure with a
// specific reason instead of a generic parse error.
//
// Only the current schema version passes, older payloads have to go
// through Migrate first.
func Validate(payload []byte) Result {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return invalid("the payload is not a JSON object")
	}

	versionRaw, ok := raw["version"]
	if !ok {
		return invalid("version: field is missing")
	}

	var version int
	if err := json.Unmarshal(versionRaw, &version); err != nil {
		return invalid("version: must be a number")
	}

	if version != CurrentVersion {
		if version >= 1 && version < CurrentVersion {
			return invalid("version: %d is older than the current version %d, migrate the snapshot first", version, CurrentVersion)
		}
		return invalid("version: %d is not supported", version)
	}

	if exportedAt, ok := raw["exportedAt"]; ok {
		var t time.Time
		if err := json.Unmarshal(exportedAt, &t); err != nil {
			return invalid("exportedAt: must be an RFC 3339 timestamp")
		}
	}

	workspaceRaw, ok := raw["workspace"]
	if !ok {
		return invalid("workspace: field is missing")
	}

	if result := validateWorkspace(workspaceRaw); !result.Valid {
		return result
	}

	var linesRaw []json.RawMessage
	if lines, ok := raw["lines"]; ok {
		if err := json.Unmarshal(lines, &linesRaw); err != nil {
			return invalid("lines: must be an array")
		}
	}

	for i, lineRaw := range linesRaw {
		if result := validateLine(lineRaw, i); !result.Valid {
			return result
		}
	}

	var actualsRaw []json.RawMessage
	if actuals, ok := raw["actuals"]; ok {
		if err := json.Unmarshal(actuals, &actualsRaw); err != nil {
			return invalid("actuals: must be an array")
		}
	}

	for i, actualRaw := range actualsRaw {
		if result := validateActual(actualRaw, i); !result.Valid {
			return result
		}
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return invalid("the payload could not be decoded: %v", err)
	}

	return Result{Valid: true, Data: &snapshot}
}

func validateWorkspace(raw json.RawMessage) Result {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return invalid("workspace: must be an object")
	}

	name, err := stringField(fields, "name")
	if err != nil {
		return invalid("workspace.name: %v", err)
	}
	if name == "" {
		return invalid("workspace.name: must not be empty")
	}

	if _, err := decimalField(fields, "startingBalance"); err != nil {
		return invalid("workspace.startingBalance: %v", err)
	}

	if _, err := dateField(fields, "startDate"); err != nil {
		return invalid("workspace.startDate: %v", err)
	}

	return Result{Valid: true}
}

func validateLine(raw json.RawMessage, index int) Result {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return invalid("lines[%d]: must be an object", index)
	}

	direction, err := stringField(fields, "direction")
	if err != nil {
		return invalid("lines[%d].direction: %v", index, err)
	}
	if !models.Direction(direction).Valid() {
		return invalid("lines[%d].direction: %q is not income or expense", index, direction)
	}

	frequency, err := stringField(fields, "frequency")
	if err != nil {
		return invalid("lines[%d].frequency: %v", index, err)
	}
	if !models.Frequency(frequency).Valid() {
		return invalid("lines[%d].frequency: %q is not a supported frequency", index, frequency)
	}

	amount, err := decimalField(fields, "amount")
	if err != nil {
		return invalid("lines[%d].amount: %v", index, err)
	}
	if amount.IsNegative() {
		return invalid("lines[%d].amount: must not be negative", index)
	}

	start, err := dateField(fields, "startDate")
	if err != nil {
		return invalid("lines[%d].startDate: %v", index, err)
	}

	if endRaw, ok := fields["endDate"]; ok && string(endRaw) != "null" {
		var end types.Date
		if err := json.Unmarshal(endRaw, &end); err != nil {
			return invalid("lines[%d].endDate: must be a date", index)
		}
		if end.Before(start) {
			return invalid("lines[%d].endDate: must not be before the start date", index)
		}
	}

	return Result{Valid: true}
}

func validateActual(raw json.RawMessage, index int) Result {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return invalid("actuals[%d]: must be an object", index)
	}

	if _, err := dateField(fields, "date"); err != nil {
		return invalid("actuals[%d].date: %v", index, err)
	}

	amount, err := decimalField(fields, "amount")
	if err != nil {
		return invalid("actuals[%d].amount: %v", index, err)
	}
	if amount.IsNegative() {
		return invalid("actuals[%d].amount: must not be negative", index)
	}

	direction, err := stringField(fields, "direction")
	if err != nil {
		return invalid("actuals[%d].direction: %v", index, err)
	}
	if !models.Direction(direction).Valid() {
		return invalid("actuals[%d].direction: %q is not income or expense", index, direction)
	}

	if confidenceRaw, ok := fields["confidence"]; ok && string(confidenceRaw) != "null" {
		var confidence string
		if err := json.Unmarshal(confidenceRaw, &confidence); err != nil {
			return invalid("actuals[%d].confidence: must be a string", index)
		}
		if confidence != "" && !models.Confidence(confidence).Valid() {
			return invalid("actuals[%d].confidence: %q is not a confidence tier", index, confidence)
		}
	}

	return Result{Valid: true}
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("field is missing")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("must be a string")
	}

	return s, nil
}

func decimalField(fields map[string]json.RawMessage, name string) (decimal.Decimal, error) {
	raw, ok := fields[name]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("field is missing")
	}

	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return decimal.Decimal{}, fmt.Errorf("must be a decimal number")
	}

	return d, nil
}

func dateField(fields map[string]json.RawMessage, name string) (types.Date, error) {
	raw, ok := fields[name]
	if !ok {
		return types.Date{}, fmt.Errorf("field is missing")
	}

	var d types.Date
	if err := json.Unmarshal(raw, &d); err != nil {
		return types.Date{}, fmt.Errorf("must be a date")
	}

	return d, nil
}
