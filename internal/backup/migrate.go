package backup

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrVersionMissing     = errors.New("the snapshot has no version field")
	ErrVersionUnsupported = errors.New("the snapshot version is not supported")
)

// Migrate upgrades an older snapshot payload to the current schema
// version in place. Fields introduced by later versions get documented
// defaults:
//
//	1 -> 2: the workspace "balance" field is renamed to "startingBalance"
//	2 -> 3: actuals get a "direction" flag, defaulted from the matched
//	        line's direction, or "expense" when the actual is unbudgeted
//
// Payloads already at the current version pass through unchanged.
func Migrate(payload []byte) ([]byte, error) {
	var snapshot map[string]interface{}
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("the payload is not a JSON object: %w", err)
	}

	versionValue, ok := snapshot["version"]
	if !ok {
		return nil, ErrVersionMissing
	}

	versionNumber, ok := versionValue.(float64)
	if !ok {
		return nil, ErrVersionMissing
	}

	version := int(versionNumber)
	if version < 1 || version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersionUnsupported, version)
	}

	if version < 2 {
		migrateBalanceField(snapshot)
	}

	if version < 3 {
		migrateActualDirections(snapshot)
	}

	snapshot["version"] = CurrentVersion

	return json.Marshal(snapshot)
}

// migrateBalanceField renames workspace.balance to
// workspace.startingBalance.
func migrateBalanceField(snapshot map[string]interface{}) {
	workspace, ok := snapshot["workspace"].(map[string]interface{})
	if !ok {
		return
	}

	if balance, ok := workspace["balance"]; ok {
		workspace["startingBalance"] = balance
		delete(workspace, "balance")
	}
}

// migrateActualDirections adds the direction flag to actuals that lack
// one. The matched line's direction is used where a line reference
// exists, everything else defaults to expense since version 2 exports
// only tracked spending.
func migrateActualDirections(snapshot map[string]interface{}) {
	directionByLine := make(map[string]string)
	if lines, ok := snapshot["lines"].([]interface{}); ok {
		for _, value := range lines {
			line, ok := value.(map[string]interface{})
			if !ok {
				continue
			}

			id, _ := line["id"].(string)
			direction, _ := line["direction"].(string)
			if id != "" && direction != "" {
				directionByLine[id] = direction
			}
		}
	}

	actuals, ok := snapshot["actuals"].([]interface{})
	if !ok {
		return
	}

	for _, value := range actuals {
		actual, ok := value.(map[string]interface{})
		if !ok {
			continue
		}

		if _, ok := actual["direction"]; ok {
			continue
		}

		direction := "expense"
		if lineID, ok := actual["lineId"].(string); ok {
			if d, ok := directionByLine[lineID]; ok {
				direction = d
			}
		}

		actual["direction"] = direction
	}
}
