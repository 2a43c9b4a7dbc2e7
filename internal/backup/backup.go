// Package backup implements the versioned snapshot format used for
// export and restore.
//
// A snapshot is validated structurally before any import proceeds and
// rejected with a specific field-level reason on the first failure.
// Older snapshot versions are migrated in place with documented
// defaults, never silently dropped.
package backup

import (
	"time"

	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/planner"
	"github.com/cashplan/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrentVersion is the snapshot schema version this backend writes.
//
// History:
//
//	1: initial format, the workspace balance field was named "balance"
//	2: "balance" renamed to "startingBalance"
//	3: actuals carry an explicit "direction" flag
const CurrentVersion = 3

// Snapshot is a full export of one workspace.
type Snapshot struct {
	Version    int                 `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	Workspace  Workspace           `json:"workspace"`
	Lines      []Line              `json:"lines"`
	Actuals    []Actual            `json:"actuals"`
	Comparison *planner.Comparison `json:"comparison"` // Point-in-time snapshot, not re-derived on load
}

// Workspace is the snapshot form of a workspace.
type Workspace struct {
	Name            string          `json:"name"`
	Note            string          `json:"note"`
	Currency        string          `json:"currency"`
	StartingBalance decimal.Decimal `json:"startingBalance"`
	StartDate       types.Date      `json:"startDate"`
}

// Line is the snapshot form of a line.
type Line struct {
	ID          uuid.UUID        `json:"id"`
	Description string           `json:"description"`
	Tags        string           `json:"tags"`
	Direction   models.Direction `json:"direction"`
	Amount      decimal.Decimal  `json:"amount"`
	Frequency   models.Frequency `json:"frequency"`
	StartDate   types.Date       `json:"startDate"`
	EndDate     *types.Date      `json:"endDate"`
}

// Actual is the snapshot form of an actual.
type Actual struct {
	ID          uuid.UUID         `json:"id"`
	LineID      *uuid.UUID        `json:"lineId"`
	Date        types.Date        `json:"date"`
	Amount      decimal.Decimal   `json:"amount"`
	Direction   models.Direction  `json:"direction"`
	Tags        string            `json:"tags"`
	Description string            `json:"description"`
	RawRecord   string            `json:"rawRecord"`
	Confidence  models.Confidence `json:"confidence"`
	Approved    bool              `json:"approved"`
}

// New builds a snapshot from the persisted resources of a workspace.
func New(workspace models.Workspace, lines []models.Line, actuals []models.Actual, comparison *planner.Comparison) Snapshot {
	snapshot := Snapshot{
		Version:    CurrentVersion,
		ExportedAt: time.Now().In(time.UTC),
		Workspace: Workspace{
			Name:            workspace.Name,
			Note:            workspace.Note,
			Currency:        workspace.Currency,
			StartingBalance: workspace.StartingBalance,
			StartDate:       workspace.StartDate,
		},
		Lines:      make([]Line, 0, len(lines)),
		Actuals:    make([]Actual, 0, len(actuals)),
		Comparison: comparison,
	}

	for _, line := range lines {
		snapshot.Lines = append(snapshot.Lines, Line{
			ID:          line.ID,
			Description: line.Description,
			Tags:        line.Tags,
			Direction:   line.Direction,
			Amount:      line.Amount,
			Frequency:   line.Frequency,
			StartDate:   line.StartDate,
			EndDate:     line.EndDate,
		})
	}

	for _, actual := range actuals {
		snapshot.Actuals = append(snapshot.Actuals, Actual{
			ID:          actual.ID,
			LineID:      actual.LineID,
			Date:        actual.Date,
			Amount:      actual.Amount,
			Direction:   actual.Direction,
			Tags:        actual.Tags,
			Description: actual.Description,
			RawRecord:   actual.RawRecord,
			Confidence:  actual.Confidence,
			Approved:    actual.Approved,
		})
	}

	return snapshot
}
