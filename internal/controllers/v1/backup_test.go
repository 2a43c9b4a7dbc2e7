package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/cashplan/backend/internal/backup"
	v1 "github.com/cashplan/backend/internal/controllers/v1"
	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/cashplan/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestBackupOptions() {
	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/backup", "")
	assert.Equal(suite.T(), http.StatusNoContent, r.Code)
	assert.Equal(suite.T(), "OPTIONS, GET, POST", r.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestBackupExport() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{
		Note:      "Snapshot me",
		Currency:  "€",
		StartDate: types.NewDate(2026, time.January, 1),
	})

	line := createTestLine(suite.T(), v1.LineEditable{
		WorkspaceID: w.Data.ID,
		Description: "Rent",
		Tags:        "housing",
		Amount:      decimal.NewFromInt(1200),
		Frequency:   models.FrequencyMonthly,
		StartDate:   types.NewDate(2026, time.January, 1),
	})
	lineID := line.Data.ID

	_ = createTestActual(suite.T(), v1.ActualEditable{
		WorkspaceID: w.Data.ID,
		LineID:      &lineID,
		Date:        types.NewDate(2026, time.January, 31),
		Amount:      decimal.NewFromInt(1200),
		Approved:    true,
	})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/backup?workspace=%s", w.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var snapshot backup.Snapshot
	test.DecodeResponse(suite.T(), &r, &snapshot)

	assert.Equal(suite.T(), backup.CurrentVersion, snapshot.Version)
	assert.False(suite.T(), snapshot.ExportedAt.IsZero())

	assert.Equal(suite.T(), w.Data.Name, snapshot.Workspace.Name)
	assert.Equal(suite.T(), "Snapshot me", snapshot.Workspace.Note)
	assert.Equal(suite.T(), "€", snapshot.Workspace.Currency)

	require.Len(suite.T(), snapshot.Lines, 1)
	assert.Equal(suite.T(), lineID, snapshot.Lines[0].ID)
	assert.Equal(suite.T(), "Rent", snapshot.Lines[0].Description)

	require.Len(suite.T(), snapshot.Actuals, 1)
	require.NotNil(suite.T(), snapshot.Actuals[0].LineID)
	assert.Equal(suite.T(), lineID, *snapshot.Actuals[0].LineID)

	// The plan has started, so the snapshot carries a comparison
	assert.NotNil(suite.T(), snapshot.Comparison)
}

func (suite *TestSuiteStandard) TestBackupExportFails() {
	tests := []struct {
		name          string
		query         string
		expectedError string
		status        int
	}{
		{"No workspace", "", "the workspace parameter must be set", http.StatusBadRequest},
		{"Non-existing workspace", fmt.Sprintf("workspace=%s", uuid.New()), "there is no workspace matching your query", http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/backup?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, tt.status)

			var response struct {
				Error string `json:"error"`
			}
			test.DecodeResponse(t, &r, &response)
			assert.Equal(t, tt.expectedError, response.Error)
		})
	}
}

// TestBackupRestore exports a workspace and restores the snapshot as a
// new workspace, verifying that line references are remapped.
func (suite *TestSuiteStandard) TestBackupRestore() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{
		StartDate: types.NewDate(2026, time.January, 1),
	})

	line := createTestLine(suite.T(), v1.LineEditable{
		WorkspaceID: w.Data.ID,
		Description: "Groceries",
		Tags:        "groceries",
		Amount:      decimal.NewFromInt(400),
		Frequency:   models.FrequencyMonthly,
		StartDate:   types.NewDate(2026, time.January, 1),
	})
	lineID := line.Data.ID

	_ = createTestActual(suite.T(), v1.ActualEditable{
		WorkspaceID: w.Data.ID,
		LineID:      &lineID,
		Date:        types.NewDate(2026, time.January, 20),
		Amount:      decimal.NewFromFloat(397.23),
		Approved:    true,
	})

	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/backup?workspace=%s", w.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var snapshot backup.Snapshot
	test.DecodeResponse(suite.T(), &r, &snapshot)

	// Workspace names are unique, the restore creates a fresh one
	snapshot.Workspace.Name = uuid.NewString()

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/backup", snapshot)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var restored v1.RestoreResponse
	test.DecodeResponse(suite.T(), &r, &restored)
	require.NotNil(suite.T(), restored.Data)
	assert.NotEqual(suite.T(), w.Data.ID, restored.Data.ID)
	assert.Equal(suite.T(), snapshot.Workspace.Name, restored.Data.Name)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/lines?workspace=%s", restored.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var lines v1.LineListResponse
	test.DecodeResponse(suite.T(), &r, &lines)
	require.Len(suite.T(), lines.Data, 1)
	assert.NotEqual(suite.T(), lineID, lines.Data[0].ID)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/actuals?workspace=%s", restored.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var actuals v1.ActualListResponse
	test.DecodeResponse(suite.T(), &r, &actuals)
	require.Len(suite.T(), actuals.Data, 1)
	require.NotNil(suite.T(), actuals.Data[0].LineID)
	assert.Equal(suite.T(), lines.Data[0].ID, *actuals.Data[0].LineID)
	assert.True(suite.T(), actuals.Data[0].Approved)
}

// TestBackupRestoreMigration restores a version 1 snapshot. The
// workspace balance field is renamed and the actuals get a direction
// derived from their matched line.
func (suite *TestSuiteStandard) TestBackupRestoreMigration() {
	payload := fmt.Sprintf(`{
		"version": 1,
		"workspace": {
			"name": %q,
			"currency": "€",
			"balance": "2500",
			"startDate": "2026-01-01"
		},
		"lines": [
			{
				"id": "af892e10-7e0a-4fb8-b1bc-4b6d88401ed9",
				"description": "Salary",
				"direction": "income",
				"amount": "3000",
				"frequency": "monthly",
				"startDate": "2026-01-01"
			}
		],
		"actuals": [
			{
				"lineId": "af892e10-7e0a-4fb8-b1bc-4b6d88401ed9",
				"date": "2026-01-28",
				"amount": "3000"
			},
			{
				"date": "2026-01-05",
				"amount": "12.5"
			}
		]
	}`, uuid.NewString())

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/backup", payload)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var restored v1.RestoreResponse
	test.DecodeResponse(suite.T(), &r, &restored)
	require.NotNil(suite.T(), restored.Data)
	assert.True(suite.T(), restored.Data.StartingBalance.Equal(decimal.NewFromInt(2500)))

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/actuals?workspace=%s", restored.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var actuals v1.ActualListResponse
	test.DecodeResponse(suite.T(), &r, &actuals)
	require.Len(suite.T(), actuals.Data, 2)

	// Sorted by date, newest first. The matched actual inherits the
	// line's direction, the unbudgeted one defaults to expense.
	assert.Equal(suite.T(), models.DirectionIncome, actuals.Data[0].Direction)
	require.NotNil(suite.T(), actuals.Data[0].LineID)
	assert.Equal(suite.T(), models.DirectionExpense, actuals.Data[1].Direction)
	assert.Nil(suite.T(), actuals.Data[1].LineID)
}

func (suite *TestSuiteStandard) TestBackupRestoreFails() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{
		StartDate: types.NewDate(2026, time.January, 1),
	})

	tests := []struct {
		name          string
		body          string
		expectedError string
	}{
		{"No version", `{"workspace":{"name":"No version"}}`, "the snapshot has no version field"},
		{"Unsupported version", `{"version":99}`, "the snapshot version is not supported: 99"},
		{"Empty workspace name", `{"version":3,"workspace":{"name":""}}`, "workspace.name: must not be empty"},
		{"Missing start date", `{"version":3,"workspace":{"name":"No start","startingBalance":"0"}}`, "workspace.startDate: field is missing"},
		{"Invalid line direction", fmt.Sprintf(`{"version":3,"workspace":{"name":%q,"startingBalance":"0","startDate":"2026-01-01"},"lines":[{"direction":"sideways"}]}`, uuid.NewString()), `lines[0].direction: "sideways" is not income or expense`},
		{"Negative actual amount", fmt.Sprintf(`{"version":3,"workspace":{"name":%q,"startingBalance":"0","startDate":"2026-01-01"},"actuals":[{"date":"2026-01-05","amount":"-1"}]}`, uuid.NewString()), "actuals[0].amount: must not be negative"},
		{"Duplicate workspace name", fmt.Sprintf(`{"version":3,"workspace":{"name":%q,"startingBalance":"0","startDate":"2026-01-01"}}`, w.Data.Name), "the workspace name must be unique"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/backup", tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)

			var response v1.RestoreResponse
			test.DecodeResponse(t, &r, &response)
			require.NotNil(t, response.Error)
			assert.Equal(t, tt.expectedError, *response.Error)
		})
	}
}
