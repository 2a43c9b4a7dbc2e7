package v1_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	v1 "github.com/cashplan/backend/internal/controllers/v1"
	"github.com/cashplan/backend/internal/importer"
	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/planner"
	"github.com/cashplan/backend/internal/types"
	"github.com/cashplan/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `Date,Amount,Description,Category
2026-01-31,-1200.00,Landlord January,housing
2026-01-05,-42.17,REWE SAGT DANKE,
2026-02-03,3000.00,ACME Corp,salary
not-a-date,-5.00,Broken row,
`

func (suite *TestSuiteStandard) TestImportGet() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/import", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ImportResponse
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), "http://example.com/v1/import/preview", response.Links.Preview)
	assert.Equal(suite.T(), "http://example.com/v1/import/commit", response.Links.Commit)
}

func (suite *TestSuiteStandard) TestImportPreview() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{
		StartDate: types.NewDate(2026, time.January, 1),
	})

	rent := createTestLine(suite.T(), v1.LineEditable{
		WorkspaceID: w.Data.ID,
		Description: "Rent",
		Tags:        "housing,fixed",
		Direction:   models.DirectionExpense,
		Amount:      decimal.NewFromInt(1200),
		Frequency:   models.FrequencyMonthly,
		StartDate:   types.NewDate(2026, time.January, 1),
	})

	salary := createTestLine(suite.T(), v1.LineEditable{
		WorkspaceID: w.Data.ID,
		Description: "Salary",
		Tags:        "salary",
		Direction:   models.DirectionIncome,
		Amount:      decimal.NewFromInt(3000),
		Frequency:   models.FrequencyMonthly,
		StartDate:   types.NewDate(2026, time.January, 1),
	})

	body, headers := test.File(suite.T(), "export.csv", testCSV)
	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/import/preview?workspace=%s", w.Data.ID), body, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ImportPreviewResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	data := response.Data
	assert.Equal(suite.T(), 4, data.TotalRows)
	assert.Equal(suite.T(), 1, data.SkippedRows)
	assert.Len(suite.T(), data.Errors, 1)
	assert.Equal(suite.T(), "iso", data.DateLayout)
	assert.NotEmpty(suite.T(), data.CandidateLayouts)

	require.Len(suite.T(), data.Results, 3)

	// The rent row matches exactly: tag, amount and an occurrence in January
	require.NotNil(suite.T(), data.Results[0].LineID)
	assert.Equal(suite.T(), rent.Data.ID, *data.Results[0].LineID)
	assert.Equal(suite.T(), models.ConfidenceHigh, data.Results[0].Confidence)
	assert.True(suite.T(), data.Results[0].Approved)

	// No tag and no line with a close amount
	assert.Nil(suite.T(), data.Results[1].LineID)
	assert.Equal(suite.T(), models.ConfidenceUnmatched, data.Results[1].Confidence)
	assert.False(suite.T(), data.Results[1].Approved)

	require.NotNil(suite.T(), data.Results[2].LineID)
	assert.Equal(suite.T(), salary.Data.ID, *data.Results[2].LineID)
	assert.Equal(suite.T(), models.ConfidenceHigh, data.Results[2].Confidence)
}

// TestImportPreviewTagMappings verifies that tag mappings fill missing
// tag hints from the row description.
func (suite *TestSuiteStandard) TestImportPreviewTagMappings() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{
		StartDate: types.NewDate(2026, time.January, 1),
	})

	groceries := createTestLine(suite.T(), v1.LineEditable{
		WorkspaceID: w.Data.ID,
		Description: "Groceries",
		Tags:        "groceries",
		Direction:   models.DirectionExpense,
		Amount:      decimal.NewFromFloat(42.17),
		Frequency:   models.FrequencyMonthly,
		StartDate:   types.NewDate(2026, time.January, 1),
	})

	_ = createTestTagMapping(suite.T(), v1.TagMappingEditable{
		WorkspaceID: w.Data.ID,
		Priority:    1,
		Match:       "REWE*",
		Tag:         "groceries",
	})

	body, headers := test.File(suite.T(), "export.csv", "Date,Amount,Description\n2026-01-05,-42.17,REWE SAGT DANKE\n")
	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/import/preview?workspace=%s", w.Data.ID), body, headers)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ImportPreviewResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	require.Len(suite.T(), response.Data.Results, 1)
	require.NotNil(suite.T(), response.Data.Results[0].LineID)
	assert.Equal(suite.T(), groceries.Data.ID, *response.Data.Results[0].LineID)
	assert.Equal(suite.T(), models.ConfidenceHigh, response.Data.Results[0].Confidence)
}

func (suite *TestSuiteStandard) TestImportPreviewFails() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{})

	tests := []struct {
		name          string
		query         string
		file          string // name of the uploaded file, no file is sent when empty
		expectedError string
		status        int
	}{
		{"No workspace", "", "export.csv", "the workspace parameter must be set", http.StatusBadRequest},
		{"Non-existing workspace", fmt.Sprintf("workspace=%s", uuid.New()), "export.csv", "there is no workspace matching your query", http.StatusNotFound},
		{"No file", fmt.Sprintf("workspace=%s", w.Data.ID), "", "you must send a file to this endpoint", http.StatusBadRequest},
		{"Wrong file suffix", fmt.Sprintf("workspace=%s", w.Data.ID), "export.xlsx", "this endpoint only supports files of the following types: .csv, .json", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var r httptest.ResponseRecorder
			if tt.file == "" {
				r = test.Request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/import/preview?%s", tt.query), "")
			} else {
				body, headers := test.File(t, tt.file, testCSV)
				r = test.Request(t, http.MethodPost, fmt.Sprintf("http://example.com/v1/import/preview?%s", tt.query), body, headers)
			}

			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.ImportPreviewResponse
			test.DecodeResponse(t, &r, &response)
			require.NotNil(t, response.Error)
			assert.Equal(t, tt.expectedError, *response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestImportCommit() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{
		StartDate: types.NewDate(2026, time.January, 1),
	})

	salary := createTestLine(suite.T(), v1.LineEditable{
		WorkspaceID: w.Data.ID,
		Description: "Salary",
		Tags:        "salary",
		Direction:   models.DirectionIncome,
		Amount:      decimal.NewFromInt(3000),
		Frequency:   models.FrequencyMonthly,
		StartDate:   types.NewDate(2026, time.January, 1),
	})
	salaryID := salary.Data.ID

	editable := v1.ImportCommitEditable{
		WorkspaceID: w.Data.ID,
		Lines: []v1.LineEditable{
			{
				Description: "Rent",
				Tags:        "housing",
				Direction:   models.DirectionExpense,
				Amount:      decimal.NewFromInt(1200),
				Frequency:   models.FrequencyMonthly,
				StartDate:   types.NewDate(2026, time.January, 1),
			},
		},
		Results: []planner.MatchResult{
			{
				Row: importer.Row{
					Date:         types.NewDate(2026, time.February, 3),
					Amount:       decimal.NewFromInt(3000),
					OriginalSign: 1,
					Tag:          "salary",
					Description:  "ACME Corp",
				},
				LineID:     &salaryID,
				Confidence: models.ConfidenceHigh,
				Approved:   true,
			},
			{
				Row: importer.Row{
					Date:         types.NewDate(2026, time.January, 25),
					Amount:       decimal.NewFromInt(100),
					OriginalSign: -1,
					Description:  "Fancy dinner",
				},
				Confidence: models.ConfidenceUnmatched,
				Approved:   true,
			},
			{
				Row: importer.Row{
					Date:        types.NewDate(2026, time.January, 26),
					Amount:      decimal.NewFromInt(7),
					Description: "Not reviewed, not committed",
				},
				Confidence: models.ConfidenceUnmatched,
			},
		},
	}

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/import/commit", editable)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.ImportCommitResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	require.Len(suite.T(), response.Data.Lines, 1)
	assert.Equal(suite.T(), "Rent", response.Data.Lines[0].Description)
	assert.Equal(suite.T(), w.Data.ID, response.Data.Lines[0].WorkspaceID)

	// Only the approved results are committed
	require.Len(suite.T(), response.Data.Actuals, 2)

	matched := response.Data.Actuals[0]
	require.NotNil(suite.T(), matched.LineID)
	assert.Equal(suite.T(), salaryID, *matched.LineID)
	assert.Equal(suite.T(), models.DirectionIncome, matched.Direction)
	assert.Equal(suite.T(), models.ConfidenceHigh, matched.Confidence)
	assert.True(suite.T(), matched.Approved)

	unbudgeted := response.Data.Actuals[1]
	assert.Nil(suite.T(), unbudgeted.LineID)
	assert.Equal(suite.T(), models.DirectionExpense, unbudgeted.Direction)
}

func (suite *TestSuiteStandard) TestImportCommitFails() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"No body", "", http.StatusBadRequest},
		{"Non-existing workspace", v1.ImportCommitEditable{WorkspaceID: uuid.New()}, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/import/commit", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}
