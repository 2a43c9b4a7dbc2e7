package v1_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	v1 "github.com/cashplan/backend/internal/controllers/v1"
	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/cashplan/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestActual(t *testing.T, a v1.ActualEditable, expectedStatus ...int) v1.ActualResponse {
	if a.WorkspaceID == uuid.Nil {
		a.WorkspaceID = createTestWorkspace(t, v1.WorkspaceEditable{}).Data.ID
	}

	if a.Direction == "" {
		a.Direction = models.DirectionExpense
	}

	if a.Date.IsZero() {
		a.Date = types.NewDate(2026, time.January, 15)
	}

	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v1.ActualEditable{a}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/actuals", body)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var actual v1.ActualCreateResponse
	test.DecodeResponse(t, &r, &actual)

	if r.Code == http.StatusCreated {
		return actual.Data[0]
	}

	return v1.ActualResponse{}
}

// TestActualsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestActualsDBClosed() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{})

	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				createTestActual(t, v1.ActualEditable{WorkspaceID: w.Data.ID}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v1/actuals", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.ActualListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Contains(t, *response.Error, models.ErrGeneral.Error())
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

// TestActualsOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestActualsOptions() {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"No Actual with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Actual exists", createTestActual(suite.T(), v1.ActualEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/actuals", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "OPTIONS, GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

// TestActualsGetSingle verifies that requests for the resource endpoints are
// handled correctly.
func (suite *TestSuiteStandard) TestActualsGetSingle() {
	a := createTestActual(suite.T(), v1.ActualEditable{})

	tests := []struct {
		name   string
		id     string
		status int
		method string
	}{
		{"GET Existing Actual", a.Data.ID.String(), http.StatusOK, http.MethodGet},
		{"GET ID nil", uuid.Nil.String(), http.StatusNotFound, http.MethodGet},
		{"GET No Actual with this ID", uuid.New().String(), http.StatusNotFound, http.MethodGet},
		{"GET Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodGet},
		{"PATCH Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodPatch},
		{"DELETE Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodDelete},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, tt.method, fmt.Sprintf("http://example.com/v1/actuals/%s", tt.id), "")

			var actual v1.ActualResponse
			test.DecodeResponse(t, &r, &actual)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestActualsGetFilter() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{})
	line := createTestLine(suite.T(), v1.LineEditable{WorkspaceID: w.Data.ID})
	lineID := line.Data.ID

	_ = createTestActual(suite.T(), v1.ActualEditable{
		WorkspaceID: w.Data.ID,
		LineID:      &lineID,
		Date:        types.NewDate(2026, time.January, 5),
		Amount:      decimal.NewFromInt(42),
		Tags:        "groceries",
		Description: "REWE SAGT DANKE",
	})

	_ = createTestActual(suite.T(), v1.ActualEditable{
		WorkspaceID: w.Data.ID,
		Date:        types.NewDate(2026, time.February, 10),
		Amount:      decimal.NewFromInt(60),
		Tags:        "dining",
	})

	_ = createTestActual(suite.T(), v1.ActualEditable{
		WorkspaceID: w.Data.ID,
		Date:        types.NewDate(2026, time.March, 20),
		Direction:   models.DirectionIncome,
		Amount:      decimal.NewFromInt(3000),
		Tags:        "salary",
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Workspace", fmt.Sprintf("workspace=%s", w.Data.ID), 3},
		{"Workspace Not Existing", "workspace=c9e4ee7a-e702-4f92-b168-11a95b22c7aa", 0},
		{"Line", fmt.Sprintf("line=%s", lineID), 1},
		{"Unbudgeted", "unbudgeted=true", 2},
		{"Direction income", "direction=income", 1},
		{"Confidence manual", "confidence=manual", 1},
		{"Confidence unmatched", "confidence=unmatched", 2},
		{"Exact date", "date=2026-02-10", 1},
		{"From date", "fromDate=2026-02-01", 2},
		{"Until date", "untilDate=2026-01-31", 1},
		{"Date window", "fromDate=2026-01-01&untilDate=2026-02-28", 2},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var re v1.ActualListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("/v1/actuals?%s", tt.query), "")
			test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
			test.DecodeResponse(t, &r, &re)

			assert.Equal(t, tt.len, len(re.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

func (suite *TestSuiteStandard) TestActualsCreate() {
	line := createTestLine(suite.T(), v1.LineEditable{})
	lineID := line.Data.ID

	tests := []struct {
		name       string
		editable   v1.ActualEditable
		confidence models.Confidence
	}{
		{
			"With line reference",
			v1.ActualEditable{WorkspaceID: line.Data.WorkspaceID, LineID: &lineID},
			models.ConfidenceManual,
		},
		{
			"Without line reference",
			v1.ActualEditable{WorkspaceID: line.Data.WorkspaceID},
			models.ConfidenceUnmatched,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			a := createTestActual(t, tt.editable)
			assert.Equal(t, tt.confidence, a.Data.Confidence)
		})
	}
}

func (suite *TestSuiteStandard) TestActualsCreateFails() {
	tests := []struct {
		name     string
		body     any
		status   int
		testFunc func(t *testing.T, a v1.ActualCreateResponse)
	}{
		{
			"Broken Body", `[{ "description": 2 }]`, http.StatusBadRequest,
			func(t *testing.T, a v1.ActualCreateResponse) {
				assert.Equal(t, "json: cannot unmarshal number into Go struct field ActualEditable.description of type string", *a.Error)
			},
		},
		{
			"No body", "", http.StatusBadRequest,
			func(t *testing.T, a v1.ActualCreateResponse) {
				assert.Equal(t, "the request body must not be empty", *a.Error)
			},
		},
		{
			"No Workspace",
			`[{ "description": "Some actual", "direction": "expense", "date": "2026-01-05" }]`,
			http.StatusNotFound,
			func(t *testing.T, a v1.ActualCreateResponse) {
				assert.Equal(t, "there is no workspace matching your query", *a.Data[0].Error)
			},
		},
		{
			"Non-existing Line",
			fmt.Sprintf(`[{ "workspaceId": %q, "lineId": "ea85ad1a-3679-4ced-b83b-89566c12ece9", "direction": "expense", "date": "2026-01-05" }]`, createTestWorkspace(suite.T(), v1.WorkspaceEditable{}).Data.ID),
			http.StatusNotFound,
			func(t *testing.T, a v1.ActualCreateResponse) {
				assert.Equal(t, "there is no line matching your query", *a.Data[0].Error)
			},
		},
		{
			"Negative amount",
			fmt.Sprintf(`[{ "workspaceId": %q, "direction": "expense", "date": "2026-01-05", "amount": -5 }]`, createTestWorkspace(suite.T(), v1.WorkspaceEditable{}).Data.ID),
			http.StatusBadRequest,
			func(t *testing.T, a v1.ActualCreateResponse) {
				assert.Equal(t, models.ErrActualAmountNegative.Error(), *a.Data[0].Error)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/actuals", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			var a v1.ActualCreateResponse
			test.DecodeResponse(t, &r, &a)

			if tt.testFunc != nil {
				tt.testFunc(t, a)
			}
		})
	}
}

// Verify that updating actuals works as desired
func (suite *TestSuiteStandard) TestActualsUpdate() {
	actual := createTestActual(suite.T(), v1.ActualEditable{Description: "Bakery"})
	line := createTestLine(suite.T(), v1.LineEditable{WorkspaceID: actual.Data.WorkspaceID})

	tests := []struct {
		name     string
		body     map[string]any
		testFunc func(t *testing.T, a v1.ActualResponse)
	}{
		{
			"Description, Approved",
			map[string]any{
				"description": "The bakery around the corner",
				"approved":    true,
			},
			func(t *testing.T, a v1.ActualResponse) {
				assert.Equal(t, "The bakery around the corner", a.Data.Description)
				assert.True(t, a.Data.Approved)
			},
		},
		{
			"Relinking sets the confidence to manual",
			map[string]any{
				"lineId": line.Data.ID.String(),
			},
			func(t *testing.T, a v1.ActualResponse) {
				require.NotNil(t, a.Data.LineID)
				assert.Equal(t, line.Data.ID, *a.Data.LineID)
				assert.Equal(t, models.ConfidenceManual, a.Data.Confidence)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, actual.Data.Links.Self, tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var a v1.ActualResponse
			test.DecodeResponse(t, &r, &a)

			if tt.testFunc != nil {
				tt.testFunc(t, a)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestActualsUpdateFails() {
	tests := []struct {
		name   string
		id     string
		body   any
		status int // expected response status
	}{
		{"Invalid type", "", `{"description": 2}`, http.StatusBadRequest},
		{"Broken JSON", "", `{ "description": 2" }`, http.StatusBadRequest},
		{"Non-existing Actual", uuid.New().String(), `{"description": "Not found"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var recorder httptest.ResponseRecorder

			if tt.id == "" {
				actual := createTestActual(suite.T(), v1.ActualEditable{})
				tt.id = actual.Data.ID.String()
			}

			recorder = test.Request(t, http.MethodPatch, fmt.Sprintf("http://example.com/v1/actuals/%s", tt.id), tt.body)
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

// TestActualsDelete verifies all cases for actual deletions.
func (suite *TestSuiteStandard) TestActualsDelete() {
	tests := []struct {
		name   string
		id     string
		status int // expected response status
	}{
		{"Success", "", http.StatusNoContent},
		{"Non-existing Actual", uuid.New().String(), http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var recorder httptest.ResponseRecorder

			if tt.id == "" {
				a := createTestActual(t, v1.ActualEditable{})
				tt.id = a.Data.ID.String()
			}

			recorder = test.Request(t, http.MethodDelete, fmt.Sprintf("http://example.com/v1/actuals/%s", tt.id), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

// TestActualsGetSorted verifies that actuals are sorted by date, newest
// first.
func (suite *TestSuiteStandard) TestActualsGetSorted() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{})

	a1 := createTestActual(suite.T(), v1.ActualEditable{
		WorkspaceID: w.Data.ID,
		Date:        types.NewDate(2026, time.January, 5),
	})

	a2 := createTestActual(suite.T(), v1.ActualEditable{
		WorkspaceID: w.Data.ID,
		Date:        types.NewDate(2026, time.March, 5),
	})

	a3 := createTestActual(suite.T(), v1.ActualEditable{
		WorkspaceID: w.Data.ID,
		Date:        types.NewDate(2026, time.February, 5),
	})

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/actuals", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var actuals v1.ActualListResponse
	test.DecodeResponse(suite.T(), &r, &actuals)

	require.Len(suite.T(), actuals.Data, 3, "Actual list has wrong length")

	assert.Equal(suite.T(), a2.Data.ID, actuals.Data[0].ID)
	assert.Equal(suite.T(), a3.Data.ID, actuals.Data[1].ID)
	assert.Equal(suite.T(), a1.Data.ID, actuals.Data[2].ID)
}
