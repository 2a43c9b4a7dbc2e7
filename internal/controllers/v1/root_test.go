package v1_test

import (
	"net/http"
	"testing"
	"time"

	v1 "github.com/cashplan/backend/internal/controllers/v1"
	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/cashplan/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestGetV1() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), "http://example.com/v1/workspaces", response.Links.Workspaces)
	assert.Equal(suite.T(), "http://example.com/v1/lines", response.Links.Lines)
	assert.Equal(suite.T(), "http://example.com/v1/actuals", response.Links.Actuals)
	assert.Equal(suite.T(), "http://example.com/v1/tag-mappings", response.Links.TagMappings)
	assert.Equal(suite.T(), "http://example.com/v1/tags", response.Links.Tags)
	assert.Equal(suite.T(), "http://example.com/v1/projection", response.Links.Projection)
	assert.Equal(suite.T(), "http://example.com/v1/envelope", response.Links.Envelope)
	assert.Equal(suite.T(), "http://example.com/v1/comparison", response.Links.Comparison)
	assert.Equal(suite.T(), "http://example.com/v1/import", response.Links.Import)
	assert.Equal(suite.T(), "http://example.com/v1/backup", response.Links.Backup)
}

func (suite *TestSuiteStandard) TestOptionsV1() {
	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1", "")
	assert.Equal(suite.T(), http.StatusNoContent, r.Code)
	assert.Equal(suite.T(), "OPTIONS, GET, DELETE", r.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestCleanup() {
	w := createTestWorkspace(suite.T(), v1.WorkspaceEditable{})
	line := createTestLine(suite.T(), v1.LineEditable{
		WorkspaceID: w.Data.ID,
		Amount:      decimal.NewFromInt(100),
		StartDate:   types.NewDate(2026, time.January, 1),
	})
	lineID := line.Data.ID
	_ = createTestActual(suite.T(), v1.ActualEditable{
		WorkspaceID: w.Data.ID,
		LineID:      &lineID,
		Amount:      decimal.NewFromInt(95),
		Tags:        "cleanup",
	})
	_ = createTestTagMapping(suite.T(), v1.TagMappingEditable{
		WorkspaceID: w.Data.ID,
	})

	r := test.Request(suite.T(), http.MethodDelete, "http://example.com/v1?confirm=yes-please-delete-everything", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	// Verify that all resources are gone
	tests := []struct {
		name  string
		count func() int64
	}{
		{"workspaces", func() int64 { var c int64; models.DB.Model(&models.Workspace{}).Count(&c); return c }},
		{"lines", func() int64 { var c int64; models.DB.Model(&models.Line{}).Count(&c); return c }},
		{"actuals", func() int64 { var c int64; models.DB.Model(&models.Actual{}).Count(&c); return c }},
		{"tag usage", func() int64 { var c int64; models.DB.Model(&models.TagUsage{}).Count(&c); return c }},
		{"tag mappings", func() int64 { var c int64; models.DB.Model(&models.TagMapping{}).Count(&c); return c }},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			assert.Equal(t, int64(0), tt.count())
		})
	}
}

func (suite *TestSuiteStandard) TestCleanupFails() {
	tests := []struct {
		name    string
		confirm string
	}{
		{"Confirmation missing", ""},
		{"Confirmation wrong", "confirm=on-second-thought-no"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodDelete, "http://example.com/v1?"+tt.confirm, "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)

			var response struct {
				Error string `json:"error"`
			}
			test.DecodeResponse(t, &r, &response)
			assert.Equal(t, "the confirmation for the cleanup API call was incorrect", response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestCleanupDBClosed() {
	suite.CloseDB()

	r := test.Request(suite.T(), http.MethodDelete, "http://example.com/v1?confirm=yes-please-delete-everything", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)
}
