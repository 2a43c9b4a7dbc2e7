package v1

import (
	"fmt"

	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WorkspaceEditable struct {
	Name            string          `json:"name" example:"Household" default:""`                                     // Name of the workspace, must be unique
	Note            string          `json:"note" example:"Shared finances for the flat" default:""`                  // A longer description
	Currency        string          `json:"currency" example:"€" default:""`                                         // The currency symbol used for display
	StartingBalance decimal.Decimal `json:"startingBalance" example:"5000" minimum:"0.00000001" multipleOf:"0.00000001"` // The balance the envelope forecast burns down from
	StartDate       types.Date      `json:"startDate" example:"2026-01-01"`                                          // The date the plan starts at
}

// model returns the database resource for the API representation of the editable fields
func (editable WorkspaceEditable) model() models.Workspace {
	return models.Workspace{
		Name:            editable.Name,
		Note:            editable.Note,
		Currency:        editable.Currency,
		StartingBalance: editable.StartingBalance,
		StartDate:       editable.StartDate,
	}
}

type WorkspaceLinks struct {
	Self        string `json:"self" example:"https://example.com/api/v1/workspaces/550dc009-cea6-4c12-b2a5-03446eb7b7cf"`          // The workspace itself
	Lines       string `json:"lines" example:"https://example.com/api/v1/lines?workspace=550dc009-cea6-4c12-b2a5-03446eb7b7cf"`    // Lines for this workspace
	Actuals     string `json:"actuals" example:"https://example.com/api/v1/actuals?workspace=550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // Actuals for this workspace
	Projection  string `json:"projection" example:"https://example.com/api/v1/projection?workspace=550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // Projected occurrences for this workspace
	Envelope    string `json:"envelope" example:"https://example.com/api/v1/envelope?workspace=550dc009-cea6-4c12-b2a5-03446eb7b7cf"`     // Envelope forecast for this workspace
	Comparison  string `json:"comparison" example:"https://example.com/api/v1/comparison?workspace=550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // Budgeted vs actual comparison for this workspace
	Backup      string `json:"backup" example:"https://example.com/api/v1/backup?workspace=550dc009-cea6-4c12-b2a5-03446eb7b7cf"`         // Snapshot export for this workspace
}

// Workspace is the representation of a Workspace in API v1.
type Workspace struct {
	models.DefaultModel
	WorkspaceEditable
	Links WorkspaceLinks `json:"links"`
}

// newWorkspace returns the API v1 representation of the resource
func newWorkspace(c *gin.Context, model models.Workspace) Workspace {
	url := c.GetString(string(models.DBContextURL))

	return Workspace{
		DefaultModel: model.DefaultModel,
		WorkspaceEditable: WorkspaceEditable{
			Name:            model.Name,
			Note:            model.Note,
			Currency:        model.Currency,
			StartingBalance: model.StartingBalance,
			StartDate:       model.StartDate,
		},
		Links: WorkspaceLinks{
			Self:       fmt.Sprintf("%s/v1/workspaces/%s", url, model.ID),
			Lines:      fmt.Sprintf("%s/v1/lines?workspace=%s", url, model.ID),
			Actuals:    fmt.Sprintf("%s/v1/actuals?workspace=%s", url, model.ID),
			Projection: fmt.Sprintf("%s/v1/projection?workspace=%s", url, model.ID),
			Envelope:   fmt.Sprintf("%s/v1/envelope?workspace=%s", url, model.ID),
			Comparison: fmt.Sprintf("%s/v1/comparison?workspace=%s", url, model.ID),
			Backup:     fmt.Sprintf("%s/v1/backup?workspace=%s", url, model.ID),
		},
	}
}

type WorkspaceListResponse struct {
	Data       []Workspace `json:"data"`                                                          // List of workspaces
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type WorkspaceCreateResponse struct {
	Error *string             `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []WorkspaceResponse `json:"data"`                                                          // List of created Workspaces
}

func (w *WorkspaceCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	w.Data = append(w.Data, WorkspaceResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type WorkspaceResponse struct {
	Error *string    `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this workspace
	Data  *Workspace `json:"data"`                                                          // The Workspace data, if creation was successful
}

type WorkspaceQueryFilter struct {
	Name     string `form:"name" filterField:"false"`     // Name contains this string
	Note     string `form:"note" filterField:"false"`     // Note contains this string
	Currency string `form:"currency"`                     // Currency of the workspace
	Offset   uint   `form:"offset" filterField:"false"`   // The offset of the first Workspace returned. Defaults to 0.
	Limit    int    `form:"limit" filterField:"false"`    // Maximum number of Workspaces to return. Defaults to 50.
}

func (f WorkspaceQueryFilter) model() (models.Workspace, error) {
	return models.Workspace{
		Currency: f.Currency,
	}, nil
}
