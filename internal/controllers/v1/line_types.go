package v1

import (
	"fmt"

	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	cp_uuid "github.com/cashplan/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LineEditable struct {
	WorkspaceID uuid.UUID        `json:"workspaceId" example:"550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // ID of the workspace
	Description string           `json:"description" example:"Rent" default:""`                      // A short description
	Tags        string           `json:"tags" example:"housing,fixed" default:""`                    // Comma separated tags, the first one is the primary grouping key
	Direction   models.Direction `json:"direction" example:"expense"`                                // Flow direction, income or expense
	Amount      decimal.Decimal  `json:"amount" example:"1200" minimum:"0" multipleOf:"0.00000001"`  // Non-negative magnitude per occurrence
	Frequency   models.Frequency `json:"frequency" example:"monthly"`                                // How often the line recurs
	StartDate   types.Date       `json:"startDate" example:"2026-01-01"`                             // First day the line is active
	EndDate     *types.Date      `json:"endDate" example:"2026-12-31"`                               // Last day the line is active, inclusive. Null means indefinite.
}

// model returns the database resource for the API representation of the editable fields
func (editable LineEditable) model() models.Line {
	return models.Line{
		WorkspaceID: editable.WorkspaceID,
		Description: editable.Description,
		Tags:        editable.Tags,
		Direction:   editable.Direction,
		Amount:      editable.Amount,
		Frequency:   editable.Frequency,
		StartDate:   editable.StartDate,
		EndDate:     editable.EndDate,
	}
}

type LineLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/lines/af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"`              // The line itself
	Workspace string `json:"workspace" example:"https://example.com/api/v1/workspaces/550dc009-cea6-4c12-b2a5-03446eb7b7cf"`    // The workspace this line belongs to
	Actuals   string `json:"actuals" example:"https://example.com/api/v1/actuals?line=af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"`    // Actuals matched to this line
}

// Line is the representation of a Line in API v1.
type Line struct {
	models.DefaultModel
	LineEditable
	Links LineLinks `json:"links"`
}

// newLine returns the API v1 representation of the resource
func newLine(c *gin.Context, model models.Line) Line {
	url := c.GetString(string(models.DBContextURL))

	return Line{
		DefaultModel: model.DefaultModel,
		LineEditable: LineEditable{
			WorkspaceID: model.WorkspaceID,
			Description: model.Description,
			Tags:        model.Tags,
			Direction:   model.Direction,
			Amount:      model.Amount,
			Frequency:   model.Frequency,
			StartDate:   model.StartDate,
			EndDate:     model.EndDate,
		},
		Links: LineLinks{
			Self:      fmt.Sprintf("%s/v1/lines/%s", url, model.ID),
			Workspace: fmt.Sprintf("%s/v1/workspaces/%s", url, model.WorkspaceID),
			Actuals:   fmt.Sprintf("%s/v1/actuals?line=%s", url, model.ID),
		},
	}
}

type LineListResponse struct {
	Data       []Line      `json:"data"`                                                          // List of lines
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type LineCreateResponse struct {
	Error *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []LineResponse `json:"data"`                                                          // List of created Lines
}

func (l *LineCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	l.Data = append(l.Data, LineResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type LineResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this line
	Data  *Line   `json:"data"`                                                          // The Line data, if creation was successful
}

type LineQueryFilter struct {
	WorkspaceID cp_uuid.UUID     `form:"workspace"`                    // ID of the workspace
	Description string           `form:"description" filterField:"false"` // Description contains this string
	Tag         string           `form:"tag" filterField:"false"`      // Has this tag
	Direction   models.Direction `form:"direction"`                    // Flow direction
	Frequency   models.Frequency `form:"frequency"`                    // Recurrence frequency
	Offset      uint             `form:"offset" filterField:"false"`   // The offset of the first Line returned. Defaults to 0.
	Limit       int              `form:"limit" filterField:"false"`    // Maximum number of Lines to return. Defaults to 50.
}

func (f LineQueryFilter) model() (models.Line, error) {
	if f.Direction != "" && !f.Direction.Valid() {
		return models.Line{}, errLineDirectionInvalid
	}

	if f.Frequency != "" && !f.Frequency.Valid() {
		return models.Line{}, errLineFrequencyInvalid
	}

	return models.Line{
		WorkspaceID: f.WorkspaceID.UUID,
		Direction:   f.Direction,
		Frequency:   f.Frequency,
	}, nil
}
