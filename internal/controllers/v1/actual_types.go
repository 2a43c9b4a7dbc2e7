package v1

import (
	"fmt"
	"time"

	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	cp_uuid "github.com/cashplan/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ActualEditable struct {
	WorkspaceID uuid.UUID        `json:"workspaceId" example:"550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // ID of the workspace
	LineID      *uuid.UUID       `json:"lineId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"`      // ID of the matched line. Null for unbudgeted actuals.
	Date        types.Date       `json:"date" example:"2026-01-05"`                                  // Day the transaction happened
	Amount      decimal.Decimal  `json:"amount" example:"42.5" minimum:"0" multipleOf:"0.00000001"`  // Non-negative magnitude
	Direction   models.Direction `json:"direction" example:"expense"`                                // Flow direction, income or expense
	Tags        string           `json:"tags" example:"groceries" default:""`                        // Comma separated tags
	Description string           `json:"description" example:"REWE SAGT DANKE" default:""`           // Description from the import or the user
	RawRecord   string           `json:"rawRecord" default:""`                                       // The original imported record, verbatim
	Approved    bool             `json:"approved" example:"true" default:"false"`                    // Has the match been approved?
}

// model returns the database resource for the API representation of the editable fields
func (editable ActualEditable) model() models.Actual {
	return models.Actual{
		WorkspaceID: editable.WorkspaceID,
		LineID:      editable.LineID,
		Date:        editable.Date,
		Amount:      editable.Amount,
		Direction:   editable.Direction,
		Tags:        editable.Tags,
		Description: editable.Description,
		RawRecord:   editable.RawRecord,
		Approved:    editable.Approved,
	}
}

type ActualLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/actuals/a3f25c43-f97b-453a-a2b4-b9c97a4a301c"`           // The actual itself
	Workspace string `json:"workspace" example:"https://example.com/api/v1/workspaces/550dc009-cea6-4c12-b2a5-03446eb7b7cf"`   // The workspace this actual belongs to
	Line      string `json:"line" example:"https://example.com/api/v1/lines/af892e10-7e0a-4fb8-b1bc-4b6d88401ed9"`             // The matched line. Empty for unbudgeted actuals.
}

// Actual is the representation of an Actual in API v1.
type Actual struct {
	models.DefaultModel
	ActualEditable
	Confidence models.Confidence `json:"confidence" example:"high"` // Confidence tier of the committed match
	Links      ActualLinks       `json:"links"`
}

// newActual returns the API v1 representation of the resource
func newActual(c *gin.Context, model models.Actual) Actual {
	url := c.GetString(string(models.DBContextURL))

	line := ""
	if model.LineID != nil {
		line = fmt.Sprintf("%s/v1/lines/%s", url, *model.LineID)
	}

	return Actual{
		DefaultModel: model.DefaultModel,
		ActualEditable: ActualEditable{
			WorkspaceID: model.WorkspaceID,
			LineID:      model.LineID,
			Date:        model.Date,
			Amount:      model.Amount,
			Direction:   model.Direction,
			Tags:        model.Tags,
			Description: model.Description,
			RawRecord:   model.RawRecord,
			Approved:    model.Approved,
		},
		Confidence: model.Confidence,
		Links: ActualLinks{
			Self:      fmt.Sprintf("%s/v1/actuals/%s", url, model.ID),
			Workspace: fmt.Sprintf("%s/v1/workspaces/%s", url, model.WorkspaceID),
			Line:      line,
		},
	}
}

type ActualListResponse struct {
	Data       []Actual    `json:"data"`                                                          // List of actuals
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type ActualCreateResponse struct {
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []ActualResponse `json:"data"`                                                          // List of created Actuals
}

func (a *ActualCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	a.Data = append(a.Data, ActualResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type ActualResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this actual
	Data  *Actual `json:"data"`                                                          // The Actual data, if creation was successful
}

type ActualQueryFilter struct {
	WorkspaceID cp_uuid.UUID      `form:"workspace"`                      // ID of the workspace
	LineID      cp_uuid.UUID      `form:"line"`                           // ID of the matched line
	Date        time.Time         `form:"date" filterField:"false"`       // Exact date
	FromDate    time.Time         `form:"fromDate" filterField:"false"`   // Actuals at and after this date
	UntilDate   time.Time         `form:"untilDate" filterField:"false"`  // Actuals before and at this date
	Direction   models.Direction  `form:"direction"`                      // Flow direction
	Confidence  models.Confidence `form:"confidence"`                     // Confidence tier
	Approved    bool              `form:"approved"`                       // Approval state
	Unbudgeted  bool              `form:"unbudgeted" filterField:"false"` // Only actuals without a line reference
	Offset      uint              `form:"offset" filterField:"false"`     // The offset of the first Actual returned. Defaults to 0.
	Limit       int               `form:"limit" filterField:"false"`      // Maximum number of Actuals to return. Defaults to 50.
}

func (f ActualQueryFilter) model() (models.Actual, error) {
	if f.Direction != "" && !f.Direction.Valid() {
		return models.Actual{}, errLineDirectionInvalid
	}

	if f.Confidence != "" && !f.Confidence.Valid() {
		return models.Actual{}, errActualConfidenceInvalid
	}

	// If the lineID is nil, use an actual nil, not uuid.Nil
	var lineID *uuid.UUID
	if f.LineID != cp_uuid.Nil {
		lineID = &f.LineID.UUID
	}

	return models.Actual{
		WorkspaceID: f.WorkspaceID.UUID,
		LineID:      lineID,
		Direction:   f.Direction,
		Confidence:  f.Confidence,
		Approved:    f.Approved,
	}, nil
}
