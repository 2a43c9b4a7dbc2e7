package v1

import (
	"net/http"
	"time"

	"github.com/cashplan/backend/internal/httputil"
	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/planner"
	"github.com/cashplan/backend/internal/types"
	cp_uuid "github.com/cashplan/backend/internal/uuid"
	"github.com/gin-gonic/gin"
)

// RegisterPlannerRoutes registers the routes for the calculation
// endpoints with the RouterGroup that is passed.
func RegisterPlannerRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/projection", httputil.OptionsGet)
	r.GET("/projection", GetProjection)

	r.OPTIONS("/envelope", httputil.OptionsGet)
	r.GET("/envelope", GetEnvelope)

	r.OPTIONS("/comparison", httputil.OptionsGet)
	r.GET("/comparison", GetComparison)
}

type ProjectionResponse struct {
	Data  []planner.Occurrence `json:"data"`                                                       // Projected occurrences, ordered by date
	Error *string              `json:"error" example:"the workspace parameter must be set"` // The error, if any occurred
}

type EnvelopeResponse struct {
	Data  *planner.Envelope `json:"data"`                                                       // The envelope forecast
	Error *string           `json:"error" example:"the workspace parameter must be set"` // The error, if any occurred
}

type ComparisonResponse struct {
	Data  *planner.Comparison `json:"data"`                                                       // The budgeted vs actual comparison
	Error *string             `json:"error" example:"the workspace parameter must be set"` // The error, if any occurred
}

// plannerInput loads the workspace and its lines for a calculation request.
func plannerInput(query QueryRange) (models.Workspace, []models.Line, error) {
	var workspace models.Workspace
	err := models.DB.First(&workspace, query.WorkspaceID).Error
	if err != nil {
		return models.Workspace{}, nil, err
	}

	var lines []models.Line
	err = models.DB.Where("workspace_id = ?", workspace.ID).Find(&lines).Error
	if err != nil {
		return models.Workspace{}, nil, err
	}

	return workspace, lines, nil
}

// bindRange binds and checks the shared query parameters of the
// calculation endpoints. The from and to parameters are required.
func bindRange(c *gin.Context) (QueryRange, error) {
	var query QueryRange
	if err := c.Bind(&query); err != nil {
		return QueryRange{}, err
	}

	if query.WorkspaceID == cp_uuid.Nil {
		return QueryRange{}, errWorkspaceIDParameter
	}

	if query.From.IsZero() || query.To.IsZero() {
		return QueryRange{}, errRangeParameters
	}

	return query, nil
}

// @Summary		Get projection
// @Description	Expands the lines of a workspace into dated occurrences over the requested window
// @Tags			Planner
// @Produce		json
// @Success		200	{object}	ProjectionResponse
// @Failure		400	{object}	ProjectionResponse
// @Failure		404	{object}	ProjectionResponse
// @Failure		500	{object}	ProjectionResponse
// @Router			/v1/projection [get]
// @Param			workspace	query	string	true	"ID of the workspace"
// @Param			from		query	string	true	"Start of the window, YYYY-MM-DD"
// @Param			to			query	string	true	"End of the window, inclusive, YYYY-MM-DD"
func GetProjection(c *gin.Context) {
	query, err := bindRange(c)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ProjectionResponse{
			Error: &e,
		})
		return
	}

	_, lines, err := plannerInput(query)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProjectionResponse{
			Error: &e,
		})
		return
	}

	occurrences, err := planner.Project(lines, types.DateOf(query.From), types.DateOf(query.To))
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ProjectionResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusOK, ProjectionResponse{Data: occurrences})
}

type EnvelopeQuery struct {
	QueryRange
	AsOf time.Time `form:"asOf" time_format:"2006-01-02" time_utc:"1" example:"2026-01-25"` // The evaluation date. Defaults to today.
}

// @Summary		Get envelope
// @Description	Returns the balance-tracking forecast for a workspace: remaining balance, burn rate, depletion date and a per-month breakdown
// @Tags			Planner
// @Produce		json
// @Success		200	{object}	EnvelopeResponse
// @Failure		400	{object}	EnvelopeResponse
// @Failure		404	{object}	EnvelopeResponse
// @Failure		500	{object}	EnvelopeResponse
// @Router			/v1/envelope [get]
// @Param			workspace	query	string	true	"ID of the workspace"
// @Param			from		query	string	false	"Start of the projection window, YYYY-MM-DD. Defaults to the workspace start date."
// @Param			to			query	string	false	"End of the projection window, inclusive, YYYY-MM-DD. Defaults to one year after the start."
// @Param			asOf		query	string	false	"The evaluation date, YYYY-MM-DD. Defaults to today."
func GetEnvelope(c *gin.Context) {
	var query EnvelopeQuery
	if err := c.Bind(&query); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, EnvelopeResponse{
			Error: &e,
		})
		return
	}

	if query.WorkspaceID == cp_uuid.Nil {
		e := errWorkspaceIDParameter.Error()
		c.JSON(http.StatusBadRequest, EnvelopeResponse{
			Error: &e,
		})
		return
	}

	workspace, lines, err := plannerInput(query.QueryRange)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{
			Error: &e,
		})
		return
	}

	// The window defaults to one year from the workspace start
	from := workspace.StartDate
	if !query.From.IsZero() {
		from = types.DateOf(query.From)
	}

	to := types.DateOf(time.Time(from).AddDate(1, 0, 0))
	if !query.To.IsZero() {
		to = types.DateOf(query.To)
	}

	asOf := types.DateOf(time.Now())
	if !query.AsOf.IsZero() {
		asOf = types.DateOf(query.AsOf)
	}

	occurrences, err := planner.Project(lines, from, to)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, EnvelopeResponse{
			Error: &e,
		})
		return
	}

	var actuals []models.Actual
	err = models.DB.Where("workspace_id = ?", workspace.ID).Find(&actuals).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{
			Error: &e,
		})
		return
	}

	envelope := planner.Forecast(workspace.StartingBalance, occurrences, actuals, asOf, workspace.StartDate)
	c.JSON(http.StatusOK, EnvelopeResponse{Data: &envelope})
}

// @Summary		Get comparison
// @Description	Returns the budgeted vs actual comparison for a workspace, broken down by line, tag and month
// @Tags			Planner
// @Produce		json
// @Success		200	{object}	ComparisonResponse
// @Failure		400	{object}	ComparisonResponse
// @Failure		404	{object}	ComparisonResponse
// @Failure		500	{object}	ComparisonResponse
// @Router			/v1/comparison [get]
// @Param			workspace	query	string	true	"ID of the workspace"
// @Param			from		query	string	true	"Start of the window, YYYY-MM-DD"
// @Param			to			query	string	true	"End of the window, inclusive, YYYY-MM-DD"
func GetComparison(c *gin.Context) {
	query, err := bindRange(c)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ComparisonResponse{
			Error: &e,
		})
		return
	}

	workspace, lines, err := plannerInput(query)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ComparisonResponse{
			Error: &e,
		})
		return
	}

	occurrences, err := planner.Project(lines, types.DateOf(query.From), types.DateOf(query.To))
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ComparisonResponse{
			Error: &e,
		})
		return
	}

	var actuals []models.Actual
	err = models.DB.
		Where("workspace_id = ?", workspace.ID).
		Where("actuals.date >= date(?)", time.Time(types.DateOf(query.From))).
		Where("actuals.date < date(?)", time.Time(types.DateOf(query.To)).AddDate(0, 0, 1)).
		Find(&actuals).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ComparisonResponse{
			Error: &e,
		})
		return
	}

	comparison := planner.Compare(occurrences, actuals, lines)
	c.JSON(http.StatusOK, ComparisonResponse{Data: &comparison})
}
