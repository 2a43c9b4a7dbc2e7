package v1

import (
	"net/http"
	"time"

	"github.com/cashplan/backend/internal/httputil"
	"github.com/cashplan/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// RegisterActualRoutes registers the routes for actuals with
// the RouterGroup that is passed.
func RegisterActualRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsActuals)
		r.GET("", GetActuals)
		r.POST("", CreateActuals)
	}

	// Actual with ID
	{
		r.OPTIONS("/:id", OptionsActualDetail)
		r.GET("/:id", GetActual)
		r.PATCH("/:id", UpdateActual)
		r.DELETE("/:id", DeleteActual)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Actuals
// @Success		204
// @Router			/v1/actuals [options]
func OptionsActuals(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Actuals
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/actuals/{id} [options]
func OptionsActualDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Actual{})
}

// @Summary		Get actual
// @Description	Returns a specific actual
// @Tags			Actuals
// @Produce		json
// @Success		200	{object}	ActualResponse
// @Failure		400	{object}	ActualResponse
// @Failure		404	{object}	ActualResponse
// @Failure		500	{object}	ActualResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/actuals/{id} [get]
func GetActual(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualResponse{
			Error: &e,
		})
		return
	}

	var actual models.Actual
	err = models.DB.First(&actual, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualResponse{
			Error: &e,
		})
		return
	}

	data := newActual(c, actual)
	c.JSON(http.StatusOK, ActualResponse{Data: &data})
}

// @Summary		Get actuals
// @Description	Returns a list of actuals
// @Tags			Actuals
// @Produce		json
// @Success		200	{object}	ActualListResponse
// @Failure		400	{object}	ActualListResponse
// @Failure		500	{object}	ActualListResponse
// @Router			/v1/actuals [get]
// @Param			workspace	query	string	false	"Filter by workspace ID"
// @Param			line		query	string	false	"Filter by matched line ID"
// @Param			date		query	string	false	"Date of the actual, matches on the day"
// @Param			fromDate	query	string	false	"Actuals at and after this date"
// @Param			untilDate	query	string	false	"Actuals before and at this date"
// @Param			direction	query	string	false	"Filter by direction"
// @Param			confidence	query	string	false	"Filter by confidence tier"
// @Param			approved	query	bool	false	"Filter by approval state"
// @Param			unbudgeted	query	bool	false	"Only actuals without a line reference"
// @Param			offset		query	uint	false	"The offset of the first Actual returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of Actuals to return. Defaults to 50."
func GetActuals(c *gin.Context) {
	var filter ActualQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ActualListResponse{
			Error: &s,
		})
		return
	}

	// Get the fields set in the filter
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	// Convert the QueryFilter to a Create struct
	model, err := filter.model()
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualListResponse{
			Error: &e,
		})
		return
	}

	q := models.DB.Order("datetime(actuals.date) DESC, datetime(actuals.created_at) DESC").Where(&model, queryFields...)

	// Filter for the actual being at the same date
	if !filter.Date.IsZero() {
		date := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, time.UTC)
		q = q.Where("actuals.date >= date(?)", date).Where("actuals.date < date(?)", date.AddDate(0, 0, 1))
	}

	if !filter.FromDate.IsZero() {
		q = q.Where("actuals.date >= date(?)", time.Date(filter.FromDate.Year(), filter.FromDate.Month(), filter.FromDate.Day(), 0, 0, 0, 0, time.UTC))
	}

	if !filter.UntilDate.IsZero() {
		q = q.Where("actuals.date < date(?)", time.Date(filter.UntilDate.Year(), filter.UntilDate.Month(), filter.UntilDate.Day()+1, 0, 0, 0, 0, time.UTC))
	}

	if filter.Unbudgeted {
		q = q.Where("actuals.line_id IS NULL")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 actuals and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var actuals []models.Actual
	err = q.Find(&actuals).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Actual, 0)
	for _, actual := range actuals {
		data = append(data, newActual(c, actual))
	}

	c.JSON(http.StatusOK, ActualListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Create actuals
// @Description	Creates actuals from the list of submitted actual data. The response code is the highest response code number that a single actual creation would have caused. If it is not equal to 201, at least one actual has an error.
// @Tags			Actuals
// @Produce		json
// @Success		201		{object}	ActualCreateResponse
// @Failure		400		{object}	ActualCreateResponse
// @Failure		404		{object}	ActualCreateResponse
// @Failure		500		{object}	ActualCreateResponse
// @Param			actuals	body		[]ActualEditable	true	"Actuals"
// @Router			/v1/actuals [post]
func CreateActuals(c *gin.Context) {
	var editables []ActualEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := ActualCreateResponse{}

	for _, editable := range editables {
		actual := editable.model()

		// Manually created actuals with a line reference are manual matches
		if actual.LineID != nil {
			actual.Confidence = models.ConfidenceManual
		}

		err := models.DB.Create(&actual).Error
		// Append the error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newActual(c, actual)
		r.Data = append(r.Data, ActualResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Update actual
// @Description	Updates an existing actual. Only values to be updated need to be specified. Relinking the actual to another line sets the confidence to "manual".
// @Tags			Actuals
// @Accept			json
// @Produce		json
// @Success		200		{object}	ActualResponse
// @Failure		400		{object}	ActualResponse
// @Failure		404		{object}	ActualResponse
// @Failure		500		{object}	ActualResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			actual	body		ActualEditable	true	"Actual"
// @Router			/v1/actuals/{id} [patch]
func UpdateActual(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualResponse{
			Error: &e,
		})
		return
	}

	var actual models.Actual
	err = models.DB.First(&actual, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualResponse{
			Error: &e,
		})
		return
	}

	// Get the fields that are set to be updated
	updateFields, err := httputil.GetBodyFields(c, ActualEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualResponse{
			Error: &e,
		})
		return
	}

	// Bind the update for the patch
	var update ActualEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualResponse{
			Error: &e,
		})
		return
	}

	if update.Direction == "" {
		update.Direction = actual.Direction
	}

	model := update.model()

	// Relinking to another line is a manual match and counts as reviewed
	if slices.Contains(updateFields, any("LineID")) {
		model.Confidence = models.ConfidenceManual
		updateFields = append(updateFields, "Confidence")
	}

	err = models.DB.Model(&actual).Select("", updateFields...).Updates(model).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ActualResponse{
			Error: &e,
		})
		return
	}

	data := newActual(c, actual)
	c.JSON(http.StatusOK, ActualResponse{Data: &data})
}

// @Summary		Delete actual
// @Description	Deletes an actual
// @Tags			Actuals
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/actuals/{id} [delete]
func DeleteActual(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var actual models.Actual
	err = models.DB.First(&actual, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&actual).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
