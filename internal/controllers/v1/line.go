package v1

import (
	"fmt"
	"net/http"

	"github.com/cashplan/backend/internal/httputil"
	"github.com/cashplan/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// RegisterLineRoutes registers the routes for lines with
// the RouterGroup that is passed.
func RegisterLineRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsLines)
		r.GET("", GetLines)
		r.POST("", CreateLines)
	}

	// Line with ID
	{
		r.OPTIONS("/:id", OptionsLineDetail)
		r.GET("/:id", GetLine)
		r.PATCH("/:id", UpdateLine)
		r.DELETE("/:id", DeleteLine)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Lines
// @Success		204
// @Router			/v1/lines [options]
func OptionsLines(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Lines
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/lines/{id} [options]
func OptionsLineDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Line{})
}

// @Summary		Get line
// @Description	Returns a specific line
// @Tags			Lines
// @Produce		json
// @Success		200	{object}	LineResponse
// @Failure		400	{object}	LineResponse
// @Failure		404	{object}	LineResponse
// @Failure		500	{object}	LineResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/lines/{id} [get]
func GetLine(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LineResponse{
			Error: &e,
		})
		return
	}

	var line models.Line
	err = models.DB.First(&line, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LineResponse{
			Error: &e,
		})
		return
	}

	data := newLine(c, line)
	c.JSON(http.StatusOK, LineResponse{Data: &data})
}

// @Summary		Get lines
// @Description	Returns a list of lines
// @Tags			Lines
// @Produce		json
// @Success		200	{object}	LineListResponse
// @Failure		400	{object}	LineListResponse
// @Failure		500	{object}	LineListResponse
// @Router			/v1/lines [get]
// @Param			workspace	query	string	false	"Filter by workspace ID"
// @Param			description	query	string	false	"Filter by description"
// @Param			tag			query	string	false	"Filter by tag"
// @Param			direction	query	string	false	"Filter by direction"
// @Param			frequency	query	string	false	"Filter by frequency"
// @Param			offset		query	uint	false	"The offset of the first Line returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of Lines to return. Defaults to 50."
func GetLines(c *gin.Context) {
	var filter LineQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, LineListResponse{
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
		c.JSON(status(err), LineListResponse{
			Error: &e,
		})
		return
	}

	q := models.DB.Order("datetime(lines.start_date) ASC, description ASC").Where(&model, queryFields...)

	if filter.Description != "" {
		q = q.Where("description LIKE ?", fmt.Sprintf("%%%s%%", filter.Description))
	} else if slices.Contains(setFields, "Description") {
		q = q.Where("description = ''")
	}

	// Tags are stored comma separated, match the tag in any position
	if filter.Tag != "" {
		q = q.Where(
			models.DB.Where("tags = ?", filter.Tag).
				Or("tags LIKE ?", fmt.Sprintf("%s,%%", filter.Tag)).
				Or("tags LIKE ?", fmt.Sprintf("%%,%s", filter.Tag)).
				Or("tags LIKE ?", fmt.Sprintf("%%,%s,%%", filter.Tag)),
		)
	} else if slices.Contains(setFields, "Tag") {
		q = q.Where("tags = ''")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 lines and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var lines []models.Line
	err = q.Find(&lines).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LineListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LineListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Line, 0)
	for _, line := range lines {
		data = append(data, newLine(c, line))
	}

	c.JSON(http.StatusOK, LineListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Create lines
// @Description	Creates lines from the list of submitted line data. The response code is the highest response code number that a single line creation would have caused. If it is not equal to 201, at least one line has an error.
// @Tags			Lines
// @Produce		json
// @Success		201		{object}	LineCreateResponse
// @Failure		400		{object}	LineCreateResponse
// @Failure		404		{object}	LineCreateResponse
// @Failure		500		{object}	LineCreateResponse
// @Param			lines	body		[]LineEditable	true	"Lines"
// @Router			/v1/lines [post]
func CreateLines(c *gin.Context) {
	var editables []LineEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LineCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := LineCreateResponse{}

	for _, editable := range editables {
		line := editable.model()
		err := models.DB.Create(&line).Error
		// Append the error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newLine(c, line)
		r.Data = append(r.Data, LineResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Update line
// @Description	Updates an existing line. Only values to be updated need to be specified.
// @Tags			Lines
// @Accept			json
// @Produce		json
// @Success		200		{object}	LineResponse
// @Failure		400		{object}	LineResponse
// @Failure		404		{object}	LineResponse
// @Failure		500		{object}	LineResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			line	body		LineEditable	true	"Line"
// @Router			/v1/lines/{id} [patch]
func UpdateLine(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LineResponse{
			Error: &e,
		})
		return
	}

	var line models.Line
	err = models.DB.First(&line, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LineResponse{
			Error: &e,
		})
		return
	}

	// Get the fields that are set to be updated
	updateFields, err := httputil.GetBodyFields(c, LineEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LineResponse{
			Error: &e,
		})
		return
	}

	// Bind the update for the patch
	var update LineEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LineResponse{
			Error: &e,
		})
		return
	}

	// Enum fields must stay valid when they are not part of the update
	if update.Direction == "" {
		update.Direction = line.Direction
	}

	if update.Frequency == "" {
		update.Frequency = line.Frequency
	}

	err = models.DB.Model(&line).Select("", updateFields...).Updates(update.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LineResponse{
			Error: &e,
		})
		return
	}

	data := newLine(c, line)
	c.JSON(http.StatusOK, LineResponse{Data: &data})
}

// @Summary		Delete line
// @Description	Deletes a line. Actuals matched to the line are kept and lose their line reference.
// @Tags			Lines
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/lines/{id} [delete]
func DeleteLine(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var line models.Line
	err = models.DB.First(&line, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	// Actuals keep existing without their line reference
	err = models.DB.Model(&models.Actual{}).
		Where("line_id = ?", line.ID).
		Update("line_id", nil).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&line).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
