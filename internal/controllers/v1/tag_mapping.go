package v1

import (
	"net/http"

	"github.com/cashplan/backend/internal/httputil"
	"github.com/cashplan/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// RegisterTagMappingRoutes registers the routes for tag mappings with
// the RouterGroup that is passed.
func RegisterTagMappingRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsTagMappings)
		r.GET("", GetTagMappings)
		r.POST("", CreateTagMappings)
	}

	// Tag mapping with ID
	{
		r.OPTIONS("/:id", OptionsTagMappingDetail)
		r.GET("/:id", GetTagMapping)
		r.PATCH("/:id", UpdateTagMapping)
		r.DELETE("/:id", DeleteTagMapping)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			TagMappings
// @Success		204
// @Router			/v1/tag-mappings [options]
func OptionsTagMappings(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			TagMappings
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/tag-mappings/{id} [options]
func OptionsTagMappingDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.TagMapping{})
}

// @Summary		Get tag mapping
// @Description	Returns a specific tag mapping
// @Tags			TagMappings
// @Produce		json
// @Success		200	{object}	TagMappingResponse
// @Failure		400	{object}	TagMappingResponse
// @Failure		404	{object}	TagMappingResponse
// @Failure		500	{object}	TagMappingResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/tag-mappings/{id} [get]
func GetTagMapping(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagMappingResponse{
			Error: &e,
		})
		return
	}

	var mapping models.TagMapping
	err = models.DB.First(&mapping, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagMappingResponse{
			Error: &e,
		})
		return
	}

	data := newTagMapping(c, mapping)
	c.JSON(http.StatusOK, TagMappingResponse{Data: &data})
}

// @Summary		Get tag mappings
// @Description	Returns a list of tag mappings, ordered by priority
// @Tags			TagMappings
// @Produce		json
// @Success		200	{object}	TagMappingListResponse
// @Failure		400	{object}	TagMappingListResponse
// @Failure		500	{object}	TagMappingListResponse
// @Router			/v1/tag-mappings [get]
// @Param			workspace	query	string	false	"Filter by workspace ID"
// @Param			tag			query	string	false	"Filter by assigned tag"
// @Param			offset		query	uint	false	"The offset of the first TagMapping returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of TagMappings to return. Defaults to 50."
func GetTagMappings(c *gin.Context) {
	var filter TagMappingQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, TagMappingListResponse{
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
		c.JSON(status(err), TagMappingListResponse{
			Error: &e,
		})
		return
	}

	q := models.DB.Order("priority ASC, datetime(created_at) ASC").Where(&model, queryFields...)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 tag mappings and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var mappings []models.TagMapping
	err = q.Find(&mappings).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagMappingListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagMappingListResponse{
			Error: &e,
		})
		return
	}

	data := make([]TagMapping, 0)
	for _, mapping := range mappings {
		data = append(data, newTagMapping(c, mapping))
	}

	c.JSON(http.StatusOK, TagMappingListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Create tag mappings
// @Description	Creates tag mappings from the list of submitted tag mapping data. The response code is the highest response code number that a single tag mapping creation would have caused. If it is not equal to 201, at least one tag mapping has an error.
// @Tags			TagMappings
// @Produce		json
// @Success		201			{object}	TagMappingCreateResponse
// @Failure		400			{object}	TagMappingCreateResponse
// @Failure		404			{object}	TagMappingCreateResponse
// @Failure		500			{object}	TagMappingCreateResponse
// @Param			tagMappings	body		[]TagMappingEditable	true	"TagMappings"
// @Router			/v1/tag-mappings [post]
func CreateTagMappings(c *gin.Context) {
	var editables []TagMappingEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagMappingCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := TagMappingCreateResponse{}

	for _, editable := range editables {
		mapping := editable.model()
		err := models.DB.Create(&mapping).Error
		// Append the error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newTagMapping(c, mapping)
		r.Data = append(r.Data, TagMappingResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Update tag mapping
// @Description	Updates an existing tag mapping. Only values to be updated need to be specified.
// @Tags			TagMappings
// @Accept			json
// @Produce		json
// @Success		200			{object}	TagMappingResponse
// @Failure		400			{object}	TagMappingResponse
// @Failure		404			{object}	TagMappingResponse
// @Failure		500			{object}	TagMappingResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			tagMapping	body		TagMappingEditable	true	"TagMapping"
// @Router			/v1/tag-mappings/{id} [patch]
func UpdateTagMapping(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagMappingResponse{
			Error: &e,
		})
		return
	}

	var mapping models.TagMapping
	err = models.DB.First(&mapping, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagMappingResponse{
			Error: &e,
		})
		return
	}

	// Get the fields that are set to be updated
	updateFields, err := httputil.GetBodyFields(c, TagMappingEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagMappingResponse{
			Error: &e,
		})
		return
	}

	// Bind the update for the patch
	var update TagMappingEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagMappingResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&mapping).Select("", updateFields...).Updates(update.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagMappingResponse{
			Error: &e,
		})
		return
	}

	data := newTagMapping(c, mapping)
	c.JSON(http.StatusOK, TagMappingResponse{Data: &data})
}

// @Summary		Delete tag mapping
// @Description	Deletes a tag mapping
// @Tags			TagMappings
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/tag-mappings/{id} [delete]
func DeleteTagMapping(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var mapping models.TagMapping
	err = models.DB.First(&mapping, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&mapping).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
