package v1

import (
	"fmt"
	"net/http"

	"github.com/cashplan/backend/internal/httputil"
	"github.com/cashplan/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

// RegisterWorkspaceRoutes registers the routes for workspaces with
// the RouterGroup that is passed.
func RegisterWorkspaceRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsWorkspaces)
		r.GET("", GetWorkspaces)
		r.POST("", CreateWorkspaces)
	}

	// Workspace with ID
	{
		r.OPTIONS("/:id", OptionsWorkspaceDetail)
		r.GET("/:id", GetWorkspace)
		r.PATCH("/:id", UpdateWorkspace)
		r.DELETE("/:id", DeleteWorkspace)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Workspaces
// @Success		204
// @Router			/v1/workspaces [options]
func OptionsWorkspaces(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Workspaces
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/workspaces/{id} [options]
func OptionsWorkspaceDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.Workspace{})
}

// @Summary		Get workspace
// @Description	Returns a specific workspace
// @Tags			Workspaces
// @Produce		json
// @Success		200	{object}	WorkspaceResponse
// @Failure		400	{object}	WorkspaceResponse
// @Failure		404	{object}	WorkspaceResponse
// @Failure		500	{object}	WorkspaceResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/workspaces/{id} [get]
func GetWorkspace(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WorkspaceResponse{
			Error: &e,
		})
		return
	}

	var workspace models.Workspace
	err = models.DB.First(&workspace, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WorkspaceResponse{
			Error: &e,
		})
		return
	}

	data := newWorkspace(c, workspace)
	c.JSON(http.StatusOK, WorkspaceResponse{Data: &data})
}

// @Summary		Get workspaces
// @Description	Returns a list of workspaces
// @Tags			Workspaces
// @Produce		json
// @Success		200	{object}	WorkspaceListResponse
// @Failure		400	{object}	WorkspaceListResponse
// @Failure		500	{object}	WorkspaceListResponse
// @Router			/v1/workspaces [get]
// @Param			name		query	string	false	"Filter by name"
// @Param			note		query	string	false	"Filter by note"
// @Param			currency	query	string	false	"Filter by currency"
// @Param			offset		query	uint	false	"The offset of the first Workspace returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of Workspaces to return. Defaults to 50."
func GetWorkspaces(c *gin.Context) {
	var filter WorkspaceQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, WorkspaceListResponse{
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
		c.JSON(status(err), WorkspaceListResponse{
			Error: &e,
		})
		return
	}

	q := models.DB.Order("name ASC").Where(&model, queryFields...)

	if filter.Name != "" {
		q = q.Where("name LIKE ?", fmt.Sprintf("%%%s%%", filter.Name))
	} else if slices.Contains(setFields, "Name") {
		q = q.Where("name = ''")
	}

	if filter.Note != "" {
		q = q.Where("note LIKE ?", fmt.Sprintf("%%%s%%", filter.Note))
	} else if slices.Contains(setFields, "Note") {
		q = q.Where("note = ''")
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 workspaces and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var workspaces []models.Workspace
	err = q.Find(&workspaces).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WorkspaceListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WorkspaceListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Workspace, 0)
	for _, workspace := range workspaces {
		data = append(data, newWorkspace(c, workspace))
	}

	c.JSON(http.StatusOK, WorkspaceListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Create workspaces
// @Description	Creates workspaces from the list of submitted workspace data. The response code is the highest response code number that a single workspace creation would have caused. If it is not equal to 201, at least one workspace has an error.
// @Tags			Workspaces
// @Produce		json
// @Success		201			{object}	WorkspaceCreateResponse
// @Failure		400			{object}	WorkspaceCreateResponse
// @Failure		500			{object}	WorkspaceCreateResponse
// @Param			workspaces	body		[]WorkspaceEditable	true	"Workspaces"
// @Router			/v1/workspaces [post]
func CreateWorkspaces(c *gin.Context) {
	var editables []WorkspaceEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WorkspaceCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := WorkspaceCreateResponse{}

	for _, editable := range editables {
		workspace := editable.model()
		err := models.DB.Create(&workspace).Error
		// Append the error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := newWorkspace(c, workspace)
		r.Data = append(r.Data, WorkspaceResponse{Data: &data})
	}

	c.JSON(status, r)
}

// @Summary		Update workspace
// @Description	Updates an existing workspace. Only values to be updated need to be specified.
// @Tags			Workspaces
// @Accept			json
// @Produce		json
// @Success		200			{object}	WorkspaceResponse
// @Failure		400			{object}	WorkspaceResponse
// @Failure		404			{object}	WorkspaceResponse
// @Failure		500			{object}	WorkspaceResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			workspace	body		WorkspaceEditable	true	"Workspace"
// @Router			/v1/workspaces/{id} [patch]
func UpdateWorkspace(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WorkspaceResponse{
			Error: &e,
		})
		return
	}

	var workspace models.Workspace
	err = models.DB.First(&workspace, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WorkspaceResponse{
			Error: &e,
		})
		return
	}

	// Get the fields that are set to be updated
	updateFields, err := httputil.GetBodyFields(c, WorkspaceEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WorkspaceResponse{
			Error: &e,
		})
		return
	}

	// Bind the update for the patch
	var update WorkspaceEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WorkspaceResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&workspace).Select("", updateFields...).Updates(update.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WorkspaceResponse{
			Error: &e,
		})
		return
	}

	data := newWorkspace(c, workspace)
	c.JSON(http.StatusOK, WorkspaceResponse{Data: &data})
}

// @Summary		Delete workspace
// @Description	Deletes a workspace
// @Tags			Workspaces
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/workspaces/{id} [delete]
func DeleteWorkspace(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var workspace models.Workspace
	err = models.DB.First(&workspace, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&workspace).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
