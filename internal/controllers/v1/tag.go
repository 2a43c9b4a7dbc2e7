package v1

import (
	"net/http"

	"github.com/cashplan/backend/internal/httputil"
	"github.com/cashplan/backend/internal/models"
	cp_uuid "github.com/cashplan/backend/internal/uuid"
	"github.com/gin-gonic/gin"
)

// RegisterTagRoutes registers the routes for the tag usage listing with
// the RouterGroup that is passed.
func RegisterTagRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsTags)
	r.GET("", GetTags)
}

// Tag is one tag usage counter.
type Tag struct {
	Tag   string `json:"tag" example:"groceries"` // The tag
	Count uint   `json:"count" example:"17"`      // How often the tag has been used on actuals
}

type TagListResponse struct {
	Data  []Tag   `json:"data"`                                                          // List of tags, most used first
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type TagQueryFilter struct {
	WorkspaceID cp_uuid.UUID `form:"workspace"` // ID of the workspace
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Tags
// @Success		204
// @Router			/v1/tags [options]
func OptionsTags(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get tags
// @Description	Returns the tag usage counters of a workspace, most used first
// @Tags			Tags
// @Produce		json
// @Success		200	{object}	TagListResponse
// @Failure		400	{object}	TagListResponse
// @Failure		500	{object}	TagListResponse
// @Router			/v1/tags [get]
// @Param			workspace	query	string	true	"ID of the workspace"
func GetTags(c *gin.Context) {
	var filter TagQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, TagListResponse{
			Error: &s,
		})
		return
	}

	if filter.WorkspaceID == cp_uuid.Nil {
		s := errWorkspaceIDParameter.Error()
		c.JSON(http.StatusBadRequest, TagListResponse{
			Error: &s,
		})
		return
	}

	var usages []models.TagUsage
	err := models.DB.
		Where("workspace_id = ?", filter.WorkspaceID.UUID).
		Order("count DESC, tag ASC").
		Find(&usages).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TagListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Tag, 0, len(usages))
	for _, usage := range usages {
		data = append(data, Tag{Tag: usage.Tag, Count: usage.Count})
	}

	c.JSON(http.StatusOK, TagListResponse{Data: data})
}
