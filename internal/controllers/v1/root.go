package v1

import (
	"net/http"

	"github.com/cashplan/backend/internal/httputil"
	"github.com/cashplan/backend/internal/models"
	"github.com/gin-gonic/gin"
)

func RegisterRootRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.DELETE("", Cleanup)
	r.OPTIONS("", Options)
}

type Response struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	Workspaces  string `json:"workspaces" example:"https://example.com/api/v1/workspaces"`    // URL of Workspace collection endpoint
	Lines       string `json:"lines" example:"https://example.com/api/v1/lines"`              // URL of Line collection endpoint
	Actuals     string `json:"actuals" example:"https://example.com/api/v1/actuals"`          // URL of Actual collection endpoint
	TagMappings string `json:"tagMappings" example:"https://example.com/api/v1/tag-mappings"` // URL of TagMapping collection endpoint
	Tags        string `json:"tags" example:"https://example.com/api/v1/tags"`                // URL of the tag usage listing
	Projection  string `json:"projection" example:"https://example.com/api/v1/projection"`    // URL of the projection endpoint
	Envelope    string `json:"envelope" example:"https://example.com/api/v1/envelope"`        // URL of the envelope forecast endpoint
	Comparison  string `json:"comparison" example:"https://example.com/api/v1/comparison"`    // URL of the comparison endpoint
	Import      string `json:"import" example:"https://example.com/api/v1/import"`            // URL of the import endpoints
	Backup      string `json:"backup" example:"https://example.com/api/v1/backup"`            // URL of the snapshot export and restore endpoint
}

// Get returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	Response
//	@Router			/v1 [get]
func Get(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Workspaces:  url + "/v1/workspaces",
			Lines:       url + "/v1/lines",
			Actuals:     url + "/v1/actuals",
			TagMappings: url + "/v1/tag-mappings",
			Tags:        url + "/v1/tags",
			Projection:  url + "/v1/projection",
			Envelope:    url + "/v1/envelope",
			Comparison:  url + "/v1/comparison",
			Import:      url + "/v1/import",
			Backup:      url + "/v1/backup",
		},
	})
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func Options(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}

// @Summary		Delete everything
// @Description	Permanently deletes all resources
// @Tags			v1
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			confirm	query		string	false	"Confirmation to delete all resources. Must have the value 'yes-please-delete-everything'"
// @Router			/v1 [delete]
func Cleanup(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != "yes-please-delete-everything" {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errCleanupConfirmation.Error(),
		})
		return
	}

	// Foreign keys are checked during cleanup,
	// add new models *before* any of the models
	// they reference
	resources := []any{
		models.Actual{},
		models.TagUsage{},
		models.TagMapping{},
		models.Line{},
		models.Workspace{},
	}

	// Use a transaction so that we can roll back if errors happen
	tx := models.DB.Begin()

	for _, model := range resources {
		err := tx.Unscoped().Where("true").Delete(&model).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpError{
				Error: err.Error(),
			})
			tx.Rollback()
			return
		}
	}

	tx.Commit()
	c.JSON(http.StatusNoContent, nil)
}
