package v1

import (
	"fmt"

	"github.com/cashplan/backend/internal/models"
	cp_uuid "github.com/cashplan/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TagMappingEditable struct {
	WorkspaceID uuid.UUID `json:"workspaceId" example:"550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // ID of the workspace
	Priority    uint      `json:"priority" example:"1"`                                       // Mappings are applied in ascending priority order
	Match       string    `json:"match" example:"REWE*" default:""`                           // Glob pattern matched against imported row descriptions
	Tag         string    `json:"tag" example:"groceries" default:""`                         // The tag to assign when the pattern matches
}

// model returns the database resource for the API representation of the editable fields
func (editable TagMappingEditable) model() models.TagMapping {
	return models.TagMapping{
		WorkspaceID: editable.WorkspaceID,
		Priority:    editable.Priority,
		Match:       editable.Match,
		Tag:         editable.Tag,
	}
}

type TagMappingLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/tag-mappings/95018a69-758b-46c6-8bab-db70d9614f9d"`    // The tag mapping itself
	Workspace string `json:"workspace" example:"https://example.com/api/v1/workspaces/550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // The workspace this mapping belongs to
}

// TagMapping is the representation of a TagMapping in API v1.
type TagMapping struct {
	models.DefaultModel
	TagMappingEditable
	Links TagMappingLinks `json:"links"`
}

// newTagMapping returns the API v1 representation of the resource
func newTagMapping(c *gin.Context, model models.TagMapping) TagMapping {
	url := c.GetString(string(models.DBContextURL))

	return TagMapping{
		DefaultModel: model.DefaultModel,
		TagMappingEditable: TagMappingEditable{
			WorkspaceID: model.WorkspaceID,
			Priority:    model.Priority,
			Match:       model.Match,
			Tag:         model.Tag,
		},
		Links: TagMappingLinks{
			Self:      fmt.Sprintf("%s/v1/tag-mappings/%s", url, model.ID),
			Workspace: fmt.Sprintf("%s/v1/workspaces/%s", url, model.WorkspaceID),
		},
	}
}

type TagMappingListResponse struct {
	Data       []TagMapping `json:"data"`                                                          // List of tag mappings
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type TagMappingCreateResponse struct {
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []TagMappingResponse `json:"data"`                                                          // List of created TagMappings
}

func (t *TagMappingCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, TagMappingResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type TagMappingResponse struct {
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this tag mapping
	Data  *TagMapping `json:"data"`                                                          // The TagMapping data, if creation was successful
}

type TagMappingQueryFilter struct {
	WorkspaceID cp_uuid.UUID `form:"workspace"`                  // ID of the workspace
	Tag         string       `form:"tag"`                        // The tag assigned by the mapping
	Offset      uint         `form:"offset" filterField:"false"` // The offset of the first TagMapping returned. Defaults to 0.
	Limit       int          `form:"limit" filterField:"false"`  // Maximum number of TagMappings to return. Defaults to 50.
}

func (f TagMappingQueryFilter) model() (models.TagMapping, error) {
	return models.TagMapping{
		WorkspaceID: f.WorkspaceID.UUID,
		Tag:         f.Tag,
	}, nil
}
