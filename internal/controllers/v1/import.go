package v1

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cashplan/backend/internal/httputil"
	"github.com/cashplan/backend/internal/importer"
	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/planner"
	cp_uuid "github.com/cashplan/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterImportRoutes registers the routes for the import endpoints
// with the RouterGroup that is passed.
func RegisterImportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsImport)
	r.GET("", GetImport)

	r.OPTIONS("/preview", OptionsImportPreview)
	r.POST("/preview", ImportPreview)

	r.OPTIONS("/commit", OptionsImportCommit)
	r.POST("/commit", ImportCommit)
}

type ImportQuery struct {
	WorkspaceID cp_uuid.UUID `form:"workspace"`  // ID of the workspace to import into
	DateFormat  string       `form:"dateFormat"` // Name of a date layout to use, e.g. "day-month-year". Auto-detected when empty.
}

// ImportPreviewData is the result of parsing and matching an uploaded file.
type ImportPreviewData struct {
	Results          []planner.MatchResult `json:"results"`          // One result per parsed row, order preserving
	TotalRows        int                   `json:"totalRows"`        // Data rows encountered in the file
	SkippedRows      int                   `json:"skippedRows"`      // Rows dropped for unparseable dates or amounts
	Errors           []importer.RowError   `json:"errors"`           // Row-level problems, never fatal
	DateLayout       string                `json:"dateLayout"`       // Name of the date layout that was used
	CandidateLayouts []string              `json:"candidateLayouts"` // All supported date layout names, for a manual picker
}

type ImportPreviewResponse struct {
	Data  *ImportPreviewData `json:"data"`                                               // The import preview
	Error *string            `json:"error" example:"you must send a file to this endpoint"` // The error, if any occurred
}

// ImportCommitEditable is the request body for committing a reviewed import.
type ImportCommitEditable struct {
	WorkspaceID uuid.UUID             `json:"workspaceId" example:"550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // ID of the workspace
	Lines       []LineEditable        `json:"lines"`                                                      // New lines to create before committing the results
	Results     []planner.MatchResult `json:"results"`                                                    // The reviewed match results. Only approved results are committed.
}

type ImportCommitData struct {
	Lines   []Line   `json:"lines"`   // Lines created by this commit
	Actuals []Actual `json:"actuals"` // Actuals created by this commit
}

type ImportCommitResponse struct {
	Data  *ImportCommitData `json:"data"`                                                          // The created resources
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ImportLinks struct {
	Preview string `json:"preview" example:"https://example.com/api/v1/import/preview"` // URL of the import preview endpoint
	Commit  string `json:"commit" example:"https://example.com/api/v1/import/commit"`   // URL of the import commit endpoint
}

type ImportResponse struct {
	Links ImportLinks `json:"links"` // Links for the import endpoints
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import [options]
func OptionsImport(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Import endpoints
// @Description	Lists the import endpoints
// @Tags			Import
// @Produce		json
// @Success		200	{object}	ImportResponse
// @Router			/v1/import [get]
func GetImport(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, ImportResponse{
		Links: ImportLinks{
			Preview: url + "/v1/import/preview",
			Commit:  url + "/v1/import/commit",
		},
	})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import/preview [options]
func OptionsImportPreview(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import/commit [options]
func OptionsImportCommit(c *gin.Context) {
	httputil.OptionsPost(c)
}

// parseUpload reads the uploaded file and parses it with the parser
// matching its file type.
func parseUpload(c *gin.Context) (importer.Table, error) {
	formFile, err := c.FormFile("file")
	if formFile == nil {
		return importer.Table{}, errNoFilePost
	}

	if err != nil {
		return importer.Table{}, err
	}

	f, err := formFile.Open()
	if err != nil {
		return importer.Table{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return importer.Table{}, err
	}

	name := strings.ToLower(formFile.Filename)
	switch {
	case strings.HasSuffix(name, ".csv"):
		return importer.ParseDelimited(string(content)), nil
	case strings.HasSuffix(name, ".json"):
		return importer.ParseStructured(string(content)), nil
	}

	return importer.Table{}, fmt.Errorf("%w: .csv, .json", errWrongFileSuffix)
}

// @Summary		Preview an import
// @Description	Parses an uploaded bank export, normalizes its rows and matches them against the budgeted lines of the workspace. Nothing is persisted.
// @Tags			Import
// @Accept			multipart/form-data
// @Produce		json
// @Success		200			{object}	ImportPreviewResponse
// @Failure		400			{object}	ImportPreviewResponse
// @Failure		404			{object}	ImportPreviewResponse
// @Failure		500			{object}	ImportPreviewResponse
// @Param			file		formData	file	true	"The file to import, .csv or .json"
// @Param			workspace	query		string	true	"ID of the workspace to import into"
// @Param			dateFormat	query		string	false	"Name of a date layout to use. Auto-detected when empty."
// @Router			/v1/import/preview [post]
func ImportPreview(c *gin.Context) {
	var query ImportQuery
	if err := c.BindQuery(&query); err != nil || query.WorkspaceID == cp_uuid.Nil {
		e := errWorkspaceIDParameter.Error()
		c.JSON(http.StatusBadRequest, ImportPreviewResponse{
			Error: &e,
		})
		return
	}

	var workspace models.Workspace
	err := models.DB.First(&workspace, query.WorkspaceID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportPreviewResponse{
			Error: &e,
		})
		return
	}

	table, err := parseUpload(c)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ImportPreviewResponse{
			Error: &e,
		})
		return
	}

	result := importer.Normalize(table, query.DateFormat)

	var lines []models.Line
	err = models.DB.Where("workspace_id = ?", workspace.ID).Find(&lines).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportPreviewResponse{
			Error: &e,
		})
		return
	}

	var mappings []models.TagMapping
	err = models.DB.Where("workspace_id = ?", workspace.ID).Find(&mappings).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportPreviewResponse{
			Error: &e,
		})
		return
	}

	layouts := make([]string, 0, len(importer.DateLayouts))
	for _, layout := range importer.DateLayouts {
		layouts = append(layouts, layout.Name)
	}

	data := ImportPreviewData{
		Results:          planner.Match(result.Rows, lines, mappings),
		TotalRows:        result.TotalRows,
		SkippedRows:      result.SkippedRows,
		Errors:           result.Errors,
		DateLayout:       result.DateLayout,
		CandidateLayouts: layouts,
	}

	c.JSON(http.StatusOK, ImportPreviewResponse{Data: &data})
}

// @Summary		Commit an import
// @Description	Commits the approved results of a reviewed import preview. New lines and the actuals for all approved results are created in one transaction.
// @Tags			Import
// @Accept			json
// @Produce		json
// @Success		201		{object}	ImportCommitResponse
// @Failure		400		{object}	ImportCommitResponse
// @Failure		404		{object}	ImportCommitResponse
// @Failure		500		{object}	ImportCommitResponse
// @Param			commit	body		ImportCommitEditable	true	"The reviewed import"
// @Router			/v1/import/commit [post]
func ImportCommit(c *gin.Context) {
	var editable ImportCommitEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportCommitResponse{
			Error: &e,
		})
		return
	}

	var workspace models.Workspace
	err = models.DB.First(&workspace, editable.WorkspaceID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportCommitResponse{
			Error: &e,
		})
		return
	}

	data := ImportCommitData{
		Lines:   make([]Line, 0, len(editable.Lines)),
		Actuals: make([]Actual, 0, len(editable.Results)),
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		linesByID := make(map[uuid.UUID]models.Line)

		for _, lineEditable := range editable.Lines {
			line := lineEditable.model()
			line.WorkspaceID = workspace.ID

			if err := tx.Create(&line).Error; err != nil {
				return err
			}

			linesByID[line.ID] = line
			data.Lines = append(data.Lines, newLine(c, line))
		}

		for _, result := range editable.Results {
			if !result.Approved {
				continue
			}

			actual := models.Actual{
				WorkspaceID: workspace.ID,
				LineID:      result.LineID,
				Date:        result.Row.Date,
				Amount:      result.Row.Amount,
				Tags:        result.Row.Tag,
				Description: result.Row.Description,
				Confidence:  result.Confidence,
				Approved:    true,
			}

			// The matched line determines the direction, the original
			// sign of the raw amount is only a fallback hint
			actual.Direction = models.DirectionExpense
			if result.LineID != nil {
				line, ok := linesByID[*result.LineID]
				if !ok {
					if err := tx.First(&line, *result.LineID).Error; err != nil {
						return err
					}
				}
				actual.Direction = line.Direction
			} else if result.Row.OriginalSign > 0 {
				actual.Direction = models.DirectionIncome
			}

			if raw, err := json.Marshal(result.Row.Raw); err == nil {
				actual.RawRecord = string(raw)
			}

			if err := tx.Create(&actual).Error; err != nil {
				return err
			}

			data.Actuals = append(data.Actuals, newActual(c, actual))
		}

		return nil
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportCommitResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusCreated, ImportCommitResponse{Data: &data})
}
