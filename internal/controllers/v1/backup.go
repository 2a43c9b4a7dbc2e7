package v1

import (
	"io"
	"net/http"
	"time"

	"github.com/cashplan/backend/internal/backup"
	"github.com/cashplan/backend/internal/httputil"
	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/planner"
	"github.com/cashplan/backend/internal/types"
	cp_uuid "github.com/cashplan/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterBackupRoutes registers the routes for snapshot export and
// restore with the RouterGroup that is passed.
func RegisterBackupRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsBackup)
	r.GET("", GetBackup)
	r.POST("", RestoreBackup)
}

type BackupQuery struct {
	WorkspaceID cp_uuid.UUID `form:"workspace" binding:"required"` // ID of the workspace to export
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Backup
// @Success		204
// @Router			/v1/backup [options]
func OptionsBackup(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Export a snapshot
// @Description	Exports a workspace with all its lines and actuals as a versioned snapshot, including a point-in-time comparison
// @Tags			Backup
// @Produce		json
// @Success		200	{object}	backup.Snapshot
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			workspace	query	string	true	"ID of the workspace to export"
// @Router			/v1/backup [get]
func GetBackup(c *gin.Context) {
	var query BackupQuery
	if err := c.Bind(&query); err != nil {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errWorkspaceIDParameter.Error(),
		})
		return
	}

	var workspace models.Workspace
	err := models.DB.First(&workspace, query.WorkspaceID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var lines []models.Line
	err = models.DB.Where("workspace_id = ?", workspace.ID).Find(&lines).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var actuals []models.Actual
	err = models.DB.Where("workspace_id = ?", workspace.ID).Find(&actuals).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	// The comparison is a point-in-time convenience for the snapshot
	// consumer, it is skipped when the plan has not started yet
	var comparison *planner.Comparison
	now := types.DateOf(time.Now())
	if !now.Before(workspace.StartDate) {
		occurrences, err := planner.Project(lines, workspace.StartDate, now)
		if err == nil {
			result := planner.Compare(occurrences, actuals, lines)
			comparison = &result
		}
	}

	c.JSON(http.StatusOK, backup.New(workspace, lines, actuals, comparison))
}

type RestoreResponse struct {
	Data  *Workspace `json:"data"`                                                     // The restored workspace
	Error *string    `json:"error" example:"the workspace name must be unique"` // The error, if any occurred
}

// @Summary		Restore a snapshot
// @Description	Restores a snapshot into a new workspace. Older snapshot versions are migrated first, the snapshot is validated before anything is written and the restore is aborted entirely on the first validation failure.
// @Tags			Backup
// @Accept			json
// @Produce		json
// @Success		201			{object}	RestoreResponse
// @Failure		400			{object}	RestoreResponse
// @Failure		500			{object}	RestoreResponse
// @Param			snapshot	body		backup.Snapshot	true	"The snapshot to restore"
// @Router			/v1/backup [post]
func RestoreBackup(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, RestoreResponse{
			Error: &e,
		})
		return
	}

	payload, err = backup.Migrate(payload)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, RestoreResponse{
			Error: &e,
		})
		return
	}

	result := backup.Validate(payload)
	if !result.Valid {
		c.JSON(http.StatusBadRequest, RestoreResponse{
			Error: &result.Error,
		})
		return
	}

	snapshot := result.Data

	var workspace models.Workspace
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		workspace = models.Workspace{
			Name:            snapshot.Workspace.Name,
			Note:            snapshot.Workspace.Note,
			Currency:        snapshot.Workspace.Currency,
			StartingBalance: snapshot.Workspace.StartingBalance,
			StartDate:       snapshot.Workspace.StartDate,
		}

		if err := tx.Create(&workspace).Error; err != nil {
			return err
		}

		// Restored resources get fresh IDs, the snapshot IDs only
		// serve to remap the line references of the actuals
		lineIDs := make(map[uuid.UUID]uuid.UUID, len(snapshot.Lines))

		for _, snapshotLine := range snapshot.Lines {
			line := models.Line{
				WorkspaceID: workspace.ID,
				Description: snapshotLine.Description,
				Tags:        snapshotLine.Tags,
				Direction:   snapshotLine.Direction,
				Amount:      snapshotLine.Amount,
				Frequency:   snapshotLine.Frequency,
				StartDate:   snapshotLine.StartDate,
				EndDate:     snapshotLine.EndDate,
			}

			if err := tx.Create(&line).Error; err != nil {
				return err
			}

			lineIDs[snapshotLine.ID] = line.ID
		}

		for _, snapshotActual := range snapshot.Actuals {
			var lineID *uuid.UUID
			if snapshotActual.LineID != nil {
				if mapped, ok := lineIDs[*snapshotActual.LineID]; ok {
					lineID = &mapped
				}
			}

			actual := models.Actual{
				WorkspaceID: workspace.ID,
				LineID:      lineID,
				Date:        snapshotActual.Date,
				Amount:      snapshotActual.Amount,
				Direction:   snapshotActual.Direction,
				Tags:        snapshotActual.Tags,
				Description: snapshotActual.Description,
				RawRecord:   snapshotActual.RawRecord,
				Confidence:  snapshotActual.Confidence,
				Approved:    snapshotActual.Approved,
			}

			if err := tx.Create(&actual).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RestoreResponse{
			Error: &e,
		})
		return
	}

	data := newWorkspace(c, workspace)
	c.JSON(http.StatusCreated, RestoreResponse{Data: &data})
}
