package models_test

import (
	"time"

	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestActualDefaultConfidence() {
	workspace := suite.createTestWorkspace("Actual defaults")

	actual := models.Actual{
		WorkspaceID: workspace.ID,
		Date:        types.NewDate(2026, time.January, 5),
		Amount:      decimal.NewFromInt(10),
		Direction:   models.DirectionExpense,
	}

	err := models.DB.Save(&actual).Error
	if err != nil {
		suite.Assert().FailNow("Resource could not be saved", err)
	}

	assert.Equal(suite.T(), models.ConfidenceUnmatched, actual.Confidence)
	assert.False(suite.T(), actual.Approved)
}

func (suite *TestSuiteStandard) TestActualInvalidDirection() {
	workspace := suite.createTestWorkspace("Actual direction")

	actual := models.Actual{
		WorkspaceID: workspace.ID,
		Date:        types.NewDate(2026, time.January, 5),
		Amount:      decimal.NewFromInt(10),
	}

	assert.ErrorIs(suite.T(), models.DB.Create(&actual).Error, models.ErrActualInvalidDirection)
}

func (suite *TestSuiteStandard) TestActualLineMustExist() {
	workspace := suite.createTestWorkspace("Actual references")

	missing := uuid.New()
	actual := models.Actual{
		WorkspaceID: workspace.ID,
		LineID:      &missing,
		Date:        types.NewDate(2026, time.January, 5),
		Amount:      decimal.NewFromInt(10),
		Direction:   models.DirectionExpense,
	}

	assert.ErrorIs(suite.T(), models.DB.Create(&actual).Error, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestActualCountsTagUse() {
	workspace := suite.createTestWorkspace("Tag counting")
	line := suite.createTestLine(workspace)

	for i := 1; i <= 2; i++ {
		actual := models.Actual{
			WorkspaceID: workspace.ID,
			LineID:      &line.ID,
			Date:        types.NewDate(2026, time.January, i),
			Amount:      decimal.NewFromInt(10),
			Direction:   models.DirectionExpense,
			Tags:        "housing,fixed",
		}

		err := models.DB.Create(&actual).Error
		if err != nil {
			suite.Assert().FailNow("Resource could not be saved", err)
		}
	}

	var usage models.TagUsage
	err := models.DB.First(&usage, "workspace_id = ? AND tag = ?", workspace.ID, "housing").Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), uint(2), usage.Count)

	err = models.DB.First(&usage, "workspace_id = ? AND tag = ?", workspace.ID, "fixed").Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), uint(2), usage.Count)
}

func (suite *TestSuiteStandard) TestActualUnbudgeted() {
	workspace := suite.createTestWorkspace("Unbudgeted actuals")

	// An actual without a line reference is a permanent first-class state
	actual := models.Actual{
		WorkspaceID: workspace.ID,
		Date:        types.NewDate(2026, time.January, 5),
		Amount:      decimal.NewFromInt(10),
		Direction:   models.DirectionExpense,
	}

	err := models.DB.Create(&actual).Error
	assert.Nil(suite.T(), err)

	var reread models.Actual
	err = models.DB.First(&reread, actual.ID).Error
	assert.Nil(suite.T(), err)
	assert.Nil(suite.T(), reread.LineID)
}
