package models_test

import (
	"time"

	"github.com/cashplan/backend/internal/models"
	"github.com/cashplan/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestLineTrimWhitespace() {
	workspace := suite.createTestWorkspace("Line trimming")

	line := models.Line{
		WorkspaceID: workspace.ID,
		Description: " Rent ",
		Tags:        " housing , fixed ,",
		Direction:   models.DirectionExpense,
		Amount:      decimal.NewFromInt(1200),
		Frequency:   models.FrequencyMonthly,
		StartDate:   types.NewDate(2026, time.January, 1),
	}

	err := models.DB.Save(&line).Error
	if err != nil {
		suite.Assert().FailNow("Resource could not be saved", err)
	}

	assert.Equal(suite.T(), "Rent", line.Description)
	assert.Equal(suite.T(), "housing,fixed", line.Tags)
	assert.Equal(suite.T(), []string{"housing", "fixed"}, line.TagList())
	assert.Equal(suite.T(), "housing", line.PrimaryTag())
}

func (suite *TestSuiteStandard) TestLineInvalidEnums() {
	workspace := suite.createTestWorkspace("Line enums")

	line := models.Line{
		WorkspaceID: workspace.ID,
		Direction:   "sideways",
		Frequency:   models.FrequencyMonthly,
	}
	assert.ErrorIs(suite.T(), models.DB.Create(&line).Error, models.ErrLineInvalidDirection)

	line = models.Line{
		WorkspaceID: workspace.ID,
		Direction:   models.DirectionExpense,
		Frequency:   "sometimes",
	}
	assert.ErrorIs(suite.T(), models.DB.Create(&line).Error, models.ErrLineInvalidFrequency)
}

func (suite *TestSuiteStandard) TestLineEndBeforeStart() {
	workspace := suite.createTestWorkspace("Line dates")

	end := types.NewDate(2025, time.December, 31)
	line := models.Line{
		WorkspaceID: workspace.ID,
		Direction:   models.DirectionExpense,
		Frequency:   models.FrequencyMonthly,
		StartDate:   types.NewDate(2026, time.January, 1),
		EndDate:     &end,
	}

	assert.ErrorIs(suite.T(), models.DB.Create(&line).Error, models.ErrLineEndBeforeStart)
}

func (suite *TestSuiteStandard) TestLineNegativeAmount() {
	workspace := suite.createTestWorkspace("Line amounts")

	line := models.Line{
		WorkspaceID: workspace.ID,
		Direction:   models.DirectionExpense,
		Frequency:   models.FrequencyMonthly,
		Amount:      decimal.NewFromInt(-10),
		StartDate:   types.NewDate(2026, time.January, 1),
	}

	assert.ErrorIs(suite.T(), models.DB.Create(&line).Error, models.ErrLineAmountNegative)
}

func (suite *TestSuiteStandard) TestLineWorkspaceMustExist() {
	line := models.Line{
		WorkspaceID: uuid.New(),
		Direction:   models.DirectionExpense,
		Frequency:   models.FrequencyMonthly,
		StartDate:   types.NewDate(2026, time.January, 1),
	}

	assert.ErrorIs(suite.T(), models.DB.Create(&line).Error, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestSplitTags() {
	assert.Equal(suite.T(), []string{}, models.SplitTags(""))
	assert.Equal(suite.T(), []string{"a", "b"}, models.SplitTags(" a ,, b "))
	assert.Equal(suite.T(), "a,b", models.NormalizeTags(" a ,, b "))
}
