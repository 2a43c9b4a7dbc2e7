package models_test

import (
	"github.com/cashplan/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestTagUsageUnique() {
	workspace := suite.createTestWorkspace("Tag usage")

	usage := models.TagUsage{WorkspaceID: workspace.ID, Tag: "food", Count: 1}
	err := models.DB.Create(&usage).Error
	assert.Nil(suite.T(), err)

	duplicate := models.TagUsage{WorkspaceID: workspace.ID, Tag: "food", Count: 1}
	err = models.DB.Create(&duplicate).Error
	assert.ErrorIs(suite.T(), err, models.ErrTagUsageNotUnique)
}

func (suite *TestSuiteStandard) TestTagMappingTrimWhitespace() {
	workspace := suite.createTestWorkspace("Tag mappings")

	mapping := models.TagMapping{
		WorkspaceID: workspace.ID,
		Priority:    1,
		Match:       " *netflix* ",
		Tag:         " Streaming ",
	}

	err := models.DB.Save(&mapping).Error
	if err != nil {
		suite.Assert().FailNow("Resource could not be saved", err)
	}

	assert.Equal(suite.T(), "*netflix*", mapping.Match)
	assert.Equal(suite.T(), "Streaming", mapping.Tag)
}

func (suite *TestSuiteStandard) TestTagMappingWorkspaceMustExist() {
	mapping := models.TagMapping{
		WorkspaceID: uuid.New(),
		Match:       "*",
		Tag:         "Other",
	}

	assert.ErrorIs(suite.T(), models.DB.Create(&mapping).Error, models.ErrResourceNotFound)
}
