package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagUsage counts how often a tag has been used on actuals in a workspace.
//
// The cache lets clients offer frequently used tags first without
// scanning all actuals.
type TagUsage struct {
	DefaultModel
	Workspace   Workspace `json:"-"`
	WorkspaceID uuid.UUID `gorm:"uniqueIndex:tag_usage_workspace_tag"`
	Tag         string    `gorm:"uniqueIndex:tag_usage_workspace_tag"`
	Count       uint
}

var ErrTagUsageNotUnique = errors.New("there is already a usage counter for this tag")

// CountTagUse increments the usage counter for each tag, creating
// missing counters on the fly.
func CountTagUse(tx *gorm.DB, workspaceID uuid.UUID, tags []string) error {
	for _, tag := range tags {
		usage := TagUsage{
			WorkspaceID: workspaceID,
			Tag:         tag,
			Count:       1,
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "tag"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1")}),
		}).Create(&usage).Error
		if err != nil {
			return err
		}
	}

	return nil
}

// TagMapping is a learned description to tag rule.
//
// Mappings are glob patterns applied to imported row descriptions in
// priority order before matching, so rows without a usable category
// hint still end up with a tag.
type TagMapping struct {
	DefaultModel
	Workspace   Workspace `json:"-"`
	WorkspaceID uuid.UUID
	Priority    uint
	Match       string // Glob pattern matched against the row description, e.g. "REWE*"
	Tag         string
}

// BeforeSave trims whitespace from all strings.
func (m *TagMapping) BeforeSave(_ *gorm.DB) error {
	m.Match = strings.TrimSpace(m.Match)
	m.Tag = strings.TrimSpace(m.Tag)

	return nil
}

func (m *TagMapping) BeforeCreate(tx *gorm.DB) error {
	_ = m.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*TagMapping)
	return tx.First(&Workspace{}, toSave.WorkspaceID).Error
}
