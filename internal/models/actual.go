package models

import (
	"errors"
	"strings"

	"github.com/cashplan/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Confidence is the matching engine's certainty tier for a proposed
// link between an imported row and a line.
//
// Ordered by matching certainty: high > medium > low. "manual" is
// user-asserted and outranks the automatic tiers by authority,
// "unmatched" means no candidate was found.
type Confidence string

const (
	ConfidenceHigh      Confidence = "high"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceLow       Confidence = "low"
	ConfidenceManual    Confidence = "manual"
	ConfidenceUnmatched Confidence = "unmatched"
)

// Valid reports whether the confidence tier is in the allowed set.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceManual, ConfidenceUnmatched:
		return true
	}

	return false
}

// Actual is a confirmed real-world transaction, optionally linked to a line.
//
// Actuals with a nil LineID are a permanent first-class state, they appear
// as "unbudgeted" in comparisons. Deleting a line keeps its actuals and
// clears the reference.
type Actual struct {
	DefaultModel
	Workspace   Workspace `json:"-"`
	WorkspaceID uuid.UUID
	Line        *Line      `json:"-"`
	LineID      *uuid.UUID `gorm:"constraint:OnDelete:SET NULL"`
	Date        types.Date
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Always a non-negative magnitude
	Direction   Direction
	Tags        string
	Description string
	RawRecord   string     // The original imported record, retained verbatim for audit
	Confidence  Confidence // Confidence tier at the time the match was committed
	Approved    bool
}

var (
	ErrActualAmountNegative   = errors.New("actual amounts must not be negative")
	ErrActualInvalidDirection = errors.New("the actual direction must be income or expense")
)

// BeforeSave normalizes strings and verifies the enum fields.
func (a *Actual) BeforeSave(_ *gorm.DB) error {
	a.Description = strings.TrimSpace(a.Description)
	a.Tags = NormalizeTags(a.Tags)

	if !a.Direction.Valid() {
		return ErrActualInvalidDirection
	}

	if a.Confidence == "" {
		a.Confidence = ConfidenceUnmatched
	}

	return nil
}

// AfterSave rejects negative magnitudes.
func (a *Actual) AfterSave(_ *gorm.DB) error {
	if a.Amount.IsNegative() {
		return ErrActualAmountNegative
	}

	return nil
}

func (a *Actual) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Actual)
	return a.checkIntegrity(tx, *toSave)
}

// BeforeUpdate verifies the state of the actual before
// committing an update to the database.
func (a *Actual) BeforeUpdate(tx *gorm.DB) error {
	toSave := tx.Statement.Dest.(Actual)

	if tx.Statement.Changed("WorkspaceID") || tx.Statement.Changed("LineID") {
		err := a.checkIntegrity(tx, toSave)
		if err != nil {
			return err
		}
	}

	return nil
}

// AfterCreate maintains the tag usage cache for the workspace.
func (a *Actual) AfterCreate(tx *gorm.DB) error {
	return CountTagUse(tx, a.WorkspaceID, SplitTags(a.Tags))
}

// checkIntegrity verifies references to other resources.
func (a *Actual) checkIntegrity(tx *gorm.DB, toSave Actual) error {
	err := tx.First(&Workspace{}, toSave.WorkspaceID).Error
	if err != nil {
		return err
	}

	if toSave.LineID != nil {
		return tx.First(&Line{}, *toSave.LineID).Error
	}

	return nil
}

// TagList returns the tags of the actual as a slice.
func (a Actual) TagList() []string {
	return SplitTags(a.Tags)
}
