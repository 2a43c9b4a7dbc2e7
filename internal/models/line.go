package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cashplan/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Direction is the flow direction of a line or actual.
//
// Amounts are always stored as non-negative magnitudes, the direction is
// carried by this flag and never by the sign. This prevents sign convention
// differences between bank exports from leaking into stored data.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Valid reports whether the direction is in the allowed set.
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// Frequency defines how often a line recurs.
type Frequency string

const (
	FrequencyOnce      Frequency = "once"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnually  Frequency = "annually"
)

// Valid reports whether the frequency is in the allowed set.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually:
		return true
	}

	return false
}

// Line is a recurring or one-off budgeted income or expense definition.
type Line struct {
	DefaultModel
	Workspace   Workspace `json:"-"`
	WorkspaceID uuid.UUID
	Description string
	Tags        string // Comma separated free-text tags. The first tag is the primary grouping key.
	Direction   Direction
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Always a non-negative magnitude
	Frequency   Frequency
	StartDate   types.Date
	EndDate     *types.Date // Inclusive. A line without an end date recurs indefinitely.
}

var (
	ErrLineAmountNegative   = errors.New("line amounts must not be negative")
	ErrLineInvalidDirection = errors.New("the line direction must be income or expense")
	ErrLineInvalidFrequency = errors.New("the line frequency is not supported")
	ErrLineEndBeforeStart   = errors.New("the line end date must not be before its start date")
)

// BeforeSave normalizes strings and verifies the enum fields and dates.
func (l *Line) BeforeSave(_ *gorm.DB) error {
	l.Description = strings.TrimSpace(l.Description)
	l.Tags = NormalizeTags(l.Tags)

	if !l.Direction.Valid() {
		return fmt.Errorf("%w: %s", ErrLineInvalidDirection, l.Direction)
	}

	if !l.Frequency.Valid() {
		return fmt.Errorf("%w: %s", ErrLineInvalidFrequency, l.Frequency)
	}

	if l.EndDate != nil && l.EndDate.Before(l.StartDate) {
		return ErrLineEndBeforeStart
	}

	return nil
}

// AfterSave rejects negative magnitudes.
func (l *Line) AfterSave(_ *gorm.DB) error {
	if l.Amount.IsNegative() {
		return ErrLineAmountNegative
	}

	return nil
}

func (l *Line) BeforeCreate(tx *gorm.DB) error {
	_ = l.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*Line)
	return l.checkIntegrity(tx, *toSave)
}

// BeforeUpdate verifies the state of the line before
// committing an update to the database.
func (l *Line) BeforeUpdate(tx *gorm.DB) error {
	toSave := tx.Statement.Dest.(Line)

	if tx.Statement.Changed("WorkspaceID") {
		err := l.checkIntegrity(tx, toSave)
		if err != nil {
			return err
		}
	}

	return nil
}

// checkIntegrity verifies references to other resources.
func (l *Line) checkIntegrity(tx *gorm.DB, toSave Line) error {
	return tx.First(&Workspace{}, toSave.WorkspaceID).Error
}

// TagList returns the tags of the line as a slice.
func (l Line) TagList() []string {
	return SplitTags(l.Tags)
}

// PrimaryTag returns the first tag, the grouping key for category views.
func (l Line) PrimaryTag() string {
	tags := l.TagList()
	if len(tags) == 0 {
		return ""
	}

	return tags[0]
}

// NormalizeTags trims every tag and drops empty ones, preserving order.
func NormalizeTags(raw string) string {
	return strings.Join(SplitTags(raw), ",")
}

// SplitTags splits a comma separated tag string into its non-empty tags.
func SplitTags(raw string) []string {
	tags := make([]string, 0)
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}
