package models

import (
	"errors"
	"strings"

	"github.com/cashplan/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Workspace is the highest level of organization in Cashplan. All other
// resources reference it directly or transitively.
//
// The starting balance and start date anchor the envelope forecast:
// spend is burned down from StartingBalance beginning at StartDate.
type Workspace struct {
	DefaultModel
	Name            string `gorm:"uniqueIndex"`
	Note            string
	Currency        string          // Currency symbol used for display, e.g. "€"
	StartingBalance decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	StartDate       types.Date
}

var ErrWorkspaceNameNotUnique = errors.New("the workspace name must be unique")

// BeforeSave trims whitespace from all strings.
func (w *Workspace) BeforeSave(_ *gorm.DB) error {
	w.Name = strings.TrimSpace(w.Name)
	w.Note = strings.TrimSpace(w.Note)
	w.Currency = strings.TrimSpace(w.Currency)

	return nil
}
