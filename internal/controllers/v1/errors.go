package v1

import (
	"errors"
	"net/http"

	"github.com/cashplan/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

var (
	errWorkspaceIDParameter = errors.New("the workspace parameter must be set")
	errRangeParameters      = errors.New("the from and to query parameters must be set")
)

// Cleanup errors
var (
	errCleanupConfirmation = errors.New("the confirmation for the cleanup API call was incorrect")
)

// Import errors
var (
	errNoFilePost      = errors.New("you must send a file to this endpoint")
	errWrongFileSuffix = errors.New("this endpoint only supports files of the following types")
)

// Line errors
var (
	errLineDirectionInvalid = errors.New("the specified line direction is invalid")
	errLineFrequencyInvalid = errors.New("the specified line frequency is invalid")
)

// Actual errors
var (
	errActualConfidenceInvalid = errors.New("the specified confidence tier is invalid")
)
