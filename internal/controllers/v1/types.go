package v1

import (
	"time"

	cp_uuid "github.com/cashplan/backend/internal/uuid"
)

type URIID struct {
	ID cp_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}

// QueryRange is the shared date window for the calculation endpoints.
type QueryRange struct {
	WorkspaceID cp_uuid.UUID `form:"workspace"`                                                 // ID of the workspace
	From        time.Time    `form:"from" time_format:"2006-01-02" time_utc:"1" example:"2026-01-01"` // Start of the window
	To          time.Time    `form:"to" time_format:"2006-01-02" time_utc:"1" example:"2026-06-30"`   // End of the window, inclusive
}
