package models

// ListEventsQuery represents query parameters for listing logging events.
type ListEventsQuery struct {
	User         string   `form:"user" example:"alice"`
	Level        string   `form:"level" example:"INFO"`
	LevelNum     *int     `form:"levelno" example:"20"`
	Search       string   `form:"search" example:"timeout"`
	CreatedAfter *float64 `form:"created_after" example:"1700000000"`
	// CreatedBefore is exclusive.
	CreatedBefore *float64 `form:"created_before" example:"1700003600"`
	Page          int      `form:"page" binding:"omitempty,min=1" example:"1"`
	Limit         int      `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
} // @name ListEventsQuery

// Normalize applies paging defaults and bounds.
func (q *ListEventsQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}

// Pagination contains pagination metadata.
type Pagination struct {
	CurrentPage  int   `json:"current_page" example:"1"`
	PageSize     int   `json:"page_size" example:"20"`
	TotalPages   int   `json:"total_pages" example:"5"`
	TotalRecords int64 `json:"total_records" example:"100"`
} // @name Pagination

// NewPagination computes page metadata for a normalized query.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage:  page,
		PageSize:     limit,
		TotalPages:   totalPages,
		TotalRecords: total,
	}
}

// EventListResponse represents the response for listing logging events.
type EventListResponse struct {
	Events     []LoggingEvent `json:"events"`
	Pagination Pagination     `json:"pagination"`
} // @name EventListResponse

// DeleteEventsRequest is the body of a bulk delete.
type DeleteEventsRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
} // @name DeleteEventsRequest

// Stats summarizes row counts across the schema.
type Stats struct {
	Users         int64            `json:"users" example:"3"`
	Levels        int64            `json:"levels" example:"5"`
	Events        int64            `json:"events" example:"1250"`
	EventsByLevel map[string]int64 `json:"events_by_level"`
} // @name Stats

// LevelCount is one row of a per-level event count.
type LevelCount struct {
	LoggingLevelID uint
	Count          int64
}
