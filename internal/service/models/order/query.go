package order

import (
	"time"

	"github.com/corray333/jersey-shop/internal/service/models/page"
)

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	IDs     []int64 `json:"ids,omitempty"`
	UserIDs []int64 `json:"userIds,omitempty"`
	page.Page
}

// Period is a half-open time range [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today covers the calendar day containing now.
func Today(now time.Time) Period {
	start := startOfDay(now)
	return Period{Start: start, End: start.AddDate(0, 0, 1)}
}

// Yesterday covers the calendar day before now.
func Yesterday(now time.Time) Period {
	end := startOfDay(now)
	return Period{Start: end.AddDate(0, 0, -1), End: end}
}

// LastMonth covers the calendar month before the one containing now.
func LastMonth(now time.Time) Period {
	y, m, _ := now.Date()
	end := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	return Period{Start: end.AddDate(0, -1, 0), End: end}
}
