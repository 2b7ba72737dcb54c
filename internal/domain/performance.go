package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// PerformanceRecord is one observed outcome for a published content item.
type PerformanceRecord struct {
	UserID           string    `json:"user_id"`
	ContentID        string    `json:"content_id"`
	Platform         string    `json:"platform"`
	Views            int64     `json:"views"`
	Likes            int64     `json:"likes"`
	Comments         int64     `json:"comments"`
	WatchTimeSeconds float64   `json:"watch_time_seconds"`
	PublishedAt      time.Time `json:"published_at"`
}

// EngagementScore is (likes+comments)/views, or 0 for a record without views.
func (r PerformanceRecord) EngagementScore() float64 {
	if r.Views <= 0 {
		return 0
	}
	return float64(r.Likes+r.Comments) / float64(r.Views)
}

func ValidatePerformanceRecord(r PerformanceRecord) error {
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.ContentID) == "" {
		return fmt.Errorf("%w: content_id is required", ErrInvalidInput)
	}
	if r.Views < 0 || r.Likes < 0 || r.Comments < 0 {
		return fmt.Errorf("%w: metrics must be non-negative", ErrInvalidInput)
	}
	if r.WatchTimeSeconds < 0 || math.IsNaN(r.WatchTimeSeconds) || math.IsInf(r.WatchTimeSeconds, 0) {
		return fmt.Errorf("%w: watch_time_seconds must be a non-negative number", ErrInvalidInput)
	}
	if r.PublishedAt.IsZero() {
		return fmt.Errorf("%w: published_at is required", ErrInvalidInput)
	}
	return nil
}

// SortByPublishedAt returns a copy ordered by publish time. Equal timestamps
// keep their input order.
func SortByPublishedAt(records []PerformanceRecord) []PerformanceRecord {
	out := make([]PerformanceRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.Before(out[j].PublishedAt)
	})
	return out
}

// MostRecent returns the last n records of an already ordered slice.
func MostRecent(records []PerformanceRecord, n int) []PerformanceRecord {
	if n <= 0 || len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}
