package domain

import (
	"fmt"
	"time"
)

const (
	DefaultBestHour = 9
	DefaultBestDay  = time.Monday
)

type PostingWindow struct {
	BestHour      int          `json:"best_hour"`
	BestDay       time.Weekday `json:"-"`
	BestTimeOfDay string       `json:"best_time_of_day"`
	BestDayOfWeek string       `json:"best_day_of_week"`
	// HourShare is the best hour's fraction of all accumulated engagement.
	HourShare float64 `json:"hour_share"`
}

// AnalyzeTiming sums engagement scores per UTC hour and weekday. The first
// strictly greater total wins a scan from hour 0 and from Sunday. Without any
// positive score the defaults apply.
func AnalyzeTiming(records []PerformanceRecord) PostingWindow {
	var hours [24]float64
	var days [7]float64
	var total float64
	for _, r := range records {
		score := r.EngagementScore()
		published := r.PublishedAt.UTC()
		hours[published.Hour()] += score
		days[published.Weekday()] += score
		total += score
	}

	bestHour, hourScore := DefaultBestHour, 0.0
	for h, score := range hours {
		if score > hourScore {
			bestHour, hourScore = h, score
		}
	}
	bestDay, dayScore := DefaultBestDay, 0.0
	for d, score := range days {
		if score > dayScore {
			bestDay, dayScore = time.Weekday(d), score
		}
	}

	window := PostingWindow{
		BestHour:      bestHour,
		BestDay:       bestDay,
		BestTimeOfDay: FormatHour(bestHour),
		BestDayOfWeek: bestDay.String(),
	}
	if total > 0 {
		window.HourShare = hourScore / total
	}
	return window
}

// FormatHour renders 0..23 as "H:00 AM/PM".
func FormatHour(hour int) string {
	hour = ((hour % 24) + 24) % 24
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:00 %s", display, suffix)
}
