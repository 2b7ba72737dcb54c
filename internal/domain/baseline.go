package domain

// Baseline holds aggregate means over a creator's history.
type Baseline struct {
	AvgViews           float64 `json:"avg_views"`
	AvgLikes           float64 `json:"avg_likes"`
	AvgComments        float64 `json:"avg_comments"`
	AvgEngagementRatio float64 `json:"avg_engagement_ratio"`
	AvgWatchTime       float64 `json:"avg_watch_time"`
}

const defaultEngagementRatio = 0.1

// DefaultBaseline is the cold-start baseline for creators without history.
var DefaultBaseline = Baseline{
	AvgViews:           1000,
	AvgLikes:           100,
	AvgComments:        10,
	AvgEngagementRatio: defaultEngagementRatio,
	AvgWatchTime:       30,
}

func EstimateBaseline(records []PerformanceRecord) Baseline {
	if len(records) == 0 {
		return DefaultBaseline
	}
	var views, likes, comments, watch float64
	for _, r := range records {
		views += float64(r.Views)
		likes += float64(r.Likes)
		comments += float64(r.Comments)
		watch += r.WatchTimeSeconds
	}
	n := float64(len(records))
	ratio := defaultEngagementRatio
	if views > 0 {
		ratio = (likes + comments) / views
	}
	return Baseline{
		AvgViews:           views / n,
		AvgLikes:           likes / n,
		AvgComments:        comments / n,
		AvgEngagementRatio: ratio,
		AvgWatchTime:       watch / n,
	}
}
