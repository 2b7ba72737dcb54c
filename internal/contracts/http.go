package contracts

type MetricValues struct {
	Views    *float64 `json:"views,omitempty"`
	Likes    *float64 `json:"likes,omitempty"`
	Comments *float64 `json:"comments,omitempty"`
}

type FeedbackMetadata struct {
	Predicted              MetricValues `json:"predicted"`
	Actual                 MetricValues `json:"actual"`
	FollowedRecommendation bool         `json:"followed_recommendation"`
}

type SubmitFeedbackRequest struct {
	PredictionID string            `json:"prediction_id"`
	Rating       int               `json:"rating"`
	WasHelpful   *bool             `json:"was_helpful"`
	Comment      string            `json:"comment,omitempty"`
	Metadata     *FeedbackMetadata `json:"metadata,omitempty"`
}

type RecordPerformanceRequest struct {
	ContentID        string  `json:"content_id"`
	Platform         string  `json:"platform"`
	Views            int64   `json:"views"`
	Likes            int64   `json:"likes"`
	Comments         int64   `json:"comments"`
	WatchTimeSeconds float64 `json:"watch_time_seconds"`
	PublishedAt      string  `json:"published_at"`
}
