package domain

const (
	MaxRecommendations = 3

	lowWatchTimeSeconds = 20
	lowEngagementRatio  = 0.05

	RecommendationShortenClips   = "shorten clips to improve retention"
	RecommendationCallsToAction  = "add clear calls-to-action"
	RecommendationPostingCadence = "keep a consistent posting cadence so your audience knows when to expect new clips"
	RecommendationRespond        = "respond to comments in the first hour to keep the conversation going"
	RecommendationTrending       = "use trending effects and sounds to improve discoverability"
)

var fillerRecommendations = []string{
	RecommendationPostingCadence,
	RecommendationRespond,
	RecommendationTrending,
}

// GenerateRecommendations applies the rule table to a baseline and pads the
// result with fillers to exactly MaxRecommendations entries.
func GenerateRecommendations(b Baseline) []string {
	out := make([]string, 0, MaxRecommendations)
	if b.AvgWatchTime < lowWatchTimeSeconds {
		out = append(out, RecommendationShortenClips)
	}
	if b.AvgEngagementRatio < lowEngagementRatio {
		out = append(out, RecommendationCallsToAction)
	}
	for _, filler := range fillerRecommendations {
		if len(out) >= MaxRecommendations {
			break
		}
		out = append(out, filler)
	}
	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out
}
