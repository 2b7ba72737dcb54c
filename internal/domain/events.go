package domain

const (
	EventPredictionGenerated = "prediction.generated"
	EventFeedbackSubmitted   = "prediction.feedback_submitted"
	EventModelRecalibrated   = "prediction.model_recalibrated"
	EventPerformanceRecorded = "analytics.performance.recorded"
)

const EventSchemaVersion = "v1"

// PartitionKeyPath names the envelope field used as the Kafka message key.
func PartitionKeyPath(eventType string) string {
	switch eventType {
	case EventPredictionGenerated, EventFeedbackSubmitted, EventModelRecalibrated, EventPerformanceRecorded:
		return "data.user_id"
	default:
		return ""
	}
}
