package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	ServiceID    string
	ModelVersion string

	HTTPPort int
	GRPCPort int

	StorageDriver string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string

	MaxDBConns                    int32
	KafkaConsumerGroup            string
	KafkaTopicPerformanceRecorded string
	KafkaTopicPredictionGenerated string
	KafkaTopicFeedbackSubmitted   string
	KafkaTopicModelRecalibrated   string

	OutboxPollInterval   time.Duration
	OutboxBatchSize      int
	ConsumerPollInterval time.Duration
	HealthCheckInterval  time.Duration

	PredictionCacheTTL time.Duration
	LocalCacheMaxSize  int
	CalibrationWindow  int
	FeedbackLookback   int
	AutoRecalibrate    bool
	IdempotencyTTL     time.Duration
	EventDedupTTL      time.Duration
}

type configFile struct {
	Service struct {
		ID           string `yaml:"id"`
		ModelVersion string `yaml:"model_version"`
		HTTPPort     int    `yaml:"http_port"`
		GRPCPort     int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		StorageDriver                 string   `yaml:"storage_driver"`
		PostgresURL                   string   `yaml:"postgres_url"`
		RedisURL                      string   `yaml:"redis_url"`
		KafkaBrokers                  []string `yaml:"kafka_brokers"`
		KafkaConsumerGroup            string   `yaml:"kafka_consumer_group"`
		KafkaTopicPerformanceRecorded string   `yaml:"kafka_topic_performance_recorded"`
		KafkaTopicPredictionGenerated string   `yaml:"kafka_topic_prediction_generated"`
		KafkaTopicFeedbackSubmitted   string   `yaml:"kafka_topic_feedback_submitted"`
		KafkaTopicModelRecalibrated   string   `yaml:"kafka_topic_model_recalibrated"`
	} `yaml:"dependencies"`
	Prediction struct {
		CacheTTLSeconds   int   `yaml:"cache_ttl_seconds"`
		LocalCacheMaxSize int   `yaml:"local_cache_max_size"`
		CalibrationWindow int   `yaml:"calibration_window"`
		FeedbackLookback  int   `yaml:"feedback_lookback"`
		AutoRecalibrate   *bool `yaml:"auto_recalibrate"`
	} `yaml:"prediction"`
}

// LoadConfig layers defaults, the optional YAML file at path and
// environment overrides, in that order.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                     "predictive-analytics",
		ModelVersion:                  "v2.0.0",
		HTTPPort:                      8080,
		GRPCPort:                      9090,
		StorageDriver:                 StorageDriverPostgres,
		MaxDBConns:                    20,
		KafkaConsumerGroup:            "predictive-analytics",
		KafkaTopicPerformanceRecorded: "analytics.performance.recorded",
		KafkaTopicPredictionGenerated: "prediction.generated",
		KafkaTopicFeedbackSubmitted:   "prediction.feedback_submitted",
		KafkaTopicModelRecalibrated:   "prediction.model_recalibrated",
		OutboxPollInterval:            2 * time.Second,
		OutboxBatchSize:               100,
		ConsumerPollInterval:          2 * time.Second,
		HealthCheckInterval:           10 * time.Second,
		PredictionCacheTTL:            15 * time.Minute,
		LocalCacheMaxSize:             10000,
		CalibrationWindow:             20,
		FeedbackLookback:              100,
		IdempotencyTTL:                7 * 24 * time.Hour,
		EventDedupTTL:                 7 * 24 * time.Hour,
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		applyFile(&cfg, f)
	case !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.ModelVersion = envOrDefault("MODEL_VERSION", cfg.ModelVersion)
	cfg.StorageDriver = strings.ToLower(envOrDefault("STORAGE_DRIVER", cfg.StorageDriver))
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaConsumerGroup = envOrDefault("KAFKA_CONSUMER_GROUP", cfg.KafkaConsumerGroup)
	cfg.KafkaTopicPerformanceRecorded = envOrDefault("KAFKA_TOPIC_PERFORMANCE_RECORDED", cfg.KafkaTopicPerformanceRecorded)
	cfg.KafkaTopicPredictionGenerated = envOrDefault("KAFKA_TOPIC_PREDICTION_GENERATED", cfg.KafkaTopicPredictionGenerated)
	cfg.KafkaTopicFeedbackSubmitted = envOrDefault("KAFKA_TOPIC_FEEDBACK_SUBMITTED", cfg.KafkaTopicFeedbackSubmitted)
	cfg.KafkaTopicModelRecalibrated = envOrDefault("KAFKA_TOPIC_MODEL_RECALIBRATED", cfg.KafkaTopicModelRecalibrated)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.ConsumerPollInterval = time.Duration(envInt("CONSUMER_POLL_SECONDS", int(cfg.ConsumerPollInterval.Seconds()))) * time.Second
	cfg.HealthCheckInterval = time.Duration(envInt("HEALTH_CHECK_SECONDS", int(cfg.HealthCheckInterval.Seconds()))) * time.Second
	cfg.PredictionCacheTTL = time.Duration(envInt("PREDICTION_CACHE_TTL_SECONDS", int(cfg.PredictionCacheTTL.Seconds()))) * time.Second
	cfg.LocalCacheMaxSize = envInt("LOCAL_CACHE_MAX_SIZE", cfg.LocalCacheMaxSize)
	cfg.CalibrationWindow = envInt("CALIBRATION_WINDOW", cfg.CalibrationWindow)
	cfg.FeedbackLookback = envInt("FEEDBACK_LOOKBACK", cfg.FeedbackLookback)
	cfg.AutoRecalibrate = envBool("AUTO_RECALIBRATE", cfg.AutoRecalibrate)
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_HOURS", int(cfg.IdempotencyTTL.Hours()))) * time.Hour
	cfg.EventDedupTTL = time.Duration(envInt("EVENT_DEDUP_TTL_HOURS", int(cfg.EventDedupTTL.Hours()))) * time.Hour

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
		}
	case StorageDriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.PredictionCacheTTL <= 0 {
		return Config{}, fmt.Errorf("PREDICTION_CACHE_TTL_SECONDS must be positive")
	}
	if cfg.CalibrationWindow <= 0 || cfg.FeedbackLookback < cfg.CalibrationWindow {
		return Config{}, fmt.Errorf("FEEDBACK_LOOKBACK must be at least CALIBRATION_WINDOW and both positive")
	}
	return cfg, nil
}

func applyFile(cfg *Config, f configFile) {
	if f.Service.ID != "" {
		cfg.ServiceID = f.Service.ID
	}
	if f.Service.ModelVersion != "" {
		cfg.ModelVersion = f.Service.ModelVersion
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Dependencies.StorageDriver != "" {
		cfg.StorageDriver = f.Dependencies.StorageDriver
	}
	if f.Dependencies.PostgresURL != "" {
		cfg.DatabaseURL = f.Dependencies.PostgresURL
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
	}
	if f.Dependencies.KafkaConsumerGroup != "" {
		cfg.KafkaConsumerGroup = f.Dependencies.KafkaConsumerGroup
	}
	if f.Dependencies.KafkaTopicPerformanceRecorded != "" {
		cfg.KafkaTopicPerformanceRecorded = f.Dependencies.KafkaTopicPerformanceRecorded
	}
	if f.Dependencies.KafkaTopicPredictionGenerated != "" {
		cfg.KafkaTopicPredictionGenerated = f.Dependencies.KafkaTopicPredictionGenerated
	}
	if f.Dependencies.KafkaTopicFeedbackSubmitted != "" {
		cfg.KafkaTopicFeedbackSubmitted = f.Dependencies.KafkaTopicFeedbackSubmitted
	}
	if f.Dependencies.KafkaTopicModelRecalibrated != "" {
		cfg.KafkaTopicModelRecalibrated = f.Dependencies.KafkaTopicModelRecalibrated
	}
	if f.Prediction.CacheTTLSeconds > 0 {
		cfg.PredictionCacheTTL = time.Duration(f.Prediction.CacheTTLSeconds) * time.Second
	}
	if f.Prediction.LocalCacheMaxSize > 0 {
		cfg.LocalCacheMaxSize = f.Prediction.LocalCacheMaxSize
	}
	if f.Prediction.CalibrationWindow > 0 {
		cfg.CalibrationWindow = f.Prediction.CalibrationWindow
	}
	if f.Prediction.FeedbackLookback > 0 {
		cfg.FeedbackLookback = f.Prediction.FeedbackLookback
	}
	if f.Prediction.AutoRecalibrate != nil {
		cfg.AutoRecalibrate = *f.Prediction.AutoRecalibrate
	}
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
