package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Pipeline   PipelineConfig
	Validation ValidationConfig
	Signals    SignalsConfig
	Providers  ProvidersConfig
	Telegram   TelegramConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Enabled bool
	Port    string
	Host    string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration for the dedup store
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	// TTL applied to dedup keys; expired keys make an article eligible again.
	DedupTTL time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	EventsTopic   string
	SignalsTopic  string
	NewsTopic     string
	ConsumerGroup string
}

// PipelineConfig holds the poll loop configuration
type PipelineConfig struct {
	PollInterval   time.Duration
	MinImpactScore int
	MaxIterations  int // 0 = run forever
	DataDir        string
}

// ValidationConfig holds market-reaction thresholds
type ValidationConfig struct {
	MinGapPct   float64
	MinVolSpike float64
}

// SignalsConfig holds trading signal thresholds
type SignalsConfig struct {
	Enabled       bool
	MinConfidence float64
	MaxRiskPct    float64
	MinRiskReward float64
}

// ProvidersConfig holds market data provider settings
type ProvidersConfig struct {
	FinnhubAPIKey    string
	FinnhubRateDelay time.Duration
	PolygonAPIKey    string
	PolygonRateDelay time.Duration
	SnapshotCacheTTL time.Duration
}

// TelegramConfig holds Telegram notifier settings
type TelegramConfig struct {
	Enabled       bool
	BotToken      string
	ChatID        string
	Silent        bool
	RetryAttempts int
	RetryDelay    time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Enabled: getBool("SERVER_ENABLED", true),
			Port:    getEnv("SERVER_PORT", "8080"),
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "marketradar"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			DedupTTL: getDuration("DEDUP_TTL", 72*time.Hour),
		},
		Kafka: KafkaConfig{
			Enabled:       getBool("KAFKA_ENABLED", false),
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			EventsTopic:   getEnv("KAFKA_EVENTS_TOPIC", "news-events"),
			SignalsTopic:  getEnv("KAFKA_SIGNALS_TOPIC", "trading-signals"),
			NewsTopic:     getEnv("KAFKA_NEWS_TOPIC", ""),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "market-radar"),
		},
		Pipeline: PipelineConfig{
			PollInterval:   getDuration("POLL_INTERVAL", 30*time.Second),
			MinImpactScore: getInt("MIN_IMPACT_SCORE", 70),
			MaxIterations:  getInt("MAX_ITERATIONS", 0),
			DataDir:        getEnv("DATA_DIR", ""),
		},
		Validation: ValidationConfig{
			MinGapPct:   getFloat("MIN_GAP_PCT", 4.0),
			MinVolSpike: getFloat("MIN_VOL_SPIKE", 1.8),
		},
		Signals: SignalsConfig{
			Enabled:       getBool("ENABLE_TRADING_SIGNALS", false),
			MinConfidence: getFloat("SIGNALS_MIN_CONFIDENCE", 40),
			MaxRiskPct:    getFloat("SIGNALS_MAX_RISK_PCT", 15.0),
			MinRiskReward: getFloat("SIGNALS_MIN_RR_RATIO", 1.5),
		},
		Providers: ProvidersConfig{
			FinnhubAPIKey:    getEnv("FINNHUB_API_KEY", ""),
			FinnhubRateDelay: getDuration("FINNHUB_RATE_DELAY", time.Second),
			PolygonAPIKey:    getEnv("POLYGON_API_KEY", ""),
			PolygonRateDelay: getDuration("POLYGON_RATE_DELAY", 12*time.Second),
			SnapshotCacheTTL: getDuration("SNAPSHOT_CACHE_TTL", 20*time.Second),
		},
		Telegram: TelegramConfig{
			Enabled:       getBool("ENABLE_TELEGRAM", false),
			BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:        getEnv("TELEGRAM_CHAT_ID", ""),
			Silent:        getBool("TELEGRAM_SILENT", false),
			RetryAttempts: getInt("TELEGRAM_RETRY_ATTEMPTS", 3),
			RetryDelay:    getDuration("TELEGRAM_RETRY_DELAY", 2*time.Second),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
