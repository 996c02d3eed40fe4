package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Servers
	HTTPPort     string
	RealtimePort string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	// Bounded connect
	DBMaxRetries     int
	DBRetryBase      time.Duration
	DBRetryFactor    float64
	DBMaxDelay       time.Duration
	DBRetryJitterPct float64

	// Auto-reconnect
	DBAutoReconnect        bool
	DBReconnectMaxAttempts int
	DBReconnectBase        time.Duration
	DBReconnectFactor      float64
	DBReconnectMaxDelay    time.Duration
	DBHealthInterval       time.Duration

	// Redis
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Alerting
	AlertDebounce time.Duration

	// MQTT
	MQTTBroker      string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	// Application
	LogLevel string
	Timeout  time.Duration
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	return &Config{
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		RealtimePort: getEnv("REALTIME_PORT", "8081"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "bloom"),
		DBPath:     getEnv("DB_PATH", "bloom.db"),

		DBMaxRetries:     getEnvInt("DB_MAX_RETRIES", 5),
		DBRetryBase:      getEnvMillis("DB_RETRY_BASE_MS", 500),
		DBRetryFactor:    getEnvFloat("DB_RETRY_FACTOR", 1.8),
		DBMaxDelay:       getEnvMillis("DB_MAX_DELAY_MS", 5000),
		DBRetryJitterPct: getEnvFloat("DB_RETRY_JITTER_PCT", 20),

		DBAutoReconnect:        getEnvBool("DB_AUTO_RECONNECT", true),
		DBReconnectMaxAttempts: getEnvInt("DB_RECONNECT_MAX_ATTEMPTS", 0),
		DBReconnectBase:        getEnvMillis("DB_RECONNECT_BASE_MS", 1000),
		DBReconnectFactor:      getEnvFloat("DB_RECONNECT_FACTOR", 2),
		DBReconnectMaxDelay:    getEnvMillis("DB_RECONNECT_MAX_DELAY_MS", 30000),
		DBHealthInterval:       getEnvMillis("DB_HEALTH_INTERVAL_MS", 5000),

		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AlertDebounce: time.Duration(getEnvInt("ALERT_DEBOUNCE_SECONDS", 0)) * time.Second,

		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "bloom-monitor"),
		MQTTUsername:    getEnv("MQTT_USERNAME", ""),
		MQTTPassword:    getEnv("MQTT_PASSWORD", ""),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "bloom"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timeout:  time.Duration(getEnvInt("TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

// PostgresDSN renders the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// MQTTEnabled reports whether a broker was configured.
func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvMillis(key string, defaultMillis int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMillis)) * time.Millisecond
}
