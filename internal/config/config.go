package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultModelID is the sentiment model served when MODEL_ID is not set.
const DefaultModelID = "KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"

type Config struct {
	// Model Configuration
	ModelID  string
	ModelDir string

	// HTTP Configuration
	HTTPAddr     string
	MaxBodyBytes int64

	// NATS Configuration (transport disabled when NatsURL is empty)
	NatsURL           string
	Subject           string
	QueueGroup        string
	HeartbeatInterval time.Duration

	// Database Configuration
	DBPath string
}

func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := loadDotEnv(envFile); err != nil {
			slog.Warn("Could not load env file", "file", envFile, "error", err)
		} else {
			slog.Info("Environment loaded", "file", envFile)
		}
	}

	return &Config{
		ModelID:           getEnv("MODEL_ID", DefaultModelID),
		ModelDir:          getEnv("MODEL_DIR", "data/models"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		MaxBodyBytes:      getEnvInt64("MAX_BODY_BYTES", 1<<20),
		NatsURL:           getEnv("NATS_URL", ""),
		Subject:           getEnv("SUBJECT", "classify.request.default"),
		QueueGroup:        getEnv("QUEUE_GROUP", "workers"),
		HeartbeatInterval: getEnvDuration("HEARTBEAT_INTERVAL", "30s"),
		DBPath:            getEnv("DB_PATH", "data/classifier.sqlite"),
	}, nil
}

// ModelName returns a short name usable in NATS subjects, derived from the
// model identifier (last path segment of a hub id or directory).
func (c *Config) ModelName() string {
	id := strings.TrimRight(c.ModelID, "/")
	if i := strings.LastIndexAny(id, "/\\"); i >= 0 {
		id = id[i+1:]
	}
	if id == "" {
		return "default"
	}
	return id
}

// HealthSubject is the request/reply subject the health service answers on.
func (c *Config) HealthSubject() string {
	return fmt.Sprintf("models.%s.health", c.ModelName())
}

// HeartbeatSubject is the subject periodic heartbeats are published to.
func (c *Config) HeartbeatSubject() string {
	return fmt.Sprintf("models.%s.heartbeat", c.ModelName())
}

func loadDotEnv(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal string) time.Duration {
	val := getEnv(key, defaultVal)
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	d, _ := time.ParseDuration(defaultVal)
	return d
}
