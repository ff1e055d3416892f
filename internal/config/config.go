package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Bot      BotConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Ops      OpsConfig
}

type BotConfig struct {
	Token    string
	AdminIDs []int64
	Debug    bool
}

type DatabaseConfig struct {
	Path string
}

type RedisConfig struct {
	Addr       string
	Enabled    bool
	SessionTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	RegistrationCreated   string
	RegistrationCancelled string
	EventCreated          string
	EventDeleted          string
}

type OpsConfig struct {
	Addr    string
	Enabled bool
}

func Load() *Config {
	return &Config{
		Bot: BotConfig{
			Token:    getEnv("BOT_TOKEN", ""),
			AdminIDs: ParseAdminIDs(getEnv("ADMIN_IDS", "")),
			Debug:    getEnvBool("BOT_DEBUG", false),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "registrations.db"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Enabled:    getEnvBool("REDIS_ENABLED", false),
			SessionTTL: time.Duration(getEnvInt("SESSION_TTL_HOURS", 72)) * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				RegistrationCreated:   getEnv("KAFKA_TOPIC_REG_CREATED", "eventbot.registration.created"),
				RegistrationCancelled: getEnv("KAFKA_TOPIC_REG_CANCELLED", "eventbot.registration.cancelled"),
				EventCreated:          getEnv("KAFKA_TOPIC_EVENT_CREATED", "eventbot.event.created"),
				EventDeleted:          getEnv("KAFKA_TOPIC_EVENT_DELETED", "eventbot.event.deleted"),
			},
		},
		Ops: OpsConfig{
			Addr:    getEnv("OPS_ADDR", ":8085"),
			Enabled: getEnvBool("OPS_ENABLED", false),
		},
	}
}

// ParseAdminIDs parses the administrator allow-list from a comma or
// semicolon separated string. Malformed entries are skipped.
func ParseAdminIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ";", ",")
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
