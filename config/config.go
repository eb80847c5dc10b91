package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type SlackConfig struct {
	SigningSecretID string
	TokenID         string
	AppName         string
	SuccessReaction string
	ErrorReaction   string
	SyncReaction    string
}

// IsConfigured returns true if all required Slack configuration is present
func (c SlackConfig) IsConfigured() bool {
	return c.SigningSecretID != "" &&
		c.TokenID != ""
	// Note: reactions and app name have defaults
}

type JiraConfig struct {
	ServerURL string
	TokenID   string
	IconURL   string
	IconTitle string
}

// IsConfigured returns true if all required Jira configuration is present
func (c JiraConfig) IsConfigured() bool {
	return c.ServerURL != "" &&
		c.TokenID != ""
	// Note: IconURL and IconTitle are optional
}

type QueueConfig struct {
	// DedupWindow bounds content-based deduplication: envelopes with the
	// same dedup token enqueued within the window collapse into one.
	DedupWindow time.Duration
	// MaxReceiveCount bounds redelivery: an envelope delivered this many
	// times without acknowledgment moves to the dead-letter sink. The
	// default of 1 means a single attempt, no automatic retry.
	MaxReceiveCount int
	// ConsumerTimeout bounds a single processing attempt; a timeout is a
	// transient failure.
	ConsumerTimeout time.Duration
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL     string
	DatabaseSchema  string
	Port            string // Optional with default "8080"
	Environment     string
	AlertWebhookURL string
	ServerLogsURL   string
	UseStrictConfig bool // If true, error when any integration is not fully configured

	SlackConfig SlackConfig
	JiraConfig  JiraConfig
	QueueConfig QueueConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	dedupWindow, err := getEnvDuration("QUEUE_DEDUP_WINDOW", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	consumerTimeout, err := getEnvDuration("QUEUE_CONSUMER_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	maxReceiveCount, err := getEnvInt("QUEUE_MAX_RECEIVE_COUNT", 1)
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		DatabaseURL:     databaseURL,
		DatabaseSchema:  databaseSchema,
		Port:            getEnvWithDefault("PORT", "8080"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "dev"),
		AlertWebhookURL: getEnvWithDefault("ALERT_WEBHOOK_URL", ""),
		ServerLogsURL:   getEnvWithDefault("SERVER_LOGS_URL", ""),
		UseStrictConfig: getEnvWithDefault("USE_STRICT_CONFIG", "true") == "true",

		SlackConfig: SlackConfig{
			SigningSecretID: os.Getenv("SLACK_SIGNING_SECRET_ID"),
			TokenID:         os.Getenv("SLACK_TOKEN_ID"),
			AppName:         getEnvWithDefault("APP_NAME", "threadlink"),
			SuccessReaction: getEnvWithDefault("SUCCESS_REACTION", "white_check_mark"),
			ErrorReaction:   getEnvWithDefault("ERROR_REACTION", "x"),
			SyncReaction:    getEnvWithDefault("SYNC_REACTION", "speech_balloon"),
		},

		JiraConfig: JiraConfig{
			ServerURL: os.Getenv("JIRA_SERVER_URL"),
			TokenID:   os.Getenv("JIRA_TOKEN_ID"),
			IconURL:   getEnvWithDefault("ICON_URL", ""),
			IconTitle: getEnvWithDefault("ICON_TITLE", ""),
		},

		QueueConfig: QueueConfig{
			DedupWindow:     dedupWindow,
			MaxReceiveCount: maxReceiveCount,
			ConsumerTimeout: consumerTimeout,
		},
	}

	if config.SlackConfig.IsConfigured() {
		log.Printf("✅ Slack integration configured")
	} else {
		log.Printf("⚠️ Slack integration not configured - webhook ingestion will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("slack integration is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.JiraConfig.IsConfigured() {
		log.Printf("✅ Jira integration configured")
	} else {
		log.Printf("⚠️ Jira integration not configured - ticket operations will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("jira integration is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %w", key, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid integer: %w", key, err)
	}
	return n, nil
}
