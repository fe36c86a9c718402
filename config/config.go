package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"guardian-bot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and data/settings.yaml.
func Load() (*model.Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	ownerIDStr := os.Getenv("OWNER_ID")
	var ownerID int64
	if ownerIDStr == "" {
		log.Println("Warning: OWNER_ID not set, owner-only commands will be unavailable")
	} else {
		var err error
		ownerID, err = strconv.ParseInt(ownerIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OWNER_ID %q: %w", ownerIDStr, err)
		}
	}

	auditWebhookURL := os.Getenv("AUDIT_WEBHOOK_URL")
	if auditWebhookURL == "" {
		log.Println("Warning: AUDIT_WEBHOOK_URL not set, audit logging will be disabled")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/guardian.db"
	}

	healthAddr := os.Getenv("HEALTH_ADDR")
	if healthAddr == "" {
		healthAddr = ":3000"
	}

	cfg := &model.Config{
		BotToken:                 token,
		AppID:                    appID,
		OwnerID:                  ownerID,
		AuditWebhookURL:          auditWebhookURL,
		LogChannelID:             os.Getenv("LOG_CHANNEL_ID"),
		DBPath:                   dbPath,
		HealthAddr:               healthAddr,
		DisableCommandUnregister: os.Getenv("DISABLE_COMMAND_UNREGISTER") == "true",
		ServerConfigs:            make(map[string]model.ServerConfig),
	}

	if err := loadSettings(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadSettings reads the tunables file. A missing file falls back to the
// defaults; a malformed one is an error.
func loadSettings(cfg *model.Config) error {
	v := viper.New()
	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath("data")

	v.SetDefault("default_mute_hours", 24)
	v.SetDefault("messages_per_minute", 20)
	v.SetDefault("roster_cache_size", 256)
	v.SetDefault("roster_cache_ttl_seconds", 300)
	v.SetDefault("store_timeout_seconds", 10)
	v.SetDefault("reset_tick_seconds", 60)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: data/settings.yaml not found, using defaults")
		} else {
			return fmt.Errorf("failed to read settings: %w", err)
		}
	}

	if err := v.UnmarshalKey("servers", &cfg.ServerConfigs); err != nil {
		return fmt.Errorf("failed to parse server configs: %w", err)
	}

	cfg.Settings = model.Settings{
		DefaultMuteHours:      v.GetInt("default_mute_hours"),
		MessagesPerMinute:     v.GetInt64("messages_per_minute"),
		RosterCacheSize:       v.GetInt("roster_cache_size"),
		RosterCacheTTLSeconds: v.GetInt("roster_cache_ttl_seconds"),
		StoreTimeoutSeconds:   v.GetInt("store_timeout_seconds"),
		ResetTickSeconds:      v.GetInt("reset_tick_seconds"),
	}
	return nil
}
