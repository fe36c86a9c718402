package model

type Config struct {
	BotToken string
	AppID    string

	// OwnerID is the single global operator account. It resolves to the
	// owner tier in every group.
	OwnerID int64

	AuditWebhookURL string
	LogChannelID    string
	DBPath          string
	HealthAddr      string

	DisableCommandUnregister bool

	Settings      Settings
	ServerConfigs map[string]ServerConfig
}

// Settings are the tunables read from data/settings.yaml.
type Settings struct {
	DefaultMuteHours int `mapstructure:"default_mute_hours"`

	// MessagesPerMinute bounds the anti-fraud sliding window; 0 disables
	// the frequency gate.
	MessagesPerMinute int64 `mapstructure:"messages_per_minute"`

	RosterCacheSize       int `mapstructure:"roster_cache_size"`
	RosterCacheTTLSeconds int `mapstructure:"roster_cache_ttl_seconds"`

	StoreTimeoutSeconds int `mapstructure:"store_timeout_seconds"`
	ResetTickSeconds    int `mapstructure:"reset_tick_seconds"`
}

// ServerConfig is the per-guild block of settings.yaml: which role ids count
// as platform admins for the roster lookup, and where welcome messages and
// owner broadcasts go.
type ServerConfig struct {
	GuildID            string   `mapstructure:"guild_id"`
	Name               string   `mapstructure:"name"`
	AdminRoleIDs       []string `mapstructure:"admin_role_ids"`
	WelcomeChannelID   string   `mapstructure:"welcome_channel_id"`
	BroadcastChannelID string   `mapstructure:"broadcast_channel_id"`
}
