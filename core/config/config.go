package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"BOT_TOKEN"`
	// AdminChatID is the chat that receives relayed messages and reply controls.
	AdminChatID int64  `yaml:"admin_chat_id" envconfig:"ADMIN_CHAT_ID"`
	RunMode     string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level     string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format    string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder string `yaml:"keys_order"`
	Dir       string `yaml:"dir"`
	BotFile   string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// RelayConfig tunes the album aggregator and notification rendering.
type RelayConfig struct {
	AlbumFlushDelayMS int    `yaml:"album_flush_delay_ms" envconfig:"RELAY_ALBUM_FLUSH_DELAY_MS"`
	AlbumMode         string `yaml:"album_mode" envconfig:"RELAY_ALBUM_MODE"`
	SeenGroupTTLMS    int    `yaml:"seen_group_ttl_ms" envconfig:"RELAY_SEEN_GROUP_TTL_MS"`
	UTCOffsetHours    *int   `yaml:"utc_offset_hours" envconfig:"RELAY_UTC_OFFSET_HOURS"`
}

// MetricsConfig enables the Prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// AlbumModeBuffer collects album parts and posts them as one media group.
	AlbumModeBuffer = "buffer"
	// AlbumModeNotifyOnce copies every part and notifies once per album.
	AlbumModeNotifyOnce = "notify_once"
)

const (
	defaultAlbumFlushDelay = 1400 * time.Millisecond
	defaultSeenGroupTTL    = time.Minute
	defaultUTCOffsetHours  = 3
)

// Config aggregates the bot configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
	Relay    RelayConfig    `yaml:"relay"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// Load reads an optional YAML file, overlays the environment (including a
// .env file in the working directory) and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (BOT_TOKEN)")
	}
	if cfg.Telegram.AdminChatID == 0 {
		return fmt.Errorf("admin chat id is required (ADMIN_CHAT_ID)")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	return normalizeRelay(&cfg.Relay)
}

func normalizeRelay(r *RelayConfig) error {
	if r.AlbumFlushDelayMS < 0 {
		return fmt.Errorf("relay.album_flush_delay_ms must be >= 0")
	}
	if r.SeenGroupTTLMS < 0 {
		return fmt.Errorf("relay.seen_group_ttl_ms must be >= 0")
	}
	mode := strings.ToLower(strings.TrimSpace(r.AlbumMode))
	switch mode {
	case "":
		mode = AlbumModeBuffer
	case AlbumModeBuffer, AlbumModeNotifyOnce:
	default:
		return fmt.Errorf("invalid relay.album_mode %q; allowed: buffer, notify_once", r.AlbumMode)
	}
	r.AlbumMode = mode
	if r.UTCOffsetHours != nil && (*r.UTCOffsetHours < -12 || *r.UTCOffsetHours > 14) {
		return fmt.Errorf("relay.utc_offset_hours must be within [-12, 14]")
	}
	return nil
}

// AlbumFlushDelay returns the album quiescence window.
func (r RelayConfig) AlbumFlushDelay() time.Duration {
	if r.AlbumFlushDelayMS <= 0 {
		return defaultAlbumFlushDelay
	}
	return time.Duration(r.AlbumFlushDelayMS) * time.Millisecond
}

// SeenGroupTTL returns how long notify_once mode remembers an album.
func (r RelayConfig) SeenGroupTTL() time.Duration {
	if r.SeenGroupTTLMS <= 0 {
		return defaultSeenGroupTTL
	}
	return time.Duration(r.SeenGroupTTLMS) * time.Millisecond
}

// Location returns the fixed zone used for notification timestamps.
func (r RelayConfig) Location() *time.Location {
	hours := defaultUTCOffsetHours
	if r.UTCOffsetHours != nil {
		hours = *r.UTCOffsetHours
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*3600)
}
