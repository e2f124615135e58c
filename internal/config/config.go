// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token           string  `yaml:"token"`
	Mode            string  `yaml:"mode"` // polling | webhook (future)
	Username        string  `yaml:"username"`
	Workers         int     `yaml:"workers"`            // polling workers
	RateLimitPerMin int     `yaml:"rate_limit_per_min"` // commands per user per minute
	AdminIDs        []int64 `yaml:"admin_ids"`
}

// AccessConfig describes the gated destination and invite behavior.
type AccessConfig struct {
	TargetChatID     int64 `yaml:"target_chat_id"`     // closed channel/supergroup ID
	InviteTTLMinutes int   `yaml:"invite_ttl_minutes"` // lifetime of issued links
	InviteMemberCap  int   `yaml:"invite_member_cap"`  // joins per link
}

func (a AccessConfig) InviteTTL() time.Duration {
	return time.Duration(a.InviteTTLMinutes) * time.Minute
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Access   AccessConfig   `yaml:"access"`
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.RateLimitPerMin <= 0 {
		cfg.Bot.RateLimitPerMin = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Access.InviteTTLMinutes <= 0 {
		cfg.Access.InviteTTLMinutes = 10
	}
	if cfg.Access.InviteMemberCap <= 0 {
		cfg.Access.InviteMemberCap = 1
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 9090
	}

	// Minimal validation. Dev mode runs on the noop adapter, so no token is
	// needed there.
	if cfg.Bot.Token == "" && !dev {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Access.TargetChatID == 0 {
		return nil, errors.New("access.target_chat_id is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// IsAdmin reports whether a Telegram ID is in the configured admin set.
func (c *Config) IsAdmin(tgID int64) bool {
	for _, id := range c.Bot.AdminIDs {
		if id == tgID {
			return true
		}
	}
	return false
}
