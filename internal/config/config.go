// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jason-s-yu/phaseten/internal/game"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
}

type ServerConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	ReadHeaderTimeout int    `yaml:"read_header_timeout"` // seconds
	IdleTimeout       int    `yaml:"idle_timeout"`        // seconds
	ShutdownTimeout   int    `yaml:"shutdown_timeout"`    // seconds

	AllowedOrigins []string `yaml:"allowed_origins"` // CORS origins for the HTTP routes, "*" for any
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// RedisConfig configures the optional room directory. An empty Addr disables it.
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	DirectoryTTL int    `yaml:"directory_ttl"` // seconds a published room stays listed without a refresh
}

type GameConfig struct {
	Rules            game.Rules `yaml:"rules"`
	NotifyRejections bool       `yaml:"notify_rejections"`
	EmptyRoomTimeout int        `yaml:"empty_room_timeout"` // minutes before an empty room is reaped
	ReapInterval     int        `yaml:"reap_interval"`      // seconds between reaper sweeps, 0 disables
	SendBuffer       int        `yaml:"send_buffer"`        // outbound messages queued per connection
	MessageRate      float64    `yaml:"message_rate"`       // inbound messages per second per connection, 0 for unlimited
	MessageBurst     int        `yaml:"message_burst"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return time.Duration(c.ReadHeaderTimeout) * time.Second
}

func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(c.IdleTimeout) * time.Second
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// HeartbeatDuration is how often live rooms are republished: half the TTL.
func (c *RedisConfig) HeartbeatDuration() time.Duration {
	return c.DirectoryTTLDuration() / 2
}

func (c *RedisConfig) DirectoryTTLDuration() time.Duration {
	return time.Duration(c.DirectoryTTL) * time.Second
}

func (c *GameConfig) EmptyRoomTimeoutDuration() time.Duration {
	return time.Duration(c.EmptyRoomTimeout) * time.Minute
}

func (c *GameConfig) ReapIntervalDuration() time.Duration {
	return time.Duration(c.ReapInterval) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              5000,
			ReadHeaderTimeout: 10,
			IdleTimeout:       120,
			ShutdownTimeout:   10,
			AllowedOrigins:    []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Redis: RedisConfig{
			DirectoryTTL: 120,
		},
		Game: GameConfig{
			Rules:            game.DefaultRules(),
			EmptyRoomTimeout: 10,
			ReapInterval:     60,
			SendBuffer:       64,
			MessageRate:      50,
			MessageBurst:     20,
		},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with PORT, HOST, LOG_LEVEL, REDIS_ADDR,
// REDIS_PASSWORD, REDIS_DB and NOTIFY_REJECTIONS when they are set.
func (c *Config) applyEnv() error {
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	var err error
	if c.Server.Port, err = getEnvInt("PORT", c.Server.Port); err != nil {
		return err
	}
	if c.Redis.DB, err = getEnvInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if v := os.Getenv("NOTIFY_REJECTIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NOTIFY_REJECTIONS: %w", err)
		}
		c.Game.NotifyRejections = b
	}
	return nil
}

// Validate checks ranges and the game rules.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Redis.DirectoryTTL < 1 {
		return fmt.Errorf("redis.directory_ttl must be positive")
	}
	if c.Game.EmptyRoomTimeout < 0 || c.Game.ReapInterval < 0 {
		return fmt.Errorf("game timeouts must not be negative")
	}
	if c.Game.SendBuffer < 1 {
		return fmt.Errorf("game.send_buffer must be positive")
	}
	if c.Game.MessageRate < 0 {
		return fmt.Errorf("game.message_rate must not be negative")
	}
	if c.Game.MessageRate > 0 && c.Game.MessageBurst < 1 {
		return fmt.Errorf("game.message_burst must be positive when message_rate is set")
	}
	if err := c.Game.Rules.Validate(); err != nil {
		return fmt.Errorf("game.rules: %w", err)
	}
	return nil
}

// LogLevel returns the parsed log level. Validate has already checked it.
func (c *Config) LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
