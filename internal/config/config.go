package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Render    RenderConfig    `mapstructure:"render"`
	StaticMap StaticMapConfig `mapstructure:"staticmap"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`
	WriteTimeout   int `mapstructure:"write_timeout"`
	RequestTimeout int `mapstructure:"request_timeout"`
	BodyLimit      int `mapstructure:"body_limit"`
	MaxPoints      int `mapstructure:"max_points"`
}

type RenderConfig struct {
	Palette             string `mapstructure:"palette"`
	AssetsDir           string `mapstructure:"assets_dir"`
	MaxSize             int    `mapstructure:"max_size"`
	ZoomOpaque          int    `mapstructure:"zoom_opaque"`
	ZoomTransparent     int    `mapstructure:"zoom_transparent"`
	Workers             int    `mapstructure:"workers"`
	ProjectionCacheSize int    `mapstructure:"projection_cache_size"`
	EmptyTileCacheSize  int    `mapstructure:"empty_tile_cache_size"`
}

type StaticMapConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ClientID   string `mapstructure:"client_id"`
	SigningKey string `mapstructure:"signing_key"`
	Timeout    int    `mapstructure:"timeout"`
}

// Premium reports whether premium credentials are configured.
func (s StaticMapConfig) Premium() bool {
	return s.ClientID != "" && s.SigningKey != ""
}

type ValkeyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	TTL     int    `mapstructure:"ttl"`
}

// TTLDuration returns the cache TTL.
func (v ValkeyConfig) TTLDuration() time.Duration {
	return time.Duration(v.TTL) * time.Second
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig()

	// Environment variables: HEATMAP_RENDER_PALETTE → render.palette
	v.SetEnvPrefix("HEATMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.request_timeout", 20)
	v.SetDefault("server.body_limit", 8*1024*1024)
	v.SetDefault("server.max_points", 200_000)
	v.SetDefault("render.palette", "valerie")
	v.SetDefault("render.assets_dir", "")
	v.SetDefault("render.max_size", 640)
	v.SetDefault("render.zoom_opaque", -15)
	v.SetDefault("render.zoom_transparent", 15)
	v.SetDefault("render.workers", 4)
	v.SetDefault("render.projection_cache_size", 4096)
	v.SetDefault("render.empty_tile_cache_size", 64)
	v.SetDefault("staticmap.base_url", "https://maps.googleapis.com/maps/api/staticmap")
	v.SetDefault("staticmap.client_id", "")
	v.SetDefault("staticmap.signing_key", "")
	v.SetDefault("staticmap.timeout", 10)
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.ttl", 86400)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that configuration values are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, "server.body_limit must be positive")
	}
	if c.Server.MaxPoints <= 0 {
		errs = append(errs, "server.max_points must be positive")
	}
	if c.Render.Palette == "" {
		errs = append(errs, "render.palette is required")
	}
	if c.Render.MaxSize <= 0 || c.Render.MaxSize > 2048 {
		errs = append(errs, fmt.Sprintf("render.max_size must be 1-2048, got %d", c.Render.MaxSize))
	}
	if c.Render.ZoomTransparent <= c.Render.ZoomOpaque {
		errs = append(errs, "render.zoom_transparent must be greater than render.zoom_opaque")
	}
	if c.Render.Workers < 1 {
		errs = append(errs, "render.workers must be at least 1")
	}
	if c.Render.ProjectionCacheSize < 0 {
		errs = append(errs, "render.projection_cache_size must not be negative")
	}
	if c.Render.EmptyTileCacheSize < 0 {
		errs = append(errs, "render.empty_tile_cache_size must not be negative")
	}
	if (c.StaticMap.ClientID == "") != (c.StaticMap.SigningKey == "") {
		errs = append(errs, "staticmap.client_id and staticmap.signing_key must be set together")
	}
	if c.StaticMap.Timeout <= 0 {
		errs = append(errs, "staticmap.timeout must be positive")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required when valkey is enabled")
	}
	if c.Valkey.TTL <= 0 {
		errs = append(errs, "valkey.ttl must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
