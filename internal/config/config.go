package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Render    RenderConfig    `yaml:"render"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// RenderConfig sets the default chart served when a request gives no size.
type RenderConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Format string `yaml:"format"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix HEARTMON_ and underscore-separated paths:
//
//	HEARTMON_SERVER_HOST, HEARTMON_SERVER_PORT,
//	HEARTMON_DB_HOST, HEARTMON_DB_PORT, HEARTMON_DB_NAME,
//	HEARTMON_DB_USER, HEARTMON_DB_PASSWORD, HEARTMON_DB_SSLMODE,
//	HEARTMON_AUTH_API_KEY,
//	HEARTMON_TAILSCALE_ENABLED, HEARTMON_TAILSCALE_HOSTNAME, HEARTMON_TAILSCALE_STATE_DIR,
//	HEARTMON_RENDER_WIDTH, HEARTMON_RENDER_HEIGHT
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills settings left empty in the file.
func applyDefaults(cfg *Config) {
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "heartmon"
	}
	if cfg.Render.Width == 0 {
		cfg.Render.Width = 1440
	}
	if cfg.Render.Height == 0 {
		cfg.Render.Height = 1080
	}
	if cfg.Render.Format == "" {
		cfg.Render.Format = "gif"
	}
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("HEARTMON_SERVER_HOST", &cfg.Server.Host)
	setInt("HEARTMON_SERVER_PORT", &cfg.Server.Port)
	setString("HEARTMON_DB_HOST", &cfg.Database.Host)
	setInt("HEARTMON_DB_PORT", &cfg.Database.Port)
	setString("HEARTMON_DB_NAME", &cfg.Database.Name)
	setString("HEARTMON_DB_USER", &cfg.Database.User)
	setString("HEARTMON_DB_PASSWORD", &cfg.Database.Password)
	setString("HEARTMON_DB_SSLMODE", &cfg.Database.SSLMode)
	setString("HEARTMON_AUTH_API_KEY", &cfg.Auth.APIKey)
	if v := os.Getenv("HEARTMON_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	setString("HEARTMON_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	setString("HEARTMON_TAILSCALE_STATE_DIR", &cfg.Tailscale.StateDir)
	setInt("HEARTMON_RENDER_WIDTH", &cfg.Render.Width)
	setInt("HEARTMON_RENDER_HEIGHT", &cfg.Render.Height)
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Render.Width < 1 || c.Render.Width > 4096 || c.Render.Height < 1 || c.Render.Height > 4096 {
		return fmt.Errorf("render size %dx%d out of range", c.Render.Width, c.Render.Height)
	}
	switch c.Render.Format {
	case "gif", "png":
	default:
		return fmt.Errorf("render.format must be gif or png, got %q", c.Render.Format)
	}
	return nil
}
