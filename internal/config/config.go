package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// DefaultSecretKey is the placeholder secret used when SECRET_KEY is not set.
const DefaultSecretKey = "your_secret_key"

// Config holds the configuration for the oktasim server.
type Config struct {
	// Listen is the address the server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// LogLevel is the default log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// SecretKey is used to sign the session cookie store.
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the SQLite database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled adds an avatar_url field to every user representation.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image type to use when no Gravatar is found.
	// Options: 404, mp, identicon, monsterid, wavatar, retro, robohash, blank
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating (inclusive) for the image.
	// Options: g, pg, r, x
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the given file (optional) and the environment.
// Only SECRET_KEY and DATABASE_PATH are read from the environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	v.SetConfigType("yaml")

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.oktasim")
		v.AddConfigPath("/etc/oktasim")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "127.0.0.1:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("secret_key", DefaultSecretKey)

	// Database defaults
	v.SetDefault("database.path", "./data/database.db")

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "mp")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// bindEnv binds the few settings that may come from the environment.
// AutomaticEnv is deliberately not used so no other variables leak into the config.
func bindEnv(v *viper.Viper) {
	v.MustBindEnv("secret_key", "SECRET_KEY")
	v.MustBindEnv("database.path", "DATABASE_PATH")
}

func sanitizeConfig(c *Config) {
	c.Listen = strings.TrimSpace(c.Listen)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.Database != nil {
		c.Database.Path = strings.TrimSpace(c.Database.Path)
	}
	if c.Gravatar != nil {
		c.Gravatar.DefaultImage = strings.TrimSpace(c.Gravatar.DefaultImage)
		c.Gravatar.Rating = strings.ToLower(strings.TrimSpace(c.Gravatar.Rating))
	}
}

func validateConfig(c *Config) error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	if c.SecretKey == DefaultSecretKey {
		log.Warn("using the default secret key, set SECRET_KEY for any real deployment")
	}
	if c.Gravatar != nil && c.Gravatar.Enabled {
		if err := validateGravatar(c.Gravatar); err != nil {
			return fmt.Errorf("invalid gravatar config: %w", err)
		}
	}
	return nil
}

func validateGravatar(g *GravatarConfig) error {
	switch g.DefaultImage {
	case "", "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank":
	default:
		return fmt.Errorf("unsupported default image %q", g.DefaultImage)
	}
	switch g.Rating {
	case "", "g", "pg", "r", "x":
	default:
		return fmt.Errorf("unsupported rating %q", g.Rating)
	}
	if g.Size < 1 || g.Size > 2048 {
		return fmt.Errorf("size must be between 1 and 2048, got %d", g.Size)
	}
	return nil
}
