package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	LogLevel string         `toml:"log_level"`
	Layout   LayoutConfig   `toml:"layout"`
	Tiles    TilesConfig    `toml:"tiles"`
	Source   SourceConfig   `toml:"source"`
	Scroll   ScrollConfig   `toml:"scroll"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// LayoutConfig contains the masonry grid settings.
type LayoutConfig struct {
	BaseWidth     float64 `toml:"base_width"`
	MinLanes      int     `toml:"min_lanes"`
	MaxLanes      int     `toml:"max_lanes"`
	HorizontalGap float64 `toml:"horizontal_gap"`
	VerticalGap   float64 `toml:"vertical_gap"`
	ExpandToFill  bool    `toml:"expand_to_fill"`
	ReflowMS      int     `toml:"reflow_ms"`
}

// Reflow returns the reflow animation duration.
func (l LayoutConfig) Reflow() time.Duration {
	return time.Duration(l.ReflowMS) * time.Millisecond
}

// TilesConfig contains tile height estimation settings.
type TilesConfig struct {
	MinTileHeight float64 `toml:"min_tile_height"`
	FooterHeight  float64 `toml:"footer_height"`
	OverscanRows  int     `toml:"overscan_rows"`
}

// SourceConfig selects and tunes the item source.
type SourceConfig struct {
	URL       string  `toml:"url"`
	PageSize  int     `toml:"page_size"`
	Token     string  `toml:"token"`
	RateLimit float64 `toml:"rate_limit"`
}

// Remote reports whether items come from a remote server instead of the local catalog.
func (s SourceConfig) Remote() bool { return s.URL != "" }

// ScrollConfig contains scroll anchor persistence settings.
type ScrollConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Debounce returns the minimum interval between anchor writes.
func (s ScrollConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks values the gallery and stores cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Layout.BaseWidth <= 0:
		return fmt.Errorf("%w: layout.base_width must be positive", ErrInvalidConfig)
	case c.Layout.MinLanes < 1:
		return fmt.Errorf("%w: layout.min_lanes must be at least 1", ErrInvalidConfig)
	case c.Layout.MaxLanes < c.Layout.MinLanes:
		return fmt.Errorf("%w: layout.max_lanes must not be below layout.min_lanes", ErrInvalidConfig)
	case c.Layout.HorizontalGap < 0 || c.Layout.VerticalGap < 0:
		return fmt.Errorf("%w: layout gaps must not be negative", ErrInvalidConfig)
	case c.Tiles.MinTileHeight < 0 || c.Tiles.FooterHeight < 0:
		return fmt.Errorf("%w: tile heights must not be negative", ErrInvalidConfig)
	case c.Tiles.OverscanRows < 0:
		return fmt.Errorf("%w: tiles.overscan_rows must not be negative", ErrInvalidConfig)
	case c.Source.PageSize <= 0:
		return fmt.Errorf("%w: source.page_size must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrDefault loads the config at path when it exists and falls back to the defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}
