package config

import (
	"fmt"
	"time"

	"wayfocus/pkg/logger"
)

// Config holds the application configuration.
type Config struct {
	// Configurable via YAML file (private fields to enforce immutability)
	favoritesPath string
	modifier      string
	equivalences  map[string]string
	ignoredAppIDs []string
	resyncEvery   time.Duration
	notifyCommand string

	// Internal fields
	log *logger.Logger
}

// New creates a new Config instance with the provided logger.
func New(log *logger.Logger) *Config {
	return &Config{
		log: log,
	}
}

// GetFavoritesPath returns the path of the external favorites list.
func (c *Config) GetFavoritesPath() string {
	return c.favoritesPath
}

// GetModifier returns the hotkey modifier name (super, alt, ctrl).
func (c *Config) GetModifier() string {
	return c.modifier
}

// GetEquivalences returns user-defined app id equivalence pairs.
// Keys and values are raw identifiers; normalization applies both sides.
func (c *Config) GetEquivalences() map[string]string {
	return c.equivalences
}

// GetIgnoredAppIDs returns app ids excluded from presentation.
func (c *Config) GetIgnoredAppIDs() []string {
	return c.ignoredAppIDs
}

// GetResyncInterval returns how often the full window list is resynced
// against the compositor as a safety net over the event stream.
func (c *Config) GetResyncInterval() time.Duration {
	return c.resyncEvery
}

// GetNotifyCommand returns the custom notification command, if any.
func (c *Config) GetNotifyCommand() string {
	return c.notifyCommand
}

// validate checks the loaded values and fills gaps with defaults.
func (c *Config) validate() error {
	switch c.modifier {
	case "super", "alt", "ctrl":
	case "":
		c.modifier = "super"
	default:
		return fmt.Errorf("unsupported hotkey modifier %q", c.modifier)
	}

	if c.resyncEvery <= 0 {
		c.resyncEvery = 4 * time.Second
	}
	if c.equivalences == nil {
		c.equivalences = map[string]string{}
	}
	return nil
}
