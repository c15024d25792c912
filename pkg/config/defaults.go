package config

import (
	"os"
	"path/filepath"
	"time"

	"wayfocus/pkg/logger"
)

// DefaultConfig creates a default configuration.
func DefaultConfig(log *logger.Logger) (*Config, error) {
	log.Debug("Creating default configuration")

	favoritesPath, err := defaultFavoritesPath()
	if err != nil {
		log.Error("Failed to resolve default favorites path", err)
		return nil, err
	}

	config := &Config{
		favoritesPath: favoritesPath,
		modifier:      "super",
		resyncEvery:   4 * time.Second,
		equivalences:  map[string]string{},
		log:           log,
	}
	return config, nil
}

// defaultFavoritesPath points at the dock service's pinned-app list.
// The file is owned by the dock; wayfocus only ever reads it.
func defaultFavoritesPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "wayfocus", "favorites.json"), nil
}
