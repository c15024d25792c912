package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"wayfocus/pkg/logger"
)

// fileSchema mirrors the YAML layout of the config file.
type fileSchema struct {
	FavoritesPath string            `yaml:"favorites_path"`
	Modifier      string            `yaml:"modifier"`
	Equivalences  map[string]string `yaml:"equivalences"`
	IgnoredAppIDs []string          `yaml:"ignored_app_ids"`
	ResyncSeconds int               `yaml:"resync_seconds"`
	NotifyCommand string            `yaml:"notify_command"`
}

// LoadFromFile loads the configuration from a YAML file.
func (c *Config) LoadFromFile(path string, log *logger.Logger) error {
	log.Debug("Loading configuration from file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("Failed to read config file", err, "path", path)
		return err
	}
	log.Debug("Config file read successfully", "size_bytes", len(data))

	var temp fileSchema
	if err := yaml.Unmarshal(data, &temp); err != nil {
		log.Error("Failed to parse config YAML", err)
		return err
	}
	log.Debug("Config YAML parsed successfully")

	// Assign to private fields
	c.favoritesPath = temp.FavoritesPath
	c.modifier = temp.Modifier
	c.equivalences = temp.Equivalences
	c.ignoredAppIDs = temp.IgnoredAppIDs
	c.resyncEvery = time.Duration(temp.ResyncSeconds) * time.Second
	c.notifyCommand = temp.NotifyCommand

	return c.validate()
}

// loadConfigFromPath loads the configuration from a file.
func loadConfigFromPath(path string, log *logger.Logger) (*Config, error) {
	config := &Config{log: log}
	if err := config.LoadFromFile(path, log); err != nil {
		return nil, err
	}
	return config, nil
}

// marshal renders the config back into its YAML file form.
func (c *Config) marshal() ([]byte, error) {
	return yaml.Marshal(fileSchema{
		FavoritesPath: c.favoritesPath,
		Modifier:      c.modifier,
		Equivalences:  c.equivalences,
		IgnoredAppIDs: c.ignoredAppIDs,
		ResyncSeconds: int(c.resyncEvery / time.Second),
		NotifyCommand: c.notifyCommand,
	})
}
