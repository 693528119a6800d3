package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"cal-sync/core/database"
	"cal-sync/core/logger"
	"cal-sync/core/server"
	"cal-sync/core/storage"
	"cal-sync/core/syncconf"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// DefaultConfigFile is looked up when no config file is given.
const DefaultConfigFile = "~/.cal-sync/config.yaml"

const (
	BackendSQL = "sql"
	BackendICS = "ics"
)

// BackendConfig selects the calendar backend.
type BackendConfig struct {
	// Kind is the backend implementation (sql, ics).
	Kind string `mapstructure:"kind" default:"sql"`
}

// IsValidKind checks if the configured backend kind is supported.
func (c BackendConfig) IsValidKind() bool {
	return c.Kind == BackendSQL || c.Kind == BackendICS
}

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Sync holds the sync relationship options.
	Sync syncconf.Config `mapstructure:"sync"`
	// Backend selects the calendar backend.
	Backend BackendConfig `mapstructure:"backend"`
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage backing the ICS store.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the SQL store.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig loads configuration from defaults, an optional YAML file, the .env
// file in path and environment variables, in increasing priority. An empty file
// falls back to DefaultConfigFile, which may be absent.
func LoadConfig(path, file string) (*Config, error) {
	envPath := filepath.Join(path, ".env")
	if path == "." || path == "" {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	if err := readFile(v, file); err != nil {
		return nil, err
	}

	// Map environment variables to nested keys (e.g. SYNC_PREFIX -> sync.prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func readFile(v *viper.Viper, file string) error {
	explicit := file != ""
	if !explicit {
		file = DefaultConfigFile
	}

	expanded, err := homedir.Expand(file)
	if err != nil {
		return fmt.Errorf("resolve config file %s: %w", file, err)
	}

	if _, err := os.Stat(expanded); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file %s: %w", expanded, err)
	}

	v.SetConfigFile(expanded)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", expanded, err)
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
