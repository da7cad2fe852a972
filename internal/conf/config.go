// config.go: settings struct and functions to load and save the settings for the ROI import gear.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LogConfig holds the file logging settings shared by all file loggers.
type LogConfig struct {
	Enabled    bool   // true to enable file logging
	Path       string // path to log file
	MaxSize    int    // maximum log file size in MB before rotation
	MaxBackups int    // number of rotated files to keep
	MaxAge     int    // maximum age of rotated files in days
}

// MainSettings contains the settings that apply to the whole tool.
type MainSettings struct {
	Name string    // tool name used in logs and User-Agent
	Log  LogConfig // file logging settings
}

// FlywheelSettings contains the connection settings for the container store.
type FlywheelSettings struct {
	APIKey  string        // API key, "host[:port]:secret" form
	Host    string        // explicit base URL override, derived from the key when empty
	Timeout time.Duration // per-request timeout
}

// ImportSettings contains the settings for a single import run.
type ImportSettings struct {
	InputFile     string // path to the CSV or Excel file to import
	DryRun        bool   // resolve and validate but never write metadata
	FirstRow      int    // 1-based row number that holds the column headers
	Delimiter     string // CSV field delimiter
	Sheet         string // Excel sheet name, first sheet when empty
	MappingColumn string // column holding the object name, first column when empty
	OutputDir     string // directory for the status report
	Workers       int    // row-level parallelism, 1 reproduces sequential behavior
}

// Settings is the root configuration struct.
type Settings struct {
	Debug bool // true to enable debug level logging

	Main     MainSettings
	Flywheel FlywheelSettings
	Import   ImportSettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a Settings struct.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("ROI_IMPORT")
	viper.AutomaticEnv()

	// Defaults for each configuration parameter, defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults plus env and flags cover a gear run
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			_, err := Load()
			if err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes the settings snapshot to the given path.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write to a temporary file first for an atomic replace
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary config file: %w", err)
	}
	tempName := tempFile.Name()

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		os.Remove(tempName)
		return fmt.Errorf("error writing temporary config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("error closing temporary config file: %w", err)
	}

	if err := os.Rename(tempName, configPath); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}
