// Package conf holds the application settings for coverart-go. Settings are
// loaded with viper from config.yaml and environment overrides.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// CustomSearchSettings holds the credentials for the Google Custom Search
// resolver. Both values are required for the resolver to be active; missing
// values degrade it to a no-op.
type CustomSearchSettings struct {
	APIKey   string // customsearch API key
	EngineID string // customsearch engine id (cx)
}

// SourceTTLSettings defines per-source cache freshness windows in days.
type SourceTTLSettings struct {
	OpenLibrary  int
	ITunes       int
	Openverse    int
	Wikipedia    int
	ImageSearch  int
	CustomSearch int
}

// AuditSettings holds defaults for audit/backfill runs.
type AuditSettings struct {
	LimitPerKind int    // max items repaired per kind, zero disables, negative means unbounded
	Concurrency  int    // worker pool size
	Interval     string // optional re-run interval for scheduled backfills, e.g. "24h"
}

// ValidatorSettings holds image validator tuning.
type ValidatorSettings struct {
	TimeoutMs int // max time to confirm a candidate decodes, in milliseconds
}

// OutputSettings holds persistence configuration.
type OutputSettings struct {
	SQLite struct {
		Enabled bool
		Path    string
	}
}

// Settings is the root configuration for the application.
type Settings struct {
	Debug bool

	// Locales is the ordered list of encyclopedia language editions to try,
	// preferred language first.
	Locales []string

	Audit     AuditSettings
	Validator ValidatorSettings
	Output    OutputSettings

	Sources struct {
		TTLDays      SourceTTLSettings
		CustomSearch CustomSearchSettings
	}
}

var (
	settingsInstance *Settings
	settingsOnce     sync.Once
	settingsMutex    sync.RWMutex
)

// setDefaults registers the default configuration values with viper.
func setDefaults() {
	viper.SetDefault("debug", false)
	viper.SetDefault("locales", []string{"ru", "en"})

	viper.SetDefault("audit.limitperkind", 20)
	viper.SetDefault("audit.concurrency", 4)
	viper.SetDefault("audit.interval", "")

	viper.SetDefault("validator.timeoutms", 12000)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "coverart.db")

	viper.SetDefault("sources.ttldays.openlibrary", 14)
	viper.SetDefault("sources.ttldays.itunes", 14)
	viper.SetDefault("sources.ttldays.openverse", 14)
	viper.SetDefault("sources.ttldays.wikipedia", 30)
	viper.SetDefault("sources.ttldays.imagesearch", 7)
	viper.SetDefault("sources.ttldays.customsearch", 7)

	viper.SetDefault("sources.customsearch.apikey", "")
	viper.SetDefault("sources.customsearch.engineid", "")
}

// Load reads the configuration from disk and environment and returns the
// populated settings. A missing config file is not an error; defaults apply.
func Load() (*Settings, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "coverart-go"))
	}

	viper.SetEnvPrefix("coverart")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !asConfigFileNotFound(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

func asConfigFileNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	if e, ok := err.(viper.ConfigFileNotFoundError); ok {
		*target = e
		return true
	}
	return false
}

// Setting returns the shared settings instance, loading it on first use.
func Setting() *Settings {
	settingsOnce.Do(func() {
		settingsMutex.RLock()
		loaded := settingsInstance != nil
		settingsMutex.RUnlock()
		if !loaded {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("error loading settings: %v", err))
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetSettings returns the current settings instance without triggering a load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
