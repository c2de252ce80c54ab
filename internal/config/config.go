package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/dupsweep/internal/models"
	"github.com/fenilsonani/dupsweep/internal/security"
	"github.com/fenilsonani/dupsweep/internal/store"
)

// Config represents the application configuration
type Config struct {
	Categories      Categories         `yaml:"categories"`
	Permissions     Permissions        `yaml:"permissions"`
	Timeouts        Timeouts           `yaml:"timeouts"`
	Deletion        Deletion           `yaml:"deletion"`
	Sources         Sources            `yaml:"sources"`
	ExcludePatterns []string           `yaml:"exclude_patterns"`
	ProtectedPaths  []string           `yaml:"protected_paths"`
	Strict          bool               `yaml:"strict"`
	DryRun          bool               `yaml:"dry_run"`
	Verbose         bool               `yaml:"verbose"`
	Log             LogConfig          `yaml:"log"`
	Notifications   NotificationConfig `yaml:"notifications"`
}

// Categories defines which categories are scanned
type Categories struct {
	Photos   bool `yaml:"photos"`
	Videos   bool `yaml:"videos"`
	Contacts bool `yaml:"contacts"`
	Calendar bool `yaml:"calendar"`
}

// Enabled reports whether a category is switched on
func (c Categories) Enabled(category models.Category) bool {
	switch category {
	case models.CategoryPhoto:
		return c.Photos
	case models.CategoryVideo:
		return c.Videos
	case models.CategoryContact:
		return c.Contacts
	case models.CategoryCalendarEvent:
		return c.Calendar
	}
	return false
}

// List returns the enabled categories in canonical order
func (c Categories) List() []models.Category {
	var out []models.Category
	for _, category := range models.AllCategories() {
		if c.Enabled(category) {
			out = append(out, category)
		}
	}
	return out
}

// Permissions holds the access answer given for each category's store:
// "granted", "denied" or "restricted". Empty means granted.
type Permissions struct {
	Photos   string `yaml:"photos"`
	Videos   string `yaml:"videos"`
	Contacts string `yaml:"contacts"`
	Calendar string `yaml:"calendar"`
}

func (p Permissions) raw(category models.Category) string {
	switch category {
	case models.CategoryPhoto:
		return p.Photos
	case models.CategoryVideo:
		return p.Videos
	case models.CategoryContact:
		return p.Contacts
	case models.CategoryCalendarEvent:
		return p.Calendar
	}
	return ""
}

// Authorizer builds the authorizer the stores consult
func (p Permissions) Authorizer() (*store.StaticAuthorizer, error) {
	grants := make(map[models.Category]store.Authorization)
	for _, category := range models.AllCategories() {
		auth, err := store.ParseAuthorization(p.raw(category))
		if err != nil {
			return nil, fmt.Errorf("permissions.%s: %w", category, err)
		}
		grants[category] = auth
	}
	return store.NewStaticAuthorizer(grants), nil
}

// Timeouts bounds individual store calls. Authorization is never bounded.
type Timeouts struct {
	Enumerate Duration `yaml:"enumerate"`
	Delete    Duration `yaml:"delete"`
}

// Deletion configures the deletion executor
type Deletion struct {
	Workers       int     `yaml:"workers"`
	BatchSize     int     `yaml:"batch_size"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// NotificationConfig controls the post-deletion webhook
type NotificationConfig struct {
	Enabled   bool          `yaml:"enabled"`
	OnSuccess bool          `yaml:"on_success"`
	OnFailure bool          `yaml:"on_failure"`
	Webhook   WebhookConfig `yaml:"webhook"`
}

// WebhookConfig describes where notifications are sent
type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
	Timeout Duration          `yaml:"timeout"`
}

// Sources locates the stores
type Sources struct {
	Library   string   `yaml:"library"`    // SQLite library database
	PhotoDirs []string `yaml:"photo_dirs"` // Directories scanned for photos instead of the library
	PageSize  int      `yaml:"page_size"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Duration is a time.Duration written as a string such as "30s"
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load loads configuration from a file. Values missing from the file keep
// their defaults.
func Load(configPath string) (*Config, error) {
	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := GetDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Deletion.Workers < 1 {
		return fmt.Errorf("deletion workers must be >= 1")
	}
	if c.Deletion.BatchSize < 1 {
		return fmt.Errorf("deletion batch size must be >= 1")
	}
	if c.Deletion.RatePerSecond < 0 {
		return fmt.Errorf("deletion rate must be >= 0")
	}

	if c.Timeouts.Enumerate < 0 {
		return fmt.Errorf("enumerate timeout must be >= 0")
	}
	if c.Timeouts.Delete < 0 {
		return fmt.Errorf("delete timeout must be >= 0")
	}

	if _, err := c.Permissions.Authorizer(); err != nil {
		return err
	}

	if c.Sources.PageSize < 1 {
		return fmt.Errorf("page size must be >= 1")
	}

	// Validate photo directories are absolute
	for _, path := range c.Sources.PhotoDirs {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("photo directory must be absolute: %s", path)
		}
	}

	// Validate exclude patterns (glob syntax)
	for _, pattern := range c.ExcludePatterns {
		if err := security.ValidateGlobPattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	// Validate protected paths are absolute
	for _, path := range c.ProtectedPaths {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("protected path must be absolute: %s", path)
		}
	}

	if c.Notifications.Enabled {
		u, err := url.Parse(c.Notifications.Webhook.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("notifications.webhook.url must be an http(s) URL: %q", c.Notifications.Webhook.URL)
		}
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}

// GetConfigDir returns the directory holding dupsweep's files
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "dupsweep"), nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create default config
		defaultConfig := GetDefault()
		if err := Save(defaultConfig, configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
