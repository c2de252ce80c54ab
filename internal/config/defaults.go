package config

import (
	"path/filepath"
	"time"

	"github.com/fenilsonani/dupsweep/internal/platform"
)

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		Categories: Categories{
			Photos:   true,
			Videos:   true,
			Contacts: true,
			Calendar: true,
		},
		Permissions: Permissions{
			Photos:   "granted",
			Videos:   "granted",
			Contacts: "granted",
			Calendar: "granted",
		},
		Timeouts: Timeouts{
			Enumerate: Duration(30 * time.Second),
			Delete:    Duration(30 * time.Second),
		},
		Deletion: Deletion{
			Workers:       4,
			BatchSize:     50,
			RatePerSecond: 0, // Unpaced
		},
		Sources: Sources{
			Library:   defaultLibraryPath(),
			PhotoDirs: []string{},
			PageSize:  200,
		},
		ExcludePatterns: []string{
			"*/.thumbnails/*",
			"*/.Trash/*",
		},
		ProtectedPaths: platform.ProtectedPaths(platform.Detect()),
		Strict:         false,
		DryRun:         false,
		Verbose:        false,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Notifications: NotificationConfig{
			Enabled:   false,
			OnSuccess: true,
			OnFailure: true,
			Webhook: WebhookConfig{
				Method:  "POST",
				Timeout: Duration(10 * time.Second),
			},
		},
	}
}

func defaultLibraryPath() string {
	dir, err := GetConfigDir()
	if err != nil {
		return "library.db"
	}
	return filepath.Join(dir, "library.db")
}

// GetExampleConfig returns an example configuration file content
func GetExampleConfig() string {
	return `# dupsweep configuration

# Categories to scan for duplicates
categories:
  photos: true
  videos: true
  contacts: true
  calendar: true

# Access answers per store: granted, denied or restricted.
# Denied and restricted categories are reported as "Permission Denied".
permissions:
  photos: granted
  videos: granted
  contacts: granted
  calendar: granted

# Per-call store timeouts. Expiry counts as a store failure.
timeouts:
  enumerate: 30s
  delete: 30s

# Deletion executor
deletion:
  workers: 4
  batch_size: 50
  rate_per_second: 0  # 0 = unpaced

# Where items come from
sources:
  library: ~/.config/dupsweep/library.db
  photo_dirs: []   # absolute paths; replaces the library for photos
  page_size: 200

# Files in photo_dirs matching these globs are skipped
exclude_patterns:
  - "*/.thumbnails/*"
  - "*/.Trash/*"

# Never delete below these paths. Defaults to the system paths of this OS.
protected_paths:
  - /
  - /usr
  - /etc

# Panic on store invariant violations instead of dropping bad items
strict: false

# Report what would be deleted without deleting
dry_run: false

verbose: false

log:
  level: info      # debug, info, warn, error
  format: console  # console or json

# Post a summary of every real (non dry run) deletion to a webhook
notifications:
  enabled: false
  on_success: true
  on_failure: true
  webhook:
    url: ""
    method: POST
    headers: {}
    timeout: 10s
`
}
