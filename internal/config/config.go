package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names accepted in the configuration file.
const (
	BackendGoogle = "google"
	BackendICS    = "ics"
	BackendMemory = "memory"
)

// FeedConfig maps one participant to an iCalendar feed URL.
type FeedConfig struct {
	// Participant is the participant identifier, usually an email address.
	Participant string `yaml:"participant" json:"participant"`
	// URL is the feed endpoint.
	URL string `yaml:"url" json:"url"`
}

// Config is the top-level application configuration.
type Config struct {
	// Backend selects the busy-time source: "google", "ics" or "memory".
	Backend string `yaml:"backend" json:"backend"`

	// Account is the named OAuth account used by the google backend.
	Account string `yaml:"account" json:"account"`

	// Owner is the scheduling participant the grid is built for.
	Owner string `yaml:"owner" json:"owner"`

	// Members are the other participants whose busy times are merged into
	// the grid.
	Members []string `yaml:"members" json:"members"`

	// Feeds lists the subscribed feeds for the ics backend.
	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	// Timezone is the IANA timezone the week grid is anchored in. Empty
	// means the process-local timezone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron schedule for periodic refresh in watch mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// SourceTimeout bounds each participant's busy-time collection, as a
	// Go duration string. Empty disables the bound.
	SourceTimeout string `yaml:"source_timeout" json:"source_timeout"`

	// CacheDir is where feed bodies are cached. Empty picks a directory
	// under the user cache dir.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:     BackendGoogle,
		Account:     "default",
		RefreshCron: "*/15 * * * *",
		Members:     []string{},
		Feeds:       []FeedConfig{},
	}
}

// Normalize fills in missing values so partially filled configs still
// behave correctly.
func (c *Config) Normalize() {
	switch c.Backend {
	case BackendGoogle, BackendICS, BackendMemory:
	default:
		c.Backend = BackendGoogle
	}
	if c.Account == "" {
		c.Account = "default"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.Members == nil {
		c.Members = []string{}
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
}

// Validate checks the parts of the configuration that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return errors.New("owner must be set")
	}
	if c.Backend == BackendICS {
		feeds := make(map[string]bool, len(c.Feeds))
		for _, f := range c.Feeds {
			if f.Participant == "" || f.URL == "" {
				return errors.New("every feed needs a participant and a url")
			}
			feeds[f.Participant] = true
		}
		if !feeds[c.Owner] {
			return fmt.Errorf("no feed configured for owner %s", c.Owner)
		}
		for _, m := range c.Members {
			if !feeds[m] {
				return fmt.Errorf("no feed configured for member %s", m)
			}
		}
	}
	if _, err := c.SourceTimeoutDuration(); err != nil {
		return err
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}

// SourceTimeoutDuration parses the configured source timeout. An empty
// value means no timeout.
func (c *Config) SourceTimeoutDuration() (time.Duration, error) {
	if c.SourceTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.SourceTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid source_timeout %q: %w", c.SourceTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("source_timeout must not be negative")
	}
	return d, nil
}

// Location resolves the configured timezone, defaulting to the local one.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Load loads configuration from the given YAML path. A missing file is a
// first run: a default config is written with 0600 permissions and
// returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(dir, ".schedly-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "schedly", "config.yaml")
	}
	return filepath.Join(".", "schedly.yaml")
}
