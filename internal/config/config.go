package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"

	pErrors "github.com/zhubert/imagine/internal/errors"
)

const (
	DefaultServerURL       = "http://127.0.0.1:5000"
	DefaultPollInterval    = 3 * time.Second
	DefaultPollTimeout     = 10 * time.Minute
	DefaultFlashDuration   = 8 * time.Second
	DefaultDownloadDir     = "output"
	ThemeDark              = "dark"
	ThemeLight             = "light"
	envServerURL           = "IMAGINE_SERVER_URL"
	envDownloadDir         = "IMAGINE_DOWNLOAD_DIR"
	envPollTimeoutSeconds  = "IMAGINE_POLL_TIMEOUT"
	envPollIntervalSeconds = "IMAGINE_POLL_INTERVAL"
)

// Config holds the client-side preferences. Session state (active model,
// references, results) lives on the backend and is never written here.
type Config struct {
	ServerURL            string `json:"server_url,omitempty"`
	Theme                string `json:"theme,omitempty"` // "dark" or "light"
	PollIntervalMS       int    `json:"poll_interval_ms,omitempty"`
	PollTimeoutS         int    `json:"poll_timeout_s,omitempty"`
	FlashDurationMS      int    `json:"flash_duration_ms,omitempty"`
	DownloadDir          string `json:"download_dir,omitempty"`
	NotificationsEnabled bool   `json:"notifications_enabled,omitempty"`
	WelcomeShown         bool   `json:"welcome_shown,omitempty"`

	mu       sync.RWMutex
	filePath string
}

// configDir returns the path to the config directory
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".imagine"), nil
}

// Path returns the path to the config file
func Path() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads ~/.imagine/config.json (or returns defaults when it doesn't
// exist) and applies environment overrides, including any .env file in the
// working directory.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	// A missing .env is the common case.
	_ = godotenv.Load()
	return LoadFrom(path)
}

// New returns a Config holding defaults that is never written to disk.
func New() *Config {
	cfg := &Config{}
	cfg.ensureInitialized()
	return cfg
}

// LoadFrom reads the config at path and applies environment overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{filePath: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, pErrors.ConfigLoadFailed(path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, pErrors.ConfigLoadFailed(path, err)
		}
	}

	cfg.applyEnv()
	cfg.ensureInitialized()

	if err := cfg.Validate(); err != nil {
		return nil, pErrors.ConfigLoadFailed(path, err)
	}
	return cfg, nil
}

// applyEnv overlays IMAGINE_* variables on top of the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv(envServerURL); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(envDownloadDir); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv(envPollTimeoutSeconds); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PollTimeoutS = n
		}
	}
	if v := os.Getenv(envPollIntervalSeconds); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PollIntervalMS = n * 1000
		}
	}
}

// ensureInitialized fills zero values with defaults. Callers either own the
// Config exclusively (LoadFrom) or hold c.mu.
func (c *Config) ensureInitialized() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.Theme == "" {
		c.Theme = ThemeDark
	}
	if c.PollIntervalMS == 0 {
		c.PollIntervalMS = int(DefaultPollInterval / time.Millisecond)
	}
	if c.PollTimeoutS == 0 {
		c.PollTimeoutS = int(DefaultPollTimeout / time.Second)
	}
	if c.FlashDurationMS == 0 {
		c.FlashDurationMS = int(DefaultFlashDuration / time.Millisecond)
	}
	if c.DownloadDir == "" {
		c.DownloadDir = DefaultDownloadDir
	}
}

// Validate checks that the config is internally consistent.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url must be http or https, got %q", c.ServerURL)
	}
	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	if c.PollIntervalMS < 0 || c.PollTimeoutS < 0 || c.FlashDurationMS < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.filePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return pErrors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return pErrors.ConfigSaveFailed(c.filePath, err)
	}
	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return pErrors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// FilePath returns where Save writes.
func (c *Config) FilePath() string {
	return c.filePath
}

// GetServerURL returns the backend base URL
func (c *Config) GetServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerURL
}

// SetServerURL sets the backend base URL
func (c *Config) SetServerURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerURL = u
}

// GetTheme returns the current theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme sets the current theme name
func (c *Config) SetTheme(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = theme
}

// ToggleTheme flips between dark and light and returns the new theme.
func (c *Config) ToggleTheme() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Theme == ThemeLight {
		c.Theme = ThemeDark
	} else {
		c.Theme = ThemeLight
	}
	return c.Theme
}

// PollInterval returns the delay between task status checks.
func (c *Config) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// PollTimeout returns how long a queued task may be polled before giving up.
func (c *Config) PollTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.PollTimeoutS) * time.Second
}

// FlashDuration returns how long a notification stays visible.
func (c *Config) FlashDuration() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.FlashDurationMS) * time.Millisecond
}

// GetDownloadDir returns where saved images are written
func (c *Config) GetDownloadDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DownloadDir
}

// SetDownloadDir sets where saved images are written
func (c *Config) SetDownloadDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DownloadDir = dir
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// HasSeenWelcome returns whether the welcome modal has been shown
func (c *Config) HasSeenWelcome() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.WelcomeShown
}

// MarkWelcomeShown marks the welcome modal as shown
func (c *Config) MarkWelcomeShown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.WelcomeShown = true
}

// Reset restores every preference to its default.
func (c *Config) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerURL = ""
	c.Theme = ""
	c.PollIntervalMS = 0
	c.PollTimeoutS = 0
	c.FlashDurationMS = 0
	c.DownloadDir = ""
	c.NotificationsEnabled = false
	c.WelcomeShown = false
	c.ensureInitialized()
}
