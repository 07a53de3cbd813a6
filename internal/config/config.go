package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv         = "NEWSLENS_CONFIG"
	databaseDSNEnv        = "DATABASE_DSN"
	screenshotAPIKeyEnv   = "SCREENSHOT_API_KEY"
	screenshotEndpointEnv = "SCREENSHOT_ENDPOINT"
	logLevelEnv           = "NEWSLENS_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Feed       FeedConfig       `yaml:"feed"`
	Decode     DecodeConfig     `yaml:"decode"`
	Publisher  PublisherConfig  `yaml:"publisher"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Watch      WatchConfig      `yaml:"watch"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FeedConfig describes the news feed locale.
type FeedConfig struct {
	Language string `yaml:"language"`
	Country  string `yaml:"country"`
}

// DecodeConfig tunes the link resolution pipeline.
type DecodeConfig struct {
	Concurrency    int `yaml:"concurrency"`
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

// Timeout resolves the per-request HTTP timeout for decode calls.
func (d DecodeConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// PublisherConfig points at an optional dictionary override file.
type PublisherConfig struct {
	Dictionary string `yaml:"dictionary"`
}

// ScreenshotConfig wires the external capture service.
type ScreenshotConfig struct {
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"apiKey"`
	OutputDir string `yaml:"outputDir"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	FullPage  bool   `yaml:"fullPage"`
}

// ArchiveConfig describes Postgres connection details. An empty DSN
// disables archiving.
type ArchiveConfig struct {
	DSN string `yaml:"dsn"`
}

// WatchConfig defines when recurring searches run.
type WatchConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the watch timezone string to a time.Location.
func (w WatchConfig) Location() *time.Location {
	if w.location != nil {
		return w.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment
// overrides. An empty path falls back to the NEWSLENS_CONFIG variable.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Archive.DSN = v
	}

	if v := os.Getenv(screenshotAPIKeyEnv); v != "" {
		c.Screenshot.APIKey = v
	}

	if v := os.Getenv(screenshotEndpointEnv); v != "" {
		c.Screenshot.Endpoint = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Watch.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Watch.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Feed.Language != "" {
		base.Feed.Language = override.Feed.Language
	}
	if override.Feed.Country != "" {
		base.Feed.Country = override.Feed.Country
	}

	if override.Decode.Concurrency > 0 {
		base.Decode.Concurrency = override.Decode.Concurrency
	}
	if override.Decode.TimeoutSeconds > 0 {
		base.Decode.TimeoutSeconds = override.Decode.TimeoutSeconds
	}

	if override.Publisher.Dictionary != "" {
		base.Publisher.Dictionary = override.Publisher.Dictionary
	}

	if override.Screenshot.Endpoint != "" {
		base.Screenshot.Endpoint = override.Screenshot.Endpoint
	}
	if override.Screenshot.APIKey != "" {
		base.Screenshot.APIKey = override.Screenshot.APIKey
	}
	if override.Screenshot.OutputDir != "" {
		base.Screenshot.OutputDir = override.Screenshot.OutputDir
	}
	if override.Screenshot.Width > 0 {
		base.Screenshot.Width = override.Screenshot.Width
	}
	if override.Screenshot.Height > 0 {
		base.Screenshot.Height = override.Screenshot.Height
	}
	if override.Screenshot.FullPage {
		base.Screenshot.FullPage = true
	}

	if override.Archive.DSN != "" {
		base.Archive.DSN = override.Archive.DSN
	}

	if override.Watch.CronExpression != "" {
		base.Watch.CronExpression = override.Watch.CronExpression
	}
	if override.Watch.Timezone != "" {
		base.Watch.Timezone = override.Watch.Timezone
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Feed:    FeedConfig{Language: "en-US", Country: "US"},
		Decode:  DecodeConfig{TimeoutSeconds: 15},
		Screenshot: ScreenshotConfig{
			OutputDir: "screenshots",
			Width:     1280,
			Height:    800,
		},
		Watch: WatchConfig{CronExpression: "*/30 * * * *", Timezone: defaultTimezone, location: tz},
	}
}
