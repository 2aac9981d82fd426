package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/sparkle/internal/errors"
)

// Config file names, in lookup order.
var FileNames = []string{"sparkle.json", "sparkle.yaml", "sparkle.yml"}

const (
	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultApp is the app served when none is configured.
	DefaultApp = "counter"
)

// Persistence backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendS3     = "s3"
)

// Config is the sparkle CLI configuration.
type Config struct {
	// App is the demo app to serve.
	App string `json:"app,omitempty" yaml:"app,omitempty"`

	Server      ServerConfig      `json:"server" yaml:"server"`
	Log         LogConfig         `json:"log" yaml:"log"`
	Persistence PersistenceConfig `json:"persistence" yaml:"persistence"`
	Decoration  DecorationConfig  `json:"decoration" yaml:"decoration"`
	Metrics     MetricsConfig     `json:"metrics" yaml:"metrics"`

	// configPath is where the config was loaded from.
	configPath string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// PersistenceConfig configures where app state is saved.
type PersistenceConfig struct {
	// Backend is none, memory, file or s3.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Dir is the file backend directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// SaveDelay is the write-behind delay, e.g. "50ms".
	SaveDelay string `json:"saveDelay,omitempty" yaml:"saveDelay,omitempty"`

	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config configures the s3 backend.
type S3Config struct {
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`
}

// DecorationConfig bounds recursion in the reactive core.
type DecorationConfig struct {
	MaxRedecorateDepth int `json:"maxRedecorateDepth,omitempty" yaml:"maxRedecorateDepth,omitempty"`
	MaxEffectDepth     int `json:"maxEffectDepth,omitempty" yaml:"maxEffectDepth,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{
		Metrics: MetricsConfig{Enabled: true},
	}
	c.applyDefaults()
	return c
}

// Load reads configuration from the first config file found in dir.
// If there is none, it returns the defaults.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads configuration from path. The format follows the file
// extension: .yaml and .yml are YAML, anything else is JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E302").
				WithDetail("no config file at %s", path).
				WithSuggestion("Create sparkle.json or pass --config with an existing file")
		}
		return nil, errors.New("E302").Wrap(err)
	}

	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E302").
			WithDetail("failed to parse %s: %s", filepath.Base(path), err.Error()).
			WithSuggestion("Check the file syntax")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SaveTo writes the configuration to path, as YAML or JSON by extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E302").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E302").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.App == "" {
		c.App = DefaultApp
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Persistence
	if c.Persistence.Backend == "" {
		c.Persistence.Backend = BackendMemory
	}
	if c.Persistence.Dir == "" {
		c.Persistence.Dir = ".sparkle"
	}
	if c.Persistence.SaveDelay == "" {
		c.Persistence.SaveDelay = "50ms"
	}
	if c.Persistence.S3.Region == "" {
		c.Persistence.S3.Region = "us-east-1"
	}

	// Decoration
	if c.Decoration.MaxRedecorateDepth == 0 {
		c.Decoration.MaxRedecorateDepth = 32
	}
	if c.Decoration.MaxEffectDepth == 0 {
		c.Decoration.MaxEffectDepth = 1024
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "sparkle"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E301").
			WithDetail("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E301").
			WithDetail("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E301").
			WithDetail("log.format must be text or json, got %q", c.Log.Format)
	}

	switch c.Persistence.Backend {
	case BackendNone, BackendMemory, BackendFile:
	case BackendS3:
		if c.Persistence.S3.Bucket == "" {
			return errors.New("E301").
				WithDetail("persistence.s3.bucket is required for the s3 backend")
		}
	default:
		return errors.New("E301").
			WithDetail("persistence.backend must be none, memory, file or s3, got %q", c.Persistence.Backend)
	}
	if _, err := c.SaveDelay(); err != nil {
		return errors.New("E301").
			WithDetail("persistence.saveDelay: %s", err.Error())
	}

	if c.Decoration.MaxRedecorateDepth < 0 || c.Decoration.MaxEffectDepth < 0 {
		return errors.New("E301").
			WithDetail("decoration limits must not be negative")
	}
	return nil
}

// Address returns host:port for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// SaveDelay parses Persistence.SaveDelay.
func (c *Config) SaveDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.Persistence.SaveDelay)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.Newf(errors.CategoryConfig, "negative save delay %s", c.Persistence.SaveDelay)
	}
	return d, nil
}
