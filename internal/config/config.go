package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/cubic-dev/ui/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "cubic.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "CUBIC_"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultEndpointParent is the handler shared by all file-derived endpoints.
	DefaultEndpointParent = "cubic/ui/endpoint"

	// DefaultPrefetchTimeout bounds a single request's data hooks.
	DefaultPrefetchTimeout = 10 * time.Second

	// DefaultDebounce is the watcher delay before a rebuild.
	DefaultDebounce = 100 * time.Millisecond
)

// Config represents the complete cubic.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" env:"NAME"`

	// Paths contains path configuration for the view source tree.
	Paths PathsConfig `json:"paths,omitempty" envPrefix:"PATHS_"`

	// Endpoint configures file-derived endpoints.
	Endpoint EndpointConfig `json:"endpoint,omitempty" envPrefix:"ENDPOINT_"`

	// Client contains URLs handed to the API client.
	Client ClientConfig `json:"client,omitempty" envPrefix:"CLIENT_"`

	// Prefetch configures the data prefetch pipeline.
	Prefetch PrefetchConfig `json:"prefetch,omitempty" envPrefix:"PREFETCH_"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty" envPrefix:"SERVER_"`

	// Dev contains development settings.
	Dev DevConfig `json:"dev,omitempty" envPrefix:"DEV_"`

	// Manifest locates an explicit endpoint manifest in S3.
	Manifest ManifestConfig `json:"manifest,omitempty" envPrefix:"MANIFEST_"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics,omitempty" envPrefix:"METRICS_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains path configuration for project directories.
// Relative paths resolve against the directory holding cubic.json.
type PathsConfig struct {
	// Source is the view source root.
	Source string `json:"source,omitempty" env:"SOURCE"`

	// Sites is the directory walked for page views. It must live inside Source.
	Sites string `json:"sites,omitempty" env:"SITES"`

	// Endpoints is the local explicit endpoint manifest (JSON or YAML).
	Endpoints string `json:"endpoints,omitempty" env:"ENDPOINTS"`

	// Public is the directory of built client assets.
	Public string `json:"public,omitempty" env:"PUBLIC"`
}

// EndpointConfig configures file-derived endpoints.
type EndpointConfig struct {
	// Parent is the handler reference stored in every file-derived endpoint.
	Parent string `json:"parent,omitempty" env:"PARENT"`
}

// ClientConfig contains the backend URLs used by data hooks.
type ClientConfig struct {
	APIURL  string `json:"apiUrl,omitempty" env:"API_URL"`
	AuthURL string `json:"authUrl,omitempty" env:"AUTH_URL"`
}

// PrefetchConfig configures the prefetch pipeline.
type PrefetchConfig struct {
	// Timeout bounds all hooks of one request (e.g., "10s"). "0" disables it.
	Timeout string `json:"timeout,omitempty" env:"TIMEOUT"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `json:"host,omitempty" env:"HOST"`
	Port int    `json:"port,omitempty" env:"PORT"`
}

// DevConfig contains development settings.
type DevConfig struct {
	// Watch rebuilds the endpoint table when the sites tree changes.
	Watch bool `json:"watch,omitempty" env:"WATCH"`

	// Debounce is the delay before a rebuild (e.g., "100ms").
	Debounce string `json:"debounce,omitempty" env:"DEBOUNCE"`

	// Reload notifies connected browsers after each rebuild.
	Reload bool `json:"reload,omitempty" env:"RELOAD"`
}

// ManifestConfig locates an explicit endpoint manifest in S3.
type ManifestConfig struct {
	Bucket string `json:"bucket,omitempty" env:"BUCKET"`
	Key    string `json:"key,omitempty" env:"KEY"`
	Region string `json:"region,omitempty" env:"REGION"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" env:"ENABLED"`
	Path      string `json:"path,omitempty" env:"PATH"`
	Namespace string `json:"namespace,omitempty" env:"NAMESPACE"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for cubic.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadOrDefault loads cubic.json from dir, falling back to defaults rooted
// at dir when the file does not exist. Environment overrides apply either way.
func LoadOrDefault(dir string) (*Config, error) {
	if Exists(dir) {
		return Load(dir)
	}
	cfg := &Config{configPath: filepath.Join(dir, ConfigFileName)}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No cubic.json found in " + filepath.Dir(path))
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("E120").Wrap(err)
		if se, ok := err.(*json.SyntaxError); ok {
			line, col := offsetToLineCol(data, se.Offset)
			e.WithLocation(path, line, col)
		}
		return nil, e
	}

	cfg.configPath = path
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv loads .env next to the config file and overlays CUBIC_* variables.
// Variables already set in the process environment win over .env entries.
func (c *Config) applyEnv() error {
	if dir := c.Dir(); dir != "" {
		dotenv := filepath.Join(dir, ".env")
		if _, err := os.Stat(dotenv); err == nil {
			if err := godotenv.Load(dotenv); err != nil {
				return errors.New("E120").WithDetail("Failed to read " + dotenv).Wrap(err)
			}
		}
	}
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.New("E122").WithDetail("Invalid " + EnvPrefix + "* environment override").Wrap(err)
	}
	return nil
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Paths.Source == "" {
		c.Paths.Source = "src"
	}
	if c.Paths.Sites == "" {
		c.Paths.Sites = filepath.Join(c.Paths.Source, "sites")
	}
	if c.Paths.Endpoints == "" {
		c.Paths.Endpoints = "endpoints.json"
	}
	if c.Paths.Public == "" {
		c.Paths.Public = "public"
	}
	if c.Endpoint.Parent == "" {
		c.Endpoint.Parent = DefaultEndpointParent
	}
	if c.Prefetch.Timeout == "" {
		c.Prefetch.Timeout = DefaultPrefetchTimeout.String()
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Dev.Debounce == "" {
		c.Dev.Debounce = DefaultDebounce.String()
	}
	if c.Manifest.Key == "" {
		c.Manifest.Key = "endpoints.json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "cubic"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("server.port must be between 0 and 65535")
	}
	if _, err := parseDuration(c.Prefetch.Timeout); err != nil {
		return errors.New("E122").
			WithDetail("prefetch.timeout is not a duration: " + c.Prefetch.Timeout).
			Wrap(err)
	}
	if _, err := parseDuration(c.Dev.Debounce); err != nil {
		return errors.New("E122").
			WithDetail("dev.debounce is not a duration: " + c.Dev.Debounce).
			Wrap(err)
	}
	if _, err := c.SitesDir(); err != nil {
		return err
	}
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// SourcePath returns the absolute path to the view source root.
func (c *Config) SourcePath() string {
	return c.resolve(c.Paths.Source)
}

// SitesPath returns the absolute path to the sites directory.
func (c *Config) SitesPath() string {
	return c.resolve(c.Paths.Sites)
}

// SitesDir returns the sites directory relative to the source root,
// slash separated (e.g., "sites").
func (c *Config) SitesDir() (string, error) {
	rel, err := filepath.Rel(c.SourcePath(), c.SitesPath())
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New("E122").
			WithDetail("paths.sites (" + c.Paths.Sites + ") must be inside paths.source (" + c.Paths.Source + ")")
	}
	return filepath.ToSlash(rel), nil
}

// EndpointsPath returns the absolute path to the local endpoint manifest.
func (c *Config) EndpointsPath() string {
	return c.resolve(c.Paths.Endpoints)
}

// PublicPath returns the absolute path to the public directory.
func (c *Config) PublicPath() string {
	return c.resolve(c.Paths.Public)
}

// PrefetchTimeout returns the parsed prefetch timeout. Zero disables it.
func (c *Config) PrefetchTimeout() time.Duration {
	d, err := parseDuration(c.Prefetch.Timeout)
	if err != nil {
		return DefaultPrefetchTimeout
	}
	return d
}

// DevDebounce returns the parsed watcher debounce.
func (c *Config) DevDebounce() time.Duration {
	d, err := parseDuration(c.Dev.Debounce)
	if err != nil || d <= 0 {
		return DefaultDebounce
	}
	return d
}

// Address returns the host:port string for the HTTP server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// HasS3Manifest reports whether an S3 manifest location is configured.
func (c *Config) HasS3Manifest() bool {
	return c.Manifest.Bucket != ""
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// parseDuration accepts Go durations plus a bare "0".
func parseDuration(s string) (time.Duration, error) {
	if s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// offsetToLineCol converts a byte offset into a 1-based line and column.
func offsetToLineCol(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing cubic.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E121").
				WithDetail("No cubic.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
