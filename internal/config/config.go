package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultServiceName      = "pulse"
	defaultServiceVersion   = "1.0.0"
	defaultServicePort      = 8080
	defaultLogLevel         = "info"
	defaultLogFormat        = "json"
	defaultReferenceSize    = 5
	defaultThreshold        = 1.5
	defaultNewTopicMult     = 10.0
	defaultEpsilon          = 1.0
	defaultMinTermLength    = 3
	defaultMinSharedTerms   = 2
	defaultMinClusterSize   = 2
	defaultTopKeywords      = 5
	defaultHistoryDriver    = "sqlite"
	defaultHistoryPath      = "data/history.db"
	defaultSnapshotDir      = "data/snapshots"
	defaultSnapshotKeep     = 20
	defaultDataDir          = "data/articles"
	defaultUsagePath        = "data/usage.json"
	defaultWindowSize       = 500
	defaultConcurrency      = 8
	defaultFetchTimeoutSec  = 10
	defaultFetchRate        = 1.0
	defaultNewsPageSize     = 20
	defaultScholarPageSize  = 10
	defaultScholarCacheDir  = "data/cache"
	defaultScholarCacheTTLh = 24
	defaultGenMaxTokens     = 1024
)

// Config holds all configuration for the pulse service.
type Config struct {
	Service        ServiceConfig        `yaml:"service"`
	Logging        LoggingConfig        `yaml:"logging"`
	Classification ClassificationConfig `yaml:"classification"`
	Trends         TrendsConfig         `yaml:"trends"`
	History        HistoryConfig        `yaml:"history"`
	Snapshots      SnapshotConfig       `yaml:"snapshots"`
	Fetchers       FetchersConfig       `yaml:"fetchers"`
	Collector      CollectorConfig      `yaml:"collector"`
	Generator      GeneratorConfig      `yaml:"generator"`
	Usage          UsageConfig          `yaml:"usage"`
	Scheduler      SchedulerConfig      `yaml:"scheduler"`
}

// SchedulerConfig controls the periodic collect-and-analyze loop.
type SchedulerConfig struct {
	Enabled  bool          `env:"PULSE_SCHEDULER" yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	// Keywords drive scheduled collection; empty derives them from the
	// loaded taxonomy.
	Keywords []string `yaml:"keywords"`
	Sources  []string `yaml:"sources"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"PULSE_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"  yaml:"debug"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"PULSE_LOG_LEVEL"  yaml:"level"`
	Format string `env:"PULSE_LOG_FORMAT" yaml:"format"`
}

// ClassificationConfig tunes the keyword classifier.
type ClassificationConfig struct {
	// ReferenceSize is the confidence denominator.
	ReferenceSize int `yaml:"reference_size"`
	// TaxonomyPath points at a YAML taxonomy; empty selects the built-in.
	TaxonomyPath string `env:"PULSE_TAXONOMY" yaml:"taxonomy_path"`
}

// TrendsConfig tunes trend detection and topic clustering.
type TrendsConfig struct {
	SignificanceThreshold float64  `yaml:"significance_threshold"`
	NewTopicMultiplier    float64  `yaml:"new_topic_multiplier"`
	Epsilon               float64  `yaml:"epsilon"`
	MinTermLength         int      `yaml:"min_term_length"`
	MinSharedTerms        int      `yaml:"min_shared_terms"`
	MinClusterSize        int      `yaml:"min_cluster_size"`
	TopKeywords           int      `yaml:"top_keywords"`
	ExtraStopwords        []string `yaml:"extra_stopwords"`
}

// HistoryConfig selects the trend-history backend.
type HistoryConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `env:"PULSE_HISTORY_DRIVER" yaml:"driver"`
	Path   string `env:"PULSE_HISTORY_PATH"   yaml:"path"`
}

// SnapshotConfig controls trend snapshot persistence.
type SnapshotConfig struct {
	Dir  string `yaml:"dir"`
	Keep int    `yaml:"keep"`
}

// FetcherConfig holds the settings for one upstream client.
type FetcherConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	PageSize          int           `yaml:"page_size"`
}

// FetchersConfig holds both upstream clients plus the scholar cache.
type FetchersConfig struct {
	News            FetcherConfig `yaml:"news"`
	Scholar         FetcherConfig `yaml:"scholar"`
	ScholarCacheDir string        `yaml:"scholar_cache_dir"`
	ScholarCacheTTL time.Duration `yaml:"scholar_cache_ttl"`
}

// CollectorConfig tunes collection jobs.
type CollectorConfig struct {
	WindowSize  int `yaml:"window_size"`
	Concurrency int `env:"PULSE_CONCURRENCY" yaml:"concurrency"`
}

// GeneratorConfig tunes article generation.
type GeneratorConfig struct {
	APIKey    string `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	DataDir   string `yaml:"data_dir"`
}

// UsageConfig controls quota tracking. Limits maps service names (news,
// scholar, anthropic) to monthly call caps; zero means unlimited.
type UsageConfig struct {
	Path   string         `yaml:"path"`
	Limits map[string]int `yaml:"limits"`
}

// SetDefaults applies default values for any unset fields.
func (c *Config) SetDefaults() {
	c.Service.setDefaults()
	c.Logging.setDefaults()
	c.Classification.setDefaults()
	c.Trends.setDefaults()
	c.History.setDefaults()
	c.Snapshots.setDefaults()
	c.Fetchers.setDefaults()
	c.Collector.setDefaults()
	c.Generator.setDefaults()
	c.Usage.setDefaults()
	c.Scheduler.setDefaults()
}

func (c *SchedulerConfig) setDefaults() {
	if c.Interval == 0 {
		c.Interval = time.Hour
	}
}

func (c *ServiceConfig) setDefaults() {
	if c.Name == "" {
		c.Name = defaultServiceName
	}
	if c.Version == "" {
		c.Version = defaultServiceVersion
	}
	if c.Port == 0 {
		c.Port = defaultServicePort
	}
}

func (c *LoggingConfig) setDefaults() {
	if c.Level == "" {
		c.Level = defaultLogLevel
	}
	if c.Format == "" {
		c.Format = defaultLogFormat
	}
}

func (c *ClassificationConfig) setDefaults() {
	if c.ReferenceSize == 0 {
		c.ReferenceSize = defaultReferenceSize
	}
}

func (c *TrendsConfig) setDefaults() {
	if c.SignificanceThreshold == 0 {
		c.SignificanceThreshold = defaultThreshold
	}
	if c.NewTopicMultiplier == 0 {
		c.NewTopicMultiplier = defaultNewTopicMult
	}
	if c.Epsilon == 0 {
		c.Epsilon = defaultEpsilon
	}
	if c.MinTermLength == 0 {
		c.MinTermLength = defaultMinTermLength
	}
	if c.MinSharedTerms == 0 {
		c.MinSharedTerms = defaultMinSharedTerms
	}
	if c.MinClusterSize == 0 {
		c.MinClusterSize = defaultMinClusterSize
	}
	if c.TopKeywords == 0 {
		c.TopKeywords = defaultTopKeywords
	}
}

func (c *HistoryConfig) setDefaults() {
	if c.Driver == "" {
		c.Driver = defaultHistoryDriver
	}
	if c.Path == "" {
		c.Path = defaultHistoryPath
	}
}

func (c *SnapshotConfig) setDefaults() {
	if c.Dir == "" {
		c.Dir = defaultSnapshotDir
	}
	if c.Keep == 0 {
		c.Keep = defaultSnapshotKeep
	}
}

func (c *FetchersConfig) setDefaults() {
	c.News.setDefaults(defaultNewsPageSize)
	c.Scholar.setDefaults(defaultScholarPageSize)
	if c.ScholarCacheDir == "" {
		c.ScholarCacheDir = defaultScholarCacheDir
	}
	if c.ScholarCacheTTL == 0 {
		c.ScholarCacheTTL = defaultScholarCacheTTLh * time.Hour
	}
}

func (c *FetcherConfig) setDefaults(pageSize int) {
	if c.Timeout == 0 {
		c.Timeout = defaultFetchTimeoutSec * time.Second
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = defaultFetchRate
	}
	if c.PageSize == 0 {
		c.PageSize = pageSize
	}
}

func (c *CollectorConfig) setDefaults() {
	if c.WindowSize == 0 {
		c.WindowSize = defaultWindowSize
	}
	if c.Concurrency == 0 {
		c.Concurrency = defaultConcurrency
	}
}

func (c *GeneratorConfig) setDefaults() {
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultGenMaxTokens
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
}

func (c *UsageConfig) setDefaults() {
	if c.Path == "" {
		c.Path = defaultUsagePath
	}
}

// LoadConfig loads the pulse configuration: YAML file, then defaults for
// unset fields, then environment overrides. An empty or missing path
// yields the default configuration (env overrides still apply).
func LoadConfig(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = &Config{}
		cfg.SetDefaults()
		applyEnvOverrides(cfg)
	} else {
		loaded, err := LoadWithDefaults[Config](path, func(c *Config) { c.SetDefaults() })
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints the loader cannot.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid service port %d", c.Service.Port)
	}
	if c.History.Driver != "sqlite" && c.History.Driver != "memory" {
		return fmt.Errorf("unknown history driver %q", c.History.Driver)
	}
	if c.Trends.SignificanceThreshold < 0 {
		return fmt.Errorf("significance threshold must not be negative")
	}
	return nil
}
