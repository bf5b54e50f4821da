// Package config loads importgraph settings from defaults, an optional
// importgraph.yml and IMPORTGRAPH_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/dusk-indust/importgraph/internal/graph"
)

// Sentinel validation errors.
var (
	ErrInvalidConcurrency = errors.New("analysis concurrency must be positive")
	ErrInvalidParser      = errors.New("analysis parser must be regex or treesitter")
	ErrInvalidCacheSize   = errors.New("cache size must be positive")
	ErrInvalidDebounce    = errors.New("watch debounce must be positive")
	ErrInvalidLogLevel    = errors.New("invalid logging level")
	ErrInvalidLogFormat   = errors.New("logging format must be text or json")
)

// Parser names accepted by analysis.parser.
const (
	ParserRegex      = "regex"
	ParserTreeSitter = "treesitter"
)

// ConfigName is the config file base name looked up in the project root.
const ConfigName = "importgraph"

// Default configuration values.
const (
	defaultCacheDir = ".importgraph/cache"
	defaultStoreDir = ".importgraph/graph"
	defaultDebounce = 200 * time.Millisecond
)

// Config holds all importgraph settings.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Store    StoreConfig    `mapstructure:"store"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	MCP      MCPConfig      `mapstructure:"mcp"`
}

// AnalysisConfig mirrors graph.Options.
type AnalysisConfig struct {
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	Root        string   `mapstructure:"root"`
	AliasBase   string   `mapstructure:"alias_base"`
	Concurrency int      `mapstructure:"concurrency"`
	Parser      string   `mapstructure:"parser"`
}

// CacheConfig configures the extraction cache. Directory is relative to the
// project root unless absolute.
type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Size      int    `mapstructure:"size"`
	Directory string `mapstructure:"directory"`
}

// StoreConfig configures the persisted graph.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LoggingConfig configures logrus.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig enables the /metrics listener when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// MCPConfig selects the HTTP transport when Addr is set; stdio otherwise.
type MCPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration. configPath names an explicit file; when empty,
// importgraph.yml (or .yaml) is looked up in projectDir and may be absent.
func Load(configPath, projectDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(ConfigName)
		if projectDir == "" {
			projectDir = "."
		}
		v.AddConfigPath(projectDir)
	}

	v.SetEnvPrefix("IMPORTGRAPH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Analysis.Include = splitList(cfg.Analysis.Include)
	cfg.Analysis.Exclude = splitList(cfg.Analysis.Exclude)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	defaults := graph.DefaultOptions()

	v.SetDefault("analysis.include", defaults.Include)
	v.SetDefault("analysis.exclude", defaults.Exclude)
	v.SetDefault("analysis.root", "")
	v.SetDefault("analysis.alias_base", defaults.AliasBase)
	v.SetDefault("analysis.concurrency", graph.DefaultConcurrency)
	v.SetDefault("analysis.parser", ParserRegex)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 4096)
	v.SetDefault("cache.directory", defaultCacheDir)

	v.SetDefault("store.path", defaultStoreDir)

	v.SetDefault("watch.debounce", defaultDebounce.String())

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.addr", "")
	v.SetDefault("mcp.addr", "")
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Analysis.Concurrency <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.Analysis.Concurrency)
	}
	switch c.Analysis.Parser {
	case ParserRegex, ParserTreeSitter:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidParser, c.Analysis.Parser)
	}
	if c.Cache.Enabled && c.Cache.Size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.Cache.Size)
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDebounce, c.Watch.Debounce)
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	return nil
}

// AnalysisOptions converts the analysis section to analyzer options. The
// extractor, cache, recorder and logger are left for the caller to wire.
func (c *Config) AnalysisOptions() graph.Options {
	return graph.Options{
		RootPath:    c.Analysis.Root,
		Include:     append([]string(nil), c.Analysis.Include...),
		Exclude:     append([]string(nil), c.Analysis.Exclude...),
		AliasBase:   c.Analysis.AliasBase,
		Concurrency: c.Analysis.Concurrency,
	}
}

// splitList accepts both YAML lists and comma-separated strings
// ("src, lib"), trimming blanks.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
