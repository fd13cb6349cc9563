// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/exhibitor-scraper/internal/exhibitor"
	"github.com/JakeFAU/exhibitor-scraper/internal/robots"
	"github.com/JakeFAU/exhibitor-scraper/internal/store"
)

// Config captures all scraper configuration knobs loaded via Viper.
type Config struct {
	Target   TargetConfig   `mapstructure:"target"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Robots   RobotsConfig   `mapstructure:"robots"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
	Store    StoreConfig    `mapstructure:"store"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// TargetConfig names the listing page.
type TargetConfig struct {
	URL string `mapstructure:"url"`
}

// CrawlerConfig holds the client identity.
type CrawlerConfig struct {
	UserAgent string `mapstructure:"user_agent"`
}

// RobotsConfig controls the robots.txt permission check.
type RobotsConfig struct {
	Respect bool          `mapstructure:"respect"`
	OnError string        `mapstructure:"on_error"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// HTTPConfig configures the page fetch. A zero timeout keeps the library default.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ThrottleConfig bounds the random pause between blocks.
type ThrottleConfig struct {
	Min time.Duration `mapstructure:"min"`
	Max time.Duration `mapstructure:"max"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
	Table  string `mapstructure:"table"`
}

// ExtractConfig holds the CSS selectors used on the listing page.
type ExtractConfig struct {
	BlockSelector       string `mapstructure:"block_selector"`
	NameSelector        string `mapstructure:"name_selector"`
	DescriptionSelector string `mapstructure:"description_selector"`
	CountrySelector     string `mapstructure:"country_selector"`
	WebsiteSelector     string `mapstructure:"website_selector"`
}

// MetricsConfig controls the optional Prometheus textfile dump.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	sel := exhibitor.DefaultSelectors()

	v.SetDefault("target.url", "https://www.eurobike.com/frankfurt/de.html")
	v.SetDefault("crawler.user_agent", "Mozilla/5.0 (compatible; EurobikeScraper/1.0)")
	v.SetDefault("robots.respect", true)
	v.SetDefault("robots.on_error", robots.OnErrorDeny)
	v.SetDefault("robots.timeout", "10s")
	v.SetDefault("http.timeout", "0s")
	v.SetDefault("throttle.min", "1s")
	v.SetDefault("throttle.max", "3s")
	v.SetDefault("store.driver", store.DriverSQLite)
	v.SetDefault("store.path", "eurobike.db")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.table", store.DefaultTable)
	v.SetDefault("extract.block_selector", sel.Block)
	v.SetDefault("extract.name_selector", sel.Name)
	v.SetDefault("extract.description_selector", sel.Description)
	v.SetDefault("extract.country_selector", sel.Country)
	v.SetDefault("extract.website_selector", sel.Website)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	u, err := url.Parse(c.Target.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("target.url must be an absolute URL, got %q", c.Target.URL)
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	switch c.Robots.OnError {
	case robots.OnErrorDeny, robots.OnErrorAllow:
	default:
		return fmt.Errorf("robots.on_error must be %q or %q", robots.OnErrorDeny, robots.OnErrorAllow)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must be >= 0")
	}
	if c.Throttle.Min < 0 || c.Throttle.Max < 0 {
		return fmt.Errorf("throttle.min and throttle.max must be >= 0")
	}
	if c.Throttle.Min > c.Throttle.Max {
		return fmt.Errorf("throttle.min must be <= throttle.max")
	}
	if err := store.CheckDriver(c.Store.Driver); err != nil {
		return fmt.Errorf("store.driver: %w", err)
	}
	if c.Store.Driver == store.DriverSQLite && c.Store.Path == "" {
		return fmt.Errorf("store.path must be set for the sqlite driver")
	}
	if c.Store.Driver == store.DriverPostgres && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn must be set for the postgres driver")
	}
	if _, err := store.TableName(c.Store.Table); err != nil {
		return fmt.Errorf("store.table: %w", err)
	}
	if strings.TrimSpace(c.Extract.BlockSelector) == "" {
		return fmt.Errorf("extract.block_selector must be set")
	}
	return nil
}

// Selectors converts the extract section into exhibitor selectors.
func (c Config) Selectors() exhibitor.Selectors {
	return exhibitor.Selectors{
		Block:       c.Extract.BlockSelector,
		Name:        c.Extract.NameSelector,
		Description: c.Extract.DescriptionSelector,
		Country:     c.Extract.CountrySelector,
		Website:     c.Extract.WebsiteSelector,
	}
}
