package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the timeout of a single HTTP request to an oracle site.
	DefaultTimeout = 30 * time.Second

	// DefaultRunTimeout bounds a whole analysis run. A three-character run
	// issues 16,000 requests, so this has to be generous.
	DefaultRunTimeout = 60 * time.Minute

	// DefaultConcurrency is the number of candidates evaluated at once.
	DefaultConcurrency = 4

	// MaxConcurrency is the upper bound accepted by Validate.
	MaxConcurrency = 4

	// DefaultRequestDelay is the minimum interval between two requests to the
	// same site.
	DefaultRequestDelay = 500 * time.Millisecond

	// AppName is the application name used for XDG directory paths.
	AppName = "kakusu"

	// DefaultUserAgent identifies kakusu in HTTP requests.
	DefaultUserAgent = "kakusu/1.0 (+https://github.com/nao1215/kakusu)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultCacheTTL is how long a cached oracle verdict stays valid.
	// Fortune sites rarely change their tables, so a week is safe.
	DefaultCacheTTL = 7 * 24 * time.Hour

	// DefaultEnamaeURL is the base URL of oracle A.
	DefaultEnamaeURL = "https://enamae.net"

	// DefaultNamaeuranaiURL is the base URL of oracle B.
	DefaultNamaeuranaiURL = "https://namaeuranai.biz"

	// DefaultBNameURL is the base URL of the name candidate source.
	DefaultBNameURL = "https://b-name.jp"
)

// Site names used as keys in the configuration file.
const (
	SiteEnamae      = "enamae"
	SiteNamaeuranai = "namaeuranai"
	SiteBName       = "bname"
)

// Config holds all configuration options for kakusu.
// It is populated from defaults, the configuration file and CLI flags (in
// that order) and passed down explicitly instead of living in globals.
//
// Design decision: a single flat struct, like the CLI flags it mirrors.
// Per-site settings that only make sense in a file live in SiteConfigs.
type Config struct {
	// Timeout is the timeout of each HTTP request.
	Timeout time.Duration

	// RunTimeout bounds a whole analysis run. Zero disables it.
	// When it fires, in-flight oracle calls are cancelled and the run is
	// returned as partial.
	RunTimeout time.Duration

	// Concurrency is the number of candidates evaluated at once (1..MaxConcurrency).
	Concurrency int

	// RequestDelay is the minimum interval between requests to the same site.
	RequestDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// ProxyAddress is an optional SOCKS5 proxy ("host:port") for all site traffic.
	ProxyAddress string

	// EnamaeURL, NamaeuranaiURL and BNameURL are the site base URLs.
	// They are overridable so tests and mirrors can be used.
	EnamaeURL      string
	NamaeuranaiURL string
	BNameURL       string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// SiteConfigs holds site-specific settings loaded from the config file.
	SiteConfigs *File

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; neither means the simple text format.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string

	// SaveResult writes the run as a timestamped JSON file in the current
	// directory in addition to the report.
	SaveResult bool

	// DBDir is the directory of the SQLite database. Empty disables storage
	// of runs and the verdict cache.
	DBDir string

	// UseCache enables the oracle verdict cache. Requires DBDir.
	UseCache bool

	// CacheTTL is how long a cached verdict is reused.
	CacheTTL time.Duration

	// MetricsAddr, when set, serves Prometheus metrics on this address while
	// the command runs.
	MetricsAddr string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:        DefaultTimeout,
		RunTimeout:     DefaultRunTimeout,
		Concurrency:    DefaultConcurrency,
		RequestDelay:   DefaultRequestDelay,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		EnamaeURL:      DefaultEnamaeURL,
		NamaeuranaiURL: DefaultNamaeuranaiURL,
		BNameURL:       DefaultBNameURL,
		DBDir:          XDGDataDir(),
		UseCache:       true,
		CacheTTL:       DefaultCacheTTL,
	}
}

// XDGDataDir returns the XDG data directory for kakusu.
// On Linux: ~/.local/share/kakusu
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for kakusu.
// On Linux: ~/.config/kakusu
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RunTimeout < 0 {
		return ErrInvalidRunTimeout
	}
	if c.Concurrency < 1 || c.Concurrency > MaxConcurrency {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}
	return nil
}

// Site returns the effective settings for the named site: the file defaults
// merged with the site entry, with the base URL and delay falling back to
// the values in c.
func (c *Config) Site(name string) SiteConfig {
	var sc SiteConfig
	if c.SiteConfigs != nil {
		sc = c.SiteConfigs.GetSiteConfig(name)
	}
	if sc.BaseURL == "" {
		switch name {
		case SiteEnamae:
			sc.BaseURL = c.EnamaeURL
		case SiteNamaeuranai:
			sc.BaseURL = c.NamaeuranaiURL
		case SiteBName:
			sc.BaseURL = c.BNameURL
		}
	}
	if sc.UserAgent == "" {
		sc.UserAgent = c.UserAgent
	}
	if sc.Delay == 0 {
		sc.Delay = c.RequestDelay
	}
	return sc
}
