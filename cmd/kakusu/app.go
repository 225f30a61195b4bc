package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/kakusu/internal/config"
	"github.com/nao1215/kakusu/internal/crawler"
	"github.com/nao1215/kakusu/internal/database"
	applog "github.com/nao1215/kakusu/internal/log"
	"github.com/nao1215/kakusu/internal/metrics"
	"github.com/nao1215/kakusu/internal/oracle"
)

// app holds the wiring shared by the commands that talk to the sites.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	client  *crawler.Client

	// store is nil when the database could not be opened.
	store *database.Store

	stopMetrics func()
}

// addNetworkFlags registers the flags of commands that fetch from the sites.
func addNetworkFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Duration("delay", config.DefaultRequestDelay,
		"Minimum interval between requests to the same site")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address for all site traffic (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("no-cache", false,
		"Do not read or write the local verdict cache")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"How long cached verdicts are reused")
	cmd.Flags().String("metrics-addr", "",
		"Serve Prometheus metrics on this address while running (e.g., :9090)")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the sanitizing logger selected by --log-format.
func setupLogger(cmd *cobra.Command, w io.Writer, verbose bool) *slog.Logger {
	format, err := cmd.Flags().GetString("log-format")
	if err == nil && format == "json" {
		return applog.NewSecureJSONLogger(w, verbose)
	}
	return applog.NewSecureLogger(w, verbose)
}

// loadConfig builds a Config from defaults, the configuration file and the
// persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.DBDir, err = cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; otherwise a missing file means no
	// site overrides.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}
	return cfg, nil
}

// applyNetworkFlags copies the flags of addNetworkFlags into cfg.
func applyNetworkFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return err
	}
	if cfg.RequestDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return err
	}
	if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	cfg.UseCache = !noCache
	if cfg.CacheTTL, err = cmd.Flags().GetDuration("cache-ttl"); err != nil {
		return err
	}
	if cfg.MetricsAddr, err = cmd.Flags().GetString("metrics-addr"); err != nil {
		return err
	}
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// newApp opens the database, starts the metrics server and builds the
// HTTP client. Call close when done.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	var clientOpts []crawler.ClientOption
	if cfg.ProxyAddress != "" {
		clientOpts = append(clientOpts, crawler.WithProxy(cfg.ProxyAddress))
	}
	client, err := crawler.NewClient(cfg.Timeout, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	a := &app{
		cfg:         cfg,
		logger:      logger,
		metrics:     metrics.New(),
		client:      client,
		stopMetrics: func() {},
	}

	if cfg.MetricsAddr != "" {
		stop, err := a.metrics.Serve(ctx, cfg.MetricsAddr, logger)
		if err != nil {
			return nil, err
		}
		a.stopMetrics = stop
	}

	if cfg.DBDir != "" {
		store, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			// Storage is optional; the analysis still works without it.
			logger.Warn("database unavailable, results will not be stored", "dir", cfg.DBDir, "error", err)
		} else {
			a.store = store
			logger.Debug("database opened", "path", store.Path())
			if cfg.UseCache && cfg.CacheTTL > 0 {
				purged, err := store.PurgeVerdicts(ctx, cfg.CacheTTL)
				if err != nil {
					logger.Warn("failed to purge expired verdicts", "error", err)
				} else if purged > 0 {
					logger.Debug("purged expired verdicts", "count", purged)
				}
			}
		}
	}
	return a, nil
}

func (a *app) close() {
	a.stopMetrics()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
}

// fetcher returns a Fetcher configured for the named site.
func (a *app) fetcher(site string, tlsFallback bool) (*crawler.Fetcher, config.SiteConfig) {
	sc := a.cfg.Site(site)
	httpClient := crawler.WithSiteHeaders(a.client.HTTPClient(), sc.Cookie, sc.Headers)

	opts := []crawler.FetcherOption{
		crawler.WithDelay(sc.Delay),
		crawler.WithUserAgent(sc.UserAgent),
		crawler.WithMaxBodySize(a.cfg.MaxBodySize),
	}
	if tlsFallback {
		insecure := crawler.WithSiteHeaders(a.client.InsecureHTTPClient(), sc.Cookie, sc.Headers)
		opts = append(opts, crawler.WithTLSFallback(insecure))
	}
	return crawler.NewFetcher(httpClient, opts...), sc
}

// oracles builds both fail-soft oracles, behind the verdict cache when it
// is enabled.
func (a *app) oracles() (enamae, namaeuranai oracle.Oracle) {
	opts := []oracle.Option{
		oracle.WithLogger(a.logger),
		oracle.WithObserver(a.metrics),
	}

	enamaeFetcher, enamaeSite := a.fetcher(config.SiteEnamae, false)
	namaeFetcher, namaeSite := a.fetcher(config.SiteNamaeuranai, true)

	var sources [2]oracle.Source
	sources[0] = oracle.NewEnamae(enamaeFetcher, enamaeSite.BaseURL, opts...)
	sources[1] = oracle.NewNamaeuranai(namaeFetcher, namaeSite.BaseURL, opts...)

	for i, src := range sources {
		if a.cfg.UseCache && a.store != nil {
			sources[i] = oracle.Cached(src, a.store, a.cfg.CacheTTL, opts...)
		}
	}
	return oracle.FailSoft(sources[0], opts...), oracle.FailSoft(sources[1], opts...)
}

// openStore opens the database for the commands that only read or write
// local data.
func openStore(cfg *config.Config) (*database.Store, error) {
	if cfg.DBDir == "" {
		return nil, errors.New("no data directory configured")
	}
	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// syncWriter serializes writes from the logger and the progress line.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// elapsedSince rounds for display.
func elapsedSince(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
