// Package cli implements the orbit command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbit/pkg/buildinfo"
	"github.com/matzehuels/orbit/pkg/cache"
	"github.com/matzehuels/orbit/pkg/datasource"
	"github.com/matzehuels/orbit/pkg/diagram"
	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/hierarchy"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "orbit"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "orbit",
		Short:        "Orbit renders hierarchies as interactive radial diagrams",
		Long:         `Orbit is a radial hierarchy diagram engine: a central root surrounded by rings of descendants, with animated selection, zooming, and static export.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Flags
// =============================================================================

// sourceFlags are the tree-loading flags shared by view, export, and serve.
type sourceFlags struct {
	file       string
	baseURL    string
	source     string
	configPath string
	noCache    bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Load the tree from a snapshot JSON file")
	cmd.Flags().StringVar(&f.baseURL, "url", "", "Fetch the tree from an HTTP snapshot endpoint")
	cmd.Flags().StringVar(&f.source, "source", "", "Source name passed to the snapshot endpoint")
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to an orbit.toml config file")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Bypass the fetch cache")
}

// loadConfig merges the config file (when given) over the defaults and
// applies flag overrides on top.
func (f *sourceFlags) loadConfig() (diagram.Config, error) {
	path := f.configPath
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := diagram.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if f.source != "" {
		cfg.Source = f.source
	}
	if f.noCache {
		cfg.Cache.Backend = "none"
	}
	return cfg, nil
}

// defaultConfigPath is ./orbit.toml; LoadConfig treats a missing file as
// defaults, so this never forces one to exist.
func defaultConfigPath() string {
	return "orbit.toml"
}

// =============================================================================
// Provider Factory
// =============================================================================

// newProvider builds a caching tree provider from config. Returns nil when
// no HTTP source is configured (file-only usage).
func (c *CLI) newProvider(ctx context.Context, cfg diagram.Config) (*datasource.CachingProvider, error) {
	if cfg.BaseURL == "" {
		return nil, nil
	}
	inner, err := datasource.NewHTTPProvider(datasource.HTTPOptions{
		BaseURL: cfg.BaseURL,
		Logger:  c.Logger,
	})
	if err != nil {
		return nil, err
	}
	backend, err := newCacheBackend(ctx, cfg.Cache)
	if err != nil {
		c.Logger.Warn("cache backend unavailable, continuing uncached", "backend", cfg.Cache.Backend, "err", err)
		backend = cache.NewNullCache()
	}
	return datasource.NewCachingProvider(inner, datasource.CachingOptions{
		Cache:  backend,
		Logger: c.Logger,
	}), nil
}

// newCacheBackend maps the cache config onto a concrete backend.
func newCacheBackend(ctx context.Context, cfg diagram.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Addr})
	case "mongo":
		return cache.NewMongoCache(ctx, cache.MongoConfig{URI: cfg.URI})
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Tree Loading
// =============================================================================

// loadTree resolves the tree from a file or the configured HTTP source.
// Exactly one of the two must be available.
func (c *CLI) loadTree(ctx context.Context, f sourceFlags, cfg diagram.Config) (*hierarchy.Tree, *datasource.CachingProvider, error) {
	if f.file != "" {
		t, err := hierarchy.ReadTreeFile(f.file)
		if err != nil {
			return nil, nil, err
		}
		return t, nil, nil
	}

	provider, err := c.newProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if provider == nil {
		return nil, nil, orberrors.New(orberrors.ErrCodeInvalidConfig, "no tree source: pass --file or --url")
	}

	spin := newSpinnerWithContext(ctx, "Fetching tree...")
	spin.Start()
	t, err := provider.FetchTree(ctx, cfg.Source)
	spin.Stop()
	if err != nil {
		return nil, nil, err
	}
	return t, provider, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/orbit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
