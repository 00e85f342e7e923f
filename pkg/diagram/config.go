// Package diagram assembles the engine: it owns the lifecycle of one
// diagram instance (create, update, destroy), wires the state store,
// display calculator, scene coordinator, and viewport together, and tracks
// instances in an explicit registry.
package diagram

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/orbit/pkg/display"
	"github.com/matzehuels/orbit/pkg/scene"
)

// Config is the user-facing configuration for one diagram instance.
// Unset values fall back to defaults; individually invalid values are
// replaced by their default rather than failing the whole load, so a stale
// config file cannot brick an instance.
type Config struct {
	// Source identifies the tree snapshot to fetch.
	Source string `toml:"source"`

	// BaseURL is the snapshot endpoint for HTTP sources.
	BaseURL string `toml:"base_url"`

	// StreamURL enables live updates over a websocket when set.
	StreamURL string `toml:"stream_url"`

	// MinTransitionMillis keeps the transitioning flag set at least this
	// long after an update.
	MinTransitionMillis int `toml:"min_transition_millis"`

	// DebounceMillis is the resize debounce interval.
	DebounceMillis int `toml:"debounce_millis"`

	// OuterPolicy selects the outer ring emphasis policy:
	// "dim-others" or "highlight-active".
	OuterPolicy string `toml:"outer_policy"`

	Display  DisplayConfig  `toml:"display"`
	Viewport ViewportConfig `toml:"viewport"`
	Cache    CacheConfig    `toml:"cache"`
}

// DisplayConfig overrides the responsive breakpoints and minimum box.
type DisplayConfig struct {
	SmallBreakpoint  float64 `toml:"small_breakpoint"`
	MediumBreakpoint float64 `toml:"medium_breakpoint"`
	LargeBreakpoint  float64 `toml:"large_breakpoint"`
	MinWidth         float64 `toml:"min_width"`
	MinHeight        float64 `toml:"min_height"`
}

// ViewportConfig overrides the zoom clamp bounds.
type ViewportConfig struct {
	MinZoom float64 `toml:"min_zoom"`
	MaxZoom float64 `toml:"max_zoom"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", "mongo", or "none".
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Addr    string `toml:"addr"`
	URI     string `toml:"uri"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		MinTransitionMillis: 100,
		DebounceMillis:      250,
		OuterPolicy:         "dim-others",
		Cache:               CacheConfig{Backend: "file"},
	}
}

// LoadConfig reads a TOML config file and merges it over the defaults. A
// missing file returns the defaults; an unreadable or unparsable file is an
// error because silently ignoring a file the user pointed at hides typos.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	cfg.normalize()
	return cfg, nil
}

// normalize replaces individually invalid values with their defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.MinTransitionMillis <= 0 {
		c.MinTransitionMillis = def.MinTransitionMillis
	}
	if c.DebounceMillis <= 0 {
		c.DebounceMillis = def.DebounceMillis
	}
	switch c.OuterPolicy {
	case "dim-others", "highlight-active":
	default:
		c.OuterPolicy = def.OuterPolicy
	}
	if c.Viewport.MinZoom < 0 || (c.Viewport.MaxZoom != 0 && c.Viewport.MaxZoom < c.Viewport.MinZoom) {
		c.Viewport = ViewportConfig{}
	}
	switch c.Cache.Backend {
	case "", "file", "redis", "mongo", "none":
	default:
		c.Cache.Backend = def.Cache.Backend
	}
}

// MinTransition returns the minimum transition window as a duration.
func (c Config) MinTransition() time.Duration {
	return time.Duration(c.MinTransitionMillis) * time.Millisecond
}

// Debounce returns the resize debounce interval as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

// outerPolicy maps the config string onto the scene policy.
func (c Config) outerPolicy() scene.OuterPolicy {
	if c.OuterPolicy == "highlight-active" {
		return scene.PolicyHighlightActive
	}
	return scene.PolicyDimOthers
}

// displayOptions maps the display overrides onto calculator options.
func (c Config) displayOptions() display.Options {
	return display.Options{
		Breakpoints: display.Breakpoints{
			Small:  c.Display.SmallBreakpoint,
			Medium: c.Display.MediumBreakpoint,
			Large:  c.Display.LargeBreakpoint,
		},
		MinWidth:  c.Display.MinWidth,
		MinHeight: c.Display.MinHeight,
	}
}
