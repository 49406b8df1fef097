// Package config loads the project configuration file carrying the
// document-wide screenshot defaults.
//
// Context and app factories are Go functions and therefore cannot live in a
// configuration file; they are registered programmatically on the build. The
// file carries scalar defaults only.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/docshot/docshot/pkg/screenshot"
)

// Config mirrors the docshot.yaml project file.
type Config struct {
	DefaultBrowser     string            `yaml:"screenshot_default_browser"`
	DefaultColorScheme string            `yaml:"screenshot_default_color_scheme"`
	DefaultFullPage    bool              `yaml:"screenshot_default_full_page"`
	DefaultWidth       int               `yaml:"screenshot_default_viewport_width"`
	DefaultHeight      int               `yaml:"screenshot_default_viewport_height"`
	DefaultScaleFactor int               `yaml:"screenshot_default_device_scale_factor"`
	DefaultHeaders     map[string]string `yaml:"screenshot_default_headers"`
	DefaultLocale      string            `yaml:"screenshot_default_locale"`
	DefaultTimezone    string            `yaml:"screenshot_default_timezone"`
	InitScript         string            `yaml:"screenshot_init_script"`
	ExpectedStatus     []int             `yaml:"screenshot_expected_status"`
	OutputDir          string            `yaml:"output_dir"`
}

// New returns a config populated with the hard-coded fallbacks.
func New() *Config {
	return &Config{
		DefaultBrowser:     string(screenshot.BrowserChromium),
		DefaultColorScheme: string(screenshot.ColorSchemeLight),
		DefaultWidth:       1280,
		DefaultHeight:      960,
		DefaultScaleFactor: 1,
		ExpectedStatus:     []int{200, 302},
		OutputDir:          "_build",
	}
}

// Load reads the configuration file at path. A missing file is not an error;
// the fallbacks apply. Enum and dimension values are validated here so a bad
// project file fails the build before any browser is launched.
func Load(path string) (*Config, error) {
	cfg := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if _, err := screenshot.ParseBrowser(cfg.DefaultBrowser); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := screenshot.ParseColorScheme(cfg.DefaultColorScheme); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.DefaultWidth <= 0 || cfg.DefaultHeight <= 0 {
		return nil, fmt.Errorf("%s: viewport defaults must be positive, got %dx%d",
			path, cfg.DefaultWidth, cfg.DefaultHeight)
	}
	if cfg.DefaultScaleFactor <= 0 {
		return nil, fmt.Errorf("%s: device scale factor default must be positive, got %d",
			path, cfg.DefaultScaleFactor)
	}

	return cfg, nil
}

// Defaults converts the config into the resolver's defaults value. Header
// defaults come from a YAML mapping, so they are ordered by name for
// deterministic requests.
func (c *Config) Defaults() screenshot.Defaults {
	def := screenshot.Defaults{
		Browser:           screenshot.Browser(c.DefaultBrowser),
		ColorScheme:       screenshot.ColorScheme(c.DefaultColorScheme),
		ViewportWidth:     c.DefaultWidth,
		ViewportHeight:    c.DefaultHeight,
		DeviceScaleFactor: c.DefaultScaleFactor,
		FullPage:          c.DefaultFullPage,
		Locale:            c.DefaultLocale,
		Timezone:          c.DefaultTimezone,
		InitScript:        c.InitScript,
		ExpectedStatus:    c.ExpectedStatus,
	}

	names := make([]string, 0, len(c.DefaultHeaders))
	for name := range c.DefaultHeaders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def.Headers = append(def.Headers, screenshot.Header{Name: name, Value: c.DefaultHeaders[name]})
	}
	return def
}
