package screenshot

import (
	"strconv"
	"strings"
)

// Browser identifies which Playwright browser kind performs the capture.
type Browser string

const (
	BrowserChromium Browser = "chromium"
	BrowserFirefox  Browser = "firefox"
	BrowserWebkit   Browser = "webkit"
)

// ColorScheme is the emulated prefers-color-scheme media value.
type ColorScheme string

const (
	ColorSchemeLight        ColorScheme = "light"
	ColorSchemeDark         ColorScheme = "dark"
	ColorSchemeNoPreference ColorScheme = "no-preference"

	// ColorSchemeAuto requests both a light and a dark capture. It is an
	// option value, not an emulation value: callers expand it into two
	// concrete captures before resolving.
	ColorSchemeAuto ColorScheme = "auto"
)

// Header is one extra HTTP request header. Headers keep their directive
// order; names are unique case-insensitively, later entries winning.
type Header struct {
	Name  string
	Value string
}

// Defaults carries the document-wide option defaults a directive resolves
// against.
type Defaults struct {
	Browser           Browser
	ColorScheme       ColorScheme
	ViewportWidth     int
	ViewportHeight    int
	DeviceScaleFactor int
	FullPage          bool
	Headers           []Header
	Locale            string
	Timezone          string
	InitScript        string
	ExpectedStatus    []int
}

// NewDefaults returns the hard-coded fallback defaults: 1280x960 viewport,
// chromium, light color scheme, device scale factor 1, viewport-bound
// capture, statuses 200 and 302 accepted.
func NewDefaults() Defaults {
	return Defaults{
		Browser:           BrowserChromium,
		ColorScheme:       ColorSchemeLight,
		ViewportWidth:     1280,
		ViewportHeight:    960,
		DeviceScaleFactor: 1,
		ExpectedStatus:    []int{200, 302},
	}
}

// Raw holds a directive's textual options before resolution. All scalar
// fields are the raw option strings as written in the document; empty means
// absent. FullPage distinguishes an explicit false from absent.
type Raw struct {
	Target            string
	Browser           string
	ColorScheme       string
	Context           string
	ViewportWidth     string
	ViewportHeight    string
	DeviceScaleFactor string
	FullPage          *bool
	PDF               bool
	Headers           string // newline-separated "Name value" lines
	Interactions      string
	Locale            string
	Timezone          string
	StatusCode        string            // comma-separated acceptable statuses
	Figure            map[string]string // passthrough figure options
}

// ResolvedOptions is a fully-populated capture configuration. URL is filled
// in by the caller once the target has been resolved against the document
// location and any registered local apps; Target stays as written so capture
// fingerprints are stable across builds in different directories.
type ResolvedOptions struct {
	Target            string
	URL               string
	Browser           Browser
	ViewportWidth     int
	ViewportHeight    int
	DeviceScaleFactor int
	ColorScheme       ColorScheme
	FullPage          bool
	PDF               bool
	Headers           []Header
	Interactions      string
	Context           string
	Locale            string
	Timezone          string
	InitScript        string
	ExpectedStatus    []int
	StatusCode        string // the status-code option as written, "" when absent
	Figure            map[string]string
}

// Resolve merges directive-local options over document defaults over the
// hard-coded fallbacks. It fails when a value fails type coercion or names an
// unknown enum value, reporting the offending option and value. Resolve has
// no side effects.
func Resolve(raw Raw, def Defaults) (*ResolvedOptions, error) {
	opts := &ResolvedOptions{
		Target:            raw.Target,
		Browser:           def.Browser,
		ViewportWidth:     def.ViewportWidth,
		ViewportHeight:    def.ViewportHeight,
		DeviceScaleFactor: def.DeviceScaleFactor,
		ColorScheme:       def.ColorScheme,
		FullPage:          def.FullPage,
		PDF:               raw.PDF,
		Interactions:      raw.Interactions,
		Context:           raw.Context,
		Locale:            raw.Locale,
		Timezone:          raw.Timezone,
		InitScript:        def.InitScript,
		ExpectedStatus:    def.ExpectedStatus,
		StatusCode:        raw.StatusCode,
		Figure:            raw.Figure,
	}
	if opts.Browser == "" {
		opts.Browser = BrowserChromium
	}
	if opts.ColorScheme == "" {
		opts.ColorScheme = ColorSchemeLight
	}
	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = 1280
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = 960
	}
	if opts.DeviceScaleFactor == 0 {
		opts.DeviceScaleFactor = 1
	}
	if len(opts.ExpectedStatus) == 0 {
		opts.ExpectedStatus = []int{200, 302}
	}
	if opts.Locale == "" {
		opts.Locale = def.Locale
	}
	if opts.Timezone == "" {
		opts.Timezone = def.Timezone
	}

	if raw.Browser != "" {
		b, err := ParseBrowser(raw.Browser)
		if err != nil {
			return nil, err
		}
		opts.Browser = b
	}
	if raw.ColorScheme != "" {
		cs, err := ParseColorScheme(raw.ColorScheme)
		if err != nil {
			return nil, err
		}
		opts.ColorScheme = cs
	}
	if raw.ViewportWidth != "" {
		w, err := parseViewportDimension("viewport-width", raw.ViewportWidth)
		if err != nil {
			return nil, err
		}
		opts.ViewportWidth = w
	}
	if raw.ViewportHeight != "" {
		h, err := parseViewportDimension("viewport-height", raw.ViewportHeight)
		if err != nil {
			return nil, err
		}
		opts.ViewportHeight = h
	}
	if raw.DeviceScaleFactor != "" {
		f, err := parseViewportDimension("device-scale-factor", raw.DeviceScaleFactor)
		if err != nil {
			return nil, err
		}
		opts.DeviceScaleFactor = f
	}
	if raw.FullPage != nil {
		opts.FullPage = *raw.FullPage
	}
	if raw.StatusCode != "" {
		codes, err := ParseStatusCodes(raw.StatusCode)
		if err != nil {
			return nil, err
		}
		opts.ExpectedStatus = codes
	}

	headers, err := mergeHeaders(def.Headers, raw.Headers)
	if err != nil {
		return nil, err
	}
	opts.Headers = headers

	// PDF export is a Chromium capability; surface the mismatch here rather
	// than as an opaque engine failure.
	if opts.PDF && opts.Browser != BrowserChromium {
		return nil, configErrf("pdf output requires the chromium browser, got %q", opts.Browser)
	}

	// "auto" stands for a light plus a dark capture; callers split it into
	// two concrete resolutions before reaching this point.
	if opts.ColorScheme == ColorSchemeAuto {
		return nil, configErrf("color-scheme 'auto' must be expanded into separate light and dark captures")
	}

	return opts, nil
}

// ParseBrowser validates a browser option value.
func ParseBrowser(value string) (Browser, error) {
	switch Browser(value) {
	case BrowserChromium, BrowserFirefox, BrowserWebkit:
		return Browser(value), nil
	default:
		return "", configErrf("unknown browser %q (must be 'chromium', 'firefox' or 'webkit')", value)
	}
}

// ParseColorScheme validates a color-scheme option value. "auto" is a valid
// option value even though it never drives a capture directly.
func ParseColorScheme(value string) (ColorScheme, error) {
	switch ColorScheme(value) {
	case ColorSchemeLight, ColorSchemeDark, ColorSchemeNoPreference, ColorSchemeAuto:
		return ColorScheme(value), nil
	default:
		return "", configErrf("unknown color-scheme %q (must be 'light', 'dark', 'no-preference' or 'auto')", value)
	}
}

// ParseStatusCodes parses a comma-separated list of acceptable HTTP status
// codes, as written in a status-code option.
func ParseStatusCodes(value string) ([]int, error) {
	var codes []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, configErrf("status-code: %q is not an integer", part)
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, configErrf("status-code: %q lists no status codes", value)
	}
	return codes, nil
}

func parseViewportDimension(option, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, configErrf("%s: %q is not an integer", option, value)
	}
	if n <= 0 {
		return 0, configErrf("%s: %d is not a positive integer", option, n)
	}
	return n, nil
}

// mergeHeaders lays directive header lines over the document defaults.
// Each line is "Name value", name and value separated by the first space,
// matching names case-insensitively.
func mergeHeaders(defaults []Header, block string) ([]Header, error) {
	merged := make([]Header, len(defaults))
	copy(merged, defaults)

	for _, line := range strings.Split(strings.TrimSpace(block), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, " ")
		if !ok {
			return nil, configErrf("header line %q must be 'Name value'", line)
		}
		merged = setHeader(merged, name, strings.TrimSpace(value))
	}
	return merged, nil
}

func setHeader(headers []Header, name, value string) []Header {
	for i := range headers {
		if strings.EqualFold(headers[i].Name, name) {
			headers[i] = Header{Name: name, Value: value}
			return headers
		}
	}
	return append(headers, Header{Name: name, Value: value})
}

// HeaderMap flattens the resolved headers into the map shape Playwright
// consumes.
func (o *ResolvedOptions) HeaderMap() map[string]string {
	if len(o.Headers) == 0 {
		return nil
	}
	m := make(map[string]string, len(o.Headers))
	for _, h := range o.Headers {
		m[h.Name] = h.Value
	}
	return m
}

// StatusExpected reports whether a navigation response status is within the
// expected set.
func (o *ResolvedOptions) StatusExpected(status int) bool {
	for _, s := range o.ExpectedStatus {
		if s == status {
			return true
		}
	}
	return false
}
