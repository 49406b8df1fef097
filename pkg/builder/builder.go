// Package builder owns the per-build resources of the screenshot pipeline:
// the Playwright driver, the launched browsers, the context and local-app
// registries, and the asset emitter. One Build spans one documentation build;
// Close tears everything down on every exit path.
package builder

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/docshot/docshot/pkg/config"
	"github.com/docshot/docshot/pkg/localapp"
	"github.com/docshot/docshot/pkg/screenshot"
)

// Build orchestrates directive captures for one documentation build.
// Browsers are launched lazily per kind and reused; local apps are started on
// first reference and shared.
type Build struct {
	mu       sync.Mutex
	pw       *playwright.Playwright
	browsers map[screenshot.Browser]playwright.Browser

	provider *screenshot.ContextProvider
	apps     *localapp.Registry
	engine   *screenshot.Engine
	emitter  *screenshot.Emitter
	defaults screenshot.Defaults

	srcDir   string
	outDir   string
	assetDir string

	// current document, set by the host before rendering each file
	docPath string
	docDir  string

	log *slog.Logger
}

// New starts a build rooted at srcDir using the given project configuration.
// The Playwright driver is installed and started once here; browsers launch
// lazily on first use.
func New(cfg *config.Config, srcDir string) (*Build, error) {
	outDir := cfg.OutputDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(srcDir, outDir)
	}
	assetDir := filepath.Join(outDir, "_static", "screenshots")

	emitter, err := screenshot.NewEmitter(assetDir)
	if err != nil {
		return nil, err
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	return &Build{
		pw:       pw,
		browsers: make(map[screenshot.Browser]playwright.Browser),
		provider: screenshot.NewContextProvider(),
		apps:     localapp.NewRegistry(),
		engine:   screenshot.NewEngine(),
		emitter:  emitter,
		defaults: cfg.Defaults(),
		srcDir:   srcDir,
		outDir:   outDir,
		assetDir: assetDir,
		docDir:   srcDir,
		log:      slog.Default(),
	}, nil
}

// RegisterApp registers a named local app factory.
func (b *Build) RegisterApp(name string, factory localapp.Factory) {
	b.apps.Register(name, factory)
}

// RegisterContext registers a named browser context builder.
func (b *Build) RegisterContext(name string, builder screenshot.ContextBuilder) {
	b.provider.Register(name, builder)
}

// OutDir returns the build output directory.
func (b *Build) OutDir() string { return b.outDir }

// SetDocument records the source document being rendered, for
// document-relative targets and error context.
func (b *Build) SetDocument(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docPath = path
	b.docDir = filepath.Dir(path)
}

// AssetHref returns the href for an emitted asset name, relative to where the
// current document's rendered output lives under the output directory.
func (b *Build) AssetHref(name string) string {
	b.mu.Lock()
	docDir := b.docDir
	b.mu.Unlock()

	rel, err := filepath.Rel(docDir, b.srcDir)
	if err != nil {
		rel = "."
	}
	href := filepath.ToSlash(filepath.Join(rel, "_static", "screenshots", name))
	return href
}

// DualTheme reports whether a directive's effective color scheme is "auto",
// which renders as a light and a dark capture rather than a single one.
func (b *Build) DualTheme(raw screenshot.Raw) (bool, error) {
	scheme := b.defaults.ColorScheme
	if raw.ColorScheme != "" {
		parsed, err := screenshot.ParseColorScheme(raw.ColorScheme)
		if err != nil {
			return false, b.withDocContext(err)
		}
		scheme = parsed
	}
	return scheme == screenshot.ColorSchemeAuto, nil
}

// Capture runs the full pipeline for one directive: resolve options, resolve
// the target, reuse a cached asset when one exists, otherwise acquire a
// context, capture, and emit. Errors out of here are fatal for the directive
// only; whether the rest of the build continues is the host's call.
func (b *Build) Capture(raw screenshot.Raw) (screenshot.AssetRef, error) {
	opts, err := screenshot.Resolve(raw, b.defaults)
	if err != nil {
		return screenshot.AssetRef{}, b.withDocContext(err)
	}

	url, err := ResolveTarget(opts.Target, b.srcDir, b.currentDocDir(), b.apps)
	if err != nil {
		return screenshot.AssetRef{}, b.withDocContext(err)
	}
	opts.URL = url

	fingerprint := opts.Fingerprint()
	if b.emitter.Has(fingerprint) && (!opts.PDF || b.emitter.HasPDF(fingerprint)) {
		return b.emitter.Ref(fingerprint, opts.PDF), nil
	}

	browser, err := b.browser(opts.Browser)
	if err != nil {
		return screenshot.AssetRef{}, b.withDocContext(err)
	}

	handle, err := b.provider.Acquire(browser, opts)
	if err != nil {
		return screenshot.AssetRef{}, b.withDocContext(err)
	}
	defer handle.Release()

	asset, err := b.engine.Capture(opts, handle)
	if err != nil {
		return screenshot.AssetRef{}, b.withDocContext(err)
	}

	if asset.Status != 0 && !opts.StatusExpected(asset.Status) {
		b.log.Warn("unexpected response status",
			"url", opts.URL,
			"status", asset.Status,
			"expected", formatStatuses(opts.ExpectedStatus),
			"document", b.currentDocPath())
	}

	ref, err := b.emitter.Write(asset)
	if err != nil {
		return screenshot.AssetRef{}, b.withDocContext(err)
	}
	return ref, nil
}

// browser returns the launched browser for a kind, launching it on first use.
func (b *Build) browser(kind screenshot.Browser) (playwright.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if browser, ok := b.browsers[kind]; ok {
		return browser, nil
	}

	var browserType playwright.BrowserType
	switch kind {
	case screenshot.BrowserFirefox:
		browserType = b.pw.Firefox
	case screenshot.BrowserWebkit:
		browserType = b.pw.WebKit
	default:
		browserType = b.pw.Chromium
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", kind, err)
	}
	b.browsers[kind] = browser
	return browser, nil
}

// Close tears the build down: local apps first, then browsers, then the
// Playwright driver. Safe to call after a failed build.
func (b *Build) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if err := b.apps.Close(); err != nil {
		errs = append(errs, err)
	}
	for kind, browser := range b.browsers {
		if err := browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", kind, err))
		}
		delete(b.browsers, kind)
	}
	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
		}
		b.pw = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("build teardown: %v", errs)
	}
	return nil
}

func (b *Build) currentDocDir() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.docDir
}

func (b *Build) currentDocPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.docPath
}

func (b *Build) withDocContext(err error) error {
	doc := b.currentDocPath()
	if doc == "" {
		return err
	}
	return fmt.Errorf("%s: %w", doc, err)
}

func formatStatuses(statuses []int) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, ",")
}
