package screenshot

import (
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// ContextBuilder builds a browser context for a capture. Builders are
// registered under a name and invoked with the launched browser, the resolved
// target URL and the resolved color scheme. What happens inside (logging in,
// loading a stored session, device emulation) is entirely the builder's
// business; the provider never inspects the result.
//
// A builder that wants its context reused across directives should hand back
// the same context on every call; the provider itself does not cache.
type ContextBuilder func(browser playwright.Browser, url string, colorScheme ColorScheme) (playwright.BrowserContext, error)

// ContextHandle wraps a browser context together with its ownership. Handles
// for default anonymous contexts are owned by the pipeline and closed on
// Release; builder-supplied contexts stay open, their lifetime belongs to the
// builder.
type ContextHandle struct {
	Context playwright.BrowserContext
	owned   bool
}

// Release closes the context when the pipeline owns it.
func (h *ContextHandle) Release() error {
	if h == nil || !h.owned {
		return nil
	}
	return h.Context.Close()
}

// ContextProvider resolves named contexts through user-registered builders
// and falls back to a default anonymous context.
type ContextProvider struct {
	mu       sync.RWMutex
	builders map[string]ContextBuilder
}

// NewContextProvider creates an empty provider.
func NewContextProvider() *ContextProvider {
	return &ContextProvider{builders: make(map[string]ContextBuilder)}
}

// Register adds a named context builder, replacing any previous registration
// under the same name.
func (p *ContextProvider) Register(name string, builder ContextBuilder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.builders[name] = builder
}

// Acquire returns a context handle for the resolved options. With no context
// name the handle wraps a fresh anonymous context scoped to the resolved
// color scheme, locale and timezone. With a name, the registered builder is
// invoked; an unregistered name is a configuration error.
func (p *ContextProvider) Acquire(browser playwright.Browser, opts *ResolvedOptions) (*ContextHandle, error) {
	if opts.Context == "" {
		ctx, err := p.defaultContext(browser, opts)
		if err != nil {
			return nil, err
		}
		return &ContextHandle{Context: ctx, owned: true}, nil
	}

	p.mu.RLock()
	builder, ok := p.builders[opts.Context]
	p.mu.RUnlock()
	if !ok {
		return nil, configErrf("unknown screenshot context %q: no builder registered under that name", opts.Context)
	}

	ctx, err := builder(browser, opts.URL, opts.ColorScheme)
	if err != nil {
		return nil, &PipelineError{Kind: ErrConfig, Target: opts.URL,
			Err: fmt.Errorf("context builder %q: %w", opts.Context, err)}
	}
	return &ContextHandle{Context: ctx}, nil
}

func (p *ContextProvider) defaultContext(browser playwright.Browser, opts *ResolvedOptions) (playwright.BrowserContext, error) {
	contextOpts := playwright.BrowserNewContextOptions{
		ColorScheme: opts.ColorScheme.playwright(),
	}
	if opts.DeviceScaleFactor > 1 {
		contextOpts.DeviceScaleFactor = playwright.Float(float64(opts.DeviceScaleFactor))
	}
	if opts.Locale != "" {
		contextOpts.Locale = playwright.String(opts.Locale)
	}
	if opts.Timezone != "" {
		contextOpts.TimezoneId = playwright.String(opts.Timezone)
	}
	ctx, err := browser.NewContext(contextOpts)
	if err != nil {
		return nil, captureErr(opts.URL, fmt.Errorf("failed to create context: %w", err))
	}
	return ctx, nil
}

func (c ColorScheme) playwright() *playwright.ColorScheme {
	switch c {
	case ColorSchemeDark:
		return playwright.ColorSchemeDark
	case ColorSchemeNoPreference:
		return playwright.ColorSchemeNoPreference
	default:
		return playwright.ColorSchemeLight
	}
}
