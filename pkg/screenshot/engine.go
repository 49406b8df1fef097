package screenshot

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// DefaultPageTimeout is the default timeout applied to every page operation,
// in milliseconds. The pipeline adds no timeout or retry layer of its own
// beyond this Playwright-native setting.
const DefaultPageTimeout = 10000.0

// Engine drives a Playwright page from resolved options to captured bytes.
type Engine struct {
	timeout float64
}

// NewEngine creates an engine with the default page timeout.
func NewEngine() *Engine {
	return &Engine{timeout: DefaultPageTimeout}
}

// Capture opens a page in the given context, navigates to opts.URL, applies
// headers and viewport, runs the optional interaction script, and produces a
// screenshot (and a PDF when requested). The page is always closed; the
// context is closed only when the handle owns it. Failures propagate typed
// (ErrNavigation, ErrScript, ErrCapture) and are never retried.
func (e *Engine) Capture(opts *ResolvedOptions, handle *ContextHandle) (*CapturedAsset, error) {
	page, err := handle.Context.NewPage()
	if err != nil {
		return nil, captureErr(opts.URL, fmt.Errorf("failed to create page: %w", err))
	}
	defer page.Close()

	page.SetDefaultTimeout(e.timeout)

	if err := page.SetViewportSize(opts.ViewportWidth, opts.ViewportHeight); err != nil {
		return nil, captureErr(opts.URL, fmt.Errorf("failed to set viewport: %w", err))
	}

	if opts.InitScript != "" {
		script := playwright.Script{Content: playwright.String(opts.InitScript)}
		if err := page.AddInitScript(script); err != nil {
			return nil, scriptErr(opts.URL, fmt.Errorf("init script: %w", err))
		}
	}

	if headers := opts.HeaderMap(); headers != nil {
		if err := page.SetExtraHTTPHeaders(headers); err != nil {
			return nil, captureErr(opts.URL, fmt.Errorf("failed to set headers: %w", err))
		}
	}

	resp, err := page.Goto(opts.URL)
	if err != nil {
		return nil, navErr(opts.URL, err)
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	}); err != nil {
		return nil, navErr(opts.URL, err)
	}

	// Interactions run in page scope; the capture must not proceed until
	// their observable effects settle, so wait for the network to go idle
	// again afterwards.
	if opts.Interactions != "" {
		if _, err := page.Evaluate(opts.Interactions); err != nil {
			return nil, scriptErr(opts.URL, err)
		}
		if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State: playwright.LoadStateNetworkidle,
		}); err != nil {
			return nil, scriptErr(opts.URL, err)
		}
	}

	image, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(opts.FullPage),
	})
	if err != nil {
		return nil, captureErr(opts.URL, err)
	}

	asset := &CapturedAsset{
		ImageBytes:  image,
		SourceURL:   opts.URL,
		Fingerprint: opts.Fingerprint(),
	}
	if resp != nil {
		asset.Status = resp.Status()
	}

	if opts.PDF {
		if err := page.EmulateMedia(playwright.PageEmulateMediaOptions{
			Media: playwright.MediaScreen,
		}); err != nil {
			return nil, captureErr(opts.URL, fmt.Errorf("failed to emulate screen media: %w", err))
		}
		pdf, err := page.PDF(playwright.PagePdfOptions{
			Width:  playwright.String(fmt.Sprintf("%dpx", opts.ViewportWidth)),
			Height: playwright.String(fmt.Sprintf("%dpx", opts.ViewportHeight)),
		})
		if err != nil {
			return nil, captureErr(opts.URL, fmt.Errorf("pdf export: %w", err))
		}
		asset.PDFBytes = pdf
	}

	return asset, nil
}
