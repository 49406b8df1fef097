// Package screenshot implements the directive-to-capture pipeline that turns
// a declarative set of options into a single webpage capture.
//
// The pipeline has four pieces:
//
//  1. Resolve: merge directive-local option strings with document-wide
//     defaults into a fully-populated ResolvedOptions value.
//  2. Acquire: obtain a browser context for the capture, either a default
//     anonymous one or a named one built by a user-registered factory.
//  3. Capture: drive a Playwright page through navigation, header and
//     color-scheme setup, optional interaction scripting, and screenshot
//     (and optionally PDF) export.
//  4. Emit: write the captured bytes under a content-derived filename and
//     hand back a relative reference for figure rendering.
//
// # Lifecycle
//
// One ResolvedOptions produces exactly one CapturedAsset through exactly one
// context handle. Assets are written once and never mutated; whether a
// previously emitted asset short-circuits a new capture is decided by the
// caller through Emitter.Has.
//
// # Concurrency
//
// The ContextProvider's registry is safe for concurrent registration and
// lookup. Context handles themselves are single-writer: nothing here makes a
// reused context safe for two simultaneous captures, and factories that want
// to share sessions across captures must say so in their own contract.
//
// # Example
//
//	opts, err := screenshot.Resolve(screenshot.Raw{
//	    Target:        "http://www.example.com",
//	    ViewportWidth: "800",
//	}, screenshot.NewDefaults())
//	if err != nil { ... }
//	opts.URL = opts.Target
//
//	handle, err := provider.Acquire(browser, opts)
//	if err != nil { ... }
//	defer handle.Release()
//
//	asset, err := engine.Capture(opts, handle)
//	if err != nil { ... }
//	ref, err := emitter.Write(asset)
package screenshot
