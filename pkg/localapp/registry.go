// Package localapp serves user-registered web applications on ephemeral
// local ports for the duration of one documentation build, so directives can
// capture pages that never had a public URL.
package localapp

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
)

// Factory builds the handler for a named local app. It is invoked at most
// once per build, on the first directive that references the app.
type Factory func() (http.Handler, error)

// ErrUnknownApp is returned when a directive references an app name with no
// registered factory.
var ErrUnknownApp = errors.New("unknown local app")

// ErrClosed is returned by Lookup after the registry was torn down.
var ErrClosed = errors.New("local app registry closed")

// Handle describes one running local app instance. Every directive that
// references the same app name within a build shares one handle.
type Handle struct {
	Name string
	Port int
	srv  *http.Server
}

// BaseURL returns the root URL the app is being served under.
func (h *Handle) BaseURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", h.Port)
}

// Registry maps app names to their factories and running instances. The
// single mutex serializes lookup-or-create so at most one instance runs per
// name, even under concurrent directive evaluation.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	running   map[string]*Handle
	closed    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		running:   make(map[string]*Handle),
	}
}

// Register adds a named app factory, replacing any previous registration
// under the same name. Registering after an instance is running does not
// affect the running instance.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Lookup returns the running handle for name, starting the app on an
// ephemeral local port on first reference.
func (r *Registry) Lookup(name string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if handle, ok := r.running[name]; ok {
		return handle, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w %q: no factory registered under that name", ErrUnknownApp, name)
	}

	app, err := factory()
	if err != nil {
		return nil, fmt.Errorf("app factory %q: %w", name, err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to bind local port for app %q: %w", name, err)
	}

	handle := &Handle{
		Name: name,
		Port: listener.Addr().(*net.TCPAddr).Port,
		srv:  &http.Server{Handler: app},
	}
	go func() {
		if err := handle.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("localapp: server stopped unexpectedly", "app", name, "err", err)
		}
	}()

	r.running[name] = handle
	return handle, nil
}

// Close stops every running app and releases its port. Close is idempotent
// and must run on all build exit paths, including failure.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for name, handle := range r.running {
		if err := handle.srv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app %q: %w", name, err))
		}
		delete(r.running, name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing local apps: %v", errs)
	}
	return nil
}
