package localapp

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helloFactory() (http.Handler, error) {
	router := chi.NewRouter()
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Hello, World!")
	})
	return router, nil
}

func TestRegistry_LookupServes(t *testing.T) {
	registry := NewRegistry()
	registry.Register("example", helloFactory)
	defer registry.Close()

	handle, err := registry.Lookup("example")
	require.NoError(t, err)
	require.NotZero(t, handle.Port)

	resp, err := http.Get(handle.BaseURL() + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello, World!", string(body))
}

func TestRegistry_SharedInstance(t *testing.T) {
	registry := NewRegistry()
	registry.Register("example", helloFactory)
	defer registry.Close()

	first, err := registry.Lookup("example")
	require.NoError(t, err)
	second, err := registry.Lookup("example")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, first.Port, second.Port)
}

func TestRegistry_UnknownApp(t *testing.T) {
	registry := NewRegistry()
	defer registry.Close()

	_, err := registry.Lookup("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownApp)
	assert.Contains(t, err.Error(), "missing")
}

func TestRegistry_FactoryError(t *testing.T) {
	registry := NewRegistry()
	registry.Register("broken", func() (http.Handler, error) {
		return nil, fmt.Errorf("no database")
	})
	defer registry.Close()

	_, err := registry.Lookup("broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "no database")
}

func TestRegistry_CloseReleasesPort(t *testing.T) {
	registry := NewRegistry()
	registry.Register("example", helloFactory)

	handle, err := registry.Lookup("example")
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", handle.Port)

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	conn.Close()

	require.NoError(t, registry.Close())

	_, err = net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err, "port must refuse connections after teardown")
}

func TestRegistry_CloseIdempotent(t *testing.T) {
	registry := NewRegistry()
	registry.Register("example", helloFactory)

	_, err := registry.Lookup("example")
	require.NoError(t, err)

	require.NoError(t, registry.Close())
	require.NoError(t, registry.Close())

	_, err = registry.Lookup("example")
	assert.ErrorIs(t, err, ErrClosed)
}
