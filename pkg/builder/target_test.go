package builder

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/pkg/localapp"
	"github.com/docshot/docshot/pkg/screenshot"
)

func TestResolveTarget_PassThrough(t *testing.T) {
	apps := localapp.NewRegistry()
	defer apps.Close()

	for _, target := range []string{
		"http://www.example.com",
		"https://www.example.com/page?q=1",
		"file:///tmp/example.html",
	} {
		got, err := ResolveTarget(target, "/docs", "/docs/guide", apps)
		require.NoError(t, err)
		assert.Equal(t, target, got)
	}
}

func TestResolveTarget_RelativePaths(t *testing.T) {
	apps := localapp.NewRegistry()
	defer apps.Close()

	got, err := ResolveTarget("/static/example.html", "/docs", "/docs/guide", apps)
	require.NoError(t, err)
	assert.Equal(t, "file:///docs/static/example.html", got)

	got, err = ResolveTarget("./example.html", "/docs", "/docs/guide", apps)
	require.NoError(t, err)
	assert.Equal(t, "file:///docs/guide/example.html", got)
}

func TestResolveTarget_AppReference(t *testing.T) {
	apps := localapp.NewRegistry()
	apps.Register("example", func() (http.Handler, error) {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "ok")
		}), nil
	})
	defer apps.Close()

	got, err := ResolveTarget("app://example/admin?tab=1", "/docs", "/docs", apps)
	require.NoError(t, err)

	handle, err := apps.Lookup("example")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("http://127.0.0.1:%d/admin?tab=1", handle.Port), got)

	// Second directive naming the same app resolves to the same instance.
	again, err := ResolveTarget("app://example/", "/docs", "/docs", apps)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("http://127.0.0.1:%d/", handle.Port), again)
}

func TestResolveTarget_UnknownApp(t *testing.T) {
	apps := localapp.NewRegistry()
	defer apps.Close()

	_, err := ResolveTarget("app://missing/", "/docs", "/docs", apps)
	require.Error(t, err)
	assert.ErrorIs(t, err, screenshot.ErrConfig)
	assert.Contains(t, err.Error(), "missing")
}

func TestResolveTarget_UnsupportedScheme(t *testing.T) {
	apps := localapp.NewRegistry()
	defer apps.Close()

	_, err := ResolveTarget("ftp://example.com/file.html", "/docs", "/docs", apps)
	require.Error(t, err)
	assert.ErrorIs(t, err, screenshot.ErrConfig)
	assert.Contains(t, err.Error(), "ftp")
}

func TestFormatStatuses(t *testing.T) {
	assert.Equal(t, "200,302", formatStatuses([]int{200, 302}))
}
