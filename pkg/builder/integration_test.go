//go:build integration

package builder

import (
	"fmt"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/pkg/config"
	"github.com/docshot/docshot/pkg/screenshot"
)

// newIntegrationBuild starts a real build with its own output directory.
// Environments without a working Playwright driver skip instead of failing.
func newIntegrationBuild(t *testing.T) *Build {
	t.Helper()

	cfg := config.New()
	cfg.OutputDir = t.TempDir()

	b, err := New(cfg, t.TempDir())
	if err != nil {
		t.Skipf("playwright unavailable: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	b.RegisterApp("tall", tallPageFactory)
	return b
}

// tallPageFactory serves a page far taller than any test viewport, so
// viewport-bound and full-page captures are distinguishable.
func tallPageFactory() (http.Handler, error) {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html><html><body style="margin:0">`)
		for i := 0; i < 100; i++ {
			fmt.Fprintf(w, `<p style="height:40px">row %d</p>`, i)
		}
		fmt.Fprint(w, `</body></html>`)
	})
	return r, nil
}

func decodeEmitted(t *testing.T, b *Build, name string) (width, height int) {
	t.Helper()
	f, err := os.Open(filepath.Join(b.emitter.Dir(), name))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestBuild_FullPageCapture(t *testing.T) {
	b := newIntegrationBuild(t)

	bounded, err := b.Capture(screenshot.Raw{
		Target:         "app://tall/",
		ViewportWidth:  "800",
		ViewportHeight: "600",
	})
	require.NoError(t, err)

	full := true
	unbounded, err := b.Capture(screenshot.Raw{
		Target:         "app://tall/",
		ViewportWidth:  "800",
		ViewportHeight: "600",
		FullPage:       &full,
	})
	require.NoError(t, err)

	_, boundedHeight := decodeEmitted(t, b, bounded.Image)
	_, fullHeight := decodeEmitted(t, b, unbounded.Image)

	assert.Equal(t, 600, boundedHeight)
	assert.Greater(t, fullHeight, boundedHeight, "full-page capture extends past the viewport")
}

func TestBuild_DeviceScaleFactorDoublesPixels(t *testing.T) {
	b := newIntegrationBuild(t)

	ref, err := b.Capture(screenshot.Raw{
		Target:            "app://tall/",
		ViewportWidth:     "800",
		ViewportHeight:    "600",
		DeviceScaleFactor: "2",
	})
	require.NoError(t, err)

	width, _ := decodeEmitted(t, b, ref.Image)
	assert.Equal(t, 1600, width)
}

func TestBuild_PDFCapture(t *testing.T) {
	b := newIntegrationBuild(t)

	ref, err := b.Capture(screenshot.Raw{Target: "app://tall/", PDF: true})
	require.NoError(t, err)
	require.NotEmpty(t, ref.PDF)

	data, err := os.ReadFile(filepath.Join(b.emitter.Dir(), ref.PDF))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	ref, err = b.Capture(screenshot.Raw{Target: "app://tall/"})
	require.NoError(t, err)
	assert.Empty(t, ref.PDF)
}

func TestBuild_CacheShortCircuit(t *testing.T) {
	b := newIntegrationBuild(t)

	raw := screenshot.Raw{Target: "app://tall/"}
	first, err := b.Capture(raw)
	require.NoError(t, err)

	// A repeated directive must reuse the emitted file without recapturing.
	sentinel := []byte("left alone by the cache")
	path := filepath.Join(b.emitter.Dir(), first.Image)
	require.NoError(t, os.WriteFile(path, sentinel, 0o644))

	second, err := b.Capture(raw)
	require.NoError(t, err)
	assert.Equal(t, first.Image, second.Image)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sentinel, data)
}
