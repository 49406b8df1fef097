package screenshot

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(t *testing.T, raw Raw) *ResolvedOptions {
	t.Helper()
	opts, err := Resolve(raw, NewDefaults())
	require.NoError(t, err)
	return opts
}

func TestFingerprint_Stable(t *testing.T) {
	a := resolved(t, Raw{Target: "http://www.example.com"})
	b := resolved(t, Raw{Target: "http://www.example.com"})
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_VariesWithOptions(t *testing.T) {
	base := resolved(t, Raw{Target: "http://www.example.com"})

	variants := []Raw{
		{Target: "http://www.example.org"},
		{Target: "http://www.example.com", Browser: "firefox"},
		{Target: "http://www.example.com", ViewportWidth: "800"},
		{Target: "http://www.example.com", ColorScheme: "dark"},
		{Target: "http://www.example.com", Context: "admin"},
		{Target: "http://www.example.com", Interactions: "document.title = 'x';"},
		{Target: "http://www.example.com", DeviceScaleFactor: "2"},
		{Target: "http://www.example.com", StatusCode: "404"},
		{Target: "http://www.example.com", Locale: "ja-JP"},
		{Target: "http://www.example.com", Timezone: "Asia/Tokyo"},
	}
	fullPage := true
	variants = append(variants, Raw{Target: "http://www.example.com", FullPage: &fullPage})

	seen := map[string]bool{base.Fingerprint(): true}
	for _, raw := range variants {
		fp := resolved(t, raw).Fingerprint()
		assert.False(t, seen[fp], "fingerprint collision for %+v", raw)
		seen[fp] = true
	}
}

func TestFingerprint_IgnoresResolvedURL(t *testing.T) {
	a := resolved(t, Raw{Target: "app://example/"})
	b := resolved(t, Raw{Target: "app://example/"})
	a.URL = "http://127.0.0.1:40001/"
	b.URL = "http://127.0.0.1:45678/"
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(),
		"ephemeral port must not invalidate cached captures")
}

func TestEmitter_WriteAndHas(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshots")
	emitter, err := NewEmitter(dir)
	require.NoError(t, err)

	asset := &CapturedAsset{
		ImageBytes:  []byte("png-bytes"),
		SourceURL:   "http://www.example.com",
		Fingerprint: "abc123",
	}

	assert.False(t, emitter.Has("abc123"))

	ref, err := emitter.Write(asset)
	require.NoError(t, err)
	assert.Equal(t, "abc123.png", ref.Image)
	assert.Empty(t, ref.PDF)

	assert.True(t, emitter.Has("abc123"))
	data, err := os.ReadFile(filepath.Join(dir, "abc123.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestEmitter_WritePDF(t *testing.T) {
	emitter, err := NewEmitter(filepath.Join(t.TempDir(), "screenshots"))
	require.NoError(t, err)

	ref, err := emitter.Write(&CapturedAsset{
		ImageBytes:  []byte("png-bytes"),
		PDFBytes:    []byte("pdf-bytes"),
		Fingerprint: "def456",
	})
	require.NoError(t, err)
	assert.Equal(t, "def456.png", ref.Image)
	assert.Equal(t, "def456.pdf", ref.PDF)

	data, err := os.ReadFile(filepath.Join(emitter.Dir(), "def456.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf-bytes"), data)
}

func TestEmitter_Ref(t *testing.T) {
	emitter, err := NewEmitter(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, AssetRef{Image: "fp.png"}, emitter.Ref("fp", false))
	assert.Equal(t, AssetRef{Image: "fp.png", PDF: "fp.pdf"}, emitter.Ref("fp", true))
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestEmitter_ImageWidth(t *testing.T) {
	emitter, err := NewEmitter(t.TempDir())
	require.NoError(t, err)

	ref, err := emitter.Write(&CapturedAsset{
		ImageBytes:  encodePNG(t, 640, 480),
		Fingerprint: "wide",
	})
	require.NoError(t, err)
	assert.Equal(t, 640, ref.ImageWidth)

	// Cache hits read the width back from the emitted file.
	assert.Equal(t, 640, emitter.Ref("wide", false).ImageWidth)
}
